// Copyright (C) 2024 self-sensored contributors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package metrics

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Ladvien/self-sensored-sub003/internal/config"
)

// HeartRate is one heart-rate sample. Natural key: (user_id, recorded_at).
type HeartRate struct {
	ID                                uuid.UUID
	UserID                            uuid.UUID
	RecordedAt                        time.Time
	HeartRate                         *int16
	RestingHeartRate                  *int16
	HeartRateVariability              *float64
	WalkingHeartRateAverage           *int16
	HeartRateRecoveryOneMinute        *int16
	AtrialFibrillationBurdenPercent   *float64
	VO2MaxMlKgMin                     *float64
	Context                           ActivityContext
	SourceDevice                      string
	CreatedAt                         time.Time
}

func (m *HeartRate) Family() string          { return config.FamilyHeartRate }
func (m *HeartRate) GetUserID() uuid.UUID    { return m.UserID }
func (m *HeartRate) SetUserID(id uuid.UUID)  { m.UserID = id }
func (m *HeartRate) NaturalKey() NaturalKey  { return NaturalKey{UserID: m.UserID, At: m.RecordedAt} }

func (m *HeartRate) Validate(cfg *config.ValidationConfig) error {
	return m.ValidateWithCharacteristics(cfg, nil)
}

func (m *HeartRate) ValidateWithCharacteristics(cfg *config.ValidationConfig, chars *Characteristics) error {
	min, max := cfg.HeartRateMin, cfg.HeartRateMax
	if chars != nil {
		min, max = personalizedHeartRateBounds(cfg, chars)
	}

	if v := m.HeartRate; v != nil {
		if *v < min || *v > max {
			return fmt.Errorf("heart_rate %d out of bounds [%d,%d]", *v, min, max)
		}
	}
	if v := m.RestingHeartRate; v != nil {
		if *v < min || *v > max {
			return fmt.Errorf("resting_heart_rate %d out of bounds [%d,%d]", *v, min, max)
		}
	}
	if v := m.WalkingHeartRateAverage; v != nil {
		if *v < min || *v > max {
			return fmt.Errorf("walking_heart_rate_average %d out of bounds [%d,%d]", *v, min, max)
		}
	}
	if v := m.AtrialFibrillationBurdenPercent; v != nil {
		if *v < 0 || *v > 100 {
			return fmt.Errorf("atrial_fibrillation_burden_percentage %v out of bounds [0,100]", *v)
		}
	}
	if v := m.VO2MaxMlKgMin; v != nil {
		if *v < 0 || *v > 100 {
			return fmt.Errorf("vo2_max_ml_kg_min %v out of bounds [0,100]", *v)
		}
	}
	return nil
}

// IsCriticalCondition reports whether this sample's heart rate falls
// outside a clinically urgent range.
func (m *HeartRate) IsCriticalCondition(cfg *config.ValidationConfig) bool {
	if m.HeartRate == nil {
		return false
	}
	return *m.HeartRate < 30 || *m.HeartRate > 220
}

// personalizedHeartRateBounds applies age-based adjustment from the
// classic "220 - age" maximum heart-rate heuristic: when 220 - age is
// below the configured maximum, the upper bound becomes
// (220 - age) + 20. The lower bound is not adjusted.
func personalizedHeartRateBounds(cfg *config.ValidationConfig, chars *Characteristics) (int16, int16) {
	min, max := cfg.HeartRateMin, cfg.HeartRateMax
	if chars.AgeYears > 0 {
		ageMax := int16(220 - chars.AgeYears)
		if ageMax > 0 && ageMax < max {
			max = ageMax + 20 // headroom above theoretical max for measured outliers
		}
	}
	return min, max
}
