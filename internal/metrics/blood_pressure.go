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

// BloodPressure pairs a systolic and diastolic reading taken at the
// same instant. Natural key: (user_id, recorded_at).
type BloodPressure struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	RecordedAt   time.Time
	Systolic     int16
	Diastolic    int16
	Pulse        *int16
	SourceDevice string
	CreatedAt    time.Time
}

func (m *BloodPressure) Family() string         { return config.FamilyBloodPressure }
func (m *BloodPressure) GetUserID() uuid.UUID   { return m.UserID }
func (m *BloodPressure) SetUserID(id uuid.UUID) { m.UserID = id }
func (m *BloodPressure) NaturalKey() NaturalKey { return NaturalKey{UserID: m.UserID, At: m.RecordedAt} }

func (m *BloodPressure) Validate(cfg *config.ValidationConfig) error {
	return m.ValidateWithCharacteristics(cfg, nil)
}

func (m *BloodPressure) ValidateWithCharacteristics(cfg *config.ValidationConfig, chars *Characteristics) error {
	sysMin, sysMax := cfg.SystolicMin, cfg.SystolicMax
	diaMin, diaMax := cfg.DiastolicMin, cfg.DiastolicMax

	if chars != nil && chars.AgeYears >= 65 {
		// Systolic bounds widen slightly for older adults, a common
		// clinical allowance for isolated systolic hypertension.
		sysMax += 20
	}

	if m.Systolic < sysMin || m.Systolic > sysMax {
		return fmt.Errorf("systolic %d out of bounds [%d,%d]", m.Systolic, sysMin, sysMax)
	}
	if m.Diastolic < diaMin || m.Diastolic > diaMax {
		return fmt.Errorf("diastolic %d out of bounds [%d,%d]", m.Diastolic, diaMin, diaMax)
	}
	if m.Systolic <= m.Diastolic {
		return fmt.Errorf("systolic (%d) must be greater than diastolic (%d)", m.Systolic, m.Diastolic)
	}
	return nil
}

// IsCriticalCondition reports a hypertensive or hypotensive crisis.
func (m *BloodPressure) IsCriticalCondition(cfg *config.ValidationConfig) bool {
	return m.Systolic >= 180 || m.Diastolic >= 120 || m.Systolic < 90
}
