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

// BodyMeasurement is a single anthropometric reading. Natural key:
// (user_id, recorded_at).
type BodyMeasurement struct {
	ID                    uuid.UUID
	UserID                uuid.UUID
	RecordedAt            time.Time
	BodyWeightKg          *float64
	BodyMassIndex         *float64
	BodyFatPercentage     *float64
	WaistCircumferenceCm  *float64
	SourceDevice          string
	CreatedAt             time.Time
}

func (m *BodyMeasurement) Family() string         { return config.FamilyBodyMeasurement }
func (m *BodyMeasurement) GetUserID() uuid.UUID   { return m.UserID }
func (m *BodyMeasurement) SetUserID(id uuid.UUID) { m.UserID = id }
func (m *BodyMeasurement) NaturalKey() NaturalKey { return NaturalKey{UserID: m.UserID, At: m.RecordedAt} }

func (m *BodyMeasurement) Validate(cfg *config.ValidationConfig) error {
	if m.BodyWeightKg != nil && (*m.BodyWeightKg <= 0 || *m.BodyWeightKg > 500) {
		return fmt.Errorf("body_weight_kg %v out of plausible range (0,500]", *m.BodyWeightKg)
	}
	if m.BodyFatPercentage != nil && (*m.BodyFatPercentage < 0 || *m.BodyFatPercentage > 100) {
		return fmt.Errorf("body_fat_percentage %v out of bounds [0,100]", *m.BodyFatPercentage)
	}
	return nil
}

// Nutrition is a single nutrient-intake entry. Natural key:
// (user_id, recorded_at, nutrient_type) — the nutrient type is folded
// into the natural key because multiple nutrients are routinely
// logged at the exact same instant (one meal entry).
type Nutrition struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	RecordedAt   time.Time
	NutrientType NutrientType
	Value        float64
	Unit         string
	SourceDevice string
	CreatedAt    time.Time
}

func (m *Nutrition) Family() string         { return config.FamilyNutrition }
func (m *Nutrition) GetUserID() uuid.UUID   { return m.UserID }
func (m *Nutrition) SetUserID(id uuid.UUID) { m.UserID = id }
func (m *Nutrition) NaturalKey() NaturalKey {
	return NaturalKey{UserID: m.UserID, At: m.RecordedAt.Add(nutrientOffset(m.NutrientType))}
}

func (m *Nutrition) Validate(cfg *config.ValidationConfig) error {
	if m.Value < 0 {
		return fmt.Errorf("nutrition value %v must not be negative", m.Value)
	}
	return nil
}

// nutrientOffset perturbs the in-memory dedup key by a sub-second
// amount derived from the nutrient type so distinct nutrients logged
// at one instant do not collide in the intra-batch key set. The
// database natural key additionally carries nutrient_type as a real
// column; this offset only affects the Go-side NaturalKey comparison.
func nutrientOffset(t NutrientType) time.Duration {
	var h time.Duration
	for _, r := range string(t) {
		h = h*31 + time.Duration(r)
	}
	return h % time.Second
}

// Mindfulness is a single mindfulness session. Natural key:
// (user_id, recorded_at).
type Mindfulness struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	RecordedAt      time.Time
	DurationMinutes int32
	Type            MindfulnessType
	SourceDevice    string
	CreatedAt       time.Time
}

func (m *Mindfulness) Family() string         { return config.FamilyMindfulness }
func (m *Mindfulness) GetUserID() uuid.UUID   { return m.UserID }
func (m *Mindfulness) SetUserID(id uuid.UUID) { m.UserID = id }
func (m *Mindfulness) NaturalKey() NaturalKey { return NaturalKey{UserID: m.UserID, At: m.RecordedAt} }

func (m *Mindfulness) Validate(cfg *config.ValidationConfig) error {
	if m.DurationMinutes < 0 || m.DurationMinutes > cfg.DayMinutesMax {
		return fmt.Errorf("mindfulness duration_minutes %d out of bounds [0,%d]", m.DurationMinutes, cfg.DayMinutesMax)
	}
	return nil
}
