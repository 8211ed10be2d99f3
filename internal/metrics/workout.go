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

// Workout is one workout session. Natural key: (user_id, started_at).
type Workout struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	StartedAt         time.Time
	EndedAt           time.Time
	WorkoutType       WorkoutType
	TotalEnergyKcal   *float64
	ActiveEnergyKcal  *float64
	AvgHeartRate      *int16
	MaxHeartRate      *int16
	DistanceMeters    *float64
	SourceDevice      string
	CreatedAt         time.Time
}

func (m *Workout) Family() string         { return config.FamilyWorkout }
func (m *Workout) GetUserID() uuid.UUID   { return m.UserID }
func (m *Workout) SetUserID(id uuid.UUID) { m.UserID = id }
func (m *Workout) NaturalKey() NaturalKey { return NaturalKey{UserID: m.UserID, At: m.StartedAt} }

func (m *Workout) Validate(cfg *config.ValidationConfig) error {
	if !m.EndedAt.After(m.StartedAt) {
		return fmt.Errorf("ended_at (%s) must be after started_at (%s)", m.EndedAt, m.StartedAt)
	}

	durationMinutes := int32(m.EndedAt.Sub(m.StartedAt).Minutes())
	if durationMinutes > cfg.WorkoutDurationMaxMinutes {
		return fmt.Errorf("workout duration %d minutes exceeds max %d", durationMinutes, cfg.WorkoutDurationMaxMinutes)
	}

	if m.ActiveEnergyKcal != nil && m.TotalEnergyKcal != nil && *m.ActiveEnergyKcal > *m.TotalEnergyKcal {
		return fmt.Errorf("active_energy (%v) must not exceed total_energy (%v)", *m.ActiveEnergyKcal, *m.TotalEnergyKcal)
	}
	if m.AvgHeartRate != nil && m.MaxHeartRate != nil && *m.AvgHeartRate > *m.MaxHeartRate {
		return fmt.Errorf("avg_hr (%d) must not exceed max_hr (%d)", *m.AvgHeartRate, *m.MaxHeartRate)
	}
	return nil
}
