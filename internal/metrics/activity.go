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

// Activity is one activity sample. Natural key: (user_id, recorded_at)
// at full sub-second precision — collapsing to the date component
// would silently merge every same-day sample into one row.
type Activity struct {
	ID                    uuid.UUID
	UserID                uuid.UUID
	RecordedAt            time.Time
	StepCount             *int32
	DistanceMeters        *float64
	FlightsClimbed        *int32
	ActiveEnergyBurnedKcal *float64
	BasalEnergyBurnedKcal *float64
	PushCount             *int32
	WheelchairDistanceMeters *float64
	SourceDevice          string
	CreatedAt             time.Time
}

func (m *Activity) Family() string         { return config.FamilyActivity }
func (m *Activity) GetUserID() uuid.UUID   { return m.UserID }
func (m *Activity) SetUserID(id uuid.UUID) { m.UserID = id }
func (m *Activity) NaturalKey() NaturalKey { return NaturalKey{UserID: m.UserID, At: m.RecordedAt} }

func (m *Activity) Validate(cfg *config.ValidationConfig) error {
	return m.ValidateWithCharacteristics(cfg, nil)
}

// ValidateWithCharacteristics implements the wheelchair-user
// personalization called out in spec.md §4.2: wheelchair users bypass
// step-count bounds entirely and are instead checked against
// push-count/wheelchair-distance bounds.
func (m *Activity) ValidateWithCharacteristics(cfg *config.ValidationConfig, chars *Characteristics) error {
	wheelchair := chars != nil && chars.UsesWheelchair

	if !wheelchair {
		if m.StepCount != nil && *m.StepCount > cfg.StepCountMax {
			return fmt.Errorf("step_count %d exceeds max %d", *m.StepCount, cfg.StepCountMax)
		}
	} else {
		if m.PushCount != nil && *m.PushCount > cfg.WheelchairPushMax {
			return fmt.Errorf("push_count %d exceeds max %d", *m.PushCount, cfg.WheelchairPushMax)
		}
		if m.WheelchairDistanceMeters != nil && *m.WheelchairDistanceMeters > cfg.WheelchairDistanceMax {
			return fmt.Errorf("wheelchair_distance_meters %v exceeds max %v", *m.WheelchairDistanceMeters, cfg.WheelchairDistanceMax)
		}
	}

	if m.DistanceMeters != nil && *m.DistanceMeters > cfg.DistanceMetersMax {
		return fmt.Errorf("distance_meters %v exceeds max %v", *m.DistanceMeters, cfg.DistanceMetersMax)
	}
	if m.StepCount != nil && *m.StepCount < 0 {
		return fmt.Errorf("step_count %d must not be negative", *m.StepCount)
	}
	return nil
}
