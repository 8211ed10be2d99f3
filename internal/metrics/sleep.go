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

// Sleep is one sleep session. Natural key: (user_id, sleep_start).
type Sleep struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	SleepStart        time.Time
	SleepEnd          time.Time
	DurationMinutes   *int32
	DeepSleepMinutes  *int32
	RemSleepMinutes   *int32
	LightSleepMinutes *int32
	AwakeMinutes      *int32
	Efficiency        *float64
	SourceDevice      string
	CreatedAt         time.Time
}

func (m *Sleep) Family() string         { return config.FamilySleep }
func (m *Sleep) GetUserID() uuid.UUID   { return m.UserID }
func (m *Sleep) SetUserID(id uuid.UUID) { m.UserID = id }
func (m *Sleep) NaturalKey() NaturalKey { return NaturalKey{UserID: m.UserID, At: m.SleepStart} }

func (m *Sleep) Validate(cfg *config.ValidationConfig) error {
	if !m.SleepEnd.After(m.SleepStart) {
		return fmt.Errorf("sleep_end (%s) must be after sleep_start (%s)", m.SleepEnd, m.SleepStart)
	}

	span := m.SleepEnd.Sub(m.SleepStart)
	spanMinutes := int32(span.Minutes())

	componentSum := int32(0)
	for _, v := range []*int32{m.DeepSleepMinutes, m.RemSleepMinutes, m.LightSleepMinutes, m.AwakeMinutes} {
		if v != nil {
			componentSum += *v
		}
	}
	if componentSum > spanMinutes {
		return fmt.Errorf("sleep component minutes (%d) exceed total span (%d)", componentSum, spanMinutes)
	}

	if m.Efficiency != nil {
		if *m.Efficiency < cfg.SleepEfficiencyMin || *m.Efficiency > cfg.SleepEfficiencyMax {
			return fmt.Errorf("sleep efficiency %v out of bounds [%v,%v]", *m.Efficiency, cfg.SleepEfficiencyMin, cfg.SleepEfficiencyMax)
		}
	}
	return nil
}
