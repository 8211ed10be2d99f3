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

// Temperature is a single body/basal/water/ambient temperature
// reading. Natural key: (user_id, recorded_at).
type Temperature struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	RecordedAt         time.Time
	TemperatureCelsius float64
	Context            TemperatureContext
	SourceDevice       string
	CreatedAt          time.Time
}

func (m *Temperature) Family() string         { return config.FamilyTemperature }
func (m *Temperature) GetUserID() uuid.UUID   { return m.UserID }
func (m *Temperature) SetUserID(id uuid.UUID) { m.UserID = id }
func (m *Temperature) NaturalKey() NaturalKey { return NaturalKey{UserID: m.UserID, At: m.RecordedAt} }

func (m *Temperature) Validate(cfg *config.ValidationConfig) error {
	if m.TemperatureCelsius < cfg.TemperatureCelsiusMin || m.TemperatureCelsius > cfg.TemperatureCelsiusMax {
		return fmt.Errorf("temperature_celsius %v out of bounds [%v,%v]", m.TemperatureCelsius, cfg.TemperatureCelsiusMin, cfg.TemperatureCelsiusMax)
	}
	return nil
}

// BloodGlucose is a single glucose reading. Natural key:
// (user_id, recorded_at).
type BloodGlucose struct {
	ID                    uuid.UUID
	UserID                uuid.UUID
	RecordedAt            time.Time
	BloodGlucoseMgDl      float64
	MeasurementContext    GlucoseMeasurementContext
	InsulinDeliveryUnits  *float64
	SourceDevice          string
	CreatedAt             time.Time
}

func (m *BloodGlucose) Family() string         { return config.FamilyBloodGlucose }
func (m *BloodGlucose) GetUserID() uuid.UUID   { return m.UserID }
func (m *BloodGlucose) SetUserID(id uuid.UUID) { m.UserID = id }
func (m *BloodGlucose) NaturalKey() NaturalKey { return NaturalKey{UserID: m.UserID, At: m.RecordedAt} }

func (m *BloodGlucose) Validate(cfg *config.ValidationConfig) error {
	if m.BloodGlucoseMgDl <= 0 || m.BloodGlucoseMgDl > 1000 {
		return fmt.Errorf("blood_glucose_mg_dl %v out of plausible range (0,1000]", m.BloodGlucoseMgDl)
	}
	return nil
}

// IsCriticalCondition reports hypo/hyperglycemia per spec.md §4.2.
func (m *BloodGlucose) IsCriticalCondition(cfg *config.ValidationConfig) bool {
	return m.BloodGlucoseMgDl < cfg.BloodGlucoseCriticalLow || m.BloodGlucoseMgDl > cfg.BloodGlucoseCriticalHigh
}

// Respiratory is a single respiratory-system reading. Natural key:
// (user_id, recorded_at).
type Respiratory struct {
	ID                       uuid.UUID
	UserID                   uuid.UUID
	RecordedAt               time.Time
	RespiratoryRate          *int16
	OxygenSaturation         *float64
	ForcedVitalCapacity      *float64
	ForcedExpiratoryVolume1  *float64
	PeakExpiratoryFlowRate   *float64
	SourceDevice             string
	CreatedAt                time.Time
}

func (m *Respiratory) Family() string         { return config.FamilyRespiratory }
func (m *Respiratory) GetUserID() uuid.UUID   { return m.UserID }
func (m *Respiratory) SetUserID(id uuid.UUID) { m.UserID = id }
func (m *Respiratory) NaturalKey() NaturalKey { return NaturalKey{UserID: m.UserID, At: m.RecordedAt} }

func (m *Respiratory) Validate(cfg *config.ValidationConfig) error {
	if m.RespiratoryRate != nil {
		if *m.RespiratoryRate < cfg.RespiratoryRateMin-4 || *m.RespiratoryRate > cfg.RespiratoryRateMax+10 {
			return fmt.Errorf("respiratory_rate %d implausible", *m.RespiratoryRate)
		}
	}
	if m.OxygenSaturation != nil {
		if *m.OxygenSaturation < 0 || *m.OxygenSaturation > 100 {
			return fmt.Errorf("oxygen_saturation %v out of bounds [0,100]", *m.OxygenSaturation)
		}
	}
	return nil
}

// IsCriticalCondition implements spec.md §4.2's respiratory predicate:
// SpO2 < 90 OR respiratory rate outside [8,30].
func (m *Respiratory) IsCriticalCondition(cfg *config.ValidationConfig) bool {
	if m.OxygenSaturation != nil && *m.OxygenSaturation < cfg.OxygenSaturationCritical {
		return true
	}
	if m.RespiratoryRate != nil && (*m.RespiratoryRate < cfg.RespiratoryRateMin || *m.RespiratoryRate > cfg.RespiratoryRateMax) {
		return true
	}
	return false
}
