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

// Symptom is a single symptom report. Natural key: (user_id, recorded_at).
type Symptom struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	RecordedAt      time.Time
	SymptomType     string
	Severity        int16
	DurationMinutes *int32
	SourceDevice    string
	CreatedAt       time.Time
}

func (m *Symptom) Family() string         { return config.FamilySymptom }
func (m *Symptom) GetUserID() uuid.UUID   { return m.UserID }
func (m *Symptom) SetUserID(id uuid.UUID) { m.UserID = id }
func (m *Symptom) NaturalKey() NaturalKey { return NaturalKey{UserID: m.UserID, At: m.RecordedAt} }

func (m *Symptom) Validate(cfg *config.ValidationConfig) error {
	if m.SymptomType == "" {
		return fmt.Errorf("symptom_type must not be empty")
	}
	if m.Severity < 1 || m.Severity > 10 {
		return fmt.Errorf("severity %d out of bounds [1,10]", m.Severity)
	}
	return nil
}

// Hygiene is a single hygiene event. Natural key: (user_id, recorded_at).
type Hygiene struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	RecordedAt      time.Time
	EventType       HygieneEventType
	DurationSeconds int32
	SourceDevice    string
	CreatedAt       time.Time
}

func (m *Hygiene) Family() string         { return config.FamilyHygiene }
func (m *Hygiene) GetUserID() uuid.UUID   { return m.UserID }
func (m *Hygiene) SetUserID(id uuid.UUID) { m.UserID = id }
func (m *Hygiene) NaturalKey() NaturalKey { return NaturalKey{UserID: m.UserID, At: m.RecordedAt} }

func (m *Hygiene) Validate(cfg *config.ValidationConfig) error {
	if m.DurationSeconds < 0 || m.DurationSeconds > 86400 {
		return fmt.Errorf("duration_seconds %d out of plausible bounds [0,86400]", m.DurationSeconds)
	}
	return nil
}

// Menstrual is a single cycle-tracking entry. Natural key:
// (user_id, recorded_at).
type Menstrual struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	RecordedAt   time.Time
	Flow         MenstrualFlow
	CycleDay     *int16
	SourceDevice string
	CreatedAt    time.Time
}

func (m *Menstrual) Family() string         { return config.FamilyMenstrual }
func (m *Menstrual) GetUserID() uuid.UUID   { return m.UserID }
func (m *Menstrual) SetUserID(id uuid.UUID) { m.UserID = id }
func (m *Menstrual) NaturalKey() NaturalKey { return NaturalKey{UserID: m.UserID, At: m.RecordedAt} }

func (m *Menstrual) Validate(cfg *config.ValidationConfig) error {
	if m.CycleDay != nil && (*m.CycleDay < 1 || *m.CycleDay > 60) {
		return fmt.Errorf("cycle_day %d out of plausible bounds [1,60]", *m.CycleDay)
	}
	return nil
}

// Fertility is a single fertility-tracking entry. Natural key:
// (user_id, recorded_at).
type Fertility struct {
	ID                    uuid.UUID
	UserID                uuid.UUID
	RecordedAt            time.Time
	BasalBodyTemperature  *float64
	CervicalMucusQuality  string
	OvulationTestResult   string
	SourceDevice          string
	CreatedAt             time.Time
}

func (m *Fertility) Family() string         { return config.FamilyFertility }
func (m *Fertility) GetUserID() uuid.UUID   { return m.UserID }
func (m *Fertility) SetUserID(id uuid.UUID) { m.UserID = id }
func (m *Fertility) NaturalKey() NaturalKey { return NaturalKey{UserID: m.UserID, At: m.RecordedAt} }

func (m *Fertility) Validate(cfg *config.ValidationConfig) error {
	if m.BasalBodyTemperature != nil && (*m.BasalBodyTemperature < cfg.TemperatureCelsiusMin || *m.BasalBodyTemperature > cfg.TemperatureCelsiusMax) {
		return fmt.Errorf("basal_body_temperature %v out of bounds [%v,%v]", *m.BasalBodyTemperature, cfg.TemperatureCelsiusMin, cfg.TemperatureCelsiusMax)
	}
	return nil
}

// Environmental is a single ambient-exposure reading. Natural key:
// (user_id, recorded_at).
type Environmental struct {
	ID                       uuid.UUID
	UserID                   uuid.UUID
	RecordedAt               time.Time
	UVIndex                  *float64
	NoiseExposureDb          *float64
	TimeInDaylightMinutes    *int32
	SourceDevice             string
	CreatedAt                time.Time
}

func (m *Environmental) Family() string         { return config.FamilyEnvironmental }
func (m *Environmental) GetUserID() uuid.UUID   { return m.UserID }
func (m *Environmental) SetUserID(id uuid.UUID) { m.UserID = id }
func (m *Environmental) NaturalKey() NaturalKey { return NaturalKey{UserID: m.UserID, At: m.RecordedAt} }

func (m *Environmental) Validate(cfg *config.ValidationConfig) error {
	if m.UVIndex != nil && (*m.UVIndex < 0 || *m.UVIndex > 20) {
		return fmt.Errorf("uv_index %v out of plausible bounds [0,20]", *m.UVIndex)
	}
	if m.NoiseExposureDb != nil && (*m.NoiseExposureDb < 0 || *m.NoiseExposureDb > 200) {
		return fmt.Errorf("noise_exposure_db %v out of plausible bounds [0,200]", *m.NoiseExposureDb)
	}
	return nil
}

// AudioExposure is a single audio-dosimetry reading. Natural key:
// (user_id, recorded_at).
type AudioExposure struct {
	ID                       uuid.UUID
	UserID                   uuid.UUID
	RecordedAt               time.Time
	EnvironmentalAudioDb     *float64
	HeadphoneAudioDb         *float64
	ExposureDurationMinutes  *int32
	SourceDevice             string
	CreatedAt                time.Time
}

func (m *AudioExposure) Family() string         { return config.FamilyAudioExposure }
func (m *AudioExposure) GetUserID() uuid.UUID   { return m.UserID }
func (m *AudioExposure) SetUserID(id uuid.UUID) { m.UserID = id }
func (m *AudioExposure) NaturalKey() NaturalKey { return NaturalKey{UserID: m.UserID, At: m.RecordedAt} }

func (m *AudioExposure) Validate(cfg *config.ValidationConfig) error {
	if m.EnvironmentalAudioDb != nil && (*m.EnvironmentalAudioDb < 0 || *m.EnvironmentalAudioDb > 200) {
		return fmt.Errorf("environmental_audio_db %v out of plausible bounds [0,200]", *m.EnvironmentalAudioDb)
	}
	if m.HeadphoneAudioDb != nil && (*m.HeadphoneAudioDb < 0 || *m.HeadphoneAudioDb > 200) {
		return fmt.Errorf("headphone_audio_db %v out of plausible bounds [0,200]", *m.HeadphoneAudioDb)
	}
	return nil
}

// IsCriticalCondition flags exposure levels associated with
// irreversible hearing damage risk (>100dB sustained).
func (m *AudioExposure) IsCriticalCondition(cfg *config.ValidationConfig) bool {
	return (m.EnvironmentalAudioDb != nil && *m.EnvironmentalAudioDb > 100) ||
		(m.HeadphoneAudioDb != nil && *m.HeadphoneAudioDb > 100)
}

// SafetyEvent is a single device-detected safety event. Natural key:
// (user_id, recorded_at). Whether these should be alertable in-band
// on ingest (vs. only via the integrity monitor) is an open question
// per spec.md §9; this implementation records them only, leaving
// in-band alerting to C9.
type SafetyEvent struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	RecordedAt   time.Time
	EventType    SafetyEventType
	Severity     int16
	Resolved     bool
	SourceDevice string
	CreatedAt    time.Time
}

func (m *SafetyEvent) Family() string         { return config.FamilySafetyEvent }
func (m *SafetyEvent) GetUserID() uuid.UUID   { return m.UserID }
func (m *SafetyEvent) SetUserID(id uuid.UUID) { m.UserID = id }
func (m *SafetyEvent) NaturalKey() NaturalKey { return NaturalKey{UserID: m.UserID, At: m.RecordedAt} }

func (m *SafetyEvent) Validate(cfg *config.ValidationConfig) error {
	if m.EventType == "" {
		return fmt.Errorf("event_type must not be empty")
	}
	if m.Severity < 1 || m.Severity > 10 {
		return fmt.Errorf("severity %d out of bounds [1,10]", m.Severity)
	}
	return nil
}
