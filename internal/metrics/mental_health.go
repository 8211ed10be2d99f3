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

// MentalHealth is a single mood/screening entry. The table backing
// this family is time-range partitioned by month (see internal/repository).
// Natural key: (user_id, recorded_at).
type MentalHealth struct {
	ID                  uuid.UUID
	UserID              uuid.UUID
	RecordedAt          time.Time
	MoodValence         *float64
	MoodLabels          []string
	DepressionScore     *int16
	AnxietyScore        *int16
	SleepQualityScore   *int16
	StressLevelMinutes  *int16
	SourceDevice        string
	CreatedAt           time.Time
}

func (m *MentalHealth) Family() string         { return config.FamilyMentalHealth }
func (m *MentalHealth) GetUserID() uuid.UUID   { return m.UserID }
func (m *MentalHealth) SetUserID(id uuid.UUID) { m.UserID = id }
func (m *MentalHealth) NaturalKey() NaturalKey { return NaturalKey{UserID: m.UserID, At: m.RecordedAt} }

func (m *MentalHealth) Validate(cfg *config.ValidationConfig) error {
	if len(m.MoodLabels) == 0 {
		return fmt.Errorf("mood_labels must be non-empty")
	}
	if m.MoodValence != nil {
		if *m.MoodValence < cfg.MoodValenceMin || *m.MoodValence > cfg.MoodValenceMax {
			return fmt.Errorf("mood_valence %v out of bounds [%v,%v]", *m.MoodValence, cfg.MoodValenceMin, cfg.MoodValenceMax)
		}
	}
	if m.DepressionScore != nil && (*m.DepressionScore < 0 || *m.DepressionScore > cfg.DepressionScoreMax) {
		return fmt.Errorf("depression_score %d out of bounds [0,%d]", *m.DepressionScore, cfg.DepressionScoreMax)
	}
	if m.AnxietyScore != nil && (*m.AnxietyScore < 0 || *m.AnxietyScore > cfg.AnxietyScoreMax) {
		return fmt.Errorf("anxiety_score %d out of bounds [0,%d]", *m.AnxietyScore, cfg.AnxietyScoreMax)
	}
	if m.SleepQualityScore != nil && (*m.SleepQualityScore < cfg.SleepQualityMin || *m.SleepQualityScore > cfg.SleepQualityMax) {
		return fmt.Errorf("sleep_quality_score %d out of bounds [%d,%d]", *m.SleepQualityScore, cfg.SleepQualityMin, cfg.SleepQualityMax)
	}
	if m.StressLevelMinutes != nil && (*m.StressLevelMinutes < 0 || *m.StressLevelMinutes > cfg.DayMinutesMax) {
		return fmt.Errorf("stress_level_minutes %d out of bounds [0,%d]", *m.StressLevelMinutes, cfg.DayMinutesMax)
	}
	return nil
}
