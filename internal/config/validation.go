// Copyright (C) 2024 self-sensored contributors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config holds the declarative, env-overridable medical
// plausibility bounds (C1) and the batch-processing tunables consumed
// by the chunk planner and batch processor.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// ValidationConfig carries one field per tunable medical-plausibility
// bound. It is deliberately a plain, cloneable struct: no behavior,
// only data, so the batch processor and CLI tools can each hold their
// own copy without synchronization.
type ValidationConfig struct {
	HeartRateMin int16
	HeartRateMax int16

	SystolicMin  int16
	SystolicMax  int16
	DiastolicMin int16
	DiastolicMax int16

	SleepEfficiencyMin float64
	SleepEfficiencyMax float64

	StepCountMax          int32
	DistanceMetersMax     float64
	WheelchairPushMax     int32
	WheelchairDistanceMax float64

	OxygenSaturationCritical float64
	RespiratoryRateMin       int16
	RespiratoryRateMax       int16

	BloodGlucoseCriticalLow  float64
	BloodGlucoseCriticalHigh float64

	TemperatureCelsiusMin float64
	TemperatureCelsiusMax float64

	WorkoutDurationMaxMinutes int32

	MoodValenceMin float64
	MoodValenceMax float64

	DepressionScoreMax int16
	AnxietyScoreMax    int16
	SleepQualityMin    int16
	SleepQualityMax    int16
	DayMinutesMax      int16
}

// DefaultValidationConfig returns the medical bounds used when no
// environment override is present. Values are grounded in the
// original service's test fixtures (systolic 60-250, diastolic
// 40-150, etc.).
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		HeartRateMin: 20,
		HeartRateMax: 300,

		SystolicMin:  60,
		SystolicMax:  250,
		DiastolicMin: 40,
		DiastolicMax: 150,

		SleepEfficiencyMin: 0.0,
		SleepEfficiencyMax: 1.0,

		StepCountMax:          200000,
		DistanceMetersMax:     300000,
		WheelchairPushMax:     100000,
		WheelchairDistanceMax: 300000,

		OxygenSaturationCritical: 90.0,
		RespiratoryRateMin:       8,
		RespiratoryRateMax:       30,

		BloodGlucoseCriticalLow:  70.0,
		BloodGlucoseCriticalHigh: 400.0,

		TemperatureCelsiusMin: 25.0,
		TemperatureCelsiusMax: 45.0,

		WorkoutDurationMaxMinutes: 1440,

		MoodValenceMin: -1.0,
		MoodValenceMax: 1.0,

		DepressionScoreMax: 27,
		AnxietyScoreMax:    21,
		SleepQualityMin:    1,
		SleepQualityMax:    10,
		DayMinutesMax:      1440,
	}
}

// ValidationConfigFromEnv builds a ValidationConfig from the default
// set, applying any environment-variable overrides present. A missing
// or unparsable variable silently falls back to the default for that
// field rather than aborting — the aggregate Validate() call is the
// single gate that rejects a bad configuration at start-up.
func ValidationConfigFromEnv() ValidationConfig {
	c := DefaultValidationConfig()

	c.HeartRateMin = envInt16("VALIDATION_HEART_RATE_MIN", c.HeartRateMin)
	c.HeartRateMax = envInt16("VALIDATION_HEART_RATE_MAX", c.HeartRateMax)
	c.SystolicMin = envInt16("VALIDATION_SYSTOLIC_MIN", c.SystolicMin)
	c.SystolicMax = envInt16("VALIDATION_SYSTOLIC_MAX", c.SystolicMax)
	c.DiastolicMin = envInt16("VALIDATION_DIASTOLIC_MIN", c.DiastolicMin)
	c.DiastolicMax = envInt16("VALIDATION_DIASTOLIC_MAX", c.DiastolicMax)
	c.SleepEfficiencyMin = envFloat("VALIDATION_SLEEP_EFFICIENCY_MIN", c.SleepEfficiencyMin)
	c.SleepEfficiencyMax = envFloat("VALIDATION_SLEEP_EFFICIENCY_MAX", c.SleepEfficiencyMax)
	c.StepCountMax = envInt32("VALIDATION_STEP_COUNT_MAX", c.StepCountMax)
	c.DistanceMetersMax = envFloat("VALIDATION_DISTANCE_METERS_MAX", c.DistanceMetersMax)
	c.WheelchairPushMax = envInt32("VALIDATION_WHEELCHAIR_PUSH_MAX", c.WheelchairPushMax)
	c.WheelchairDistanceMax = envFloat("VALIDATION_WHEELCHAIR_DISTANCE_MAX", c.WheelchairDistanceMax)
	c.OxygenSaturationCritical = envFloat("VALIDATION_SPO2_CRITICAL", c.OxygenSaturationCritical)
	c.RespiratoryRateMin = envInt16("VALIDATION_RESP_RATE_MIN", c.RespiratoryRateMin)
	c.RespiratoryRateMax = envInt16("VALIDATION_RESP_RATE_MAX", c.RespiratoryRateMax)
	c.BloodGlucoseCriticalLow = envFloat("VALIDATION_GLUCOSE_CRITICAL_LOW", c.BloodGlucoseCriticalLow)
	c.BloodGlucoseCriticalHigh = envFloat("VALIDATION_GLUCOSE_CRITICAL_HIGH", c.BloodGlucoseCriticalHigh)
	c.TemperatureCelsiusMin = envFloat("VALIDATION_TEMPERATURE_MIN", c.TemperatureCelsiusMin)
	c.TemperatureCelsiusMax = envFloat("VALIDATION_TEMPERATURE_MAX", c.TemperatureCelsiusMax)
	c.WorkoutDurationMaxMinutes = envInt32("VALIDATION_WORKOUT_DURATION_MAX_MINUTES", c.WorkoutDurationMaxMinutes)
	c.MoodValenceMin = envFloat("VALIDATION_MOOD_VALENCE_MIN", c.MoodValenceMin)
	c.MoodValenceMax = envFloat("VALIDATION_MOOD_VALENCE_MAX", c.MoodValenceMax)
	c.DepressionScoreMax = envInt16("VALIDATION_DEPRESSION_SCORE_MAX", c.DepressionScoreMax)
	c.AnxietyScoreMax = envInt16("VALIDATION_ANXIETY_SCORE_MAX", c.AnxietyScoreMax)
	c.SleepQualityMin = envInt16("VALIDATION_SLEEP_QUALITY_MIN", c.SleepQualityMin)
	c.SleepQualityMax = envInt16("VALIDATION_SLEEP_QUALITY_MAX", c.SleepQualityMax)
	c.DayMinutesMax = envInt16("VALIDATION_DAY_MINUTES_MAX", c.DayMinutesMax)

	return c
}

// Validate rejects a configuration where any declared min/max pair is
// inverted. This is the single gate referenced throughout the design:
// a bad bound must fail loudly at start-up, never silently truncate
// inserts later.
func (c ValidationConfig) Validate() error {
	type bound struct {
		name     string
		min, max float64
	}
	bounds := []bound{
		{"heart_rate", float64(c.HeartRateMin), float64(c.HeartRateMax)},
		{"systolic", float64(c.SystolicMin), float64(c.SystolicMax)},
		{"diastolic", float64(c.DiastolicMin), float64(c.DiastolicMax)},
		{"sleep_efficiency", c.SleepEfficiencyMin, c.SleepEfficiencyMax},
		{"respiratory_rate", float64(c.RespiratoryRateMin), float64(c.RespiratoryRateMax)},
		{"temperature_celsius", c.TemperatureCelsiusMin, c.TemperatureCelsiusMax},
		{"mood_valence", c.MoodValenceMin, c.MoodValenceMax},
		{"sleep_quality", float64(c.SleepQualityMin), float64(c.SleepQualityMax)},
	}
	for _, b := range bounds {
		if b.min >= b.max {
			return fmt.Errorf("config: invalid bound %s: min (%v) >= max (%v)", b.name, b.min, b.max)
		}
	}
	return nil
}

func envInt16(key string, def int16) int16 {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 16)
	if err != nil {
		return def
	}
	return int16(n)
}

func envInt32(key string, def int32) int32 {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return def
	}
	return int32(n)
}

func envFloat(key string, def float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
