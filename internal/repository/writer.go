// Copyright (C) 2024 self-sensored contributors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package repository

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Ladvien/self-sensored-sub003/internal/config"
	"github.com/Ladvien/self-sensored-sub003/internal/metrics"
)

// dollar is this package's single squirrel StatementBuilder, fixed to
// Postgres's $1, $2, ... placeholder style.
var dollar = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// InsertChunk writes one chunk of same-family rows inside tx. Rows
// that collide with an existing natural key are silently skipped by
// ON CONFLICT DO NOTHING (first-write-wins, no read-before-write, per
// spec.md §4.5) — RowsAffected reports how many were genuinely new.
func InsertChunk(tx *sqlx.Tx, family string, rows []metrics.Metric) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	table, conflictCols, build, err := builderFor(family)
	if err != nil {
		return 0, err
	}

	ib := dollar.Insert(table).Columns(columnsFor(family)...)
	for _, row := range rows {
		values, err := build(row)
		if err != nil {
			return 0, fmt.Errorf("repository: building row for %s: %w", family, err)
		}
		ib = ib.Values(values...)
	}
	ib = ib.Suffix(fmt.Sprintf("ON CONFLICT (%s) DO NOTHING", conflictCols))

	query, args, err := ib.ToSql()
	if err != nil {
		return 0, fmt.Errorf("repository: building insert for %s: %w", family, err)
	}

	res, err := tx.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("repository: executing insert for %s: %w", family, err)
	}
	return res.RowsAffected()
}

type rowBuilder func(metrics.Metric) ([]any, error)

// columnsFor returns the INSERT column list for family, matching the
// column order builderFor's row builder produces. Keeping these two
// side by side (rather than deriving one from the other) mirrors the
// teacher's explicit schema.JobColumns style in
// _examples/ClusterCockpit-cc-backend/schema/job.go.
func columnsFor(family string) []string {
	switch family {
	case config.FamilyHeartRate:
		return []string{"id", "user_id", "recorded_at", "heart_rate", "resting_heart_rate",
			"heart_rate_variability", "walking_heart_rate_average", "heart_rate_recovery_one_minute",
			"atrial_fibrillation_burden_percent", "vo2_max_ml_kg_min", "context", "source_device"}
	case config.FamilyBloodPressure:
		return []string{"id", "user_id", "recorded_at", "systolic", "diastolic", "source_device"}
	case config.FamilySleep:
		return []string{"id", "user_id", "sleep_start", "sleep_end", "duration_minutes",
			"deep_sleep_minutes", "rem_sleep_minutes", "light_sleep_minutes", "awake_minutes",
			"efficiency", "source_device"}
	case config.FamilyActivity:
		return []string{"id", "user_id", "recorded_at", "step_count", "distance_meters",
			"flights_climbed", "active_energy_burned_kcal", "basal_energy_burned_kcal",
			"push_count", "wheelchair_distance_meters", "source_device"}
	case config.FamilyWorkout:
		return []string{"id", "user_id", "started_at", "ended_at", "workout_type",
			"total_energy_kcal", "active_energy_kcal", "avg_heart_rate", "max_heart_rate",
			"distance_meters", "source_device"}
	case config.FamilyTemperature:
		return []string{"id", "user_id", "recorded_at", "temperature_celsius", "context", "source_device"}
	case config.FamilyBloodGlucose:
		return []string{"id", "user_id", "recorded_at", "blood_glucose_mg_dl",
			"measurement_context", "insulin_delivery_units", "source_device"}
	case config.FamilyRespiratory:
		return []string{"id", "user_id", "recorded_at", "respiratory_rate", "oxygen_saturation",
			"forced_vital_capacity", "forced_expiratory_volume1", "peak_expiratory_flow_rate", "source_device"}
	case config.FamilyBodyMeasurement:
		return []string{"id", "user_id", "recorded_at", "body_weight_kg", "body_mass_index",
			"body_fat_percentage", "waist_circumference_cm", "source_device"}
	case config.FamilyNutrition:
		return []string{"id", "user_id", "recorded_at", "nutrient_type", "value", "unit", "source_device"}
	case config.FamilyMindfulness:
		return []string{"id", "user_id", "recorded_at", "duration_minutes", "type", "source_device"}
	case config.FamilyMentalHealth:
		return []string{"id", "user_id", "recorded_at", "mood_valence", "mood_labels",
			"depression_score", "anxiety_score", "sleep_quality_score", "stress_level_minutes", "source_device"}
	case config.FamilySymptom:
		return []string{"id", "user_id", "recorded_at", "symptom_type", "severity", "duration_minutes", "source_device"}
	case config.FamilyHygiene:
		return []string{"id", "user_id", "recorded_at", "event_type", "duration_seconds", "source_device"}
	case config.FamilyMenstrual:
		return []string{"id", "user_id", "recorded_at", "flow", "cycle_day", "source_device"}
	case config.FamilyFertility:
		return []string{"id", "user_id", "recorded_at", "basal_body_temperature",
			"cervical_mucus_quality", "ovulation_test_result", "source_device"}
	case config.FamilyEnvironmental:
		return []string{"id", "user_id", "recorded_at", "uv_index", "noise_exposure_db",
			"time_in_daylight_minutes", "source_device"}
	case config.FamilyAudioExposure:
		return []string{"id", "user_id", "recorded_at", "environmental_audio_db",
			"headphone_audio_db", "exposure_duration_minutes", "source_device"}
	case config.FamilySafetyEvent:
		return []string{"id", "user_id", "recorded_at", "event_type", "severity", "resolved", "source_device"}
	default:
		return nil
	}
}

// builderFor returns the target table, the natural-key column list
// (for the ON CONFLICT clause), and the per-row value builder for
// family.
func builderFor(family string) (table string, conflictCols string, build rowBuilder, err error) {
	switch family {
	case config.FamilyHeartRate:
		return family, "user_id, recorded_at", buildHeartRateRow, nil
	case config.FamilyBloodPressure:
		return family, "user_id, recorded_at", buildBloodPressureRow, nil
	case config.FamilySleep:
		return family, "user_id, sleep_start", buildSleepRow, nil
	case config.FamilyActivity:
		return family, "user_id, recorded_at", buildActivityRow, nil
	case config.FamilyWorkout:
		return family, "user_id, started_at", buildWorkoutRow, nil
	case config.FamilyTemperature:
		return family, "user_id, recorded_at", buildTemperatureRow, nil
	case config.FamilyBloodGlucose:
		return family, "user_id, recorded_at", buildBloodGlucoseRow, nil
	case config.FamilyRespiratory:
		return family, "user_id, recorded_at", buildRespiratoryRow, nil
	case config.FamilyBodyMeasurement:
		return family, "user_id, recorded_at", buildBodyMeasurementRow, nil
	case config.FamilyNutrition:
		return family, "user_id, recorded_at, nutrient_type", buildNutritionRow, nil
	case config.FamilyMindfulness:
		return family, "user_id, recorded_at", buildMindfulnessRow, nil
	case config.FamilyMentalHealth:
		return family, "user_id, recorded_at", buildMentalHealthRow, nil
	case config.FamilySymptom:
		return family, "user_id, recorded_at", buildSymptomRow, nil
	case config.FamilyHygiene:
		return family, "user_id, recorded_at", buildHygieneRow, nil
	case config.FamilyMenstrual:
		return family, "user_id, recorded_at", buildMenstrualRow, nil
	case config.FamilyFertility:
		return family, "user_id, recorded_at", buildFertilityRow, nil
	case config.FamilyEnvironmental:
		return family, "user_id, recorded_at", buildEnvironmentalRow, nil
	case config.FamilyAudioExposure:
		return family, "user_id, recorded_at", buildAudioExposureRow, nil
	case config.FamilySafetyEvent:
		return family, "user_id, recorded_at", buildSafetyEventRow, nil
	default:
		return "", "", nil, fmt.Errorf("repository: unknown family %q", family)
	}
}

func assertType[T any](m metrics.Metric, family string) (T, error) {
	v, ok := m.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("row is not a %s (got %T)", family, m)
	}
	return v, nil
}

func buildHeartRateRow(m metrics.Metric) ([]any, error) {
	r, err := assertType[*metrics.HeartRate](m, "heart_rate")
	if err != nil {
		return nil, err
	}
	return []any{r.ID, r.UserID, r.RecordedAt, r.HeartRate, r.RestingHeartRate,
		r.HeartRateVariability, r.WalkingHeartRateAverage, r.HeartRateRecoveryOneMinute,
		r.AtrialFibrillationBurdenPercent, r.VO2MaxMlKgMin, string(r.Context), r.SourceDevice}, nil
}

func buildBloodPressureRow(m metrics.Metric) ([]any, error) {
	r, err := assertType[*metrics.BloodPressure](m, "blood_pressure")
	if err != nil {
		return nil, err
	}
	return []any{r.ID, r.UserID, r.RecordedAt, r.Systolic, r.Diastolic, r.SourceDevice}, nil
}

func buildSleepRow(m metrics.Metric) ([]any, error) {
	r, err := assertType[*metrics.Sleep](m, "sleep")
	if err != nil {
		return nil, err
	}
	return []any{r.ID, r.UserID, r.SleepStart, r.SleepEnd, r.DurationMinutes,
		r.DeepSleepMinutes, r.RemSleepMinutes, r.LightSleepMinutes, r.AwakeMinutes,
		r.Efficiency, r.SourceDevice}, nil
}

func buildActivityRow(m metrics.Metric) ([]any, error) {
	r, err := assertType[*metrics.Activity](m, "activity")
	if err != nil {
		return nil, err
	}
	return []any{r.ID, r.UserID, r.RecordedAt, r.StepCount, r.DistanceMeters,
		r.FlightsClimbed, r.ActiveEnergyBurnedKcal, r.BasalEnergyBurnedKcal,
		r.PushCount, r.WheelchairDistanceMeters, r.SourceDevice}, nil
}

func buildWorkoutRow(m metrics.Metric) ([]any, error) {
	r, err := assertType[*metrics.Workout](m, "workout")
	if err != nil {
		return nil, err
	}
	return []any{r.ID, r.UserID, r.StartedAt, r.EndedAt, string(r.WorkoutType),
		r.TotalEnergyKcal, r.ActiveEnergyKcal, r.AvgHeartRate, r.MaxHeartRate,
		r.DistanceMeters, r.SourceDevice}, nil
}

func buildTemperatureRow(m metrics.Metric) ([]any, error) {
	r, err := assertType[*metrics.Temperature](m, "temperature")
	if err != nil {
		return nil, err
	}
	return []any{r.ID, r.UserID, r.RecordedAt, r.TemperatureCelsius, string(r.Context), r.SourceDevice}, nil
}

func buildBloodGlucoseRow(m metrics.Metric) ([]any, error) {
	r, err := assertType[*metrics.BloodGlucose](m, "blood_glucose")
	if err != nil {
		return nil, err
	}
	return []any{r.ID, r.UserID, r.RecordedAt, r.BloodGlucoseMgDl, string(r.MeasurementContext),
		r.InsulinDeliveryUnits, r.SourceDevice}, nil
}

func buildRespiratoryRow(m metrics.Metric) ([]any, error) {
	r, err := assertType[*metrics.Respiratory](m, "respiratory")
	if err != nil {
		return nil, err
	}
	return []any{r.ID, r.UserID, r.RecordedAt, r.RespiratoryRate, r.OxygenSaturation,
		r.ForcedVitalCapacity, r.ForcedExpiratoryVolume1, r.PeakExpiratoryFlowRate, r.SourceDevice}, nil
}

func buildBodyMeasurementRow(m metrics.Metric) ([]any, error) {
	r, err := assertType[*metrics.BodyMeasurement](m, "body_measurement")
	if err != nil {
		return nil, err
	}
	return []any{r.ID, r.UserID, r.RecordedAt, r.BodyWeightKg, r.BodyMassIndex,
		r.BodyFatPercentage, r.WaistCircumferenceCm, r.SourceDevice}, nil
}

func buildNutritionRow(m metrics.Metric) ([]any, error) {
	r, err := assertType[*metrics.Nutrition](m, "nutrition")
	if err != nil {
		return nil, err
	}
	return []any{r.ID, r.UserID, r.RecordedAt, string(r.NutrientType), r.Value, r.Unit, r.SourceDevice}, nil
}

func buildMindfulnessRow(m metrics.Metric) ([]any, error) {
	r, err := assertType[*metrics.Mindfulness](m, "mindfulness")
	if err != nil {
		return nil, err
	}
	return []any{r.ID, r.UserID, r.RecordedAt, r.DurationMinutes, string(r.Type), r.SourceDevice}, nil
}

func buildMentalHealthRow(m metrics.Metric) ([]any, error) {
	r, err := assertType[*metrics.MentalHealth](m, "mental_health")
	if err != nil {
		return nil, err
	}
	return []any{r.ID, r.UserID, r.RecordedAt, r.MoodValence, pq.Array(r.MoodLabels),
		r.DepressionScore, r.AnxietyScore, r.SleepQualityScore, r.StressLevelMinutes, r.SourceDevice}, nil
}

func buildSymptomRow(m metrics.Metric) ([]any, error) {
	r, err := assertType[*metrics.Symptom](m, "symptom")
	if err != nil {
		return nil, err
	}
	return []any{r.ID, r.UserID, r.RecordedAt, r.SymptomType, r.Severity, r.DurationMinutes, r.SourceDevice}, nil
}

func buildHygieneRow(m metrics.Metric) ([]any, error) {
	r, err := assertType[*metrics.Hygiene](m, "hygiene")
	if err != nil {
		return nil, err
	}
	return []any{r.ID, r.UserID, r.RecordedAt, string(r.EventType), r.DurationSeconds, r.SourceDevice}, nil
}

func buildMenstrualRow(m metrics.Metric) ([]any, error) {
	r, err := assertType[*metrics.Menstrual](m, "menstrual")
	if err != nil {
		return nil, err
	}
	return []any{r.ID, r.UserID, r.RecordedAt, string(r.Flow), r.CycleDay, r.SourceDevice}, nil
}

func buildFertilityRow(m metrics.Metric) ([]any, error) {
	r, err := assertType[*metrics.Fertility](m, "fertility")
	if err != nil {
		return nil, err
	}
	return []any{r.ID, r.UserID, r.RecordedAt, r.BasalBodyTemperature,
		r.CervicalMucusQuality, r.OvulationTestResult, r.SourceDevice}, nil
}

func buildEnvironmentalRow(m metrics.Metric) ([]any, error) {
	r, err := assertType[*metrics.Environmental](m, "environmental")
	if err != nil {
		return nil, err
	}
	return []any{r.ID, r.UserID, r.RecordedAt, r.UVIndex, r.NoiseExposureDb,
		r.TimeInDaylightMinutes, r.SourceDevice}, nil
}

func buildAudioExposureRow(m metrics.Metric) ([]any, error) {
	r, err := assertType[*metrics.AudioExposure](m, "audio_exposure")
	if err != nil {
		return nil, err
	}
	return []any{r.ID, r.UserID, r.RecordedAt, r.EnvironmentalAudioDb,
		r.HeadphoneAudioDb, r.ExposureDurationMinutes, r.SourceDevice}, nil
}

func buildSafetyEventRow(m metrics.Metric) ([]any, error) {
	r, err := assertType[*metrics.SafetyEvent](m, "safety_event")
	if err != nil {
		return nil, err
	}
	return []any{r.ID, r.UserID, r.RecordedAt, string(r.EventType), r.Severity, r.Resolved, r.SourceDevice}, nil
}
