// Copyright (C) 2024 self-sensored contributors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package config

// Metric family identifiers, shared by the model, adapter, chunk
// planner, deduplicator and repository packages so none of them need
// to restate the family set.
const (
	FamilyHeartRate        = "heart_rate"
	FamilyBloodPressure    = "blood_pressure"
	FamilySleep            = "sleep"
	FamilyActivity         = "activity"
	FamilyWorkout          = "workout"
	FamilyTemperature      = "temperature"
	FamilyBloodGlucose     = "blood_glucose"
	FamilyRespiratory      = "respiratory"
	FamilyBodyMeasurement  = "body_measurement"
	FamilyNutrition        = "nutrition"
	FamilyMindfulness      = "mindfulness"
	FamilyMentalHealth     = "mental_health"
	FamilySymptom          = "symptom"
	FamilyHygiene          = "hygiene"
	FamilyMenstrual        = "menstrual"
	FamilyFertility        = "fertility"
	FamilyEnvironmental    = "environmental"
	FamilyAudioExposure    = "audio_exposure"
	FamilySafetyEvent      = "safety_event"
)

// AllFamilies lists every known metric family in a stable order, used
// by the monitor and recovery tools when no specific family filter is
// given.
var AllFamilies = []string{
	FamilyHeartRate,
	FamilyBloodPressure,
	FamilySleep,
	FamilyActivity,
	FamilyWorkout,
	FamilyTemperature,
	FamilyBloodGlucose,
	FamilyRespiratory,
	FamilyBodyMeasurement,
	FamilyNutrition,
	FamilyMindfulness,
	FamilyMentalHealth,
	FamilySymptom,
	FamilyHygiene,
	FamilyMenstrual,
	FamilyFertility,
	FamilyEnvironmental,
	FamilyAudioExposure,
	FamilySafetyEvent,
}

// familyColumnCounts records, per family, a column count that is never
// below the number of parameters one row binds in its INSERT statement.
// Most entries are the family struct's field count, which includes
// created_at (left to its column default, so not bound) and, for blood
// pressure, pulse (not inserted); environmental and audio_exposure
// equal their bound count. The chunk planner (C4) divides
// PostgresMaxBindParams by this count to compute the maximum safe chunk
// size per family.
var familyColumnCounts = map[string]int{
	FamilyHeartRate:       13,
	FamilyBloodPressure:   8,
	FamilySleep:           12,
	FamilyActivity:        12,
	FamilyWorkout:         12,
	FamilyTemperature:     7,
	FamilyBloodGlucose:    8,
	FamilyRespiratory:     10,
	FamilyBodyMeasurement: 9,
	FamilyNutrition:       8,
	FamilyMindfulness:     7,
	FamilyMentalHealth:    11,
	FamilySymptom:         8,
	FamilyHygiene:         7,
	FamilyMenstrual:       7,
	FamilyFertility:       8,
	FamilyEnvironmental:   7,
	FamilyAudioExposure:   7,
	FamilySafetyEvent:     8,
}

// ColumnCount returns the per-row column count recorded for family,
// and whether the family is known.
func ColumnCount(family string) (int, bool) {
	n, ok := familyColumnCounts[family]
	return n, ok
}
