// Copyright (C) 2024 self-sensored contributors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package metrics

// ActivityContext describes what the wearer was doing when a sample
// was recorded.
type ActivityContext string

const (
	ActivityContextUnknown  ActivityContext = "unknown"
	ActivityContextResting  ActivityContext = "resting"
	ActivityContextWalking  ActivityContext = "walking"
	ActivityContextExercise ActivityContext = "exercise"
	ActivityContextSleeping ActivityContext = "sleeping"
)

// WorkoutType enumerates the supported workout categories.
type WorkoutType string

const (
	WorkoutTypeUnknown   WorkoutType = "unknown"
	WorkoutTypeRunning   WorkoutType = "running"
	WorkoutTypeCycling   WorkoutType = "cycling"
	WorkoutTypeSwimming  WorkoutType = "swimming"
	WorkoutTypeStrength  WorkoutType = "strength_training"
	WorkoutTypeWalking   WorkoutType = "walking"
	WorkoutTypeHIIT      WorkoutType = "hiit"
	WorkoutTypeYoga      WorkoutType = "yoga"
	WorkoutTypeWheelchair WorkoutType = "wheelchair"
)

// TemperatureContext records which body temperature sensor produced a
// reading.
type TemperatureContext string

const (
	TemperatureContextBody     TemperatureContext = "body"
	TemperatureContextBasal    TemperatureContext = "basal"
	TemperatureContextWater    TemperatureContext = "water"
	TemperatureContextAmbient  TemperatureContext = "ambient"
)

// GlucoseMeasurementContext records the circumstances of a blood
// glucose reading.
type GlucoseMeasurementContext string

const (
	GlucoseContextFasting    GlucoseMeasurementContext = "fasting"
	GlucoseContextPostMeal   GlucoseMeasurementContext = "post_meal"
	GlucoseContextRandom     GlucoseMeasurementContext = "random"
	GlucoseContextContinuous GlucoseMeasurementContext = "continuous"
)

// NutrientType enumerates the macro/micronutrients tracked by the
// nutrition family.
type NutrientType string

const (
	NutrientEnergyKcal NutrientType = "energy_kcal"
	NutrientProtein    NutrientType = "protein_g"
	NutrientCarbs      NutrientType = "carbohydrates_g"
	NutrientFat        NutrientType = "fat_total_g"
	NutrientFiber      NutrientType = "fiber_g"
	NutrientSugar      NutrientType = "sugar_g"
	NutrientSodium     NutrientType = "sodium_mg"
	NutrientWater      NutrientType = "water_ml"
	NutrientCaffeine   NutrientType = "caffeine_mg"
)

// MindfulnessType enumerates the supported mindfulness session kinds.
type MindfulnessType string

const (
	MindfulnessMeditation MindfulnessType = "meditation"
	MindfulnessBreathing  MindfulnessType = "breathing"
	MindfulnessBodyScan   MindfulnessType = "body_scan"
)

// MenstrualFlow enumerates flow intensity levels.
type MenstrualFlow string

const (
	MenstrualFlowNone     MenstrualFlow = "none"
	MenstrualFlowSpotting MenstrualFlow = "spotting"
	MenstrualFlowLight    MenstrualFlow = "light"
	MenstrualFlowMedium   MenstrualFlow = "medium"
	MenstrualFlowHeavy    MenstrualFlow = "heavy"
)

// HygieneEventType enumerates tracked hygiene events.
type HygieneEventType string

const (
	HygieneHandwashing  HygieneEventType = "handwashing"
	HygieneToothbrushing HygieneEventType = "toothbrushing"
	HygieneShowering    HygieneEventType = "showering"
)

// SafetyEventType enumerates device-detected safety events.
type SafetyEventType string

const (
	SafetyEventFall          SafetyEventType = "fall"
	SafetyEventHardLanding   SafetyEventType = "hard_landing"
	SafetyEventCrashDetected SafetyEventType = "crash_detected"
)
