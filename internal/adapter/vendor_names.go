// Copyright (C) 2024 self-sensored contributors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package adapter

import "github.com/Ladvien/self-sensored-sub003/internal/config"

// field identifies which struct field of a family a vendor metric
// name maps onto. Most families have exactly one vendor-mappable
// field per metric name (e.g. HeartRate.HeartRate), but a handful of
// vendor names feed one of several fields on the same family
// (Activity has StepCount, DistanceMeters, ActiveEnergyBurnedKcal...).
type field string

const (
	fieldHeartRate                   field = "heart_rate"
	fieldRestingHeartRate            field = "resting_heart_rate"
	fieldWalkingHeartRateAverage     field = "walking_heart_rate_average"
	fieldHeartRateVariability        field = "heart_rate_variability"
	fieldHeartRateRecoveryOneMinute  field = "heart_rate_recovery_one_minute"
	fieldVO2Max                      field = "vo2_max"
	fieldBPSystolic                  field = "bp_systolic"
	fieldBPDiastolic                 field = "bp_diastolic"
	fieldStepCount                   field = "step_count"
	fieldDistanceMeters              field = "distance_meters"
	fieldFlightsClimbed              field = "flights_climbed"
	fieldActiveEnergyBurnedKcal      field = "active_energy_burned_kcal"
	fieldBasalEnergyBurnedKcal       field = "basal_energy_burned_kcal"
	fieldPushCount                   field = "push_count"
	fieldWheelchairDistanceMeters    field = "wheelchair_distance_meters"
	fieldBodyTemperature             field = "body_temperature"
	fieldBasalBodyTemperature        field = "basal_body_temperature"
	fieldWaterTemperature            field = "water_temperature"
	fieldEnvironmentalAudioExposure  field = "environmental_audio_exposure"
	fieldHeadphoneAudioExposure      field = "headphone_audio_exposure"
	fieldBodyWeightKg                field = "body_weight_kg"
	fieldBodyMassIndex               field = "body_mass_index"
	fieldBodyFatPercentage           field = "body_fat_percentage"
	fieldWaistCircumferenceCm        field = "waist_circumference_cm"
	fieldBloodGlucose                field = "blood_glucose"
	fieldRespiratoryRate             field = "respiratory_rate"
	fieldOxygenSaturation            field = "oxygen_saturation"
	fieldUVIndex                     field = "uv_index"
	fieldTimeInDaylightMinutes       field = "time_in_daylight_minutes"
	fieldNoiseExposureDb             field = "noise_exposure_db"
	fieldFallDetection               field = "fall_detection"
	fieldSleepAnalysis               field = "sleep_analysis"
	fieldMindfulSession              field = "mindful_session"
)

// mapping is the resolved (family, field) a vendor name converts to.
type mapping struct {
	family string
	field  field
}

// vendorNameTable maps both formal HealthKit-style identifiers and
// legacy short names to the same internal (family, field) pair, per
// spec.md §4.3's backward-compatibility requirement: "identifier and
// short-name for the same concept must produce the same internal
// variant."
var vendorNameTable = map[string]mapping{
	// Heart rate — formal identifiers.
	"HKQuantityTypeIdentifierHeartRate":                  {config.FamilyHeartRate, fieldHeartRate},
	"HKQuantityTypeIdentifierRestingHeartRate":           {config.FamilyHeartRate, fieldRestingHeartRate},
	"HKQuantityTypeIdentifierWalkingHeartRateAverage":    {config.FamilyHeartRate, fieldWalkingHeartRateAverage},
	"HKQuantityTypeIdentifierHeartRateVariabilitySDNN":   {config.FamilyHeartRate, fieldHeartRateVariability},
	"HKQuantityTypeIdentifierHeartRateRecoveryOneMinute": {config.FamilyHeartRate, fieldHeartRateRecoveryOneMinute},
	"HKQuantityTypeIdentifierVO2Max":                     {config.FamilyHeartRate, fieldVO2Max},
	// Heart rate — legacy short names.
	"heart_rate":          {config.FamilyHeartRate, fieldHeartRate},
	"resting_heart_rate":  {config.FamilyHeartRate, fieldRestingHeartRate},
	"heart_rate_variability": {config.FamilyHeartRate, fieldHeartRateVariability},

	// Blood pressure.
	"HKQuantityTypeIdentifierBloodPressureSystolic":  {config.FamilyBloodPressure, fieldBPSystolic},
	"HKQuantityTypeIdentifierBloodPressureDiastolic": {config.FamilyBloodPressure, fieldBPDiastolic},
	"blood_pressure_systolic":                        {config.FamilyBloodPressure, fieldBPSystolic},
	"blood_pressure_diastolic":                        {config.FamilyBloodPressure, fieldBPDiastolic},

	// Activity.
	"HKQuantityTypeIdentifierStepCount":               {config.FamilyActivity, fieldStepCount},
	"HKQuantityTypeIdentifierDistanceWalkingRunning":  {config.FamilyActivity, fieldDistanceMeters},
	"HKQuantityTypeIdentifierDistanceCycling":         {config.FamilyActivity, fieldDistanceMeters},
	"HKQuantityTypeIdentifierDistanceSwimming":        {config.FamilyActivity, fieldDistanceMeters},
	"HKQuantityTypeIdentifierDistanceWheelchair":      {config.FamilyActivity, fieldWheelchairDistanceMeters},
	"HKQuantityTypeIdentifierActiveEnergyBurned":      {config.FamilyActivity, fieldActiveEnergyBurnedKcal},
	"HKQuantityTypeIdentifierBasalEnergyBurned":       {config.FamilyActivity, fieldBasalEnergyBurnedKcal},
	"HKQuantityTypeIdentifierFlightsClimbed":          {config.FamilyActivity, fieldFlightsClimbed},
	"HKQuantityTypeIdentifierPushCount":               {config.FamilyActivity, fieldPushCount},
	"steps":    {config.FamilyActivity, fieldStepCount},
	"calories": {config.FamilyActivity, fieldActiveEnergyBurnedKcal},

	// Temperature.
	"HKQuantityTypeIdentifierBodyTemperature":              {config.FamilyTemperature, fieldBodyTemperature},
	"HKQuantityTypeIdentifierBasalBodyTemperature":          {config.FamilyTemperature, fieldBasalBodyTemperature},
	"HKQuantityTypeIdentifierAppleSleepingWristTemperature": {config.FamilyTemperature, fieldBodyTemperature},
	"HKQuantityTypeIdentifierWaterTemperature":              {config.FamilyTemperature, fieldWaterTemperature},
	"body_temperature": {config.FamilyTemperature, fieldBodyTemperature},

	// Blood glucose / respiratory.
	"HKQuantityTypeIdentifierBloodGlucose":     {config.FamilyBloodGlucose, fieldBloodGlucose},
	"blood_glucose":                            {config.FamilyBloodGlucose, fieldBloodGlucose},
	"HKQuantityTypeIdentifierRespiratoryRate":  {config.FamilyRespiratory, fieldRespiratoryRate},
	"HKQuantityTypeIdentifierOxygenSaturation": {config.FamilyRespiratory, fieldOxygenSaturation},
	"respiratory_rate":    {config.FamilyRespiratory, fieldRespiratoryRate},
	"oxygen_saturation":   {config.FamilyRespiratory, fieldOxygenSaturation},

	// Body measurement.
	"HKQuantityTypeIdentifierBodyMass":          {config.FamilyBodyMeasurement, fieldBodyWeightKg},
	"HKQuantityTypeIdentifierBodyMassIndex":     {config.FamilyBodyMeasurement, fieldBodyMassIndex},
	"HKQuantityTypeIdentifierBodyFatPercentage": {config.FamilyBodyMeasurement, fieldBodyFatPercentage},
	"HKQuantityTypeIdentifierWaistCircumference": {config.FamilyBodyMeasurement, fieldWaistCircumferenceCm},
	"body_weight": {config.FamilyBodyMeasurement, fieldBodyWeightKg},

	// Environmental / audio.
	"HKQuantityTypeIdentifierUVExposure":              {config.FamilyEnvironmental, fieldUVIndex},
	"HKQuantityTypeIdentifierTimeInDaylight":          {config.FamilyEnvironmental, fieldTimeInDaylightMinutes},
	"uv_exposure":       {config.FamilyEnvironmental, fieldUVIndex},
	"time_in_daylight":  {config.FamilyEnvironmental, fieldTimeInDaylightMinutes},
	"HKQuantityTypeIdentifierEnvironmentalAudioExposure": {config.FamilyAudioExposure, fieldEnvironmentalAudioExposure},
	"HKQuantityTypeIdentifierHeadphoneAudioExposure":     {config.FamilyAudioExposure, fieldHeadphoneAudioExposure},

	// Category-type (range or flag) identifiers.
	"HKCategoryTypeIdentifierSleepAnalysis":    {config.FamilySleep, fieldSleepAnalysis},
	"HKCategoryTypeIdentifierMindfulSession":   {config.FamilyMindfulness, fieldMindfulSession},
	"HKCategoryTypeIdentifierFallDetection":    {config.FamilySafetyEvent, fieldFallDetection},
	"fall_detection": {config.FamilySafetyEvent, fieldFallDetection},
}

// resolve looks up a vendor metric name, returning ok=false for
// anything not in the table — the caller logs and drops the row per
// spec.md §4.3's unknown-metric handling.
func resolve(name string) (mapping, bool) {
	m, ok := vendorNameTable[name]
	return m, ok
}
