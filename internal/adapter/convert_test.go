package adapter

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ladvien/self-sensored-sub003/internal/metrics"
)

func TestConvertVendorPairsBloodPressure(t *testing.T) {
	raw := `{
		"data": {
			"metrics": [
				{"name": "HKQuantityTypeIdentifierBloodPressureSystolic", "units": "mmHg",
				 "data": [{"date": "2025-09-18 10:05:00 -0500", "qty": 120.0, "source": "cuff"}]},
				{"name": "HKQuantityTypeIdentifierBloodPressureDiastolic", "units": "mmHg",
				 "data": [{"date": "2025-09-18 10:05:00 -0500", "qty": 80.0, "source": "cuff"}]}
			]
		}
	}`

	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	require.True(t, env.IsVendorShape())

	userID := uuid.New()
	result, err := Convert(env, userID)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)

	bp, ok := result.Rows[0].(*metrics.BloodPressure)
	require.True(t, ok)
	assert.Equal(t, int16(120), bp.Systolic)
	assert.Equal(t, int16(80), bp.Diastolic)
	assert.Equal(t, userID, bp.UserID)
	assert.NotEqual(t, uuid.Nil, bp.ID)
}

func TestConvertVendorLegacyAndFormalNamesProduceSameFamily(t *testing.T) {
	raw := `{
		"data": {
			"metrics": [
				{"name": "HKQuantityTypeIdentifierHeartRate", "units": "count/min",
				 "data": [{"date": "2025-09-18 10:00:00 -0500", "qty": 72.0, "source": "Apple Watch"}]},
				{"name": "heart_rate", "units": "count/min",
				 "data": [{"date": "2025-09-18 10:03:00 -0500", "qty": 68.0, "source": "Manual Entry"}]}
			]
		}
	}`

	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env))

	result, err := Convert(env, uuid.New())
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)

	for _, row := range result.Rows {
		assert.Equal(t, "heart_rate", row.Family())
	}
}

func TestConvertVendorDropsUnknownMetricName(t *testing.T) {
	raw := `{
		"data": {
			"metrics": [
				{"name": "SomeUnknownMetric", "data": [{"date": "2025-09-18 10:00:00 -0500", "qty": 1.0}]}
			]
		}
	}`

	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env))

	result, err := Convert(env, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, result.Rows)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "SomeUnknownMetric", result.Errors[0].MetricName)
}

func TestConvertVendorSleepRange(t *testing.T) {
	raw := `{
		"data": {
			"metrics": [
				{"name": "HKCategoryTypeIdentifierSleepAnalysis",
				 "data": [{"source": "iPhone", "start": "2025-09-17 22:00:00 -0500", "end": "2025-09-18 06:00:00 -0500"}]}
			]
		}
	}`

	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env))

	result, err := Convert(env, uuid.New())
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)

	sleep, ok := result.Rows[0].(*metrics.Sleep)
	require.True(t, ok)
	assert.True(t, sleep.SleepEnd.After(sleep.SleepStart))
}

func TestConvertInternalShape(t *testing.T) {
	raw := `{
		"metrics": [
			{"family": "heart_rate", "RecordedAt": "2025-09-18T10:00:00Z", "HeartRate": 72}
		]
	}`

	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	require.False(t, env.IsVendorShape())

	result, err := Convert(env, uuid.New())
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)

	hr, ok := result.Rows[0].(*metrics.HeartRate)
	require.True(t, ok)
	require.NotNil(t, hr.HeartRate)
	assert.Equal(t, int16(72), *hr.HeartRate)
}
