package metrics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Ladvien/self-sensored-sub003/internal/config"
)

func TestBloodPressureValidate(t *testing.T) {
	cfg := config.DefaultValidationConfig()

	valid := &BloodPressure{UserID: uuid.New(), RecordedAt: time.Now(), Systolic: 120, Diastolic: 80}
	assert.NoError(t, valid.Validate(&cfg))

	inverted := &BloodPressure{UserID: uuid.New(), RecordedAt: time.Now(), Systolic: 80, Diastolic: 80}
	assert.Error(t, inverted.Validate(&cfg))

	tooHigh := &BloodPressure{UserID: uuid.New(), RecordedAt: time.Now(), Systolic: 10, Diastolic: 300}
	assert.Error(t, tooHigh.Validate(&cfg))
}

func TestBloodPressureCritical(t *testing.T) {
	cfg := config.DefaultValidationConfig()
	m := &BloodPressure{Systolic: 185, Diastolic: 90}
	assert.True(t, m.IsCriticalCondition(&cfg))
}

func TestHeartRateValidate(t *testing.T) {
	cfg := config.DefaultValidationConfig()
	hr := int16(75)
	ok := &HeartRate{UserID: uuid.New(), RecordedAt: time.Now(), HeartRate: &hr}
	assert.NoError(t, ok.Validate(&cfg))

	bad := int16(500)
	tooHigh := &HeartRate{UserID: uuid.New(), RecordedAt: time.Now(), HeartRate: &bad}
	assert.Error(t, tooHigh.Validate(&cfg))
}

func TestSleepValidate(t *testing.T) {
	cfg := config.DefaultValidationConfig()
	start := time.Now()

	good := &Sleep{UserID: uuid.New(), SleepStart: start, SleepEnd: start.Add(8 * time.Hour)}
	assert.NoError(t, good.Validate(&cfg))

	inverted := &Sleep{UserID: uuid.New(), SleepStart: start, SleepEnd: start.Add(-time.Hour)}
	assert.Error(t, inverted.Validate(&cfg))

	deep := int32(600)
	overBudget := &Sleep{UserID: uuid.New(), SleepStart: start, SleepEnd: start.Add(time.Hour), DeepSleepMinutes: &deep}
	assert.Error(t, overBudget.Validate(&cfg))
}

func TestActivityWheelchairPersonalization(t *testing.T) {
	cfg := config.DefaultValidationConfig()
	steps := int32(50000)
	a := &Activity{UserID: uuid.New(), RecordedAt: time.Now(), StepCount: &steps}
	assert.NoError(t, a.ValidateWithCharacteristics(&cfg, nil))

	huge := int32(300000)
	a2 := &Activity{UserID: uuid.New(), RecordedAt: time.Now(), StepCount: &huge}
	assert.Error(t, a2.ValidateWithCharacteristics(&cfg, nil))

	// A wheelchair user with the same huge step count is exempt from
	// the step-count bound entirely.
	assert.NoError(t, a2.ValidateWithCharacteristics(&cfg, &Characteristics{UsesWheelchair: true}))
}

func TestWorkoutValidate(t *testing.T) {
	cfg := config.DefaultValidationConfig()
	start := time.Now()

	active, total := 500.0, 400.0
	bad := &Workout{UserID: uuid.New(), StartedAt: start, EndedAt: start.Add(time.Hour), ActiveEnergyKcal: &active, TotalEnergyKcal: &total}
	assert.Error(t, bad.Validate(&cfg))

	avgHR, maxHR := int16(180), int16(150)
	badHR := &Workout{UserID: uuid.New(), StartedAt: start, EndedAt: start.Add(time.Hour), AvgHeartRate: &avgHR, MaxHeartRate: &maxHR}
	assert.Error(t, badHR.Validate(&cfg))
}

func TestNaturalKeyPrecision(t *testing.T) {
	uid := uuid.New()
	base := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	a := &Activity{UserID: uid, RecordedAt: base}
	b := &Activity{UserID: uid, RecordedAt: base.Add(50 * time.Millisecond)}

	assert.NotEqual(t, a.NaturalKey(), b.NaturalKey())

	c := &Activity{UserID: uid, RecordedAt: base}
	assert.Equal(t, a.NaturalKey(), c.NaturalKey())
}
