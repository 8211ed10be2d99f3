package dedup

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Ladvien/self-sensored-sub003/internal/metrics"
)

func TestDedupRemovesExactNaturalKeyCollisions(t *testing.T) {
	uid := uuid.New()
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	steps1 := int32(1000)
	steps2 := int32(2000)
	rows := []metrics.Metric{
		&metrics.Activity{UserID: uid, RecordedAt: at, StepCount: &steps1},
		&metrics.Activity{UserID: uid, RecordedAt: at, StepCount: &steps2},
		&metrics.Activity{UserID: uid, RecordedAt: at.Add(time.Second)},
	}

	result := Dedup(rows)
	assert.Len(t, result.Kept, 2)
	assert.Equal(t, 1, result.Removed)
	assert.Equal(t, &steps1, result.Kept[0].(*metrics.Activity).StepCount)
}

func TestDedupByFamilyIsIndependentPerFamily(t *testing.T) {
	uid := uuid.New()
	at := time.Now()

	byFamily := map[string][]metrics.Metric{
		"activity":   {&metrics.Activity{UserID: uid, RecordedAt: at}, &metrics.Activity{UserID: uid, RecordedAt: at}},
		"heart_rate": {&metrics.HeartRate{UserID: uid, RecordedAt: at}},
	}

	results := DedupByFamily(byFamily)
	assert.Equal(t, 1, results["activity"].Removed)
	assert.Equal(t, 0, results["heart_rate"].Removed)
}
