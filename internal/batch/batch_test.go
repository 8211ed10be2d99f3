package batch

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/Ladvien/self-sensored-sub003/internal/config"
	"github.com/Ladvien/self-sensored-sub003/internal/metrics"
)

func TestIsTransientConnectionException(t *testing.T) {
	err := &pq.Error{Code: "08006"} // connection_failure
	assert.True(t, isTransient(err))
}

func TestIsTransientSerializationFailure(t *testing.T) {
	err := &pq.Error{Code: "40001"}
	assert.True(t, isTransient(err))
}

func TestIsTransientFalseForConstraintViolation(t *testing.T) {
	err := &pq.Error{Code: "23514"} // check_violation
	assert.False(t, isTransient(err))
}

func TestIsTransientUnwrapsWrappedPQError(t *testing.T) {
	inner := &pq.Error{Code: "40P01"} // deadlock_detected
	wrapped := fmt.Errorf("executing chunk: %w", inner)
	assert.True(t, isTransient(wrapped))
}

func TestIsTransientDefaultsTrueForNonPQError(t *testing.T) {
	assert.True(t, isTransient(errors.New("dial tcp: connection refused")))
}

func TestOverMemoryBudget(t *testing.T) {
	p := &Processor{BatchCfg: config.BatchConfig{MemoryLimitMB: 1}}
	small := make([]metrics.Metric, 10)
	assert.False(t, p.overMemoryBudget(small))

	huge := make([]metrics.Metric, 10_000_000)
	assert.True(t, p.overMemoryBudget(huge))
}

func TestCopyCountsIsIndependentSnapshot(t *testing.T) {
	var mu sync.Mutex
	m := map[string]int{"heart_rate": 3}
	snap := copyCounts(m, &mu)
	m["heart_rate"] = 99
	assert.Equal(t, 3, snap["heart_rate"])
}

func TestChunkProgressCarriesTotals(t *testing.T) {
	p := ChunkProgress{ChunksCompleted: 2, ChunksTotal: 5, FamilyCounts: map[string]int{"activity": 4}}
	assert.Equal(t, 2, p.ChunksCompleted)
	assert.Equal(t, 5, p.ChunksTotal)
	assert.Equal(t, 4, p.FamilyCounts["activity"])
}

func TestDedupStatsDefaultsToEmptyMap(t *testing.T) {
	r := Result{}
	assert.Nil(t, r.DedupStats.RemovedByFamily)
	assert.Equal(t, 0, r.FailedCount)
	assert.WithinDuration(t, time.Now(), time.Now(), time.Second)
}
