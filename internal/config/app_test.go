package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withEnv(t *testing.T, kv map[string]string, fn func()) {
	t.Helper()
	for k, v := range kv {
		t.Setenv(k, v)
	}
	fn()
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadAppliesDefaultsForNewAmbientFields(t *testing.T) {
	withEnv(t, map[string]string{"DATABASE_URL": "postgres://localhost/test"}, func() {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 10.0, cfg.RateLimitPerSecond)
		assert.Equal(t, 20, cfg.RateLimitBurst)
		assert.Equal(t, 30*time.Minute, cfg.RateLimitIdleTTL)
		assert.Equal(t, 1000, cfg.AsyncQueueSize)
		assert.Equal(t, 4, cfg.AsyncWorkers)
		assert.Equal(t, 10000, cfg.RespCacheMaxEntries)
		assert.Equal(t, 3, cfg.MentalHealthPartitionMonthsAhead)
		assert.Equal(t, 2*time.Hour, cfg.StaleQueueThreshold)
		assert.Equal(t, 15*time.Minute, cfg.StaleQueueSweepInterval)
	})
}

func TestLoadReadsJWTSecretFromEnv(t *testing.T) {
	withEnv(t, map[string]string{
		"DATABASE_URL": "postgres://localhost/test",
		"JWT_SECRET":   "shh",
	}, func() {
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "shh", cfg.JWTSecret)
	})
}

func TestLoadOverridesAsyncThresholdBytes(t *testing.T) {
	withEnv(t, map[string]string{
		"DATABASE_URL":          "postgres://localhost/test",
		"ASYNC_THRESHOLD_BYTES": "5242880",
	}, func() {
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, int64(5242880), cfg.Batch.AsyncThresholdBytes)
	})
}
