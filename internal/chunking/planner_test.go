package chunking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ladvien/self-sensored-sub003/internal/config"
)

func TestComputeRespectsParamCeiling(t *testing.T) {
	cfg := config.DefaultBatchConfig()
	plan, err := Compute(cfg)
	require.NoError(t, err)

	for _, family := range config.AllFamilies {
		columns, ok := config.ColumnCount(family)
		require.True(t, ok, family)
		size := plan.SizeFor(family)
		require.Greater(t, size, 0, family)
		assert.LessOrEqual(t, size*columns, config.PostgresMaxBindParams, family)
	}
}

func TestComputeHonorsOverride(t *testing.T) {
	cfg := config.DefaultBatchConfig()
	cfg.ChunkSizeOverrides[config.FamilyHeartRate] = 100

	plan, err := Compute(cfg)
	require.NoError(t, err)
	assert.Equal(t, 100, plan.SizeFor(config.FamilyHeartRate))
}

func TestComputeRejectsBadSafetyFactor(t *testing.T) {
	cfg := config.DefaultBatchConfig()
	cfg.SafetyFactor = 0
	_, err := Compute(cfg)
	assert.Error(t, err)

	cfg.SafetyFactor = 1.5
	_, err = Compute(cfg)
	assert.Error(t, err)
}

func TestSplitIndices(t *testing.T) {
	ranges := SplitIndices(10, 3)
	assert.Equal(t, [][2]int{{0, 3}, {3, 6}, {6, 9}, {9, 10}}, ranges)

	assert.Nil(t, SplitIndices(0, 3))
	assert.Nil(t, SplitIndices(10, 0))
}
