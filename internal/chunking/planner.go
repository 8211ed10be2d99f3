// Copyright (C) 2024 self-sensored contributors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package chunking implements C4: the per-family chunk planner. This
// is the central defensive invariant of the whole service — exceeding
// the driver's bound-parameter ceiling produces opaque per-statement
// failures that look like data corruption to clients.
package chunking

import (
	"fmt"

	"github.com/Ladvien/self-sensored-sub003/internal/config"
)

// Plan is the per-family chunk size computed for one batch.
type Plan struct {
	Sizes map[string]int
}

// SizeFor returns the planned chunk size for family, or 0 if the
// family is unknown (callers should treat that as "drop the row
// before it reaches chunking").
func (p Plan) SizeFor(family string) int {
	return p.Sizes[family]
}

// Compute returns the maximum safe chunk size for every known metric
// family given cfg. A per-family override in cfg.ChunkSizeOverrides
// wins when present (and was already bounds-checked by
// BatchConfig.Validate at start-up); otherwise the size is
//
//	floor((P_max * safety_factor) / columns_per_row)
func Compute(cfg config.BatchConfig) (Plan, error) {
	if cfg.SafetyFactor <= 0 || cfg.SafetyFactor > 1 {
		return Plan{}, fmt.Errorf("chunking: safety_factor must be in (0,1], got %v", cfg.SafetyFactor)
	}

	sizes := make(map[string]int, len(config.AllFamilies))
	budget := float64(config.PostgresMaxBindParams) * cfg.SafetyFactor

	for _, family := range config.AllFamilies {
		if override, ok := cfg.ChunkSizeOverrides[family]; ok && override > 0 {
			sizes[family] = override
			continue
		}

		columns, ok := config.ColumnCount(family)
		if !ok || columns <= 0 {
			return Plan{}, fmt.Errorf("chunking: unknown column count for family %q", family)
		}

		size := int(budget) / columns
		if size < 1 {
			return Plan{}, fmt.Errorf("chunking: computed chunk size for %q is zero; safety_factor too small or column count too large", family)
		}
		sizes[family] = size
	}

	return Plan{Sizes: sizes}, nil
}

// SplitIndices returns the [start,end) boundaries that split n rows
// into chunks no larger than chunkSize. It never allocates the
// underlying rows, only index ranges, so callers can slice their own
// family-specific row slices.
func SplitIndices(n, chunkSize int) [][2]int {
	if chunkSize <= 0 || n <= 0 {
		return nil
	}
	ranges := make([][2]int, 0, (n+chunkSize-1)/chunkSize)
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		ranges = append(ranges, [2]int{start, end})
	}
	return ranges
}
