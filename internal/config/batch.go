// Copyright (C) 2024 self-sensored contributors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// PostgresMaxBindParams is PostgreSQL's hard per-statement
// bound-parameter ceiling. It is not configurable: it is a property
// of the wire protocol, not a tunable.
const PostgresMaxBindParams = 65535

// BatchConfig holds every tunable the chunk planner and batch
// processor read. Values are overridable via environment variables so
// an operator can tighten memory or parallelism without a rebuild.
type BatchConfig struct {
	SafetyFactor float64

	EnableParallel      bool
	ParallelChunkLimit  int
	MemoryLimitMB       int
	MaxRetries          int
	InitialBackoff      time.Duration
	MaxBackoff          time.Duration
	ProgressEnabled     bool
	AsyncThresholdBytes int64

	// ChunkSizeOverrides lets an operator pin a family's chunk size
	// rather than rely on the computed safe maximum. A value of 0
	// means "no override, use the computed value".
	ChunkSizeOverrides map[string]int
}

// DefaultBatchConfig mirrors the defaults implied by the original
// recovery tool (batch_size: 100) scaled up for steady-state ingest,
// and the "~10 MB" async-handoff hint from spec.md §4.10 / §9.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		SafetyFactor:        0.9,
		EnableParallel:      true,
		ParallelChunkLimit:  5,
		MemoryLimitMB:       512,
		MaxRetries:          3,
		InitialBackoff:      100 * time.Millisecond,
		MaxBackoff:          5 * time.Second,
		ProgressEnabled:      true,
		AsyncThresholdBytes: 10 * 1024 * 1024,
		ChunkSizeOverrides:  map[string]int{},
	}
}

// BatchConfigFromEnv applies BATCH_* overrides documented in spec.md §6.
func BatchConfigFromEnv() BatchConfig {
	c := DefaultBatchConfig()

	if v, ok := os.LookupEnv("BATCH_SAFETY_FACTOR"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.SafetyFactor = f
		}
	}
	if v, ok := os.LookupEnv("BATCH_ENABLE_PARALLEL"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.EnableParallel = b
		}
	}
	if v, ok := os.LookupEnv("BATCH_PARALLEL_CHUNK_LIMIT"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.ParallelChunkLimit = n
		}
	}
	if v, ok := os.LookupEnv("BATCH_MEMORY_LIMIT_MB"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MemoryLimitMB = n
		}
	}
	if v, ok := os.LookupEnv("BATCH_MAX_RETRIES"); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.MaxRetries = n
		}
	}
	if v, ok := os.LookupEnv("BATCH_INITIAL_BACKOFF_MS"); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.InitialBackoff = time.Duration(n) * time.Millisecond
		}
	}
	if v, ok := os.LookupEnv("BATCH_MAX_BACKOFF_MS"); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.MaxBackoff = time.Duration(n) * time.Millisecond
		}
	}
	if v, ok := os.LookupEnv("ASYNC_THRESHOLD_BYTES"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			c.AsyncThresholdBytes = n
		}
	}

	for family, columns := range familyColumnCounts {
		key := "BATCH_CHUNK_SIZE_" + envKeyFromFamily(family)
		if v, ok := os.LookupEnv(key); ok {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				c.ChunkSizeOverrides[family] = n
			}
		}
		_ = columns
	}

	return c
}

// Validate refuses any user-supplied chunk-size override whose total
// bound-parameter usage would exceed PostgresMaxBindParams, and any
// nonsensical resource bound. This is the defensive invariant called
// out in spec.md §4.4: exceeding the driver's parameter ceiling
// produces opaque per-statement failures that look like data
// corruption to clients, so it must never be allowed to reach runtime.
func (c BatchConfig) Validate() error {
	if c.SafetyFactor <= 0 || c.SafetyFactor > 1 {
		return fmt.Errorf("config: safety_factor must be in (0,1], got %v", c.SafetyFactor)
	}
	if c.ParallelChunkLimit <= 0 {
		return fmt.Errorf("config: parallel_chunk_limit must be positive, got %d", c.ParallelChunkLimit)
	}
	if c.MemoryLimitMB <= 0 {
		return fmt.Errorf("config: memory_limit_mb must be positive, got %d", c.MemoryLimitMB)
	}
	for family, size := range c.ChunkSizeOverrides {
		columns, ok := familyColumnCounts[family]
		if !ok {
			return fmt.Errorf("config: chunk size override for unknown family %q", family)
		}
		if size*columns > PostgresMaxBindParams {
			return fmt.Errorf(
				"config: chunk size override for %q (%d rows * %d columns = %d params) exceeds the %d bind-parameter ceiling",
				family, size, columns, size*columns, PostgresMaxBindParams,
			)
		}
	}
	return nil
}

func envKeyFromFamily(family string) string {
	out := make([]byte, 0, len(family))
	for _, r := range family {
		if r >= 'a' && r <= 'z' {
			out = append(out, byte(r-'a'+'A'))
		} else {
			out = append(out, byte(r))
		}
	}
	return string(out)
}
