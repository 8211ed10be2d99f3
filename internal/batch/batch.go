// Copyright (C) 2024 self-sensored contributors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package batch implements C6, the batch processor — the heart of
// the system per spec.md §4.6: normalize, partition, validate, dedup,
// plan, and execute chunked upserts with bounded concurrency, retry,
// and backpressure.
package batch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Ladvien/self-sensored-sub003/internal/chunking"
	"github.com/Ladvien/self-sensored-sub003/internal/config"
	"github.com/Ladvien/self-sensored-sub003/internal/dedup"
	"github.com/Ladvien/self-sensored-sub003/internal/metrics"
	"github.com/Ladvien/self-sensored-sub003/internal/obslog"
	"github.com/Ladvien/self-sensored-sub003/internal/repository"
)

// RowError is one row that was removed before ever reaching SQL, or a
// chunk-scoped failure recorded against every row of that chunk.
type RowError struct {
	Family      string `json:"family"`
	Reason      string `json:"reason"`
	Recoverable bool   `json:"recoverable"`
}

// ChunkProgress is one {chunks_completed, chunks_total, family_counts}
// update, published on Processor.Progress when that channel is set.
type ChunkProgress struct {
	ChunksCompleted int            `json:"chunks_completed"`
	ChunksTotal     int            `json:"chunks_total"`
	FamilyCounts    map[string]int `json:"family_counts"`
}

// DedupStats reports the per-family intra-batch dedup outcome.
type DedupStats struct {
	RemovedByFamily map[string]int `json:"removed_by_family"`
}

// Result is the public return value of Process — spec.md §4.6's
// BatchResult.
type Result struct {
	ProcessedCount   int        `json:"processed_count"`
	FailedCount      int        `json:"failed_count"`
	Errors           []RowError `json:"errors"`
	ProcessingTimeMs int64      `json:"processing_time_ms"`
	RetryAttempts    int        `json:"retry_attempts"`
	MemoryPeakMB     float64    `json:"memory_peak_mb,omitempty"`
	DedupStats       DedupStats `json:"dedup_stats"`
}

// Processor ties together the config, DB handle, and optional
// progress channel needed to run Process.
type Processor struct {
	DB            *sqlx.DB
	ValidationCfg config.ValidationConfig
	BatchCfg      config.BatchConfig
	Progress      chan<- ChunkProgress // nil disables progress reporting
}

// chunkJob is one family-scoped slice of already deduped, validated
// rows ready for its own transaction.
type chunkJob struct {
	family string
	rows   []metrics.Metric
}

// Process runs the full C6 algorithm described in spec.md §4.6 over
// rows, all of which are stamped to userID before anything else
// happens.
func (p *Processor) Process(ctx context.Context, userID uuid.UUID, rows []metrics.Metric) (Result, error) {
	start := time.Now()

	// 1. Normalize.
	for _, r := range rows {
		r.SetUserID(userID)
	}

	// 2. Partition by family.
	byFamily := make(map[string][]metrics.Metric)
	for _, r := range rows {
		byFamily[r.Family()] = append(byFamily[r.Family()], r)
	}

	var result Result
	result.Errors = make([]RowError, 0)

	// 3. Validate; invalid rows are dropped and recorded.
	validByFamily := make(map[string][]metrics.Metric, len(byFamily))
	for family, familyRows := range byFamily {
		kept := make([]metrics.Metric, 0, len(familyRows))
		for _, r := range familyRows {
			if err := r.Validate(&p.ValidationCfg); err != nil {
				result.Errors = append(result.Errors, RowError{
					Family:      family,
					Reason:      err.Error(),
					Recoverable: false,
				})
				result.FailedCount++
				continue
			}
			kept = append(kept, r)
		}
		if len(kept) > 0 {
			validByFamily[family] = kept
		}
	}

	// 4. Dedup.
	dedupResults := dedup.DedupByFamily(validByFamily)
	result.DedupStats.RemovedByFamily = make(map[string]int, len(dedupResults))
	dedupedByFamily := make(map[string][]metrics.Metric, len(dedupResults))
	for family, r := range dedupResults {
		result.DedupStats.RemovedByFamily[family] = r.Removed
		dedupedByFamily[family] = r.Kept
	}

	// 5. Plan chunks.
	plan, err := chunking.Compute(p.BatchCfg)
	if err != nil {
		return Result{}, fmt.Errorf("batch: computing chunk plan: %w", err)
	}

	var jobs []chunkJob
	for family, familyRows := range dedupedByFamily {
		size := plan.SizeFor(family)
		if size <= 0 {
			for range familyRows {
				result.Errors = append(result.Errors, RowError{Family: family, Reason: "no chunk plan for family", Recoverable: false})
				result.FailedCount++
			}
			continue
		}
		for _, bounds := range chunking.SplitIndices(len(familyRows), size) {
			jobs = append(jobs, chunkJob{family: family, rows: familyRows[bounds[0]:bounds[1]]})
		}
	}

	chunksTotal := len(jobs)
	var chunksCompleted int64
	familyCounts := make(map[string]int)
	var familyCountsMu sync.Mutex

	effectiveParallel := p.BatchCfg.EnableParallel && !p.overMemoryBudget(rows)

	var processedCount int64
	var retryAttempts int64
	var mu sync.Mutex // guards result.Errors

	runChunk := func(job chunkJob) {
		n, attempts, err := p.executeChunkWithRetry(ctx, job)
		atomic.AddInt64(&retryAttempts, int64(attempts))
		if err != nil {
			mu.Lock()
			result.Errors = append(result.Errors, RowError{
				Family:      job.family,
				Reason:      err.Error(),
				Recoverable: false,
			})
			result.FailedCount += len(job.rows)
			mu.Unlock()
		} else {
			atomic.AddInt64(&processedCount, n)
		}

		familyCountsMu.Lock()
		familyCounts[job.family] += len(job.rows)
		familyCountsMu.Unlock()

		done := atomic.AddInt64(&chunksCompleted, 1)
		if p.Progress != nil {
			select {
			case p.Progress <- ChunkProgress{ChunksCompleted: int(done), ChunksTotal: chunksTotal, FamilyCounts: copyCounts(familyCounts, &familyCountsMu)}:
			default:
			}
		}
	}

	if effectiveParallel && p.BatchCfg.ParallelChunkLimit > 1 {
		sem := make(chan struct{}, p.BatchCfg.ParallelChunkLimit)
		var wg sync.WaitGroup
		for _, job := range jobs {
			job := job
			wg.Add(1)
			sem <- struct{}{}
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				runChunk(job)
			}()
		}
		wg.Wait()
	} else {
		for _, job := range jobs {
			runChunk(job)
		}
	}

	result.ProcessedCount = int(processedCount)
	result.RetryAttempts = int(retryAttempts)
	result.ProcessingTimeMs = time.Since(start).Milliseconds()
	return result, nil
}

// overMemoryBudget is spec.md §4.6 step 9's backpressure check: a
// rough row-count-based estimate stands in for a true memory profile
// (the teacher's codebase has no memory-accounting dependency to
// build on, so this stays a simple heuristic rather than reaching for
// a profiling library nothing else in the corpus uses).
func (p *Processor) overMemoryBudget(rows []metrics.Metric) bool {
	const approxBytesPerRow = 512
	estimatedMB := float64(len(rows)*approxBytesPerRow) / (1024 * 1024)
	return estimatedMB > float64(p.BatchCfg.MemoryLimitMB)
}

// executeChunkWithRetry runs one chunk's transaction, retrying
// transient failures with exponential backoff per spec.md §4.6 step 8.
func (p *Processor) executeChunkWithRetry(ctx context.Context, job chunkJob) (inserted int64, attempts int, err error) {
	backoff := p.BatchCfg.InitialBackoff

	for attempt := 0; ; attempt++ {
		inserted, err = p.executeChunk(ctx, job)
		if err == nil {
			return inserted, attempt, nil
		}
		if !isTransient(err) || attempt >= p.BatchCfg.MaxRetries {
			return 0, attempt, err
		}

		obslog.Warnf("batch: transient error on %s chunk (attempt %d/%d), retrying in %s: %v",
			job.family, attempt+1, p.BatchCfg.MaxRetries, backoff, err)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return 0, attempt + 1, ctx.Err()
		}

		backoff *= 2
		if backoff > p.BatchCfg.MaxBackoff {
			backoff = p.BatchCfg.MaxBackoff
		}
	}
}

func (p *Processor) executeChunk(ctx context.Context, job chunkJob) (int64, error) {
	tx, err := p.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	n, err := repository.InsertChunk(tx, job.family, job.rows)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return n, nil
}

// isTransient classifies a Postgres error as retryable: connection
// loss, serialization conflicts, and deadlocks. Constraint violations
// and malformed values are never retried — retrying them would just
// reproduce the same failure spec.md §4.6 step 8 calls out.
func isTransient(err error) bool {
	var pqErr *pq.Error
	if ok := asPQError(err, &pqErr); ok {
		switch pqErr.Code.Class() {
		case "08": // connection exception
			return true
		case "40": // transaction rollback (serialization failure, deadlock)
			return true
		}
		return false
	}
	// Driver-level errors without a pq.Error (e.g. context deadline,
	// connection refused) are treated as transient.
	return true
}

func asPQError(err error, target **pq.Error) bool {
	for e := err; e != nil; {
		if pe, ok := e.(*pq.Error); ok {
			*target = pe
			return true
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		e = u.Unwrap()
	}
	return false
}

func copyCounts(m map[string]int, mu *sync.Mutex) map[string]int {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
