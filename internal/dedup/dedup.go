// Copyright (C) 2024 self-sensored contributors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package dedup implements C5: intra-batch natural-key deduplication.
// Cross-batch duplicates are left to the database's own
// UNIQUE + ON CONFLICT DO NOTHING handling (see internal/batch) — this
// package only removes rows that collide with each other inside a
// single request, before they ever reach SQL.
package dedup

import "github.com/Ladvien/self-sensored-sub003/internal/metrics"

// Result is the outcome of deduplicating one family's rows.
type Result struct {
	Kept    []metrics.Metric
	Removed int
}

// Dedup removes rows whose NaturalKey has already been seen earlier in
// rows, preserving the first occurrence and the original order of
// survivors. Rows are assumed to already belong to a single family;
// callers partition by family before calling this.
func Dedup(rows []metrics.Metric) Result {
	seen := make(map[metrics.NaturalKey]struct{}, len(rows))
	kept := make([]metrics.Metric, 0, len(rows))
	removed := 0

	for _, row := range rows {
		key := row.NaturalKey()
		if _, ok := seen[key]; ok {
			removed++
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, row)
	}

	return Result{Kept: kept, Removed: removed}
}

// DedupByFamily runs Dedup independently within each family bucket of
// an already-partitioned batch and returns the per-family outcomes.
func DedupByFamily(byFamily map[string][]metrics.Metric) map[string]Result {
	out := make(map[string]Result, len(byFamily))
	for family, rows := range byFamily {
		out[family] = Dedup(rows)
	}
	return out
}
