// Copyright (C) 2024 self-sensored contributors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package maintenance implements A9: periodic background tasks run
// inside cmd/ingest-server, grounded on the teacher's
// internal/taskManager — a gocron.Scheduler held by the Scheduler type, one
// Register* function per job, and a Start/Shutdown pair the server's
// main owns the lifecycle of.
package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jmoiron/sqlx"

	"github.com/Ladvien/self-sensored-sub003/internal/obslog"
	"github.com/Ladvien/self-sensored-sub003/internal/rawstore"
)

// Scheduler owns every registered periodic task.
type Scheduler struct {
	s gocron.Scheduler
}

// New creates a Scheduler. Jobs are registered with the Register*
// methods and only start running once Start is called.
func New() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("maintenance: creating scheduler: %w", err)
	}
	return &Scheduler{s: s}, nil
}

// Start begins running every registered job on its schedule.
func (m *Scheduler) Start() {
	m.s.Start()
}

// Shutdown stops the scheduler, waiting for in-flight job runs to
// finish.
func (m *Scheduler) Shutdown() error {
	return m.s.Shutdown()
}

// RegisterMentalHealthPartitions creates the mental_health range
// partitions for the current calendar month and the monthsAhead months
// after it, idempotently
// (CREATE TABLE IF NOT EXISTS), once daily — the future-partition
// upkeep migration 0005 explicitly defers to this package rather than
// seeding partitions indefinitely far ahead at migrate time.
func (m *Scheduler) RegisterMentalHealthPartitions(db *sqlx.DB, monthsAhead int) error {
	_, err := m.s.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(3, 0, 0))),
		gocron.NewTask(func() {
			if err := createMentalHealthPartitions(context.Background(), db, monthsAhead); err != nil {
				obslog.Errorf("maintenance: creating mental_health partitions: %v", err)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("maintenance: registering partition job: %w", err)
	}
	return nil
}

func createMentalHealthPartitions(ctx context.Context, db *sqlx.DB, monthsAhead int) error {
	now := time.Now().UTC()
	for i := 0; i <= monthsAhead; i++ {
		from := time.Date(now.Year(), now.Month()+time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 1, 0)
		name := fmt.Sprintf("mental_health_%04d_%02d", from.Year(), from.Month())

		stmt := fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s PARTITION OF mental_health FOR VALUES FROM ('%s') TO ('%s')`,
			name, from.Format("2006-01-02"), to.Format("2006-01-02"))
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating partition %s: %w", name, err)
		}
	}
	return nil
}

// RegisterPoolMetricsRefresh periodically refreshes a pool metrics
// exporter's gauges so they stay close to real-time even between
// Prometheus scrapes; refresher is typically poolmetrics.Exporter's
// own Refresh method.
func (m *Scheduler) RegisterPoolMetricsRefresh(interval time.Duration, refresher func()) error {
	_, err := m.s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(refresher),
	)
	if err != nil {
		return fmt.Errorf("maintenance: registering pool metrics refresh job: %w", err)
	}
	return nil
}

// RegisterStaleQueueSweep marks raw ingestions still pending after
// olderThan as errored, so a crashed async worker's in-flight work
// doesn't sit invisible in "pending" forever — the recovery tool (C8)
// replays only the status its --status flag selects (error by default),
// so a payload stuck in StatusPending would otherwise not be retried.
func (m *Scheduler) RegisterStaleQueueSweep(store *rawstore.Store, olderThan time.Duration, interval time.Duration) error {
	_, err := m.s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			n, err := sweepStaleQueue(context.Background(), store, olderThan)
			if err != nil {
				obslog.Errorf("maintenance: stale queue sweep: %v", err)
				return
			}
			if n > 0 {
				obslog.Warnf("maintenance: marked %d stale pending ingestions as errored", n)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("maintenance: registering stale queue sweep job: %w", err)
	}
	return nil
}

func sweepStaleQueue(ctx context.Context, store *rawstore.Store, olderThan time.Duration) (int, error) {
	stale, err := store.ListByStatus(ctx, rawstore.StatusPending, time.Time{}, 1000)
	if err != nil {
		return 0, fmt.Errorf("listing pending ingestions: %w", err)
	}

	cutoff := time.Now().UTC().Add(-olderThan)
	swept := 0
	for _, rec := range stale {
		if rec.ReceivedAt.After(cutoff) {
			continue
		}
		if err := store.UpdateStatus(ctx, rec.ID, rawstore.StatusError, 0, 0, "stale: exceeded processing window"); err != nil {
			return swept, fmt.Errorf("marking ingestion %s stale: %w", rec.ID, err)
		}
		swept++
	}
	return swept, nil
}
