// Copyright (C) 2024 self-sensored contributors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command data-recovery replays raw ingestions stuck in error or
// partial_success through the batch processor. See spec.md §4.8/§6.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/Ladvien/self-sensored-sub003/internal/batch"
	"github.com/Ladvien/self-sensored-sub003/internal/config"
	"github.com/Ladvien/self-sensored-sub003/internal/obslog"
	"github.com/Ladvien/self-sensored-sub003/internal/rawstore"
	"github.com/Ladvien/self-sensored-sub003/internal/recovery"
	"github.com/Ladvien/self-sensored-sub003/internal/repository"
)

func main() {
	var (
		dryRun    bool
		batchSize int
		userID    string
		status    string
		noVerify  bool
		since     string
	)

	flag.BoolVar(&dryRun, "dry-run", false, "report what would be recovered without mutating anything")
	flag.IntVar(&batchSize, "batch-size", 100, "maximum number of raw ingestions to examine per run")
	flag.StringVar(&userID, "user-id", "", "restrict recovery to a single user UUID")
	flag.StringVar(&status, "status", "error", "raw_ingestions status to target (error, partial_success)")
	flag.BoolVar(&noVerify, "no-verify", false, "skip the pre-recovery content-hash verification pass")
	flag.StringVar(&since, "since", "", "only consider ingestions received at or after this ISO8601 timestamp")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("data-recovery: loading config: %v", err)
	}

	var uid uuid.UUID
	if userID != "" {
		uid, err = uuid.Parse(userID)
		if err != nil {
			log.Fatalf("data-recovery: --user-id is not a valid UUID: %v", err)
		}
	}

	sinceTime := time.Time{}
	if since != "" {
		sinceTime, err = time.Parse(time.RFC3339, since)
		if err != nil {
			log.Fatalf("data-recovery: --since is not a valid ISO8601 timestamp: %v", err)
		}
	}

	db, err := repository.Connect(repository.PoolConfig{
		DSN:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("data-recovery: connecting to database: %v", err)
	}
	defer db.Close()

	runner := &recovery.Runner{
		Store: &rawstore.Store{DB: db},
		Processor: &batch.Processor{
			DB:            db,
			ValidationCfg: cfg.Validation,
			BatchCfg:      cfg.Batch,
		},
	}

	filter := recovery.Filter{
		Status:    rawstore.Status(status),
		Since:     sinceTime,
		UserID:    uid,
		BatchSize: batchSize,
		DryRun:    dryRun,
		NoVerify:  noVerify,
	}

	report, err := runner.Run(context.Background(), filter)
	if err != nil {
		log.Fatalf("data-recovery: run failed: %v", err)
	}

	reportPath := fmt.Sprintf("data_recovery_report_%s.json", time.Now().UTC().Format("20060102T150405Z"))
	f, err := os.Create(reportPath)
	if err != nil {
		log.Fatalf("data-recovery: writing report: %v", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		f.Close()
		log.Fatalf("data-recovery: encoding report: %v", err)
	}
	f.Close()

	obslog.Infof("data-recovery: attempted=%d recovered=%d still_failed=%d report=%s",
		report.Attempted, report.Recovered, report.StillFailed, reportPath)

	if report.StillFailed > 0 {
		os.Exit(1)
	}
}
