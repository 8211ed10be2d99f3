// Copyright (C) 2024 self-sensored contributors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command processing-monitor reports raw-ingestion integrity over a
// trailing window of hours. See spec.md §4.9/§6.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Ladvien/self-sensored-sub003/internal/config"
	"github.com/Ladvien/self-sensored-sub003/internal/monitor"
	"github.com/Ladvien/self-sensored-sub003/internal/obslog"
	"github.com/Ladvien/self-sensored-sub003/internal/rawstore"
	"github.com/Ladvien/self-sensored-sub003/internal/repository"
)

func main() {
	windowHours := 24
	if len(os.Args) > 1 {
		n, err := strconv.Atoi(os.Args[1])
		if err != nil || n <= 0 {
			log.Fatalf("processing-monitor: window hours must be a positive integer, got %q", os.Args[1])
		}
		windowHours = n
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("processing-monitor: loading config: %v", err)
	}

	db, err := repository.Connect(repository.PoolConfig{
		DSN:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("processing-monitor: connecting to database: %v", err)
	}
	defer db.Close()

	analyzer := &monitor.Analyzer{
		Store:      &rawstore.Store{DB: db},
		Thresholds: monitor.DefaultThresholds(),
	}

	report, err := analyzer.Run(context.Background(), windowHours)
	if err != nil {
		log.Fatalf("processing-monitor: analysis failed: %v", err)
	}

	text := renderText(report)
	fmt.Print(text)

	reportPath := fmt.Sprintf("processing_monitor_report_%s.txt", time.Now().UTC().Format("20060102T150405Z"))
	if err := os.WriteFile(reportPath, []byte(text), 0o644); err != nil {
		log.Fatalf("processing-monitor: writing report: %v", err)
	}
	obslog.Infof("processing-monitor: report written to %s", reportPath)

	if report.HasCritical() {
		os.Exit(1)
	}
}

func renderText(r monitor.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Processing Integrity Monitor Report\n")
	fmt.Fprintf(&b, "Generated: %s\n", r.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Window: last %d hours\n\n", r.WindowHours)

	fmt.Fprintf(&b, "Total ingestions: %d\n", r.TotalIngestions)
	for _, status := range []string{"pending", "processed", "partial_success", "error", "recovered", "recovery_failed"} {
		fmt.Fprintf(&b, "  %-16s %d\n", status, r.StatusCounts[status])
	}
	fmt.Fprintf(&b, "\nFailure rate: %.1f%%\n", r.FailureRatePercent)
	fmt.Fprintf(&b, "Data loss: %.1f%%\n", r.DataLossPercent)
	fmt.Fprintf(&b, "Backlog (pending beyond threshold): %d\n", r.BacklogCount)
	fmt.Fprintf(&b, "Average processing latency: %.1fs\n", r.AvgLatencySeconds)
	fmt.Fprintf(&b, "Payload size p50/p95/p99 (bytes): %.0f / %.0f / %.0f\n\n", r.PayloadSizeP50, r.PayloadSizeP95, r.PayloadSizeP99)

	fmt.Fprintf(&b, "Error families:\n")
	if len(r.ErrorFamilies) == 0 {
		fmt.Fprintf(&b, "  none\n")
	}
	for family, count := range r.ErrorFamilies {
		fmt.Fprintf(&b, "  %-16s %d\n", family, count)
	}

	fmt.Fprintf(&b, "\nUsers with failed payloads:\n")
	anyPrinted := false
	for _, ui := range r.UserImpacts {
		if ui.FailureRatePercent <= 0 {
			continue
		}
		anyPrinted = true
		fmt.Fprintf(&b, "  %s: %d/%d failed (%.1f%%), %d days since last success\n",
			ui.UserID, ui.FailedPayloads, ui.TotalPayloads, ui.FailureRatePercent, ui.DaysSinceLastSuccess)
	}
	if !anyPrinted {
		fmt.Fprintf(&b, "  none\n")
	}

	fmt.Fprintf(&b, "\nAlerts:\n")
	for _, a := range r.Alerts {
		fmt.Fprintf(&b, "  [%s] %s: %s\n", strings.ToUpper(string(a.Severity)), a.Name, a.Detail)
	}

	return b.String()
}
