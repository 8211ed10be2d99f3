// Copyright (C) 2024 self-sensored contributors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package monitor implements C9: the integrity monitor. It reads a
// trailing window of raw_ingestions rows, computes aggregate and
// per-user statistics, classifies errors, and evaluates configurable
// thresholds — never mutating anything, purely a read-side report.
package monitor

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Ladvien/self-sensored-sub003/internal/rawstore"
)

// Thresholds mirrors the original monitor's AlertThresholds: warning
// and critical levels for failure rate, data-loss percentage, backlog
// depth, and per-user success rate.
type Thresholds struct {
	DataLossPercentCritical    float64
	DataLossPercentWarning     float64
	FailureRatePercentCritical float64
	FailureRatePercentWarning  float64
	MaxBacklogHours            int64
	MinUserSuccessRatePercent  float64
}

// DefaultThresholds matches the constants the original tool shipped
// with (data_loss 10%/5%, failure_rate 20%/10%, backlog 24h, user
// success floor 80%).
func DefaultThresholds() Thresholds {
	return Thresholds{
		DataLossPercentCritical:    10.0,
		DataLossPercentWarning:     5.0,
		FailureRatePercentCritical: 20.0,
		FailureRatePercentWarning:  10.0,
		MaxBacklogHours:            24,
		MinUserSuccessRatePercent:  80.0,
	}
}

// UserImpact is one user's success/failure picture within the window.
type UserImpact struct {
	UserID               uuid.UUID `json:"user_id"`
	TotalPayloads        int       `json:"total_payloads"`
	FailedPayloads       int       `json:"failed_payloads"`
	FailureRatePercent   float64   `json:"failure_rate_percent"`
	DaysSinceLastSuccess int64     `json:"days_since_last_success"`
}

// Severity is the alert level a threshold evaluation produced.
type Severity string

const (
	SeverityOK       Severity = "ok"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert is one threshold evaluation result.
type Alert struct {
	Name     string   `json:"name"`
	Severity Severity `json:"severity"`
	Detail   string   `json:"detail"`
}

// Report is the full analysis produced by Run.
type Report struct {
	GeneratedAt        time.Time      `json:"generated_at"`
	WindowHours        int            `json:"window_hours"`
	StatusCounts       map[string]int `json:"status_counts"`
	TotalIngestions    int            `json:"total_ingestions"`
	DataLossPercent    float64        `json:"data_loss_percent"`
	FailureRatePercent float64        `json:"failure_rate_percent"`
	AvgLatencySeconds  float64        `json:"avg_processing_latency_seconds"`
	PayloadSizeP50     float64        `json:"payload_size_bytes_p50"`
	PayloadSizeP95     float64        `json:"payload_size_bytes_p95"`
	PayloadSizeP99     float64        `json:"payload_size_bytes_p99"`
	BacklogCount       int            `json:"backlog_count"`
	ErrorFamilies      map[string]int `json:"error_families"`
	UserImpacts        []UserImpact   `json:"user_impacts"`
	Alerts             []Alert        `json:"alerts"`
}

// HasCritical reports whether any alert in the report is critical —
// the CLI's non-zero exit-code signal.
func (r Report) HasCritical() bool {
	for _, a := range r.Alerts {
		if a.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// Analyzer runs the monitoring pass over rawstore summaries.
type Analyzer struct {
	Store      *rawstore.Store
	Thresholds Thresholds
}

// Run computes a Report over the trailing windowHours.
func (a *Analyzer) Run(ctx context.Context, windowHours int) (Report, error) {
	since := time.Now().UTC().Add(-time.Duration(windowHours) * time.Hour)

	rows, err := a.Store.ListSummariesSince(ctx, since)
	if err != nil {
		return Report{}, fmt.Errorf("monitor: listing ingestions: %w", err)
	}

	report := Report{
		GeneratedAt:     time.Now().UTC(),
		WindowHours:     windowHours,
		StatusCounts:    make(map[string]int),
		ErrorFamilies:   make(map[string]int),
		TotalIngestions: len(rows),
	}

	var (
		latencies  []float64
		sizes      []float64
		failed     int
		dataLoss   int
		lastSuccessByUser = make(map[uuid.UUID]time.Time)
		perUser           = make(map[uuid.UUID]*UserImpact)
	)

	for _, rec := range rows {
		report.StatusCounts[string(rec.Status)]++
		sizes = append(sizes, float64(rec.PayloadBytes))

		if rec.ProcessedAt.Valid {
			latencies = append(latencies, rec.ProcessedAt.Time.Sub(rec.ReceivedAt).Seconds())
		}

		ui := perUser[rec.UserID]
		if ui == nil {
			ui = &UserImpact{UserID: rec.UserID}
			perUser[rec.UserID] = ui
		}
		ui.TotalPayloads++

		switch rec.Status {
		case rawstore.StatusError, rawstore.StatusRecoveryFailed:
			failed++
			ui.FailedPayloads++
		case rawstore.StatusPartialSuccess:
			failed++
			ui.FailedPayloads++
			if rec.ErrorCount > 0 && rec.ProcessedCount == 0 {
				dataLoss++
			}
		case rawstore.StatusProcessed, rawstore.StatusRecovered:
			if t, ok := lastSuccessByUser[rec.UserID]; !ok || rec.ReceivedAt.After(t) {
				lastSuccessByUser[rec.UserID] = rec.ReceivedAt
			}
		case rawstore.StatusPending:
			if time.Since(rec.ReceivedAt) > time.Duration(a.Thresholds.MaxBacklogHours)*time.Hour {
				report.BacklogCount++
			}
		}

		if rec.ErrorDetail.Valid && rec.ErrorDetail.String != "" {
			report.ErrorFamilies[classifyError(rec.ErrorDetail.String)]++
		}
	}

	now := time.Now().UTC()
	for uid, ui := range perUser {
		if ui.TotalPayloads > 0 {
			ui.FailureRatePercent = 100 * float64(ui.FailedPayloads) / float64(ui.TotalPayloads)
		}
		if t, ok := lastSuccessByUser[uid]; ok {
			ui.DaysSinceLastSuccess = int64(now.Sub(t).Hours() / 24)
		} else {
			ui.DaysSinceLastSuccess = -1 // never succeeded in the window
		}
		report.UserImpacts = append(report.UserImpacts, *ui)
	}
	sort.Slice(report.UserImpacts, func(i, j int) bool {
		return report.UserImpacts[i].FailureRatePercent > report.UserImpacts[j].FailureRatePercent
	})

	if report.TotalIngestions > 0 {
		report.FailureRatePercent = 100 * float64(failed) / float64(report.TotalIngestions)
		report.DataLossPercent = 100 * float64(dataLoss) / float64(report.TotalIngestions)
	}
	report.AvgLatencySeconds = mean(latencies)
	report.PayloadSizeP50 = percentile(sizes, 50)
	report.PayloadSizeP95 = percentile(sizes, 95)
	report.PayloadSizeP99 = percentile(sizes, 99)

	report.Alerts = a.evaluate(report)

	return report, nil
}

func (a *Analyzer) evaluate(r Report) []Alert {
	var alerts []Alert

	alerts = append(alerts, thresholdAlert("failure_rate", r.FailureRatePercent,
		a.Thresholds.FailureRatePercentWarning, a.Thresholds.FailureRatePercentCritical,
		"%.1f%% of ingestions failed in the window"))

	alerts = append(alerts, thresholdAlert("data_loss", r.DataLossPercent,
		a.Thresholds.DataLossPercentWarning, a.Thresholds.DataLossPercentCritical,
		"%.1f%% of ingestions show zero rows landed"))

	if r.BacklogCount > 0 {
		alerts = append(alerts, Alert{
			Name:     "backlog_depth",
			Severity: SeverityWarning,
			Detail:   fmt.Sprintf("%d ingestions pending longer than %dh", r.BacklogCount, a.Thresholds.MaxBacklogHours),
		})
	}

	for _, ui := range r.UserImpacts {
		if ui.TotalPayloads == 0 {
			continue
		}
		successRate := 100 - ui.FailureRatePercent
		if successRate < a.Thresholds.MinUserSuccessRatePercent {
			alerts = append(alerts, Alert{
				Name:     "user_success_rate",
				Severity: SeverityWarning,
				Detail:   fmt.Sprintf("user %s success rate %.1f%% below floor %.1f%%", ui.UserID, successRate, a.Thresholds.MinUserSuccessRatePercent),
			})
		}
	}

	if len(alerts) == 0 {
		alerts = append(alerts, Alert{Name: "overall", Severity: SeverityOK, Detail: "no critical issues detected"})
	}

	return alerts
}

func thresholdAlert(name string, value, warn, critical float64, format string) Alert {
	switch {
	case value > critical:
		return Alert{Name: name, Severity: SeverityCritical, Detail: fmt.Sprintf(format, value)}
	case value > warn:
		return Alert{Name: name, Severity: SeverityWarning, Detail: fmt.Sprintf(format, value)}
	default:
		return Alert{Name: name, Severity: SeverityOK, Detail: fmt.Sprintf(format, value)}
	}
}

// classifyError buckets an error-detail string into spec.md §4.9's
// eight families. Mirrors internal/recovery's classify exactly so the
// two tools never disagree on vocabulary; kept as a separate copy
// rather than a shared internal package because the two tools
// classify different source strings (raw-ingestion error_detail here,
// replay errors there) and coupling them would invite one to silently
// change the other's behavior.
func classifyError(msg string) string {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "bind") || strings.Contains(lower, "parameter"):
		return "parameter-limit"
	case strings.Contains(lower, "valid") || strings.Contains(lower, "bound"):
		return "validation"
	case strings.Contains(lower, "duplicate") || strings.Contains(lower, "unique"):
		return "duplicate-key"
	case strings.Contains(lower, "connection") || strings.Contains(lower, "dial"):
		return "connection"
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline"):
		return "timeout"
	case strings.Contains(lower, "memory") || strings.Contains(lower, "oom"):
		return "memory"
	case strings.Contains(lower, "json") || strings.Contains(lower, "parse") || strings.Contains(lower, "decod"):
		return "parse"
	default:
		return "other"
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// percentile returns the element at index floor(p/100 * (n-1)) of the
// sorted xs (p in 0-100, no interpolation), without mutating the
// caller's slice.
func percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	rank := int((p / 100) * float64(len(sorted)-1))
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}
