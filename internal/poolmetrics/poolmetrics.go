// Copyright (C) 2024 self-sensored contributors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package poolmetrics implements A6: Prometheus export of the
// database connection pool's state — spec.md §5's "Shared resources"
// requirement that pool size, idle count, and utilization be
// observable. Grounded on the pack's own promauto-free, manually
// registered Registry + Collector pattern in
// engine/monitoring/monitoring.go (NewPrometheusExporter), narrowed
// from business-rule counters to four pool gauges.
package poolmetrics

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter publishes sql.DBStats as Prometheus gauges on demand.
type Exporter struct {
	db       *sql.DB
	registry *prometheus.Registry

	openConnections prometheus.Gauge
	inUse           prometheus.Gauge
	idle            prometheus.Gauge
	waitCount       prometheus.Gauge
}

// New wires an Exporter around db, registering its gauges in a fresh
// registry so this package never collides with metrics another
// library self-registers on prometheus.DefaultRegisterer.
func New(db *sql.DB, namespace string) *Exporter {
	e := &Exporter{
		db:       db,
		registry: prometheus.NewRegistry(),
		openConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "db_pool_open_connections", Help: "Current open database connections.",
		}),
		inUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "db_pool_in_use", Help: "Connections currently in use.",
		}),
		idle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "db_pool_idle", Help: "Idle connections in the pool.",
		}),
		waitCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "db_pool_wait_count_total", Help: "Total connections waited for so far.",
		}),
	}

	e.registry.MustRegister(e.openConnections, e.inUse, e.idle, e.waitCount)
	return e
}

// Handler returns the HTTP handler serving this Exporter's registry,
// refreshing gauges from the live pool immediately before each scrape
// — the same sync-then-serve shape the pack's own
// PrometheusExporter.GetMetricsHandler uses.
func (e *Exporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.sync()
		promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}

// Refresh re-reads the pool's live stats into the gauges immediately,
// independent of an HTTP scrape — used by internal/maintenance (A9)
// to keep gauges close to real-time between scrapes.
func (e *Exporter) Refresh() {
	e.sync()
}

func (e *Exporter) sync() {
	stats := e.db.Stats()
	e.openConnections.Set(float64(stats.OpenConnections))
	e.inUse.Set(float64(stats.InUse))
	e.idle.Set(float64(stats.Idle))
	e.waitCount.Set(float64(stats.WaitCount))
}
