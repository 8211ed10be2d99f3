// Copyright (C) 2024 self-sensored contributors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command ingest-server runs the HTTP ingestion API: auth, rate
// limiting, schema validation, batch processing, and the scheduled
// maintenance jobs that keep the database tidy between requests. See
// spec.md §4.10 and §6.
package main

import (
	"context"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Ladvien/self-sensored-sub003/internal/auth"
	"github.com/Ladvien/self-sensored-sub003/internal/batch"
	"github.com/Ladvien/self-sensored-sub003/internal/config"
	"github.com/Ladvien/self-sensored-sub003/internal/httpapi"
	"github.com/Ladvien/self-sensored-sub003/internal/ingest"
	"github.com/Ladvien/self-sensored-sub003/internal/maintenance"
	"github.com/Ladvien/self-sensored-sub003/internal/obslog"
	"github.com/Ladvien/self-sensored-sub003/internal/poolmetrics"
	"github.com/Ladvien/self-sensored-sub003/internal/ratelimit"
	"github.com/Ladvien/self-sensored-sub003/internal/rawstore"
	"github.com/Ladvien/self-sensored-sub003/internal/repository"
	"github.com/Ladvien/self-sensored-sub003/internal/respcache"
)

func main() {
	var flagSkipMigrate bool
	flag.BoolVar(&flagSkipMigrate, "skip-migrate", false, "do not run database migrations at startup")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("ingest-server: loading config: %v", err)
	}
	obslog.SetLevel(cfg.LogLevel)
	obslog.SetDateTime(cfg.LogDateTime)

	if cfg.JWTSecret == "" {
		log.Fatal("ingest-server: JWT_SECRET is required")
	}

	db, err := repository.Connect(repository.PoolConfig{
		DSN:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("ingest-server: connecting to database: %v", err)
	}
	defer db.Close()

	if !flagSkipMigrate {
		if err := repository.Migrate(db.DB); err != nil {
			log.Fatalf("ingest-server: applying migrations: %v", err)
		}
	}

	store := &rawstore.Store{DB: db}
	processor := &batch.Processor{DB: db, ValidationCfg: cfg.Validation, BatchCfg: cfg.Batch}

	ingestHandler := &ingest.Handler{
		Store:               store,
		Processor:           processor,
		AsyncThresholdBytes: cfg.Batch.AsyncThresholdBytes,
		AsyncQueue:          make(chan ingest.AsyncJob, cfg.AsyncQueueSize),
		RespCache:           respcache.NewMemoryCache(cfg.RespCacheMaxEntries),
	}

	limiter := ratelimit.New(cfg.RateLimitPerSecond, cfg.RateLimitBurst, cfg.RateLimitIdleTTL)
	poolExporter := poolmetrics.New(db.DB, "selfsensored")

	api := &httpapi.API{
		Authenticator: &auth.JWTAuth{Secret: []byte(cfg.JWTSecret)},
		IngestHandler: ingestHandler,
		RateLimit:     limiter.Middleware,
	}

	mux := http.NewServeMux()
	mux.Handle("/", api.Router())
	mux.Handle("/metrics", poolExporter.Handler())

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	sched, err := maintenance.New()
	if err != nil {
		log.Fatalf("ingest-server: creating maintenance scheduler: %v", err)
	}
	if err := sched.RegisterMentalHealthPartitions(db, cfg.MentalHealthPartitionMonthsAhead); err != nil {
		log.Fatalf("ingest-server: registering partition job: %v", err)
	}
	if err := sched.RegisterStaleQueueSweep(store, cfg.StaleQueueThreshold, cfg.StaleQueueSweepInterval); err != nil {
		log.Fatalf("ingest-server: registering stale queue sweep: %v", err)
	}
	if err := sched.RegisterPoolMetricsRefresh(30*time.Second, poolExporter.Refresh); err != nil {
		log.Fatalf("ingest-server: registering pool metrics refresh: %v", err)
	}
	sched.Start()

	asyncCtx, cancelAsync := context.WithCancel(context.Background())
	ingestHandler.RunAsyncWorkers(asyncCtx, cfg.AsyncWorkers)

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		log.Fatalf("ingest-server: listening on %s: %v", cfg.Addr, err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		obslog.Infof("ingest-server: listening on %s", cfg.Addr)
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ingest-server: serving: %v", err)
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	obslog.Infof("ingest-server: shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		obslog.Errorf("ingest-server: graceful shutdown failed: %v", err)
	}

	cancelAsync()
	if err := sched.Shutdown(); err != nil {
		obslog.Errorf("ingest-server: maintenance scheduler shutdown failed: %v", err)
	}

	wg.Wait()
	obslog.Infof("ingest-server: shutdown complete")
}
