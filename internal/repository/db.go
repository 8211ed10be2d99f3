// Copyright (C) 2024 self-sensored contributors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package repository holds the Postgres connection pool, schema
// migrations, and the per-family SQL writers used by the batch
// processor (C6) and raw payload store (C7).
package repository

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/Ladvien/self-sensored-sub003/internal/obslog"
)

// PoolConfig mirrors the teacher's flat DB-connection config (see the
// deleted internal/repository/dbConnection.go, readable at
// _examples/ClusterCockpit-cc-backend/internal/repository/dbConnection.go)
// but drops the sqlite3/mysql branches since this service is
// Postgres-only (see DESIGN.md's dependency notes).
type PoolConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Connect opens a pooled Postgres connection and verifies it with
// Ping, matching the teacher's fail-fast startup behavior.
func Connect(cfg PoolConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("repository: opening postgres connection: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("repository: pinging postgres: %w", err)
	}

	obslog.Infof("connected to postgres pool (max_open=%d, max_idle=%d)", cfg.MaxOpenConns, cfg.MaxIdleConns)
	return db, nil
}
