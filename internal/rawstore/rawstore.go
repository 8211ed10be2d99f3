// Copyright (C) 2024 self-sensored contributors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package rawstore implements C7: persistence of the raw request body
// before any parsing happens, content-hash idempotency, and the
// status lifecycle the recovery (C8) and monitor (C9) tools drive
// from.
package rawstore

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Status is one of the raw_ingestions lifecycle states.
type Status string

const (
	StatusPending         Status = "pending"
	StatusProcessed       Status = "processed"
	StatusPartialSuccess  Status = "partial_success"
	StatusError           Status = "error"
	StatusRecovered       Status = "recovered"
	StatusRecoveryFailed  Status = "recovery_failed"
)

// Record mirrors one raw_ingestions row.
type Record struct {
	ID             uuid.UUID      `db:"id"`
	UserID         uuid.UUID      `db:"user_id"`
	ContentHash    string         `db:"content_hash"`
	RawPayload     []byte         `db:"raw_payload"`
	PayloadBytes   int            `db:"payload_bytes"`
	Status         Status         `db:"status"`
	ProcessedCount int            `db:"processed_count"`
	ErrorCount     int            `db:"error_count"`
	ErrorDetail    sql.NullString `db:"error_detail"`
	ReceivedAt     time.Time      `db:"received_at"`
	ProcessedAt    sql.NullTime   `db:"processed_at"`
}

// Store wraps the DB handle for raw payload persistence.
type Store struct {
	DB *sqlx.DB
}

// ContentHash returns the SHA-256 hex digest of payload, used as the
// idempotency key alongside user_id (spec.md's content-addressed raw
// payload idempotency: re-submitting byte-identical bodies is a no-op,
// not a duplicate ingestion). The digest covers the bytes as received;
// the JSON is not canonicalized, so bodies that differ only in
// whitespace or key order hash differently.
func ContentHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// FindExisting looks up a prior ingestion by (user_id, content_hash).
// The ingest entry point rejects a hit as a duplicate (400) without
// reprocessing — this is the idempotency check, independent of the
// dedup package's natural-key logic, which only applies once a
// payload's rows have already been parsed.
func (s *Store) FindExisting(ctx context.Context, userID uuid.UUID, hash string) (*Record, error) {
	var r Record
	err := s.DB.GetContext(ctx, &r, `
		SELECT id, user_id, content_hash, raw_payload, payload_bytes, status,
		       processed_count, error_count, error_detail, received_at, processed_at
		FROM raw_ingestions
		WHERE user_id = $1 AND content_hash = $2`, userID, hash)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("rawstore: looking up existing ingestion: %w", err)
	}
	return &r, nil
}

// Insert persists a new raw ingestion row in StatusPending and
// returns its ID.
func (s *Store) Insert(ctx context.Context, userID uuid.UUID, payload []byte) (uuid.UUID, error) {
	id := uuid.New()
	hash := ContentHash(payload)
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO raw_ingestions (id, user_id, content_hash, raw_payload, payload_bytes, status, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, userID, hash, payload, len(payload), StatusPending, time.Now().UTC())
	if err != nil {
		return uuid.Nil, fmt.Errorf("rawstore: inserting raw ingestion: %w", err)
	}
	return id, nil
}

// UpdateStatus records the terminal (or recovery) outcome of
// processing one raw ingestion.
func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, processedCount, errorCount int, errDetail string) error {
	var detail sql.NullString
	if errDetail != "" {
		detail = sql.NullString{String: errDetail, Valid: true}
	}
	_, err := s.DB.ExecContext(ctx, `
		UPDATE raw_ingestions
		SET status = $1, processed_count = $2, error_count = $3, error_detail = $4, processed_at = $5
		WHERE id = $6`,
		status, processedCount, errorCount, detail, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("rawstore: updating ingestion status: %w", err)
	}
	return nil
}

// Summary is a raw_ingestions row without the payload bytes — the
// full-window view internal/monitor (C9) needs to compute per-status
// counts and percentiles without dragging potentially large request
// bodies through memory for a read-only report.
type Summary struct {
	ID             uuid.UUID      `db:"id"`
	UserID         uuid.UUID      `db:"user_id"`
	PayloadBytes   int            `db:"payload_bytes"`
	Status         Status         `db:"status"`
	ProcessedCount int            `db:"processed_count"`
	ErrorCount     int            `db:"error_count"`
	ErrorDetail    sql.NullString `db:"error_detail"`
	ReceivedAt     time.Time      `db:"received_at"`
	ProcessedAt    sql.NullTime   `db:"processed_at"`
}

// ListSummariesSince returns every raw ingestion received at or after
// since, regardless of status, as lightweight Summary rows.
func (s *Store) ListSummariesSince(ctx context.Context, since time.Time) ([]Summary, error) {
	var rows []Summary
	err := s.DB.SelectContext(ctx, &rows, `
		SELECT id, user_id, payload_bytes, status,
		       processed_count, error_count, error_detail, received_at, processed_at
		FROM raw_ingestions
		WHERE received_at >= $1
		ORDER BY received_at ASC`, since)
	if err != nil {
		return nil, fmt.Errorf("rawstore: listing ingestion summaries since %s: %w", since, err)
	}
	return rows, nil
}

// ListByStatus returns raw ingestions matching status, oldest first,
// capped at limit — used by the recovery tool (C8) to replay failures
// in bounded batches rather than loading the whole table.
func (s *Store) ListByStatus(ctx context.Context, status Status, since time.Time, limit int) ([]Record, error) {
	var rows []Record
	err := s.DB.SelectContext(ctx, &rows, `
		SELECT id, user_id, content_hash, raw_payload, payload_bytes, status,
		       processed_count, error_count, error_detail, received_at, processed_at
		FROM raw_ingestions
		WHERE status = $1 AND received_at >= $2
		ORDER BY received_at ASC
		LIMIT $3`, status, since, limit)
	if err != nil {
		return nil, fmt.Errorf("rawstore: listing ingestions by status: %w", err)
	}
	return rows, nil
}
