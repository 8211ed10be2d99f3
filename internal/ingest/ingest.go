// Copyright (C) 2024 self-sensored contributors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ingest implements C10, the ingest entry point's
// responsibilities beyond routing: authentication is already resolved
// by internal/auth's middleware by the time Handler runs; this
// package owns idempotency, sync/async routing, and response shaping.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Ladvien/self-sensored-sub003/internal/adapter"
	"github.com/Ladvien/self-sensored-sub003/internal/auth"
	"github.com/Ladvien/self-sensored-sub003/internal/batch"
	"github.com/Ladvien/self-sensored-sub003/internal/envelope"
	"github.com/Ladvien/self-sensored-sub003/internal/obslog"
	"github.com/Ladvien/self-sensored-sub003/internal/rawstore"
	"github.com/Ladvien/self-sensored-sub003/internal/respcache"
)

// responseCacheTTL bounds how long a completed synchronous response
// stays in RespCache. The cache is read only after FindExisting has
// found no prior ingestion for the same user and content hash, so a
// repeated submission of a stored payload is rejected as a duplicate
// before the cache is consulted.
const responseCacheTTL = 10 * time.Minute

// MaxBodyBytes is the hard cap on a request body the entry point will
// ever read into memory — spec.md §5's "entry point bounds request
// body size" backpressure mechanism, and the line between a
// "oversize-beyond-hard-cap" 400 and a payload that is merely large
// enough to trigger async handoff.
const MaxBodyBytes = 100 * 1024 * 1024 // 100 MB

// Handler implements C10's POST /api/v1/ingest responsibilities.
type Handler struct {
	Store               *rawstore.Store
	Processor           *batch.Processor
	AsyncThresholdBytes int64
	AsyncQueue          chan AsyncJob   // nil disables async handoff; everything runs sync
	RespCache           respcache.Cache // nil disables response caching
}

// AsyncJob is one unit of background work handed off to the worker
// pool started alongside the HTTP server.
type AsyncJob struct {
	RawID  uuid.UUID
	UserID uuid.UUID
	Env    adapter.Envelope
}

type apiResponse struct {
	Success          bool        `json:"success"`
	Data             interface{} `json:"data,omitempty"`
	Error            string      `json:"error,omitempty"`
	RequestID        string      `json:"request_id"`
	ProcessingTimeMs int64       `json:"processing_time_ms"`
}

type acceptedData struct {
	Accepted bool      `json:"accepted"`
	RawID    uuid.UUID `json:"raw_id"`
}

type cachedResponse struct {
	Status int         `json:"status"`
	Body   apiResponse `json:"body"`
}

// ServeHTTP implements the full C10 algorithm: idempotency check,
// sync/async routing by size, empty/malformed-payload rejection, and
// response shaping.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := uuid.New().String()

	userID, ok := auth.UserIDFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, apiResponse{Success: false, Error: "unauthorized", RequestID: requestID})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Error: "failed reading request body", RequestID: requestID})
		return
	}
	if int64(len(body)) > MaxBodyBytes {
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Error: "payload exceeds hard size cap", RequestID: requestID})
		return
	}

	if err := envelope.Validate(body); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Error: "malformed JSON payload", RequestID: requestID})
		return
	}

	var env adapter.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Error: "malformed JSON payload", RequestID: requestID})
		return
	}
	if isEmpty(env) {
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Error: "payload has no metrics and no workouts", RequestID: requestID})
		return
	}

	hash := rawstore.ContentHash(body)
	cacheKey := userID.String() + ":" + hash

	existing, err := h.Store.FindExisting(r.Context(), userID, hash)
	if err != nil {
		obslog.Errorf("ingest: idempotency lookup failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, apiResponse{Success: false, Error: "internal error", RequestID: requestID})
		return
	}
	if existing != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Error: "duplicate payload", RequestID: requestID})
		return
	}

	if h.RespCache != nil {
		if cached, ok := h.RespCache.Get(r.Context(), cacheKey); ok {
			var resp cachedResponse
			if err := json.Unmarshal(cached, &resp); err == nil {
				resp.Body.RequestID = requestID
				writeJSON(w, resp.Status, resp.Body)
				return
			}
		}
	}

	rawID, err := h.Store.Insert(r.Context(), userID, body)
	if err != nil {
		obslog.Errorf("ingest: storing raw payload failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, apiResponse{Success: false, Error: "internal error", RequestID: requestID})
		return
	}

	threshold := h.AsyncThresholdBytes
	if threshold <= 0 {
		threshold = 10 * 1024 * 1024
	}

	if int64(len(body)) > threshold && h.AsyncQueue != nil {
		select {
		case h.AsyncQueue <- AsyncJob{RawID: rawID, UserID: userID, Env: env}:
		default:
			obslog.Warnf("ingest: async queue full, falling back to inline processing for raw_id=%s", rawID)
			h.processInline(r.Context(), rawID, userID, env, requestID, cacheKey, start, w)
			return
		}
		writeJSON(w, http.StatusAccepted, apiResponse{
			Success:          true,
			Data:             acceptedData{Accepted: true, RawID: rawID},
			RequestID:        requestID,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		})
		return
	}

	h.processInline(r.Context(), rawID, userID, env, requestID, cacheKey, start, w)
}

func (h *Handler) processInline(ctx context.Context, rawID, userID uuid.UUID, env adapter.Envelope, requestID, cacheKey string, start time.Time, w http.ResponseWriter) {
	result, err := h.processOne(ctx, rawID, userID, env)
	if err != nil {
		obslog.Errorf("ingest: processing raw_id=%s failed: %v", rawID, err)
		writeJSON(w, http.StatusInternalServerError, apiResponse{Success: false, Error: "processing failed", RequestID: requestID})
		return
	}

	resp := apiResponse{
		Success:          true,
		Data:             result,
		RequestID:        requestID,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}

	if h.RespCache != nil {
		if encoded, err := json.Marshal(cachedResponse{Status: http.StatusOK, Body: resp}); err == nil {
			h.RespCache.Set(ctx, cacheKey, encoded, responseCacheTTL)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// processOne converts and runs one raw ingestion through the batch
// processor, updating its terminal status. Shared by the sync path
// above and the async worker pool in RunAsyncWorkers.
func (h *Handler) processOne(ctx context.Context, rawID, userID uuid.UUID, env adapter.Envelope) (batch.Result, error) {
	converted, err := adapter.Convert(env, userID)
	if err != nil {
		_ = h.Store.UpdateStatus(ctx, rawID, rawstore.StatusError, 0, 0, err.Error())
		return batch.Result{}, fmt.Errorf("adapting payload: %w", err)
	}
	for _, e := range converted.Errors {
		obslog.Warnf("ingest: raw_id=%s dropped metric %q: %s", rawID, e.MetricName, e.Reason)
	}

	result, err := h.Processor.Process(ctx, userID, converted.Rows)
	if err != nil {
		_ = h.Store.UpdateStatus(ctx, rawID, rawstore.StatusError, 0, 0, err.Error())
		return batch.Result{}, fmt.Errorf("processing batch: %w", err)
	}

	status := rawstore.StatusProcessed
	detail := ""
	if result.FailedCount > 0 {
		status = rawstore.StatusPartialSuccess
		detail = fmt.Sprintf("%d rows failed validation or insert", result.FailedCount)
	}
	if err := h.Store.UpdateStatus(ctx, rawID, status, result.ProcessedCount, result.FailedCount, detail); err != nil {
		return result, fmt.Errorf("updating raw ingestion status: %w", err)
	}

	return result, nil
}

// RunAsyncWorkers drains AsyncQueue with n concurrent workers until
// ctx is cancelled — the "background worker reading from an in-memory
// work queue" spec.md §4.10 requires for payloads over the async
// threshold.
func (h *Handler) RunAsyncWorkers(ctx context.Context, n int) {
	for i := 0; i < n; i++ {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case job := <-h.AsyncQueue:
					if _, err := h.processOne(ctx, job.RawID, job.UserID, job.Env); err != nil {
						obslog.Errorf("ingest: async worker failed on raw_id=%s: %v", job.RawID, err)
					}
				}
			}
		}()
	}
}

func isEmpty(env adapter.Envelope) bool {
	if env.IsVendorShape() {
		return len(env.Data.Metrics) == 0 && len(env.Data.Workouts) == 0
	}
	return len(env.Metrics) == 0 && len(env.Workouts) == 0
}

func writeJSON(w http.ResponseWriter, status int, body apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		obslog.Errorf("ingest: encoding response failed: %v", err)
	}
}
