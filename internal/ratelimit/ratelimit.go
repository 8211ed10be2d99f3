// Copyright (C) 2024 self-sensored contributors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ratelimit implements A8: per-user request throttling ahead
// of the ingest entry point, using golang.org/x/time/rate's standard
// token-bucket limiter — the teacher's own stack carries no rate
// limiter, so this follows the library's own idiomatic
// one-limiter-per-key pattern rather than a teacher precedent.
package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Ladvien/self-sensored-sub003/internal/auth"
)

// Limiter hands out one token bucket per authenticated user, evicting
// idle buckets so long-running servers don't accumulate one limiter
// per user forever.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    rate.Limit
	burst   int
	idleTTL time.Duration
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New returns a Limiter allowing ratePerSecond sustained requests per
// user with burst headroom, evicting buckets unused for idleTTL.
func New(ratePerSecond float64, burst int, idleTTL time.Duration) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate.Limit(ratePerSecond),
		burst:   burst,
		idleTTL: idleTTL,
	}
}

func (l *Limiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.evictLocked(now)

	return b.limiter.Allow()
}

// evictLocked drops buckets idle longer than idleTTL. Callers must
// hold l.mu.
func (l *Limiter) evictLocked(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idleTTL {
			delete(l.buckets, key)
		}
	}
}

// Middleware rejects requests over the per-user rate with 429, once
// auth.Middleware has already resolved a user_id into the context.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFrom(r.Context())
		key := "anonymous"
		if ok {
			key = userID.String()
		}

		if !l.allow(key) {
			http.Error(w, `{"success":false,"error":"rate limited"}`, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
