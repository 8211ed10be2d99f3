package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowPermitsBurstThenRejects(t *testing.T) {
	l := New(1, 2, time.Minute)

	assert.True(t, l.allow("user-1"))
	assert.True(t, l.allow("user-1"))
	assert.False(t, l.allow("user-1"))
}

func TestAllowIsPerKey(t *testing.T) {
	l := New(1, 1, time.Minute)

	assert.True(t, l.allow("user-1"))
	assert.True(t, l.allow("user-2"))
}

func TestEvictLockedDropsIdleBuckets(t *testing.T) {
	l := New(1, 1, time.Millisecond)
	l.allow("user-1")

	time.Sleep(5 * time.Millisecond)
	l.mu.Lock()
	l.evictLocked(time.Now())
	_, stillThere := l.buckets["user-1"]
	l.mu.Unlock()

	assert.False(t, stillThere)
}

func TestMiddlewareRejectsOverLimitWith429(t *testing.T) {
	l := New(1, 1, time.Minute)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := l.Middleware(next)

	r := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", nil)

	w1 := httptest.NewRecorder()
	handler.ServeHTTP(w1, r)
	assert.Equal(t, http.StatusOK, w1.Code)

	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, r)
	assert.Equal(t, http.StatusTooManyRequests, w2.Code)
}
