// Copyright (C) 2024 self-sensored contributors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package respcache implements A7: a response cache keyed on the
// ingest idempotency hash, standing in for a Redis deployment while
// remaining swappable behind the Cache interface. The in-memory
// implementation is grounded on the teacher's own
// pkg/lrucache.Cache — a mutex-guarded map plus an intrusive
// doubly-linked list for LRU eviction order — narrowed from that
// package's generic interface{} values and wait-for-computation
// de-duplication (irrelevant here, since C10 never calls this cache
// concurrently for the same key) down to plain []byte entries with
// per-entry expiration.
package respcache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Cache stores small response bodies keyed by idempotency hash. A
// Redis-backed implementation would satisfy the same interface.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

type entry struct {
	key       string
	value     []byte
	expiresAt time.Time
	elem      *list.Element
}

// MemoryCache is a bounded, LRU-evicting in-memory Cache.
type MemoryCache struct {
	mu         sync.Mutex
	maxEntries int
	entries    map[string]*entry
	order      *list.List // front = most recently used
}

// NewMemoryCache returns a MemoryCache holding at most maxEntries
// live entries, evicting the least recently used once full.
func NewMemoryCache(maxEntries int) *MemoryCache {
	return &MemoryCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
		order:      list.New(),
	}
}

// Get returns the cached value for key, or ok=false if absent or
// expired. An expired entry is evicted on lookup.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.removeLocked(e)
		return nil, false
	}

	c.order.MoveToFront(e.elem)
	return e.value, true
}

// Set stores value under key with the given ttl, evicting the least
// recently used entry if the cache is already at capacity.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[key]; ok {
		existing.value = value
		existing.expiresAt = time.Now().Add(ttl)
		c.order.MoveToFront(existing.elem)
		return
	}

	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		oldest := c.order.Back()
		if oldest != nil {
			c.removeLocked(oldest.Value.(*entry))
		}
	}

	e := &entry{key: key, value: value, expiresAt: time.Now().Add(ttl)}
	e.elem = c.order.PushFront(e)
	c.entries[key] = e
}

func (c *MemoryCache) removeLocked(e *entry) {
	c.order.Remove(e.elem)
	delete(c.entries, e.key)
}
