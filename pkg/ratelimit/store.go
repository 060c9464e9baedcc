package ratelimit

import (
	"sync"
	"time"
)

// MemoryStore is a thread-safe in-memory request log keyed by caller.
//
// Timestamps for each key are kept in arrival order. Expired entries are
// dropped lazily during checks and in bulk by Cleanup, which is expected to
// run on a schedule. MaxKeys bounds memory under key churn: when the limit
// is reached, new keys evict the key whose newest request is oldest.
type MemoryStore struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	maxKeys  int
}

const defaultMaxKeys = 10000

// NewMemoryStore creates a store bounded to maxKeys tracked callers.
// Values <= 0 use the default of 10000.
func NewMemoryStore(maxKeys int) *MemoryStore {
	if maxKeys <= 0 {
		maxKeys = defaultMaxKeys
	}
	return &MemoryStore{
		requests: make(map[string][]time.Time),
		maxKeys:  maxKeys,
	}
}

// CheckAndAdd atomically counts the key's requests newer than cutoff and,
// when the count is below limit, records now as a new request.
//
// Returns whether the request was admitted, the count of requests in the
// window after the call, and the oldest in-window timestamp (zero when the
// window is empty). The check and the append happen under one lock
// acquisition, so two concurrent calls can never both take the last slot.
func (s *MemoryStore) CheckAndAdd(key string, now, cutoff time.Time, limit int) (allowed bool, count int, oldest time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.requests[key]

	// Drop expired entries in place.
	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= limit {
		s.requests[key] = kept
		return false, len(kept), kept[0]
	}

	if _, exists := s.requests[key]; !exists && len(s.requests) >= s.maxKeys {
		s.evictStalest()
	}

	kept = append(kept, now)
	s.requests[key] = kept
	return true, len(kept), kept[0]
}

// Cleanup removes entries older than cutoff and drops keys left empty.
func (s *MemoryStore) Cleanup(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, ts := range s.requests {
		kept := ts[:0]
		for _, t := range ts {
			if t.After(cutoff) {
				kept = append(kept, t)
			}
		}
		removed += len(ts) - len(kept)
		if len(kept) == 0 {
			delete(s.requests, key)
		} else {
			s.requests[key] = kept
		}
	}
	return removed
}

// KeyCount returns the number of tracked callers.
func (s *MemoryStore) KeyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// evictStalest removes the key whose most recent request is oldest.
// Caller must hold the lock.
func (s *MemoryStore) evictStalest() {
	var victim string
	var newest time.Time
	first := true
	for key, ts := range s.requests {
		last := time.Time{}
		if len(ts) > 0 {
			last = ts[len(ts)-1]
		}
		if first || last.Before(newest) {
			victim, newest, first = key, last, false
		}
	}
	if victim != "" {
		delete(s.requests, victim)
	}
}
