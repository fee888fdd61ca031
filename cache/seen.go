package cache

import (
	"sync"
	"time"
)

// Seen remembers course links already handed to the enroller so a coupon
// rediscovered on a later cycle is not enrolled twice.
// It is safe for concurrent use.
type Seen struct {
	mu    sync.RWMutex
	store map[string]time.Time
	ttl   time.Duration
}

// NewSeen creates a Seen set whose entries expire after ttl. A non-positive
// ttl means entries never expire. A background goroutine runs every 5 minutes
// to evict expired entries.
func NewSeen(ttl time.Duration) *Seen {
	s := &Seen{
		store: make(map[string]time.Time),
		ttl:   ttl,
	}
	if ttl > 0 {
		go s.cleanupLoop()
	}
	return s
}

// MarkSeen records a link and reports whether it was newly seen (or had
// expired since it was last seen).
func (s *Seen) MarkSeen(link string) bool {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if at, ok := s.store[link]; ok {
		if s.ttl <= 0 || now.Sub(at) <= s.ttl {
			return false
		}
	}
	s.store[link] = now
	return true
}

// Len returns the number of remembered links, expired entries included until
// the next cleanup pass.
func (s *Seen) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.store)
}

// cleanupLoop evicts expired entries every 5 minutes.
func (s *Seen) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-s.ttl)
		s.mu.Lock()
		for link, at := range s.store {
			if at.Before(cutoff) {
				delete(s.store, link)
			}
		}
		s.mu.Unlock()
	}
}
