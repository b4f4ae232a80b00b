package dedup

import (
	"context"
	"sync"
	"time"
)

// Local is an in-memory Store. Expired entries are purged lazily on every
// call; there is no background sweeper.
type Local struct {
	mu       sync.Mutex
	ttl      time.Duration
	lastSent map[string]time.Time
}

// NewLocal creates an in-memory store with the given window.
func NewLocal(ttl time.Duration) *Local {
	return &Local{
		ttl:      ttl,
		lastSent: make(map[string]time.Time),
	}
}

// ShouldSend implements Store. It never returns an error.
func (l *Local) ShouldSend(_ context.Context, key string, now time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.purge(now)

	if _, ok := l.lastSent[key]; ok {
		return false, nil
	}
	l.lastSent[key] = now
	return true, nil
}

func (l *Local) purge(now time.Time) {
	for key, sent := range l.lastSent {
		if now.Sub(sent) >= l.ttl {
			delete(l.lastSent, key)
		}
	}
}

// Len returns the number of live entries as of the last call.
func (l *Local) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lastSent)
}

func (l *Local) Name() string { return "local" }

func (l *Local) Close() error { return nil }
