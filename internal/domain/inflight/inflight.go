// Package inflight tracks form submissions that are waiting on the upstream
// assignment endpoint, so the same rendered form cannot be submitted twice
// concurrently.
package inflight

import (
	"context"
	"sync"
	"sync/atomic"
)

// Tracker records in-flight form tokens.
type Tracker interface {
	// Begin atomically marks token as in flight. It returns ErrInFlight if
	// the token is already in flight and ErrFull if the tracker is at
	// capacity.
	Begin(ctx context.Context, token string) error

	// End releases token. Releasing an unknown token is a no-op.
	End(ctx context.Context, token string)

	Size() int64
}

// inMemoryTracker implements Tracker with a mutex-guarded set.
// maxSize <= 0 means unbounded.
type inMemoryTracker struct {
	mu      sync.Mutex
	tokens  map[string]struct{}
	maxSize int
	size    atomic.Int64
}

// NewInMemoryTracker creates a tracker with configuration options.
func NewInMemoryTracker(opts ...Option) Tracker {
	t := &inMemoryTracker{}
	for _, opt := range opts {
		opt(t)
	}
	t.tokens = make(map[string]struct{})
	return t
}

func (t *inMemoryTracker) Begin(_ context.Context, token string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.tokens[token]; exists {
		return ErrInFlight
	}
	if t.maxSize > 0 && len(t.tokens) >= t.maxSize {
		return ErrFull
	}
	t.tokens[token] = struct{}{}
	t.size.Add(1)
	return nil
}

func (t *inMemoryTracker) End(_ context.Context, token string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.tokens[token]; exists {
		delete(t.tokens, token)
		t.size.Add(-1)
	}
}

// Size returns the number of tokens in flight.
func (t *inMemoryTracker) Size() int64 {
	return t.size.Load()
}
