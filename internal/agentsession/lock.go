package agentsession

import (
	"context"
	"sync"
)

// exclusiveLock is an owned-mutex primitive: at most one token is ever
// outstanding, and unlike sync.Mutex the token itself can be handed off
// between goroutines (carried inside a Lifecycle guard, released by
// whichever goroutine eventually calls Release). It is implemented as
// a buffered channel holding a single ticket, which gives fair-ish
// (FIFO-leaning) blocking acquisition for free.
type exclusiveLock struct {
	tokens chan struct{}
}

func newExclusiveLock() *exclusiveLock {
	l := &exclusiveLock{tokens: make(chan struct{}, 1)}
	l.tokens <- struct{}{}
	return l
}

// Acquire blocks until the token is available or ctx is done.
func (l *exclusiveLock) Acquire(ctx context.Context) (*lockToken, error) {
	select {
	case <-l.tokens:
		return &lockToken{lock: l}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// lockToken is the owned guard returned by Acquire. Release is
// idempotent so a Lifecycle's Close (itself idempotent via sync.Once)
// can never double-release.
type lockToken struct {
	lock     *exclusiveLock
	mu       sync.Mutex
	released bool
}

func (t *lockToken) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.released {
		return
	}
	t.released = true
	t.lock.tokens <- struct{}{}
}
