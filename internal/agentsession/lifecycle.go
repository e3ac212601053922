package agentsession

import (
	"context"
	"sync"
	"time"

	"github.com/opencode-ai/agentcore/internal/logging"
)

// ephemeralCancelTimeout bounds the detached cancel a dropped ephemeral
// Lifecycle dispatches; cancel is cooperative and should not hang
// forever if the agent runtime misbehaves.
const ephemeralCancelTimeout = 10 * time.Second

// Lifecycle is a scope guard: closing it releases the controller lock
// and, for ephemeral sessions, cancels the agent (spec §4.3). Close is
// idempotent.
type Lifecycle interface {
	Close()
}

// persistentLifecycle releases the lock only; the session stays
// registered and reusable by the next caller.
type persistentLifecycle struct {
	token *lockToken
	once  sync.Once

	sessionID string
}

func newPersistentLifecycle(sessionID string, token *lockToken) Lifecycle {
	return &persistentLifecycle{token: token, sessionID: sessionID}
}

func (l *persistentLifecycle) Close() {
	l.once.Do(func() {
		l.token.Release()
		logging.ForSession(l.sessionID).Debug().Msg("stream completed, lock released")
	})
}

// ephemeralLifecycle dispatches a detached cancel before releasing the
// lock. Drop is synchronous but Cancel is async, so the cancel runs in
// its own goroutine against a clone of the controller acquired before
// release — it must not block Close.
type ephemeralLifecycle struct {
	token      *lockToken
	controller Controller
	once       sync.Once

	sessionID string
}

func newEphemeralLifecycle(sessionID string, token *lockToken, controller Controller) Lifecycle {
	return &ephemeralLifecycle{token: token, controller: controller, sessionID: sessionID}
}

func (l *ephemeralLifecycle) Close() {
	l.once.Do(func() {
		ctrl := l.controller
		sessionID := l.sessionID
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), ephemeralCancelTimeout)
			defer cancel()
			if err := ctrl.Cancel(ctx); err != nil {
				logging.ForSession(sessionID).Warn().Err(err).
					Msg("ephemeral lifecycle: detached cancel failed")
			}
		}()
		l.token.Release()
		logging.ForSession(sessionID).Debug().
			Msg("ephemeral stream ended, cancel dispatched, lock released")
	})
}
