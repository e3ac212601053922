// Package agentsession implements one agent instance's concurrency
// discipline: a single exclusive-writer controller lock, a multi-reader
// broadcast event feed, and the Lifecycle scope guards that release the
// lock (and, for ephemeral sessions, cancel the agent) when a request's
// stream ends.
//
// The agent runtime itself — the thing that actually talks to an LLM
// and runs tools — is treated as an external collaborator (spec §1).
// Controller and Runtime below are the narrow contracts this package
// consumes from it.
package agentsession

import (
	"context"

	"github.com/opencode-ai/agentcore/internal/broadcast"
)

// Controller is the exclusive-writer handle to one agent instance
// (spec §4.2). Implementations must be safe to hold across the
// Lifecycle's lock-release boundary; callers never hold more than one
// outstanding handle to the lock at a time, but the Controller value
// itself may be read concurrently by both the lock holder and a
// detached ephemeral-cancel goroutine.
type Controller interface {
	// SendUserInput enqueues a user utterance. Fails with an
	// "agent stopped" error if the agent has already exited.
	SendUserInput(ctx context.Context, text string) error

	// Cancel requests graceful termination. Idempotent: cancelling an
	// already-cancelled or already-stopped agent is not an error.
	Cancel(ctx context.Context) error

	// SetMethod configures the tool-call method and returns the
	// effective method actually in use (an implementation may not
	// support every requested method and fall back).
	SetMethod(ctx context.Context, method string) (effective string, err error)
}

// Runtime drives one agent's event loop, publishing AgentEvents onto
// feed until completion, pause, or cancellation. Run returns when the
// loop exits for any reason; its return value is logged by the caller
// but does not itself determine whether the session is evicted (see
// AgentSession.Ephemeral / SPEC_FULL §5 Open Question 2).
type Runtime interface {
	Run(ctx context.Context, feed *broadcast.Feed) error
}

// Builder constructs a fresh Controller+Runtime pair for a new session.
// Construction may be slow (it is typically where the real agent
// runtime does its I/O) and must never be called while a registry lock
// is held (spec §4.1 step 3).
type Builder func(ctx context.Context, sessionID, agentName string) (Controller, Runtime, error)
