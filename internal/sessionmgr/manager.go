// Package sessionmgr implements the Session Manager (spec §4.1): a
// keyed registry of live AgentSessions with admission control,
// single-flight creation, lookup, cancellation and post-mortem
// eviction.
package sessionmgr

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/cenkalti/backoff/v4"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/opencode-ai/agentcore/internal/agentsession"
	"github.com/opencode-ai/agentcore/internal/logging"
	"github.com/opencode-ai/agentcore/internal/sessionerr"
	"github.com/opencode-ai/agentcore/internal/sessionevents"
	"github.com/opencode-ai/agentcore/pkg/types"
)

// Config is SessionManagerConfig from spec §3.
type Config struct {
	// MaxSessions is the hard admission cap; nil means unbounded.
	MaxSessions *int
	// AgentName is the default agent identity for requests that omit one.
	AgentName string
	// Ephemeral records the configured default teardown policy. The
	// Manager does not read it: HandleRequest and CreateNewSession take
	// the teardown policy from their own ephemeral argument.
	Ephemeral bool
}

// entry is the registry's bookkeeping for one live session: the
// AgentSession itself, the cancel func for its background task, and a
// channel closed once that task has exited (used by Shutdown to wait
// on drain).
type entry struct {
	session *agentsession.AgentSession
	cancel  context.CancelFunc
	done    chan struct{}
}

// Manager is the keyed SessionId -> AgentSession registry.
type Manager struct {
	cfg     Config
	builder agentsession.Builder
	events  *sessionevents.Bus

	mu       sync.Mutex
	sessions map[string]*entry

	sem           *semaphore.Weighted // nil when Config.MaxSessions is nil
	allowCreation atomic.Bool
}

// New creates a Manager. builder constructs the Controller+Runtime for
// a freshly admitted session; it is the only seam into the (external,
// out-of-scope) agent runtime.
func New(cfg Config, builder agentsession.Builder) *Manager {
	m := &Manager{
		cfg:      cfg,
		builder:  builder,
		events:   sessionevents.New(),
		sessions: make(map[string]*entry),
	}
	if cfg.MaxSessions != nil {
		m.sem = semaphore.NewWeighted(int64(*cfg.MaxSessions))
	}
	m.allowCreation.Store(true)
	return m
}

// Events exposes the manager-wide lifecycle notification bus (session
// created / evicted) for operational observers.
func (m *Manager) Events() *sessionevents.Bus { return m.events }

// SetAllowCreation toggles the global creation gate used for drain /
// shutdown. Exposed as an atomic flag, not a method requiring exclusive
// access, per spec §9 Open Question 4.
func (m *Manager) SetAllowCreation(allow bool) {
	m.allowCreation.Store(allow)
}

// SessionCount returns the current registry size.
func (m *Manager) SessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// SessionInfo is a read-only summary of one registered session, for
// operational listing (spec §4 supplemented "Session listing & lookup").
type SessionInfo struct {
	SessionID string `json:"session_id"`
	AgentName string `json:"agent_name"`
	Ephemeral bool   `json:"ephemeral"`
}

// ListSessions returns a summary of every currently registered session.
// Always non-nil, even when the registry is empty.
func (m *Manager) ListSessions() []SessionInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SessionInfo, 0, len(m.sessions))
	for id, e := range m.sessions {
		out = append(out, SessionInfo{
			SessionID: id,
			AgentName: e.session.AgentName,
			Ephemeral: e.session.Ephemeral,
		})
	}
	return out
}

// GenerateSessionID returns a fresh, collision-resistant session id.
func GenerateSessionID() string { return ulid.Make().String() }

// HandleRequest is the manager-level entry point (spec §4.1
// handle_request): resolve or create a session, then hand the request
// off to the session's own HandleRequest.
func (m *Manager) HandleRequest(
	ctx context.Context,
	requestID string,
	sessionID string,
	agentName string,
	ephemeral bool,
	trace []types.TraceMessage,
) (*agentsession.RequestSession, string, error) {
	resolvedID := sessionID
	if resolvedID == "" {
		resolvedID = GenerateSessionID()
		if agentName == "" {
			agentName = m.cfg.AgentName
		}
	}

	sess, err := m.getOrCreateSession(ctx, resolvedID, agentName, ephemeral)
	if err != nil {
		return nil, resolvedID, err
	}

	rs, err := sess.HandleRequest(ctx, requestID, trace)
	if err != nil {
		return nil, resolvedID, err
	}
	return rs, resolvedID, nil
}

// GetSession is a strict lookup: NotFound if the id is absent.
func (m *Manager) GetSession(sessionID string) (*agentsession.AgentSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[sessionID]
	if !ok {
		return nil, sessionerr.NotFound("session not found: " + sessionID)
	}
	return e.session, nil
}

// CreateNewSession is a strict create: an InvalidRequest error ("session
// already exists") if sessionID is already registered (spec §4.1; some protocols collapse this into
// reuse — see the HTTP layer for that policy choice, §9).
func (m *Manager) CreateNewSession(ctx context.Context, sessionID, agentName string, ephemeral bool) (*agentsession.AgentSession, error) {
	m.mu.Lock()
	if _, ok := m.sessions[sessionID]; ok {
		m.mu.Unlock()
		return nil, sessionerr.New(sessionerr.KindInvalidRequest, "session already exists: "+sessionID)
	}
	m.mu.Unlock()

	return m.getOrCreateSession(ctx, sessionID, agentName, ephemeral)
}

// CancelSession is best-effort: absence of the id is not an error
// (idempotent cancel, spec §8 invariant 6).
func (m *Manager) CancelSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	e, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return e.session.Cancel(ctx)
}

// DeleteSession removes the mapping unconditionally and signals the
// background task to stop; the underlying session may still be
// draining when this returns. Reports whether an entry was removed.
func (m *Manager) DeleteSession(sessionID string) bool {
	m.mu.Lock()
	e, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
		if m.sem != nil {
			m.sem.Release(1)
		}
	}
	m.mu.Unlock()
	if ok {
		e.cancel()
		m.events.Publish(sessionevents.Lifecycle{
			Kind: sessionevents.SessionEvicted, SessionID: sessionID, Reason: "explicit delete",
		})
	}
	return ok
}

// Shutdown cancels every live session's background task and waits
// (bounded by ctx) for them all to exit.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.SetAllowCreation(false)

	m.mu.Lock()
	entries := make([]*entry, 0, len(m.sessions))
	for _, e := range m.sessions {
		entries = append(entries, e)
	}
	m.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, e := range entries {
		e := e
		e.cancel()
		g.Go(func() error {
			select {
			case <-e.done:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}
	return g.Wait()
}

// getOrCreateSession implements the check-build-reconcile algorithm of
// spec §4.1: the registry lock is never held across agent construction.
func (m *Manager) getOrCreateSession(ctx context.Context, sessionID, agentName string, ephemeral bool) (*agentsession.AgentSession, error) {
	m.mu.Lock()
	if e, ok := m.sessions[sessionID]; ok {
		m.mu.Unlock()
		return e.session, nil
	}
	if !m.allowCreation.Load() {
		m.mu.Unlock()
		return nil, sessionerr.CreationDisabled("session creation is disabled")
	}
	if m.sem != nil && !m.sem.TryAcquire(1) {
		m.mu.Unlock()
		return nil, sessionerr.AdmissionDenied("max_sessions reached")
	}
	m.mu.Unlock()

	if agentName == "" {
		agentName = m.cfg.AgentName
	}

	controller, runtime, err := m.buildWithRetry(ctx, sessionID, agentName)
	if err != nil {
		if m.sem != nil {
			m.sem.Release(1)
		}
		return nil, sessionerr.AgentBuildFailed(err)
	}

	sess := agentsession.New(sessionID, agentName, ephemeral, controller)
	taskCtx, cancel := context.WithCancel(context.Background())
	e := &entry{session: sess, cancel: cancel, done: make(chan struct{})}

	m.mu.Lock()
	if winner, ok := m.sessions[sessionID]; ok {
		// Another caller raced us and already inserted. Discard ours:
		// cancel its not-yet-started task context so the orphaned
		// runtime never actually runs, and give back the admission slot
		// we speculatively took.
		m.mu.Unlock()
		cancel()
		if m.sem != nil {
			m.sem.Release(1)
		}
		return winner.session, nil
	}
	m.sessions[sessionID] = e
	m.mu.Unlock()

	m.spawnAgentTask(taskCtx, sessionID, sess, runtime, e)
	m.events.Publish(sessionevents.Lifecycle{Kind: sessionevents.SessionCreated, SessionID: sessionID})

	return sess, nil
}

// buildWithRetry wraps Builder with bounded exponential backoff, the
// same retry shape the reference agentic loop uses for transient
// upstream errors (teacher's newRetryBackoff), applied here to every
// agent-construction failure (at most two retries).
func (m *Manager) buildWithRetry(ctx context.Context, sessionID, agentName string) (agentsession.Controller, agentsession.Runtime, error) {
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)

	var controller agentsession.Controller
	var runtime agentsession.Runtime
	err := backoff.Retry(func() error {
		c, r, buildErr := m.builder(ctx, sessionID, agentName)
		if buildErr != nil {
			logging.ForSession(sessionID).Warn().Err(buildErr).Msg("agent construction failed, retrying")
			return buildErr
		}
		controller, runtime = c, r
		return nil
	}, b)
	if err != nil {
		return nil, nil, err
	}
	return controller, runtime, nil
}

// spawnAgentTask runs the background agent loop and its cleanup
// epilogue (spec §4.1 step 4): log terminal status, then evict from the
// registry — but only when the session is ephemeral (spec §5 Open
// Question 2; persistent sessions that return from Run without an
// external cancel stay registered, idle and reusable).
func (m *Manager) spawnAgentTask(ctx context.Context, sessionID string, sess *agentsession.AgentSession, runtime agentsession.Runtime, e *entry) {
	go func() {
		defer close(e.done)

		err := runtime.Run(ctx, sess.Feed())
		if err != nil {
			logging.ForSession(sessionID).Warn().Err(err).Msg("agent task exited with error")
		} else {
			logging.ForSession(sessionID).Debug().Msg("agent task exited")
		}
		sess.Feed().Close()

		if !sess.Ephemeral {
			return
		}

		m.mu.Lock()
		if cur, ok := m.sessions[sessionID]; ok && cur == e {
			delete(m.sessions, sessionID)
			if m.sem != nil {
				m.sem.Release(1)
			}
		}
		m.mu.Unlock()

		m.events.Publish(sessionevents.Lifecycle{
			Kind: sessionevents.SessionEvicted, SessionID: sessionID, Reason: "ephemeral agent task exited",
		})
	}()
}
