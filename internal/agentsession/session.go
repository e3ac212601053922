package agentsession

import (
	"context"

	"github.com/opencode-ai/agentcore/internal/broadcast"
	"github.com/opencode-ai/agentcore/internal/sessionerr"
	"github.com/opencode-ai/agentcore/pkg/types"
)

// AgentSession is one live agent instance: the exclusive controller
// lock, the multi-reader event feed, and the identity fields echoed
// back to protocol formatters (spec §3).
type AgentSession struct {
	SessionID string
	AgentName string
	Ephemeral bool

	controller Controller
	lock       *exclusiveLock
	feed       *broadcast.Feed
}

// New wraps a freshly built Controller under an exclusive lock, with a
// fresh event feed the background Runtime will publish into.
func New(sessionID, agentName string, ephemeral bool, controller Controller) *AgentSession {
	return &AgentSession{
		SessionID:  sessionID,
		AgentName:  agentName,
		Ephemeral:  ephemeral,
		controller: controller,
		lock:       newExclusiveLock(),
		feed:       broadcast.New(),
	}
}

// Feed returns the session's broadcast event feed, for the background
// task driving Runtime.Run and for read-only (non-lock-holding)
// subscribers.
func (s *AgentSession) Feed() *broadcast.Feed { return s.feed }

// RequestSession is the per-in-flight-request bundle handed to the
// streaming adapter: a cheap controller handle, an event subscription
// taken after any input was enqueued, and the Lifecycle guard that
// enforces release-on-drop (spec §3 "RequestSession").
type RequestSession struct {
	SessionID    string
	RequestID    string
	Controller   Controller
	Sub          *broadcast.Subscription
	Lifecycle    Lifecycle
	DroppedParts int
}

// Close ends the request session: unsubscribes from the feed and runs
// the Lifecycle guard. Safe to call more than once.
func (rs *RequestSession) Close() {
	if rs.Sub != nil {
		rs.Sub.Unsubscribe()
	}
	if rs.Lifecycle != nil {
		rs.Lifecycle.Close()
	}
}

// HandleRequest acquires the controller lock (blocking on contention —
// deliberate, spec §4.2 step 1), replays the user-message trace into
// the agent, then subscribes to the event feed so the stream begins
// after the just-sent input (spec §5 ordering guarantee).
func (s *AgentSession) HandleRequest(ctx context.Context, requestID string, trace []types.TraceMessage) (*RequestSession, error) {
	token, err := s.lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	dropped := 0
	for _, m := range trace {
		if m.Role != "user" {
			continue
		}
		text, d := m.FlattenText()
		dropped += d
		if text == "" {
			continue
		}
		if err := s.controller.SendUserInput(ctx, text); err != nil {
			token.Release()
			return nil, sessionerr.Wrap(sessionerr.KindExecutionError, "send user input", err)
		}
	}

	sub := s.feed.Subscribe()

	var lc Lifecycle
	if s.Ephemeral {
		lc = newEphemeralLifecycle(s.SessionID, token, s.controller)
	} else {
		lc = newPersistentLifecycle(s.SessionID, token)
	}

	return &RequestSession{
		SessionID:    s.SessionID,
		RequestID:    requestID,
		Controller:   s.controller,
		Sub:          sub,
		Lifecycle:    lc,
		DroppedParts: dropped,
	}, nil
}

// Cancel acquires the controller lock and cancels the agent. The
// discipline is that a canceller takes the lock only after the current
// writer releases it (spec §4.2 "cancel").
func (s *AgentSession) Cancel(ctx context.Context) error {
	token, err := s.lock.Acquire(ctx)
	if err != nil {
		return err
	}
	defer token.Release()
	return s.controller.Cancel(ctx)
}

// SetMethod acquires the controller lock and configures the tool-call
// method, returning the effective method the controller reports.
func (s *AgentSession) SetMethod(ctx context.Context, method string) (string, error) {
	token, err := s.lock.Acquire(ctx)
	if err != nil {
		return "", err
	}
	defer token.Release()
	return s.controller.SetMethod(ctx, method)
}
