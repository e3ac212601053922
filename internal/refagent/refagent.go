// Package refagent is a deterministic, in-process stand-in for the
// (externally out-of-scope, spec §1) real agent runtime. It implements
// the agentsession.Controller and agentsession.Runtime contracts so
// SessionManager, AgentSession, Lifecycle and the SSE adapter can be
// exercised end-to-end by running code and by tests, without a real
// LLM — the same role the teacher's citest/testutil mock LLM server
// plays for the original codebase, adapted here to the narrower
// controller/event-feed boundary this spec actually defines rather
// than an HTTP-level OpenAI mock.
package refagent

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/opencode-ai/agentcore/internal/agentsession"
	"github.com/opencode-ai/agentcore/internal/broadcast"
	"github.com/opencode-ai/agentcore/pkg/types"
)

// supportedMethods mirrors the interactive client's /tc dot-command
// surface named in spec §6 (auto, fc, fc2, so) — listed there as
// outside the core, but the controller contract still needs to accept
// and echo back a method.
var supportedMethods = map[string]bool{"auto": true, "fc": true, "fc2": true, "so": true}

// Agent is a single session's reference runtime: it turns each user
// input into a small canned event sequence (optionally including a
// tool call when the input names one) and pauses for the next input,
// until cancelled or told to finish.
type Agent struct {
	sessionID string

	mu      sync.Mutex
	method  string
	stopped bool

	input      chan string
	cancelOnce sync.Once
	cancelCh   chan struct{}
}

// New constructs a fresh reference agent for one session.
func New(sessionID string) *Agent {
	return &Agent{
		sessionID: sessionID,
		method:    "auto",
		input:     make(chan string, 8),
		cancelCh:  make(chan struct{}),
	}
}

// Builder adapts New to the agentsession.Builder signature, ignoring
// agentName (the reference agent has no persona variation).
func Builder(ctx context.Context, sessionID, agentName string) (agentsession.Controller, agentsession.Runtime, error) {
	a := New(sessionID)
	return a, a, nil
}

// SendUserInput implements agentsession.Controller.
func (a *Agent) SendUserInput(ctx context.Context, text string) error {
	a.mu.Lock()
	stopped := a.stopped
	a.mu.Unlock()
	if stopped {
		return fmt.Errorf("refagent: agent stopped")
	}
	select {
	case a.input <- text:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel implements agentsession.Controller. Idempotent per spec §4.2.
func (a *Agent) Cancel(ctx context.Context) error {
	a.cancelOnce.Do(func() { close(a.cancelCh) })
	return nil
}

// SetMethod implements agentsession.Controller: unsupported methods
// fall back to "auto" rather than erroring, mirroring real tool-call
// method negotiation.
func (a *Agent) SetMethod(ctx context.Context, method string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if supportedMethods[method] {
		a.method = method
	} else {
		a.method = "auto"
	}
	return a.method, nil
}

// Run implements agentsession.Runtime: consumes queued user inputs,
// publishes a canned turn for each, and pauses awaiting the next one
// until cancelled, told to finish (input "/bye"), or ctx ends.
func (a *Agent) Run(ctx context.Context, feed *broadcast.Feed) error {
	defer a.markStopped()

	feed.Publish(types.StatusChanged(types.StatusRunning))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-a.cancelCh:
			feed.Publish(types.Completed("cancelled", false))
			return nil

		case text := <-a.input:
			if strings.TrimSpace(text) == "/bye" {
				feed.Publish(types.BrainResult(types.Thought{Message: "goodbye"}))
				feed.Publish(types.Completed("goodbye", true))
				return nil
			}

			for _, ev := range turnFor(text) {
				feed.Publish(ev)
				select {
				case <-a.cancelCh:
					feed.Publish(types.Completed("cancelled", false))
					return nil
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
			}
			feed.Publish(types.StatusChanged(types.StatusPaused))
		}
	}
}

func (a *Agent) markStopped() {
	a.mu.Lock()
	a.stopped = true
	a.mu.Unlock()
}

// turnFor builds the canned event sequence for one user input. A
// message of the form "tool:<name>:<arg>" triggers a tool call;
// anything else just echoes back as assistant text.
func turnFor(text string) []types.AgentEvent {
	if name, arg, ok := parseToolInvocation(text); ok {
		call := types.ToolCall{ID: "call_" + name, Name: name, Input: map[string]any{"arg": arg}}
		return []types.AgentEvent{
			types.BrainResult(types.Thought{Message: "invoking " + name}),
			types.ToolCallStarted(call),
			types.ToolCallCompleted(call, types.ToolCallResult{
				Status: types.ToolCallSuccess,
				Output: "ok:" + arg,
			}),
		}
	}
	return []types.AgentEvent{types.BrainResult(types.Thought{Message: "echo: " + text})}
}

func parseToolInvocation(text string) (name, arg string, ok bool) {
	if !strings.HasPrefix(text, "tool:") {
		return "", "", false
	}
	parts := strings.SplitN(strings.TrimPrefix(text, "tool:"), ":", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}
