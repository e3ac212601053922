// Package stream implements the Event → SSE Streaming Adapter (spec
// §4.4): a generic pipeline turning a session's broadcast event feed
// into a client-facing SSE byte stream through a protocol-specific
// Formatter, with terminal-event detection, filtering and lag-as-
// termination backpressure handling.
package stream

import "github.com/opencode-ai/agentcore/pkg/types"

// Formatter is the polymorphic strategy every protocol adapter
// implements (spec §4.4, §9 "Formatter as polymorphic strategy").
// State — sequence counters, accumulated text — is private to each
// formatter instance; the adapter never inspects it.
type Formatter interface {
	// FormatEvent maps one AgentEvent to a protocol output object. ok is
	// false to filter the event: no frame is emitted, but terminal
	// detection still advances (spec §8 "Filter idempotence").
	FormatEvent(event types.AgentEvent, sessionID string) (out any, ok bool)

	// EventName returns the SSE "event:" label for out, defaulting to
	// "message" when a formatter has no opinion.
	EventName(out any) string
}

// Drainer is an optional capability for formatters whose FormatEvent
// call may enqueue more than one output object for a single delivered
// event (e.g. OpenAIResponses emits both response.output_item.added and
// .done for one BrainResult). The adapter calls Drain immediately after
// FormatEvent, and again after each further Drain, until it reports no
// more pending output — fully flushing one event's backlog before the
// next delivery is read, so a multi-item turn can never leave state
// that corrupts the next event's FormatEvent call.
type Drainer interface {
	Drain() (out any, ok bool)
}
