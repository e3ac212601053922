package types

// EventKind enumerates the agent event alphabet defined in spec §4.2.
type EventKind string

const (
	EventBrainResult       EventKind = "brain_result"
	EventToolCallStarted   EventKind = "tool_call_started"
	EventToolCallCompleted EventKind = "tool_call_completed"
	EventStatusChanged     EventKind = "status_changed"
	EventCompleted         EventKind = "completed"
	EventError             EventKind = "error"
)

// AgentEvent is the single alphabet the streaming adapter and every
// formatter consume. Exactly one of the Kind-specific fields is
// populated, matching Kind.
type AgentEvent struct {
	Kind EventKind `json:"kind"`

	// EventBrainResult
	Thought *Thought `json:"thought,omitempty"`

	// EventToolCallStarted / EventToolCallCompleted
	Call   *ToolCall       `json:"call,omitempty"`
	Result *ToolCallResult `json:"result,omitempty"`

	// EventStatusChanged
	NewStatus AgentStatus `json:"new_status,omitempty"`

	// EventCompleted
	Message string `json:"message,omitempty"`
	Success bool   `json:"success,omitempty"`

	// EventError (non-terminal runtime error)
	Error string `json:"error,omitempty"`
}

// BrainResult builds an EventBrainResult event.
func BrainResult(thought Thought) AgentEvent {
	return AgentEvent{Kind: EventBrainResult, Thought: &thought}
}

// ToolCallStarted builds an EventToolCallStarted event.
func ToolCallStarted(call ToolCall) AgentEvent {
	return AgentEvent{Kind: EventToolCallStarted, Call: &call}
}

// ToolCallCompleted builds an EventToolCallCompleted event.
func ToolCallCompleted(call ToolCall, result ToolCallResult) AgentEvent {
	return AgentEvent{Kind: EventToolCallCompleted, Call: &call, Result: &result}
}

// StatusChanged builds an EventStatusChanged event.
func StatusChanged(status AgentStatus) AgentEvent {
	return AgentEvent{Kind: EventStatusChanged, NewStatus: status}
}

// Completed builds a terminal EventCompleted event.
func Completed(message string, success bool) AgentEvent {
	return AgentEvent{Kind: EventCompleted, Message: message, Success: success}
}

// RuntimeError builds a non-terminal EventError event.
func RuntimeError(err string) AgentEvent {
	return AgentEvent{Kind: EventError, Error: err}
}
