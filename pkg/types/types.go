// Package types holds the wire-level data shapes shared between the
// session core and its HTTP surface: the agent event alphabet, the
// incoming message trace, and small protocol-neutral value types.
package types

// ModelRef references a specific provider/model pair a request asked for.
// The core never calls a model itself; it only echoes this back to
// formatters so they can stamp it on their output DTOs.
type ModelRef struct {
	ProviderID string `json:"providerID"`
	ModelID    string `json:"modelID"`
}

// ToolCallStatus is the terminal status of a tool invocation.
type ToolCallStatus string

const (
	ToolCallSuccess ToolCallStatus = "success"
	ToolCallError   ToolCallStatus = "error"
	ToolCallDenied  ToolCallStatus = "denied"
)

// ToolCall describes a single tool invocation the agent made.
type ToolCall struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Input map[string]any `json:"input,omitempty"`
}

// ToolCallResult is the outcome of a completed tool call.
type ToolCallResult struct {
	Status ToolCallStatus `json:"status"`
	Output string         `json:"output,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// AgentStatus is the coarse run state an agent reports via StatusChanged.
type AgentStatus string

const (
	StatusRunning AgentStatus = "running"
	StatusPaused  AgentStatus = "paused"
)

// Thought is the content of one BrainResult event: either assistant text
// or an error, never both.
type Thought struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// MessagePart is one piece of an incoming trace message. Only Type
// "text" is interpreted at the session boundary; other part types are
// carried through for logging/extension but dropped during replay (see
// AgentSession.HandleRequest and RequestSession.DroppedParts).
type MessagePart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// TraceMessage is one entry of the incoming request's message history.
// Role is one of "user", "assistant", "tool". Only "user" messages are
// replayed into the agent by default; the rest are reference material
// (spec §4.2 step 2).
type TraceMessage struct {
	Role  string        `json:"role"`
	Parts []MessagePart `json:"parts,omitempty"`
	// Content is a convenience field accepted in place of Parts for
	// single-part plain-text messages (mirrors the "content" vs "parts"
	// duality real chat APIs expose).
	Content string `json:"content,omitempty"`
}

// FlattenText joins all text parts (plus Content, if set) with newlines,
// dropping non-text parts. It returns the flattened string and the
// count of parts it dropped, so callers can log instead of silently
// losing data (SPEC_FULL §5 Open Question 6).
func (m TraceMessage) FlattenText() (text string, dropped int) {
	var lines []string
	if m.Content != "" {
		lines = append(lines, m.Content)
	}
	for _, p := range m.Parts {
		if p.Type == "text" {
			if p.Text != "" {
				lines = append(lines, p.Text)
			}
			continue
		}
		dropped++
	}
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out, dropped
}
