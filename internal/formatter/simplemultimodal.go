package formatter

import (
	"encoding/json"

	"github.com/tidwall/sjson"

	"github.com/opencode-ai/agentcore/pkg/types"
)

// SimpleMultimodal formats the agent event alphabet as one flat JSON
// object per event: {id, model, assistant?, call?, result?} (spec
// §4.4). The object's optional fields vary per event kind, which is
// exactly the "some fields, shape depends on what happened" case
// gjson/sjson's path-based dynamic composition fits better than a
// struct with every field tagged omitempty.
type SimpleMultimodal struct {
	id    string
	model string
}

// NewSimpleMultimodal constructs a formatter instance for one stream.
func NewSimpleMultimodal(id, model string) *SimpleMultimodal {
	return &SimpleMultimodal{id: id, model: model}
}

// FormatEvent implements stream.Formatter.
func (f *SimpleMultimodal) FormatEvent(event types.AgentEvent, sessionID string) (any, bool) {
	base, _ := sjson.Set("{}", "id", f.id)
	base, _ = sjson.Set(base, "model", f.model)

	switch event.Kind {
	case types.EventBrainResult:
		text := ""
		if event.Thought != nil {
			text = event.Thought.Message
			if event.Thought.Error != "" {
				text = event.Thought.Error
			}
		}
		base, _ = sjson.Set(base, "assistant", text)

	case types.EventToolCallStarted:
		if event.Call == nil {
			return nil, false
		}
		base, _ = sjson.Set(base, "call.id", event.Call.ID)
		base, _ = sjson.Set(base, "call.name", event.Call.Name)
		if len(event.Call.Input) > 0 {
			if input, err := json.Marshal(event.Call.Input); err == nil {
				base, _ = sjson.SetRaw(base, "call.input", string(input))
			}
		}

	case types.EventToolCallCompleted:
		if event.Call == nil || event.Result == nil {
			return nil, false
		}
		base, _ = sjson.Set(base, "call.id", event.Call.ID)
		base, _ = sjson.Set(base, "call.name", event.Call.Name)
		base, _ = sjson.Set(base, "result.status", string(event.Result.Status))
		if event.Result.Output != "" {
			base, _ = sjson.Set(base, "result.output", event.Result.Output)
		}
		if event.Result.Error != "" {
			base, _ = sjson.Set(base, "result.error", event.Result.Error)
		}

	case types.EventCompleted:
		base, _ = sjson.Set(base, "assistant", event.Message)

	default:
		// StatusChanged / Error: not part of this protocol's flat shape.
		// The adapter's own terminal detection still sees the raw event
		// regardless of whether a frame is emitted here.
		return nil, false
	}

	return json.RawMessage(base), true
}

// EventName implements stream.Formatter: simple multimodal has no
// per-event SSE name, everything rides under "message".
func (f *SimpleMultimodal) EventName(any) string { return "message" }
