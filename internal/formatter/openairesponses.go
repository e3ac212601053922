package formatter

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/opencode-ai/agentcore/pkg/types"
)

// OpenAIResponses formats the agent event alphabet as the OpenAI
// Responses API's sequenced event progression (spec §4.4):
// response.created → response.output_item.added/done →
// response.completed, each stamped with a monotonic sequence_number.
//
// Each output object's shape differs enough per event kind (a created
// envelope, an item envelope, a completed envelope with an output
// array) that building them as ad-hoc JSON via gjson/sjson reads
// cleaner than a parallel struct per shape — the dynamic composition
// this pair of libraries is for.
type OpenAIResponses struct {
	id    string
	model string

	seq           int
	createdSent   bool
	itemSeq       int
	text          string
	outputObjects []json.RawMessage // accumulated for the final response.completed envelope

	pending []json.RawMessage
}

// NewOpenAIResponses constructs a formatter instance for one response id.
func NewOpenAIResponses(id, model string) *OpenAIResponses {
	return &OpenAIResponses{id: id, model: model}
}

func (f *OpenAIResponses) nextSeq() int {
	n := f.seq
	f.seq++
	return n
}

func (f *OpenAIResponses) enqueue(raw []byte) {
	f.pending = append(f.pending, json.RawMessage(raw))
}

func (f *OpenAIResponses) maybeEmitCreated() {
	if f.createdSent {
		return
	}
	f.createdSent = true
	raw, _ := sjson.Set("{}", "type", "response.created")
	raw, _ = sjson.Set(raw, "response.id", f.id)
	raw, _ = sjson.Set(raw, "response.model", f.model)
	raw, _ = sjson.Set(raw, "response.status", "in_progress")
	raw, _ = sjson.Set(raw, "sequence_number", f.nextSeq())
	f.enqueue([]byte(raw))
}

func (f *OpenAIResponses) newItemID(kind string) string {
	f.itemSeq++
	return fmt.Sprintf("item_%s_%d", kind, f.itemSeq)
}

// FormatEvent implements stream.Formatter. It may enqueue more than one
// output object for a single input event (e.g. response.created plus
// the first output_item.added, or a BrainResult's output_item.added +
// .done pair); the caller drains the rest via Drain (stream.Drainer)
// immediately, before any other event reaches FormatEvent again, so no
// backlog is ever still pending when a new event is processed.
func (f *OpenAIResponses) FormatEvent(event types.AgentEvent, sessionID string) (any, bool) {
	f.maybeEmitCreated()

	switch event.Kind {
	case types.EventBrainResult:
		msg := ""
		if event.Thought != nil {
			msg = event.Thought.Message
		}
		f.text += msg
		itemID := f.newItemID("msg")
		added, _ := sjson.Set("{}", "type", "response.output_item.added")
		added, _ = sjson.Set(added, "item.id", itemID)
		added, _ = sjson.Set(added, "item.type", "message")
		added, _ = sjson.Set(added, "item.role", "assistant")
		added, _ = sjson.Set(added, "sequence_number", f.nextSeq())
		f.enqueue([]byte(added))

		done, _ := sjson.Set("{}", "type", "response.output_item.done")
		done, _ = sjson.Set(done, "item.id", itemID)
		done, _ = sjson.Set(done, "item.type", "message")
		done, _ = sjson.Set(done, "item.content.0.type", "output_text")
		done, _ = sjson.SetRaw(done, "item.content.0.text", strconv.Quote(msg))
		done, _ = sjson.Set(done, "sequence_number", f.nextSeq())
		f.outputObjects = append(f.outputObjects, json.RawMessage(done))
		f.enqueue([]byte(done))

	case types.EventToolCallStarted:
		if event.Call == nil {
			return f.dequeue()
		}
		itemID := f.newItemID("call")
		added, _ := sjson.Set("{}", "type", "response.output_item.added")
		added, _ = sjson.Set(added, "item.id", itemID)
		added, _ = sjson.Set(added, "item.type", "function_call")
		added, _ = sjson.Set(added, "item.call_id", event.Call.ID)
		added, _ = sjson.Set(added, "item.name", event.Call.Name)
		added, _ = sjson.Set(added, "sequence_number", f.nextSeq())
		f.enqueue([]byte(added))

	case types.EventToolCallCompleted:
		if event.Call == nil || event.Result == nil {
			return f.dequeue()
		}
		done, _ := sjson.Set("{}", "type", "response.output_item.done")
		done, _ = sjson.Set(done, "item.call_id", event.Call.ID)
		done, _ = sjson.Set(done, "item.type", "function_call")
		done, _ = sjson.Set(done, "item.status", string(event.Result.Status))
		done, _ = sjson.Set(done, "item.output", event.Result.Output)
		done, _ = sjson.Set(done, "sequence_number", f.nextSeq())
		f.outputObjects = append(f.outputObjects, json.RawMessage(done))
		f.enqueue([]byte(done))

	case types.EventCompleted:
		status := "completed"
		if !event.Success {
			status = "failed"
		}
		completed, _ := sjson.Set("{}", "type", "response.completed")
		completed, _ = sjson.Set(completed, "response.id", f.id)
		completed, _ = sjson.Set(completed, "response.status", status)
		completed, _ = sjson.SetRaw(completed, "response.output", rawArray(f.outputObjects))
		completed, _ = sjson.Set(completed, "sequence_number", f.nextSeq())
		f.enqueue([]byte(completed))

	default:
		return f.dequeue()
	}

	return f.dequeue()
}

func (f *OpenAIResponses) dequeue() (any, bool) {
	if len(f.pending) == 0 {
		return nil, false
	}
	out := f.pending[0]
	f.pending = f.pending[1:]
	return out, true
}

// Drain implements stream.Drainer: returns whatever further output
// objects the most recent FormatEvent call enqueued beyond the first
// (e.g. the output_item.done half of a BrainResult's added/done pair).
func (f *OpenAIResponses) Drain() (any, bool) {
	return f.dequeue()
}

// EventName implements stream.Formatter: the Responses API names its
// SSE event after the object's own "type" field.
func (f *OpenAIResponses) EventName(out any) string {
	raw, ok := out.(json.RawMessage)
	if !ok {
		return "message"
	}
	name := gjson.GetBytes(raw, "type").String()
	if name == "" {
		return "message"
	}
	return name
}

func rawArray(items []json.RawMessage) string {
	out := "["
	for i, it := range items {
		if i > 0 {
			out += ","
		}
		out += string(it)
	}
	return out + "]"
}
