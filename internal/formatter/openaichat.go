// Package formatter holds the reference protocol formatters (spec
// §4.4 "Protocol formatters", §2 component budget "~20% Per-protocol
// formatters (reference impls)"): each implements stream.Formatter and
// maps the AgentEvent alphabet onto one wire protocol's DTOs.
package formatter

import (
	"fmt"
	"strings"

	"github.com/opencode-ai/agentcore/pkg/types"
)

// ChatMessage is the OpenAI Chat Completions message shape this
// formatter emits.
type ChatMessage struct {
	Role             string `json:"role"`
	Content          string `json:"content"`
	ReasoningContent string `json:"reasoning_content,omitempty"`
}

// ChatChoice wraps one completion choice.
type ChatChoice struct {
	Index        int          `json:"index"`
	Message      *ChatMessage `json:"message,omitempty"`
	Delta        *ChatMessage `json:"delta,omitempty"`
	FinishReason *string      `json:"finish_reason"`
}

// ChatUsage is best-effort token accounting (SPEC_FULL §5 Open
// Question 5). The agent event alphabet carries no usage figures, so
// this formatter always reports it zeroed.
type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatCompletion is the response object for both the non-streaming
// reply and each streaming chunk (object differs: "chat.completion" vs
// "chat.completion.chunk").
type ChatCompletion struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   *ChatUsage   `json:"usage,omitempty"`
}

// OpenAIChat formats the agent event alphabet as OpenAI Chat
// Completions objects (spec §4.4). It accumulates assistant text from
// BrainResult events and summarizes tool calls into reasoning_content,
// per spec; non-streaming emits a single object at Completed, streaming
// emits one delta chunk per BrainResult plus a final chunk.
type OpenAIChat struct {
	id        string
	model     string
	streaming bool
	created   int64

	text      strings.Builder
	reasoning []string
}

// NewOpenAIChat constructs a formatter instance for one stream. created
// is the Unix timestamp to stamp every chunk/response with — callers
// pass time.Now().Unix(); the formatter itself stays deterministic and
// never reads the clock.
func NewOpenAIChat(id, model string, streaming bool, created int64) *OpenAIChat {
	return &OpenAIChat{id: id, model: model, streaming: streaming, created: created}
}

func (f *OpenAIChat) object() string {
	if f.streaming {
		return "chat.completion.chunk"
	}
	return "chat.completion"
}

// FormatEvent implements stream.Formatter.
func (f *OpenAIChat) FormatEvent(event types.AgentEvent, sessionID string) (any, bool) {
	switch event.Kind {
	case types.EventBrainResult:
		msg := ""
		if event.Thought != nil {
			msg = event.Thought.Message
			if event.Thought.Error != "" {
				msg = event.Thought.Error
			}
		}
		f.text.WriteString(msg)
		if !f.streaming {
			return nil, false
		}
		return f.chunk(&ChatMessage{Role: "assistant", Content: msg}, nil), true

	case types.EventToolCallStarted:
		if event.Call != nil {
			f.reasoning = append(f.reasoning, fmt.Sprintf("called %s", event.Call.Name))
		}
		return nil, false

	case types.EventToolCallCompleted:
		if event.Call != nil && event.Result != nil {
			f.reasoning = append(f.reasoning,
				fmt.Sprintf("%s -> %s", event.Call.Name, event.Result.Status))
		}
		return nil, false

	case types.EventError:
		if !f.streaming {
			return nil, false
		}
		return f.chunk(&ChatMessage{Role: "assistant", Content: "", ReasoningContent: event.Error}, nil), true

	case types.EventCompleted:
		reason := "stop"
		if !event.Success {
			reason = "error"
		}
		if f.streaming {
			return f.chunk(&ChatMessage{}, &reason), true
		}
		return f.finalResponse(reason), true

	default:
		return nil, false
	}
}

// EventName implements stream.Formatter; OpenAI chat streams use the
// unnamed "message" SSE event.
func (f *OpenAIChat) EventName(any) string { return "message" }

func (f *OpenAIChat) chunk(delta *ChatMessage, finishReason *string) ChatCompletion {
	return ChatCompletion{
		ID:      f.id,
		Object:  f.object(),
		Created: f.created,
		Model:   f.model,
		Choices: []ChatChoice{{Index: 0, Delta: delta, FinishReason: finishReason}},
	}
}

func (f *OpenAIChat) finalResponse(finishReason string) ChatCompletion {
	reasoning := strings.Join(f.reasoning, "; ")
	return ChatCompletion{
		ID:      f.id,
		Object:  f.object(),
		Created: f.created,
		Model:   f.model,
		Choices: []ChatChoice{{
			Index: 0,
			Message: &ChatMessage{
				Role:             "assistant",
				Content:          f.text.String(),
				ReasoningContent: reasoning,
			},
			FinishReason: &finishReason,
		}},
		// Usage is always reported and always zeroed — a documented
		// placeholder, not silently wrong (SPEC_FULL §5 Open Question 5).
		Usage: &ChatUsage{},
	}
}
