package stream

import "github.com/opencode-ai/agentcore/pkg/types"

// isTerminal implements the terminal-event policy of spec §4.4.
// Completed is always terminal. StatusChanged→Paused is terminal iff
// followPastPause is false — the renamed, semantically-identical
// replacement for the spec's stop_on_pause flag (§9 Open Question 1):
// followPastPause=true means a Paused status does NOT end the stream
// (read-only observers keep following past pauses); followPastPause=false
// means Paused DOES end the stream (write streams stop when the agent
// suspends for user input).
func isTerminal(event types.AgentEvent, followPastPause bool) bool {
	switch event.Kind {
	case types.EventCompleted:
		return true
	case types.EventStatusChanged:
		if event.NewStatus == types.StatusPaused {
			return !followPastPause
		}
		return false
	default:
		return false
	}
}
