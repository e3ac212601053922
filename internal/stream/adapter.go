package stream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/opencode-ai/agentcore/internal/agentsession"
	"github.com/opencode-ai/agentcore/internal/broadcast"
	"github.com/opencode-ai/agentcore/internal/logging"
)

// Options configures one adapter run.
type Options struct {
	SessionID string
	// FollowPastPause is the renamed stop_on_pause flag (§9 Open
	// Question 1): true keeps the stream open past a Paused status,
	// false ends it there.
	FollowPastPause bool
	Heartbeat       bool
}

// EventToSSEStream drains sub through formatter onto w until the feed
// closes, a terminal event is written, or ctx is done. It owns no
// Lifecycle — callers pass a subscription obtained independently of any
// RequestSession (spec §4.4 "no lifecycle ownership", used for
// read-only observers such as GET /v1/responses/{id}).
func EventToSSEStream(ctx context.Context, sub *broadcast.Subscription, w *SSEWriter, formatter Formatter, opts Options) error {
	return runLoop(ctx, sub, w, formatter, opts)
}

// SessionToSSEStream is the write-path variant: it captures rs so rs.Close
// (unsubscribe + Lifecycle release, and for ephemeral sessions a detached
// cancel) runs once the stream ends for any reason (spec §4.4
// "captures the RequestSession... so cleanup runs at stream-end").
func SessionToSSEStream(ctx context.Context, rs *agentsession.RequestSession, w *SSEWriter, formatter Formatter, opts Options) error {
	defer rs.Close()
	return runLoop(ctx, rs.Sub, w, formatter, opts)
}

// runLoop is the streaming algorithm of spec §4.4: receive, detect
// terminal, format (optionally filtering), write, repeat until a
// terminal event's frame is written or the feed ends.
func runLoop(ctx context.Context, sub *broadcast.Subscription, w *SSEWriter, formatter Formatter, opts Options) error {
	deliveries := make(chan broadcast.Delivery)
	pumpDone := make(chan struct{})
	go func() {
		defer close(deliveries)
		for {
			d, ok := sub.Receive()
			if !ok {
				return
			}
			select {
			case deliveries <- d:
			case <-pumpDone:
				return
			}
		}
	}()
	defer close(pumpDone)

	var heartbeat <-chan struct{}
	if opts.Heartbeat {
		stopTicker := make(chan struct{})
		ticks := make(chan struct{})
		go heartbeatTicker(ticks, stopTicker)
		heartbeat = ticks
		defer close(stopTicker)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-heartbeat:
			w.WriteHeartbeat()

		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			if d.Err != nil {
				logging.ForSession(opts.SessionID).Warn().Err(d.Err).
					Msg("event feed lagged, ending stream")
				return d.Err
			}

			terminal := isTerminal(d.Event, opts.FollowPastPause)

			// A single delivered event may enqueue more than one output
			// object (spec §4.4 Drainer); fully flush the backlog it
			// produces before moving on to the next delivery, so a
			// multi-item turn never leaves state that corrupts the next
			// event's FormatEvent call.
			for out, ok := formatter.FormatEvent(d.Event, opts.SessionID); ok; {
				payload, err := json.Marshal(out)
				if err != nil {
					// Serialization failure: log and skip this output
					// object, not fatal to the stream (spec §4.4).
					logging.ForSession(opts.SessionID).Warn().Err(err).
						Msg("event serialization failed, skipping")
				} else if err := w.WriteRaw(formatter.EventName(out), payload); err != nil {
					logging.ForSession(opts.SessionID).Debug().Err(err).
						Msg("sse write failed, ending stream")
					return err
				}

				dr, isDrainer := formatter.(Drainer)
				if !isDrainer {
					break
				}
				out, ok = dr.Drain()
			}

			if terminal {
				return nil
			}
		}
	}
}

// CollectFinal drains rs without writing SSE frames, for the
// non-streaming protocol variants (spec §6 "JSON if stream=false"): it
// runs the formatter over every event but returns only the last output
// produced once a terminal event arrives, discarding rs via Close when
// done. Like runLoop, it fully flushes a Drainer formatter's backlog
// for each delivered event before moving on, so a multi-item turn (e.g.
// a BrainResult immediately followed by Completed) can't leave a stale
// object queued that the terminal event would otherwise be handed
// instead of its own.
func CollectFinal(ctx context.Context, rs *agentsession.RequestSession, formatter Formatter, opts Options) (any, error) {
	defer rs.Close()

	deliveries := make(chan broadcast.Delivery)
	pumpDone := make(chan struct{})
	go func() {
		defer close(deliveries)
		for {
			d, ok := rs.Sub.Receive()
			if !ok {
				return
			}
			select {
			case deliveries <- d:
			case <-pumpDone:
				return
			}
		}
	}()
	defer close(pumpDone)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case d, ok := <-deliveries:
			if !ok {
				return nil, nil
			}
			if d.Err != nil {
				return nil, d.Err
			}

			terminal := isTerminal(d.Event, opts.FollowPastPause)

			out, ok := formatter.FormatEvent(d.Event, opts.SessionID)
			for {
				dr, isDrainer := formatter.(Drainer)
				if !isDrainer {
					break
				}
				next, nextOK := dr.Drain()
				if !nextOK {
					break
				}
				out, ok = next, nextOK
			}

			if terminal {
				if ok {
					return out, nil
				}
				return nil, nil
			}
		}
	}
}

func heartbeatTicker(ticks chan<- struct{}, stop <-chan struct{}) {
	t := time.NewTicker(HeartbeatInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			select {
			case ticks <- struct{}{}:
			case <-stop:
				return
			}
		case <-stop:
			return
		}
	}
}
