// Package sessionevents is the manager-wide lifecycle event bus:
// session created / evicted notifications for operational observers
// (metrics, admin tooling), as distinct from a single session's
// high-frequency agent event feed (internal/broadcast).
//
// It is adapted from the reference server's global pub/sub bus
// (internal/event in the teacher tree): same watermill gochannel
// transport, same Subscribe/Publish shape, narrowed to the two
// lifecycle facts the session manager actually needs to announce.
package sessionevents

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/opencode-ai/agentcore/internal/logging"
)

// Kind distinguishes the two lifecycle facts this bus carries.
type Kind string

const (
	SessionCreated Kind = "session.created"
	SessionEvicted Kind = "session.evicted"
)

// Lifecycle is one notification published by the session manager.
type Lifecycle struct {
	Kind      Kind   `json:"kind"`
	SessionID string `json:"session_id"`
	Reason    string `json:"reason,omitempty"`
}

const topic = "session-lifecycle"

// Bus fans lifecycle notifications out to any number of operational
// observers. The zero value is not usable; construct with New.
type Bus struct {
	pubsub *gochannel.GoChannel
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a lifecycle bus backed by an in-process watermill
// gochannel.
func New() *Bus {
	ctx, cancel := context.WithCancel(context.Background())
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			watermill.NopLogger{},
		),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Publish announces a lifecycle event. Publish failures are logged,
// not propagated: losing a lifecycle notification must never fail the
// session operation that triggered it.
func (b *Bus) Publish(ev Lifecycle) {
	payload, err := encodeLifecycle(ev)
	if err != nil {
		logging.Warn().Err(err).Msg("sessionevents: failed to encode lifecycle event")
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		logging.Warn().Err(err).Msg("sessionevents: failed to publish lifecycle event")
	}
}

// Subscribe returns a channel of decoded lifecycle events. The channel
// closes when ctx is done or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context) (<-chan Lifecycle, error) {
	raw, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return nil, err
	}
	out := make(chan Lifecycle)
	go func() {
		defer close(out)
		for m := range raw {
			var ev Lifecycle
			if err := decodeLifecycle(m.Payload, &ev); err != nil {
				m.Ack()
				continue
			}
			m.Ack()
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Close shuts the bus down.
func (b *Bus) Close() error {
	b.cancel()
	return b.pubsub.Close()
}
