// Package broadcast is a single-producer, many-consumer event feed for
// one agent session. It is the Go analogue of a bounded broadcast
// channel: every Subscribe call joins at the current tail (no replay),
// and a subscriber that falls too far behind is told so via ErrLagged
// instead of silently stalling the producer.
//
// The subscriber-registry shape (mutex-guarded map of channels, keyed
// by a numeric id for removal) is adapted from the reference server's
// global pub/sub bus; the addition here is a bounded channel per
// subscriber with a non-blocking publish and an explicit lag signal,
// which a plain fan-out-to-all-synchronously bus does not need but a
// per-session broadcast feed with backpressure does (spec §5, §9).
package broadcast

import (
	"sync"

	"github.com/opencode-ai/agentcore/pkg/types"
)

// DefaultBufferSize is the per-subscriber channel capacity. Larger than
// the reference SSE channel buffer (10) used by the teacher's global
// event bus, to reduce how often slow consumers trip ErrLagged
// (SPEC_FULL §5, Open Question 3).
const DefaultBufferSize = 64

// ErrLagged is delivered on a subscriber's channel when that subscriber
// could not keep up and events were dropped to avoid blocking the
// producer. Consumers treat it as end-of-stream (spec §5/§9).
type ErrLagged struct{}

func (ErrLagged) Error() string { return "broadcast: subscriber lagged, events dropped" }

// Delivery is one item handed to a subscriber: either an event, or a
// terminal lag signal (Err set, Event zero).
type Delivery struct {
	Event types.AgentEvent
	Err   error
}

// Feed is one session's broadcast event feed. The zero value is not
// usable; construct with New.
type Feed struct {
	mu     sync.Mutex
	subs   map[uint64]chan Delivery
	nextID uint64
	closed bool
}

// New creates a new, empty event feed.
func New() *Feed {
	return &Feed{subs: make(map[uint64]chan Delivery)}
}

// Subscription is a live subscription to a Feed.
type Subscription struct {
	id   uint64
	ch   chan Delivery
	feed *Feed
}

// Subscribe joins the feed at the current tail (no historical replay).
func (f *Feed) Subscribe() *Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan Delivery, DefaultBufferSize)
	if f.closed {
		close(ch)
		return &Subscription{ch: ch, feed: f}
	}

	id := f.nextID
	f.nextID++
	f.subs[id] = ch
	return &Subscription{id: id, ch: ch, feed: f}
}

// Receive blocks for the next delivery. ok is false once the feed is
// closed and fully drained.
func (s *Subscription) Receive() (Delivery, bool) {
	d, open := <-s.ch
	return d, open
}

// Unsubscribe releases the subscription. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s.feed == nil {
		return
	}
	s.feed.mu.Lock()
	defer s.feed.mu.Unlock()
	if ch, ok := s.feed.subs[s.id]; ok {
		delete(s.feed.subs, s.id)
		close(ch)
	}
}

// Publish appends an event to the feed. Publish never blocks on a slow
// subscriber: each publish that finds a subscriber's buffer full drops
// that subscriber's oldest queued item and queues an ErrLagged marker
// instead, rather than stalling every other subscriber and the producer.
func (f *Feed) Publish(ev types.AgentEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	for _, ch := range f.subs {
		select {
		case ch <- Delivery{Event: ev}:
		default:
			// Buffer full: drop the oldest queued item to guarantee room
			// for the lag marker. Without this, a channel that is
			// completely full of real events would also fail the
			// marker send below, leaving the subscriber stuck forever
			// with no signal at all.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- Delivery{Err: ErrLagged{}}:
			default:
			}
		}
	}
}

// Close shuts the feed down; all current subscriptions observe
// end-of-stream and future Subscribe calls receive an already-closed
// channel.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for id, ch := range f.subs {
		close(ch)
		delete(f.subs, id)
	}
}
