package broadcast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencode-ai/agentcore/pkg/types"
)

func recvWithTimeout(t *testing.T, sub *Subscription, timeout time.Duration) (Delivery, bool) {
	t.Helper()
	type result struct {
		d  Delivery
		ok bool
	}
	done := make(chan result, 1)
	go func() {
		d, ok := sub.Receive()
		done <- result{d, ok}
	}()
	select {
	case r := <-done:
		return r.d, r.ok
	case <-time.After(timeout):
		t.Fatal("timed out waiting for delivery")
		return Delivery{}, false
	}
}

func TestFeed_PublishSubscribe(t *testing.T) {
	f := New()
	sub := f.Subscribe()
	defer sub.Unsubscribe()

	ev := types.BrainResult(types.Thought{Message: "hi"})
	f.Publish(ev)

	d, ok := recvWithTimeout(t, sub, time.Second)
	require.True(t, ok, "expected a delivery")
	assert.Equal(t, types.EventBrainResult, d.Event.Kind)
}

func TestFeed_NoReplayForLateSubscriber(t *testing.T) {
	f := New()
	f.Publish(types.BrainResult(types.Thought{Message: "before subscribe"}))

	sub := f.Subscribe()
	defer sub.Unsubscribe()
	f.Publish(types.BrainResult(types.Thought{Message: "after subscribe"}))

	d, ok := recvWithTimeout(t, sub, time.Second)
	require.True(t, ok, "expected a delivery")
	require.NotNil(t, d.Event.Thought)
	assert.Equal(t, "after subscribe", d.Event.Thought.Message)
}

func TestFeed_MultipleSubscribersEachGetTheEvent(t *testing.T) {
	f := New()
	sub1 := f.Subscribe()
	sub2 := f.Subscribe()
	defer sub1.Unsubscribe()
	defer sub2.Unsubscribe()

	f.Publish(types.Completed("done", true))

	for _, s := range []*Subscription{sub1, sub2} {
		d, ok := recvWithTimeout(t, s, time.Second)
		require.True(t, ok, "expected a delivery")
		assert.Equal(t, types.EventCompleted, d.Event.Kind)
	}
}

func TestFeed_CloseEndsAllSubscriptions(t *testing.T) {
	f := New()
	sub := f.Subscribe()
	f.Close()

	_, ok := recvWithTimeout(t, sub, time.Second)
	assert.False(t, ok, "expected subscription to observe end-of-stream after Close")
}

func TestFeed_SubscribeAfterCloseIsAlreadyClosed(t *testing.T) {
	f := New()
	f.Close()
	sub := f.Subscribe()

	_, ok := recvWithTimeout(t, sub, time.Second)
	assert.False(t, ok, "expected a post-close subscription to be immediately closed")
}

func TestFeed_PublishAfterCloseIsNoop(t *testing.T) {
	f := New()
	f.Close()
	// Must not panic publishing to a closed feed with no subscribers.
	f.Publish(types.BrainResult(types.Thought{Message: "ignored"}))
}

func TestFeed_UnsubscribeStopsFurtherDelivery(t *testing.T) {
	f := New()
	sub := f.Subscribe()
	sub.Unsubscribe()

	// Must not panic or deadlock publishing after a subscriber left.
	f.Publish(types.BrainResult(types.Thought{Message: "nobody home"}))

	_, ok := recvWithTimeout(t, sub, time.Second)
	assert.False(t, ok, "expected unsubscribed subscription to observe end-of-stream")
}

func TestFeed_UnsubscribeIdempotent(t *testing.T) {
	f := New()
	sub := f.Subscribe()
	sub.Unsubscribe()
	sub.Unsubscribe() // must not panic (double close)
}

func TestFeed_SlowSubscriberGetsErrLagged(t *testing.T) {
	f := New()
	sub := f.Subscribe()
	defer sub.Unsubscribe()

	// Overflow the subscriber's bounded buffer without ever calling
	// Receive, forcing the lag-marker path.
	for i := 0; i < DefaultBufferSize+4; i++ {
		f.Publish(types.BrainResult(types.Thought{Message: "flood"}))
	}

	var sawLag bool
	for i := 0; i < DefaultBufferSize+4; i++ {
		d, ok := sub.Receive()
		if !ok {
			break
		}
		if d.Err != nil {
			if _, isLag := d.Err.(ErrLagged); isLag {
				sawLag = true
			}
			break
		}
	}
	assert.True(t, sawLag, "expected a slow subscriber to eventually observe ErrLagged")
}
