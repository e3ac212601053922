package sessionevents

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishSubscribe(t *testing.T) {
	b := New()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := b.Subscribe(ctx)
	require.NoError(t, err)

	// gochannel's Subscribe only guarantees delivery to subscribers that
	// already exist at Publish time; give the subscription goroutine a
	// moment to register before publishing.
	time.Sleep(20 * time.Millisecond)

	b.Publish(Lifecycle{Kind: SessionCreated, SessionID: "s1"})

	select {
	case ev := <-ch:
		assert.Equal(t, SessionCreated, ev.Kind)
		assert.Equal(t, "s1", ev.SessionID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published lifecycle event")
	}
}

func TestBus_MultipleSubscribersEachReceive(t *testing.T) {
	b := New()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch1, err := b.Subscribe(ctx)
	require.NoError(t, err)
	ch2, err := b.Subscribe(ctx)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	b.Publish(Lifecycle{Kind: SessionEvicted, SessionID: "s2", Reason: "explicit delete"})

	for _, ch := range []<-chan Lifecycle{ch1, ch2} {
		select {
		case ev := <-ch:
			assert.Equal(t, SessionEvicted, ev.Kind)
			assert.Equal(t, "explicit delete", ev.Reason)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for one of the subscribers")
		}
	}
}

func TestBus_SubscribeClosesOnContextCancel(t *testing.T) {
	b := New()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := b.Subscribe(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "expected channel to close after context cancellation")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestEncodeDecodeLifecycle_RoundTrips(t *testing.T) {
	want := Lifecycle{Kind: SessionCreated, SessionID: "s3", Reason: "retry"}
	payload, err := encodeLifecycle(want)
	require.NoError(t, err)

	var got Lifecycle
	require.NoError(t, decodeLifecycle(payload, &got))
	assert.Equal(t, want, got)
}
