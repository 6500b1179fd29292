package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishToSubscriber(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	ch, cleanup := hub.Subscribe("user-1")
	defer cleanup()

	hub.Publish("user-1", Event{UserID: "user-1", Event: "notification", Data: "hello"})

	select {
	case ev := <-ch:
		assert.Equal(t, "notification", ev.Event)
		assert.Equal(t, "hello", ev.Data)
	default:
		t.Fatal("expected a buffered event")
	}

	// Events for other users are not delivered.
	hub.Publish("user-2", Event{UserID: "user-2", Event: "notification"})
	select {
	case <-ch:
		t.Fatal("received another user's event")
	default:
	}
}

func TestHub_MultipleConnections(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	first, cleanupFirst := hub.Subscribe("user-1")
	second, cleanupSecond := hub.Subscribe("user-1")
	defer cleanupSecond()

	hub.Publish("user-1", Event{UserID: "user-1", Event: "ping"})

	require.Len(t, first, 1)
	require.Len(t, second, 1)

	// Closing one connection leaves the other working.
	cleanupFirst()
	hub.Publish("user-1", Event{UserID: "user-1", Event: "ping"})
	assert.Len(t, second, 2)
}

func TestHub_FullChannelDoesNotBlock(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	ch, cleanup := hub.Subscribe("user-1")
	defer cleanup()

	// Overfill the buffer; Publish must not block.
	for i := 0; i < subscriberBuffer+5; i++ {
		hub.Publish("user-1", Event{UserID: "user-1", Event: "ping"})
	}

	assert.Len(t, ch, subscriberBuffer)
}
