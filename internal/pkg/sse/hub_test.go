package sse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPublishIsScopedByWarehouse(t *testing.T) {
	h := NewHub()

	a, cleanupA := h.Subscribe("wh-a")
	defer cleanupA()
	b, cleanupB := h.Subscribe("wh-b")
	defer cleanupB()

	h.Publish("wh-a", Event{Event: EventExceptionLogged, Data: "x"})

	select {
	case ev := <-a:
		assert.Equal(t, "wh-a", ev.WarehouseID)
		assert.Equal(t, EventExceptionLogged, ev.Event)
	case <-time.After(time.Second):
		t.Fatal("subscriber of wh-a got nothing")
	}

	select {
	case ev := <-b:
		t.Fatalf("subscriber of wh-b got %v", ev)
	default:
	}
}

func TestHubCleanup(t *testing.T) {
	h := NewHub()

	ch, cleanup := h.Subscribe("wh-a")
	_, cleanup2 := h.Subscribe("wh-a")
	require.Equal(t, 2, h.SubscriberCount("wh-a"))
	require.Equal(t, 2, h.TotalSubscribers())

	cleanup()
	cleanup()
	assert.Equal(t, 1, h.SubscriberCount("wh-a"))

	_, open := <-ch
	assert.False(t, open)

	cleanup2()
	assert.Equal(t, 0, h.TotalSubscribers())
}

func TestHubDropsWhenSubscriberIsFull(t *testing.T) {
	h := NewHub()
	ch, cleanup := h.Subscribe("wh-a")
	defer cleanup()

	for i := 0; i < h.buffer+5; i++ {
		h.Publish("wh-a", Event{Event: EventRobotStatus})
	}
	assert.Len(t, ch, h.buffer)
}
