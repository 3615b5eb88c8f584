package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSubscribe(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe()

	bus.Publish(Notification{Signal: SignalTemplateLoaded, Path: "/views/home.html"})

	n := <-ch
	assert.Equal(t, SignalTemplateLoaded, n.Signal)
	assert.Equal(t, "/views/home.html", n.Path)
	assert.False(t, n.Timestamp.IsZero())
}

func TestMultipleSubscribers(t *testing.T) {
	bus := NewBus()
	a := bus.Subscribe()
	b := bus.Subscribe()
	require.Equal(t, 2, bus.SubscriberCount())

	bus.Publish(Notification{Signal: SignalRenderPerformed})

	assert.Equal(t, SignalRenderPerformed, (<-a).Signal)
	assert.Equal(t, SignalRenderPerformed, (<-b).Signal)
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	bus := NewBus()
	_ = bus.Subscribe() // never drained

	// Publishing past the buffer must not block.
	for i := 0; i < 200; i++ {
		bus.Publish(Notification{Signal: SignalDirectiveError})
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe()
	bus.Unsubscribe(ch)

	_, open := <-ch
	assert.False(t, open)
	assert.Zero(t, bus.SubscriberCount())
}
