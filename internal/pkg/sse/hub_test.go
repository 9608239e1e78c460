package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesTopicSubscribers(t *testing.T) {
	hub := NewHub()

	a, cancelA := hub.Subscribe(TopicShifts)
	defer cancelA()
	b, cancelB := hub.Subscribe(TopicShifts)
	defer cancelB()
	other, cancelOther := hub.Subscribe("other")
	defer cancelOther()

	n := hub.Publish(Event{Topic: TopicShifts, Event: "shift.changed", Data: "x"})
	assert.Equal(t, 2, n)

	got := <-a
	assert.Equal(t, "shift.changed", got.Event)
	got = <-b
	assert.Equal(t, "x", got.Data)

	select {
	case <-other:
		t.Fatal("subscriber of another topic received the event")
	default:
	}
}

func TestHub_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()
	_, cancel := hub.Subscribe(TopicShifts)
	defer cancel()

	for i := 0; i < hub.bufferSize; i++ {
		require.Equal(t, 1, hub.Publish(Event{Topic: TopicShifts}))
	}
	assert.Equal(t, 0, hub.Publish(Event{Topic: TopicShifts}))
}

func TestHub_UnsubscribeIsIdempotent(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe(TopicShifts)
	assert.Equal(t, 1, hub.SubscriberCount(TopicShifts))

	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.TotalSubscribers())
	assert.Equal(t, 0, hub.Publish(Event{Topic: TopicShifts}))
}
