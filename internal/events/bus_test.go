package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusPublishReachesAllSubscribers(t *testing.T) {
	bus := NewBus()

	a, cancelA := bus.Subscribe()
	defer cancelA()
	b, cancelB := bus.Subscribe()
	defer cancelB()

	event, err := New(NameNodeCreated, nil)
	require.NoError(t, err)
	bus.Publish(event)

	assert.Equal(t, event.ID, (<-a).ID)
	assert.Equal(t, event.ID, (<-b).ID)
}

func TestBusCancelDetachesSubscriber(t *testing.T) {
	bus := NewBus()

	ch, cancel := bus.Subscribe()
	require.Equal(t, 1, bus.SubscriberCount())

	cancel()
	assert.Equal(t, 0, bus.SubscriberCount())

	_, open := <-ch
	assert.False(t, open, "cancel must close the channel")

	// Cancelling twice is harmless.
	cancel()
}

func TestBusSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	bus := NewBus()

	ch, cancel := bus.Subscribe()
	defer cancel()

	// Overfill the subscriber buffer without draining; Publish must return.
	for i := 0; i < subscriberBuffer+10; i++ {
		event, err := New(NameNodeStateChanged, NodeStateChanged{Name: "node-01"})
		require.NoError(t, err)
		bus.Publish(event)
	}

	assert.Len(t, ch, subscriberBuffer)
}

func TestEventPayloadRoundTrip(t *testing.T) {
	event, err := New(NameNodeTagsChanged, NodeTagsChanged{
		Name:         "node-01",
		Tags:         map[string]string{"rack": "r2"},
		PreviousTags: map[string]string{"rack": "r1"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Timestamp.IsZero())

	var payload NodeTagsChanged
	require.NoError(t, DecodePayload(event, &payload))
	assert.Equal(t, "node-01", payload.Name)
	assert.Equal(t, "r2", payload.Tags["rack"])
	assert.Equal(t, "r1", payload.PreviousTags["rack"])
}
