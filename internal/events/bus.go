package events

import (
	"log"
	"sync"

	"github.com/corralworks/corral/internal/telemetry"
)

// subscriberBuffer is the per-subscriber channel depth. A subscriber that
// falls this far behind starts losing events rather than blocking publishers.
const subscriberBuffer = 64

// Bus is an in-process publish/subscribe fanout for inventory events.
// Publishing never blocks; slow subscribers drop.
type Bus struct {
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a new subscriber and returns its channel plus a cancel
// function. Cancel closes the channel; subscribers must stop reading after
// calling it.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Event, subscriberBuffer)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if ch, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Publish fans the event out to all current subscribers.
func (b *Bus) Publish(e Event) {
	telemetry.EventsPublishedTotal.WithLabelValues(e.Name).Inc()

	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subs {
		select {
		case ch <- e:
		default:
			log.Printf("events: subscriber %d lagging, dropped %s", id, e.Name)
		}
	}
}

// SubscriberCount reports how many subscribers are attached.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
