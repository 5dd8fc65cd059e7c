// Package pubsub provides an in-process, topic-keyed event bus. Delivery is
// at-most-once and best-effort: events published before a subscriber
// registers are never seen, and slow subscribers drop events rather than
// block the publisher.
package pubsub

import "sync"

// Topic names for transaction lifecycle events.
const (
	TopicTransactionCreated = "transaction.created"
	TopicTransactionDeleted = "transaction.deleted"
)

// Subscription is a registered listener on a single topic.
type Subscription struct {
	// C receives published payloads until Unsubscribe closes it.
	C <-chan interface{}

	topic string
	id    int
	bus   *Bus
}

// Unsubscribe removes the listener and closes its channel. It is safe to
// call more than once.
func (s *Subscription) Unsubscribe() {
	s.bus.unsubscribe(s.topic, s.id)
}

// Bus fans published events out to all current subscribers of a topic.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan interface{}
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[int]chan interface{})}
}

// Subscribe registers a listener on a topic. buffer is the channel capacity;
// events beyond it are dropped for that subscriber.
func (b *Bus) Subscribe(topic string, buffer int) *Subscription {
	ch := make(chan interface{}, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]chan interface{})
	}
	b.subs[topic][b.nextID] = ch

	return &Subscription{C: ch, topic: topic, id: b.nextID, bus: b}
}

// Publish delivers payload to every current subscriber of the topic. Each
// subscriber gets an independent copy of the event; none of them can block
// the caller.
func (b *Bus) Publish(topic string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs[topic] {
		select {
		case ch <- payload:
		default:
			// Subscriber buffer full, drop the event.
		}
	}
}

func (b *Bus) unsubscribe(topic string, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if listeners, ok := b.subs[topic]; ok {
		if ch, ok := listeners[id]; ok {
			delete(listeners, id)
			close(ch)
		}
		if len(listeners) == 0 {
			delete(b.subs, topic)
		}
	}
}
