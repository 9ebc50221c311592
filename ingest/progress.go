package ingest

import (
	"log/slog"
	"sync"

	"github.com/loamlabs/loam/core"
)

// EventKind labels a progress event.
type EventKind string

const (
	// EventOpen is sent to a subscriber immediately on subscription.
	EventOpen EventKind = "open"
	// EventProgress carries an updated operation snapshot.
	EventProgress EventKind = "progress"
	// EventDone carries the terminal operation summary.
	EventDone EventKind = "done"
)

// Event is one progress notification for an operation.
type Event struct {
	Kind      EventKind      `json:"kind"`
	Operation core.Operation `json:"operation"`
}

// topic is the subscriber set for one operation.
type topic struct {
	subscribers map[int]chan Event
	nextID      int
}

// Broadcaster fans progress events out to per-operation subscribers.
//
// Delivery is at-most-once to currently connected subscribers: there is no
// event log, so a subscriber connecting after an event was published will
// not receive it. A slow subscriber that cannot keep up has events dropped
// rather than blocking the pipeline. Topics are garbage-collected when
// their last subscriber disconnects.
type Broadcaster struct {
	mu     sync.Mutex
	topics map[string]*topic
	logger *slog.Logger
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		topics: make(map[string]*topic),
		logger: slog.Default().With("component", "broadcaster"),
	}
}

// subscriberBuffer bounds how far a subscriber may lag before drops begin.
const subscriberBuffer = 16

// Subscribe registers a subscriber for an operation. The returned cancel
// function must be called exactly once; it removes the subscriber and
// closes the channel.
func (b *Broadcaster) Subscribe(operationID string) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.topics[operationID]
	if !ok {
		t = &topic{subscribers: make(map[int]chan Event)}
		b.topics[operationID] = t
	}

	id := t.nextID
	t.nextID++
	ch := make(chan Event, subscriberBuffer)
	t.subscribers[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if t, ok := b.topics[operationID]; ok {
			if ch, ok := t.subscribers[id]; ok {
				delete(t.subscribers, id)
				close(ch)
			}
			if len(t.subscribers) == 0 {
				delete(b.topics, operationID)
			}
		}
	}

	return ch, cancel
}

// Publish delivers an event to every current subscriber of the operation.
// Events for operations without subscribers are discarded.
func (b *Broadcaster) Publish(operationID string, event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.topics[operationID]
	if !ok {
		return
	}

	for _, ch := range t.subscribers {
		select {
		case ch <- event:
		default:
			b.logger.Debug("dropping event for slow subscriber", "operation", operationID, "kind", event.Kind)
		}
	}
}

// SubscriberCount returns the number of active subscribers for an operation.
func (b *Broadcaster) SubscriberCount(operationID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t, ok := b.topics[operationID]; ok {
		return len(t.subscribers)
	}
	return 0
}
