package eventbus

import "sync"

// Topic names published by the pipeline.
const (
	TopicDataUpdated           = "data:updated"
	TopicError                 = "error"
	TopicConnectionEstablished = "connection:established"
	TopicConnectionFailed      = "connection:failed"
	TopicCacheCleared          = "cache:cleared"
	TopicRefreshStarted        = "refresh:started"
	TopicRefreshCompleted      = "refresh:completed"
	TopicRefreshFailed         = "refresh:failed"
	TopicShutdown              = "shutdown"

	// Topics carried on the narrower odds-only bus.
	TopicOddsUpdated = "odds:updated"
)

// Handler receives a published event payload.
type Handler func(payload interface{})

// Subscription identifies one registered handler so it can be removed.
type Subscription struct {
	topic string
	id    int
}

// Bus is a topic-keyed publish/subscribe fan-out. Delivery is
// synchronous and at-most-once, to the handlers registered at publish
// time only; there is no replay or persistence.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string]map[int]Handler
	nextID   int
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{handlers: make(map[string]map[int]Handler)}
}

// Subscribe registers a handler for a topic and returns a
// subscription usable with Unsubscribe.
func (b *Bus) Subscribe(topic string, h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[topic] == nil {
		b.handlers[topic] = make(map[int]Handler)
	}
	b.nextID++
	b.handlers[topic][b.nextID] = h
	return Subscription{topic: topic, id: b.nextID}
}

// Unsubscribe removes a handler. Unknown subscriptions are ignored.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if hs, ok := b.handlers[sub.topic]; ok {
		delete(hs, sub.id)
	}
}

// Publish delivers payload to every handler currently registered for
// the topic. Handlers run synchronously on the caller's goroutine.
func (b *Bus) Publish(topic string, payload interface{}) {
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.handlers[topic]))
	for _, h := range b.handlers[topic] {
		hs = append(hs, h)
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(payload)
	}
}

// SubscriberCount returns the number of handlers on a topic.
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[topic])
}
