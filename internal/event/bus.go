package event

import (
	"sync"
	"sync/atomic"
)

// Bus fans published events out to subscribers. Delivery is
// best-effort and non-blocking: a subscriber whose channel is full has
// that event dropped, and the publisher is never told. Ordering is
// guaranteed only within a single publishing goroutine.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription
	closed bool
	config busConfig

	// Stats
	eventsPublished atomic.Uint64
	eventsDelivered atomic.Uint64
	eventsDropped   atomic.Uint64
}

// Stats reports bus counters.
type Stats struct {
	// EventsPublished is the number of accepted Publish calls.
	EventsPublished uint64

	// EventsDelivered counts per-subscriber successful deliveries.
	EventsDelivered uint64

	// EventsDropped counts per-subscriber drops from full channels
	// plus publishes with no determinable topic.
	EventsDropped uint64

	// ActiveSubscribers is the current subscription count.
	ActiveSubscribers int
}

// NewBus creates a new event bus with the given options.
func NewBus(opts ...BusOption) *Bus {
	config := defaultBusConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &Bus{
		subs:   make(map[string]*Subscription),
		config: config,
	}
}

// Publish delivers an event to every matching subscriber without
// blocking. The event must be an Envelope or implement TopicProvider;
// anything else is silently counted as dropped, matching the
// fire-and-forget contract: emission failures never reach the caller.
func (b *Bus) Publish(event any) {
	env, ok := ToEnvelope(event)
	if !ok {
		b.eventsDropped.Add(1)
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		b.eventsDropped.Add(1)
		return
	}

	b.eventsPublished.Add(1)

	for _, sub := range b.subs {
		if !sub.Matches(env.Topic) {
			continue
		}
		select {
		case sub.ch <- env:
			b.eventsDelivered.Add(1)
		default:
			// Subscriber is not keeping up; drop rather than block.
			b.eventsDropped.Add(1)
		}
	}
}

// Subscribe attaches a new subscriber. With no options the
// subscription receives every topic on a channel of the bus's default
// buffer size.
func (b *Bus) Subscribe(opts ...SubscribeOption) (*Subscription, error) {
	cfg := subscribeConfig{buffer: b.config.bufferSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	for _, t := range cfg.topics {
		if !t.IsValid() {
			return nil, ErrInvalidTopic
		}
	}

	sub := newSubscription(cfg.topics, cfg.buffer)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBusClosed
	}
	b.subs[sub.id] = sub
	return sub, nil
}

// Unsubscribe detaches a subscriber and closes its channel.
func (b *Bus) Unsubscribe(sub *Subscription) error {
	if sub == nil {
		return ErrInvalidSubscription
	}

	b.mu.Lock()
	_, found := b.subs[sub.id]
	delete(b.subs, sub.id)
	b.mu.Unlock()

	if !found {
		return ErrSubscriptionNotFound
	}
	sub.close()
	return nil
}

// Close shuts down the bus and closes every subscriber channel.
// Subsequent publishes are dropped and subsequent subscribes fail.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		sub.close()
		delete(b.subs, id)
	}
}

// Stats returns current bus statistics.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	active := len(b.subs)
	b.mu.RUnlock()

	return Stats{
		EventsPublished:   b.eventsPublished.Load(),
		EventsDelivered:   b.eventsDelivered.Load(),
		EventsDropped:     b.eventsDropped.Load(),
		ActiveSubscribers: active,
	}
}

// Ensure Bus satisfies the Publisher interface components depend on.
var _ Publisher = (*Bus)(nil)
