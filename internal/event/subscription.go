package event

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/inkwell/internal/event/topic"
)

// Subscription is one subscriber's attachment to the bus. Events are
// delivered on a buffered channel; a full channel drops the event for
// this subscriber only.
type Subscription struct {
	id        string
	topics    map[topic.Topic]struct{}
	ch        chan Envelope
	closeOnce sync.Once
}

func newSubscription(topics []topic.Topic, buffer int) *Subscription {
	set := make(map[topic.Topic]struct{}, len(topics))
	for _, t := range topics {
		if t == topic.All {
			// Subscribing to the wildcard is the same as no filter.
			set = nil
			break
		}
		set[t] = struct{}{}
	}
	return &Subscription{
		id:     uuid.NewString(),
		topics: set,
		ch:     make(chan Envelope, buffer),
	}
}

// ID returns the subscription's unique identifier.
func (s *Subscription) ID() string {
	return s.id
}

// C returns the delivery channel. The channel is closed when the
// subscription is cancelled or the bus shuts down.
func (s *Subscription) C() <-chan Envelope {
	return s.ch
}

// Matches returns true if the subscription accepts the given topic.
// A subscription with no topic filter accepts everything.
func (s *Subscription) Matches(t topic.Topic) bool {
	if len(s.topics) == 0 {
		return true
	}
	_, ok := s.topics[t]
	return ok
}

// close shuts the delivery channel exactly once.
func (s *Subscription) close() {
	s.closeOnce.Do(func() {
		close(s.ch)
	})
}
