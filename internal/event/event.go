package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/inkwell/internal/event/topic"
)

// Envelope wraps a published payload with its topic and metadata.
// Envelopes are what subscribers receive; they are immutable once
// created.
type Envelope struct {
	// Topic is the event's wire name.
	Topic topic.Topic

	// Payload is the typed event payload.
	Payload any

	// Metadata contains standard event information.
	Metadata Metadata
}

// Metadata contains standard information attached to every event.
type Metadata struct {
	// ID is a unique identifier for this event instance.
	ID string

	// Timestamp is when the event was published.
	Timestamp time.Time
}

// TopicProvider is implemented by payload types that know their topic.
// Every payload in the events package implements it.
type TopicProvider interface {
	EventTopic() topic.Topic
}

// Publisher is the narrow emission interface components depend on.
// Delivery is best-effort: Publish never blocks and never reports
// delivery failures to the caller.
type Publisher interface {
	Publish(event any)
}

// NewEnvelope wraps a payload for delivery.
func NewEnvelope(t topic.Topic, payload any) Envelope {
	return Envelope{
		Topic:   t,
		Payload: payload,
		Metadata: Metadata{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
		},
	}
}

// ToEnvelope converts a published value to an Envelope. Values that
// are already Envelopes pass through with metadata filled in; typed
// payloads are wrapped using their TopicProvider topic. The second
// return is false when no topic can be determined.
func ToEnvelope(event any) (Envelope, bool) {
	switch e := event.(type) {
	case Envelope:
		if e.Metadata.ID == "" {
			e.Metadata.ID = uuid.NewString()
		}
		if e.Metadata.Timestamp.IsZero() {
			e.Metadata.Timestamp = time.Now()
		}
		return e, e.Topic.IsValid()
	case TopicProvider:
		return NewEnvelope(e.EventTopic(), event), e.EventTopic().IsValid()
	default:
		return Envelope{}, false
	}
}
