package event

import "github.com/dshills/inkwell/internal/event/topic"

// DefaultBufferSize is the per-subscription channel buffer used when
// no override is given.
const DefaultBufferSize = 64

// busConfig holds bus construction options.
type busConfig struct {
	bufferSize int
}

func defaultBusConfig() busConfig {
	return busConfig{
		bufferSize: DefaultBufferSize,
	}
}

// BusOption configures a Bus.
type BusOption func(*busConfig)

// WithBufferSize sets the default per-subscription buffer size.
func WithBufferSize(size int) BusOption {
	return func(c *busConfig) {
		if size > 0 {
			c.bufferSize = size
		}
	}
}

// subscribeConfig holds per-subscription options.
type subscribeConfig struct {
	topics []topic.Topic
	buffer int
}

// SubscribeOption configures a single subscription.
type SubscribeOption func(*subscribeConfig)

// WithTopics restricts the subscription to the given topics.
// Without this option the subscription receives every event.
func WithTopics(topics ...topic.Topic) SubscribeOption {
	return func(c *subscribeConfig) {
		c.topics = append(c.topics, topics...)
	}
}

// WithBuffer overrides the subscription's channel buffer size.
func WithBuffer(size int) SubscribeOption {
	return func(c *subscribeConfig) {
		if size > 0 {
			c.buffer = size
		}
	}
}
