// Package event implements the engine's change-notification bus.
//
// The bus carries every observable side effect of the document engine:
// document opens, line updates, language changes, and completed
// tokenization runs. Producers publish typed payloads from the events
// subpackage; the bus wraps them in Envelopes and fans them out to
// subscribers over buffered channels.
//
// Delivery is fire-and-forget. Publish never blocks and never returns
// an error: a subscriber that cannot keep up loses events rather than
// stalling a mutation, and a publish with no subscribers is a no-op.
// Ordering is guaranteed only within a single publishing goroutine.
//
// Usage:
//
//	bus := event.NewBus()
//	sub, _ := bus.Subscribe(event.WithTopics(events.TopicFileUpdated))
//	go func() {
//		for env := range sub.C() {
//			handle(env.Payload)
//		}
//	}()
//	bus.Publish(events.FileUpdated{Line: 3, Content: "x"})
package event
