package app

import (
	"sync/atomic"
	"time"

	"github.com/dshills/inkwell/internal/event"
	"github.com/dshills/inkwell/internal/ingest"
	"github.com/dshills/inkwell/internal/project/watcher"
)

// Metrics tracks application-level counters. Component counters live
// with their components; this covers what only the application sees.
type Metrics struct {
	dispatches atomic.Uint64
	startTime  time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordDispatch counts one action dispatched through the application.
func (m *Metrics) RecordDispatch() {
	m.dispatches.Add(1)
}

// Dispatches returns the number of actions dispatched.
func (m *Metrics) Dispatches() uint64 {
	return m.dispatches.Load()
}

// Uptime returns the time elapsed since the metrics were created.
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}

// Status is a point-in-time view of the engine's counters, one block
// per component.
type Status struct {
	Uptime time.Duration `json:"uptime"`

	// Dispatches counts actions routed through the application.
	Dispatches uint64 `json:"dispatches"`

	// Bus holds event bus counters.
	Bus event.Stats `json:"bus"`

	// Queue holds ingestion queue counters and state.
	Queue        ingest.Stats `json:"queue"`
	QueueState   ingest.State `json:"queueState"`
	QueuePending int          `json:"queuePending"`

	// Watcher holds document watcher counters; zero when disabled.
	Watcher watcher.Stats `json:"watcher"`
}

// Status assembles a snapshot across all components.
func (app *Application) Status() Status {
	s := Status{
		Uptime:       app.metrics.Uptime(),
		Dispatches:   app.metrics.Dispatches(),
		Bus:          app.bus.Stats(),
		Queue:        app.queue.Stats(),
		QueueState:   app.queue.State(),
		QueuePending: app.queue.Pending(),
	}
	if app.watcher != nil {
		s.Watcher = app.watcher.Stats()
	}
	return s
}

// Metrics returns the application's metrics instance.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}
