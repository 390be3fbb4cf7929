package dispatcher

import (
	"context"
	"runtime"
	"time"

	"github.com/dshills/inkwell/internal/dispatcher/handler"
)

// Dispatcher routes actions to handlers and coordinates execution.
type Dispatcher struct {
	registry *Registry
	router   *Router
	config   Config
	metrics  *Metrics
}

// New creates a new dispatcher with the given configuration.
func New(config Config) *Dispatcher {
	d := &Dispatcher{
		registry: NewRegistry(),
		router:   NewRouter(),
		config:   config,
	}
	if config.EnableMetrics {
		d.metrics = NewMetrics()
	}
	return d
}

// NewWithDefaults creates a new dispatcher with default configuration.
func NewWithDefaults() *Dispatcher {
	return New(DefaultConfig())
}

// Dispatch executes an action synchronously and returns its result.
func (d *Dispatcher) Dispatch(ctx context.Context, action handler.Action) handler.Result {
	startTime := time.Now()

	h := d.router.Route(action.Name)
	if h == nil {
		h = d.registry.Get(action.Name)
	}
	if h == nil {
		return handler.Errorf("%w: %s", ErrNoHandler, action.Name)
	}

	var result handler.Result
	if d.config.RecoverFromPanic {
		result = d.executeWithRecovery(ctx, h, action)
	} else {
		result = h.Handle(ctx, action)
	}

	if d.metrics != nil {
		d.metrics.RecordDispatch(action.Name, time.Since(startTime), result.Status)
	}
	return result
}

// executeWithRecovery executes a handler with panic recovery.
func (d *Dispatcher) executeWithRecovery(ctx context.Context, h handler.Handler, action handler.Action) (result handler.Result) {
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, 4096)
			n := runtime.Stack(stack, false)

			result = handler.Errorf("handler panic for %s: %v\n%s", action.Name, r, string(stack[:n]))

			if d.metrics != nil {
				d.metrics.RecordPanic(action.Name)
			}
		}
	}()

	return h.Handle(ctx, action)
}

// RegisterHandler registers a handler for an exact action name.
func (d *Dispatcher) RegisterHandler(actionName string, h handler.Handler) {
	d.registry.Register(actionName, h)
}

// RegisterHandlerFunc registers a handler function for an action name.
func (d *Dispatcher) RegisterHandlerFunc(actionName string, fn handler.HandlerFunc) {
	d.registry.Register(actionName, fn)
}

// RegisterNamespace registers a namespace handler under its own
// namespace name.
func (d *Dispatcher) RegisterNamespace(h handler.NamespaceHandler) {
	d.router.RegisterNamespace(h.Namespace(), h)
}

// UnregisterHandler removes the handler for an action name.
func (d *Dispatcher) UnregisterHandler(actionName string) {
	d.registry.Unregister(actionName)
}

// Registry returns the exact-name handler registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Router returns the namespace router.
func (d *Dispatcher) Router() *Router {
	return d.router
}

// Metrics returns the metrics collector (nil when disabled).
func (d *Dispatcher) Metrics() *Metrics {
	return d.metrics
}

// Config returns the dispatcher configuration.
func (d *Dispatcher) Config() Config {
	return d.config
}
