package dispatcher

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dshills/inkwell/internal/dispatcher/handler"
)

type echoNamespace struct {
	namespace string
	actions   map[string]bool
}

func newEchoNamespace(namespace string, actions ...string) *echoNamespace {
	set := make(map[string]bool, len(actions))
	for _, a := range actions {
		set[a] = true
	}
	return &echoNamespace{namespace: namespace, actions: set}
}

func (e *echoNamespace) Namespace() string { return e.namespace }

func (e *echoNamespace) CanHandle(name string) bool { return e.actions[name] }

func (e *echoNamespace) HandleAction(ctx context.Context, action handler.Action) handler.Result {
	return handler.SuccessWithData("action", action.Name)
}

func TestDispatcher_RoutesNamespace(t *testing.T) {
	d := NewWithDefaults()
	d.RegisterNamespace(newEchoNamespace("buffer", "buffer.open", "buffer.save"))

	result := d.Dispatch(context.Background(), handler.NewAction("buffer.open", nil))
	if !result.IsOK() {
		t.Fatalf("expected OK, got %v: %v", result.Status, result.Error)
	}
	if got := result.GetDataString("action"); got != "buffer.open" {
		t.Errorf("handled action = %q, expected buffer.open", got)
	}
}

func TestDispatcher_UnknownAction(t *testing.T) {
	d := NewWithDefaults()
	d.RegisterNamespace(newEchoNamespace("buffer", "buffer.open"))

	tests := []string{
		"buffer.unknown", // known namespace, unknown action
		"nothing.here",   // unknown namespace
		"bare",           // no namespace
	}

	for _, name := range tests {
		result := d.Dispatch(context.Background(), handler.NewAction(name, nil))
		if !result.IsError() {
			t.Errorf("Dispatch(%q): expected error result", name)
			continue
		}
		if !errors.Is(result.Error, ErrNoHandler) {
			t.Errorf("Dispatch(%q): expected ErrNoHandler, got %v", name, result.Error)
		}
	}
}

func TestDispatcher_ExactNameRegistry(t *testing.T) {
	d := NewWithDefaults()
	d.RegisterHandlerFunc("ping", func(ctx context.Context, action handler.Action) handler.Result {
		return handler.SuccessWithData("pong", true)
	})

	result := d.Dispatch(context.Background(), handler.NewAction("ping", nil))
	if !result.IsOK() {
		t.Fatalf("expected OK, got %v", result.Error)
	}

	d.UnregisterHandler("ping")
	result = d.Dispatch(context.Background(), handler.NewAction("ping", nil))
	if !result.IsError() {
		t.Error("expected error after unregister")
	}
}

func TestDispatcher_PanicRecovery(t *testing.T) {
	d := New(DefaultConfig().WithMetrics())
	d.RegisterHandlerFunc("boom", func(ctx context.Context, action handler.Action) handler.Result {
		panic("kaboom")
	})

	result := d.Dispatch(context.Background(), handler.NewAction("boom", nil))
	if !result.IsError() {
		t.Fatal("expected error result from panicking handler")
	}
	if !strings.Contains(result.Error.Error(), "kaboom") {
		t.Errorf("error should carry the panic value, got %v", result.Error)
	}
	if got := d.Metrics().TotalPanics(); got != 1 {
		t.Errorf("TotalPanics = %d, expected 1", got)
	}
}

func TestDispatcher_Metrics(t *testing.T) {
	d := New(DefaultConfig().WithMetrics())
	d.RegisterNamespace(newEchoNamespace("buffer", "buffer.open"))

	ctx := context.Background()
	d.Dispatch(ctx, handler.NewAction("buffer.open", nil))
	d.Dispatch(ctx, handler.NewAction("buffer.open", nil))
	d.Dispatch(ctx, handler.NewAction("buffer.nope", nil))

	m := d.Metrics()
	// Unroutable actions return before metrics are recorded.
	if got := m.TotalDispatches(); got != 2 {
		t.Errorf("TotalDispatches = %d, expected 2", got)
	}

	stats := m.ActionStats()
	if len(stats) != 1 || stats[0].Name != "buffer.open" || stats[0].DispatchCount != 2 {
		t.Errorf("unexpected action stats: %+v", stats)
	}
}

func TestRouter_Namespaces(t *testing.T) {
	r := NewRouter()
	r.RegisterNamespace("buffer", newEchoNamespace("buffer", "buffer.open"))

	if !r.HasNamespace("buffer") {
		t.Error("expected buffer namespace")
	}
	if r.Route("buffer.open") == nil {
		t.Error("expected route for buffer.open")
	}
	if r.Route("buffer.closed") != nil {
		t.Error("expected no route for unclaimed action")
	}

	r.UnregisterNamespace("buffer")
	if r.HasNamespace("buffer") {
		t.Error("namespace should be gone after unregister")
	}
}

func TestRouter_Fallback(t *testing.T) {
	r := NewRouter()
	r.SetFallback(handler.HandlerFunc(func(ctx context.Context, action handler.Action) handler.Result {
		return handler.NoOp()
	}))

	h := r.Route("anything.goes")
	if h == nil {
		t.Fatal("expected fallback handler")
	}
	if result := h.Handle(context.Background(), handler.Action{Name: "anything.goes"}); result.Status != handler.StatusNoOp {
		t.Errorf("expected NoOp from fallback, got %v", result.Status)
	}
}
