// Package handler provides the handler interface and types for action
// dispatch.
package handler

import "context"

// Action is one command addressed to the engine. Name is a dotted
// action identifier ("buffer.open"); Params carries the JSON-decoded
// arguments.
type Action struct {
	Name   string
	Params Params
}

// NewAction builds an action from a name and raw parameter map.
func NewAction(name string, params map[string]any) Action {
	return Action{Name: name, Params: Params(params)}
}

// Namespace returns the prefix before the first dot, or "" when the
// name has none.
func (a Action) Namespace() string {
	for i := 0; i < len(a.Name); i++ {
		if a.Name[i] == '.' {
			return a.Name[:i]
		}
	}
	return ""
}

// Handler processes a specific action or set of actions.
type Handler interface {
	// Handle executes the action and returns a result.
	Handle(ctx context.Context, action Action) Result

	// CanHandle returns true if this handler can process the action.
	CanHandle(actionName string) bool
}

// HandlerFunc adapts a function to the Handler interface. It accepts
// every action name; the caller must ensure correct routing.
type HandlerFunc func(ctx context.Context, action Action) Result

// Handle implements Handler.Handle.
func (f HandlerFunc) Handle(ctx context.Context, action Action) Result {
	if f == nil {
		return Errorf("handler function is nil")
	}
	return f(ctx, action)
}

// CanHandle implements Handler.CanHandle.
func (f HandlerFunc) CanHandle(string) bool { return true }

// NamespaceHandler handles all actions within a namespace. A namespace
// is the prefix before the first dot ("buffer" in "buffer.open").
type NamespaceHandler interface {
	// HandleAction handles an action within this namespace.
	HandleAction(ctx context.Context, action Action) Result

	// CanHandle returns true if this handler can process the action.
	CanHandle(actionName string) bool

	// Namespace returns the namespace prefix ("buffer", "workspace").
	Namespace() string
}

// namespaceAdapter adapts NamespaceHandler to Handler.
type namespaceAdapter struct {
	h NamespaceHandler
}

// NewNamespaceAdapter creates a Handler from a NamespaceHandler.
func NewNamespaceAdapter(h NamespaceHandler) Handler {
	return &namespaceAdapter{h: h}
}

func (a *namespaceAdapter) Handle(ctx context.Context, action Action) Result {
	return a.h.HandleAction(ctx, action)
}

func (a *namespaceAdapter) CanHandle(actionName string) bool {
	return a.h.CanHandle(actionName)
}
