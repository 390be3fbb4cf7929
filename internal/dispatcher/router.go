package dispatcher

import (
	"strings"
	"sync"

	"github.com/dshills/inkwell/internal/dispatcher/handler"
)

// Router routes actions to handlers using namespace prefixes. Lookup
// for namespaced actions like "buffer.open" is O(1).
type Router struct {
	mu sync.RWMutex

	// Namespace handlers ("buffer" handles "buffer.*")
	namespaces map[string]handler.NamespaceHandler

	// Fallback handler for unmatched actions
	fallback handler.Handler
}

// NewRouter creates a new action router.
func NewRouter() *Router {
	return &Router{
		namespaces: make(map[string]handler.NamespaceHandler),
	}
}

// RegisterNamespace registers a handler for all actions in a namespace.
func (r *Router) RegisterNamespace(namespace string, h handler.NamespaceHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.namespaces[namespace] = h
}

// UnregisterNamespace removes a namespace handler.
func (r *Router) UnregisterNamespace(namespace string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.namespaces, namespace)
}

// SetFallback sets the fallback handler for unmatched actions.
func (r *Router) SetFallback(h handler.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = h
}

// Route finds the handler for an action. Returns nil if no namespace
// claims it and no fallback is set.
func (r *Router) Route(actionName string) handler.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if namespace := extractNamespace(actionName); namespace != "" {
		if h, ok := r.namespaces[namespace]; ok && h.CanHandle(actionName) {
			return handler.NewNamespaceAdapter(h)
		}
	}
	return r.fallback
}

// GetNamespaceHandler returns the handler registered for a namespace,
// or nil.
func (r *Router) GetNamespaceHandler(namespace string) handler.NamespaceHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namespaces[namespace]
}

// HasNamespace returns true if a handler is registered for the
// namespace.
func (r *Router) HasNamespace(namespace string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.namespaces[namespace]
	return ok
}

// Namespaces returns the registered namespace names.
func (r *Router) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.namespaces))
	for name := range r.namespaces {
		names = append(names, name)
	}
	return names
}

// extractNamespace returns the prefix before the first dot, or "".
func extractNamespace(actionName string) string {
	if idx := strings.IndexByte(actionName, '.'); idx > 0 {
		return actionName[:idx]
	}
	return ""
}
