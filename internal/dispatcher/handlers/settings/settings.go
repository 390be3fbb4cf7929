package settings

import (
	"context"
	"encoding/json"

	"github.com/dshills/inkwell/internal/dispatcher/handler"
)

// Action names for settings operations.
const (
	ActionGet    = "settings.get"    // read the whole blob
	ActionUpdate = "settings.update" // set one value by path
)

// Store persists the settings blob. Implemented by settings.Store.
type Store interface {
	Get() (string, error)
	Update(path string, value any) (string, error)
}

// Handler implements the settings namespace.
type Handler struct {
	store Store
}

// NewHandler creates a settings handler over the given store.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// Namespace returns the settings namespace.
func (h *Handler) Namespace() string {
	return "settings"
}

// CanHandle returns true if this handler can process the action.
func (h *Handler) CanHandle(actionName string) bool {
	return actionName == ActionGet || actionName == ActionUpdate
}

// HandleAction processes a settings action.
func (h *Handler) HandleAction(ctx context.Context, action handler.Action) handler.Result {
	switch action.Name {
	case ActionGet:
		return h.get()
	case ActionUpdate:
		return h.update(action)
	default:
		return handler.Errorf("unknown settings action: %s", action.Name)
	}
}

func (h *Handler) get() handler.Result {
	blob, err := h.store.Get()
	if err != nil {
		return handler.Error(err)
	}
	return handler.SuccessWithData("settings", json.RawMessage(blob))
}

func (h *Handler) update(action handler.Action) handler.Result {
	path, err := action.Params.String("path")
	if err != nil {
		return handler.Error(err)
	}
	value, err := action.Params.Value("value")
	if err != nil {
		return handler.Error(err)
	}
	blob, err := h.store.Update(path, value)
	if err != nil {
		return handler.Error(err)
	}
	return handler.SuccessWithData("settings", json.RawMessage(blob))
}

var _ handler.NamespaceHandler = (*Handler)(nil)
