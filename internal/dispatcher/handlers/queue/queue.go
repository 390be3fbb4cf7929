package queue

import (
	"context"

	"github.com/dshills/inkwell/internal/dispatcher/handler"
)

// Action names for queue operations.
const (
	ActionEnqueue = "queue.enqueue" // add a path for background opening
	ActionStart   = "queue.start"   // start the consumer loop (idempotent)
)

// Queue is the ingestion queue the handler drives. Implemented by
// ingest.Queue. Start is structurally once-only; repeated calls are
// no-ops.
type Queue interface {
	Enqueue(path string)
	Start(ctx context.Context)
}

// Handler implements the queue namespace.
type Handler struct {
	queue Queue

	// runCtx is the long-lived context the consumer loop runs under;
	// request contexts end with their request.
	runCtx context.Context
}

// NewHandler creates a queue handler. The consumer loop started by
// queue.start runs under runCtx, not the request context.
func NewHandler(queue Queue, runCtx context.Context) *Handler {
	if runCtx == nil {
		runCtx = context.Background()
	}
	return &Handler{queue: queue, runCtx: runCtx}
}

// Namespace returns the queue namespace.
func (h *Handler) Namespace() string {
	return "queue"
}

// CanHandle returns true if this handler can process the action.
func (h *Handler) CanHandle(actionName string) bool {
	return actionName == ActionEnqueue || actionName == ActionStart
}

// HandleAction processes a queue action.
func (h *Handler) HandleAction(ctx context.Context, action handler.Action) handler.Result {
	switch action.Name {
	case ActionEnqueue:
		return h.enqueue(action)
	case ActionStart:
		h.queue.Start(h.runCtx)
		return handler.Success()
	default:
		return handler.Errorf("unknown queue action: %s", action.Name)
	}
}

func (h *Handler) enqueue(action handler.Action) handler.Result {
	path, err := action.Params.String("path")
	if err != nil {
		return handler.Error(err)
	}
	h.queue.Enqueue(path)
	return handler.Success()
}

var _ handler.NamespaceHandler = (*Handler)(nil)
