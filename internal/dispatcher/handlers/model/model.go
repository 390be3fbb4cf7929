package model

import (
	"context"

	"github.com/dshills/inkwell/internal/dispatcher/handler"
	"github.com/dshills/inkwell/internal/model"
)

// Action names for model operations.
const (
	ActionStatus     = "model.status"     // CLI runner and model state
	ActionPull       = "model.pull"       // start a background download
	ActionPullStatus = "model.pullStatus" // poll a download job
	ActionGenerate   = "model.generate"   // single-shot generation
)

// StatusReporter reports the CLI runner's state. Implemented by
// model.Ollama.
type StatusReporter interface {
	Status(ctx context.Context, modelName string) model.Status
}

// ProviderSource resolves provider names. Implemented by
// model.Registry.
type ProviderSource interface {
	Get(name string) (model.Provider, error)
}

// PullService tracks background downloads. Implemented by
// model.PullSupervisor.
type PullService interface {
	StartPull(ctx context.Context, modelName string) string
	Status(id string) (model.PullJob, bool)
}

// Handler implements the model namespace.
type Handler struct {
	status       StatusReporter
	providers    ProviderSource
	pulls        PullService
	defaultModel string
}

// Option configures a Handler.
type Option func(*Handler)

// WithDefaultModel sets the model used when a request names none.
func WithDefaultModel(name string) Option {
	return func(h *Handler) {
		h.defaultModel = name
	}
}

// NewHandler creates a model handler.
func NewHandler(status StatusReporter, providers ProviderSource, pulls PullService, opts ...Option) *Handler {
	h := &Handler{
		status:    status,
		providers: providers,
		pulls:     pulls,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Namespace returns the model namespace.
func (h *Handler) Namespace() string {
	return "model"
}

// CanHandle returns true if this handler can process the action.
func (h *Handler) CanHandle(actionName string) bool {
	switch actionName {
	case ActionStatus, ActionPull, ActionPullStatus, ActionGenerate:
		return true
	}
	return false
}

// HandleAction processes a model action.
func (h *Handler) HandleAction(ctx context.Context, action handler.Action) handler.Result {
	switch action.Name {
	case ActionStatus:
		return h.modelStatus(ctx, action)
	case ActionPull:
		return h.pull(ctx, action)
	case ActionPullStatus:
		return h.pullStatus(action)
	case ActionGenerate:
		return h.generate(ctx, action)
	default:
		return handler.Errorf("unknown model action: %s", action.Name)
	}
}

func (h *Handler) modelStatus(ctx context.Context, action handler.Action) handler.Result {
	name, err := action.Params.StringOr("model", h.defaultModel)
	if err != nil {
		return handler.Error(err)
	}
	st := h.status.Status(ctx, name)
	return handler.Result{
		Status: handler.StatusOK,
		Data: map[string]any{
			"installed":  st.Installed,
			"model":      st.Model,
			"downloaded": st.Downloaded,
		},
	}
}

func (h *Handler) pull(ctx context.Context, action handler.Action) handler.Result {
	name, err := action.Params.String("model")
	if err != nil {
		return handler.Error(err)
	}
	// The job outlives this request; detach it from the request ctx.
	id := h.pulls.StartPull(context.WithoutCancel(ctx), name)
	return handler.SuccessWithData("job", id)
}

func (h *Handler) pullStatus(action handler.Action) handler.Result {
	id, err := action.Params.String("job")
	if err != nil {
		return handler.Error(err)
	}
	job, ok := h.pulls.Status(id)
	if !ok {
		return handler.Errorf("unknown pull job: %s", id)
	}

	result := handler.SuccessWithData("state", string(job.State))
	if job.Output != "" {
		result = result.WithData("output", job.Output)
	}
	if job.Error != "" {
		result = result.WithData("error", job.Error)
	}
	return result
}

func (h *Handler) generate(ctx context.Context, action handler.Action) handler.Result {
	prompt, err := action.Params.String("prompt")
	if err != nil {
		return handler.Error(err)
	}
	name, err := action.Params.StringOr("model", h.defaultModel)
	if err != nil {
		return handler.Error(err)
	}
	providerName, err := action.Params.StringOr("provider", "")
	if err != nil {
		return handler.Error(err)
	}

	provider, err := h.providers.Get(providerName)
	if err != nil {
		return handler.Error(err)
	}
	if err := provider.Available(ctx); err != nil {
		return handler.Error(err)
	}

	output, err := provider.Generate(ctx, name, prompt)
	if err != nil {
		return handler.Error(err)
	}
	return handler.SuccessWithData("output", output)
}

var _ handler.NamespaceHandler = (*Handler)(nil)
