package workspace

import (
	"context"

	"github.com/dshills/inkwell/internal/dispatcher/handler"
	"github.com/dshills/inkwell/internal/project/vfs"
	"github.com/dshills/inkwell/internal/project/workspace"
)

// Action names for workspace operations.
const (
	ActionList   = "workspace.list"   // recursive listing with ignore marks
	ActionCopy   = "workspace.copy"   // copy a file or tree
	ActionMove   = "workspace.move"   // move a file or tree
	ActionDelete = "workspace.delete" // delete a file or tree
)

// Lister produces workspace listings. Implemented by
// workspace.Service.
type Lister interface {
	List(root string) ([]workspace.Entry, error)
}

// PathOps performs file operations. The default implementation
// delegates to the vfs package.
type PathOps interface {
	Copy(src, dst string) error
	Move(src, dst string) error
	Delete(path string) error
}

// vfsOps is the default PathOps backed by package vfs.
type vfsOps struct{}

func (vfsOps) Copy(src, dst string) error { return vfs.Copy(src, dst) }
func (vfsOps) Move(src, dst string) error { return vfs.Move(src, dst) }
func (vfsOps) Delete(path string) error   { return vfs.Delete(path) }

// Handler implements the workspace namespace.
type Handler struct {
	lister Lister
	ops    PathOps
}

// Option configures a Handler.
type Option func(*Handler)

// WithPathOps overrides the file-operation backend.
func WithPathOps(ops PathOps) Option {
	return func(h *Handler) {
		h.ops = ops
	}
}

// NewHandler creates a workspace handler listing through lister.
func NewHandler(lister Lister, opts ...Option) *Handler {
	h := &Handler{
		lister: lister,
		ops:    vfsOps{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Namespace returns the workspace namespace.
func (h *Handler) Namespace() string {
	return "workspace"
}

// CanHandle returns true if this handler can process the action.
func (h *Handler) CanHandle(actionName string) bool {
	switch actionName {
	case ActionList, ActionCopy, ActionMove, ActionDelete:
		return true
	}
	return false
}

// HandleAction processes a workspace action.
func (h *Handler) HandleAction(ctx context.Context, action handler.Action) handler.Result {
	switch action.Name {
	case ActionList:
		return h.list(action)
	case ActionCopy:
		return h.transfer(action, h.ops.Copy)
	case ActionMove:
		return h.transfer(action, h.ops.Move)
	case ActionDelete:
		return h.delete(action)
	default:
		return handler.Errorf("unknown workspace action: %s", action.Name)
	}
}

func (h *Handler) list(action handler.Action) handler.Result {
	root, err := action.Params.String("root")
	if err != nil {
		return handler.Error(err)
	}
	entries, err := h.lister.List(root)
	if err != nil {
		return handler.Error(err)
	}
	return handler.SuccessWithData("entries", entries)
}

func (h *Handler) transfer(action handler.Action, op func(src, dst string) error) handler.Result {
	src, err := action.Params.String("src")
	if err != nil {
		return handler.Error(err)
	}
	dst, err := action.Params.String("dst")
	if err != nil {
		return handler.Error(err)
	}
	if err := op(src, dst); err != nil {
		return handler.Error(err)
	}
	return handler.Success()
}

func (h *Handler) delete(action handler.Action) handler.Result {
	path, err := action.Params.String("path")
	if err != nil {
		return handler.Error(err)
	}
	if err := h.ops.Delete(path); err != nil {
		return handler.Error(err)
	}
	return handler.Success()
}

var _ handler.NamespaceHandler = (*Handler)(nil)
