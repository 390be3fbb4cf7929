package buffer

import (
	"context"

	"github.com/dshills/inkwell/internal/dispatcher/handler"
	"github.com/dshills/inkwell/internal/document"
)

// Action names for buffer operations.
const (
	ActionOpen        = "buffer.open"        // open a file as the active document
	ActionCreate      = "buffer.create"      // create an empty file and open it
	ActionReadLine    = "buffer.readLine"    // read one line
	ActionWriteLine   = "buffer.writeLine"   // set one line, growing as needed
	ActionInsertLine  = "buffer.insertLine"  // insert a line, shifting the rest
	ActionRemoveLine  = "buffer.removeLine"  // remove one line
	ActionTokenize    = "buffer.tokenize"    // request tokens for a row range
	ActionSave        = "buffer.save"        // write the document back to disk
	ActionSetLanguage = "buffer.setLanguage" // change the language tag
	ActionClose       = "buffer.close"       // clear the document slot
	ActionMetadata    = "buffer.metadata"    // report the open document
)

// Session is the document session the handler drives. Implemented by
// document.Session.
type Session interface {
	Open(path string) (document.Metadata, error)
	Create(path string) (document.Metadata, error)
	ReadLine(n int) (string, error)
	WriteLine(n int, content string) error
	InsertLine(n int, content string) error
	RemoveLine(n int) error
	Tokenize(startRow, endRow int) error
	Save() error
	SetLanguage(tag string) error
	Close() error
	Metadata() (document.Metadata, error)
}

// Handler implements the buffer namespace.
type Handler struct {
	session Session
}

// NewHandler creates a buffer handler driving the given session.
func NewHandler(session Session) *Handler {
	return &Handler{session: session}
}

// Namespace returns the buffer namespace.
func (h *Handler) Namespace() string {
	return "buffer"
}

// CanHandle returns true if this handler can process the action.
func (h *Handler) CanHandle(actionName string) bool {
	switch actionName {
	case ActionOpen, ActionCreate, ActionReadLine, ActionWriteLine,
		ActionInsertLine, ActionRemoveLine, ActionTokenize, ActionSave,
		ActionSetLanguage, ActionClose, ActionMetadata:
		return true
	}
	return false
}

// HandleAction processes a buffer action.
func (h *Handler) HandleAction(ctx context.Context, action handler.Action) handler.Result {
	switch action.Name {
	case ActionOpen:
		return h.open(action)
	case ActionCreate:
		return h.create(action)
	case ActionReadLine:
		return h.readLine(action)
	case ActionWriteLine:
		return h.writeLine(action)
	case ActionInsertLine:
		return h.insertLine(action)
	case ActionRemoveLine:
		return h.removeLine(action)
	case ActionTokenize:
		return h.tokenize(action)
	case ActionSave:
		return h.save()
	case ActionSetLanguage:
		return h.setLanguage(action)
	case ActionClose:
		return h.close()
	case ActionMetadata:
		return h.metadata()
	default:
		return handler.Errorf("unknown buffer action: %s", action.Name)
	}
}

func (h *Handler) open(action handler.Action) handler.Result {
	path, err := action.Params.String("path")
	if err != nil {
		return handler.Error(err)
	}
	md, err := h.session.Open(path)
	if err != nil {
		return handler.Error(err)
	}
	return metadataResult(md)
}

func (h *Handler) create(action handler.Action) handler.Result {
	path, err := action.Params.String("path")
	if err != nil {
		return handler.Error(err)
	}
	md, err := h.session.Create(path)
	if err != nil {
		return handler.Error(err)
	}
	return metadataResult(md)
}

func (h *Handler) readLine(action handler.Action) handler.Result {
	line, err := action.Params.Int("line")
	if err != nil {
		return handler.Error(err)
	}
	content, err := h.session.ReadLine(line)
	if err != nil {
		return handler.Error(err)
	}
	return handler.SuccessWithData("content", content)
}

func (h *Handler) writeLine(action handler.Action) handler.Result {
	line, err := action.Params.Int("line")
	if err != nil {
		return handler.Error(err)
	}
	content, err := action.Params.String("content")
	if err != nil {
		return handler.Error(err)
	}
	if err := h.session.WriteLine(line, content); err != nil {
		return handler.Error(err)
	}
	return handler.Success()
}

func (h *Handler) insertLine(action handler.Action) handler.Result {
	line, err := action.Params.Int("line")
	if err != nil {
		return handler.Error(err)
	}
	content, err := action.Params.String("content")
	if err != nil {
		return handler.Error(err)
	}
	if err := h.session.InsertLine(line, content); err != nil {
		return handler.Error(err)
	}
	return handler.Success()
}

func (h *Handler) removeLine(action handler.Action) handler.Result {
	line, err := action.Params.Int("line")
	if err != nil {
		return handler.Error(err)
	}
	if err := h.session.RemoveLine(line); err != nil {
		return handler.Error(err)
	}
	return handler.Success()
}

func (h *Handler) tokenize(action handler.Action) handler.Result {
	startRow, err := action.Params.Int("startRow")
	if err != nil {
		return handler.Error(err)
	}
	endRow, err := action.Params.Int("endRow")
	if err != nil {
		return handler.Error(err)
	}
	if err := h.session.Tokenize(startRow, endRow); err != nil {
		return handler.Error(err)
	}
	// Tokens are delivered on the bus, not in the reply.
	return handler.Success()
}

func (h *Handler) save() handler.Result {
	if err := h.session.Save(); err != nil {
		return handler.Error(err)
	}
	return handler.Success()
}

func (h *Handler) setLanguage(action handler.Action) handler.Result {
	tag, err := action.Params.String("language")
	if err != nil {
		return handler.Error(err)
	}
	if err := h.session.SetLanguage(tag); err != nil {
		return handler.Error(err)
	}
	return handler.Success()
}

func (h *Handler) close() handler.Result {
	if err := h.session.Close(); err != nil {
		return handler.Error(err)
	}
	return handler.Success()
}

func (h *Handler) metadata() handler.Result {
	md, err := h.session.Metadata()
	if err != nil {
		return handler.Error(err)
	}
	return metadataResult(md)
}

// metadataResult flattens a Metadata into the wire result object.
func metadataResult(md document.Metadata) handler.Result {
	return handler.Result{
		Status: handler.StatusOK,
		Data: map[string]any{
			"name":      md.Name,
			"path":      md.Path,
			"size":      md.Size,
			"language":  md.Language,
			"lineCount": md.LineCount,
		},
	}
}

var _ handler.NamespaceHandler = (*Handler)(nil)
