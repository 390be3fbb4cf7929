// Package events defines the typed payloads delivered on the
// notification bus. Payload structs mirror the wire contract consumed
// by frontends; they deliberately avoid importing engine internals so
// the event schema stays stable as the engine evolves.
package events

import (
	"github.com/dshills/inkwell/internal/event/topic"
	"github.com/dshills/inkwell/internal/syntax"
)

// Document event topics. The string values are the wire names
// forwarded verbatim as notification methods.
const (
	// TopicFileOpened is published when a document is opened or created.
	TopicFileOpened topic.Topic = "file-opened"

	// TopicFileUpdated is published when a line is written, inserted, or removed.
	TopicFileUpdated topic.Topic = "file-updated"

	// TopicLanguageChanged is published when the document's language tag changes.
	TopicLanguageChanged topic.Topic = "language-changed"

	// TopicTokenization is published when a tokenization request completes.
	TopicTokenization topic.Topic = "tokenization"
)

// FileOpened carries the metadata of a newly opened or created document.
type FileOpened struct {
	// Name is the base name of the file.
	Name string `json:"name"`

	// Path is the full path the document was opened from.
	Path string `json:"path"`

	// Size is the document size in bytes under join-by-newline
	// serialization.
	Size int `json:"size"`

	// Language is the document's language tag.
	Language string `json:"language"`

	// LineCount is the number of lines held in memory.
	LineCount int `json:"lineCount"`
}

// EventTopic returns the topic for FileOpened events.
func (FileOpened) EventTopic() topic.Topic { return TopicFileOpened }

// FileUpdated carries a single-line change.
type FileUpdated struct {
	// Line is the zero-based index of the affected line.
	Line int `json:"line"`

	// Content is the line's content after the change. For removals it
	// is the line now occupying the index, or empty when none does.
	Content string `json:"content"`

	// TotalLines is the line count after the change. It is set for
	// inserts and removals and omitted for in-place writes.
	TotalLines *int `json:"totalLines,omitempty"`
}

// EventTopic returns the topic for FileUpdated events.
func (FileUpdated) EventTopic() topic.Topic { return TopicFileUpdated }

// LanguageChanged carries the document's new language tag.
type LanguageChanged struct {
	Language string `json:"language"`
}

// EventTopic returns the topic for LanguageChanged events.
func (LanguageChanged) EventTopic() topic.Topic { return TopicLanguageChanged }

// Tokenization carries the token list produced by a tokenization
// request. It marshals as a bare array, matching the wire contract.
type Tokenization []syntax.Token

// EventTopic returns the topic for Tokenization events.
func (Tokenization) EventTopic() topic.Topic { return TopicTokenization }
