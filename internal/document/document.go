// Package document implements the buffer manager: a single-slot
// document session serving line-level reads and writes.
//
// A Session owns at most one Document at a time. Every public
// operation is one exclusive transaction against the slot, so
// concurrent callers observe operations in lock-grant order and never
// see a partially updated line sequence. Mutations publish typed
// change events on the notification bus; event delivery is best-effort
// and never fails the triggering operation.
package document

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Document is the in-memory representation of one open file.
//
// Lines holds the document as an ordered sequence of newline-free
// strings. Size tracks the byte length of the join-by-newline
// serialization and is recomputed after every mutation. A Document is
// not safe for concurrent use on its own; the owning Session
// serializes all access.
type Document struct {
	// Path is the path the document was opened from and saves to.
	Path string

	// Name is the base name of Path.
	Name string

	// Language is the document's language tag.
	Language string

	// Size is len(strings.Join(Lines, "\n")).
	Size int

	// Lines is the document content, one entry per line.
	Lines []string
}

// Metadata describes the open document for command responses and
// events.
type Metadata struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Size      int    `json:"size"`
	Language  string `json:"language"`
	LineCount int    `json:"lineCount"`
}

// newDocument builds a Document from raw file content. Invalid UTF-8
// sequences are replaced, the text is split on newlines, and one
// trailing carriage return is stripped per line so CRLF input
// normalizes to plain lines.
func newDocument(path string, content []byte, overrides map[string]string) *Document {
	text := strings.ToValidUTF8(string(content), string(utf8.RuneError))
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	doc := &Document{
		Path:     path,
		Name:     filepath.Base(path),
		Language: detectLanguage(path, overrides),
		Lines:    lines,
	}
	doc.recomputeSize()
	return doc
}

// recomputeSize updates Size from the current line sequence. Newline
// separators are counted once between adjacent lines, matching the
// join-by-newline form written by Save.
func (d *Document) recomputeSize() {
	total := 0
	for _, line := range d.Lines {
		total += len(line)
	}
	if n := len(d.Lines); n > 1 {
		total += n - 1
	}
	d.Size = total
}

// text returns the serialized document content as written by Save.
func (d *Document) text() string {
	return strings.Join(d.Lines, "\n")
}

// metadata returns the document's current descriptor.
func (d *Document) metadata() Metadata {
	return Metadata{
		Name:      d.Name,
		Path:      d.Path,
		Size:      d.Size,
		Language:  d.Language,
		LineCount: len(d.Lines),
	}
}
