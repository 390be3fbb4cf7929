package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dshills/inkwell/internal/event"
	"github.com/dshills/inkwell/internal/event/events"
	"github.com/dshills/inkwell/internal/syntax"
)

// Session owns the single document slot.
//
// All methods are safe for concurrent use. Each call acquires the
// session lock for its full duration, so the effects of concurrent
// callers appear in lock-grant order. Tokenize is the one exception:
// it holds the lock only long enough to snapshot the line sequence and
// parses outside it.
type Session struct {
	mu  sync.Mutex
	doc *Document

	bus       event.Publisher
	tokenizer *syntax.Tokenizer
	overrides map[string]string
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithPublisher routes change events to the given publisher. Without
// one, mutations succeed silently.
func WithPublisher(pub event.Publisher) SessionOption {
	return func(s *Session) {
		s.bus = pub
	}
}

// WithTokenizer sets the tokenizer used by Tokenize. The session does
// not close it; the owner does.
func WithTokenizer(tok *syntax.Tokenizer) SessionOption {
	return func(s *Session) {
		s.tokenizer = tok
	}
}

// WithLanguageOverrides adds extension-to-tag mappings consulted
// before the built-in table when detecting a document's language.
// Keys are extensions without the dot.
func WithLanguageOverrides(overrides map[string]string) SessionOption {
	return func(s *Session) {
		if len(overrides) == 0 {
			return
		}
		if s.overrides == nil {
			s.overrides = make(map[string]string, len(overrides))
		}
		for ext, tag := range overrides {
			s.overrides[strings.ToLower(strings.TrimPrefix(ext, "."))] = tag
		}
	}
}

// NewSession returns a session with an empty document slot.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{}
	for _, opt := range opts {
		opt(s)
	}
	if s.tokenizer == nil {
		s.tokenizer = syntax.NewTokenizer()
	}
	return s
}

// Open reads the file at path and installs it as the active document,
// replacing any previous one. The content is decoded as UTF-8 with
// invalid sequences replaced, split on newlines, and stripped of
// trailing carriage returns.
func (s *Session) Open(path string) (Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("read %s: %w", path, err)
	}

	s.doc = newDocument(path, content, s.overrides)
	md := s.doc.metadata()
	s.publish(fileOpened(md))
	return md, nil
}

// Create writes an empty file at path, creating parent directories as
// needed, and installs a fresh document holding one empty line. Any
// previous document is replaced.
func (s *Session) Create(path string) (Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Metadata{}, fmt.Errorf("create %s: %w", path, err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		return Metadata{}, fmt.Errorf("create %s: %w", path, err)
	}

	s.doc = newDocument(path, nil, s.overrides)
	md := s.doc.metadata()
	s.publish(fileOpened(md))
	return md, nil
}

// ReadLine returns line n's content, or the empty string when n is
// outside the document. Out-of-range reads are not errors.
func (s *Session) ReadLine(n int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return "", ErrNoDocument
	}
	if n < 0 || n >= len(s.doc.Lines) {
		return "", nil
	}
	return s.doc.Lines[n], nil
}

// WriteLine sets line n to content. When n is past the end the
// document grows with empty lines so that n becomes the last index.
func (s *Session) WriteLine(n int, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return ErrNoDocument
	}
	if n < 0 {
		n = 0
	}
	for n >= len(s.doc.Lines) {
		s.doc.Lines = append(s.doc.Lines, "")
	}
	s.doc.Lines[n] = content
	s.doc.recomputeSize()
	s.publish(events.FileUpdated{Line: n, Content: content})
	return nil
}

// InsertLine inserts content before line n, shifting subsequent lines
// down. Negative indexes clamp to 0; an index past the end pads with
// empty lines so content lands exactly at n.
func (s *Session) InsertLine(n int, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return ErrNoDocument
	}
	if n < 0 {
		n = 0
	}
	lines := s.doc.Lines
	if n >= len(lines) {
		for n > len(lines) {
			lines = append(lines, "")
		}
		lines = append(lines, content)
	} else {
		lines = append(lines, "")
		copy(lines[n+1:], lines[n:])
		lines[n] = content
	}
	s.doc.Lines = lines
	s.doc.recomputeSize()

	total := len(lines)
	s.publish(events.FileUpdated{Line: n, Content: content, TotalLines: &total})
	return nil
}

// RemoveLine deletes line n. Indexes outside the document are a
// successful no-op and emit no event.
func (s *Session) RemoveLine(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return ErrNoDocument
	}
	if n < 0 || n >= len(s.doc.Lines) {
		return nil
	}
	s.doc.Lines = append(s.doc.Lines[:n], s.doc.Lines[n+1:]...)
	s.doc.recomputeSize()

	content := ""
	if n < len(s.doc.Lines) {
		content = s.doc.Lines[n]
	}
	total := len(s.doc.Lines)
	s.publish(events.FileUpdated{Line: n, Content: content, TotalLines: &total})
	return nil
}

// SetLanguage overwrites the document's language tag.
func (s *Session) SetLanguage(tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return ErrNoDocument
	}
	s.doc.Language = tag
	s.publish(events.LanguageChanged{Language: tag})
	return nil
}

// Save joins the lines with newlines and overwrites the file at the
// document's path. The write is direct, not an atomic rename.
func (s *Session) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return ErrNoDocument
	}
	if err := os.WriteFile(s.doc.Path, []byte(s.doc.text()), 0o644); err != nil {
		return fmt.Errorf("save %s: %w", s.doc.Path, err)
	}
	return nil
}

// Close clears the document slot.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return ErrNoDocument
	}
	s.doc = nil
	return nil
}

// Metadata reports the open document's descriptor.
func (s *Session) Metadata() (Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return Metadata{}, ErrNoDocument
	}
	return s.doc.metadata(), nil
}

// Snapshot returns a copy of the line sequence and the language tag,
// taken atomically under the session lock.
func (s *Session) Snapshot() ([]string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return nil, "", ErrNoDocument
	}
	lines := make([]string, len(s.doc.Lines))
	copy(lines, s.doc.Lines)
	return lines, s.doc.Language, nil
}

// Tokenize produces tokens for the inclusive line range [startRow,
// endRow] and publishes them as a tokenization event. Tokens are
// delivered on the bus, not returned, so the contract stays uniform
// with mutation events. The parse runs outside the session lock on a
// consistent snapshot.
func (s *Session) Tokenize(startRow, endRow int) error {
	lines, language, err := s.Snapshot()
	if err != nil {
		return err
	}

	tokens := s.tokenizer.Tokenize(lines, language, startRow, endRow)
	s.publish(events.Tokenization(tokens))
	return nil
}

// publish emits an event when a bus is configured. Emission is
// fire-and-forget; delivery failures never surface to the caller.
func (s *Session) publish(ev any) {
	if s.bus != nil {
		s.bus.Publish(ev)
	}
}

// fileOpened converts a Metadata into its event payload.
func fileOpened(md Metadata) events.FileOpened {
	return events.FileOpened{
		Name:      md.Name,
		Path:      md.Path,
		Size:      md.Size,
		Language:  md.Language,
		LineCount: md.LineCount,
	}
}
