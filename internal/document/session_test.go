package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/dshills/inkwell/internal/event"
	"github.com/dshills/inkwell/internal/event/events"
	"github.com/dshills/inkwell/internal/syntax"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func openTemp(t *testing.T, s *Session, name, content string) Metadata {
	t.Helper()
	md, err := s.Open(writeTemp(t, name, content))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return md
}

// assertSizeInvariant checks size == sum of line lengths plus one
// separator between adjacent lines.
func assertSizeInvariant(t *testing.T, s *Session) {
	t.Helper()
	lines, _, err := s.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	md, err := s.Metadata()
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	want := 0
	for _, line := range lines {
		want += len(line)
	}
	if n := len(lines); n > 1 {
		want += n - 1
	}
	if md.Size != want {
		t.Errorf("size = %d, want %d for lines %q", md.Size, want, lines)
	}
}

func recvEnvelope(t *testing.T, sub *event.Subscription) event.Envelope {
	t.Helper()
	select {
	case env := <-sub.C():
		return env
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return event.Envelope{}
}

func TestOpen(t *testing.T) {
	s := NewSession()
	md := openTemp(t, s, "a.py", "def f():\n    pass\n")

	if md.Name != "a.py" {
		t.Errorf("name = %q, want %q", md.Name, "a.py")
	}
	if md.Language != "python" {
		t.Errorf("language = %q, want %q", md.Language, "python")
	}
	if md.LineCount != 3 {
		t.Errorf("lineCount = %d, want 3", md.LineCount)
	}
	if md.Size != 18 {
		t.Errorf("size = %d, want 18", md.Size)
	}

	lines, language, err := s.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	want := []string{"def f():", "    pass", ""}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("lines = %q, want %q", lines, want)
	}
	if language != "python" {
		t.Errorf("snapshot language = %q, want %q", language, "python")
	}
	assertSizeInvariant(t, s)
}

func TestOpenStripsCarriageReturns(t *testing.T) {
	s := NewSession()
	md := openTemp(t, s, "win.txt", "one\r\ntwo\r\nthree")

	lines, _, err := s.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	want := []string{"one", "two", "three"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("lines = %q, want %q", lines, want)
	}
	if md.Size != 13 {
		t.Errorf("size = %d, want 13", md.Size)
	}
}

func TestOpenReplacesInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.txt")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 'h', 'i'}, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	s := NewSession()
	if _, err := s.Open(path); err != nil {
		t.Fatalf("open: %v", err)
	}
	line, err := s.ReadLine(0)
	if err != nil {
		t.Fatalf("read line: %v", err)
	}
	if !utf8.ValidString(line) {
		t.Errorf("line %q is not valid UTF-8", line)
	}
	if line == "" {
		t.Error("invalid bytes were dropped, want replacement")
	}
}

func TestOpenMissingFile(t *testing.T) {
	s := NewSession()
	if _, err := s.Open(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Fatal("open succeeded, want IO error")
	}
}

func TestOpenReplacesPrevious(t *testing.T) {
	s := NewSession()
	openTemp(t, s, "first.go", "package first\n")
	md := openTemp(t, s, "second.py", "x = 1")

	got, err := s.Metadata()
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if got != md {
		t.Errorf("metadata = %+v, want %+v", got, md)
	}
	if got.Name != "second.py" {
		t.Errorf("name = %q, want %q", got.Name, "second.py")
	}
}

func TestCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "deep", "new.go")
	s := NewSession()
	md, err := s.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat created file: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("file size on disk = %d, want 0", info.Size())
	}
	if md.LineCount != 1 {
		t.Errorf("lineCount = %d, want 1", md.LineCount)
	}
	if md.Size != 0 {
		t.Errorf("size = %d, want 0", md.Size)
	}
	if md.Language != "go" {
		t.Errorf("language = %q, want %q", md.Language, "go")
	}
	assertSizeInvariant(t, s)
}

func TestReadLine(t *testing.T) {
	s := NewSession()
	openTemp(t, s, "r.txt", "alpha\nbeta")

	cases := []struct {
		name string
		n    int
		want string
	}{
		{"first", 0, "alpha"},
		{"second", 1, "beta"},
		{"past end", 2, ""},
		{"far past end", 100, ""},
		{"negative", -1, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.ReadLine(tc.n)
			if err != nil {
				t.Fatalf("read line %d: %v", tc.n, err)
			}
			if got != tc.want {
				t.Errorf("line %d = %q, want %q", tc.n, got, tc.want)
			}
		})
	}
}

func TestNoDocument(t *testing.T) {
	s := NewSession()

	cases := []struct {
		name string
		call func() error
	}{
		{"ReadLine", func() error { _, err := s.ReadLine(0); return err }},
		{"WriteLine", func() error { return s.WriteLine(0, "x") }},
		{"InsertLine", func() error { return s.InsertLine(0, "x") }},
		{"RemoveLine", func() error { return s.RemoveLine(0) }},
		{"SetLanguage", func() error { return s.SetLanguage("go") }},
		{"Save", func() error { return s.Save() }},
		{"Close", func() error { return s.Close() }},
		{"Metadata", func() error { _, err := s.Metadata(); return err }},
		{"Snapshot", func() error { _, _, err := s.Snapshot(); return err }},
		{"Tokenize", func() error { return s.Tokenize(0, 1) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.call(); !errors.Is(err, ErrNoDocument) {
				t.Errorf("err = %v, want ErrNoDocument", err)
			}
		})
	}
}

func TestWriteLine(t *testing.T) {
	cases := []struct {
		name      string
		fixture   string
		n         int
		content   string
		wantCount int
	}{
		{"in place", "a\nb", 0, "x", 2},
		{"last line", "a\nb", 1, "x", 2},
		{"append", "a\nb", 2, "x", 3},
		{"pad past end", "a\nb", 5, "x", 6},
		{"pad empty doc", "", 3, "x", 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSession()
			openTemp(t, s, "w.txt", tc.fixture)

			if err := s.WriteLine(tc.n, tc.content); err != nil {
				t.Fatalf("write line: %v", err)
			}
			md, err := s.Metadata()
			if err != nil {
				t.Fatalf("metadata: %v", err)
			}
			if md.LineCount != tc.wantCount {
				t.Errorf("lineCount = %d, want %d", md.LineCount, tc.wantCount)
			}
			got, err := s.ReadLine(tc.n)
			if err != nil {
				t.Fatalf("read line: %v", err)
			}
			if got != tc.content {
				t.Errorf("line %d = %q, want %q", tc.n, got, tc.content)
			}
			assertSizeInvariant(t, s)
		})
	}
}

func TestInsertLine(t *testing.T) {
	cases := []struct {
		name    string
		fixture string
		n       int
		content string
		want    []string
	}{
		{"front", "a\nb", 0, "x", []string{"x", "a", "b"}},
		{"middle", "a\nb\nc", 1, "x", []string{"a", "x", "b", "c"}},
		{"at end", "a\nb", 2, "x", []string{"a", "b", "x"}},
		{"past end pads", "a\nb", 5, "x", []string{"a", "b", "", "", "", "x"}},
		{"negative clamps", "a\nb", -2, "x", []string{"x", "a", "b"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSession()
			openTemp(t, s, "i.txt", tc.fixture)

			if err := s.InsertLine(tc.n, tc.content); err != nil {
				t.Fatalf("insert line: %v", err)
			}
			lines, _, err := s.Snapshot()
			if err != nil {
				t.Fatalf("snapshot: %v", err)
			}
			if !reflect.DeepEqual(lines, tc.want) {
				t.Errorf("lines = %q, want %q", lines, tc.want)
			}
			assertSizeInvariant(t, s)
		})
	}
}

func TestRemoveLine(t *testing.T) {
	cases := []struct {
		name    string
		fixture string
		n       int
		want    []string
	}{
		{"middle", "a\nb\nc", 1, []string{"a", "c"}},
		{"first", "a\nb\nc", 0, []string{"b", "c"}},
		{"last", "a\nb\nc", 2, []string{"a", "b"}},
		{"past end is noop", "a\nb", 10, []string{"a", "b"}},
		{"only line empties document", "", 0, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSession()
			openTemp(t, s, "d.txt", tc.fixture)

			if err := s.RemoveLine(tc.n); err != nil {
				t.Fatalf("remove line: %v", err)
			}
			lines, _, err := s.Snapshot()
			if err != nil {
				t.Fatalf("snapshot: %v", err)
			}
			if !reflect.DeepEqual(lines, tc.want) {
				t.Errorf("lines = %q, want %q", lines, tc.want)
			}
			assertSizeInvariant(t, s)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	s := NewSession()
	if _, err := s.Create(path); err != nil {
		t.Fatalf("create: %v", err)
	}
	for i, line := range []string{"alpha", "", "beta", ""} {
		if err := s.WriteLine(i, line); err != nil {
			t.Fatalf("write line %d: %v", i, err)
		}
	}
	want := []string{"alpha", "", "beta", ""}

	// Two full cycles: the sequence must be reproduced exactly, with
	// no extra line gained per cycle.
	for cycle := 0; cycle < 2; cycle++ {
		if err := s.Save(); err != nil {
			t.Fatalf("save (cycle %d): %v", cycle, err)
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read saved file: %v", err)
		}
		if got := string(raw); got != "alpha\n\nbeta\n" {
			t.Errorf("saved bytes = %q, want %q", got, "alpha\n\nbeta\n")
		}
		if _, err := s.Open(path); err != nil {
			t.Fatalf("reopen (cycle %d): %v", cycle, err)
		}
		lines, _, err := s.Snapshot()
		if err != nil {
			t.Fatalf("snapshot: %v", err)
		}
		if !reflect.DeepEqual(lines, want) {
			t.Errorf("cycle %d lines = %q, want %q", cycle, lines, want)
		}
	}
}

func TestConcurrentWriteLine(t *testing.T) {
	s := NewSession()
	openTemp(t, s, "c.txt", "")

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if err := s.WriteLine(n, fmt.Sprintf("line-%d", n)); err != nil {
				t.Errorf("write line %d: %v", n, err)
			}
		}(i)
	}
	wg.Wait()

	md, err := s.Metadata()
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if md.LineCount != writers {
		t.Errorf("lineCount = %d, want %d", md.LineCount, writers)
	}
	for i := 0; i < writers; i++ {
		got, err := s.ReadLine(i)
		if err != nil {
			t.Fatalf("read line %d: %v", i, err)
		}
		if want := fmt.Sprintf("line-%d", i); got != want {
			t.Errorf("line %d = %q, want %q", i, got, want)
		}
	}
	assertSizeInvariant(t, s)
}

func TestMutationEvents(t *testing.T) {
	bus := event.NewBus()
	defer bus.Close()
	sub, err := bus.Subscribe()
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	s := NewSession(WithPublisher(bus))
	openTemp(t, s, "e.go", "package e\n")

	env := recvEnvelope(t, sub)
	if env.Topic != events.TopicFileOpened {
		t.Fatalf("topic = %q, want %q", env.Topic, events.TopicFileOpened)
	}
	opened, ok := env.Payload.(events.FileOpened)
	if !ok {
		t.Fatalf("payload type = %T, want events.FileOpened", env.Payload)
	}
	if opened.Language != "go" || opened.LineCount != 2 {
		t.Errorf("opened = %+v", opened)
	}

	if err := s.WriteLine(0, "package main"); err != nil {
		t.Fatalf("write line: %v", err)
	}
	env = recvEnvelope(t, sub)
	updated, ok := env.Payload.(events.FileUpdated)
	if !ok {
		t.Fatalf("payload type = %T, want events.FileUpdated", env.Payload)
	}
	if updated.Line != 0 || updated.Content != "package main" {
		t.Errorf("updated = %+v", updated)
	}
	if updated.TotalLines != nil {
		t.Errorf("write event carries totalLines = %d", *updated.TotalLines)
	}

	if err := s.InsertLine(1, "import \"os\""); err != nil {
		t.Fatalf("insert line: %v", err)
	}
	env = recvEnvelope(t, sub)
	updated = env.Payload.(events.FileUpdated)
	if updated.TotalLines == nil || *updated.TotalLines != 3 {
		t.Errorf("insert event totalLines = %v, want 3", updated.TotalLines)
	}

	if err := s.RemoveLine(0); err != nil {
		t.Fatalf("remove line: %v", err)
	}
	env = recvEnvelope(t, sub)
	updated = env.Payload.(events.FileUpdated)
	if updated.Line != 0 || updated.Content != "import \"os\"" {
		t.Errorf("remove event = %+v", updated)
	}
	if updated.TotalLines == nil || *updated.TotalLines != 2 {
		t.Errorf("remove event totalLines = %v, want 2", updated.TotalLines)
	}

	if err := s.SetLanguage("zig"); err != nil {
		t.Fatalf("set language: %v", err)
	}
	env = recvEnvelope(t, sub)
	if env.Topic != events.TopicLanguageChanged {
		t.Fatalf("topic = %q, want %q", env.Topic, events.TopicLanguageChanged)
	}
	changed := env.Payload.(events.LanguageChanged)
	if changed.Language != "zig" {
		t.Errorf("language = %q, want %q", changed.Language, "zig")
	}
}

func TestRemoveLinePastEndEmitsNothing(t *testing.T) {
	bus := event.NewBus()
	defer bus.Close()
	sub, err := bus.Subscribe(event.WithTopics(events.TopicFileUpdated, events.TopicLanguageChanged))
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	s := NewSession(WithPublisher(bus))
	openTemp(t, s, "n.txt", "a\nb")

	if err := s.RemoveLine(99); err != nil {
		t.Fatalf("remove line: %v", err)
	}
	// The next event must be the language change, not a file update
	// from the no-op removal.
	if err := s.SetLanguage("marker"); err != nil {
		t.Fatalf("set language: %v", err)
	}
	env := recvEnvelope(t, sub)
	if env.Topic != events.TopicLanguageChanged {
		t.Errorf("topic = %q, want %q", env.Topic, events.TopicLanguageChanged)
	}
}

func TestTokenizeFallback(t *testing.T) {
	bus := event.NewBus()
	defer bus.Close()
	sub, err := bus.Subscribe(event.WithTopics(events.TopicTokenization))
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	s := NewSession(WithPublisher(bus))
	openTemp(t, s, "doc.xyz", "one\ntwo\nthree")

	if err := s.Tokenize(0, 2); err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	env := recvEnvelope(t, sub)
	tokens, ok := env.Payload.(events.Tokenization)
	if !ok {
		t.Fatalf("payload type = %T, want events.Tokenization", env.Payload)
	}
	want := events.Tokenization{
		{Start: syntax.Position{Row: 0, Col: 0}, End: syntax.Position{Row: 0, Col: 3}, Kind: syntax.KindUntokenized},
		{Start: syntax.Position{Row: 1, Col: 0}, End: syntax.Position{Row: 1, Col: 3}, Kind: syntax.KindUntokenized},
		{Start: syntax.Position{Row: 2, Col: 0}, End: syntax.Position{Row: 2, Col: 5}, Kind: syntax.KindUntokenized},
	}
	if !reflect.DeepEqual(tokens, want) {
		t.Errorf("tokens = %+v, want %+v", tokens, want)
	}
}

func TestTokenizeEmptyDocument(t *testing.T) {
	bus := event.NewBus()
	defer bus.Close()
	sub, err := bus.Subscribe(event.WithTopics(events.TopicTokenization))
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	s := NewSession(WithPublisher(bus))
	openTemp(t, s, "empty.xyz", "")
	if err := s.RemoveLine(0); err != nil {
		t.Fatalf("remove line: %v", err)
	}

	if err := s.Tokenize(0, 10); err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	env := recvEnvelope(t, sub)
	tokens := env.Payload.(events.Tokenization)
	if len(tokens) != 0 {
		t.Errorf("tokens = %+v, want empty list", tokens)
	}
}

func TestClose(t *testing.T) {
	s := NewSession()
	openTemp(t, s, "x.txt", "a")

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := s.Metadata(); !errors.Is(err, ErrNoDocument) {
		t.Errorf("metadata after close = %v, want ErrNoDocument", err)
	}
	if err := s.Close(); !errors.Is(err, ErrNoDocument) {
		t.Errorf("second close = %v, want ErrNoDocument", err)
	}
}

func TestLanguageOverrides(t *testing.T) {
	s := NewSession(WithLanguageOverrides(map[string]string{
		"xyz":  "mylang",
		".qml": "qml",
	}))

	md := openTemp(t, s, "widget.xyz", "")
	if md.Language != "mylang" {
		t.Errorf("language = %q, want %q", md.Language, "mylang")
	}
	md = openTemp(t, s, "view.qml", "")
	if md.Language != "qml" {
		t.Errorf("language = %q, want %q", md.Language, "qml")
	}
	// The built-in table still applies to everything else.
	md = openTemp(t, s, "main.go", "")
	if md.Language != "go" {
		t.Errorf("language = %q, want %q", md.Language, "go")
	}
}
