// Package settings persists the application settings blob.
//
// The blob is a single JSON document at a fixed location. The engine
// treats it as opaque: there is no schema, and values are addressed by
// path only when a caller asks for one.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const emptyObject = "{}"

// DefaultFile returns the fixed settings location under the user's
// config directory.
func DefaultFile() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "inkwell", "settings.json"), nil
}

// Store reads and writes the settings blob at one path. File access
// is serialized; concurrent callers see whole-blob updates only.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store persisting to path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the file the store persists to.
func (s *Store) Path() string { return s.path }

// Get returns the raw settings blob. On first access the file is
// created as an empty object, parent directories included.
func (s *Store) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Update sets the value at a gjson-style path and persists the new
// blob, returning it. The value may be any JSON-representable Go
// value.
func (s *Store) Update(path string, value any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := s.load()
	if err != nil {
		return "", err
	}
	next, err := sjson.Set(blob, path, value)
	if err != nil {
		return "", fmt.Errorf("set %s: %w", path, err)
	}
	if err := s.write(next); err != nil {
		return "", err
	}
	return next, nil
}

// UpdateRaw is Update for a pre-encoded JSON fragment.
func (s *Store) UpdateRaw(path, rawJSON string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := s.load()
	if err != nil {
		return "", err
	}
	next, err := sjson.SetRaw(blob, path, rawJSON)
	if err != nil {
		return "", fmt.Errorf("set %s: %w", path, err)
	}
	if err := s.write(next); err != nil {
		return "", err
	}
	return next, nil
}

// Lookup reads one value from the persisted blob by gjson path. Check
// Exists on the result; a missing path is not an error.
func (s *Store) Lookup(path string) (gjson.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := s.load()
	if err != nil {
		return gjson.Result{}, err
	}
	return gjson.Get(blob, path), nil
}

func (s *Store) load() (string, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		if mkErr := os.MkdirAll(filepath.Dir(s.path), 0o755); mkErr != nil {
			return "", fmt.Errorf("create settings dir: %w", mkErr)
		}
		if wrErr := os.WriteFile(s.path, []byte(emptyObject), 0o644); wrErr != nil {
			return "", fmt.Errorf("create settings file: %w", wrErr)
		}
		return emptyObject, nil
	}
	if err != nil {
		return "", fmt.Errorf("read settings: %w", err)
	}
	return string(raw), nil
}

func (s *Store) write(blob string) error {
	if err := os.WriteFile(s.path, []byte(blob), 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
