// Package workspace lists project trees for the editor's file explorer.
// Listings mark ignored entries rather than omitting them, skip
// dot-prefixed directories entirely, and honor ignore globs from the
// workspace manifest.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrInvalidPath reports a listing root that does not exist or is not a
// directory.
var ErrInvalidPath = errors.New("invalid path")

// builtinIgnore marks well-known generated or dependency directories in
// any listing, without a manifest. Patterns use doublestar syntax
// against the slash path relative to the listing root.
var builtinIgnore = []string{
	"**/node_modules",
	"**/vendor",
	"**/target",
	"**/dist",
	"**/build",
	"**/__pycache__",
	"**/.DS_Store",
}

// Entry is one node of a workspace listing.
type Entry struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	IsDir    bool    `json:"isDir"`
	Ignored  bool    `json:"ignored"`
	Children []Entry `json:"children,omitempty"`
}

// Service produces workspace listings.
type Service struct {
	extra []string
}

// Option configures a Service.
type Option func(*Service)

// WithIgnorePatterns adds ignore globs on top of the built-in set and
// any manifest patterns.
func WithIgnorePatterns(patterns ...string) Option {
	return func(s *Service) {
		s.extra = append(s.extra, patterns...)
	}
}

// NewService creates a listing service.
func NewService(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the recursive tree under root. Dot-prefixed directories
// are skipped entirely. Entries matching an ignore pattern are included
// with Ignored set; ignored directories are not descended into. Within
// each directory, subdirectories sort before files, case-insensitive
// name order.
func (s *Service) List(root string) ([]Entry, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPath, root)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPath, root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidPath, root)
	}

	manifest, err := LoadManifest(abs)
	if err != nil {
		return nil, err
	}

	patterns := make([]string, 0, len(builtinIgnore)+len(manifest.Ignore)+len(s.extra))
	patterns = append(patterns, builtinIgnore...)
	patterns = append(patterns, manifest.Ignore...)
	patterns = append(patterns, s.extra...)

	return listDir(abs, "", patterns)
}

func listDir(dir, rel string, patterns []string) ([]Entry, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	sort.Slice(dirents, func(i, j int) bool {
		a, b := dirents[i], dirents[j]
		if a.IsDir() != b.IsDir() {
			return a.IsDir()
		}
		la, lb := strings.ToLower(a.Name()), strings.ToLower(b.Name())
		if la != lb {
			return la < lb
		}
		return a.Name() < b.Name()
	})

	entries := make([]Entry, 0, len(dirents))
	for _, de := range dirents {
		name := de.Name()
		if de.IsDir() && strings.HasPrefix(name, ".") {
			continue
		}

		entryRel := name
		if rel != "" {
			entryRel = path.Join(rel, name)
		}
		entry := Entry{
			Name:    name,
			Path:    filepath.Join(dir, name),
			IsDir:   de.IsDir(),
			Ignored: matchesAny(patterns, entryRel),
		}

		if de.IsDir() && !entry.Ignored {
			children, err := listDir(entry.Path, entryRel, patterns)
			if err != nil {
				return nil, err
			}
			entry.Children = children
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// matchesAny reports whether the slash-relative path matches any ignore
// pattern. Malformed patterns match nothing.
func matchesAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}
