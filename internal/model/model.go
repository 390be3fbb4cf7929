// Package model routes generation requests to AI providers: the local
// ollama CLI as the default, plus cloud backends unlocked by their
// environment keys.
package model

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Provider is a single generation backend.
type Provider interface {
	// Name returns the registry key.
	Name() string

	// Available reports whether the provider can serve requests now.
	Available(ctx context.Context) error

	// Generate produces one completion for prompt on the named model.
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// ErrUnknownProvider is returned for names with no registered provider.
var ErrUnknownProvider = errors.New("unknown provider")

// Status describes the CLI runner for status queries.
type Status struct {
	Installed  bool   `json:"installed"`
	Model      string `json:"model,omitempty"`
	Downloaded bool   `json:"downloaded"`
}

// Registry maps names to providers and holds the default used when a
// request names none.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	def       string
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithDefaultProvider sets the provider used when no name is given.
func WithDefaultProvider(name string) RegistryOption {
	return func(r *Registry) {
		if name != "" {
			r.def = name
		}
	}
}

// NewRegistry creates an empty registry defaulting to ollama.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		providers: make(map[string]Provider),
		def:       "ollama",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds or replaces a provider under its name.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get returns the provider for name, or the default provider when name
// is empty.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		name = r.def
	}
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return p, nil
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
