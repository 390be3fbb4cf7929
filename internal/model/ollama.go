package model

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNotInstalled reports a missing ollama binary.
var ErrNotInstalled = errors.New("ollama is not installed or not found in PATH")

const defaultOllamaBinary = "ollama"

// Ollama proxies the local ollama CLI. The binary is looked up on PATH
// per call, so an install mid-session is picked up.
type Ollama struct {
	bin string
}

// OllamaOption configures the CLI provider.
type OllamaOption func(*Ollama)

// WithBinary overrides the binary name looked up on PATH.
func WithBinary(name string) OllamaOption {
	return func(o *Ollama) {
		if name != "" {
			o.bin = name
		}
	}
}

// NewOllama creates the CLI provider.
func NewOllama(opts ...OllamaOption) *Ollama {
	o := &Ollama{bin: defaultOllamaBinary}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Name returns the registry key.
func (o *Ollama) Name() string { return "ollama" }

// Available reports whether the ollama binary is on PATH.
func (o *Ollama) Available(ctx context.Context) error {
	if !o.Installed() {
		return ErrNotInstalled
	}
	return nil
}

// Installed reports whether the ollama binary is on PATH.
func (o *Ollama) Installed() bool {
	_, err := exec.LookPath(o.bin)
	return err == nil
}

// Downloaded reports whether model is present locally, via the exit
// status of `ollama show`.
func (o *Ollama) Downloaded(ctx context.Context, model string) (bool, error) {
	bin, err := exec.LookPath(o.bin)
	if err != nil {
		return false, ErrNotInstalled
	}

	if err := exec.CommandContext(ctx, bin, "show", model).Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		return false, fmt.Errorf("ollama show: %w", err)
	}
	return true, nil
}

// Pull downloads model and returns the CLI output.
func (o *Ollama) Pull(ctx context.Context, model string) (string, error) {
	return o.run(ctx, "pull", model)
}

// Generate produces one completion via `ollama run`.
func (o *Ollama) Generate(ctx context.Context, model, prompt string) (string, error) {
	return o.run(ctx, "run", model, prompt)
}

// Status reports binary and model state for status queries.
func (o *Ollama) Status(ctx context.Context, model string) Status {
	st := Status{Model: model}
	if !o.Installed() {
		return st
	}
	st.Installed = true
	if model != "" {
		downloaded, err := o.Downloaded(ctx, model)
		st.Downloaded = err == nil && downloaded
	}
	return st
}

// run executes the CLI and returns its stdout. On a failed command the
// error carries the stderr text, or a generic message when the CLI
// wrote nothing.
func (o *Ollama) run(ctx context.Context, args ...string) (string, error) {
	bin, err := exec.LookPath(o.bin)
	if err != nil {
		return "", ErrNotInstalled
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", errors.New(msg)
		}
		return "", fmt.Errorf("%s %s failed with unknown error", o.bin, args[0])
	}
	return stdout.String(), nil
}

var _ Provider = (*Ollama)(nil)
