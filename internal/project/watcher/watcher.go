// Package watcher keeps the open document in sync with the disk copy.
//
// The watcher arms itself on every file-opened event and monitors that
// one file. External writes are debounced and re-enqueued on the
// ingestion queue, which re-opens the file and re-emits file-opened.
// Remove or rename disarms the watcher until the next open.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/inkwell/internal/event"
	"github.com/dshills/inkwell/internal/event/events"
)

// Enqueuer accepts paths for ingestion.
type Enqueuer interface {
	Enqueue(path string)
}

// Config holds watcher configuration options.
type Config struct {
	// DebounceDelay coalesces bursts of writes into a single reload.
	// Default: 100ms
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
	}
}

// Option configures a Watcher.
type Option func(*Config)

// WithDebounceDelay sets the debounce delay.
func WithDebounceDelay(d time.Duration) Option {
	return func(c *Config) {
		c.DebounceDelay = d
	}
}

// Stats provides watcher status information.
type Stats struct {
	// Armed is the path currently being watched, empty when idle.
	Armed string

	// Reloads is the number of paths handed to the ingestion queue.
	Reloads uint64

	// Errors is the number of watch errors encountered.
	Errors uint64
}

// Watcher monitors the active document's file.
type Watcher struct {
	queue  Enqueuer
	config Config

	fsw *fsnotify.Watcher
	sub *event.Subscription
	bus *event.Bus

	mu      sync.Mutex
	armed   string
	pending *time.Timer

	reloads atomic.Uint64
	errs    atomic.Uint64

	errMu   sync.Mutex
	lastErr error
}

// New creates a document watcher wired to the bus and queue. The
// watcher is inert until Run is called.
func New(bus *event.Bus, queue Enqueuer, opts ...Option) (*Watcher, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.DebounceDelay <= 0 {
		config.DebounceDelay = 100 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	sub, err := bus.Subscribe(event.WithTopics(events.TopicFileOpened))
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	return &Watcher{
		queue:  queue,
		config: config,
		fsw:    fsw,
		sub:    sub,
		bus:    bus,
	}, nil
}

// Run processes open notifications and file events until ctx is
// cancelled. Resources are released on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		w.disarm()
		_ = w.bus.Unsubscribe(w.sub)
		_ = w.fsw.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case env, ok := <-w.sub.C():
			if !ok {
				return nil
			}
			if opened, ok := env.Payload.(events.FileOpened); ok {
				w.arm(opened.Path)
			}

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.recordError(err)
		}
	}
}

// Armed returns the path currently being watched, empty when idle.
func (w *Watcher) Armed() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.armed
}

// Stats returns watcher statistics.
func (w *Watcher) Stats() Stats {
	return Stats{
		Armed:   w.Armed(),
		Reloads: w.reloads.Load(),
		Errors:  w.errs.Load(),
	}
}

// arm switches the watch to path, dropping any previous watch and any
// pending reload for it.
func (w *Watcher) arm(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		w.recordError(err)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopPending()
	if w.armed != "" && w.armed != abs {
		_ = w.fsw.Remove(w.armed)
	}
	if err := w.fsw.Add(abs); err != nil {
		w.armed = ""
		w.recordError(fmt.Errorf("watch %s: %w", abs, err))
		return
	}
	w.armed = abs
}

// disarm stops the current watch and cancels any pending reload.
func (w *Watcher) disarm() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopPending()
	if w.armed != "" {
		_ = w.fsw.Remove(w.armed)
		w.armed = ""
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.armed == "" || ev.Name != w.armed {
		return
	}

	switch {
	case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
		w.stopPending()
		_ = w.fsw.Remove(w.armed)
		w.armed = ""

	case ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create):
		w.scheduleReload(w.armed)
	}
}

// scheduleReload starts or resets the debounce timer for path. Callers
// hold w.mu.
func (w *Watcher) scheduleReload(path string) {
	if w.pending != nil {
		w.pending.Reset(w.config.DebounceDelay)
		return
	}
	w.pending = time.AfterFunc(w.config.DebounceDelay, func() {
		w.fireReload(path)
	})
}

// fireReload consumes the pending timer and enqueues path. A fire that
// lost a race with stopPending, or whose watch moved on, is a no-op.
func (w *Watcher) fireReload(path string) {
	w.mu.Lock()
	if w.pending == nil {
		w.mu.Unlock()
		return
	}
	w.pending.Stop()
	w.pending = nil
	if w.armed != path {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	w.queue.Enqueue(path)
	w.reloads.Add(1)
}

// stopPending cancels the debounce timer. Callers hold w.mu.
func (w *Watcher) stopPending() {
	if w.pending != nil {
		w.pending.Stop()
		w.pending = nil
	}
}

func (w *Watcher) recordError(err error) {
	w.errs.Add(1)
	w.errMu.Lock()
	w.lastErr = err
	w.errMu.Unlock()
}

// LastError returns the most recent watch error, if any.
func (w *Watcher) LastError() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.lastErr
}
