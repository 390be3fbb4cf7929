// Package app wires the engine's components together and manages the
// process lifecycle.
package app

import (
	"context"
	"os"
	"sync"
	"sync/atomic"

	"github.com/dshills/inkwell/internal/config"
	"github.com/dshills/inkwell/internal/dispatcher"
	"github.com/dshills/inkwell/internal/dispatcher/handler"
	"github.com/dshills/inkwell/internal/document"
	"github.com/dshills/inkwell/internal/event"
	"github.com/dshills/inkwell/internal/ingest"
	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/project/watcher"
	"github.com/dshills/inkwell/internal/project/workspace"
	"github.com/dshills/inkwell/internal/server"
	"github.com/dshills/inkwell/internal/settings"
	"github.com/dshills/inkwell/internal/syntax"
)

// Application is the assembled engine: one of every component, wired
// in dependency order and exposed over the RPC server.
type Application struct {
	opts   Options
	config *config.Config
	logger *Logger

	// Core infrastructure
	bus       *event.Bus
	tokenizer *syntax.Tokenizer

	// Document pipeline
	session *document.Session
	queue   *ingest.Queue
	watcher *watcher.Watcher // nil when disabled

	// Workspace and state
	files    *workspace.Service
	settings *settings.Store

	// Model runners
	providers *model.Registry
	ollama    *model.Ollama
	pulls     *model.PullSupervisor

	// Frontend surface
	dispatcher *dispatcher.Dispatcher
	server     *server.Server

	// runCtx outlives individual requests; background work started by
	// actions (the queue consumer, pull jobs) runs under it.
	runCtx    context.Context
	runCancel context.CancelFunc

	running      atomic.Bool
	shutdownOnce sync.Once

	metrics *Metrics
}

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file. Empty uses the
	// conventional location.
	ConfigPath string

	// WorkspacePath is the workspace directory whose manifest supplies
	// ignore and language overrides.
	WorkspacePath string

	// Files are enqueued for ingestion on startup.
	Files []string

	// LogLevel overrides the configured log level when non-empty.
	LogLevel string

	// Debug forces debug-level logging.
	Debug bool
}

// New creates an application from the given options. All components
// are constructed and wired; nothing runs until Run.
func New(opts Options) (*Application, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}

	app := &Application{
		opts:    opts,
		config:  cfg,
		metrics: NewMetrics(),
	}
	app.runCtx, app.runCancel = context.WithCancel(context.Background())

	if err := app.initLogger(); err != nil {
		return nil, &InitError{Component: "logger", Err: err}
	}
	if err := app.bootstrap(); err != nil {
		app.runCancel()
		return nil, err
	}
	return app, nil
}

// initLogger builds the application logger from config, with option
// overrides applied on top.
func (app *Application) initLogger() error {
	level := ParseLogLevel(app.config.Log.Level)
	if app.opts.LogLevel != "" {
		level = ParseLogLevel(app.opts.LogLevel)
	}
	if app.opts.Debug {
		level = LogLevelDebug
	}

	cfg := DefaultLoggerConfig()
	cfg.Level = level
	if app.config.Log.File != "" {
		f, err := os.OpenFile(app.config.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		cfg.Output = f
	}

	app.logger = NewLogger(cfg)
	return nil
}

// Dispatch executes one action through the dispatcher.
func (app *Application) Dispatch(ctx context.Context, name string, params map[string]any) handler.Result {
	app.metrics.RecordDispatch()
	return app.dispatcher.Dispatch(ctx, handler.NewAction(name, params))
}

// Config returns the loaded configuration.
func (app *Application) Config() *config.Config {
	return app.config
}

// Bus returns the event bus.
func (app *Application) Bus() *event.Bus {
	return app.bus
}

// Session returns the document session.
func (app *Application) Session() *document.Session {
	return app.session
}

// Queue returns the ingestion queue.
func (app *Application) Queue() *ingest.Queue {
	return app.queue
}

// Dispatcher returns the action dispatcher.
func (app *Application) Dispatcher() *dispatcher.Dispatcher {
	return app.dispatcher
}

// Settings returns the settings store.
func (app *Application) Settings() *settings.Store {
	return app.settings
}

// Providers returns the model provider registry.
func (app *Application) Providers() *model.Registry {
	return app.providers
}
