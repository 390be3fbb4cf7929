package app

import (
	"github.com/dshills/inkwell/internal/dispatcher"
	bufferhandler "github.com/dshills/inkwell/internal/dispatcher/handlers/buffer"
	modelhandler "github.com/dshills/inkwell/internal/dispatcher/handlers/model"
	queuehandler "github.com/dshills/inkwell/internal/dispatcher/handlers/queue"
	settingshandler "github.com/dshills/inkwell/internal/dispatcher/handlers/settings"
	workspacehandler "github.com/dshills/inkwell/internal/dispatcher/handlers/workspace"
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

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() error {
	cfg := app.config

	// 1. Event bus and tokenizer, the shared infrastructure.
	app.bus = event.NewBus()
	app.tokenizer = syntax.NewTokenizer()

	// 2. Workspace manifest, feeding overrides into later components.
	manifest := &workspace.Manifest{}
	if app.opts.WorkspacePath != "" {
		m, err := workspace.LoadManifest(app.opts.WorkspacePath)
		if err != nil {
			return &InitError{Component: "workspace manifest", Err: err}
		}
		manifest = m
	}

	// 3. Document session.
	app.session = document.NewSession(
		document.WithPublisher(app.bus),
		document.WithTokenizer(app.tokenizer),
		document.WithLanguageOverrides(manifest.Languages),
	)

	// 4. Ingestion queue, dispatching into the session.
	app.queue = ingest.NewQueue(
		ingest.OpenerFunc(func(path string) error {
			_, err := app.session.Open(path)
			return err
		}),
		ingest.WithErrorHandler(func(path string, err error) {
			app.logger.WithComponent("ingest").Warn("open %s: %v", path, err)
		}),
	)

	// 5. Document watcher, feeding external edits back into the queue.
	if cfg.Watcher.Enabled {
		w, err := watcher.New(app.bus, app.queue,
			watcher.WithDebounceDelay(cfg.Watcher.DebounceDelay()))
		if err != nil {
			return &InitError{Component: "watcher", Err: err}
		}
		app.watcher = w
	}

	// 6. Workspace listings. Config and manifest globs stack.
	ignore := append(append([]string{}, cfg.Workspace.Ignore...), manifest.Ignore...)
	app.files = workspace.NewService(workspace.WithIgnorePatterns(ignore...))

	// 7. Settings store.
	settingsPath := cfg.Settings.Path
	if settingsPath == "" {
		p, err := settings.DefaultFile()
		if err != nil {
			return &InitError{Component: "settings", Err: err}
		}
		settingsPath = p
	}
	app.settings = settings.NewStore(settingsPath)

	// 8. Model providers. Cloud backends register unconditionally and
	// report unavailable without their environment keys.
	app.ollama = model.NewOllama(model.WithBinary(cfg.Model.Binary))
	app.providers = model.NewRegistry(model.WithDefaultProvider(cfg.Model.Provider))
	app.providers.Register(app.ollama)
	app.providers.Register(model.NewAnthropic())
	app.providers.Register(model.NewOpenAI())
	app.providers.Register(model.NewGemini())
	app.pulls = model.NewPullSupervisor(app.ollama)

	// 9. Dispatcher with the five action namespaces.
	app.dispatcher = dispatcher.New(dispatcher.Config{
		EnableMetrics:    true,
		RecoverFromPanic: true,
	})
	app.dispatcher.RegisterNamespace(bufferhandler.NewHandler(app.session))
	app.dispatcher.RegisterNamespace(queuehandler.NewHandler(app.queue, app.runCtx))
	app.dispatcher.RegisterNamespace(workspacehandler.NewHandler(app.files))
	app.dispatcher.RegisterNamespace(settingshandler.NewHandler(app.settings))
	app.dispatcher.RegisterNamespace(modelhandler.NewHandler(
		app.ollama, app.providers, app.pulls,
		modelhandler.WithDefaultModel(cfg.Model.Default),
	))

	// 10. RPC server.
	app.server = server.New(app.dispatcher, app.bus,
		server.WithLogger(app.logger.WithComponent("server")))

	return nil
}
