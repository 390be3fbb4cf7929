package app

import (
	"context"
	"io"
	"time"

	"golang.org/x/sync/errgroup"
)

// shutdownGrace bounds how long Run waits for the queue consumer to
// exit after cancellation.
const shutdownGrace = 2 * time.Second

// Run starts the background components and serves RPC on stdio until
// the client disconnects or ctx is canceled. It returns the first
// component error, and may be called at most once per application.
func (app *Application) Run(ctx context.Context) error {
	return app.run(ctx, nil)
}

// run serves on stream, or stdio when stream is nil.
func (app *Application) run(ctx context.Context, stream io.ReadWriteCloser) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)
	defer app.Shutdown()

	// Propagate the caller's cancellation into the run context the
	// action handlers hold.
	go func() {
		select {
		case <-ctx.Done():
			app.runCancel()
		case <-app.runCtx.Done():
		}
	}()

	if app.config.Queue.Autostart {
		app.queue.Start(app.runCtx)
	}
	for _, path := range app.opts.Files {
		app.queue.Enqueue(path)
	}

	g, gctx := errgroup.WithContext(app.runCtx)

	if app.watcher != nil {
		g.Go(func() error {
			return app.watcher.Run(gctx)
		})
	}

	g.Go(func() error {
		// A client disconnect ends the run, not just the connection.
		defer app.runCancel()
		if stream == nil {
			return app.server.ServeStdio(gctx)
		}
		return app.server.Serve(gctx, stream)
	})

	app.logger.Info("inkwell serving")
	err := g.Wait()

	app.waitForQueue()
	return err
}

// waitForQueue gives the queue consumer a bounded window to finish its
// current batch after the run context is canceled.
func (app *Application) waitForQueue() {
	// State still reads not-started until the first drain; Started
	// flips inside Start itself.
	if !app.queue.Started() {
		return
	}
	select {
	case <-app.queue.Done():
	case <-time.After(shutdownGrace):
		app.logger.Warn("queue consumer did not stop within %v", shutdownGrace)
	}
}

// Shutdown stops background work and releases component resources.
// It is idempotent and safe to call whether or not Run was called.
func (app *Application) Shutdown() {
	app.shutdownOnce.Do(func() {
		app.runCancel()
		app.bus.Close()
		app.tokenizer.Close()
		app.logger.Info("inkwell stopped")
	})
}

// Running reports whether Run is currently active.
func (app *Application) Running() bool {
	return app.running.Load()
}
