package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/dshills/inkwell/internal/dispatcher"
	"github.com/dshills/inkwell/internal/dispatcher/handler"
	"github.com/dshills/inkwell/internal/event"
)

// Logger is the subset of the application logger the server uses.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// nopLogger discards everything.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}

// Server serves dispatcher actions over a JSON-RPC connection and
// forwards bus events as notifications.
type Server struct {
	dispatcher *dispatcher.Dispatcher
	bus        *event.Bus
	logger     Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(logger Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a server routing requests through d and forwarding
// events from bus.
func New(d *dispatcher.Dispatcher, bus *event.Bus, opts ...Option) *Server {
	s := &Server{
		dispatcher: d,
		bus:        bus,
		logger:     nopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServeStdio serves one connection over the process's stdin/stdout.
// It returns when the client disconnects or ctx is canceled.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Serve(ctx, stdioStream{})
}

// Serve serves one connection over stream. Requests are handled
// concurrently, each on its own goroutine; notifications for bus
// events are sent for the lifetime of the connection.
func (s *Server) Serve(ctx context.Context, stream io.ReadWriteCloser) error {
	sub, err := s.bus.Subscribe()
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer func() { _ = s.bus.Unsubscribe(sub) }()

	conn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(stream, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.AsyncHandler(jsonrpc2.HandlerWithError(s.handle)),
	)
	defer conn.Close()

	go s.forwardEvents(ctx, conn, sub)

	select {
	case <-ctx.Done():
		return nil
	case <-conn.DisconnectNotify():
		return nil
	}
}

// handle executes one request. Errors flatten to their message string,
// matching the command contract.
func (s *Server) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
	params := map[string]any{}
	if req.Params != nil {
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, &jsonrpc2.Error{
				Code:    jsonrpc2.CodeInvalidParams,
				Message: fmt.Sprintf("decode params: %v", err),
			}
		}
	}

	result := s.dispatcher.Dispatch(ctx, handler.NewAction(req.Method, params))
	if result.IsError() {
		s.logger.Debug("action %s failed: %v", req.Method, result.Error)
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeInternalError,
			Message: result.Error.Error(),
		}
	}
	return result.Payload(), nil
}

// forwardEvents turns bus envelopes into notifications. Send failures
// are logged and dropped; events never block or fail their producers.
func (s *Server) forwardEvents(ctx context.Context, conn *jsonrpc2.Conn, sub *event.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-sub.C():
			if !ok {
				return
			}
			if err := conn.Notify(ctx, env.Topic.String(), env.Payload); err != nil {
				s.logger.Warn("notify %s: %v", env.Topic, err)
			}
		}
	}
}

// stdioStream bundles stdin/stdout into one stream. Close closes
// stdout only, signaling EOF to the client without touching stdin.
type stdioStream struct{}

func (stdioStream) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioStream) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdioStream) Close() error                { return os.Stdout.Close() }
