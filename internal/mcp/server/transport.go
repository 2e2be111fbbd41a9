// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/tombee/n8n-doctor/internal/config"
	doctorlog "github.com/tombee/n8n-doctor/internal/log"
	"github.com/tombee/n8n-doctor/internal/tracing"
)

// MCP endpoint paths on HTTP transports.
const (
	SSEPath        = "/sse"
	MessagePath    = "/message"
	StreamablePath = "/mcp"
)

// RunOptions configures a transport.
type RunOptions struct {
	// Transport is one of config.TransportStdio, TransportSSE, TransportHTTP.
	Transport string

	// Addr is the listen address for HTTP transports.
	Addr string

	// BaseURL is advertised to SSE clients. Optional.
	BaseURL string

	// ShutdownTimeout bounds graceful shutdown of HTTP transports.
	ShutdownTimeout time.Duration

	// Stdin and Stdout default to the process streams.
	Stdin  io.Reader
	Stdout io.Writer

	// Listener overrides Addr for HTTP transports. Used by tests.
	Listener net.Listener
}

// Run serves the selected transport until ctx is canceled or the transport
// fails.
func (s *Server) Run(ctx context.Context, opts RunOptions) error {
	s.logger.Info("starting n8n-doctor MCP server",
		slog.String("version", s.version),
		slog.String(doctorlog.TransportKey, opts.Transport),
		slog.Int("tools", len(s.dispatcher.Registry().Tools())),
	)

	switch opts.Transport {
	case config.TransportStdio, "":
		return s.runStdio(ctx, opts)
	case config.TransportSSE, config.TransportHTTP:
		return s.runHTTP(ctx, opts)
	default:
		return fmt.Errorf("unknown transport %q", opts.Transport)
	}
}

// runStdio serves line-framed JSON-RPC on stdin/stdout. stdout carries the
// protocol only, so all logging goes to the configured logger.
func (s *Server) runStdio(ctx context.Context, opts RunOptions) error {
	stdin, stdout := opts.Stdin, opts.Stdout
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	err := stdio.Listen(ctx, stdin, stdout)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("MCP server error: %w", err)
	}
	s.logger.Info("stdio transport closed")
	return nil
}

// runHTTP serves an HTTP transport plus the auxiliary endpoints.
func (s *Server) runHTTP(ctx context.Context, opts RunOptions) error {
	handler, shutdownMCP := s.HTTPHandler(opts.Transport, opts.BaseURL)

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ln := opts.Listener
	if ln == nil {
		var err error
		ln, err = net.Listen("tcp", opts.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", opts.Addr, err)
		}
	}
	s.logger.Info("listening",
		slog.String("addr", ln.Addr().String()),
		slog.String(doctorlog.TransportKey, opts.Transport),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down n8n-doctor MCP server")
	if err := shutdownMCP(shutdownCtx); err != nil {
		s.logger.Error("MCP transport shutdown error", doctorlog.Error(err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}
	return nil
}

// HTTPHandler builds the handler for an HTTP transport and returns it with
// a function that closes open MCP sessions.
func (s *Server) HTTPHandler(transport, baseURL string) (http.Handler, func(context.Context) error) {
	mux := s.auxMux(transport)
	shutdown := func(context.Context) error { return nil }

	switch transport {
	case config.TransportSSE:
		opts := []server.SSEOption{
			server.WithSSEEndpoint(SSEPath),
			server.WithMessageEndpoint(MessagePath),
			server.WithSSEContextFunc(carryCorrelationID),
		}
		if baseURL != "" {
			opts = append(opts, server.WithBaseURL(baseURL))
		}
		sse := server.NewSSEServer(s.mcpServer, opts...)
		mux.Handle(SSEPath, sse.SSEHandler())
		mux.Handle(MessagePath, sse.MessageHandler())
		shutdown = sse.Shutdown

	case config.TransportHTTP:
		streamable := server.NewStreamableHTTPServer(s.mcpServer,
			server.WithEndpointPath(StreamablePath),
			server.WithStateLess(true),
			server.WithHTTPContextFunc(carryCorrelationID),
		)
		mux.Handle(StreamablePath, streamable)
		shutdown = streamable.Shutdown
	}

	return tracing.CorrelationMiddleware(tracing.TracingMiddleware(mux)), shutdown
}

// carryCorrelationID copies the request's correlation ID into the context
// tool calls run with.
func carryCorrelationID(ctx context.Context, r *http.Request) context.Context {
	if id := tracing.FromContextOrEmpty(r.Context()); id.IsValid() {
		return tracing.ToContext(ctx, id)
	}
	return ctx
}
