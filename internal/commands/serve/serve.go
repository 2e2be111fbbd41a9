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

// Package serve implements the command that runs the MCP server.
package serve

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/n8n-doctor/internal/commands/shared"
	doctorlog "github.com/tombee/n8n-doctor/internal/log"
	"github.com/tombee/n8n-doctor/internal/mcp/server"
	"github.com/tombee/n8n-doctor/internal/tools"
)

// NewCommand creates the serve command
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the n8n-doctor MCP server",
		Long: `Start the n8n-doctor MCP (Model Context Protocol) server.

The server exposes the n8n REST API as tools that AI assistants can call to
list, inspect, create, update, delete, activate and deactivate workflows,
scan workflows for missing triggers, and check API connectivity.

Transports:
  stdio  JSON-RPC over stdin/stdout (default)
  sse    Server-Sent Events on /sse with POSTs to /message
  http   Streamable HTTP on /mcp

HTTP transports also serve /health and /metrics.

Configuration example for an MCP client:
  {
    "mcpServers": {
      "n8n": {
        "command": "n8n-doctor",
        "args": ["serve"],
        "env": {
          "N8N_API_URL": "https://n8n.example.com/api/v1",
          "N8N_API_KEY": "keychain:api-key"
        }
      }
    }
  }`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String(shared.FlagTransport, "", "Transport to serve (stdio, sse, http)")
	cmd.Flags().String(shared.FlagHost, "", "Listen host for HTTP transports")
	cmd.Flags().IntP(shared.FlagPort, "p", 0, "Listen port for HTTP transports")
	cmd.Flags().StringSlice(shared.FlagTools, nil, "Comma-separated subset of tools to expose")
	cmd.Flags().Int(shared.FlagRateLimit, 0, "Maximum tool calls per minute (0 disables limiting)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := shared.LoadConfig(cmd.Context(), cmd.Flags())
	if err != nil {
		return err
	}

	var limiter tools.Limiter
	if rl := server.NewRateLimiter(cfg.RateLimit); rl != nil {
		limiter = rl
	}

	rt, err := shared.NewRuntime(cmd.Context(), cfg, shared.RuntimeOptions{
		Limiter:   limiter,
		LogOutput: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rt.Close(shutdownCtx); err != nil {
			rt.Logger.Warn("telemetry shutdown failed", doctorlog.Error(err))
		}
	}()

	versionStr, _, _ := shared.GetVersion()
	srv, err := server.NewServer(server.ServerConfig{
		Name:           "n8n-doctor",
		Version:        versionStr,
		Dispatcher:     rt.Dispatcher,
		Logger:         rt.Logger,
		MetricsHandler: rt.Telemetry.MetricsHandler(),
	})
	if err != nil {
		return shared.NewFailure("failed to create MCP server", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			rt.Logger.Info("received shutdown signal", slog.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	err = srv.Run(ctx, server.RunOptions{
		Transport:       cfg.Server.Transport,
		Addr:            cfg.Addr(),
		BaseURL:         cfg.Server.BaseURL,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Stdin:           cmd.InOrStdin(),
		Stdout:          cmd.OutOrStdout(),
	})
	if err != nil {
		return shared.NewFailure(fmt.Sprintf("%s transport failed", cfg.Server.Transport), err)
	}
	return nil
}
