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

// Package server exposes the n8n tools over the Model Context Protocol.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	doctorlog "github.com/tombee/n8n-doctor/internal/log"
	"github.com/tombee/n8n-doctor/internal/tools"
)

// Server wraps the MCP server and routes tool calls to the dispatcher.
type Server struct {
	mcpServer      *server.MCPServer
	dispatcher     *tools.Dispatcher
	name           string
	version        string
	logger         *slog.Logger
	metricsHandler http.Handler
	started        time.Time
}

// ServerConfig configures the MCP server
type ServerConfig struct {
	// Name is the server name (default: "n8n-doctor")
	Name string

	// Version is the n8n-doctor version
	Version string

	// Dispatcher runs tool calls. Required.
	Dispatcher *tools.Dispatcher

	// Logger defaults to a discarding logger.
	Logger *slog.Logger

	// MetricsHandler serves /metrics on HTTP transports. Optional.
	MetricsHandler http.Handler
}

// NewServer creates a new MCP server instance
func NewServer(config ServerConfig) (*Server, error) {
	if config.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if config.Name == "" {
		config.Name = "n8n-doctor"
	}
	if config.Version == "" {
		config.Version = "dev"
	}
	if config.Logger == nil {
		config.Logger = doctorlog.Discard()
	}

	mcpServer := server.NewMCPServer(config.Name, config.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s := &Server{
		mcpServer:      mcpServer,
		dispatcher:     config.Dispatcher,
		name:           config.Name,
		version:        config.Version,
		logger:         doctorlog.WithComponent(config.Logger, "mcp"),
		metricsHandler: config.MetricsHandler,
		started:        time.Now(),
	}
	s.registerTools()

	return s, nil
}

// registerTools registers every enabled tool with the MCP server. All of
// them share one handler that forwards to the dispatcher.
func (s *Server) registerTools() {
	for _, tool := range s.dispatcher.Registry().Tools() {
		s.mcpServer.AddTool(tool, s.handleToolCall)
	}
}

func (s *Server) handleToolCall(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.dispatcher.Invoke(ctx, request.Params.Name, request.GetArguments()), nil
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Uptime returns how long the server has existed.
func (s *Server) Uptime() time.Duration {
	return time.Since(s.started)
}
