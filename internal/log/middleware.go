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

package log

import (
	"context"
	"log/slog"
	"time"
)

// ToolCall describes one tool invocation for logging purposes.
type ToolCall struct {
	// Tool is the invoked tool name as supplied by the caller.
	Tool string

	// CorrelationID ties this invocation to the outbound n8n request.
	CorrelationID string

	// WorkflowID is set for tools that address a single workflow.
	WorkflowID string
}

// ToolOutcome describes how a tool invocation finished.
type ToolOutcome struct {
	// IsError mirrors the isError flag of the tool result.
	IsError bool

	// ErrorType classifies the failure (argument, transport, status, ...).
	ErrorType string

	// Error is the message returned to the caller.
	Error string

	// Retryable is set when repeating the call could succeed.
	Retryable bool

	// Duration is the wall time of the invocation.
	Duration time.Duration
}

func (c *ToolCall) attrs() []any {
	attrs := []any{ToolKey, c.Tool}
	if c.CorrelationID != "" {
		attrs = append(attrs, CorrelationIDKey, c.CorrelationID)
	}
	if c.WorkflowID != "" {
		attrs = append(attrs, WorkflowIDKey, c.WorkflowID)
	}
	return attrs
}

// LogToolCall logs an incoming tool invocation at debug level.
func LogToolCall(ctx context.Context, logger *slog.Logger, call *ToolCall) {
	attrs := append([]any{"event", "tool_call"}, call.attrs()...)
	logger.DebugContext(ctx, "tool call received", attrs...)
}

// LogToolResult logs the outcome of a tool invocation. Failures are logged
// at warn level since they are returned to the caller, not raised.
func LogToolResult(ctx context.Context, logger *slog.Logger, call *ToolCall, outcome *ToolOutcome) {
	attrs := append([]any{"event", "tool_result"}, call.attrs()...)
	attrs = append(attrs,
		"is_error", outcome.IsError,
		DurationKey, outcome.Duration.Milliseconds(),
	)
	if outcome.ErrorType != "" {
		attrs = append(attrs, "error_type", outcome.ErrorType)
	}
	if outcome.Error != "" {
		attrs = append(attrs, "error", outcome.Error, "retryable", outcome.Retryable)
	}

	level := slog.LevelInfo
	message := "tool call completed"
	if outcome.IsError {
		level = slog.LevelWarn
		message = "tool call failed"
	}

	logger.Log(ctx, level, message, attrs...)
}
