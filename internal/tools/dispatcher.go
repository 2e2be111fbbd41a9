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

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/n8n-doctor/internal/jq"
	doctorlog "github.com/tombee/n8n-doctor/internal/log"
	"github.com/tombee/n8n-doctor/internal/n8n"
	"github.com/tombee/n8n-doctor/internal/tracing"
	doctorerrors "github.com/tombee/n8n-doctor/pkg/errors"
)

// Upstream is the subset of the n8n client the tools use.
type Upstream interface {
	ListWorkflows(ctx context.Context) ([]n8n.Workflow, error)
	GetWorkflow(ctx context.Context, id string) (json.RawMessage, error)
	CreateWorkflow(ctx context.Context, wf *n8n.Workflow) (json.RawMessage, error)
	UpdateWorkflow(ctx context.Context, id string, patch map[string]any) (json.RawMessage, error)
	DeleteWorkflow(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string, active bool) (json.RawMessage, error)
	Ping(ctx context.Context) error
}

// Limiter gates tool calls. Allow reports whether a call may proceed.
type Limiter interface {
	Allow() bool
}

// Options configures a Dispatcher.
type Options struct {
	Registry *Registry
	Client   Upstream

	// Limiter is optional. Nil means unlimited.
	Limiter Limiter

	// Logger defaults to a discarding logger.
	Logger *slog.Logger

	// Metrics is optional.
	Metrics *tracing.Metrics

	// Now defaults to time.Now.
	Now func() time.Time
}

// Dispatcher routes tool invocations to their handlers. It is safe for
// concurrent use.
type Dispatcher struct {
	registry *Registry
	client   Upstream
	limiter  Limiter
	logger   *slog.Logger
	metrics  *tracing.Metrics
	tracer   trace.Tracer
	jq       *jq.Executor
	now      func() time.Time
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(opts Options) (*Dispatcher, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if opts.Client == nil {
		return nil, fmt.Errorf("client is required")
	}
	if opts.Logger == nil {
		opts.Logger = doctorlog.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Dispatcher{
		registry: opts.Registry,
		client:   opts.Client,
		limiter:  opts.Limiter,
		logger:   doctorlog.WithComponent(opts.Logger, "dispatcher"),
		metrics:  opts.Metrics,
		tracer:   otel.Tracer(tracing.InstrumentationName),
		jq:       jq.NewExecutor(0, 0),
		now:      opts.Now,
	}, nil
}

// Registry returns the registry the dispatcher serves.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Invoke runs the named tool. It always returns a result: failures of any
// kind, including panics, become error results.
func (d *Dispatcher) Invoke(ctx context.Context, name string, args map[string]any) (result *mcp.CallToolResult) {
	start := time.Now()
	ctx, correlationID := tracing.EnsureContext(ctx)

	call := &doctorlog.ToolCall{
		Tool:          name,
		CorrelationID: correlationID.String(),
	}
	if id, ok := args[ArgWorkflowID].(string); ok {
		call.WorkflowID = id
	}

	ctx, span := d.tracer.Start(ctx, "tool "+name,
		trace.WithAttributes(
			attribute.String("mcp.tool.name", name),
			attribute.String("correlation_id", correlationID.String()),
		),
	)
	defer span.End()

	doctorlog.LogToolCall(ctx, d.logger, call)

	var err error
	defer func() {
		if r := recover(); r != nil {
			d.logger.ErrorContext(ctx, "tool handler panicked",
				doctorlog.ToolKey, name,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("internal error while running %s", name)
			result = errorResult(err)
		}

		duration := time.Since(start)
		errorType := ""
		if err != nil {
			errorType = doctorerrors.Type(err)
			span.RecordError(err)
			span.SetAttributes(attribute.Bool("error.retryable", doctorerrors.Retryable(err)))
			span.SetStatus(codes.Error, errorType)
		}

		metricName := name
		if _, known := ParseKind(name); !known {
			metricName = "unknown"
		}
		d.metrics.RecordToolCall(ctx, metricName, errorType, duration)

		outcome := &doctorlog.ToolOutcome{
			IsError:   result.IsError,
			ErrorType: errorType,
			Duration:  duration,
		}
		if err != nil {
			outcome.Error = err.Error()
			outcome.Retryable = doctorerrors.Retryable(err)
		}
		doctorlog.LogToolResult(ctx, d.logger, call, outcome)
	}()

	kind, ok := d.registry.Lookup(name)
	if !ok {
		err = &doctorerrors.UnknownToolError{Name: name}
		return errorResult(err)
	}

	if d.limiter != nil && !d.limiter.Allow() {
		err = &doctorerrors.RateLimitError{}
		return errorResult(err)
	}

	var text string
	text, err = d.dispatch(ctx, kind, args)
	if err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(text)
}

// dispatch decodes the arguments of kind and runs its handler.
func (d *Dispatcher) dispatch(ctx context.Context, kind Kind, args map[string]any) (string, error) {
	required := d.registry.Required(kind)

	switch kind {
	case KindListWorkflows:
		return d.listWorkflows(ctx)

	case KindGetWorkflow:
		var a GetArgs
		if err := bind(args, required, &a); err != nil {
			return "", err
		}
		return d.getWorkflow(ctx, a)

	case KindCreateWorkflow:
		var a CreateArgs
		if err := bind(args, required, &a); err != nil {
			return "", err
		}
		return d.createWorkflow(ctx, a)

	case KindUpdateWorkflow:
		var a UpdateArgs
		if err := bind(args, required, &a); err != nil {
			return "", err
		}
		return d.updateWorkflow(ctx, &a)

	case KindDeleteWorkflow:
		var a WorkflowIDArgs
		if err := bind(args, required, &a); err != nil {
			return "", err
		}
		return d.deleteWorkflow(ctx, a)

	case KindActivateWorkflow, KindDeactivateWorkflow:
		var a WorkflowIDArgs
		if err := bind(args, required, &a); err != nil {
			return "", err
		}
		return d.setActive(ctx, a, kind == KindActivateWorkflow)

	case KindScanWorkflows:
		return d.scanWorkflows(ctx)

	case KindHealthCheck:
		return marshal(d.Health(ctx))
	}

	return "", fmt.Errorf("no handler for tool %s", kind)
}
