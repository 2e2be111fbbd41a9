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

package tracing

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics records tool-call and upstream-request measurements.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	toolCalls        metric.Int64Counter
	toolDuration     metric.Float64Histogram
	upstreamRequests metric.Int64Counter
	upstreamDuration metric.Float64Histogram
}

// NewMetrics creates the instruments on the given meter provider.
func NewMetrics(meterProvider metric.MeterProvider) (*Metrics, error) {
	meter := meterProvider.Meter(InstrumentationName)
	m := &Metrics{}

	var err error
	m.toolCalls, err = meter.Int64Counter(
		"n8n_doctor_tool_calls_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	m.toolDuration, err = meter.Float64Histogram(
		"n8n_doctor_tool_call_duration_seconds",
		metric.WithDescription("Tool invocation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.upstreamRequests, err = meter.Int64Counter(
		"n8n_doctor_upstream_requests_total",
		metric.WithDescription("Total number of requests sent to the n8n API"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	m.upstreamDuration, err = meter.Float64Histogram(
		"n8n_doctor_upstream_request_duration_seconds",
		metric.WithDescription("n8n API request latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// NewNoopMetrics returns instruments that discard every measurement.
func NewNoopMetrics() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider())
	return m
}

// RecordToolCall records one tool invocation. errorType is empty on success.
func (m *Metrics) RecordToolCall(ctx context.Context, tool, errorType string, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if errorType != "" {
		outcome = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("outcome", outcome),
		attribute.String("error_type", errorType),
	)
	m.toolCalls.Add(ctx, 1, attrs)
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordUpstreamRequest records one request to the n8n API. status is 0 when
// the request never produced a response.
func (m *Metrics) RecordUpstreamRequest(ctx context.Context, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("status", code),
	)
	m.upstreamRequests.Add(ctx, 1, attrs)
	m.upstreamDuration.Record(ctx, duration.Seconds(), attrs)
}
