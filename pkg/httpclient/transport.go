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

package httpclient

import (
	"log/slog"
	"maps"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/n8n-doctor/internal/tracing"
)

// loggingTransport is an http.RoundTripper that decorates and observes
// every outbound request.
type loggingTransport struct {
	base      http.RoundTripper
	userAgent string
	headers   map[string]string
	logger    *slog.Logger
	recorder  RequestRecorder
}

func newLoggingTransport(base http.RoundTripper, cfg Config, logger *slog.Logger) *loggingTransport {
	if base == nil {
		base = http.DefaultTransport
	}

	return &loggingTransport{
		base:      base,
		userAgent: cfg.UserAgent,
		headers:   maps.Clone(cfg.Headers),
		logger:    logger,
		recorder:  cfg.Recorder,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	ctx := req.Context()

	// RoundTrippers must not modify the caller's request
	req = req.Clone(ctx)

	for name, value := range t.headers {
		req.Header.Set(name, value)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	tracing.InjectIntoRequest(ctx, req)

	logURL := sanitizeURL(req.URL)

	ctx, span := otel.Tracer(tracing.InstrumentationName).Start(ctx, "HTTP "+req.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", logURL),
		),
	)
	defer span.End()
	req = req.WithContext(ctx)
	tracing.InjectHTTPHeaders(ctx, req)

	resp, err := t.base.RoundTrip(req)
	duration := time.Since(start)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	if t.recorder != nil {
		t.recorder.RecordUpstreamRequest(ctx, req.Method, status, duration)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		t.logger.WarnContext(ctx, "http request failed",
			"method", req.Method,
			"url", logURL,
			"duration_ms", duration.Milliseconds(),
			"error", err.Error(),
		)
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	level := slog.LevelDebug
	if resp.StatusCode >= 400 {
		level = slog.LevelWarn
		span.SetStatus(codes.Error, resp.Status)
	}
	t.logger.Log(ctx, level, "http request",
		"method", req.Method,
		"url", logURL,
		"status", resp.StatusCode,
		"duration_ms", duration.Milliseconds(),
	)

	return resp, nil
}
