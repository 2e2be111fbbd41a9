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
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestMetrics_RecordToolCall(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewMetrics(mp)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordToolCall(ctx, "list_workflows", "", 10*time.Millisecond)
	m.RecordToolCall(ctx, "list_workflows", "transport", 20*time.Millisecond)
	m.RecordUpstreamRequest(ctx, http.MethodGet, 200, 5*time.Millisecond)

	data := collect(t, reader)

	calls, ok := data["n8n_doctor_tool_calls_total"].(metricdata.Sum[int64])
	require.True(t, ok, "tool call counter missing")
	var total int64
	for _, dp := range calls.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)
	assert.Len(t, calls.DataPoints, 2, "success and error are separate series")

	upstream, ok := data["n8n_doctor_upstream_requests_total"].(metricdata.Sum[int64])
	require.True(t, ok, "upstream counter missing")
	require.Len(t, upstream.DataPoints, 1)
	status, _ := upstream.DataPoints[0].Attributes.Value("status")
	assert.Equal(t, "200", status.AsString())
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordToolCall(context.Background(), "scan_workflows", "", time.Millisecond)
	m.RecordUpstreamRequest(context.Background(), http.MethodGet, 0, time.Millisecond)
}

func TestNewProvider_MetricsHandler(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{ServiceName: "n8n-doctor-test", ServiceVersion: "test"})
	require.NoError(t, err)
	defer func() { _ = p.Shutdown(context.Background()) }()

	p.Metrics().RecordToolCall(context.Background(), "health_check", "", time.Millisecond)

	rec := httptest.NewRecorder()
	p.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(body), "n8n_doctor_tool_calls_total")
	assert.NotNil(t, p.Tracer())
}

func TestNewProvider_UnknownExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{ServiceName: "x", Exporter: "zipkin"})
	assert.Error(t, err)
	assert.False(t, ValidExporter("zipkin"))
	assert.True(t, ValidExporter(ExporterOTLPGRPC))
}
