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

/*
Package tracing provides telemetry for n8n-doctor.

It covers three concerns:

  - Correlation IDs, attached to every tool call and sent upstream as
    X-Correlation-ID so a call can be followed through logs.
  - OpenTelemetry spans for tool calls and upstream requests, exported to
    stdout or an OTLP collector when configured.
  - OpenTelemetry metrics exposed in Prometheus format on /metrics.

# Quick Start

	provider, err := tracing.NewProvider(ctx, tracing.Config{
	    ServiceName:    "n8n-doctor",
	    ServiceVersion: version,
	    Exporter:       tracing.ExporterStdout,
	    SampleRate:     1.0,
	})
	if err != nil {
	    return err
	}
	defer provider.Shutdown(ctx)

	metrics := provider.Metrics()
	metrics.RecordToolCall(ctx, "list_workflows", "", time.Since(start))

# Correlation IDs

	ctx, id := tracing.EnsureContext(ctx)
	logger = log.WithCorrelationID(logger, id.String())
*/
package tracing
