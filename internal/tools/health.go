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
	"time"

	doctorerrors "github.com/tombee/n8n-doctor/pkg/errors"
)

// Health statuses.
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"

	APIConnected    = "connected"
	APIDisconnected = "disconnected"
)

// HealthReport is the result of health_check.
type HealthReport struct {
	Status    string `json:"status"`
	MCPServer string `json:"mcpServer"`
	N8NAPI    string `json:"n8nApi"`
	Timestamp string `json:"timestamp"`
	Error     string `json:"error,omitempty"`
}

// Healthy reports whether the upstream probe succeeded.
func (r HealthReport) Healthy() bool {
	return r.Status == StatusHealthy
}

// Health probes the n8n API once. An unreachable or rejecting API yields a
// degraded report, never an error.
func (d *Dispatcher) Health(ctx context.Context) HealthReport {
	report := HealthReport{
		Status:    StatusHealthy,
		MCPServer: "running",
		N8NAPI:    APIConnected,
	}

	if err := d.client.Ping(ctx); err != nil {
		d.logger.WarnContext(ctx, "n8n API probe failed", "error", err.Error())
		report.Status = StatusDegraded
		report.N8NAPI = APIDisconnected
		report.Error = doctorerrors.UserMessage(err)
	}

	report.Timestamp = d.now().UTC().Format(time.RFC3339)
	return report
}
