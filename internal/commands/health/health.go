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

// Package health implements the command that checks n8n API connectivity.
package health

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tombee/n8n-doctor/internal/commands/shared"
	"github.com/tombee/n8n-doctor/internal/tools"
)

// NewCommand creates the health command
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check connectivity to the n8n API",
		Long: `Run the same check as the health_check tool and report whether the
configured n8n API is reachable with the configured key.

Exits with status 3 when the API is unreachable.`,
		Args: cobra.NoArgs,
		RunE: runHealth,
	}
}

func runHealth(cmd *cobra.Command, _ []string) error {
	cfg, err := shared.LoadConfig(cmd.Context(), nil)
	if err != nil {
		return err
	}
	rt, err := shared.NewRuntime(cmd.Context(), cfg, shared.RuntimeOptions{LogOutput: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer rt.Close(cmd.Context())

	report := rt.Dispatcher.Health(cmd.Context())

	if shared.GetJSON() {
		if err := shared.EmitJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	} else {
		printReport(cmd, rt.Client.BaseURL(), report)
	}

	if !report.Healthy() {
		return &shared.ExitError{Code: shared.ExitUpstreamError}
	}
	return nil
}

func printReport(cmd *cobra.Command, baseURL string, report tools.HealthReport) {
	out := cmd.OutOrStdout()
	if report.Healthy() {
		fmt.Fprintln(out, shared.RenderOK("n8n API reachable"))
	} else {
		fmt.Fprintln(out, shared.RenderError("n8n API unreachable"))
	}
	fmt.Fprintln(out, shared.RenderKeyValue("url", baseURL))
	fmt.Fprintln(out, shared.RenderKeyValue("status", report.Status))
	fmt.Fprintln(out, shared.RenderKeyValue("api", report.N8NAPI))
	fmt.Fprintln(out, shared.RenderKeyValue("checked", report.Timestamp))
	if report.Error != "" {
		fmt.Fprintln(out, shared.RenderKeyValue("error", shared.StatusError.Render(report.Error)))
	}
}
