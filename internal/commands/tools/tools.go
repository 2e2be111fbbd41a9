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

// Package tools implements the commands that list and invoke MCP tools
// without an MCP client.
package tools

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/tombee/n8n-doctor/internal/commands/shared"
	doctortools "github.com/tombee/n8n-doctor/internal/tools"
)

// ToolInfo describes one tool in listings.
type ToolInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Arguments   []string `json:"arguments"`
	ReadOnly    bool     `json:"readOnly"`
	Destructive bool     `json:"destructive"`
}

// NewToolsCommand creates the tools command
func NewToolsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools exposed by the MCP server",
		Long: `List the tools the MCP server registers, honoring the configured tool
subset (tools in the config file or N8N_DOCTOR_TOOLS).`,
		Args: cobra.NoArgs,
		RunE: runTools,
	}
}

func runTools(cmd *cobra.Command, _ []string) error {
	cfg, err := shared.LoadConfig(cmd.Context(), nil)
	if err != nil {
		return err
	}
	registry, err := doctortools.NewRegistry(cfg.Tools)
	if err != nil {
		return shared.NewConfigError("invalid tool selection", err)
	}

	infos := make([]ToolInfo, 0, len(registry.Tools()))
	for _, tool := range registry.Tools() {
		infos = append(infos, describe(tool))
	}

	if shared.GetJSON() {
		return shared.EmitJSON(cmd.OutOrStdout(), infos)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, shared.Header.Render(fmt.Sprintf("Tools (%d)", len(infos))))
	for _, info := range infos {
		fmt.Fprintf(out, "\n  %s\n", shared.ToolName.Render(info.Name))
		fmt.Fprintf(out, "    %s\n", info.Description)
		if len(info.Arguments) > 0 {
			fmt.Fprintf(out, "    %s\n", shared.Muted.Render(fmt.Sprintf("arguments: %v", info.Arguments)))
		}
		switch {
		case info.Destructive:
			fmt.Fprintf(out, "    %s\n", shared.StatusWarn.Render("destructive"))
		case info.ReadOnly:
			fmt.Fprintf(out, "    %s\n", shared.Muted.Render("read-only"))
		}
	}
	return nil
}

func describe(tool mcp.Tool) ToolInfo {
	info := ToolInfo{
		Name:        tool.Name,
		Description: tool.Description,
		Arguments:   tool.InputSchema.Required,
	}
	if info.Arguments == nil {
		info.Arguments = []string{}
	}
	if hint := tool.Annotations.ReadOnlyHint; hint != nil {
		info.ReadOnly = *hint
	}
	if hint := tool.Annotations.DestructiveHint; hint != nil {
		info.Destructive = *hint
	}
	return info
}

// NewCallCommand creates the call command
func NewCallCommand() *cobra.Command {
	var argsJSON string

	cmd := &cobra.Command{
		Use:   "call <tool>",
		Short: "Invoke one tool and print its result",
		Long: `Invoke a tool directly against the configured n8n instance and print the
text the MCP server would return.

Examples:
  n8n-doctor call list_workflows
  n8n-doctor call get_workflow --args '{"workflowId":"42","jq":".nodes | length"}'
  n8n-doctor call update_workflow --args '{"workflowId":"42","updates":"{\"name\":\"Renamed\"}"}'

A tool error result is written to stderr and exits with status 1.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd, args[0], argsJSON)
		},
	}

	cmd.Flags().StringVarP(&argsJSON, "args", "a", "", "Tool arguments as a JSON object")

	return cmd
}

func runCall(cmd *cobra.Command, name, argsJSON string) error {
	var args map[string]any
	if argsJSON != "" {
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return shared.NewFailure("--args must be a JSON object", err)
		}
	}

	cfg, err := shared.LoadConfig(cmd.Context(), nil)
	if err != nil {
		return err
	}
	rt, err := shared.NewRuntime(cmd.Context(), cfg, shared.RuntimeOptions{LogOutput: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer rt.Close(cmd.Context())

	result := rt.Dispatcher.Invoke(cmd.Context(), name, args)

	if shared.GetJSON() {
		if err := shared.EmitJSON(cmd.OutOrStdout(), result); err != nil {
			return err
		}
	} else {
		out := cmd.OutOrStdout()
		if result.IsError {
			out = cmd.ErrOrStderr()
		}
		fmt.Fprintln(out, resultText(result))
	}

	if result.IsError {
		return &shared.ExitError{Code: shared.ExitFailure}
	}
	return nil
}

func resultText(result *mcp.CallToolResult) string {
	var text string
	for _, content := range result.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			text += tc.Text
		}
	}
	return text
}
