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

package cli

import (
	"github.com/spf13/cobra"

	"github.com/tombee/n8n-doctor/internal/commands/health"
	"github.com/tombee/n8n-doctor/internal/commands/key"
	"github.com/tombee/n8n-doctor/internal/commands/serve"
	"github.com/tombee/n8n-doctor/internal/commands/shared"
	"github.com/tombee/n8n-doctor/internal/commands/tools"
	versioncmd "github.com/tombee/n8n-doctor/internal/commands/version"
)

// Command groups shown in help output.
const (
	groupServer = "server"
	groupTools  = "tools"
	groupSetup  = "setup"
)

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// NewRootCommand creates the root Cobra command with every subcommand
// attached.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "n8n-doctor",
		Short: "n8n-doctor - MCP server for the n8n REST API",
		Long: `n8n-doctor exposes an n8n instance's REST API to AI assistants as
Model Context Protocol tools: list, inspect, create, update, delete,
activate and deactivate workflows, scan for workflows without triggers,
and check API health.

Configure the instance with N8N_API_URL and N8N_API_KEY, or a config file
at ~/.config/n8n-doctor/config.yaml.

Run 'n8n-doctor serve' to start the server on stdio.`,
		SilenceUsage:  true, // Don't show usage on errors
		SilenceErrors: true, // We handle errors ourselves for proper exit codes
	}

	verbose, quiet, json, config := shared.RegisterFlagPointers()

	cmd.PersistentFlags().BoolVarP(verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(quiet, "quiet", "q", false, "Only log errors")
	cmd.PersistentFlags().BoolVar(json, "json", false, "Output in JSON format")
	cmd.PersistentFlags().StringVar(config, "config", "", "Path to config file (default: ~/.config/n8n-doctor/config.yaml)")

	cmd.AddGroup(
		&cobra.Group{ID: groupServer, Title: "Server:"},
		&cobra.Group{ID: groupTools, Title: "Tools:"},
		&cobra.Group{ID: groupSetup, Title: "Setup:"},
	)

	add := func(group string, sub *cobra.Command) {
		sub.GroupID = group
		if sub.Annotations == nil {
			sub.Annotations = map[string]string{}
		}
		sub.Annotations["group"] = group
		cmd.AddCommand(sub)
	}

	add(groupServer, serve.NewCommand())
	add(groupServer, health.NewCommand())
	add(groupTools, tools.NewToolsCommand())
	add(groupTools, tools.NewCallCommand())
	add(groupSetup, key.NewCommand())
	add(groupSetup, versioncmd.NewVersionCommand())

	cmd.SetHelpCommand(NewHelpCommand(cmd))

	return cmd
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return shared.GetVersion()
}

// HandleExitError handles exit errors with proper exit codes
func HandleExitError(err error) {
	shared.HandleExitError(err)
}
