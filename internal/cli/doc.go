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
Package cli provides the root command for the n8n-doctor CLI.

This package creates the Cobra command tree and handles global concerns like
version information, persistent flags, and error handling. Individual
commands are implemented in the internal/commands subpackages.

# Command Tree

	n8n-doctor
	├── serve     Run the MCP server (stdio, sse, http)
	├── tools     List the exposed tools
	├── call      Invoke one tool directly
	├── health    Check n8n API connectivity
	├── key       Store or remove the API key in the keychain
	├── version   Show version
	└── help      Show help, optionally as JSON

# Global Flags

	-v, --verbose   Debug logging
	-q, --quiet     Only log errors
	    --json      Machine-readable output
	    --config    Config file path
*/
package cli
