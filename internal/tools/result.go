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
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	doctorerrors "github.com/tombee/n8n-doctor/pkg/errors"
)

// errorResult renders err as a tool error. Unknown tools keep their bare
// message, every other failure is prefixed with "Error: ".
func errorResult(err error) *mcp.CallToolResult {
	if _, ok := err.(*doctorerrors.UnknownToolError); ok {
		return mcp.NewToolResultError(doctorerrors.UserMessage(err))
	}
	return mcp.NewToolResultError("Error: " + doctorerrors.UserMessage(err))
}

// marshal renders v as JSON indented by two spaces.
func marshal(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(data), nil
}

// indent re-indents an upstream JSON document by two spaces.
func indent(raw json.RawMessage) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", &doctorerrors.DecodeError{Cause: err}
	}
	return buf.String(), nil
}
