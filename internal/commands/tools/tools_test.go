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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/n8n-doctor/internal/commands/shared"
)

func setupEnv(t *testing.T, apiURL string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("N8N_API_KEY", "test-key")
	t.Setenv("N8N_API_URL", apiURL)
	for _, key := range []string{"N8N_DOCTOR_TOOLS", "N8N_DOCTOR_TRACE_EXPORTER", "LOG_LEVEL", "N8N_DOCTOR_RATE_LIMIT"} {
		t.Setenv(key, "")
	}
	shared.ResetFlagsForTest()
	t.Cleanup(shared.ResetFlagsForTest)
}

func fakeN8N(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/workflows", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-N8N-API-KEY"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"1","name":"Nightly sync","active":true,"nodes":[],"connections":{}}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// newRoot wires cmd under a root that carries the global --json flag.
func newRoot(cmd *cobra.Command, stdout, stderr *bytes.Buffer) *cobra.Command {
	root := &cobra.Command{Use: "n8n-doctor", SilenceUsage: true, SilenceErrors: true}
	_, _, jsonPtr, _ := shared.RegisterFlagPointers()
	root.PersistentFlags().BoolVar(jsonPtr, "json", false, "JSON output")
	root.AddCommand(cmd)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root
}

func TestToolsCommand_JSON(t *testing.T) {
	setupEnv(t, "http://127.0.0.1:1/api/v1")

	var stdout, stderr bytes.Buffer
	root := newRoot(NewToolsCommand(), &stdout, &stderr)
	root.SetArgs([]string{"tools", "--json"})
	require.NoError(t, root.Execute())

	var infos []ToolInfo
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &infos))
	require.Len(t, infos, 9)
	assert.Equal(t, "list_workflows", infos[0].Name)
	assert.True(t, infos[0].ReadOnly)

	byName := make(map[string]ToolInfo, len(infos))
	for _, info := range infos {
		byName[info.Name] = info
	}
	assert.True(t, byName["delete_workflow"].Destructive)
	assert.Equal(t, []string{"workflowId", "updates"}, byName["update_workflow"].Arguments)
}

func TestToolsCommand_Subset(t *testing.T) {
	setupEnv(t, "http://127.0.0.1:1/api/v1")
	t.Setenv("N8N_DOCTOR_TOOLS", "health_check,scan_workflows")

	var stdout, stderr bytes.Buffer
	root := newRoot(NewToolsCommand(), &stdout, &stderr)
	root.SetArgs([]string{"tools"})
	require.NoError(t, root.Execute())

	out := stdout.String()
	assert.Contains(t, out, "Tools (2)")
	assert.Contains(t, out, "scan_workflows")
	assert.Contains(t, out, "health_check")
	assert.NotContains(t, out, "delete_workflow")
}

func TestCallCommand_ListWorkflows(t *testing.T) {
	srv := fakeN8N(t)
	setupEnv(t, srv.URL+"/api/v1")

	var stdout, stderr bytes.Buffer
	root := newRoot(NewCallCommand(), &stdout, &stderr)
	root.SetArgs([]string{"call", "list_workflows"})
	require.NoError(t, root.Execute())

	var summaries []map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "Nightly sync", summaries[0]["name"])
	assert.NotContains(t, summaries[0], "nodes")
}

func TestCallCommand_ToolError(t *testing.T) {
	srv := fakeN8N(t)
	setupEnv(t, srv.URL+"/api/v1")

	var stdout, stderr bytes.Buffer
	root := newRoot(NewCallCommand(), &stdout, &stderr)
	root.SetArgs([]string{"call", "get_workflow"})

	err := root.Execute()
	require.Error(t, err)
	assert.Equal(t, shared.ExitFailure, shared.ExitCode(err))
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Error:")
}

func TestCallCommand_UnknownTool(t *testing.T) {
	srv := fakeN8N(t)
	setupEnv(t, srv.URL+"/api/v1")

	var stdout, stderr bytes.Buffer
	root := newRoot(NewCallCommand(), &stdout, &stderr)
	root.SetArgs([]string{"call", "format_disk"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, stderr.String(), "Unknown tool")
}

func TestCallCommand_InvalidArgs(t *testing.T) {
	setupEnv(t, "http://127.0.0.1:1/api/v1")

	var stdout, stderr bytes.Buffer
	root := newRoot(NewCallCommand(), &stdout, &stderr)
	root.SetArgs([]string{"call", "get_workflow", "--args", "{not json"})

	err := root.Execute()
	require.Error(t, err)
	assert.Equal(t, shared.ExitFailure, shared.ExitCode(err))
	assert.Contains(t, err.Error(), "--args")
}
