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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	doctorerrors "github.com/tombee/n8n-doctor/pkg/errors"
)

func TestParseKind(t *testing.T) {
	for _, kind := range AllKinds() {
		got, ok := ParseKind(kind.String())
		require.True(t, ok, kind.String())
		assert.Equal(t, kind, got)
	}

	_, ok := ParseKind("List_Workflows")
	assert.False(t, ok)
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestNewRegistry_AllTools(t *testing.T) {
	registry, err := NewRegistry(nil)
	require.NoError(t, err)

	defs := registry.Tools()
	require.Len(t, defs, 9)

	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Name)
		assert.NotEmpty(t, def.Description)
		assert.Equal(t, "object", def.InputSchema.Type)
	}
	assert.Equal(t, []string{
		"list_workflows", "get_workflow", "create_workflow", "update_workflow", "delete_workflow",
		"activate_workflow", "deactivate_workflow", "scan_workflows", "health_check",
	}, names)
}

func TestNewRegistry_RequiredArguments(t *testing.T) {
	registry, err := NewRegistry(nil)
	require.NoError(t, err)

	tests := map[Kind][]string{
		KindListWorkflows:      nil,
		KindGetWorkflow:        {ArgWorkflowID},
		KindCreateWorkflow:     {ArgDescription},
		KindUpdateWorkflow:     {ArgWorkflowID, ArgUpdates},
		KindDeleteWorkflow:     {ArgWorkflowID},
		KindActivateWorkflow:   {ArgWorkflowID},
		KindDeactivateWorkflow: {ArgWorkflowID},
		KindScanWorkflows:      nil,
		KindHealthCheck:        nil,
	}
	for kind, want := range tests {
		assert.ElementsMatch(t, want, registry.Required(kind), kind.String())
	}
}

func TestNewRegistry_Subset(t *testing.T) {
	registry, err := NewRegistry([]string{"health_check", " list_workflows"})
	require.NoError(t, err)

	defs := registry.Tools()
	require.Len(t, defs, 2)
	assert.Equal(t, "list_workflows", defs[0].Name, "registration order is fixed")
	assert.Equal(t, "health_check", defs[1].Name)

	_, ok := registry.Lookup("get_workflow")
	assert.False(t, ok)
	kind, ok := registry.Lookup("health_check")
	assert.True(t, ok)
	assert.Equal(t, KindHealthCheck, kind)
}

func TestNewRegistry_UnknownTool(t *testing.T) {
	_, err := NewRegistry([]string{"list_workflows", "run_workflow"})

	var cfgErr *doctorerrors.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "tools", cfgErr.Key)
	assert.Contains(t, err.Error(), "run_workflow")
}
