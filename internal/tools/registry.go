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
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	doctorerrors "github.com/tombee/n8n-doctor/pkg/errors"
)

// Argument names shared by several tools.
const (
	ArgWorkflowID  = "workflowId"
	ArgDescription = "description"
	ArgUpdates     = "updates"
	ArgJQ          = "jq"
)

// Definition returns the MCP definition of a tool.
func Definition(kind Kind) mcp.Tool {
	switch kind {
	case KindListWorkflows:
		return mcp.NewTool(kind.String(),
			mcp.WithDescription("Get all n8n workflows. Returns id, name, active and timestamps for each."),
			mcp.WithReadOnlyHintAnnotation(true),
		)
	case KindGetWorkflow:
		return mcp.NewTool(kind.String(),
			mcp.WithDescription("Get the full definition of one n8n workflow, including nodes and connections."),
			mcp.WithString(ArgWorkflowID,
				mcp.Required(),
				mcp.Description("ID of the workflow"),
			),
			mcp.WithString(ArgJQ,
				mcp.Description("Optional jq filter applied to the workflow document, e.g. '.nodes | map(.type)'"),
			),
			mcp.WithReadOnlyHintAnnotation(true),
		)
	case KindCreateWorkflow:
		return mcp.NewTool(kind.String(),
			mcp.WithDescription("Create a new n8n workflow with a webhook trigger connected to a no-op node."),
			mcp.WithString(ArgDescription,
				mcp.Required(),
				mcp.Description("What the workflow should do"),
			),
		)
	case KindUpdateWorkflow:
		return mcp.NewTool(kind.String(),
			mcp.WithDescription("Update an existing n8n workflow with a partial JSON document."),
			mcp.WithString(ArgWorkflowID,
				mcp.Required(),
				mcp.Description("ID of the workflow"),
			),
			mcp.WithString(ArgUpdates,
				mcp.Required(),
				mcp.Description("JSON object with the fields to change, e.g. {\"name\":\"New name\"}"),
			),
		)
	case KindDeleteWorkflow:
		return mcp.NewTool(kind.String(),
			mcp.WithDescription("Delete an n8n workflow."),
			mcp.WithString(ArgWorkflowID,
				mcp.Required(),
				mcp.Description("ID of the workflow"),
			),
			mcp.WithDestructiveHintAnnotation(true),
		)
	case KindActivateWorkflow:
		return mcp.NewTool(kind.String(),
			mcp.WithDescription("Activate an n8n workflow so its triggers run."),
			mcp.WithString(ArgWorkflowID,
				mcp.Required(),
				mcp.Description("ID of the workflow"),
			),
		)
	case KindDeactivateWorkflow:
		return mcp.NewTool(kind.String(),
			mcp.WithDescription("Deactivate an n8n workflow."),
			mcp.WithString(ArgWorkflowID,
				mcp.Required(),
				mcp.Description("ID of the workflow"),
			),
		)
	case KindScanWorkflows:
		return mcp.NewTool(kind.String(),
			mcp.WithDescription("Scan all workflows and count active workflows that have no trigger node."),
			mcp.WithReadOnlyHintAnnotation(true),
		)
	case KindHealthCheck:
		return mcp.NewTool(kind.String(),
			mcp.WithDescription("Check n8n server health and API connectivity."),
			mcp.WithReadOnlyHintAnnotation(true),
		)
	}
	panic(fmt.Sprintf("tools: no definition for kind %d", kind))
}

// Registry holds the definitions of the enabled tools. It is immutable
// after construction and safe for concurrent use.
type Registry struct {
	kinds []Kind
	defs  map[Kind]mcp.Tool
}

// NewRegistry builds a registry of the named tools. An empty list enables
// every tool. Order follows AllKinds regardless of the order of names.
func NewRegistry(names []string) (*Registry, error) {
	enabled := make(map[Kind]bool, len(names))
	for _, name := range names {
		kind, ok := ParseKind(strings.TrimSpace(name))
		if !ok {
			return nil, &doctorerrors.ConfigError{
				Key:    "tools",
				Reason: fmt.Sprintf("unknown tool %q", name),
			}
		}
		enabled[kind] = true
	}

	r := &Registry{defs: make(map[Kind]mcp.Tool)}
	for _, kind := range AllKinds() {
		if len(enabled) > 0 && !enabled[kind] {
			continue
		}
		r.kinds = append(r.kinds, kind)
		r.defs[kind] = Definition(kind)
	}
	return r, nil
}

// Tools returns the enabled definitions in registration order.
func (r *Registry) Tools() []mcp.Tool {
	out := make([]mcp.Tool, 0, len(r.kinds))
	for _, kind := range r.kinds {
		out = append(out, r.defs[kind])
	}
	return out
}

// Lookup resolves an enabled tool by name.
func (r *Registry) Lookup(name string) (Kind, bool) {
	kind, ok := ParseKind(name)
	if !ok {
		return 0, false
	}
	_, enabled := r.defs[kind]
	return kind, enabled
}

// Required returns the required argument names of an enabled tool.
func (r *Registry) Required(kind Kind) []string {
	return r.defs[kind].InputSchema.Required
}
