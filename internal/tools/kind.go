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

// Package tools maps MCP tool calls onto the n8n API.
//
// The set of tools is closed: every tool is a Kind, each Kind has a typed
// argument record, and the Dispatcher switches over Kind. Tool names only
// exist at the registry boundary.
package tools

// Kind identifies one of the tools.
type Kind int

const (
	KindListWorkflows Kind = iota + 1
	KindGetWorkflow
	KindCreateWorkflow
	KindUpdateWorkflow
	KindDeleteWorkflow
	KindActivateWorkflow
	KindDeactivateWorkflow
	KindScanWorkflows
	KindHealthCheck
)

var kindNames = map[Kind]string{
	KindListWorkflows:      "list_workflows",
	KindGetWorkflow:        "get_workflow",
	KindCreateWorkflow:     "create_workflow",
	KindUpdateWorkflow:     "update_workflow",
	KindDeleteWorkflow:     "delete_workflow",
	KindActivateWorkflow:   "activate_workflow",
	KindDeactivateWorkflow: "deactivate_workflow",
	KindScanWorkflows:      "scan_workflows",
	KindHealthCheck:        "health_check",
}

// AllKinds returns every kind in registration order.
func AllKinds() []Kind {
	return []Kind{
		KindListWorkflows,
		KindGetWorkflow,
		KindCreateWorkflow,
		KindUpdateWorkflow,
		KindDeleteWorkflow,
		KindActivateWorkflow,
		KindDeactivateWorkflow,
		KindScanWorkflows,
		KindHealthCheck,
	}
}

// String returns the tool name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind maps a tool name to its kind. Matching is exact.
func ParseKind(name string) (Kind, bool) {
	for kind, n := range kindNames {
		if n == name {
			return kind, true
		}
	}
	return 0, false
}
