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
	"strings"

	"github.com/tombee/n8n-doctor/internal/n8n"
)

// triggerMarker is the substring that marks a node type as a trigger.
const triggerMarker = "Trigger"

// ScanReport is the result of scan_workflows.
type ScanReport struct {
	Total  int `json:"total"`
	Issues int `json:"issues"`
}

// Scan counts workflows and flags active ones none of whose node types
// contain "Trigger". This is a naming heuristic, not a validation: n8n's
// own webhook node type, for one, does not match it.
func Scan(workflows []n8n.Workflow) ScanReport {
	report := ScanReport{Total: len(workflows)}
	for i := range workflows {
		if workflows[i].Active && !hasTrigger(&workflows[i]) {
			report.Issues++
		}
	}
	return report
}

func hasTrigger(wf *n8n.Workflow) bool {
	for _, node := range wf.Nodes {
		if strings.Contains(node.Type, triggerMarker) {
			return true
		}
	}
	return false
}

func (d *Dispatcher) scanWorkflows(ctx context.Context) (string, error) {
	workflows, err := d.client.ListWorkflows(ctx)
	if err != nil {
		return "", err
	}
	return marshal(Scan(workflows))
}
