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

package n8n

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Node types used by DefaultWorkflow.
const (
	NodeTypeWebhook = "n8n-nodes-base.webhook"
	NodeTypeNoOp    = "n8n-nodes-base.noOp"

	triggerNodeName = "Webhook Trigger"
	actionNodeName  = "No Operation"
)

// DefaultWorkflow returns the two-node workflow submitted by create_workflow:
// a webhook trigger wired to a no-op action. The description does not
// influence the result.
func DefaultWorkflow(description string, now time.Time) *Workflow {
	_ = description

	webhookID := uuid.NewString()
	return &Workflow{
		Name: fmt.Sprintf("Workflow generated %s", now.UTC().Format(time.RFC3339)),
		Nodes: []Node{
			{
				ID:          uuid.NewString(),
				Name:        triggerNodeName,
				Type:        NodeTypeWebhook,
				TypeVersion: 1,
				Position:    []float64{250, 300},
				Parameters: map[string]any{
					"httpMethod": "POST",
					"path":       webhookID,
				},
			},
			{
				ID:          uuid.NewString(),
				Name:        actionNodeName,
				Type:        NodeTypeNoOp,
				TypeVersion: 1,
				Position:    []float64{450, 300},
				Parameters:  map[string]any{},
			},
		},
		Connections: map[string]Connections{
			triggerNodeName: {
				Main: [][]Connection{
					{{Node: actionNodeName, Type: "main", Index: 0}},
				},
			},
		},
		Settings: map[string]any{},
	}
}
