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

	"github.com/tombee/n8n-doctor/internal/jq"
	"github.com/tombee/n8n-doctor/internal/n8n"
	doctorerrors "github.com/tombee/n8n-doctor/pkg/errors"
)

func (d *Dispatcher) listWorkflows(ctx context.Context) (string, error) {
	workflows, err := d.client.ListWorkflows(ctx)
	if err != nil {
		return "", err
	}

	summaries := make([]n8n.Summary, 0, len(workflows))
	for i := range workflows {
		summaries = append(summaries, workflows[i].Summary())
	}
	return marshal(summaries)
}

func (d *Dispatcher) getWorkflow(ctx context.Context, args GetArgs) (string, error) {
	if args.JQ != "" {
		// reject bad filters before touching the API
		if _, err := jq.Compile(args.JQ); err != nil {
			return "", &doctorerrors.ArgumentError{Field: ArgJQ, Message: err.Error(), Cause: err}
		}
	}

	raw, err := d.client.GetWorkflow(ctx, args.WorkflowID)
	if err != nil {
		return "", err
	}

	if args.JQ != "" {
		raw, err = d.jq.Apply(ctx, args.JQ, raw)
		if err != nil {
			return "", &doctorerrors.ArgumentError{Field: ArgJQ, Message: err.Error(), Cause: err}
		}
	}
	return indent(raw)
}

func (d *Dispatcher) createWorkflow(ctx context.Context, args CreateArgs) (string, error) {
	raw, err := d.client.CreateWorkflow(ctx, n8n.DefaultWorkflow(args.Description, d.now()))
	if err != nil {
		return "", err
	}
	return indent(raw)
}

func (d *Dispatcher) updateWorkflow(ctx context.Context, args *UpdateArgs) (string, error) {
	raw, err := d.client.UpdateWorkflow(ctx, args.WorkflowID, args.Patch())
	if err != nil {
		return "", err
	}
	return indent(raw)
}

// deleteResult is reported for every successful delete regardless of the
// upstream response body.
type deleteResult struct {
	Success bool   `json:"success"`
	Deleted string `json:"deleted"`
}

func (d *Dispatcher) deleteWorkflow(ctx context.Context, args WorkflowIDArgs) (string, error) {
	if err := d.client.DeleteWorkflow(ctx, args.WorkflowID); err != nil {
		return "", err
	}
	return marshal(deleteResult{Success: true, Deleted: args.WorkflowID})
}

func (d *Dispatcher) setActive(ctx context.Context, args WorkflowIDArgs, active bool) (string, error) {
	raw, err := d.client.SetActive(ctx, args.WorkflowID, active)
	if err != nil {
		return "", err
	}
	return indent(raw)
}
