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
	"errors"
	"fmt"
	"strings"

	doctorerrors "github.com/tombee/n8n-doctor/pkg/errors"
)

// NoArgs is the argument record of tools that take no arguments.
type NoArgs struct{}

func (NoArgs) validate() error { return nil }

// WorkflowIDArgs identifies a single workflow.
type WorkflowIDArgs struct {
	WorkflowID string `json:"workflowId"`
}

func (a WorkflowIDArgs) validate() error {
	return requireID(a.WorkflowID)
}

// GetArgs are the arguments of get_workflow.
type GetArgs struct {
	WorkflowID string `json:"workflowId"`

	// JQ optionally filters the returned document
	JQ string `json:"jq,omitempty"`
}

func (a GetArgs) validate() error {
	return requireID(a.WorkflowID)
}

// CreateArgs are the arguments of create_workflow. Description is accepted
// but does not shape the created workflow.
type CreateArgs struct {
	Description string `json:"description"`
}

func (CreateArgs) validate() error { return nil }

// UpdateArgs are the arguments of update_workflow.
type UpdateArgs struct {
	WorkflowID string `json:"workflowId"`

	// Updates is the patch document. Callers normally send it as JSON text;
	// an inline object is accepted too.
	Updates json.RawMessage `json:"updates"`

	patch map[string]any
}

func (a *UpdateArgs) validate() error {
	if err := requireID(a.WorkflowID); err != nil {
		return err
	}

	raw := bytes.TrimSpace(a.Updates)
	if len(raw) > 0 && raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return &doctorerrors.ArgumentError{Field: ArgUpdates, Message: "must be a string or object", Cause: err}
		}
		raw = []byte(text)
	}

	var patch map[string]any
	if err := json.Unmarshal(raw, &patch); err != nil {
		return &doctorerrors.ArgumentError{Field: ArgUpdates, Message: "must be a JSON object", Cause: err}
	}
	if patch == nil {
		return &doctorerrors.ArgumentError{Field: ArgUpdates, Message: "must be a JSON object"}
	}
	a.patch = patch
	return nil
}

// Patch returns the decoded patch document. Valid after a successful bind.
func (a *UpdateArgs) Patch() map[string]any {
	return a.patch
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return &doctorerrors.ArgumentError{Field: ArgWorkflowID, Message: "must not be empty"}
	}
	return nil
}

type validator interface {
	validate() error
}

// bind checks that every required argument is present, decodes args into
// the record pointed to by dst and validates it.
func bind(args map[string]any, required []string, dst validator) error {
	for _, name := range required {
		if v, ok := args[name]; !ok || v == nil {
			return &doctorerrors.ArgumentError{Field: name, Message: "is required"}
		}
	}

	data, err := json.Marshal(args)
	if err != nil {
		return &doctorerrors.ArgumentError{Message: "arguments are not serializable", Cause: err}
	}
	if err := json.Unmarshal(data, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &doctorerrors.ArgumentError{
				Field:   typeErr.Field,
				Message: fmt.Sprintf("must be a %s", typeErr.Type),
				Cause:   err,
			}
		}
		return &doctorerrors.ArgumentError{Message: err.Error(), Cause: err}
	}

	return dst.validate()
}
