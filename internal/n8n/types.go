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

// Package n8n is a client for the n8n public REST API.
//
// Every operation issues exactly one HTTP request. Nothing is cached: callers
// always see the upstream state as of their own request.
package n8n

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Workflow is an n8n workflow document.
type Workflow struct {
	ID          string                 `json:"id,omitempty"`
	Name        string                 `json:"name"`
	Active      bool                   `json:"active,omitempty"`
	Nodes       []Node                 `json:"nodes"`
	Connections map[string]Connections `json:"connections"`
	Settings    map[string]any         `json:"settings"`
	CreatedAt   string                 `json:"createdAt,omitempty"`
	UpdatedAt   string                 `json:"updatedAt,omitempty"`
}

// UnmarshalJSON accepts a numeric id, as older n8n releases send, alongside
// the string form.
func (w *Workflow) UnmarshalJSON(data []byte) error {
	type plain Workflow
	aux := struct {
		*plain
		ID json.RawMessage `json:"id,omitempty"`
	}{plain: (*plain)(w)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	id, err := decodeID(aux.ID)
	if err != nil {
		return fmt.Errorf("workflow id: %w", err)
	}
	w.ID = id
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// Node is a single step in a workflow.
type Node struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	TypeVersion float64        `json:"typeVersion"`
	Position    []float64      `json:"position"`
	Parameters  map[string]any `json:"parameters"`
	Credentials map[string]any `json:"credentials,omitempty"`
}

// Connections maps an output type to per-output-index target lists.
type Connections struct {
	Main [][]Connection `json:"main"`
}

// Connection is one edge to a target node input.
type Connection struct {
	Node  string `json:"node"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// Summary is the projection returned by list_workflows.
type Summary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Summary projects w to its listing fields.
func (w *Workflow) Summary() Summary {
	return Summary{
		ID:        w.ID,
		Name:      w.Name,
		Active:    w.Active,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

// workflowList is the envelope of GET /workflows.
type workflowList struct {
	Data       []Workflow `json:"data"`
	NextCursor *string    `json:"nextCursor,omitempty"`
}

// apiError is the error body n8n returns with non-2xx responses.
type apiError struct {
	Message string `json:"message"`
}

// parseAPIError extracts the message field from an error body, if any.
func parseAPIError(body []byte) string {
	var e apiError
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	return e.Message
}
