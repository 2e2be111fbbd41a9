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

package jq

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutor_Apply(t *testing.T) {
	doc := json.RawMessage(`{"id":"1","name":"wf","nodes":[{"type":"a"},{"type":"b"}]}`)

	tests := []struct {
		name       string
		expression string
		want       string
		wantErr    bool
	}{
		{
			name:       "empty expression returns document as-is",
			expression: "",
			want:       string(doc),
		},
		{
			name:       "simple field extraction",
			expression: ".name",
			want:       `"wf"`,
		},
		{
			name:       "array map",
			expression: ".nodes | map(.type)",
			want:       `["a","b"]`,
		},
		{
			name:       "multiple outputs become an array",
			expression: ".nodes[].type",
			want:       `["a","b"]`,
		},
		{
			name:       "no output is null",
			expression: "empty",
			want:       `null`,
		},
		{
			name:       "invalid expression",
			expression: ".[",
			wantErr:    true,
		},
		{
			name:       "runtime error",
			expression: ".name | keys",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor := NewExecutor(DefaultTimeout, DefaultMaxInputSize)
			got, err := executor.Apply(context.Background(), tt.expression, doc)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestExecutor_InputTooLarge(t *testing.T) {
	executor := NewExecutor(0, 8)

	_, err := executor.Apply(context.Background(), ".", json.RawMessage(`{"name":"too large"}`))
	assert.ErrorContains(t, err, "exceeds maximum")
}

func TestCompile(t *testing.T) {
	_, err := Compile(".nodes[0]")
	assert.NoError(t, err)

	_, err = Compile("{")
	assert.Error(t, err)
}
