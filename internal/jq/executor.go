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

// Package jq applies jq filters to workflow documents.
package jq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/itchyny/gojq"
)

const (
	// DefaultTimeout bounds a single filter evaluation.
	DefaultTimeout = 1 * time.Second

	// DefaultMaxInputSize is the largest document a filter runs against (10MB).
	DefaultMaxInputSize = 10 * 1024 * 1024
)

// Executor evaluates jq expressions with a timeout and an input size limit.
type Executor struct {
	timeout      time.Duration
	maxInputSize int
}

// NewExecutor creates an executor. Zero values select the defaults.
func NewExecutor(timeout time.Duration, maxInputSize int) *Executor {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if maxInputSize == 0 {
		maxInputSize = DefaultMaxInputSize
	}

	return &Executor{
		timeout:      timeout,
		maxInputSize: maxInputSize,
	}
}

// Compile parses and compiles expression, reporting syntax errors.
func Compile(expression string) (*gojq.Code, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}

	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("jq compilation failed: %w", err)
	}
	return code, nil
}

// Apply runs expression against a JSON document and returns the result as
// JSON. An empty expression returns doc unchanged. A filter that yields
// several values returns them as an array; one yielding none returns null.
func (e *Executor) Apply(ctx context.Context, expression string, doc json.RawMessage) (json.RawMessage, error) {
	if expression == "" {
		return doc, nil
	}

	if len(doc) > e.maxInputSize {
		return nil, fmt.Errorf("document size (%d bytes) exceeds maximum (%d bytes)", len(doc), e.maxInputSize)
	}

	code, err := Compile(expression)
	if err != nil {
		return nil, err
	}

	var input any
	if err := json.Unmarshal(doc, &input); err != nil {
		return nil, fmt.Errorf("document is not valid JSON: %w", err)
	}

	execCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var results []any
	iter := code.RunWithContext(execCtx, input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			if execCtx.Err() != nil {
				return nil, fmt.Errorf("execution timeout after %v", e.timeout)
			}
			return nil, err
		}
		results = append(results, v)
	}

	var out any
	switch len(results) {
	case 0:
		out = nil
	case 1:
		out = results[0]
	default:
		out = results
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode jq result: %w", err)
	}
	return data, nil
}
