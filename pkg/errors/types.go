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

// Package errors defines the error taxonomy shared by the n8n client, the
// tool dispatcher and the CLI.
package errors

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// ArgumentError represents a malformed or missing tool argument.
// It is produced before any upstream request is issued.
type ArgumentError struct {
	// Field is the argument name that failed validation
	Field string

	// Message is the human-readable error description
	Message string

	// Cause is the underlying decode error, if any
	Cause error
}

// Error implements the error interface.
func (e *ArgumentError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid argument %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid arguments: %s", e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ArgumentError) Unwrap() error {
	return e.Cause
}

func (e *ArgumentError) IsUserVisible() bool { return true }
func (e *ArgumentError) UserMessage() string { return e.Error() }
func (e *ArgumentError) ErrorType() string   { return "argument" }
func (e *ArgumentError) IsRetryable() bool   { return false }

func (e *ArgumentError) Suggestion() string {
	if e.Field != "" {
		return fmt.Sprintf("Check the value supplied for %q", e.Field)
	}
	return ""
}

// UnknownToolError is returned when an invocation names a tool that is not
// in the registry.
type UnknownToolError struct {
	Name string
}

// Error implements the error interface.
func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool: %s", e.Name)
}

func (e *UnknownToolError) IsUserVisible() bool { return true }
func (e *UnknownToolError) UserMessage() string { return "Unknown tool" }
func (e *UnknownToolError) Suggestion() string  { return "List the available tools first" }
func (e *UnknownToolError) ErrorType() string   { return "not_found" }
func (e *UnknownToolError) IsRetryable() bool   { return false }

// RateLimitError is returned when a tool call exceeds the configured rate.
type RateLimitError struct{}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return "rate limit exceeded"
}

func (e *RateLimitError) IsUserVisible() bool { return true }
func (e *RateLimitError) UserMessage() string { return "rate limit exceeded, try again later" }
func (e *RateLimitError) Suggestion() string  { return "Wait before retrying or raise rate_limit" }
func (e *RateLimitError) ErrorType() string   { return "rate_limit" }
func (e *RateLimitError) IsRetryable() bool   { return true }

// TransportError represents a failure to reach the n8n API at all
// (DNS, connection refused, TLS, canceled context).
type TransportError struct {
	Method string
	URL    string
	Cause  error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

func (e *TransportError) IsUserVisible() bool { return true }
func (e *TransportError) ErrorType() string   { return "transport" }
func (e *TransportError) IsRetryable() bool   { return true }

// UserMessage reports the network failure without the request URL or
// socket addresses.
func (e *TransportError) UserMessage() string {
	cause := e.Cause
	var urlErr *url.Error
	if errors.As(cause, &urlErr) {
		cause = urlErr.Err
	}
	var opErr *net.OpError
	if errors.As(cause, &opErr) && opErr.Err != nil {
		cause = opErr.Err
	}
	return fmt.Sprintf("n8n API unreachable: %v", cause)
}

func (e *TransportError) Suggestion() string {
	return "Check N8N_API_URL and network connectivity"
}

// StatusError represents a non-2xx response from the n8n API.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int

	// Message is the upstream "message" field when the body carried one
	Message string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s returned HTTP %d", e.Method, e.Path, e.StatusCode)
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	return msg
}

func (e *StatusError) IsUserVisible() bool { return true }
func (e *StatusError) ErrorType() string   { return "status" }

// IsRetryable reports whether the status indicates a transient upstream condition.
func (e *StatusError) IsRetryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

func (e *StatusError) UserMessage() string {
	text := http.StatusText(e.StatusCode)
	if e.Message != "" {
		return fmt.Sprintf("Request failed with status code %d (%s): %s", e.StatusCode, text, e.Message)
	}
	return fmt.Sprintf("Request failed with status code %d (%s)", e.StatusCode, text)
}

func (e *StatusError) Suggestion() string {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return "Check N8N_API_KEY"
	case http.StatusNotFound:
		return "Check the workflow ID"
	default:
		return ""
	}
}

// DecodeError represents a 2xx response whose body was not the JSON we expected.
type DecodeError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response from %s: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

func (e *DecodeError) IsUserVisible() bool { return true }
func (e *DecodeError) UserMessage() string { return fmt.Sprintf("invalid JSON from n8n API: %v", e.Cause) }
func (e *DecodeError) Suggestion() string  { return "Check that N8N_API_URL points at the /api/v1 root" }
func (e *DecodeError) ErrorType() string   { return "decode" }
func (e *DecodeError) IsRetryable() bool   { return false }

// ConfigError represents configuration problems.
// Use this for configuration file errors, missing settings, or invalid config values.
type ConfigError struct {
	// Key is the configuration key that has the problem (e.g., "n8n.url", "server.port")
	Key string

	// Reason explains what's wrong with the configuration
	Reason string

	// Cause is the underlying error (e.g., file read error, parse error)
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config error: %s", e.Reason)
	if e.Key != "" {
		msg = fmt.Sprintf("config error at %s: %s", e.Key, e.Reason)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}
