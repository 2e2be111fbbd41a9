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

package errors

// UserVisibleError defines errors that should be displayed to end users
// with user-friendly messages and actionable suggestions.
type UserVisibleError interface {
	error

	// IsUserVisible returns true if this error should be shown to users.
	IsUserVisible() bool

	// UserMessage returns a single human-readable sentence without
	// stack traces or internal identifiers.
	UserMessage() string

	// Suggestion returns actionable guidance for resolving the error.
	// Returns empty string if no suggestion is available.
	Suggestion() string
}

// ErrorClassifier defines methods for programmatic error handling.
type ErrorClassifier interface {
	error

	// ErrorType returns a string identifying the error category.
	// Examples: "argument", "transport", "status", "decode", "not_found"
	ErrorType() string

	// IsRetryable returns true if the operation could succeed if repeated.
	IsRetryable() bool
}

var (
	_ UserVisibleError = (*ArgumentError)(nil)
	_ UserVisibleError = (*UnknownToolError)(nil)
	_ UserVisibleError = (*TransportError)(nil)
	_ UserVisibleError = (*StatusError)(nil)
	_ UserVisibleError = (*DecodeError)(nil)
	_ UserVisibleError = (*RateLimitError)(nil)

	_ ErrorClassifier = (*ArgumentError)(nil)
	_ ErrorClassifier = (*UnknownToolError)(nil)
	_ ErrorClassifier = (*TransportError)(nil)
	_ ErrorClassifier = (*StatusError)(nil)
	_ ErrorClassifier = (*DecodeError)(nil)
	_ ErrorClassifier = (*RateLimitError)(nil)
)
