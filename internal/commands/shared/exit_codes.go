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

package shared

import (
	"errors"
	"fmt"
	"io"
	"os"

	doctorerrors "github.com/tombee/n8n-doctor/pkg/errors"
)

// Exit codes
const (
	ExitSuccess = 0

	// ExitFailure covers tool error results and unexpected failures.
	ExitFailure = 1

	// ExitConfigError means the configuration could not be loaded or is invalid.
	ExitConfigError = 2

	// ExitUpstreamError means the n8n API could not be reached or rejected the request.
	ExitUpstreamError = 3
)

// ExitError is an error that carries an exit code
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates an error for configuration failures
func NewConfigError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitConfigError,
		Message: msg,
		Cause:   cause,
	}
}

// NewUpstreamError creates an error for n8n API failures
func NewUpstreamError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitUpstreamError,
		Message: msg,
		Cause:   cause,
	}
}

// NewFailure creates an error with the generic failure code
func NewFailure(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitFailure,
		Message: msg,
		Cause:   cause,
	}
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// HandleExitError prints err and exits with the appropriate code
func HandleExitError(err error) {
	if err == nil {
		return
	}
	os.Exit(ReportError(os.Stderr, err))
}

// ReportError writes err and any suggestion to w and returns the exit code.
func ReportError(w io.Writer, err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Message == "" && exitErr.Cause == nil {
		// the command already reported the failure
		return exitErr.Code
	}

	fmt.Fprintln(w, "Error:", err.Error())
	printUserVisibleSuggestion(w, err)
	return ExitCode(err)
}

// printUserVisibleSuggestion prints the suggestion of the first
// UserVisibleError in the chain, if any.
func printUserVisibleSuggestion(w io.Writer, err error) {
	var userErr doctorerrors.UserVisibleError
	if errors.As(err, &userErr) && userErr.IsUserVisible() {
		if suggestion := userErr.Suggestion(); suggestion != "" {
			fmt.Fprintf(w, "\nSuggestion: %s\n", suggestion)
		}
	}
}
