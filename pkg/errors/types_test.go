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

package errors_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	doctorerrors "github.com/tombee/n8n-doctor/pkg/errors"
)

func TestStatusError(t *testing.T) {
	tests := []struct {
		name      string
		err       *doctorerrors.StatusError
		wantMsg   string
		wantUser  string
		retryable bool
	}{
		{
			name:      "not found with upstream message",
			err:       &doctorerrors.StatusError{Method: "GET", Path: "/workflows/42", StatusCode: 404, Message: "Not Found"},
			wantMsg:   "GET /workflows/42 returned HTTP 404: Not Found",
			wantUser:  "Request failed with status code 404 (Not Found): Not Found",
			retryable: false,
		},
		{
			name:      "server error without message",
			err:       &doctorerrors.StatusError{Method: "POST", Path: "/workflows", StatusCode: 502},
			wantMsg:   "POST /workflows returned HTTP 502",
			wantUser:  "Request failed with status code 502 (Bad Gateway)",
			retryable: true,
		},
		{
			name:      "rate limited",
			err:       &doctorerrors.StatusError{Method: "GET", Path: "/workflows", StatusCode: 429},
			wantMsg:   "GET /workflows returned HTTP 429",
			wantUser:  "Request failed with status code 429 (Too Many Requests)",
			retryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
			assert.Equal(t, tt.wantUser, tt.err.UserMessage())
			assert.Equal(t, tt.retryable, tt.err.IsRetryable())
			assert.Equal(t, "status", tt.err.ErrorType())
		})
	}
}

func TestStatusError_Suggestion(t *testing.T) {
	assert.Equal(t, "Check N8N_API_KEY", (&doctorerrors.StatusError{StatusCode: 401}).Suggestion())
	assert.Equal(t, "Check the workflow ID", (&doctorerrors.StatusError{StatusCode: 404}).Suggestion())
	assert.Empty(t, (&doctorerrors.StatusError{StatusCode: 500}).Suggestion())
}

func TestTransportError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &doctorerrors.TransportError{Method: "GET", URL: "http://n8n.local/api/v1/workflows", Cause: cause}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "n8n API unreachable: connection refused", err.UserMessage())
	assert.True(t, err.IsRetryable())
}

func TestTransportError_UserMessageHidesRequest(t *testing.T) {
	cause := &url.Error{
		Op:  "Get",
		URL: "http://n8n.local:5678/api/v1/workflows/42",
		Err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connect: connection refused")},
	}
	err := &doctorerrors.TransportError{Method: "GET", URL: "http://n8n.local:5678/api/v1/workflows/42", Cause: cause}

	msg := err.UserMessage()
	assert.Equal(t, "n8n API unreachable: connect: connection refused", msg)
	assert.NotContains(t, msg, "n8n.local")
	assert.NotContains(t, msg, "/workflows")
	assert.ErrorIs(t, err, cause)

	canceled := &doctorerrors.TransportError{Method: "GET", Cause: &url.Error{Op: "Get", URL: "http://n8n.local", Err: context.Canceled}}
	assert.Equal(t, "n8n API unreachable: context canceled", canceled.UserMessage())
}

func TestArgumentError_Error(t *testing.T) {
	withField := &doctorerrors.ArgumentError{Field: "updates", Message: "must be valid JSON"}
	assert.Equal(t, "invalid argument updates: must be valid JSON", withField.Error())
	assert.Contains(t, withField.Suggestion(), "updates")

	noField := &doctorerrors.ArgumentError{Message: "arguments must be an object"}
	assert.Equal(t, "invalid arguments: arguments must be an object", noField.Error())
	assert.Empty(t, noField.Suggestion())
}

func TestConfigError_Error(t *testing.T) {
	cause := errors.New("bad port")
	err := &doctorerrors.ConfigError{Key: "server.port", Reason: "out of range", Cause: cause}

	assert.Equal(t, "config error at server.port: out of range: bad port", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "config error: missing", (&doctorerrors.ConfigError{Reason: "missing"}).Error())
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("boom"), "boom"},
		{"unknown tool", &doctorerrors.UnknownToolError{Name: "nope"}, "Unknown tool"},
		{"rate limit", &doctorerrors.RateLimitError{}, "rate limit exceeded, try again later"},
		{
			name: "wrapped status error",
			err:  fmt.Errorf("get workflow: %w", &doctorerrors.StatusError{Method: "GET", Path: "/workflows/1", StatusCode: 401}),
			want: "Request failed with status code 401 (Unauthorized)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, doctorerrors.UserMessage(tt.err))
		})
	}
}

func TestType(t *testing.T) {
	assert.Equal(t, "", doctorerrors.Type(nil))
	assert.Equal(t, "internal", doctorerrors.Type(errors.New("x")))
	assert.Equal(t, "argument", doctorerrors.Type(fmt.Errorf("decode: %w", &doctorerrors.ArgumentError{Message: "x"})))
	assert.Equal(t, "decode", doctorerrors.Type(&doctorerrors.DecodeError{Path: "/workflows", Cause: errors.New("eof")}))
}

func TestRetryable(t *testing.T) {
	assert.False(t, doctorerrors.Retryable(nil))
	assert.False(t, doctorerrors.Retryable(errors.New("x")))
	assert.True(t, doctorerrors.Retryable(fmt.Errorf("list: %w", &doctorerrors.TransportError{Method: "GET", Cause: errors.New("refused")})))
	assert.True(t, doctorerrors.Retryable(&doctorerrors.StatusError{StatusCode: 503}))
	assert.False(t, doctorerrors.Retryable(&doctorerrors.StatusError{StatusCode: 404}))
	assert.False(t, doctorerrors.Retryable(&doctorerrors.ArgumentError{Message: "x"}))
}
