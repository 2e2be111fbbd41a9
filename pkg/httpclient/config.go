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

package httpclient

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RequestRecorder receives one sample per completed round trip.
// status is 0 when no response was received.
type RequestRecorder interface {
	RecordUpstreamRequest(ctx context.Context, method string, status int, duration time.Duration)
}

// Config holds configuration for the HTTP client.
type Config struct {
	// Timeout bounds a whole request including reading the body.
	// Zero means no client-side timeout; the request context still applies.
	Timeout time.Duration

	// UserAgent is the User-Agent header value.
	// Required. Must be non-empty.
	UserAgent string

	// Headers are set on every outbound request. Values are never logged.
	Headers map[string]string

	// Logger receives request logs. Defaults to slog.Default().
	Logger *slog.Logger

	// Recorder optionally receives request metrics.
	Recorder RequestRecorder
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent: "n8n-doctor/dev",
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}

	if c.UserAgent == "" {
		return fmt.Errorf("user_agent is required and must be non-empty")
	}

	for name := range c.Headers {
		if name == "" {
			return fmt.Errorf("header names must be non-empty")
		}
	}

	return nil
}
