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

package server

import (
	"golang.org/x/time/rate"
)

// RateLimiter caps tool calls with a token bucket that refills evenly over
// a minute. A nil *RateLimiter allows everything.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a limiter allowing callsPerMinute calls with bursts
// of up to the same number. A non-positive limit returns nil (unlimited).
func NewRateLimiter(callsPerMinute int) *RateLimiter {
	if callsPerMinute <= 0 {
		return nil
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(float64(callsPerMinute)/60.0), callsPerMinute),
	}
}

// Allow reports whether a tool call may proceed now.
func (rl *RateLimiter) Allow() bool {
	if rl == nil {
		return true
	}
	return rl.limiter.Allow()
}
