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

// Package httpclient builds the outbound HTTP client used to reach the n8n API.
//
// The returned *http.Client layers a logging transport over a tuned
// net/http transport:
//   - static headers (such as the n8n API key) set on every request
//   - User-Agent injection
//   - X-Correlation-ID propagation from the request context
//   - one OpenTelemetry client span and one metrics sample per request
//   - sanitized URLs in logs
//
// Requests are never retried: a failed request surfaces to the caller once.
//
//	cfg := httpclient.DefaultConfig()
//	cfg.Headers = map[string]string{"X-N8N-API-KEY": key}
//	client, err := httpclient.New(cfg)
package httpclient
