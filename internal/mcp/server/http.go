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
	"encoding/json"
	"log/slog"
	"net/http"
)

// statusResponse is served on / and /health.
type statusResponse struct {
	Status        string `json:"status"`
	Server        string `json:"server"`
	Version       string `json:"version"`
	Transport     string `json:"transport"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// auxMux serves the endpoints that sit beside the MCP transport.
func (s *Server) auxMux(transport string) *http.ServeMux {
	mux := http.NewServeMux()

	status := func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, statusResponse{
			Status:        "ok",
			Server:        s.name,
			Version:       s.version,
			Transport:     transport,
			UptimeSeconds: int64(s.Uptime().Seconds()),
		})
	}
	mux.HandleFunc("GET /{$}", status)
	mux.HandleFunc("GET /health", status)

	if s.metricsHandler != nil {
		mux.Handle("GET /metrics", s.metricsHandler)
	}

	return mux
}

// writeJSON writes a JSON response with the given status code and data.
// If encoding fails, it logs the error.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to write JSON response", slog.Any("error", err))
	}
}
