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

// Package config loads the process-wide configuration.
//
// Configuration is read once at startup into a Config value that is passed
// explicitly to the components that need it. Precedence, lowest first:
// defaults, YAML file, environment variables, command-line flags.
package config

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	doctorlog "github.com/tombee/n8n-doctor/internal/log"
	"github.com/tombee/n8n-doctor/internal/secrets"
	"github.com/tombee/n8n-doctor/internal/tracing"
	doctorerrors "github.com/tombee/n8n-doctor/pkg/errors"
)

// Defaults.
const (
	DefaultN8NURL    = "https://arvindkumar888-n8n-automation.hf.space/api/v1"
	DefaultPort      = 7860
	DefaultRateLimit = 120
)

// Transport names.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
	TransportHTTP  = "http"
)

// Config is the complete process configuration.
type Config struct {
	N8N     N8NConfig     `yaml:"n8n"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Tracing TracingConfig `yaml:"tracing"`

	// Tools restricts the registered tools to this subset. Empty means all.
	Tools []string `yaml:"tools,omitempty"`

	// RateLimit caps tool calls per minute. Zero disables limiting.
	RateLimit int `yaml:"rate_limit"`
}

// N8NConfig holds the upstream API credentials.
type N8NConfig struct {
	// URL is the n8n public API root, e.g. https://n8n.example.com/api/v1
	URL string `yaml:"url"`

	// APIKey is sent as X-N8N-API-KEY. May be a secrets reference
	// (env:, file:, keychain:) until ResolveSecrets runs.
	APIKey string `yaml:"api_key"`

	// Timeout bounds each upstream request. Zero means no local timeout.
	Timeout time.Duration `yaml:"timeout"`
}

// ServerConfig selects and configures the MCP transport.
type ServerConfig struct {
	// Transport is one of stdio, sse, http.
	Transport string `yaml:"transport"`

	// Host is the listen host for HTTP transports. Empty means all interfaces.
	Host string `yaml:"host"`

	// Port is the listen port for HTTP transports.
	Port int `yaml:"port"`

	// BaseURL is the externally visible URL advertised by the SSE transport.
	BaseURL string `yaml:"base_url,omitempty"`

	// ShutdownTimeout bounds graceful shutdown of HTTP transports.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	AddSource bool   `yaml:"add_source"`
}

// TracingConfig controls span export.
type TracingConfig struct {
	// Exporter is one of none, stdout, otlp-http, otlp-grpc.
	Exporter string `yaml:"exporter"`
	Endpoint string `yaml:"endpoint,omitempty"`
	Insecure bool   `yaml:"insecure,omitempty"`

	// SampleRate is the fraction of traces kept (0.0 - 1.0).
	SampleRate float64 `yaml:"sample_rate"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		N8N: N8NConfig{
			URL: DefaultN8NURL,
		},
		Server: ServerConfig{
			Transport:       TransportStdio,
			Port:            DefaultPort,
			ShutdownTimeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: string(doctorlog.FormatJSON),
		},
		Tracing: TracingConfig{
			Exporter:   tracing.ExporterNone,
			SampleRate: 1.0,
		},
		RateLimit: DefaultRateLimit,
	}
}

// Load loads configuration from an optional YAML file and the environment.
// If configPath is empty, the default path is used when the file exists.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	explicit := configPath != ""
	if !explicit {
		if p, err := ConfigPath(); err == nil {
			configPath = p
		}
	}

	if configPath != "" {
		err := cfg.loadFromFile(configPath)
		switch {
		case err == nil:
		case !explicit && os.IsNotExist(err):
			// no default config file is fine
		default:
			return nil, &doctorerrors.ConfigError{
				Key:    "config_file",
				Reason: fmt.Sprintf("failed to load from %s", configPath),
				Cause:  err,
			}
		}
	}

	cfg.loadFromEnv()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func (c *Config) loadFromFile(path string) error {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	return nil
}

// loadFromEnv overrides configuration from environment variables.
// Malformed numeric values are ignored and leave the previous value.
func (c *Config) loadFromEnv() {
	if val := os.Getenv("N8N_API_URL"); val != "" {
		c.N8N.URL = val
	}
	if val, ok := os.LookupEnv("N8N_API_KEY"); ok {
		c.N8N.APIKey = val
	}
	if val := os.Getenv("N8N_API_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.N8N.Timeout = d
		}
	}

	if val := os.Getenv("MCP_TRANSPORT"); val != "" {
		c.Server.Transport = val
	}
	if val := os.Getenv("HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.Server.Port = port
		}
	}
	if val := os.Getenv("MCP_BASE_URL"); val != "" {
		c.Server.BaseURL = val
	}

	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}
	if val := os.Getenv("LOG_SOURCE"); val != "" {
		c.Log.AddSource = val == "1" || strings.EqualFold(val, "true")
	}
	if val := os.Getenv("N8N_DOCTOR_DEBUG"); val == "1" || strings.EqualFold(val, "true") {
		c.Log.Level = "debug"
		c.Log.AddSource = true
	}

	if val := os.Getenv("N8N_DOCTOR_TOOLS"); val != "" {
		c.Tools = SplitList(val)
	}
	if val := os.Getenv("N8N_DOCTOR_RATE_LIMIT"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.RateLimit = n
		}
	}

	if val := os.Getenv("N8N_DOCTOR_TRACE_EXPORTER"); val != "" {
		c.Tracing.Exporter = val
	}
	if val := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); val != "" {
		c.Tracing.Endpoint = val
	}
	if val := os.Getenv("N8N_DOCTOR_TRACE_SAMPLE_RATE"); val != "" {
		if rate, err := strconv.ParseFloat(val, 64); err == nil {
			c.Tracing.SampleRate = rate
		}
	}
}

// normalize lower-cases enumerations and trims the API URL.
func (c *Config) normalize() {
	c.N8N.URL = strings.TrimRight(strings.TrimSpace(c.N8N.URL), "/")
	c.Server.Transport = strings.ToLower(c.Server.Transport)
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)
	c.Tracing.Exporter = strings.ToLower(c.Tracing.Exporter)
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	u, err := url.Parse(c.N8N.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &doctorerrors.ConfigError{Key: "n8n.url", Reason: fmt.Sprintf("must be an absolute http(s) URL, got %q", c.N8N.URL), Cause: err}
	}
	if c.N8N.Timeout < 0 {
		return &doctorerrors.ConfigError{Key: "n8n.timeout", Reason: "must be >= 0"}
	}

	switch c.Server.Transport {
	case TransportStdio, TransportSSE, TransportHTTP:
	default:
		return &doctorerrors.ConfigError{Key: "server.transport", Reason: fmt.Sprintf("unknown transport %q (must be stdio, sse, or http)", c.Server.Transport)}
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &doctorerrors.ConfigError{Key: "server.port", Reason: fmt.Sprintf("must be between 1 and 65535, got %d", c.Server.Port)}
	}
	if c.Server.ShutdownTimeout < 0 {
		return &doctorerrors.ConfigError{Key: "server.shutdown_timeout", Reason: "must be >= 0"}
	}

	if _, err := doctorlog.ParseLevel(c.Log.Level); err != nil {
		return &doctorerrors.ConfigError{Key: "log.level", Reason: "invalid log level", Cause: err}
	}
	if !doctorlog.ValidFormat(c.Log.Format) {
		return &doctorerrors.ConfigError{Key: "log.format", Reason: fmt.Sprintf("unknown format %q (must be json or text)", c.Log.Format)}
	}

	if !tracing.ValidExporter(c.Tracing.Exporter) {
		return &doctorerrors.ConfigError{Key: "tracing.exporter", Reason: fmt.Sprintf("unknown exporter %q", c.Tracing.Exporter)}
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return &doctorerrors.ConfigError{Key: "tracing.sample_rate", Reason: fmt.Sprintf("must be between 0.0 and 1.0, got %g", c.Tracing.SampleRate)}
	}

	if c.RateLimit < 0 {
		return &doctorerrors.ConfigError{Key: "rate_limit", Reason: "must be >= 0"}
	}

	return nil
}

// ResolveSecrets replaces a secret reference in N8N.APIKey with its value.
func (c *Config) ResolveSecrets(ctx context.Context, resolver *secrets.Resolver) error {
	key, err := resolver.Resolve(ctx, c.N8N.APIKey)
	if err != nil {
		return &doctorerrors.ConfigError{Key: "n8n.api_key", Reason: "failed to resolve secret reference", Cause: err}
	}
	c.N8N.APIKey = key
	return nil
}

// Addr returns the listen address for HTTP transports.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// SplitList splits a comma-separated list, dropping empty items.
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
