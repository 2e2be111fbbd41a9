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
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"

	"github.com/tombee/n8n-doctor/internal/config"
	doctorlog "github.com/tombee/n8n-doctor/internal/log"
	"github.com/tombee/n8n-doctor/internal/n8n"
	"github.com/tombee/n8n-doctor/internal/secrets"
	"github.com/tombee/n8n-doctor/internal/tools"
	"github.com/tombee/n8n-doctor/internal/tracing"
	"github.com/tombee/n8n-doctor/pkg/httpclient"
)

// Flag names that override configuration when set on a command.
const (
	FlagTransport = "transport"
	FlagHost      = "host"
	FlagPort      = "port"
	FlagTools     = "tools"
	FlagRateLimit = "rate-limit"
)

// LoadConfig loads configuration from the --config file and the
// environment, applies any override flags set on flags, and resolves the
// API key reference.
func LoadConfig(ctx context.Context, flags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(GetConfigPath())
	if err != nil {
		return nil, NewConfigError("failed to load configuration", err)
	}

	if GetVerbose() {
		cfg.Log.Level = "debug"
	} else if GetQuiet() {
		cfg.Log.Level = "error"
	}

	if flags != nil {
		if err := applyFlagOverrides(cfg, flags); err != nil {
			return nil, NewConfigError("invalid flag", err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, NewConfigError("invalid configuration", err)
		}
	}

	if err := cfg.ResolveSecrets(ctx, secrets.NewResolver(secrets.KeychainService)); err != nil {
		return nil, NewConfigError("failed to resolve N8N_API_KEY", err)
	}

	return cfg, nil
}

func applyFlagOverrides(cfg *config.Config, flags *pflag.FlagSet) error {
	if flags.Changed(FlagTransport) {
		v, err := flags.GetString(FlagTransport)
		if err != nil {
			return err
		}
		cfg.Server.Transport = strings.ToLower(v)
	}
	if flags.Changed(FlagHost) {
		v, err := flags.GetString(FlagHost)
		if err != nil {
			return err
		}
		cfg.Server.Host = v
	}
	if flags.Changed(FlagPort) {
		v, err := flags.GetInt(FlagPort)
		if err != nil {
			return err
		}
		cfg.Server.Port = v
	}
	if flags.Changed(FlagTools) {
		v, err := flags.GetStringSlice(FlagTools)
		if err != nil {
			return err
		}
		cfg.Tools = v
	}
	if flags.Changed(FlagRateLimit) {
		v, err := flags.GetInt(FlagRateLimit)
		if err != nil {
			return err
		}
		cfg.RateLimit = v
	}
	return nil
}

// Runtime holds the components built from a configuration.
type Runtime struct {
	Config     *config.Config
	Logger     *slog.Logger
	Telemetry  *tracing.Provider
	Client     *n8n.Client
	Dispatcher *tools.Dispatcher
}

// RuntimeOptions customizes NewRuntime.
type RuntimeOptions struct {
	// Limiter gates tool calls. Nil means unlimited.
	Limiter tools.Limiter

	// LogOutput defaults to stderr.
	LogOutput io.Writer
}

// NewRuntime builds the logger, telemetry, n8n client and dispatcher.
func NewRuntime(ctx context.Context, cfg *config.Config, opts RuntimeOptions) (*Runtime, error) {
	logger := doctorlog.New(&doctorlog.Config{
		Level:     cfg.Log.Level,
		Format:    doctorlog.Format(cfg.Log.Format),
		Output:    opts.LogOutput,
		AddSource: cfg.Log.AddSource,
	})

	telemetry, err := tracing.NewProvider(ctx, tracing.Config{
		ServiceName:    "n8n-doctor",
		ServiceVersion: version,
		Exporter:       cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		Insecure:       cfg.Tracing.Insecure,
		SampleRate:     cfg.Tracing.SampleRate,
	})
	if err != nil {
		return nil, NewConfigError("failed to initialize telemetry", err)
	}

	httpClient, err := httpclient.New(httpclient.Config{
		Timeout:   cfg.N8N.Timeout,
		UserAgent: UserAgent(),
		Logger:    doctorlog.WithComponent(logger, "n8n-client"),
		Recorder:  telemetry.Metrics(),
	})
	if err != nil {
		return nil, errors.Join(NewConfigError("invalid HTTP client configuration", err), telemetry.Shutdown(ctx))
	}

	client, err := n8n.New(cfg.N8N, n8n.WithHTTPClient(httpClient))
	if err != nil {
		return nil, errors.Join(NewConfigError("invalid n8n configuration", err), telemetry.Shutdown(ctx))
	}

	registry, err := tools.NewRegistry(cfg.Tools)
	if err != nil {
		return nil, errors.Join(NewConfigError("invalid tool selection", err), telemetry.Shutdown(ctx))
	}

	dispatcher, err := tools.NewDispatcher(tools.Options{
		Registry: registry,
		Client:   client,
		Limiter:  opts.Limiter,
		Logger:   logger,
		Metrics:  telemetry.Metrics(),
	})
	if err != nil {
		return nil, errors.Join(err, telemetry.Shutdown(ctx))
	}

	logger.Debug("runtime initialized",
		slog.String("n8n_url", client.BaseURL()),
		slog.String("api_key", doctorlog.SanitizeAPIKey(cfg.N8N.APIKey)),
		slog.Int("tools", len(registry.Tools())),
	)

	return &Runtime{
		Config:     cfg,
		Logger:     logger,
		Telemetry:  telemetry,
		Client:     client,
		Dispatcher: dispatcher,
	}, nil
}

// Close flushes telemetry.
func (r *Runtime) Close(ctx context.Context) error {
	return r.Telemetry.Shutdown(ctx)
}
