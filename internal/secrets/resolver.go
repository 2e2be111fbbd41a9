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

package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrSecretNotFound is returned when a reference names a missing secret.
	ErrSecretNotFound = errors.New("secret not found")

	// ErrBackendUnavailable is returned when a backend cannot be reached.
	ErrBackendUnavailable = errors.New("secret backend unavailable")
)

// MaxFileSize is the maximum allowed secret file size (64KB).
const MaxFileSize = 64 * 1024

// Provider resolves references for one scheme.
type Provider interface {
	// Scheme returns the reference prefix handled by this provider.
	Scheme() string

	// Resolve returns the secret for the part of the reference after "scheme:".
	Resolve(ctx context.Context, reference string) (string, error)
}

// Resolver dispatches references to providers by scheme.
type Resolver struct {
	providers map[string]Provider
}

// NewResolver creates a resolver with the env, file and keychain providers.
// service is the keychain service name.
func NewResolver(service string) *Resolver {
	return NewResolverWithProviders(
		envProvider{},
		fileProvider{},
		NewKeychainProvider(service),
	)
}

// NewResolverWithProviders creates a resolver over an explicit provider set.
func NewResolverWithProviders(providers ...Provider) *Resolver {
	r := &Resolver{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Scheme()] = p
	}
	return r
}

// Resolve returns the secret named by value, or value itself when it is not
// a reference.
func (r *Resolver) Resolve(ctx context.Context, value string) (string, error) {
	scheme, ref, ok := strings.Cut(value, ":")
	if !ok {
		return value, nil
	}
	provider, known := r.providers[scheme]
	if !known {
		return value, nil
	}
	if ref == "" {
		return "", fmt.Errorf("empty %s reference", scheme)
	}

	secret, err := provider.Resolve(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("resolve %s:%s: %w", scheme, ref, err)
	}
	return secret, nil
}

type envProvider struct{}

func (envProvider) Scheme() string { return "env" }

func (envProvider) Resolve(_ context.Context, reference string) (string, error) {
	value, ok := os.LookupEnv(reference)
	if !ok {
		return "", fmt.Errorf("%w: environment variable %s is not set", ErrSecretNotFound, reference)
	}
	return value, nil
}

type fileProvider struct{}

func (fileProvider) Scheme() string { return "file" }

func (fileProvider) Resolve(_ context.Context, reference string) (string, error) {
	info, err := os.Stat(reference)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrSecretNotFound, reference)
		}
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", reference)
	}
	if info.Size() > MaxFileSize {
		return "", fmt.Errorf("%s exceeds %d bytes", reference, MaxFileSize)
	}

	data, err := os.ReadFile(reference)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
