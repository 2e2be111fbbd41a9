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

	"github.com/zalando/go-keyring"
)

// KeychainService is the default keychain service name.
const KeychainService = "n8n-doctor"

// KeychainProvider resolves keychain: references from the system keychain
// (macOS Keychain, Secret Service on Linux, Windows Credential Manager).
type KeychainProvider struct {
	service string
}

// NewKeychainProvider creates a provider bound to one keychain service.
func NewKeychainProvider(service string) *KeychainProvider {
	if service == "" {
		service = KeychainService
	}
	return &KeychainProvider{service: service}
}

// Scheme returns the provider's reference prefix.
func (k *KeychainProvider) Scheme() string {
	return "keychain"
}

// Resolve retrieves a secret value from the system keychain.
func (k *KeychainProvider) Resolve(_ context.Context, reference string) (string, error) {
	value, err := keyring.Get(k.service, reference)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("%w: keychain entry %s", ErrSecretNotFound, reference)
		}
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return value, nil
}

// Set stores value under name in the keychain.
func (k *KeychainProvider) Set(name, value string) error {
	if name == "" {
		return fmt.Errorf("keychain entry name is required")
	}
	if err := keyring.Set(k.service, name, value); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

// Delete removes name from the keychain. Deleting a missing entry returns
// ErrSecretNotFound.
func (k *KeychainProvider) Delete(name string) error {
	if err := keyring.Delete(k.service, name); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("%w: keychain entry %s", ErrSecretNotFound, name)
		}
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}
