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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestResolver_Literal(t *testing.T) {
	r := NewResolver("n8n-doctor-test")

	tests := []string{"", "plain-key", "https://not-a-scheme", "unknown:thing"}
	for _, value := range tests {
		got, err := r.Resolve(context.Background(), value)
		require.NoError(t, err)
		assert.Equal(t, value, got)
	}
}

func TestResolver_Env(t *testing.T) {
	t.Setenv("N8N_DOCTOR_TEST_KEY", "from-env")
	r := NewResolver("n8n-doctor-test")

	got, err := r.Resolve(context.Background(), "env:N8N_DOCTOR_TEST_KEY")
	require.NoError(t, err)
	assert.Equal(t, "from-env", got)

	_, err = r.Resolve(context.Background(), "env:N8N_DOCTOR_TEST_MISSING")
	assert.ErrorIs(t, err, ErrSecretNotFound)

	_, err = r.Resolve(context.Background(), "env:")
	assert.Error(t, err)
}

func TestResolver_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "key")
	require.NoError(t, os.WriteFile(path, []byte("  from-file\n"), 0o600))

	r := NewResolver("n8n-doctor-test")

	got, err := r.Resolve(context.Background(), "file:"+path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", got)

	_, err = r.Resolve(context.Background(), "file:"+filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, ErrSecretNotFound)

	_, err = r.Resolve(context.Background(), "file:"+dir)
	assert.Error(t, err)

	big := filepath.Join(dir, "big")
	require.NoError(t, os.WriteFile(big, []byte(strings.Repeat("x", MaxFileSize+1)), 0o600))
	_, err = r.Resolve(context.Background(), "file:"+big)
	assert.Error(t, err)
}

func TestKeychainProvider(t *testing.T) {
	keyring.MockInit()
	provider := NewKeychainProvider("n8n-doctor-test")
	r := NewResolverWithProviders(provider)

	_, err := r.Resolve(context.Background(), "keychain:api-key")
	assert.ErrorIs(t, err, ErrSecretNotFound)

	require.NoError(t, provider.Set("api-key", "from-keychain"))
	got, err := r.Resolve(context.Background(), "keychain:api-key")
	require.NoError(t, err)
	assert.Equal(t, "from-keychain", got)

	require.NoError(t, provider.Delete("api-key"))
	assert.ErrorIs(t, provider.Delete("api-key"), ErrSecretNotFound)
	assert.Error(t, provider.Set("", "x"))
}

func TestNewKeychainProvider_DefaultService(t *testing.T) {
	assert.Equal(t, KeychainService, NewKeychainProvider("").service)
}
