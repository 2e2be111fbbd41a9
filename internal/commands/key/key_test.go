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

package key

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/tombee/n8n-doctor/internal/commands/shared"
	"github.com/tombee/n8n-doctor/internal/secrets"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand()
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	var stdout bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestKeySet_FromStdin(t *testing.T) {
	keyring.MockInit()

	out, err := run(t, "  n8n_api_secret\n", "set")
	require.NoError(t, err)
	assert.Contains(t, out, "keychain:api-key")

	value, err := keyring.Get(secrets.KeychainService, EntryName)
	require.NoError(t, err)
	assert.Equal(t, "n8n_api_secret", value)
}

func TestKeySet_Empty(t *testing.T) {
	keyring.MockInit()

	_, err := run(t, "\n", "set")
	require.Error(t, err)
	assert.Equal(t, shared.ExitFailure, shared.ExitCode(err))
	assert.Contains(t, err.Error(), "cannot be empty")
}

func TestKeyDelete(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set(secrets.KeychainService, EntryName, "value"))

	out, err := run(t, "", "delete")
	require.NoError(t, err)
	assert.Contains(t, out, "removed")

	_, err = keyring.Get(secrets.KeychainService, EntryName)
	assert.ErrorIs(t, err, keyring.ErrNotFound)

	out, err = run(t, "", "delete")
	require.NoError(t, err)
	assert.Contains(t, out, "no API key stored")
}

func TestKeyCommand_Subcommands(t *testing.T) {
	cmd := NewCommand()
	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"set", "delete"}, names)
}
