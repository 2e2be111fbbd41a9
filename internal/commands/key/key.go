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

// Package key implements the commands that store the n8n API key in the
// system keychain.
package key

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tombee/n8n-doctor/internal/commands/shared"
	"github.com/tombee/n8n-doctor/internal/secrets"
)

// EntryName is the keychain entry that holds the API key.
const EntryName = "api-key"

// NewCommand creates the key command
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the n8n API key in the system keychain",
		Long: `Store or remove the n8n API key in the system keychain (macOS Keychain,
Secret Service on Linux, Windows Credential Manager).

After storing the key, reference it instead of exporting the raw value:
  export N8N_API_KEY=keychain:` + EntryName,
	}

	cmd.AddCommand(newSetCommand())
	cmd.AddCommand(newDeleteCommand())

	return cmd
}

func newSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set",
		Short: "Store the API key",
		Long: `Store the n8n API key. The value is read from stdin when piped,
otherwise it is prompted for without echo.

Examples:
  n8n-doctor key set
  echo "$KEY" | n8n-doctor key set`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			value, err := readKey(cmd)
			if err != nil {
				return shared.NewFailure("failed to read API key", err)
			}
			if value == "" {
				return shared.NewFailure("API key cannot be empty", nil)
			}

			provider := secrets.NewKeychainProvider(secrets.KeychainService)
			if err := provider.Set(EntryName, value); err != nil {
				return shared.NewFailure("failed to store API key", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK("API key stored in keychain"))
			fmt.Fprintln(cmd.OutOrStdout(), shared.Muted.Render("Set N8N_API_KEY=keychain:"+EntryName+" to use it"))
			return nil
		},
	}
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			provider := secrets.NewKeychainProvider(secrets.KeychainService)
			if err := provider.Delete(EntryName); err != nil {
				if errors.Is(err, secrets.ErrSecretNotFound) {
					fmt.Fprintln(cmd.OutOrStdout(), shared.RenderWarn("no API key stored"))
					return nil
				}
				return shared.NewFailure("failed to delete API key", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK("API key removed from keychain"))
			return nil
		},
	}
}

// readKey reads the key from piped input, or prompts on a terminal.
func readKey(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Enter n8n API key (hidden): ")
		data, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(data)), nil
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
