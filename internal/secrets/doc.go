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

// Package secrets resolves credential references used in configuration.
//
// A configured value is either a literal or a reference of the form
// scheme:name:
//
//	env:MY_N8N_KEY         value of the MY_N8N_KEY environment variable
//	file:/run/secrets/n8n  trimmed contents of the file
//	keychain:api-key       entry "api-key" of the n8n-doctor keychain service
//
// Anything without a recognized scheme prefix is returned unchanged.
package secrets
