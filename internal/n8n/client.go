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

package n8n

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tombee/n8n-doctor/internal/config"
	doctorerrors "github.com/tombee/n8n-doctor/pkg/errors"
)

// APIKeyHeader carries the n8n API key on every request.
const APIKeyHeader = "X-N8N-API-KEY"

// maxErrorBody bounds how much of an error response is read for its message.
const maxErrorBody = 64 * 1024

// Client is a client for the n8n public API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// New creates a client for the API rooted at cfg.URL.
func New(cfg config.N8NConfig, opts ...Option) (*Client, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &doctorerrors.ConfigError{Key: "n8n.url", Reason: fmt.Sprintf("invalid API URL %q", cfg.URL), Cause: err}
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return c, nil
}

// BaseURL returns the API root this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListWorkflows returns every workflow in the first page of GET /workflows,
// in upstream order. A response without a data field yields an empty slice.
func (c *Client) ListWorkflows(ctx context.Context) ([]Workflow, error) {
	body, err := c.do(ctx, http.MethodGet, "/workflows", nil)
	if err != nil {
		return nil, err
	}

	var list workflowList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, &doctorerrors.DecodeError{Path: "/workflows", Cause: err}
	}
	if list.Data == nil {
		return []Workflow{}, nil
	}
	return list.Data, nil
}

// GetWorkflow returns the raw workflow document.
func (c *Client) GetWorkflow(ctx context.Context, id string) (json.RawMessage, error) {
	return c.doJSON(ctx, http.MethodGet, workflowPath(id), nil)
}

// CreateWorkflow submits wf and returns the created document.
func (c *Client) CreateWorkflow(ctx context.Context, wf *Workflow) (json.RawMessage, error) {
	return c.doJSON(ctx, http.MethodPost, "/workflows", wf)
}

// UpdateWorkflow applies patch to the workflow and returns the result.
func (c *Client) UpdateWorkflow(ctx context.Context, id string, patch map[string]any) (json.RawMessage, error) {
	return c.doJSON(ctx, http.MethodPatch, workflowPath(id), patch)
}

// DeleteWorkflow deletes the workflow. The response body is ignored.
func (c *Client) DeleteWorkflow(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, workflowPath(id), nil)
	return err
}

// SetActive activates or deactivates the workflow and returns the updated document.
func (c *Client) SetActive(ctx context.Context, id string, active bool) (json.RawMessage, error) {
	action := "deactivate"
	if active {
		action = "activate"
	}
	return c.doJSON(ctx, http.MethodPost, workflowPath(id)+"/"+action, nil)
}

// Ping checks that the API is reachable and accepts the configured key.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/workflows?limit=1", nil)
	return err
}

func workflowPath(id string) string {
	return "/workflows/" + url.PathEscape(id)
}

// doJSON performs a request and checks the response body is JSON.
func (c *Client) doJSON(ctx context.Context, method, path string, payload any) (json.RawMessage, error) {
	body, err := c.do(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, &doctorerrors.DecodeError{Path: path, Cause: fmt.Errorf("response is not valid JSON")}
	}
	return json.RawMessage(body), nil
}

// do performs one request against the API and returns the response body.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, &doctorerrors.ArgumentError{Message: "request body is not serializable", Cause: err}
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.addAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &doctorerrors.TransportError{Method: method, URL: c.baseURL + path, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &doctorerrors.StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    parseAPIError(errBody),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &doctorerrors.TransportError{Method: method, URL: c.baseURL + path, Cause: err}
	}
	return body, nil
}

// addAuth adds the API key header.
func (c *Client) addAuth(req *http.Request) {
	req.Header.Set(APIKeyHeader, c.apiKey)
}
