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
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/n8n-doctor/internal/config"
	doctorerrors "github.com/tombee/n8n-doctor/pkg/errors"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	APIKey string
	Body   string
}

// fakeAPI is an httptest n8n that records requests and replies with a fixed
// status and body.
type fakeAPI struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func newFakeAPI(t *testing.T, status int, body string) (*fakeAPI, *Client) {
	t.Helper()
	f := &fakeAPI{status: status, body: body}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Query:  r.URL.RawQuery,
			APIKey: r.Header.Get(APIKeyHeader),
			Body:   string(data),
		})
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		_, _ = io.WriteString(w, f.body)
	}))
	t.Cleanup(srv.Close)

	c, err := New(config.N8NConfig{URL: srv.URL + "/api/v1/", APIKey: "test-key"})
	require.NoError(t, err)
	return f, c
}

func (f *fakeAPI) only(t *testing.T) recordedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.Len(t, f.requests, 1)
	return f.requests[0]
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New(config.N8NConfig{URL: "not a url"})
	var cfgErr *doctorerrors.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestListWorkflows(t *testing.T) {
	f, c := newFakeAPI(t, http.StatusOK, `{"data":[
		{"id":"1","name":"first","active":true,"nodes":[],"createdAt":"2024-01-01T00:00:00.000Z"},
		{"id":"2","name":"second","active":false,"nodes":[]}
	],"nextCursor":null}`)

	workflows, err := c.ListWorkflows(context.Background())
	require.NoError(t, err)
	require.Len(t, workflows, 2)
	assert.Equal(t, "1", workflows[0].ID)
	assert.True(t, workflows[0].Active)
	assert.Equal(t, "2024-01-01T00:00:00.000Z", workflows[0].CreatedAt)
	assert.Equal(t, "second", workflows[1].Name)

	req := f.only(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/v1/workflows", req.Path)
	assert.Equal(t, "test-key", req.APIKey)
}

func TestListWorkflows_NumericID(t *testing.T) {
	_, c := newFakeAPI(t, http.StatusOK, `{"data":[
		{"id":1,"name":"legacy","active":true,"nodes":[]},
		{"id":"abc","name":"current","nodes":[]},
		{"name":"draft","nodes":[]}
	]}`)

	workflows, err := c.ListWorkflows(context.Background())
	require.NoError(t, err)
	require.Len(t, workflows, 3)
	assert.Equal(t, "1", workflows[0].Summary().ID)
	assert.Equal(t, "legacy", workflows[0].Name)
	assert.True(t, workflows[0].Active)
	assert.Equal(t, "abc", workflows[1].ID)
	assert.Empty(t, workflows[2].ID)

	out, err := json.Marshal(workflows[0].Summary())
	require.NoError(t, err)
	assert.Contains(t, string(out), `"id":"1"`)
}

func TestWorkflow_UnmarshalID(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{`{"id":"7"}`, "7", false},
		{`{"id":42}`, "42", false},
		{`{"id":null}`, "", false},
		{`{}`, "", false},
		{`{"id":{"x":1}}`, "", true},
		{`{"id":true}`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var wf Workflow
			err := json.Unmarshal([]byte(tt.raw), &wf)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, wf.ID)
		})
	}
}

func TestListWorkflows_MissingData(t *testing.T) {
	_, c := newFakeAPI(t, http.StatusOK, `{}`)

	workflows, err := c.ListWorkflows(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, workflows)
	assert.Empty(t, workflows)
}

func TestListWorkflows_DecodeError(t *testing.T) {
	_, c := newFakeAPI(t, http.StatusOK, `<html>`)

	_, err := c.ListWorkflows(context.Background())
	var decErr *doctorerrors.DecodeError
	assert.True(t, errors.As(err, &decErr))
}

func TestGetWorkflow_EscapesID(t *testing.T) {
	f, c := newFakeAPI(t, http.StatusOK, `{"id":"a/b","name":"x"}`)

	raw, err := c.GetWorkflow(context.Background(), "a/b")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"a/b","name":"x"}`, string(raw))

	f.mu.Lock()
	defer f.mu.Unlock()
	require.Len(t, f.requests, 1)
	assert.Equal(t, "/api/v1/workflows/a%2Fb", f.requests[0].Path)
}

func TestCreateWorkflow(t *testing.T) {
	f, c := newFakeAPI(t, http.StatusOK, `{"id":"42","name":"created"}`)

	wf := DefaultWorkflow("ignored", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	raw, err := c.CreateWorkflow(context.Background(), wf)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"42","name":"created"}`, string(raw))

	req := f.only(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/v1/workflows", req.Path)

	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.Body), &sent))
	assert.Equal(t, "Workflow generated 2025-01-02T03:04:05Z", sent["name"])
	assert.NotContains(t, sent, "active")
	assert.NotContains(t, sent, "id")
	assert.Len(t, sent["nodes"], 2)
}

func TestUpdateWorkflow(t *testing.T) {
	f, c := newFakeAPI(t, http.StatusOK, `{"id":"7","name":"renamed"}`)

	_, err := c.UpdateWorkflow(context.Background(), "7", map[string]any{"name": "renamed"})
	require.NoError(t, err)

	req := f.only(t)
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "/api/v1/workflows/7", req.Path)
	assert.JSONEq(t, `{"name":"renamed"}`, req.Body)
}

func TestDeleteWorkflow_IgnoresBody(t *testing.T) {
	f, c := newFakeAPI(t, http.StatusOK, `not json`)

	require.NoError(t, c.DeleteWorkflow(context.Background(), "9"))

	req := f.only(t)
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/api/v1/workflows/9", req.Path)
}

func TestSetActive(t *testing.T) {
	tests := []struct {
		active bool
		path   string
	}{
		{true, "/api/v1/workflows/3/activate"},
		{false, "/api/v1/workflows/3/deactivate"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			f, c := newFakeAPI(t, http.StatusOK, `{"id":"3"}`)

			_, err := c.SetActive(context.Background(), "3", tt.active)
			require.NoError(t, err)

			req := f.only(t)
			assert.Equal(t, http.MethodPost, req.Method)
			assert.Equal(t, tt.path, req.Path)
		})
	}
}

func TestPing(t *testing.T) {
	f, c := newFakeAPI(t, http.StatusOK, `{"data":[]}`)

	require.NoError(t, c.Ping(context.Background()))

	req := f.only(t)
	assert.Equal(t, "/api/v1/workflows", req.Path)
	assert.Equal(t, "limit=1", req.Query)
}

func TestStatusError(t *testing.T) {
	_, c := newFakeAPI(t, http.StatusNotFound, `{"message":"Not Found"}`)

	_, err := c.GetWorkflow(context.Background(), "missing")
	var statusErr *doctorerrors.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, "Not Found", statusErr.Message)
	assert.Equal(t, "/workflows/missing", statusErr.Path)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(config.N8NConfig{URL: url})
	require.NoError(t, err)

	_, err = c.ListWorkflows(context.Background())
	var transportErr *doctorerrors.TransportError
	assert.True(t, errors.As(err, &transportErr))
}

func TestDefaultWorkflow(t *testing.T) {
	a := DefaultWorkflow("send an email every morning", time.Now())
	b := DefaultWorkflow("", time.Now())

	for _, wf := range []*Workflow{a, b} {
		require.Len(t, wf.Nodes, 2)
		assert.Equal(t, NodeTypeWebhook, wf.Nodes[0].Type)
		assert.Equal(t, NodeTypeNoOp, wf.Nodes[1].Type)
		assert.NotEqual(t, wf.Nodes[0].ID, wf.Nodes[1].ID)

		require.Len(t, wf.Connections, 1)
		conn, ok := wf.Connections[wf.Nodes[0].Name]
		require.True(t, ok)
		require.Len(t, conn.Main, 1)
		require.Len(t, conn.Main[0], 1)
		assert.Equal(t, wf.Nodes[1].Name, conn.Main[0][0].Node)
		assert.NotNil(t, wf.Settings)
	}
}
