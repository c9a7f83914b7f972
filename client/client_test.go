// ABOUTME: Tests for the resource client against an httptest backend.
// ABOUTME: Covers routes, headers, empty bodies and how non-2xx responses surface.
package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389-research/swarmbase/client"
)

type seenRequest struct {
	Method  string
	Path    string
	Escaped string
	Query   string
	Body    map[string]any
	Header  http.Header
}

// recorder is a tiny backend that logs requests and answers from a route table.
type recorder struct {
	mu       sync.Mutex
	requests []seenRequest
	routes   map[string]func(w http.ResponseWriter)
}

func newRecorder(t *testing.T) (*recorder, *httptest.Server) {
	t.Helper()
	rec := &recorder{routes: make(map[string]func(w http.ResponseWriter))}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		var body map[string]any
		if len(data) > 0 {
			_ = json.Unmarshal(data, &body)
		}
		rec.mu.Lock()
		rec.requests = append(rec.requests, seenRequest{
			Method:  r.Method,
			Path:    r.URL.Path,
			Escaped: r.URL.EscapedPath(),
			Query:   r.URL.RawQuery,
			Body:    body,
			Header:  r.Header.Clone(),
		})
		handler, ok := rec.routes[r.Method+" "+r.URL.Path]
		rec.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusOK)
			return
		}
		handler(w)
	}))
	t.Cleanup(srv.Close)
	return rec, srv
}

func (r *recorder) on(route string, status int, body string) {
	r.routes[route] = func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func (r *recorder) last() seenRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[len(r.requests)-1]
}

func TestCRUDRoutes(t *testing.T) {
	rec, srv := newRecorder(t)
	rec.on("POST /api/tools", http.StatusCreated, `{"id":"t1","name":"Search"}`)
	rec.on("GET /api/tools", http.StatusOK, `[{"id":"t1"},{"id":"t2"}]`)
	rec.on("GET /api/tools/t1", http.StatusOK, `{"id":"t1","name":"Search"}`)
	rec.on("PUT /api/tools/t1", http.StatusOK, `{"id":"t1","name":"Lookup"}`)
	rec.on("DELETE /api/tools/t1", http.StatusNoContent, ``)

	c := client.New(srv.URL, client.Tools)
	ctx := context.Background()

	created, err := c.Create(ctx, client.Record{"name": "Search"})
	require.NoError(t, err)
	assert.Equal(t, "t1", created.ID())
	assert.Equal(t, "Search", rec.last().Body["name"])

	all, err := c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := c.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Search", got.String("name"))

	updated, err := c.Update(ctx, "t1", client.Record{"name": "Lookup"})
	require.NoError(t, err)
	assert.Equal(t, "Lookup", updated.String("name"))
	assert.Equal(t, http.MethodPut, rec.last().Method)

	require.NoError(t, c.Delete(ctx, "t1"))
	assert.Equal(t, "/api/tools/t1", rec.last().Path)
}

func TestIDsAreEscaped(t *testing.T) {
	rec, srv := newRecorder(t)
	ctx := context.Background()
	tools := client.New(srv.URL, client.Tools)

	for _, id := range []string{"tool#1", "a/b", "q?x=1", "50%"} {
		_, err := tools.Get(ctx, id)
		require.NoError(t, err)
	}
	agents := client.NewAgentClient(srv.URL)
	require.NoError(t, agents.RemoveRelationship(ctx, "lead/1", "writer#2"))

	require.Len(t, rec.requests, 5)
	assert.Equal(t, "/api/tools/tool%231", rec.requests[0].Escaped)
	assert.Equal(t, "/api/tools/tool#1", rec.requests[0].Path)
	assert.Equal(t, "/api/tools/a%2Fb", rec.requests[1].Escaped)
	assert.Equal(t, "/api/tools/q?x=1", rec.requests[2].Path)
	assert.Empty(t, rec.requests[2].Query)
	assert.Equal(t, "/api/tools/50%", rec.requests[3].Path)
	assert.Equal(t, "/api/agents/lead%2F1/relationships/writer%232", rec.requests[4].Escaped)
}

func TestEmptyBodyYieldsNilRecord(t *testing.T) {
	_, srv := newRecorder(t)
	c := client.New(srv.URL, client.Agents)

	got, err := c.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNon2xxIsAPIError(t *testing.T) {
	rec, srv := newRecorder(t)
	rec.on("GET /api/swarms/s1", http.StatusNotFound, `{"error":"not found"}`)
	rec.on("GET /api/swarms/s2", http.StatusInternalServerError, `boom`)
	c := client.New(srv.URL, client.Swarms)

	_, err := c.Get(context.Background(), "s1")
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrNotFound)

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "GET")
	assert.Contains(t, apiErr.Error(), "404 Not Found")

	_, err = c.Get(context.Background(), "s2")
	require.Error(t, err)
	assert.False(t, errors.Is(err, client.ErrNotFound))
	assert.True(t, strings.HasSuffix(err.Error(), ": boom"))
}

func TestHeaders(t *testing.T) {
	rec, srv := newRecorder(t)
	c := client.New(srv.URL, client.Agents, client.WithToken("s3cret"))

	_, err := c.List(context.Background())
	require.NoError(t, err)

	h := rec.last().Header
	assert.Equal(t, "Bearer s3cret", h.Get("Authorization"))
	assert.Equal(t, "application/json", h.Get("Content-Type"))
	assert.NotEmpty(t, h.Get("X-Request-ID"))
}

func TestBaseURLWithoutScheme(t *testing.T) {
	c := client.New("127.0.0.1:5000/", client.Frameworks)
	assert.Equal(t, "http://127.0.0.1:5000", c.BaseURL())
	assert.Equal(t, client.Frameworks, c.Resource())
}

func TestSubResourceRoutes(t *testing.T) {
	rec, srv := newRecorder(t)
	set := client.NewSet(srv.URL)
	ctx := context.Background()

	cases := []struct {
		name   string
		call   func() error
		method string
		path   string
	}{
		{"assign tool", func() error { _, err := set.Agents.AssignTool(ctx, "a1", client.Record{"id": "t1"}); return err }, "POST", "/api/agents/a1/tools"},
		{"remove tool", func() error { return set.Agents.RemoveTool(ctx, "a1", client.Record{"id": "t1"}) }, "DELETE", "/api/agents/a1/tools"},
		{"tools", func() error { _, err := set.Agents.Tools(ctx, "a1"); return err }, "GET", "/api/agents/a1/tools"},
		{"add relationship", func() error {
			_, err := set.Agents.AddRelationship(ctx, "a1", client.Record{"relationship_type": "supervises", "target_agent_id": "a2"})
			return err
		}, "POST", "/api/agents/a1/relationships"},
		{"relationships", func() error { _, err := set.Agents.Relationships(ctx, "a1"); return err }, "GET", "/api/agents/a1/relationships"},
		{"remove relationship", func() error { return set.Agents.RemoveRelationship(ctx, "a1", "a2") }, "DELETE", "/api/agents/a1/relationships/a2"},
		{"add swarm", func() error { _, err := set.Frameworks.AddSwarm(ctx, "f1", client.Record{"id": "s1"}); return err }, "POST", "/api/frameworks/f1/swarms"},
		{"remove swarm", func() error { return set.Frameworks.RemoveSwarm(ctx, "f1", client.Record{"id": "s1"}) }, "DELETE", "/api/frameworks/f1/swarms"},
		{"framework tool", func() error { _, err := set.Frameworks.AddTool(ctx, "f1", client.Record{"id": "t1"}); return err }, "POST", "/api/frameworks/f1/tools"},
		{"add agent", func() error { _, err := set.Swarms.AddAgent(ctx, "s1", client.Record{"id": "a1"}); return err }, "POST", "/api/swarms/s1/agents"},
		{"remove agent", func() error { return set.Swarms.RemoveAgent(ctx, "s1", client.Record{"id": "a1"}) }, "DELETE", "/api/swarms/s1/agents"},
		{"tool get", func() error { _, err := set.Tools.Get(ctx, "t1"); return err }, "GET", "/api/tools/t1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, tc.call())
			got := rec.last()
			assert.Equal(t, tc.method, got.Method)
			assert.Equal(t, tc.path, got.Path)
		})
	}
}

func TestRecordAccessors(t *testing.T) {
	var r client.Record
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "a1",
		"name": null,
		"count": 3,
		"extra_attributes": {"model": "gpt-4o"},
		"tools": ["t1", {"id": "t2"}, {"name": "no id"}, 7],
		"relationships": [{"relationship_type": "supervises"}, "junk"]
	}`), &r))

	assert.Equal(t, "a1", r.ID())
	assert.Equal(t, "", r.String("name"))
	assert.Equal(t, "", r.String("missing"))
	assert.Equal(t, "3", r.String("count"))
	assert.Equal(t, "gpt-4o", r.Map("extra_attributes")["model"])
	assert.Nil(t, r.Map("name"))
	assert.Equal(t, []string{"t1", "t2"}, r.Strings("tools"))
	assert.Len(t, r.Records("relationships"), 1)
	assert.Empty(t, r.Records("missing"))
}
