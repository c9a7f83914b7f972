// ABOUTME: Tests for the chart and lint views of stored swarms.
// ABOUTME: SVG rendering runs against a shell stub standing in for graphviz.
package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389-research/swarmbase/builder"
	"github.com/2389-research/swarmbase/chart"
	"github.com/2389-research/swarmbase/client"
	"github.com/2389-research/swarmbase/render"
)

// seedTeam stores swarm "team": lead supervises writer and both use search.
// With rogue set, a second top-level agent also supervises writer.
func seedTeam(t *testing.T, ts *httptest.Server, rogue bool) {
	t.Helper()
	ctx := context.Background()
	set := client.NewSet(ts.URL)

	tb := builder.NewToolBuilder(set.Tools)
	_, err := tb.SetID("search").SetName("Search").SetCode("def run(): pass").Build(ctx)
	require.NoError(t, err)
	search, err := tb.Product()
	require.NoError(t, err)

	sb := builder.NewSwarmBuilderForSet(set)
	sb.SetID("team").SetName("Team").AddTool(search)

	ab := builder.NewAgentBuilder(set.Agents, set.Tools)
	add := func(id, name string, rels ...chart.Relationship) {
		ab.SetID(id).SetName(name).AddTool(search)
		for _, rel := range rels {
			ab.AddRelationship(rel)
		}
		_, err := ab.Build(ctx)
		require.NoError(t, err)
		a, err := ab.Product()
		require.NoError(t, err)
		sb.AddAgent(a)
		for _, rel := range rels {
			sb.AddAgentsRelationship(rel)
		}
	}
	add("lead", "Lead", chart.Supervision("lead", "writer"))
	add("writer", "Writer")
	if rogue {
		add("rogue", "Rogue", chart.Supervision("rogue", "writer"))
	}

	_, err = sb.Build(ctx)
	require.NoError(t, err)
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestSwarmChartDOT(t *testing.T) {
	ts := newBackend(t, "")
	seedTeam(t, ts, false)

	resp, body := get(t, ts.URL+"/api/swarms/team/chart")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, render.ContentType("dot"), resp.Header.Get("Content-Type"))
	assert.Contains(t, body, "digraph team {")
	assert.Contains(t, body, "lead -> writer [label=supervises]")

	resp, _ = get(t, ts.URL+"/api/swarms/team/chart?format=pdf")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = get(t, ts.URL+"/api/swarms/nobody/chart")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSwarmChartSVG(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires a POSIX shell")
	}
	ts := newBackend(t, "")
	seedTeam(t, ts, false)

	prev := render.Command
	t.Cleanup(func() { render.Command = prev })

	render.Command = filepath.Join(t.TempDir(), "missing-dot")
	resp, _ := get(t, ts.URL+"/api/swarms/team/chart?format=svg")
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)

	stub := filepath.Join(t.TempDir(), "dot")
	require.NoError(t, os.WriteFile(stub, []byte("#!/bin/sh\ncat >/dev/null\necho '<svg/>'\n"), 0o755))
	render.Command = stub

	resp, body := get(t, ts.URL+"/api/swarms/team/chart?format=svg")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.Equal(t, "<svg/>\n", body)

	_, _ = get(t, ts.URL+"/api/swarms/team/chart")
	assert.Equal(t, 1, cachedCharts(t, ts), "only the svg is stored")

	require.NoError(t, client.NewSwarmClient(ts.URL).Delete(context.Background(), "team"))
	assert.Equal(t, 0, cachedCharts(t, ts))
}

func cachedCharts(t *testing.T, ts *httptest.Server) int {
	t.Helper()
	resp, body := get(t, ts.URL+"/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var health struct {
		CachedCharts int `json:"cached_charts"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &health))
	return health.CachedCharts
}

func TestSwarmLint(t *testing.T) {
	ts := newBackend(t, "")
	seedTeam(t, ts, true)

	resp, body := get(t, ts.URL+"/api/swarms/team/lint")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	var report struct {
		Errors      int `json:"errors"`
		Warnings    int `json:"warnings"`
		Diagnostics []struct {
			Severity string `json:"severity"`
			Rule     string `json:"rule"`
		} `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &report))
	assert.Equal(t, 1, report.Errors)
	require.NotEmpty(t, report.Diagnostics)
	assert.Equal(t, "error", report.Diagnostics[0].Severity)
	assert.Equal(t, "top_level", report.Diagnostics[0].Rule)

	resp, body = get(t, ts.URL+"/api/swarms/team/chart")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Contains(t, body, "rogue -> writer [label=supervises]")
}
