// ABOUTME: Tests for DOT and swarm.yaml exports.
// ABOUTME: Checks rendered DOT structure, manifest round trips and strict manifest parsing.
package export_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389-research/swarmbase/chart"
	"github.com/2389-research/swarmbase/export"
	"github.com/2389-research/swarmbase/naming"
	"github.com/2389-research/swarmbase/product"
)

func sampleSwarm(t *testing.T) *product.Swarm {
	t.Helper()
	s := product.NewSwarm(1)
	s.ID = "s1"
	require.NoError(t, s.SetName("Research Team"))

	search := product.NewTool(1)
	search.ID = "t1"
	require.NoError(t, search.SetName("Web Search"))
	search.Code = "def run(self):\n    return 'ok'\n"

	mk := func(id, name string) *product.Agent {
		a := product.NewAgent(1)
		a.ID = id
		require.NoError(t, a.SetName(name))
		s.AddAgent(a)
		return a
	}
	lead := mk("a1", "Lead")
	lead.Instructions = "Delegate"
	lead.Tools = []*product.Tool{search}
	writer := mk("a2", "Writer")
	writer.ExtraAttributes["model"] = "claude-2"
	writer.ExtraAttributes["temperature"] = 0.2
	mk("a3", "Critic")

	s.AddTool(search)
	s.AddRelationship(chart.Supervision("a1", "a2"))
	s.AddRelationship(chart.Collaboration("a2", "a3"))
	return s
}

func TestExportDOT(t *testing.T) {
	out, err := export.ExportDOT(sampleSwarm(t))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "digraph research_team {\n"))
	assert.Contains(t, out, `lead [fillcolor="#90EE90", label="Lead", model="gpt-4o", role=manager, style=filled]`)
	assert.Contains(t, out, `writer [fillcolor="#ADD8E6", label="Writer", model="claude-2", role=agent, style=filled]`)
	assert.Contains(t, out, "lead -> writer [label=supervises]\n")
	assert.Contains(t, out, "writer -> critic [dir=both, label=collaborates, style=dashed]\n")
	assert.NotContains(t, out, "critic -> writer")
	assert.Contains(t, out, "subgraph cluster_tools {\n")
	assert.Contains(t, out, "lead -> tool_web_search [arrowhead=none, style=dotted]\n")
}

func TestExportDOTRejectsLintErrors(t *testing.T) {
	s := sampleSwarm(t)
	s.AddRelationship(chart.Supervision("a2", "ghost"))

	_, err := export.ExportDOT(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")

	g := export.ExportGraph(s)
	require.NotNil(t, g.FindNode("ghost"))
	assert.Equal(t, "dashed", g.FindNode("ghost").Attrs["style"])
}

func TestManifestDerivesRelationshipKinds(t *testing.T) {
	m := export.BuildManifest(sampleSwarm(t))

	assert.Equal(t, []export.ManifestRelationship{
		{Kind: "supervises", Source: "a1", Target: "a2"},
		{Kind: "collaborates", Source: "a2", Target: "a3"},
	}, m.Relationships)

	require.Len(t, m.Agents, 3)
	assert.Equal(t, "claude-2", m.Agents[1].Model)
	assert.Equal(t, map[string]any{"temperature": 0.2}, m.Agents[1].ExtraAttributes)
	assert.Equal(t, []string{"t1"}, m.Agents[0].Tools)
}

func TestYAMLRoundTrip(t *testing.T) {
	original := sampleSwarm(t)
	text, err := export.ExportYAML(original)
	require.NoError(t, err)
	assert.Contains(t, text, "name: Research Team\n")
	assert.Contains(t, text, "code: |\n")

	restored, err := export.ImportYAML([]byte(text), naming.NewCounter())
	require.NoError(t, err)

	assert.True(t, restored.Chart.Equal(original.Chart))
	assert.Equal(t, "s1", restored.ID)
	assert.Equal(t, "research_team", restored.InstanceName())

	writer, ok := restored.Agent("a2")
	require.True(t, ok)
	assert.Equal(t, "claude-2", writer.Model())
	assert.Equal(t, 0.2, writer.ExtraAttributes["temperature"])

	lead, ok := restored.Agent("a1")
	require.True(t, ok)
	require.Len(t, lead.Tools, 1)
	assert.Equal(t, "def run(self):\n    return 'ok'\n", lead.Tools[0].Code)
	assert.Equal(t, []chart.Relationship{chart.Supervision("a1", "a2")}, lead.Relationships)

	again, err := export.ExportYAML(restored)
	require.NoError(t, err)
	assert.Equal(t, text, again)
}

func TestImportYAMLDefaults(t *testing.T) {
	s, err := export.ImportYAML([]byte(`
name: Pair
agents:
  - name: Ann
  - id: b
relationships:
  - {kind: Collaborates, source: ann, target: b}
`), nil)
	require.NoError(t, err)

	ann, ok := s.Agent("ann")
	require.True(t, ok, "agents without an id use their instance name")
	assert.Equal(t, product.DefaultModel, ann.Model())

	b, ok := s.Agent("b")
	require.True(t, ok)
	assert.Equal(t, "", b.Name())
	assert.Equal(t, "Agent2", b.ClassName())

	assert.True(t, s.Chart.IsConnected("b", "ann"))
}

func TestImportYAMLErrors(t *testing.T) {
	cases := map[string]struct {
		doc  string
		want error
	}{
		"unknown kind": {
			doc:  "name: S\nagents: [{id: a}, {id: b}]\nrelationships: [{kind: mentors, source: a, target: b}]\n",
			want: chart.ErrUnknownKind,
		},
		"unknown tool": {
			doc:  "name: S\nagents: [{id: a, tools: [missing]}]\n",
			want: export.ErrUnknownTool,
		},
		"invalid name": {
			doc:  "name: 1st\n",
			want: naming.ErrInvalidIdentifier,
		},
		"reserved name": {
			doc:  "name: S\ntools: [{id: t, name: lambda}]\n",
			want: naming.ErrReservedWord,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := export.ImportYAML([]byte(tc.doc), nil)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := export.ImportYAML([]byte("agents: [unterminated"), nil)
	assert.Error(t, err)
}
