// ABOUTME: Tests for the agency chart: edge insertion rules, removal, path search, and manager lookup.
// ABOUTME: Includes the cycle-termination and fresh-accumulator regressions for FindPath.
package chart_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389-research/swarmbase/chart"
)

// build returns a chart populated with the given relationships in order.
func build(rels ...chart.Relationship) *chart.Chart {
	c := chart.New()
	for _, r := range rels {
		c.AddRelationship(r)
	}
	return c
}

func TestCollaborationIsSymmetric(t *testing.T) {
	c := build(
		chart.Collaboration("a", "b"),
		chart.Collaboration("b", "c"),
		chart.Collaboration("d", "a"),
	)

	ids := []string{"a", "b", "c", "d"}
	for _, x := range ids {
		for _, y := range ids {
			assert.Equal(t, c.IsConnected(x, y), c.IsConnected(y, x), "%s<->%s", x, y)
		}
	}
	assert.True(t, c.IsConnected("a", "d"))
}

func TestSupervisionIsDirected(t *testing.T) {
	c := build(chart.Supervision("a", "b"))

	assert.True(t, c.IsConnected("a", "b"))
	assert.False(t, c.IsConnected("b", "a"))

	c.AddRelationship(chart.Supervision("b", "a"))
	assert.True(t, c.IsConnected("b", "a"), "explicit reverse relationship adds the reverse edge")
}

func TestUnknownKindFallsBackToBidirectional(t *testing.T) {
	c := build(chart.NewRelationship(chart.Kind("mentors"), "a", "b"))

	assert.True(t, c.IsConnected("a", "b"))
	assert.True(t, c.IsConnected("b", "a"))
}

func TestDuplicateInsertionIsNoOp(t *testing.T) {
	c := build(
		chart.Supervision("a", "b"),
		chart.Supervision("a", "b"),
		chart.Collaboration("a", "b"),
	)

	assert.Equal(t, []string{"b"}, c.Targets("a"))
	assert.Equal(t, []string{"a"}, c.Targets("b"))
	assert.Len(t, c.Edges(), 2)
}

func TestOnlySourcesBecomeKeys(t *testing.T) {
	c := build(chart.Supervision("a", "b"))

	assert.Equal(t, []string{"a"}, c.Agents())
	assert.True(t, c.Mentions("b"))
	assert.False(t, c.Mentions("z"))
}

func TestRemoveAgentScrubsEverything(t *testing.T) {
	c := build(
		chart.Collaboration("a", "b"),
		chart.Supervision("a", "c"),
		chart.Supervision("c", "x"),
		chart.Collaboration("x", "b"),
	)

	c.RemoveAgent("x")

	for _, other := range []string{"a", "b", "c"} {
		assert.False(t, c.IsConnected("x", other))
		assert.False(t, c.IsConnected(other, "x"))
	}
	assert.False(t, c.Mentions("x"))
	assert.True(t, c.IsConnected("a", "b"))
}

func TestRemoveAgentIsIdempotent(t *testing.T) {
	c := build(chart.Collaboration("a", "b"))
	before := build(chart.Collaboration("a", "b"))

	c.RemoveAgent("nobody")
	assert.True(t, c.Equal(before))

	c.RemoveAgent("a")
	c.RemoveAgent("a")
	assert.Equal(t, []string{"b"}, c.Agents())
	assert.Empty(t, c.Targets("b"))
}

func TestIsConnectedUnknownSource(t *testing.T) {
	c := chart.New()
	assert.False(t, c.IsConnected("a", "b"))
}

func TestFindPathToSelf(t *testing.T) {
	c := chart.New()
	path, ok := c.FindPath("a", "a")
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, path)
}

func TestFindPathFollowsDirectedEdges(t *testing.T) {
	c := build(
		chart.Supervision("a", "b"),
		chart.Supervision("b", "c"),
		chart.Supervision("a", "d"),
	)

	path, ok := c.FindPath("a", "c")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, path)

	_, ok = c.FindPath("c", "a")
	assert.False(t, ok)
}

func TestFindPathTerminatesOnCycle(t *testing.T) {
	c := build(
		chart.Supervision("a", "b"),
		chart.Supervision("b", "c"),
		chart.Supervision("c", "a"),
	)

	path, ok := c.FindPath("a", "c")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, path)

	_, ok = c.FindPath("a", "zzz")
	assert.False(t, ok, "unreachable target in a cyclic chart returns no path")
}

func TestFindPathOnEmptyChart(t *testing.T) {
	c := chart.New()
	path, ok := c.FindPath("a", "b")
	assert.False(t, ok)
	assert.Nil(t, path)
}

func TestFindPathCallsDoNotShareState(t *testing.T) {
	first := build(chart.Supervision("a", "b"), chart.Supervision("b", "c"))
	second := build(chart.Supervision("x", "y"))

	p1, ok := first.FindPath("a", "c")
	require.True(t, ok)

	p2, ok := second.FindPath("x", "y")
	require.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, p2, "second chart sees no nodes visited by the first")

	p3, ok := first.FindPath("a", "c")
	require.True(t, ok)
	assert.Equal(t, p1, p3, "repeated calls start from an empty path")

	p1[0] = "mutated"
	p4, _ := first.FindPath("a", "c")
	assert.Equal(t, "a", p4[0], "returned paths are not retained by the chart")
}

func TestManagerAgentScenario(t *testing.T) {
	c := build(
		chart.Collaboration("A", "B"),
		chart.Supervision("A", "C"),
	)

	assert.True(t, c.IsConnected("A", "B"))
	assert.True(t, c.IsConnected("B", "A"))
	assert.True(t, c.IsConnected("A", "C"))
	assert.False(t, c.IsConnected("C", "A"))

	// Collaboration gives A an incoming edge from B, and C is never a key, so
	// no key is free of incoming edges.
	manager, err := c.ManagerAgent()
	require.NoError(t, err)
	assert.Empty(t, manager)

	// Removing the collaborator leaves A as the only source.
	c.RemoveAgent("B")
	manager, err = c.ManagerAgent()
	require.NoError(t, err)
	assert.Equal(t, "A", manager)
}

func TestManagerAgentSingleSupervisor(t *testing.T) {
	c := build(
		chart.Supervision("A", "B"),
		chart.Supervision("A", "C"),
		chart.Collaboration("B", "C"),
	)

	manager, err := c.ManagerAgent()
	require.NoError(t, err)
	assert.Equal(t, "A", manager)
}

func TestManagerAgentMultipleTopLevel(t *testing.T) {
	c := build(
		chart.Supervision("A", "B"),
		chart.Supervision("C", "B"),
	)

	_, err := c.ManagerAgent()
	require.Error(t, err)
	assert.True(t, errors.Is(err, chart.ErrMultipleTopLevelAgents))

	var multi *chart.MultipleTopLevelAgentsError
	require.True(t, errors.As(err, &multi))
	assert.Equal(t, []string{"A", "C"}, multi.Agents)
}

func TestManagerAgentTransientInvalidState(t *testing.T) {
	c := build(
		chart.Supervision("A", "B"),
		chart.Supervision("C", "B"),
	)
	_, err := c.ManagerAgent()
	require.Error(t, err)

	c.AddRelationship(chart.Supervision("A", "C"))
	manager, err := c.ManagerAgent()
	require.NoError(t, err)
	assert.Equal(t, "A", manager)
}

func TestManagerAgentNone(t *testing.T) {
	manager, err := chart.New().ManagerAgent()
	require.NoError(t, err)
	assert.Empty(t, manager)

	cyclic := build(chart.Collaboration("a", "b"))
	manager, err = cyclic.ManagerAgent()
	require.NoError(t, err)
	assert.Empty(t, manager, "fully cyclic chart has no top-level agent")
}

func TestIndependentChartsDoNotShareState(t *testing.T) {
	first := chart.New()
	second := chart.New()

	first.AddRelationship(chart.Supervision("a", "b"))

	assert.Zero(t, second.Len())
	assert.False(t, second.IsConnected("a", "b"))
}

func TestEqualIgnoresOrder(t *testing.T) {
	one := build(chart.Supervision("a", "b"), chart.Supervision("a", "c"))
	two := build(chart.Supervision("a", "c"), chart.Supervision("a", "b"))
	three := build(chart.Supervision("a", "c"))

	assert.True(t, one.Equal(two))
	assert.False(t, one.Equal(three))
	assert.False(t, one.Equal(nil))
}

func TestEdgesOrder(t *testing.T) {
	c := build(chart.Supervision("m", "x"), chart.Collaboration("x", "y"))
	assert.Equal(t, []chart.Edge{
		{Source: "m", Target: "x"},
		{Source: "x", Target: "y"},
		{Source: "y", Target: "x"},
	}, c.Edges())
	assert.Equal(t, "AgencyChart(m -> [x]; x -> [y]; y -> [x])", c.String())
}

func TestParseKind(t *testing.T) {
	k, err := chart.ParseKind("Supervises")
	require.NoError(t, err)
	assert.Equal(t, chart.Supervises, k)

	k, err = chart.ParseKind("collaborates")
	require.NoError(t, err)
	assert.Equal(t, chart.Collaborates, k)

	_, err = chart.ParseKind("mentors")
	assert.ErrorIs(t, err, chart.ErrUnknownKind)
}
