// ABOUTME: Agency chart: adjacency-set graph of agent relationships with path and manager queries.
// ABOUTME: Keys and targets keep insertion order so code generated from a chart is deterministic.
package chart

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrMultipleTopLevelAgents is matched by MultipleTopLevelAgentsError via errors.Is.
var ErrMultipleTopLevelAgents = errors.New("swarm cannot contain multiple top-level agents")

// MultipleTopLevelAgentsError reports every agent that has no incoming edge
// when more than one exists.
type MultipleTopLevelAgentsError struct {
	Agents []string
}

func (e *MultipleTopLevelAgentsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMultipleTopLevelAgents, strings.Join(e.Agents, ", "))
}

func (e *MultipleTopLevelAgentsError) Unwrap() error {
	return ErrMultipleTopLevelAgents
}

// Edge is a single directed connection in the chart.
type Edge struct {
	Source string
	Target string
}

// Chart is a directed graph from agent ID to the set of agents it can reach
// directly. Only relationship sources get an entry; a pure SUPERVISES target
// exists in the chart solely as a member of its supervisor's set.
//
// The zero value is not usable; call New.
type Chart struct {
	order   []string
	targets map[string][]string
}

// New returns an empty chart.
func New() *Chart {
	return &Chart{targets: make(map[string][]string)}
}

// AddRelationship inserts the edges implied by rel. Collaboration adds both
// directions and supervision adds source->target. Any other kind falls back
// to the bidirectional rule. Re-adding an existing edge is a no-op.
func (c *Chart) AddRelationship(rel Relationship) {
	switch rel.Kind {
	case Supervises:
		c.addDirected(rel.Source, rel.Target)
	default:
		// Collaborates, and unknown kinds by fallback.
		c.addBidirectional(rel.Source, rel.Target)
	}
}

func (c *Chart) addDirected(source, target string) {
	if _, ok := c.targets[source]; !ok {
		c.order = append(c.order, source)
		c.targets[source] = nil
	}
	if slices.Contains(c.targets[source], target) {
		return
	}
	c.targets[source] = append(c.targets[source], target)
}

func (c *Chart) addBidirectional(a, b string) {
	c.addDirected(a, b)
	c.addDirected(b, a)
}

// RemoveAgent drops the agent's own entry and scrubs it from every other
// agent's target set. Removing an unknown agent is a no-op.
func (c *Chart) RemoveAgent(id string) {
	if _, ok := c.targets[id]; ok {
		delete(c.targets, id)
		c.order = slices.DeleteFunc(c.order, func(s string) bool { return s == id })
	}
	for source, targets := range c.targets {
		if slices.Contains(targets, id) {
			c.targets[source] = slices.DeleteFunc(targets, func(s string) bool { return s == id })
		}
	}
}

// IsConnected reports whether there is a direct edge from source to target.
func (c *Chart) IsConnected(source, target string) bool {
	return slices.Contains(c.targets[source], target)
}

// FindPath returns some path from source to target (not necessarily the
// shortest) using depth-first search. FindPath(a, a) is always [a].
func (c *Chart) FindPath(source, target string) ([]string, bool) {
	path := c.findPath(source, target, nil)
	return path, path != nil
}

// findPath never mutates the caller's path: each level works on its own copy,
// so sibling branches and separate top-level calls cannot observe each other.
func (c *Chart) findPath(source, target string, path []string) []string {
	path = append(slices.Clone(path), source)
	if source == target {
		return path
	}
	next, ok := c.targets[source]
	if !ok {
		return nil
	}
	for _, node := range next {
		if slices.Contains(path, node) {
			continue
		}
		if found := c.findPath(node, target, path); found != nil {
			return found
		}
	}
	return nil
}

// ManagerAgent returns the single agent with no incoming edges. It returns ""
// when there is none (empty or fully cyclic chart) and a
// *MultipleTopLevelAgentsError when there are several.
func (c *Chart) ManagerAgent() (string, error) {
	incoming := make(map[string]bool)
	for _, targets := range c.targets {
		for _, t := range targets {
			incoming[t] = true
		}
	}

	var candidates []string
	for _, id := range c.order {
		if !incoming[id] {
			candidates = append(candidates, id)
		}
	}

	switch len(candidates) {
	case 0:
		return "", nil
	case 1:
		return candidates[0], nil
	default:
		return "", &MultipleTopLevelAgentsError{Agents: candidates}
	}
}

// Agents returns the chart's keys in insertion order.
func (c *Chart) Agents() []string {
	return slices.Clone(c.order)
}

// Targets returns the outgoing neighbours of id in insertion order.
func (c *Chart) Targets(id string) []string {
	return slices.Clone(c.targets[id])
}

// Edges returns every directed edge, grouped by source in insertion order.
func (c *Chart) Edges() []Edge {
	var edges []Edge
	for _, source := range c.order {
		for _, target := range c.targets[source] {
			edges = append(edges, Edge{Source: source, Target: target})
		}
	}
	return edges
}

// Len returns the number of keys in the chart.
func (c *Chart) Len() int {
	return len(c.order)
}

// Mentions reports whether id appears anywhere in the chart, as a key or as a target.
func (c *Chart) Mentions(id string) bool {
	if _, ok := c.targets[id]; ok {
		return true
	}
	for _, targets := range c.targets {
		if slices.Contains(targets, id) {
			return true
		}
	}
	return false
}

// Equal reports whether both charts hold the same keys and the same target
// sets, ignoring insertion order.
func (c *Chart) Equal(other *Chart) bool {
	if other == nil || len(c.targets) != len(other.targets) {
		return false
	}
	for source, targets := range c.targets {
		theirs, ok := other.targets[source]
		if !ok || len(theirs) != len(targets) {
			return false
		}
		for _, t := range targets {
			if !slices.Contains(theirs, t) {
				return false
			}
		}
	}
	return true
}

func (c *Chart) String() string {
	var b strings.Builder
	b.WriteString("AgencyChart(")
	for i, source := range c.order {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s -> [%s]", source, strings.Join(c.targets[source], " "))
	}
	b.WriteString(")")
	return b.String()
}
