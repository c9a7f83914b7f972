// ABOUTME: Swarm product: agents and tools keyed by id in insertion order, plus its own agency chart.
// ABOUTME: Each swarm owns a fresh chart; removing an agent also scrubs it from the chart.
package product

import (
	"slices"

	"github.com/2389-research/swarmbase/chart"
)

// Swarm is a named collection of agents, tools and their relationship chart.
type Swarm struct {
	Base
	ParentID string
	Chart    *chart.Chart

	agents     map[string]*Agent
	agentOrder []string
	tools      map[string]*Tool
	toolOrder  []string
}

// NewSwarm returns an empty swarm named "Swarm" with its own chart.
func NewSwarm(ordinal int) *Swarm {
	return &Swarm{
		Base:   newBase(KindSwarm, ordinal),
		Chart:  chart.New(),
		agents: make(map[string]*Agent),
		tools:  make(map[string]*Tool),
	}
}

// AddAgent stores the agent under its id. Agents without an id are ignored
// and false is returned. Re-adding an id replaces the agent in place.
func (s *Swarm) AddAgent(a *Agent) bool {
	if a == nil || a.ID == "" {
		return false
	}
	if _, ok := s.agents[a.ID]; !ok {
		s.agentOrder = append(s.agentOrder, a.ID)
	}
	s.agents[a.ID] = a
	return true
}

// Agent returns the agent with the given id.
func (s *Swarm) Agent(id string) (*Agent, bool) {
	a, ok := s.agents[id]
	return a, ok
}

// Agents returns agents in insertion order.
func (s *Swarm) Agents() []*Agent {
	out := make([]*Agent, 0, len(s.agentOrder))
	for _, id := range s.agentOrder {
		out = append(out, s.agents[id])
	}
	return out
}

// RemoveAgent drops the agent from the swarm and from the chart.
func (s *Swarm) RemoveAgent(id string) {
	if _, ok := s.agents[id]; ok {
		delete(s.agents, id)
		s.agentOrder = slices.DeleteFunc(s.agentOrder, func(v string) bool { return v == id })
	}
	s.Chart.RemoveAgent(id)
}

// AddRelationship records rel in the swarm's chart.
func (s *Swarm) AddRelationship(rel chart.Relationship) {
	s.Chart.AddRelationship(rel)
}

// AddTool stores the tool under its id. Tools without an id are ignored.
func (s *Swarm) AddTool(t *Tool) bool {
	if t == nil || t.ID == "" {
		return false
	}
	if _, ok := s.tools[t.ID]; !ok {
		s.toolOrder = append(s.toolOrder, t.ID)
	}
	s.tools[t.ID] = t
	return true
}

// Tool returns the tool with the given id.
func (s *Swarm) Tool(id string) (*Tool, bool) {
	t, ok := s.tools[id]
	return t, ok
}

// Tools returns tools in insertion order.
func (s *Swarm) Tools() []*Tool {
	out := make([]*Tool, 0, len(s.toolOrder))
	for _, id := range s.toolOrder {
		out = append(out, s.tools[id])
	}
	return out
}

// ManagerAgent resolves the chart's top-level agent to the swarm's agent.
// It returns nil, nil when the chart has no top-level agent.
func (s *Swarm) ManagerAgent() (*Agent, error) {
	id, err := s.Chart.ManagerAgent()
	if err != nil || id == "" {
		return nil, err
	}
	a, ok := s.agents[id]
	if !ok {
		return nil, &UnknownAgentError{ID: id}
	}
	return a, nil
}

// UnknownAgentError is returned when the chart references an agent id that
// is not part of the swarm.
type UnknownAgentError struct {
	ID string
}

func (e *UnknownAgentError) Error() string {
	return "agent " + e.ID + " is referenced by the agency chart but not part of the swarm"
}
