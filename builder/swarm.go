// ABOUTME: SwarmBuilder assembles Swarm products: member agents, tools and the agency chart.
// ABOUTME: Rehydration walks listed agents, both ends of every relationship and their tools.
package builder

import (
	"context"
	"fmt"

	"github.com/2389-research/swarmbase/chart"
	"github.com/2389-research/swarmbase/client"
	"github.com/2389-research/swarmbase/naming"
	"github.com/2389-research/swarmbase/product"
)

// SwarmBuilder builds product.Swarm values.
type SwarmBuilder struct {
	client  ResourceClient
	agents  *AgentBuilder
	counter *naming.Counter
	swarm   *product.Swarm
	err     error
}

// NewSwarmBuilder persists swarms through swarms and rehydrates members
// through agents and tools.
func NewSwarmBuilder(swarms, agents, tools ResourceClient, opts ...Option) *SwarmBuilder {
	s := applyOptions(opts)
	b := &SwarmBuilder{
		client:  swarms,
		agents:  NewAgentBuilder(agents, tools, WithCounter(s.counter)),
		counter: s.counter,
	}
	b.Reset()
	return b
}

// NewSwarmBuilderForSet wires a SwarmBuilder to the clients of one backend.
func NewSwarmBuilderForSet(set *client.Set, opts ...Option) *SwarmBuilder {
	return NewSwarmBuilder(set.Swarms, set.Agents, set.Tools, opts...)
}

// Reset discards the work in progress and starts a fresh swarm with its own chart.
func (b *SwarmBuilder) Reset() {
	b.swarm = product.NewSwarm(b.counter.Next(string(product.KindSwarm)))
	b.err = nil
}

// Err returns the first validation error seen since the last reset.
func (b *SwarmBuilder) Err() error { return b.err }

func (b *SwarmBuilder) SetID(id string) *SwarmBuilder {
	if b.err == nil {
		b.swarm.ID = id
	}
	return b
}

func (b *SwarmBuilder) SetName(name string) *SwarmBuilder {
	if b.err == nil {
		b.err = b.swarm.SetName(name)
	}
	return b
}

func (b *SwarmBuilder) SetExtraAttributes(attrs map[string]any) *SwarmBuilder {
	if b.err == nil {
		b.swarm.ExtraAttributes = attrs
	}
	return b
}

func (b *SwarmBuilder) SetParentID(id string) *SwarmBuilder {
	if b.err == nil {
		b.swarm.ParentID = id
	}
	return b
}

// AddAgent adds a member agent. Agents without an id are ignored.
func (b *SwarmBuilder) AddAgent(a *product.Agent) *SwarmBuilder {
	if b.err == nil {
		b.swarm.AddAgent(a)
	}
	return b
}

// AddAgentsRelationship records rel in the swarm's chart.
func (b *SwarmBuilder) AddAgentsRelationship(rel chart.Relationship) *SwarmBuilder {
	if b.err == nil {
		b.swarm.AddRelationship(rel)
	}
	return b
}

// AddTool adds a swarm-level tool. Tools without an id are ignored.
func (b *SwarmBuilder) AddTool(t *product.Tool) *SwarmBuilder {
	if b.err == nil {
		b.swarm.AddTool(t)
	}
	return b
}

// RemoveAgent drops the agent from the swarm and its chart.
func (b *SwarmBuilder) RemoveAgent(id string) *SwarmBuilder {
	if b.err == nil {
		b.swarm.RemoveAgent(id)
	}
	return b
}

// Build persists the swarm and returns the stored record.
func (b *SwarmBuilder) Build(ctx context.Context) (client.Record, error) {
	if b.err != nil {
		return nil, b.err
	}
	rec, err := b.client.Create(ctx, SwarmRecord(b.swarm))
	if err != nil {
		return nil, fmt.Errorf("create swarm: %w", err)
	}
	return rec, nil
}

// Product hands out the swarm and resets the builder.
func (b *SwarmBuilder) Product() (*product.Swarm, error) {
	s, err := b.swarm, b.err
	b.Reset()
	if err != nil {
		return nil, err
	}
	return s, nil
}

// FromID replaces the work in progress with the stored swarm. Every agent is
// fetched at most once; any failed fetch aborts the rehydration.
func (b *SwarmBuilder) FromID(ctx context.Context, id string) error {
	rec, err := fetch(ctx, b.client, product.KindSwarm, id)
	if err != nil {
		return err
	}
	b.Reset()
	if err := b.load(ctx, rec); err != nil {
		b.err = fmt.Errorf("swarm %s: %w", id, err)
		return b.err
	}
	return nil
}

func (b *SwarmBuilder) load(ctx context.Context, rec client.Record) error {
	s := b.swarm
	if err := loadBase(&s.Base, rec); err != nil {
		return err
	}
	s.ParentID = rec.String("parent_id")

	seen := make(map[string]*product.Agent)
	get := func(agentID string) (*product.Agent, error) {
		if a, ok := seen[agentID]; ok {
			return a, nil
		}
		if err := b.agents.FromID(ctx, agentID); err != nil {
			return nil, err
		}
		a, err := b.agents.Product()
		if err != nil {
			return nil, err
		}
		seen[agentID] = a
		s.AddAgent(a)
		for _, t := range a.Tools {
			s.AddTool(t)
		}
		return a, nil
	}

	for _, agentID := range rec.Strings("agents") {
		a, err := get(agentID)
		if err != nil {
			return err
		}
		for _, rel := range a.Relationships {
			s.AddRelationship(rel)
			if _, err := get(rel.Source); err != nil {
				return err
			}
			if _, err := get(rel.Target); err != nil {
				return err
			}
		}
	}
	return nil
}

// SwarmRecord is the create payload for a swarm. Agents are sent as id
// objects and tools by id.
func SwarmRecord(s *product.Swarm) client.Record {
	rec := baseRecord(&s.Base)
	if s.ParentID != "" {
		rec["parent_id"] = s.ParentID
	}
	agents := make([]client.Record, 0)
	for _, a := range s.Agents() {
		agents = append(agents, client.Record{"id": a.ID})
	}
	rec["agents"] = agents
	tools := make([]string, 0)
	for _, t := range s.Tools() {
		tools = append(tools, t.ID)
	}
	rec["tools"] = tools
	return rec
}
