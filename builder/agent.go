// ABOUTME: AgentBuilder assembles Agent products with relationships and tools.
// ABOUTME: Rehydration parses relationship kinds strictly and fetches each tool through a ToolBuilder.
package builder

import (
	"context"
	"fmt"

	"github.com/2389-research/swarmbase/chart"
	"github.com/2389-research/swarmbase/client"
	"github.com/2389-research/swarmbase/naming"
	"github.com/2389-research/swarmbase/product"
)

// AgentBuilder builds product.Agent values.
type AgentBuilder struct {
	client  ResourceClient
	tools   *ToolBuilder
	counter *naming.Counter
	agent   *product.Agent
	err     error
}

// NewAgentBuilder persists agents through agents and resolves their tools
// through tools.
func NewAgentBuilder(agents, tools ResourceClient, opts ...Option) *AgentBuilder {
	s := applyOptions(opts)
	b := &AgentBuilder{
		client:  agents,
		tools:   NewToolBuilder(tools, WithCounter(s.counter)),
		counter: s.counter,
	}
	b.Reset()
	return b
}

// Reset discards the work in progress and starts a fresh agent.
func (b *AgentBuilder) Reset() {
	b.agent = product.NewAgent(b.counter.Next(string(product.KindAgent)))
	b.err = nil
}

// Err returns the first validation error seen since the last reset.
func (b *AgentBuilder) Err() error { return b.err }

func (b *AgentBuilder) SetID(id string) *AgentBuilder {
	if b.err == nil {
		b.agent.ID = id
	}
	return b
}

func (b *AgentBuilder) SetName(name string) *AgentBuilder {
	if b.err == nil {
		b.err = b.agent.SetName(name)
	}
	return b
}

func (b *AgentBuilder) SetExtraAttributes(attrs map[string]any) *AgentBuilder {
	if b.err == nil {
		b.agent.ExtraAttributes = attrs
	}
	return b
}

func (b *AgentBuilder) SetDescription(d string) *AgentBuilder {
	if b.err == nil {
		b.agent.Description = d
	}
	return b
}

func (b *AgentBuilder) SetInstructions(s string) *AgentBuilder {
	if b.err == nil {
		b.agent.Instructions = s
	}
	return b
}

// SetModel stores the model under the "model" extra attribute.
func (b *AgentBuilder) SetModel(model string) *AgentBuilder {
	if b.err == nil {
		if b.agent.ExtraAttributes == nil {
			b.agent.ExtraAttributes = make(map[string]any)
		}
		b.agent.ExtraAttributes["model"] = model
	}
	return b
}

func (b *AgentBuilder) AddRelationship(rel chart.Relationship) *AgentBuilder {
	if b.err == nil {
		b.agent.Relationships = append(b.agent.Relationships, rel)
	}
	return b
}

func (b *AgentBuilder) AddTool(t *product.Tool) *AgentBuilder {
	if b.err == nil && t != nil {
		b.agent.Tools = append(b.agent.Tools, t)
	}
	return b
}

// Build persists the agent and returns the stored record.
func (b *AgentBuilder) Build(ctx context.Context) (client.Record, error) {
	if b.err != nil {
		return nil, b.err
	}
	rec, err := b.client.Create(ctx, AgentRecord(b.agent))
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}
	return rec, nil
}

// Product hands out the agent and resets the builder.
func (b *AgentBuilder) Product() (*product.Agent, error) {
	a, err := b.agent, b.err
	b.Reset()
	if err != nil {
		return nil, err
	}
	return a, nil
}

// FromID replaces the work in progress with the stored agent, its
// relationships and its tools.
func (b *AgentBuilder) FromID(ctx context.Context, id string) error {
	rec, err := fetch(ctx, b.client, product.KindAgent, id)
	if err != nil {
		return err
	}
	b.Reset()
	if err := b.load(ctx, rec); err != nil {
		b.err = err
		return err
	}
	return nil
}

func (b *AgentBuilder) load(ctx context.Context, rec client.Record) error {
	a := b.agent
	if err := loadBase(&a.Base, rec); err != nil {
		return err
	}
	a.Description = rec.String("description")
	a.Instructions = rec.String("instructions")

	for _, r := range rec.Records("relationships") {
		kind, err := chart.ParseKind(r.String("relationship_type"))
		if err != nil {
			return fmt.Errorf("agent %s relationship: %w", a.ID, err)
		}
		a.Relationships = append(a.Relationships,
			chart.NewRelationship(kind, r.String("source_agent_id"), r.String("target_agent_id")))
	}

	for _, toolID := range rec.Strings("tools") {
		if err := b.tools.FromID(ctx, toolID); err != nil {
			return fmt.Errorf("agent %s: %w", a.ID, err)
		}
		t, err := b.tools.Product()
		if err != nil {
			return err
		}
		a.Tools = append(a.Tools, t)
	}
	return nil
}

// AgentRecord is the create payload for an agent. Tools are sent by id.
func AgentRecord(a *product.Agent) client.Record {
	rec := baseRecord(&a.Base)
	rec["description"] = a.Description
	rec["instructions"] = a.Instructions

	rels := make([]client.Record, 0, len(a.Relationships))
	for _, r := range a.Relationships {
		rels = append(rels, RelationshipRecord(r))
	}
	rec["relationships"] = rels

	tools := make([]string, 0, len(a.Tools))
	for _, t := range a.Tools {
		if t.ID != "" {
			tools = append(tools, t.ID)
		}
	}
	rec["tools"] = tools
	return rec
}

// RelationshipRecord is the wire form of a relationship.
func RelationshipRecord(r chart.Relationship) client.Record {
	return client.Record{
		"relationship_type": string(r.Kind),
		"source_agent_id":   r.Source,
		"target_agent_id":   r.Target,
	}
}
