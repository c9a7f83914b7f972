// ABOUTME: Product types assembled by builders: Tool, Agent, Framework and Swarm.
// ABOUTME: Base carries id, validated name, extra attributes and the derived instance/class names.
package product

import (
	"fmt"

	"github.com/2389-research/swarmbase/chart"
	"github.com/2389-research/swarmbase/naming"
)

// Kind names a product type. It doubles as the default product name and as
// the prefix of fallback names.
type Kind string

const (
	KindTool      Kind = "Tool"
	KindAgent     Kind = "Agent"
	KindFramework Kind = "Framework"
	KindSwarm     Kind = "Swarm"
)

// Base holds the fields every product shares.
type Base struct {
	ID              string
	ExtraAttributes map[string]any

	name    string
	kind    Kind
	ordinal int
}

func newBase(kind Kind, ordinal int) Base {
	return Base{
		ExtraAttributes: make(map[string]any),
		name:            string(kind),
		kind:            kind,
		ordinal:         ordinal,
	}
}

// Kind returns the product type.
func (b *Base) Kind() Kind { return b.kind }

// Name returns the human name; empty when the product uses its fallback name.
func (b *Base) Name() string { return b.name }

// SetName validates and assigns the human name.
func (b *Base) SetName(name string) error {
	if err := naming.ValidateIdentifier(name); err != nil {
		return err
	}
	b.name = name
	return nil
}

// ClearName drops the human name so the derived names use the fallback
// "<Kind><ordinal>" form. Used when a remote record carries no name.
func (b *Base) ClearName() { b.name = "" }

// Ordinal is the construction-context ordinal used for fallback names.
func (b *Base) Ordinal() int { return b.ordinal }

// InstanceName is the snake_case identifier used for module and variable names.
func (b *Base) InstanceName() string {
	if b.name == "" {
		return naming.SnakeCase(b.fallbackName())
	}
	return naming.SnakeCase(b.name)
}

// ClassName is the PascalCase identifier used for class and package names.
func (b *Base) ClassName() string {
	if b.name == "" {
		return b.fallbackName()
	}
	return naming.PascalCase(b.name)
}

func (b *Base) fallbackName() string {
	return fmt.Sprintf("%s%d", b.kind, b.ordinal)
}

// Attribute returns an extra attribute rendered as a string, or def when unset.
func (b *Base) Attribute(key, def string) string {
	v, ok := b.ExtraAttributes[key]
	if !ok || v == nil {
		return def
	}
	return fmt.Sprint(v)
}

// Tool is a callable capability attached to agents.
type Tool struct {
	Base
	Description string
	Version     string
	Code        string
}

// NewTool returns a tool named "Tool" with the given fallback ordinal.
func NewTool(ordinal int) *Tool {
	return &Tool{Base: newBase(KindTool, ordinal)}
}

// DefaultModel is used when an agent has no "model" extra attribute.
const DefaultModel = "gpt-4o"

// Agent is a named participant of a swarm.
type Agent struct {
	Base
	Description   string
	Instructions  string
	Relationships []chart.Relationship
	Tools         []*Tool
}

// NewAgent returns an agent named "Agent" with the given fallback ordinal.
func NewAgent(ordinal int) *Agent {
	return &Agent{Base: newBase(KindAgent, ordinal)}
}

// Model returns the model name from extra attributes, defaulting to DefaultModel.
func (a *Agent) Model() string {
	return a.Attribute("model", DefaultModel)
}

// Framework is a collection of swarms and tools on the backend.
type Framework struct {
	Base
}

// NewFramework returns a framework named "Framework" with the given fallback ordinal.
func NewFramework(ordinal int) *Framework {
	return &Framework{Base: newBase(KindFramework, ordinal)}
}
