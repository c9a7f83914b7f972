// ABOUTME: Framework creators turn a Swarm into runnable Python project sources for a target framework.
// ABOUTME: Targets are an explicit enumeration; New rejects unknown targets before touching the filesystem.
package creator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/2389-research/swarmbase/product"
	"github.com/2389-research/swarmbase/scaffold"
)

// Target selects the framework generated code runs on.
type Target string

const (
	// SwarmBaseCore generates code for the agency_swarm based runtime.
	SwarmBaseCore Target = "swarmbasecore"
	// Langchain generates a langgraph StateGraph.
	Langchain Target = "langchain"
)

// Targets lists every supported target.
func Targets() []Target {
	return []Target{SwarmBaseCore, Langchain}
}

var (
	// ErrUnknownCreator is returned by New for targets outside Targets().
	ErrUnknownCreator = errors.New("unknown creator type")
	// ErrNoManager is returned when a target needs a top-level agent and the
	// chart has none.
	ErrNoManager = errors.New("swarm has no top-level agent")
)

// ParseTarget converts a user supplied name into a Target.
func ParseTarget(s string) (Target, error) {
	t := Target(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Targets() {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownCreator, s)
}

// Creator renders swarm, agent and tool sources and lays them out on disk.
type Creator interface {
	Target() Target
	SwarmSource(s *product.Swarm) (string, error)
	AgentSource(a *product.Agent) (string, error)
	ToolSource(t *product.Tool) (string, error)
	// CreateSwarmFiles writes <basePath>/<swarm>/ and everything below it.
	CreateSwarmFiles(s *product.Swarm, basePath string) error
}

// New returns the creator for target.
func New(target Target, opts ...Option) (Creator, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	switch target {
	case SwarmBaseCore:
		return &AgencySwarm{writer: o.writer}, nil
	case Langchain:
		return &LangchainGraph{writer: o.writer}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownCreator, target)
}

// Option configures a creator.
type Option func(*options)

type options struct {
	writer scaffold.Writer
}

// WithWriter overrides the scaffold writer, e.g. to change file modes.
func WithWriter(w scaffold.Writer) Option {
	return func(o *options) { o.writer = w }
}

// displayName is the human agent name, falling back to the class name for
// agents that carry none.
func displayName(a *product.Agent) string {
	if a.Name() != "" {
		return a.Name()
	}
	return a.ClassName()
}

// lookupAgent resolves a chart id to the swarm's agent.
func lookupAgent(s *product.Swarm, id string) (*product.Agent, error) {
	a, ok := s.Agent(id)
	if !ok {
		return nil, &product.UnknownAgentError{ID: id}
	}
	return a, nil
}
