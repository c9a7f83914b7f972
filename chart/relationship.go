// ABOUTME: Typed, immutable relationship records between two agents of a swarm.
// ABOUTME: Kinds are collaborates (bidirectional) and supervises (directed); ParseKind is strict.
package chart

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the type of a relationship between two agents.
type Kind string

const (
	// Collaborates connects two agents in both directions.
	Collaborates Kind = "collaborates"
	// Supervises connects a supervising agent to the agent it supervises.
	Supervises Kind = "supervises"
)

// ErrUnknownKind is returned by ParseKind for values outside the known set.
var ErrUnknownKind = errors.New("unknown relationship kind")

// ParseKind converts a wire value into a Kind. Matching is case-insensitive
// but otherwise strict: decoding a remote record with an unknown kind fails
// even though Chart.AddRelationship itself tolerates one.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case Collaborates:
		return Collaborates, nil
	case Supervises:
		return Supervises, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Relationship is a directed, typed edge between two agent IDs. It is a plain
// value: copies never alias and there are no mutators.
type Relationship struct {
	Kind   Kind   `json:"relationship_type" yaml:"kind"`
	Source string `json:"source_agent_id" yaml:"source"`
	Target string `json:"target_agent_id" yaml:"target"`
}

// NewRelationship builds a relationship of the given kind.
func NewRelationship(kind Kind, source, target string) Relationship {
	return Relationship{Kind: kind, Source: source, Target: target}
}

// Collaboration is shorthand for NewRelationship(Collaborates, a, b).
func Collaboration(a, b string) Relationship {
	return NewRelationship(Collaborates, a, b)
}

// Supervision is shorthand for NewRelationship(Supervises, supervisor, worker).
func Supervision(supervisor, worker string) Relationship {
	return NewRelationship(Supervises, supervisor, worker)
}

func (r Relationship) String() string {
	return fmt.Sprintf("%s(%s, %s)", r.Kind, r.Source, r.Target)
}
