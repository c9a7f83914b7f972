// ABOUTME: swarm.yaml manifest export and import so a swarm can be generated without a backend.
// ABOUTME: Uses gopkg.in/yaml.v3; relationships are derived from the chart and parsed strictly on import.
package export

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/2389-research/swarmbase/chart"
	"github.com/2389-research/swarmbase/naming"
	"github.com/2389-research/swarmbase/product"
)

// ErrUnknownTool is returned when an agent lists a tool the manifest does not define.
var ErrUnknownTool = errors.New("unknown tool")

// Manifest is the swarm.yaml document.
type Manifest struct {
	ID              string                 `yaml:"id,omitempty"`
	Name            string                 `yaml:"name"`
	ParentID        string                 `yaml:"parent_id,omitempty"`
	ExtraAttributes map[string]any         `yaml:"extra_attributes,omitempty"`
	Agents          []ManifestAgent        `yaml:"agents"`
	Tools           []ManifestTool         `yaml:"tools"`
	Relationships   []ManifestRelationship `yaml:"relationships"`
}

// ManifestAgent is one agent; Tools lists tool ids.
type ManifestAgent struct {
	ID              string         `yaml:"id"`
	Name            string         `yaml:"name"`
	Description     string         `yaml:"description,omitempty"`
	Instructions    string         `yaml:"instructions,omitempty"`
	Model           string         `yaml:"model,omitempty"`
	Tools           []string       `yaml:"tools,omitempty"`
	ExtraAttributes map[string]any `yaml:"extra_attributes,omitempty"`
}

// ManifestTool is one tool with its current code.
type ManifestTool struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Version     string `yaml:"version,omitempty"`
	Code        string `yaml:"code,omitempty"`
}

// ManifestRelationship is one chart relationship.
type ManifestRelationship struct {
	Kind   string `yaml:"kind"`
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// BuildManifest converts a swarm into its manifest. Edge pairs present in
// both directions become one collaboration; everything else is supervision.
func BuildManifest(s *product.Swarm) Manifest {
	m := Manifest{
		ID:              s.ID,
		Name:            s.Name(),
		ParentID:        s.ParentID,
		ExtraAttributes: nonEmpty(s.ExtraAttributes),
		Agents:          []ManifestAgent{},
		Tools:           []ManifestTool{},
		Relationships:   []ManifestRelationship{},
	}

	for _, a := range s.Agents() {
		ma := ManifestAgent{
			ID:           a.ID,
			Name:         a.Name(),
			Description:  a.Description,
			Instructions: a.Instructions,
		}
		extra := make(map[string]any)
		for k, v := range a.ExtraAttributes {
			if k == "model" {
				ma.Model = fmt.Sprint(v)
				continue
			}
			extra[k] = v
		}
		ma.ExtraAttributes = nonEmpty(extra)
		for _, t := range a.Tools {
			ma.Tools = append(ma.Tools, t.ID)
		}
		m.Agents = append(m.Agents, ma)
	}

	for _, t := range s.Tools() {
		m.Tools = append(m.Tools, ManifestTool{
			ID:          t.ID,
			Name:        t.Name(),
			Description: t.Description,
			Version:     t.Version,
			Code:        t.Code,
		})
	}

	emitted := make(map[chart.Edge]bool)
	for _, e := range s.Chart.Edges() {
		if emitted[e] {
			continue
		}
		kind := chart.Supervises
		reverse := chart.Edge{Source: e.Target, Target: e.Source}
		if s.Chart.IsConnected(e.Target, e.Source) {
			kind = chart.Collaborates
			emitted[reverse] = true
		}
		emitted[e] = true
		m.Relationships = append(m.Relationships, ManifestRelationship{
			Kind:   string(kind),
			Source: e.Source,
			Target: e.Target,
		})
	}
	return m
}

// ExportYAML renders the swarm as a swarm.yaml manifest.
func ExportYAML(s *product.Swarm) (string, error) {
	data, err := yaml.Marshal(BuildManifest(s))
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	return string(data), nil
}

// ImportYAML parses a manifest into a swarm. Fallback names are numbered
// from counter; a nil counter starts a fresh one.
func ImportYAML(data []byte, counter *naming.Counter) (*product.Swarm, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return m.Swarm(counter)
}

// Swarm builds the product described by the manifest.
func (m Manifest) Swarm(counter *naming.Counter) (*product.Swarm, error) {
	if counter == nil {
		counter = naming.NewCounter()
	}

	s := product.NewSwarm(counter.Next(string(product.KindSwarm)))
	s.ID = m.ID
	s.ParentID = m.ParentID
	if err := setName(&s.Base, m.Name); err != nil {
		return nil, fmt.Errorf("swarm: %w", err)
	}
	for k, v := range m.ExtraAttributes {
		s.ExtraAttributes[k] = v
	}

	tools := make(map[string]*product.Tool)
	for _, mt := range m.Tools {
		t := product.NewTool(counter.Next(string(product.KindTool)))
		if err := setName(&t.Base, mt.Name); err != nil {
			return nil, fmt.Errorf("tool %s: %w", mt.ID, err)
		}
		t.ID = mt.ID
		if t.ID == "" {
			t.ID = t.InstanceName()
		}
		t.Description = mt.Description
		t.Version = mt.Version
		t.Code = mt.Code
		tools[t.ID] = t
		s.AddTool(t)
	}

	for _, ma := range m.Agents {
		a := product.NewAgent(counter.Next(string(product.KindAgent)))
		if err := setName(&a.Base, ma.Name); err != nil {
			return nil, fmt.Errorf("agent %s: %w", ma.ID, err)
		}
		a.ID = ma.ID
		if a.ID == "" {
			a.ID = a.InstanceName()
		}
		a.Description = ma.Description
		a.Instructions = ma.Instructions
		for k, v := range ma.ExtraAttributes {
			a.ExtraAttributes[k] = v
		}
		if ma.Model != "" {
			a.ExtraAttributes["model"] = ma.Model
		}
		for _, id := range ma.Tools {
			t, ok := tools[id]
			if !ok {
				return nil, fmt.Errorf("agent %s: %w: %s", a.ID, ErrUnknownTool, id)
			}
			a.Tools = append(a.Tools, t)
		}
		s.AddAgent(a)
	}

	for _, mr := range m.Relationships {
		kind, err := chart.ParseKind(mr.Kind)
		if err != nil {
			return nil, fmt.Errorf("relationship %s -> %s: %w", mr.Source, mr.Target, err)
		}
		rel := chart.NewRelationship(kind, mr.Source, mr.Target)
		if a, ok := s.Agent(mr.Source); ok {
			a.Relationships = append(a.Relationships, rel)
		}
		s.AddRelationship(rel)
	}
	return s, nil
}

func setName(b *product.Base, name string) error {
	if name == "" {
		b.ClearName()
		return nil
	}
	return b.SetName(name)
}

func nonEmpty(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	return m
}
