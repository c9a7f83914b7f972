// ABOUTME: Structural lint rules for swarms before code generation.
// ABOUTME: Lint(s) runs every check over the agency chart, agents and tools and returns diagnostics.
package lint

import (
	"fmt"
	"slices"

	"github.com/2389-research/swarmbase/creator"
	"github.com/2389-research/swarmbase/product"
)

// Severity levels, most severe first.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Diagnostic is one finding about a swarm.
type Diagnostic struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
	AgentID  string `json:"agent_id,omitempty"`
	ToolID   string `json:"tool_id,omitempty"`
	Rule     string `json:"rule"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s [%s] %s", d.Severity, d.Rule, d.Message)
}

// Lint runs all rules on the swarm.
func Lint(s *product.Swarm) []Diagnostic {
	var diags []Diagnostic

	diags = append(diags, checkTopLevel(s)...)
	diags = append(diags, checkChartMembers(s)...)
	diags = append(diags, checkSelfLoops(s)...)
	diags = append(diags, checkIsolated(s)...)
	diags = append(diags, checkReachability(s)...)
	diags = append(diags, checkDuplicateNames(s)...)
	diags = append(diags, checkAgentTools(s)...)
	diags = append(diags, checkToolCode(s)...)
	diags = append(diags, checkModels(s)...)

	return diags
}

// HasErrors reports whether any diagnostic is an error.
func HasErrors(diags []Diagnostic) bool {
	return slices.ContainsFunc(diags, func(d Diagnostic) bool { return d.Severity == SeverityError })
}

// Count returns how many diagnostics have the given severity.
func Count(diags []Diagnostic, severity string) int {
	n := 0
	for _, d := range diags {
		if d.Severity == severity {
			n++
		}
	}
	return n
}

// checkTopLevel verifies the chart has exactly one top-level agent.
func checkTopLevel(s *product.Swarm) []Diagnostic {
	id, err := s.Chart.ManagerAgent()
	if err != nil {
		return []Diagnostic{{
			Severity: SeverityError,
			Message:  err.Error(),
			Rule:     "top_level",
		}}
	}
	if id != "" {
		return nil
	}
	if s.Chart.Len() == 0 {
		if len(s.Agents()) > 1 {
			return []Diagnostic{{
				Severity: SeverityInfo,
				Message:  "swarm has agents but no relationships",
				Rule:     "top_level",
			}}
		}
		return nil
	}
	return []Diagnostic{{
		Severity: SeverityWarning,
		Message:  "agency chart has no top-level agent (every agent has an incoming edge)",
		Rule:     "top_level",
	}}
}

// checkChartMembers flags chart ids that are not agents of the swarm.
func checkChartMembers(s *product.Swarm) []Diagnostic {
	var diags []Diagnostic
	seen := make(map[string]bool)
	for _, e := range s.Chart.Edges() {
		for _, id := range []string{e.Source, e.Target} {
			if seen[id] {
				continue
			}
			seen[id] = true
			if _, ok := s.Agent(id); !ok {
				diags = append(diags, Diagnostic{
					Severity: SeverityError,
					Message:  fmt.Sprintf("agency chart references agent %q which is not part of the swarm", id),
					AgentID:  id,
					Rule:     "chart_member",
				})
			}
		}
	}
	return diags
}

// checkSelfLoops flags agents related to themselves.
func checkSelfLoops(s *product.Swarm) []Diagnostic {
	var diags []Diagnostic
	for _, e := range s.Chart.Edges() {
		if e.Source == e.Target {
			diags = append(diags, Diagnostic{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("agent %q has a relationship with itself", e.Source),
				AgentID:  e.Source,
				Rule:     "self_loop",
			})
		}
	}
	return diags
}

// checkIsolated flags agents the chart never mentions once it has edges.
// Generators import them but wire them to nobody.
func checkIsolated(s *product.Swarm) []Diagnostic {
	if len(s.Chart.Edges()) == 0 {
		return nil
	}
	var diags []Diagnostic
	for _, a := range s.Agents() {
		if !s.Chart.Mentions(a.ID) {
			diags = append(diags, Diagnostic{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("agent %q has no relationships", a.ID),
				AgentID:  a.ID,
				Rule:     "isolated",
			})
		}
	}
	return diags
}

// checkReachability walks the chart from the manager and flags agents it
// never reaches.
func checkReachability(s *product.Swarm) []Diagnostic {
	manager, err := s.Chart.ManagerAgent()
	if err != nil || manager == "" {
		return nil
	}

	visited := map[string]bool{manager: true}
	queue := []string{manager}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range s.Chart.Targets(current) {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	var diags []Diagnostic
	for _, a := range s.Agents() {
		if !visited[a.ID] && s.Chart.Mentions(a.ID) {
			diags = append(diags, Diagnostic{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("agent %q is not reachable from top-level agent %q", a.ID, manager),
				AgentID:  a.ID,
				Rule:     "reachability",
			})
		}
	}
	return diags
}

// checkDuplicateNames flags agents or tools whose generated names collide;
// their files would overwrite each other.
func checkDuplicateNames(s *product.Swarm) []Diagnostic {
	var diags []Diagnostic

	agentNames := make(map[string]string)
	for _, a := range s.Agents() {
		for _, name := range []string{a.InstanceName(), a.ClassName()} {
			if other, ok := agentNames[name]; ok && other != a.ID {
				diags = append(diags, Diagnostic{
					Severity: SeverityError,
					Message:  fmt.Sprintf("agents %q and %q both generate the name %q", other, a.ID, name),
					AgentID:  a.ID,
					Rule:     "duplicate_name",
				})
				break
			}
			agentNames[name] = a.ID
		}
	}

	toolNames := make(map[string]string)
	for _, t := range s.Tools() {
		name := t.InstanceName()
		if other, ok := toolNames[name]; ok {
			diags = append(diags, Diagnostic{
				Severity: SeverityError,
				Message:  fmt.Sprintf("tools %q and %q both generate the name %q", other, t.ID, name),
				ToolID:   t.ID,
				Rule:     "duplicate_name",
			})
			continue
		}
		toolNames[name] = t.ID
	}
	return diags
}

// checkAgentTools reports agents without tools and agent tools missing from
// the swarm, whose imports would not resolve.
func checkAgentTools(s *product.Swarm) []Diagnostic {
	var diags []Diagnostic
	for _, a := range s.Agents() {
		if len(a.Tools) == 0 {
			diags = append(diags, Diagnostic{
				Severity: SeverityInfo,
				Message:  fmt.Sprintf("agent %q has no tools", a.ID),
				AgentID:  a.ID,
				Rule:     "agent_tools",
			})
			continue
		}
		for _, t := range a.Tools {
			if _, ok := s.Tool(t.ID); !ok {
				diags = append(diags, Diagnostic{
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("agent %q uses tool %q which is not part of the swarm", a.ID, t.ID),
					AgentID:  a.ID,
					ToolID:   t.ID,
					Rule:     "agent_tools",
				})
			}
		}
	}
	return diags
}

// checkToolCode flags tools with no code.
func checkToolCode(s *product.Swarm) []Diagnostic {
	var diags []Diagnostic
	for _, t := range s.Tools() {
		if t.Code == "" {
			diags = append(diags, Diagnostic{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("tool %q has no code", t.ID),
				ToolID:   t.ID,
				Rule:     "tool_code",
			})
		}
	}
	return diags
}

// checkModels flags models the langchain target cannot construct.
func checkModels(s *product.Swarm) []Diagnostic {
	var diags []Diagnostic
	for _, a := range s.Agents() {
		if _, err := creator.LookupModel(a.Model()); err != nil {
			diags = append(diags, Diagnostic{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("agent %q uses model %q unknown to the langchain target", a.ID, a.Model()),
				AgentID:  a.ID,
				Rule:     "model",
			})
		}
	}
	return diags
}
