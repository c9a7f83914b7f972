// ABOUTME: Renders a swarm's agency chart as a Graphviz DOT digraph.
// ABOUTME: Supervision is a solid arrow, collaboration a single two-way dashed edge, tools sit in a cluster.
package export

import (
	"fmt"
	"strings"

	"github.com/2389-research/swarmbase/dot"
	"github.com/2389-research/swarmbase/lint"
	"github.com/2389-research/swarmbase/product"
)

// ExportDOT lints the swarm and renders it. Lint errors abort the export;
// warnings are acceptable.
func ExportDOT(s *product.Swarm) (string, error) {
	var errs []string
	for _, d := range lint.Lint(s) {
		if d.Severity == lint.SeverityError {
			errs = append(errs, d.Message)
		}
	}
	if len(errs) > 0 {
		return "", fmt.Errorf("swarm has validation errors: %s", strings.Join(errs, "; "))
	}
	return dot.Serialize(ExportGraph(s)), nil
}

// ExportGraph builds the DOT graph without validating the swarm. Chart ids
// that are not swarm agents appear as bare nodes.
func ExportGraph(s *product.Swarm) *dot.Graph {
	g := dot.NewGraph(s.InstanceName())
	g.Attrs["label"] = s.ClassName()
	g.Attrs["rankdir"] = "TB"
	g.NodeDefaults["shape"] = "box"
	g.NodeDefaults["fontname"] = "Helvetica"

	manager, _ := s.Chart.ManagerAgent()

	nodeID := func(agentID string) string {
		if a, ok := s.Agent(agentID); ok {
			return a.InstanceName()
		}
		return agentID
	}

	for _, a := range s.Agents() {
		role := dot.RoleAgent
		if a.ID == manager {
			role = dot.RoleManager
		}
		label := a.ClassName()
		if a.Name() != "" {
			label = a.Name()
		}
		g.AddNode(&dot.Node{ID: a.InstanceName(), Attrs: map[string]string{
			"label": label,
			"role":  role,
			"model": a.Model(),
		}})
	}
	for _, e := range s.Chart.Edges() {
		for _, id := range []string{e.Source, e.Target} {
			if _, ok := s.Agent(id); !ok && g.FindNode(id) == nil {
				g.AddNode(&dot.Node{ID: id, Attrs: map[string]string{"style": "dashed"}})
			}
		}
	}

	for _, e := range s.Chart.Edges() {
		from, to := nodeID(e.Source), nodeID(e.Target)
		if s.Chart.IsConnected(e.Target, e.Source) {
			if g.HasEdge(to, from) {
				continue
			}
			g.AddEdge(&dot.Edge{From: from, To: to, Attrs: map[string]string{
				"dir":   "both",
				"style": "dashed",
				"label": "collaborates",
			}})
			continue
		}
		g.AddEdge(&dot.Edge{From: from, To: to, Attrs: map[string]string{"label": "supervises"}})
	}

	if tools := s.Tools(); len(tools) > 0 {
		cluster := &dot.Cluster{Name: "tools", Attrs: map[string]string{"label": "Tools", "style": "rounded"}}
		for _, t := range tools {
			id := "tool_" + t.InstanceName()
			g.AddNode(&dot.Node{ID: id, Attrs: map[string]string{
				"label": t.ClassName(),
				"role":  dot.RoleTool,
				"shape": "component",
			}})
			cluster.NodeIDs = append(cluster.NodeIDs, id)
		}
		g.Clusters = append(g.Clusters, cluster)

		for _, a := range s.Agents() {
			for _, t := range a.Tools {
				if _, ok := s.Tool(t.ID); !ok {
					continue
				}
				g.AddEdge(&dot.Edge{From: a.InstanceName(), To: "tool_" + t.InstanceName(), Attrs: map[string]string{
					"style":     "dotted",
					"arrowhead": "none",
				}})
			}
		}
	}

	dot.ApplyRoleColors(g)
	return g
}
