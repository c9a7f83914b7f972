// ABOUTME: Creator for the swarmbasecore target: SwarmyAgency, LoggedAgent and LoggedBaseTool sources.
// ABOUTME: The agency list puts the manager first, followed by one [source, target] pair per chart edge.
package creator

import (
	"fmt"
	"strings"

	"github.com/2389-research/swarmbase/naming"
	"github.com/2389-research/swarmbase/product"
	"github.com/2389-research/swarmbase/scaffold"
)

// AgencySwarm generates projects for the swarmbasecore runtime.
type AgencySwarm struct {
	writer scaffold.Writer
}

var _ Creator = (*AgencySwarm)(nil)

func (c *AgencySwarm) Target() Target { return SwarmBaseCore }

// SwarmSource renders the module that instantiates every agent and the agency.
func (c *AgencySwarm) SwarmSource(s *product.Swarm) (string, error) {
	rels, err := agencyList(s)
	if err != nil {
		return "", err
	}

	agents := s.Agents()
	imports := make([]string, 0, len(agents))
	inits := make([]string, 0, len(agents))
	for _, a := range agents {
		imports = append(imports, fmt.Sprintf("from agents.%s import %s", a.ClassName(), a.ClassName()))
		inits = append(inits, fmt.Sprintf("%s = %s()", a.InstanceName(), a.ClassName()))
	}

	var b strings.Builder
	b.WriteString("from swarmbasecore.agency_swarm_framework import SwarmyAgency\n")
	b.WriteString(strings.Join(imports, "\n"))
	b.WriteString("\n\n")
	b.WriteString(strings.Join(inits, "\n"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s = SwarmyAgency(%s)\n", s.InstanceName(), rels)
	return b.String(), nil
}

// agencyList renders the agency chart as an unquoted list literal:
// [manager, [a, b], [b, a], ...].
func agencyList(s *product.Swarm) (string, error) {
	var items []string

	manager, err := s.ManagerAgent()
	if err != nil {
		return "", err
	}
	if manager != nil {
		items = append(items, manager.InstanceName())
	}

	for _, e := range s.Chart.Edges() {
		src, err := lookupAgent(s, e.Source)
		if err != nil {
			return "", err
		}
		dst, err := lookupAgent(s, e.Target)
		if err != nil {
			return "", err
		}
		items = append(items, fmt.Sprintf("[%s, %s]",
			naming.SnakeCase(src.InstanceName()), naming.SnakeCase(dst.InstanceName())))
	}
	return "[" + strings.Join(items, ", ") + "]", nil
}

// AgentSource renders a LoggedAgent declaration. The result has no trailing
// newline.
func (c *AgencySwarm) AgentSource(a *product.Agent) (string, error) {
	imports := make([]string, 0, len(a.Tools))
	classes := make([]string, 0, len(a.Tools))
	for _, t := range a.Tools {
		imports = append(imports, fmt.Sprintf("from tools.%s import %s", t.InstanceName(), t.ClassName()))
		classes = append(classes, t.ClassName())
	}

	description := `""`
	if a.Description != "" {
		description = `"""` + a.Description + `"""`
	}

	var b strings.Builder
	b.WriteString("from swarmbasecore.agency_swarm_framework import LoggedAgent\n")
	b.WriteString(strings.Join(imports, "\n"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s = LoggedAgent(\n", a.InstanceName())
	fmt.Fprintf(&b, "    name=\"%s\",\n", displayName(a))
	fmt.Fprintf(&b, "    description=%s,\n", description)
	fmt.Fprintf(&b, "    instructions=\"%s\",\n", a.Instructions)
	fmt.Fprintf(&b, "    tools=[%s],\n", strings.Join(classes, ", "))
	fmt.Fprintf(&b, "    model=\"%s\"\n", a.Model())
	b.WriteString(")")
	return b.String(), nil
}

// ToolSource renders a LoggedBaseTool subclass. A tool without code renders
// its body as None.
func (c *AgencySwarm) ToolSource(t *product.Tool) (string, error) {
	description := ""
	if t.Description != "" {
		description = `"""` + t.Description + `"""`
	}
	code := t.Code
	if code == "" {
		code = "None"
	}

	var b strings.Builder
	b.WriteString("from swarmbasecore.agency_swarm_framework import LoggedBaseTool\n")
	fmt.Fprintf(&b, "class %s(LoggedBaseTool):\n", t.ClassName())
	fmt.Fprintf(&b, "    %s\n", description)
	fmt.Fprintf(&b, "    %s\n", code)
	b.WriteString("    ")
	return b.String(), nil
}

func (c *AgencySwarm) mainSource(s *product.Swarm) string {
	inst := s.InstanceName()
	return fmt.Sprintf(`from %s import %s

origins = [
    "http://localhost",
    "http://localhost:8080",
    "http://wails.localhost:34115",
    "http://localhost:5173",
    "wails://wails.localhost:34115",
]

%s.serve_agency(origins)
`, inst, inst, inst)
}

// Agent packages are named after the class.
func (c *AgencySwarm) agentPackage(a *product.Agent) string { return a.ClassName() }

// CreateSwarmFiles writes the project under basePath.
func (c *AgencySwarm) CreateSwarmFiles(s *product.Swarm, basePath string) error {
	return writeTree(c, c.writer, s, basePath)
}
