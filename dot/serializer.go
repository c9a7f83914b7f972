// ABOUTME: Serializer that renders a Graph as DOT source with deterministic output.
// ABOUTME: Also colors nodes by their swarm role (manager, agent, tool).
package dot

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Node roles recognised by ApplyRoleColors.
const (
	RoleManager = "manager"
	RoleAgent   = "agent"
	RoleTool    = "tool"
)

// Serialize renders g. Nodes and edges keep insertion order and attributes
// within each element are sorted by key.
func Serialize(g *Graph) string {
	var b strings.Builder

	fmt.Fprintf(&b, "digraph %s {\n", quoteID(g.Name))

	if len(g.Attrs) > 0 {
		fmt.Fprintf(&b, "  graph [%s]\n", formatAttrs(g.Attrs))
	}
	if len(g.NodeDefaults) > 0 {
		fmt.Fprintf(&b, "  node [%s]\n", formatAttrs(g.NodeDefaults))
	}
	if len(g.EdgeDefaults) > 0 {
		fmt.Fprintf(&b, "  edge [%s]\n", formatAttrs(g.EdgeDefaults))
	}
	if len(g.Attrs) > 0 || len(g.NodeDefaults) > 0 || len(g.EdgeDefaults) > 0 {
		b.WriteString("\n")
	}

	for _, node := range g.Nodes {
		if len(node.Attrs) > 0 {
			fmt.Fprintf(&b, "  %s [%s]\n", quoteID(node.ID), formatAttrs(node.Attrs))
		} else {
			fmt.Fprintf(&b, "  %s\n", quoteID(node.ID))
		}
	}

	if len(g.Nodes) > 0 && len(g.Clusters) > 0 {
		b.WriteString("\n")
	}

	for _, c := range g.Clusters {
		fmt.Fprintf(&b, "  subgraph %s {\n", quoteID("cluster_"+c.Name))
		for _, k := range sortedKeys(c.Attrs) {
			fmt.Fprintf(&b, "    %s=%s\n", k, quoteValue(c.Attrs[k]))
		}
		for _, id := range c.NodeIDs {
			fmt.Fprintf(&b, "    %s\n", quoteID(id))
		}
		b.WriteString("  }\n")
	}

	if (len(g.Nodes) > 0 || len(g.Clusters) > 0) && len(g.Edges) > 0 {
		b.WriteString("\n")
	}

	for _, e := range g.Edges {
		if len(e.Attrs) > 0 {
			fmt.Fprintf(&b, "  %s -> %s [%s]\n", quoteID(e.From), quoteID(e.To), formatAttrs(e.Attrs))
		} else {
			fmt.Fprintf(&b, "  %s -> %s\n", quoteID(e.From), quoteID(e.To))
		}
	}

	b.WriteString("}\n")
	return b.String()
}

// ApplyRoleColors fills nodes according to their "role" attribute.
func ApplyRoleColors(g *Graph) {
	roleColors := map[string]string{
		RoleManager: "#90EE90", // green
		RoleAgent:   "#ADD8E6", // blue
		RoleTool:    "#FFA500", // orange
	}
	for _, node := range g.Nodes {
		if node.Attrs == nil {
			continue
		}
		if color, ok := roleColors[node.Attrs["role"]]; ok {
			node.Attrs["fillcolor"] = color
			node.Attrs["style"] = "filled"
		}
	}
}

func formatAttrs(attrs map[string]string) string {
	keys := sortedKeys(attrs)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, quoteValue(attrs[k])))
	}
	return strings.Join(parts, ", ")
}

func quoteID(id string) string {
	if needsQuoting(id) {
		return quoteValue(id)
	}
	return id
}

// quoteValue returns a DOT-safe representation of a value. Lowercase
// identifiers and numbers stay bare; everything else is quoted and escaped.
func quoteValue(val string) string {
	if val == "" {
		return `""`
	}
	if isBareIdentifier(val) {
		return val
	}

	var b strings.Builder
	b.WriteByte('"')
	for _, ch := range val {
		switch ch {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(ch)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func isBareIdentifier(val string) bool {
	if val == "" {
		return false
	}
	if isNumeric(val) {
		return true
	}
	for _, ch := range val {
		if ch != '_' && !unicode.IsLower(ch) && !unicode.IsDigit(ch) {
			return false
		}
	}
	return true
}

func isNumeric(val string) bool {
	if val == "" {
		return false
	}
	start := 0
	if val[0] == '-' {
		if len(val) == 1 {
			return false
		}
		start = 1
	}
	hasDot := false
	hasDigit := false
	for i := start; i < len(val); i++ {
		ch := val[i]
		switch {
		case ch == '.':
			if hasDot {
				return false
			}
			hasDot = true
		case ch >= '0' && ch <= '9':
			hasDigit = true
		default:
			return false
		}
	}
	return hasDigit
}

func needsQuoting(val string) bool {
	return !isBareIdentifier(val)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
