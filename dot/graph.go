// ABOUTME: Graph model for rendering agency charts as Graphviz DOT: nodes, edges and clusters.
// ABOUTME: Nodes keep insertion order; attribute maps are rendered with sorted keys.
package dot

import "slices"

// Graph is a DOT digraph.
type Graph struct {
	Name         string
	Attrs        map[string]string // graph-level attributes
	NodeDefaults map[string]string // node [...] defaults
	EdgeDefaults map[string]string // edge [...] defaults
	Nodes        []*Node
	Edges        []*Edge
	Clusters     []*Cluster
}

// Node is a graph node with key-value attributes.
type Node struct {
	ID    string
	Attrs map[string]string
}

// Edge is a directed edge; dir=both renders it as a two-way arrow.
type Edge struct {
	From  string
	To    string
	Attrs map[string]string
}

// Cluster groups nodes into a labelled subgraph.
type Cluster struct {
	Name    string
	Attrs   map[string]string
	NodeIDs []string
}

// NewGraph returns an empty graph.
func NewGraph(name string) *Graph {
	return &Graph{
		Name:         name,
		Attrs:        make(map[string]string),
		NodeDefaults: make(map[string]string),
		EdgeDefaults: make(map[string]string),
	}
}

// AddNode adds n, replacing an existing node with the same ID in place.
func (g *Graph) AddNode(n *Node) {
	if i := g.nodeIndex(n.ID); i >= 0 {
		g.Nodes[i] = n
		return
	}
	g.Nodes = append(g.Nodes, n)
}

// AddEdge appends an edge.
func (g *Graph) AddEdge(e *Edge) {
	g.Edges = append(g.Edges, e)
}

// FindNode returns the node with the given ID, or nil.
func (g *Graph) FindNode(id string) *Node {
	if i := g.nodeIndex(id); i >= 0 {
		return g.Nodes[i]
	}
	return nil
}

func (g *Graph) nodeIndex(id string) int {
	return slices.IndexFunc(g.Nodes, func(n *Node) bool { return n.ID == id })
}

// HasEdge reports whether an edge from -> to exists.
func (g *Graph) HasEdge(from, to string) bool {
	return slices.ContainsFunc(g.Edges, func(e *Edge) bool { return e.From == from && e.To == to })
}
