package pipeline

import (
	"fmt"

	werrors "github.com/wrenchdag/wrench/pkg/errors"
)

// Node wraps one component under a unique name inside a pipeline.
// Parents and Children are maintained by Graph.AddEdge and mirror the
// edges incident to this node (spec §4.4: "degrees are kept in sync").
type Node struct {
	Name      string
	Component Component
	Parents   []string
	Children  []string
}

// Edge wires one node's outputs to another node's inputs. InputConfig
// maps a target parameter name to a source reference, which is either
// "<component>" (whole-output binding) or "<component>.<field>"
// (field binding).
type Edge struct {
	From        string
	To          string
	InputConfig map[string]string
}

// Graph is a typed DAG of Node and Edge. It exposes the primitives the
// validator and run engine need: membership, adjacency, roots/leaves,
// and cycle detection (spec §4.4).
type Graph struct {
	nodes map[string]*Node
	order []string // insertion order, for deterministic iteration
	edges []Edge
}

// NewGraph creates an empty pipeline graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// AddNode adds a node. Fails with a DefinitionError on a duplicate name.
func (g *Graph) AddNode(n Node) error {
	if _, exists := g.nodes[n.Name]; exists {
		return &werrors.DefinitionError{Message: fmt.Sprintf("duplicate node name %q", n.Name)}
	}
	cp := n
	cp.Parents = append([]string(nil), n.Parents...)
	cp.Children = append([]string(nil), n.Children...)
	g.nodes[n.Name] = &cp
	g.order = append(g.order, n.Name)
	return nil
}

// SetNode replaces the component of an existing node, preserving its
// parent/child adjacency lists. Fails if the name is absent.
func (g *Graph) SetNode(n Node) error {
	existing, ok := g.nodes[n.Name]
	if !ok {
		return &werrors.NotFoundError{Resource: "node", Name: n.Name}
	}
	existing.Component = n.Component
	return nil
}

// Node returns the node with the given name, if present.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.nodes[name])
	}
	return out
}

// AddEdge adds an edge between two existing nodes. Fails if either
// endpoint is missing, or if an edge between the same endpoints
// already exists (spec §4.4).
func (g *Graph) AddEdge(e Edge) error {
	from, ok := g.nodes[e.From]
	if !ok {
		return &werrors.DefinitionError{Message: fmt.Sprintf("edge references unknown node %q", e.From)}
	}
	to, ok := g.nodes[e.To]
	if !ok {
		return &werrors.DefinitionError{Message: fmt.Sprintf("edge references unknown node %q", e.To)}
	}
	for _, existing := range g.edges {
		if existing.From == e.From && existing.To == e.To {
			return &werrors.DefinitionError{
				Message: fmt.Sprintf("edge %s -> %s already exists", e.From, e.To),
			}
		}
	}

	cp := e
	cp.InputConfig = make(map[string]string, len(e.InputConfig))
	for k, v := range e.InputConfig {
		cp.InputConfig[k] = v
	}
	g.edges = append(g.edges, cp)
	from.Children = append(from.Children, e.To)
	to.Parents = append(to.Parents, e.From)
	return nil
}

// Roots returns nodes with no incoming edges, in insertion order.
func (g *Graph) Roots() []*Node {
	var roots []*Node
	for _, name := range g.order {
		n := g.nodes[name]
		if len(n.Parents) == 0 {
			roots = append(roots, n)
		}
	}
	return roots
}

// Leaves returns nodes with no outgoing edges, in insertion order.
func (g *Graph) Leaves() []*Node {
	var leaves []*Node
	for _, name := range g.order {
		n := g.nodes[name]
		if len(n.Children) == 0 {
			leaves = append(leaves, n)
		}
	}
	return leaves
}

// NextEdges returns edges outgoing from the named node.
func (g *Graph) NextEdges(name string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.From == name {
			out = append(out, e)
		}
	}
	return out
}

// PreviousEdges returns edges incoming to the named node.
func (g *Graph) PreviousEdges(name string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.To == name {
			out = append(out, e)
		}
	}
	return out
}

// IsCyclic runs a DFS from every node; a revisit of any node still on
// the current traversal stack indicates a cycle (spec §4.4).
func (g *Graph) IsCyclic() bool {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(g.order))
	for _, name := range g.order {
		color[name] = white
	}

	var visit func(name string) bool
	visit = func(name string) bool {
		color[name] = gray
		for _, e := range g.NextEdges(name) {
			switch color[e.To] {
			case gray:
				return true
			case white:
				if visit(e.To) {
					return true
				}
			}
		}
		color[name] = black
		return false
	}

	for _, name := range g.order {
		if color[name] == white {
			if visit(name) {
				return true
			}
		}
	}
	return false
}
