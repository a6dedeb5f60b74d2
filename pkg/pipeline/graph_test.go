package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubComponent struct {
	desc Descriptor
}

func (c stubComponent) Descriptor() Descriptor { return c.desc }
func (c stubComponent) Run(ctx context.Context, inputs map[string]any, state map[string]any) (Output, error) {
	return Output{}, nil
}

func newStub(name string) stubComponent {
	return stubComponent{desc: Descriptor{Name: name}}
}

func TestGraph_AddNode_DuplicateRejected(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.AddNode(Node{Name: "A", Component: newStub("A")}))
	err := g.AddNode(Node{Name: "A", Component: newStub("A")})
	assert.Error(t, err)
}

func TestGraph_AddEdge_MissingEndpoint(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.AddNode(Node{Name: "A", Component: newStub("A")}))
	err := g.AddEdge(Edge{From: "A", To: "B"})
	assert.Error(t, err)
}

func TestGraph_AddEdge_DuplicateRejected(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.AddNode(Node{Name: "A", Component: newStub("A")}))
	require.NoError(t, g.AddNode(Node{Name: "B", Component: newStub("B")}))
	require.NoError(t, g.AddEdge(Edge{From: "A", To: "B"}))
	err := g.AddEdge(Edge{From: "A", To: "B"})
	assert.Error(t, err)
}

func TestGraph_RootsAndLeaves(t *testing.T) {
	g := NewGraph()
	for _, name := range []string{"A", "B", "C"} {
		require.NoError(t, g.AddNode(Node{Name: name, Component: newStub(name)}))
	}
	require.NoError(t, g.AddEdge(Edge{From: "A", To: "B"}))
	require.NoError(t, g.AddEdge(Edge{From: "B", To: "C"}))

	roots := g.Roots()
	require.Len(t, roots, 1)
	assert.Equal(t, "A", roots[0].Name)

	leaves := g.Leaves()
	require.Len(t, leaves, 1)
	assert.Equal(t, "C", leaves[0].Name)
}

func TestGraph_IsCyclic(t *testing.T) {
	g := NewGraph()
	for _, name := range []string{"A", "B", "C"} {
		require.NoError(t, g.AddNode(Node{Name: name, Component: newStub(name)}))
	}
	require.NoError(t, g.AddEdge(Edge{From: "A", To: "B"}))
	require.NoError(t, g.AddEdge(Edge{From: "B", To: "C"}))
	assert.False(t, g.IsCyclic())

	require.NoError(t, g.AddEdge(Edge{From: "C", To: "A"}))
	assert.True(t, g.IsCyclic())
}

func TestGraph_SetNode_PreservesAdjacency(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.AddNode(Node{Name: "A", Component: newStub("A")}))
	require.NoError(t, g.AddNode(Node{Name: "B", Component: newStub("B")}))
	require.NoError(t, g.AddEdge(Edge{From: "A", To: "B"}))

	replacement := newStub("A-v2")
	require.NoError(t, g.SetNode(Node{Name: "A", Component: replacement}))

	n, ok := g.Node("A")
	require.True(t, ok)
	assert.Equal(t, replacement, n.Component)
	assert.Equal(t, []string{"B"}, n.Children)
}

func TestGraph_SetNode_MissingRejected(t *testing.T) {
	g := NewGraph()
	err := g.SetNode(Node{Name: "missing", Component: newStub("x")})
	assert.Error(t, err)
}
