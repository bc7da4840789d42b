package generators_test

import (
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/graphstat/netassess/pkg/generators"
)

func nodeCount(g graph.Undirected) int {
	return g.Nodes().Len()
}

func edgeCount(g graph.Undirected) int {
	var m int
	it := g.Nodes()
	for it.Next() {
		m += g.From(it.Node().ID()).Len()
	}
	return m / 2
}

// edgeList returns a canonical sorted representation for equality checks.
func edgeList(g graph.Undirected) [][2]int64 {
	var edges [][2]int64
	it := g.Nodes()
	for it.Next() {
		uid := it.Node().ID()
		to := g.From(uid)
		for to.Next() {
			vid := to.Node().ID()
			if uid < vid {
				edges = append(edges, [2]int64{uid, vid})
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i][0] != edges[j][0] {
			return edges[i][0] < edges[j][0]
		}
		return edges[i][1] < edges[j][1]
	})
	return edges
}

func TestGNMExactEdgeCount(t *testing.T) {
	gen := generators.GNM(25, 40)
	for seed := uint64(0); seed < 5; seed++ {
		g, err := gen.Generate(rand.NewPCG(seed, 1))
		require.NoError(t, err)
		assert.Equal(t, 25, nodeCount(g))
		assert.Equal(t, 40, edgeCount(g))
	}
}

func TestGNPNodeCount(t *testing.T) {
	g, err := generators.GNP(30, 0.1).Generate(rand.NewPCG(1, 2))
	require.NoError(t, err)
	assert.Equal(t, 30, nodeCount(g))
}

func TestGNPDeterministicPerSource(t *testing.T) {
	gen := generators.GNP(20, 0.25)

	a, err := gen.Generate(rand.NewPCG(7, 7))
	require.NoError(t, err)
	b, err := gen.Generate(rand.NewPCG(7, 7))
	require.NoError(t, err)
	c, err := gen.Generate(rand.NewPCG(8, 8))
	require.NoError(t, err)

	assert.Equal(t, edgeList(a), edgeList(b), "same source, same draw")
	assert.NotEqual(t, edgeList(a), edgeList(c), "different sources should diverge")
}

func TestSmallWorldNodeCount(t *testing.T) {
	g, err := generators.SmallWorld([]int{4, 4}, 1, 2, 2).Generate(rand.NewPCG(3, 3))
	require.NoError(t, err)
	assert.Equal(t, 16, nodeCount(g))
}

func TestPreferentialAttachmentNodeCount(t *testing.T) {
	g, err := generators.PreferentialAttachment(40, 2).Generate(rand.NewPCG(4, 4))
	require.NoError(t, err)
	assert.Equal(t, 40, nodeCount(g))
}

func TestFixedReturnsSameGraph(t *testing.T) {
	g := simple.NewUndirectedGraph()
	g.AddNode(simple.Node(0))
	g.AddNode(simple.Node(1))
	g.SetEdge(simple.Edge{F: simple.Node(0), T: simple.Node(1)})

	gen := generators.Fixed(g)
	got, err := gen.Generate(rand.NewPCG(1, 1))
	require.NoError(t, err)
	assert.Same(t, g, got)
}
