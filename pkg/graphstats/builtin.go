package graphstats

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// communitySeed fixes the randomness of the Louvain pass so the community
// count is a pure function of the graph.
const communitySeed = 1

// DefaultRegistry returns the standard battery: transitivity, diameter,
// mean distance, maximum degree, component count, community count, and the
// full degree sequence. Distance statistics follow one fixed convention:
// they are computed over the largest connected component.
func DefaultRegistry() *Registry {
	return MustNewRegistry(
		Transitivity(),
		Diameter(),
		MeanDistance(),
		MaxDegree(),
		ComponentCount(),
		CommunityCount(),
		DegreeSequence(),
	)
}

// Transitivity returns the global clustering coefficient statistic: the
// fraction of connected triples that are closed. Graphs with no connected
// triples have transitivity 0.
func Transitivity() Spec {
	return Spec{
		Name:        "transitivity",
		Description: "fraction of connected triples that form triangles",
		Compute: func(g graph.Undirected) (Value, error) {
			var triples, closed float64
			it := g.Nodes()
			for it.Next() {
				neigh := graph.NodesOf(g.From(it.Node().ID()))
				d := float64(len(neigh))
				triples += d * (d - 1) / 2
				for i := 0; i < len(neigh); i++ {
					for j := i + 1; j < len(neigh); j++ {
						if g.HasEdgeBetween(neigh[i].ID(), neigh[j].ID()) {
							closed++
						}
					}
				}
			}
			if triples == 0 {
				return ScalarValue(0), nil
			}
			return ScalarValue(closed / triples), nil
		},
	}
}

// Diameter returns the longest shortest path within the largest connected
// component.
func Diameter() Spec {
	return Spec{
		Name:        "diameter",
		Description: "longest shortest path in the largest connected component",
		Compute: func(g graph.Undirected) (Value, error) {
			paths, ids, err := largestComponentPaths(g)
			if err != nil {
				return Value{}, err
			}
			var max float64
			for i := 0; i < len(ids); i++ {
				for j := i + 1; j < len(ids); j++ {
					if w := paths.Weight(ids[i], ids[j]); w > max {
						max = w
					}
				}
			}
			return ScalarValue(max), nil
		},
	}
}

// MeanDistance returns the mean shortest-path length over node pairs of the
// largest connected component.
func MeanDistance() Spec {
	return Spec{
		Name:        "mean_distance",
		Description: "mean shortest-path length in the largest connected component",
		Compute: func(g graph.Undirected) (Value, error) {
			paths, ids, err := largestComponentPaths(g)
			if err != nil {
				return Value{}, err
			}
			if len(ids) < 2 {
				return Value{}, fmt.Errorf("largest component has fewer than two nodes")
			}
			var sum float64
			var pairs int
			for i := 0; i < len(ids); i++ {
				for j := i + 1; j < len(ids); j++ {
					sum += paths.Weight(ids[i], ids[j])
					pairs++
				}
			}
			return ScalarValue(sum / float64(pairs)), nil
		},
	}
}

// MaxDegree returns the maximum vertex degree.
func MaxDegree() Spec {
	return Spec{
		Name:        "max_degree",
		Description: "maximum vertex degree",
		Compute: func(g graph.Undirected) (Value, error) {
			if g.Nodes().Len() == 0 {
				return Value{}, fmt.Errorf("graph has no nodes")
			}
			var max int
			it := g.Nodes()
			for it.Next() {
				if d := g.From(it.Node().ID()).Len(); d > max {
					max = d
				}
			}
			return ScalarValue(float64(max)), nil
		},
	}
}

// EdgeCount returns the number of edges. Not part of the default battery;
// useful when the candidate model conditions on edge count.
func EdgeCount() Spec {
	return Spec{
		Name:        "edges",
		Description: "number of edges",
		Compute: func(g graph.Undirected) (Value, error) {
			var m int
			it := g.Nodes()
			for it.Next() {
				m += g.From(it.Node().ID()).Len()
			}
			return ScalarValue(float64(m / 2)), nil
		},
	}
}

// ComponentCount returns the number of connected components.
func ComponentCount() Spec {
	return Spec{
		Name:        "components",
		Description: "number of connected components",
		Compute: func(g graph.Undirected) (Value, error) {
			return ScalarValue(float64(len(topo.ConnectedComponents(g)))), nil
		},
	}
}

// CommunityCount returns the number of communities found by gonum's
// modularity maximization (Louvain) at resolution 1, seeded from a fixed
// constant so the statistic is deterministic.
func CommunityCount() Spec {
	return Spec{
		Name:        "communities",
		Description: "number of Louvain communities at resolution 1",
		Compute: func(g graph.Undirected) (Value, error) {
			if g.Nodes().Len() == 0 {
				return Value{}, fmt.Errorf("graph has no nodes")
			}
			reduced := community.Modularize(g, 1.0, rand.NewPCG(communitySeed, communitySeed))
			return ScalarValue(float64(len(reduced.Communities()))), nil
		},
	}
}

// DegreeSequence returns the degree sequence in non-increasing order.
// Vector-valued: collected for visual comparison, not scalar scoring.
func DegreeSequence() Spec {
	return Spec{
		Name:        "degree_sequence",
		Description: "vertex degrees in non-increasing order",
		Vector:      true,
		Compute: func(g graph.Undirected) (Value, error) {
			degrees := make([]float64, 0, g.Nodes().Len())
			it := g.Nodes()
			for it.Next() {
				degrees = append(degrees, float64(g.From(it.Node().ID()).Len()))
			}
			sort.Sort(sort.Reverse(sort.Float64Slice(degrees)))
			return VectorValue(degrees), nil
		},
	}
}

// largestComponentPaths computes all-pairs shortest paths over the largest
// connected component. Ties between equal-size components are broken by the
// smallest minimum node ID so the choice never varies between calls.
func largestComponentPaths(g graph.Undirected) (path.AllShortest, []int64, error) {
	comps := topo.ConnectedComponents(g)
	if len(comps) == 0 {
		return path.AllShortest{}, nil, fmt.Errorf("graph has no nodes")
	}

	best := comps[0]
	for _, c := range comps[1:] {
		switch {
		case len(c) > len(best):
			best = c
		case len(c) == len(best) && minID(c) < minID(best):
			best = c
		}
	}

	sub := simple.NewUndirectedGraph()
	member := make(map[int64]bool, len(best))
	for _, n := range best {
		member[n.ID()] = true
		sub.AddNode(simple.Node(n.ID()))
	}
	for _, n := range best {
		uid := n.ID()
		to := g.From(uid)
		for to.Next() {
			vid := to.Node().ID()
			if member[vid] && uid < vid {
				sub.SetEdge(simple.Edge{F: simple.Node(uid), T: simple.Node(vid)})
			}
		}
	}

	ids := make([]int64, 0, len(best))
	for id := range member {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return path.DijkstraAllPaths(sub), ids, nil
}

func minID(nodes []graph.Node) int64 {
	min := nodes[0].ID()
	for _, n := range nodes[1:] {
		if n.ID() < min {
			min = n.ID()
		}
	}
	return min
}
