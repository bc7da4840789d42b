// Package generators binds gonum's random graph samplers to the assessment
// harness's Generator capability. The generation algorithms themselves live
// in gonum.org/v1/gonum/graph/graphs/gen; these adapters only allocate a
// destination graph and route the per-iteration random source through.
package generators

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/graphs/gen"
	"gonum.org/v1/gonum/graph/multi"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/graphstat/netassess/pkg/assess"
)

// GNP returns an Erdős–Rényi G(n,p) sampler: each of the n(n-1)/2 possible
// edges is present independently with probability p.
func GNP(n int, p float64) assess.Generator {
	return assess.GeneratorFunc(func(src rand.Source) (graph.Undirected, error) {
		dst := simple.NewUndirectedGraph()
		if err := gen.Gnp(dst, n, p, src); err != nil {
			return nil, fmt.Errorf("gnp(%d, %g): %w", n, p, err)
		}
		return dst, nil
	})
}

// GNM returns an Erdős–Rényi G(n,m) sampler: a uniform draw from the graphs
// with exactly n nodes and m edges. Matches an observed graph on edge count
// while ignoring all higher-order structure.
func GNM(n, m int) assess.Generator {
	return assess.GeneratorFunc(func(src rand.Source) (graph.Undirected, error) {
		dst := simple.NewUndirectedGraph()
		if err := gen.Gnm(dst, n, m, src); err != nil {
			return nil, fmt.Errorf("gnm(%d, %d): %w", n, m, err)
		}
		return dst, nil
	})
}

// SmallWorld returns a Kleinberg navigable small-world sampler on a lattice
// with the given dimensions, with local connections within distance p, q
// long-range connections per node, and decay exponent r.
func SmallWorld(dims []int, p, q int, r float64) assess.Generator {
	return assess.GeneratorFunc(func(src rand.Source) (graph.Undirected, error) {
		dst := simple.NewUndirectedGraph()
		if err := gen.NavigableSmallWorld(dst, dims, p, q, r, src); err != nil {
			return nil, fmt.Errorf("small world %v: %w", dims, err)
		}
		return dst, nil
	})
}

// PreferentialAttachment returns a power-law degree sampler: n nodes added
// one at a time, each attaching d edges to existing nodes with probability
// proportional to their degree.
func PreferentialAttachment(n, d int) assess.Generator {
	return assess.GeneratorFunc(func(src rand.Source) (graph.Undirected, error) {
		dst := multi.NewUndirectedGraph()
		if err := gen.PowerLaw(dst, n, d, src); err != nil {
			return nil, fmt.Errorf("preferential attachment(%d, %d): %w", n, d, err)
		}
		return dst, nil
	})
}

// Fixed returns a degenerate sampler that yields g on every call. Useful
// for calibration and tests.
func Fixed(g graph.Undirected) assess.Generator {
	return assess.GeneratorFunc(func(rand.Source) (graph.Undirected, error) {
		return g, nil
	})
}
