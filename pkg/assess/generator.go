// Package assess implements a nonparametric Monte Carlo goodness-of-fit
// harness for graph generative models: it draws repeated samples from a
// candidate graph-generating process, computes a battery of topological
// statistics on each sample, builds empirical reference distributions, and
// positions an observed network's statistics within them.
package assess

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/graph"
)

// Generator is the sampling capability of a candidate generative model: one
// call produces one graph. Erdős–Rényi samplers, configuration-model
// samplers, small-world samplers, preferential-attachment samplers, and a
// fitted ERGM's simulate step are all valid implementations.
//
// The source passed to Generate is derived from the session seed and the
// iteration index, so draws are independent and a session is reproducible
// regardless of execution parallelism. Implementations must draw all their
// randomness from src.
//
// The generator's scale (node count and any structural constraint it
// encodes) is the caller's responsibility: it should match the reference
// graph, or comparisons are meaningless.
type Generator interface {
	Generate(src rand.Source) (graph.Undirected, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(src rand.Source) (graph.Undirected, error)

// Generate calls f.
func (f GeneratorFunc) Generate(src rand.Source) (graph.Undirected, error) {
	return f(src)
}
