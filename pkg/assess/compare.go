package assess

import (
	"context"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/stat"

	"github.com/graphstat/netassess/pkg/graphstats"
)

// StatResult positions one observed statistic inside its empirical null
// distribution.
type StatResult struct {
	Name     string           `json:"name"`
	Vector   bool             `json:"vector,omitempty"`
	Observed graphstats.Value `json:"observed"`
	// ObservedErr is set when the statistic failed on the observed graph;
	// such a statistic is not scored.
	ObservedErr string `json:"observed_err,omitempty"`

	// Samples is the ordered (ascending) empirical sample for scalar
	// statistics; VectorSamples holds the per-run vectors for vector ones.
	Samples       []float64   `json:"samples,omitempty"`
	VectorSamples [][]float64 `json:"vector_samples,omitempty"`

	NValid   int `json:"n_valid"`
	NMissing int `json:"n_missing"`

	// Scored is false for vector statistics, observed-side failures, and
	// empty empirical samples; the fields below are meaningful only when
	// it is true.
	Scored         bool    `json:"scored"`
	PercentileRank float64 `json:"percentile_rank"`
	Extreme        bool    `json:"extreme"`
	Mean           float64 `json:"mean"`
	StdDev         float64 `json:"std_dev"`
	ZScore         float64 `json:"z_score"`
}

// Result is an immutable assessment outcome: every registry statistic
// positioned against the candidate model's empirical distributions.
type Result struct {
	NumIter  int     `json:"num_iter"`
	Failures int     `json:"failures"`
	Alpha    float64 `json:"alpha"`
	// Names preserves registry order for rendering.
	Names []string               `json:"names"`
	Stats map[string]*StatResult `json:"stats"`
}

// Compare builds per-statistic empirical distributions from the batch and
// scores the observed evaluation against them. It is a pure function of its
// inputs: calling it twice returns identical results.
func Compare(batch *Batch, observed *graphstats.Evaluation, registry *graphstats.Registry, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, fmt.Errorf("compare: nil batch")
	}
	if observed == nil {
		return nil, fmt.Errorf("compare: nil observed evaluation")
	}
	if registry == nil || registry.Len() == 0 {
		return nil, &ConfigError{Field: "registry", Reason: "must contain at least one statistic"}
	}

	res := &Result{
		NumIter:  batch.NumIter,
		Failures: batch.Failures,
		Alpha:    cfg.Alpha,
		Names:    registry.Names(),
		Stats:    make(map[string]*StatResult, registry.Len()),
	}

	for _, spec := range registry.Specs() {
		sr := &StatResult{Name: spec.Name, Vector: spec.Vector}

		if obs, ok := observed.Values[spec.Name]; ok {
			sr.Observed = obs
		} else {
			sr.ObservedErr = observed.Errors[spec.Name]
		}

		if spec.Vector {
			sr.VectorSamples = batch.VectorSamples(spec.Name)
			sr.NValid = len(sr.VectorSamples)
			sr.NMissing = len(batch.Runs) - sr.NValid
			res.Stats[spec.Name] = sr
			continue
		}

		samples := batch.Samples(spec.Name)
		sort.Float64s(samples)
		sr.Samples = samples
		sr.NValid = len(samples)
		sr.NMissing = len(batch.Runs) - sr.NValid

		if sr.NValid == 0 || sr.ObservedErr != "" {
			res.Stats[spec.Name] = sr
			continue
		}

		scoreScalar(sr, cfg.Alpha)
		res.Stats[spec.Name] = sr
	}

	return res, nil
}

func scoreScalar(sr *StatResult, alpha float64) {
	obs := sr.Observed.Scalar
	n := float64(sr.NValid)

	var below, equal float64
	for _, s := range sr.Samples {
		switch {
		case s < obs:
			below++
		case s == obs:
			equal++
		}
	}

	// Midpoint tie handling keeps the rank in [0,1] and places an
	// observation matching a zero-variance sample at exactly 0.5.
	sr.PercentileRank = (below + 0.5*equal) / n
	sr.Extreme = sr.PercentileRank < alpha/2 || sr.PercentileRank > 1-alpha/2

	sr.Mean = stat.Mean(sr.Samples, nil)
	if sr.NValid > 1 {
		sr.StdDev = stat.StdDev(sr.Samples, nil)
	}
	if sr.StdDev > 0 {
		sr.ZScore = (obs - sr.Mean) / sr.StdDev
	}
	sr.Scored = true
}

// Assess is the one-call orchestration: evaluate the observed graph, run
// the simulation batch, and compare. The same registry is applied to the
// observed graph and to every simulated graph.
func Assess(ctx context.Context, observed graph.Undirected, gen Generator, registry *graphstats.Registry, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if observed == nil {
		return nil, &ConfigError{Field: "observed", Reason: "must not be nil"}
	}
	if registry == nil || registry.Len() == 0 {
		return nil, &ConfigError{Field: "registry", Reason: "must contain at least one statistic"}
	}

	obsEval := graphstats.Evaluate(registry, observed)

	batch, err := RunSimulation(ctx, gen, registry, cfg)
	if err != nil {
		return nil, err
	}

	return Compare(batch, obsEval, registry, cfg)
}
