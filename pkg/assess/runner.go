package assess

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/graphstat/netassess/pkg/graphstats"
)

// Run holds the statistic values extracted from one simulated graph. The
// graph itself is discarded immediately after extraction, so batch memory
// is bounded by NumIter times the registry size regardless of graph size.
type Run struct {
	Index  int                         `json:"index"`
	Values map[string]graphstats.Value `json:"values"`
	// Missing records statistics that failed on this run's graph, keyed by
	// statistic name. A missing statistic does not invalidate the others.
	Missing map[string]string `json:"missing,omitempty"`
}

// Batch is an ordered sequence of successful simulation runs plus an
// explicit count of failed draws: len(Runs) == NumIter - Failures.
type Batch struct {
	NumIter  int   `json:"num_iter"`
	Runs     []Run `json:"runs"`
	Failures int   `json:"failures"`
}

// Samples collects the valid values of a scalar statistic in run order.
func (b *Batch) Samples(name string) []float64 {
	out := make([]float64, 0, len(b.Runs))
	for _, r := range b.Runs {
		if v, ok := r.Values[name]; ok && !v.IsVector() {
			out = append(out, v.Scalar)
		}
	}
	return out
}

// VectorSamples collects the valid values of a vector statistic in run order.
func (b *Batch) VectorSamples(name string) [][]float64 {
	out := make([][]float64, 0, len(b.Runs))
	for _, r := range b.Runs {
		if v, ok := r.Values[name]; ok && v.IsVector() {
			out = append(out, v.Vector)
		}
	}
	return out
}

// RunSimulation draws cfg.NumIter graphs from the generator and evaluates
// every registry statistic on each. Iterations run on a bounded worker pool
// and share no mutable state; the batch is assembled in strict index order,
// so the result is identical for any worker count given a fixed seed.
//
// A failed draw is retried up to cfg.Retries times, then recorded as a
// failure and the loop continues. If the cumulative failure rate exceeds
// cfg.FailureThreshold the run returns a BatchAbortError carrying the
// partial batch. Cancellation is checked between iterations; on cancel the
// partial results are discarded and ctx.Err() is returned.
func RunSimulation(ctx context.Context, gen Generator, registry *graphstats.Registry, cfg Config) (*Batch, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if gen == nil {
		return nil, &ConfigError{Field: "generator", Reason: "must not be nil"}
	}
	if registry == nil || registry.Len() == 0 {
		return nil, &ConfigError{Field: "registry", Reason: "must contain at least one statistic"}
	}

	log := cfg.Logger
	log.Debug().
		Int("num_iter", cfg.NumIter).
		Int("workers", cfg.workerCount()).
		Uint64("seed", cfg.Seed).
		Int("statistics", registry.Len()).
		Msg("starting simulation batch")

	// slots[i] stays nil when draw i failed after retries.
	slots := make([]*Run, cfg.NumIter)
	indices := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < cfg.workerCount(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indices {
				slots[idx] = simulateOne(idx, gen, registry, cfg)
			}
		}()
	}

	var cancelled bool
dispatch:
	for i := 0; i < cfg.NumIter; i++ {
		select {
		case <-ctx.Done():
			cancelled = true
			break dispatch
		case indices <- i:
		}
	}
	close(indices)
	wg.Wait()

	if cancelled {
		log.Warn().Err(ctx.Err()).Msg("simulation cancelled, discarding partial results")
		return nil, ctx.Err()
	}

	batch := &Batch{NumIter: cfg.NumIter, Runs: make([]Run, 0, cfg.NumIter)}
	for _, r := range slots {
		if r == nil {
			batch.Failures++
			continue
		}
		batch.Runs = append(batch.Runs, *r)
	}

	rate := float64(batch.Failures) / float64(cfg.NumIter)
	if rate > cfg.FailureThreshold {
		log.Error().
			Int("failures", batch.Failures).
			Float64("rate", rate).
			Msg("simulation aborted: failure rate over threshold")
		return nil, &BatchAbortError{Partial: batch, FailureRate: rate, Threshold: cfg.FailureThreshold}
	}

	log.Info().
		Int("runs", len(batch.Runs)).
		Int("failures", batch.Failures).
		Msg("simulation batch complete")
	return batch, nil
}

// simulateOne performs draw idx with its own derived random stream. Retries
// continue on the same stream, keeping the session deterministic.
func simulateOne(idx int, gen Generator, registry *graphstats.Registry, cfg Config) *Run {
	src := rand.NewPCG(cfg.Seed, uint64(idx))

	var lastErr error
	for attempt := 0; attempt <= cfg.Retries; attempt++ {
		g, err := gen.Generate(src)
		if err != nil {
			lastErr = err
			continue
		}
		ev := graphstats.Evaluate(registry, g)
		return &Run{Index: idx, Values: ev.Values, Missing: ev.Errors}
	}

	cfg.Logger.Debug().Int("iteration", idx).Err(lastErr).Msg("draw failed after retries")
	return nil
}
