package assess

import (
	"runtime"

	"github.com/rs/zerolog"
)

// Config holds the knobs of one assessment session.
type Config struct {
	// NumIter is the nominal number of simulation draws.
	NumIter int `json:"num_iter"`
	// Alpha is the two-sided empirical test level.
	Alpha float64 `json:"alpha"`
	// Retries is how many times a failed generator draw is retried before
	// the iteration is recorded as failed.
	Retries int `json:"retries"`
	// FailureThreshold is the failure rate above which the whole run aborts.
	FailureThreshold float64 `json:"failure_threshold"`
	// Workers bounds the simulation worker pool. Zero means NumCPU.
	// Results are identical for any worker count given the same Seed.
	Workers int `json:"workers"`
	// Seed fixes the session randomness; per-iteration streams are derived
	// from it and the iteration index.
	Seed uint64 `json:"seed"`

	Logger zerolog.Logger `json:"-"`
}

// DefaultConfig returns the defaults used throughout: 1000 draws, a 5%
// two-sided test, one retry, abort above 50% failures.
func DefaultConfig() Config {
	return Config{
		NumIter:          1000,
		Alpha:            0.05,
		Retries:          1,
		FailureThreshold: 0.5,
		Workers:          runtime.NumCPU(),
		Seed:             42,
		Logger:           zerolog.Nop(),
	}
}

// Validate checks the configuration before any iteration runs.
func (c Config) Validate() error {
	if c.NumIter <= 0 {
		return &ConfigError{Field: "num_iter", Reason: "must be a positive integer"}
	}
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return &ConfigError{Field: "alpha", Reason: "must lie in (0, 1)"}
	}
	if c.Retries < 0 {
		return &ConfigError{Field: "retries", Reason: "must be non-negative"}
	}
	if c.FailureThreshold < 0 || c.FailureThreshold > 1 {
		return &ConfigError{Field: "failure_threshold", Reason: "must lie in [0, 1]"}
	}
	if c.Workers < 0 {
		return &ConfigError{Field: "workers", Reason: "must be non-negative"}
	}
	return nil
}

func (c Config) workerCount() int {
	w := c.Workers
	if w == 0 {
		w = runtime.NumCPU()
	}
	if w > c.NumIter {
		w = c.NumIter
	}
	return w
}
