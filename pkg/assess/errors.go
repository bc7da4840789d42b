package assess

import "fmt"

// ConfigError reports an invalid harness configuration. Configuration is
// validated eagerly, before any iteration runs.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// BatchAbortError reports that the cumulative generator failure rate
// exceeded the configured threshold. Partial carries the batch accumulated
// so far for diagnosis; it must not be presented as a complete sample.
type BatchAbortError struct {
	Partial     *Batch
	FailureRate float64
	Threshold   float64
}

func (e *BatchAbortError) Error() string {
	return fmt.Sprintf("simulation aborted: failure rate %.2f exceeds threshold %.2f (%d of %d draws failed)",
		e.FailureRate, e.Threshold, e.Partial.Failures, e.Partial.NumIter)
}
