// Package graphstats provides a registry of named topological summary
// statistics over gonum undirected graphs. The registry is resolved once at
// configuration time and applied identically to every graph in an
// assessment, so observed and simulated networks are always measured with
// the same functions.
package graphstats

import (
	"fmt"

	"gonum.org/v1/gonum/graph"
)

// Value is the result of one statistic on one graph: a real scalar, or a
// real vector for distribution-valued statistics such as the degree
// sequence.
type Value struct {
	Scalar float64   `json:"scalar"`
	Vector []float64 `json:"vector,omitempty"`
}

// ScalarValue wraps a scalar statistic value.
func ScalarValue(v float64) Value {
	return Value{Scalar: v}
}

// VectorValue wraps a vector statistic value.
func VectorValue(v []float64) Value {
	return Value{Vector: v}
}

// IsVector reports whether the value is vector-valued.
func (v Value) IsVector() bool {
	return v.Vector != nil
}

// Spec is one named graph summary statistic. Compute must be a pure
// function of the graph: no ambient state, no mutation of the input.
type Spec struct {
	Name        string
	Description string
	// Vector marks distribution-valued statistics, which are collected for
	// visual comparison rather than scalar scoring.
	Vector  bool
	Compute func(g graph.Undirected) (Value, error)
}

// Registry is an ordered set of Specs with unique names.
type Registry struct {
	specs []Spec
	index map[string]int
}

// NewRegistry builds a registry from the given specs. Names must be
// non-empty and unique, and every spec needs a compute function.
func NewRegistry(specs ...Spec) (*Registry, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("registry must contain at least one statistic")
	}

	r := &Registry{
		specs: make([]Spec, 0, len(specs)),
		index: make(map[string]int, len(specs)),
	}
	for _, s := range specs {
		if s.Name == "" {
			return nil, fmt.Errorf("statistic with empty name")
		}
		if s.Compute == nil {
			return nil, fmt.Errorf("statistic %q has no compute function", s.Name)
		}
		if _, exists := r.index[s.Name]; exists {
			return nil, fmt.Errorf("duplicate statistic name %q", s.Name)
		}
		r.index[s.Name] = len(r.specs)
		r.specs = append(r.specs, s)
	}
	return r, nil
}

// MustNewRegistry is NewRegistry for statically known spec sets.
func MustNewRegistry(specs ...Spec) *Registry {
	r, err := NewRegistry(specs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Len returns the number of statistics in the registry.
func (r *Registry) Len() int { return len(r.specs) }

// Specs returns the specs in registration order.
func (r *Registry) Specs() []Spec {
	out := make([]Spec, len(r.specs))
	copy(out, r.specs)
	return out
}

// Names returns the statistic names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.specs))
	for i, s := range r.specs {
		names[i] = s.Name
	}
	return names
}

// Get returns the spec with the given name.
func (r *Registry) Get(name string) (Spec, bool) {
	i, ok := r.index[name]
	if !ok {
		return Spec{}, false
	}
	return r.specs[i], true
}

// With returns a new registry extended by the given specs.
func (r *Registry) With(extra ...Spec) (*Registry, error) {
	return NewRegistry(append(r.Specs(), extra...)...)
}

// Subset returns a new registry restricted to the named statistics.
func (r *Registry) Subset(names ...string) (*Registry, error) {
	specs := make([]Spec, 0, len(names))
	for _, name := range names {
		s, ok := r.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown statistic %q", name)
		}
		specs = append(specs, s)
	}
	return NewRegistry(specs...)
}

// Evaluation is the outcome of applying a registry to one graph. A failed
// statistic is recorded in Errors and absent from Values; failures are
// isolated per statistic and do not invalidate the rest of the battery.
type Evaluation struct {
	Values map[string]Value  `json:"values"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Evaluate applies every statistic in the registry to g. Panics raised by
// a compute function (e.g. community detection on a degenerate graph) are
// contained and recorded as that statistic's failure.
func Evaluate(r *Registry, g graph.Undirected) *Evaluation {
	ev := &Evaluation{
		Values: make(map[string]Value, r.Len()),
		Errors: make(map[string]string),
	}
	for _, s := range r.specs {
		v, err := computeSafe(s, g)
		if err != nil {
			ev.Errors[s.Name] = err.Error()
			continue
		}
		ev.Values[s.Name] = v
	}
	return ev
}

func computeSafe(s Spec, g graph.Undirected) (v Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("statistic %q panicked: %v", s.Name, r)
		}
	}()
	return s.Compute(g)
}
