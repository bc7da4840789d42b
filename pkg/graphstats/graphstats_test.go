package graphstats

import (
	"fmt"
	"math"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

func buildGraph(n int, edges [][2]int64) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	for _, e := range edges {
		g.SetEdge(simple.Edge{F: simple.Node(e[0]), T: simple.Node(e[1])})
	}
	return g
}

func ring(n int) *simple.UndirectedGraph {
	edges := make([][2]int64, n)
	for i := 0; i < n; i++ {
		edges[i] = [2]int64{int64(i), int64((i + 1) % n)}
	}
	return buildGraph(n, edges)
}

func star(leaves int) *simple.UndirectedGraph {
	edges := make([][2]int64, leaves)
	for i := 1; i <= leaves; i++ {
		edges[i-1] = [2]int64{0, int64(i)}
	}
	return buildGraph(leaves+1, edges)
}

func triangle() *simple.UndirectedGraph {
	return buildGraph(3, [][2]int64{{0, 1}, {1, 2}, {2, 0}})
}

func TestScalarStatistics(t *testing.T) {
	triangleWithEdge := buildGraph(5, [][2]int64{{0, 1}, {1, 2}, {2, 0}, {3, 4}})

	tests := []struct {
		name  string
		spec  Spec
		graph graph.Undirected
		want  float64
	}{
		{"transitivity triangle", Transitivity(), triangle(), 1},
		{"transitivity ring", Transitivity(), ring(5), 0},
		{"transitivity star", Transitivity(), star(4), 0},
		{"transitivity empty", Transitivity(), buildGraph(3, nil), 0},
		{"diameter triangle", Diameter(), triangle(), 1},
		{"diameter ring5", Diameter(), ring(5), 2},
		{"diameter star", Diameter(), star(4), 2},
		{"diameter uses largest component", Diameter(), triangleWithEdge, 1},
		{"diameter edgeless", Diameter(), buildGraph(3, nil), 0},
		{"mean distance triangle", MeanDistance(), triangle(), 1},
		{"mean distance ring5", MeanDistance(), ring(5), 1.5},
		{"mean distance path3", MeanDistance(), buildGraph(3, [][2]int64{{0, 1}, {1, 2}}), 4.0 / 3},
		{"max degree star", MaxDegree(), star(4), 4},
		{"max degree edgeless", MaxDegree(), buildGraph(3, nil), 0},
		{"components triangle", ComponentCount(), triangle(), 1},
		{"components split", ComponentCount(), triangleWithEdge, 2},
		{"components edgeless", ComponentCount(), buildGraph(3, nil), 3},
		{"edges ring", EdgeCount(), ring(6), 6},
		{"edges empty", EdgeCount(), buildGraph(4, nil), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.spec.Compute(tt.graph)
			if err != nil {
				t.Fatalf("compute failed: %v", err)
			}
			if got.IsVector() {
				t.Fatalf("expected scalar, got vector")
			}
			if math.Abs(got.Scalar-tt.want) > 1e-9 {
				t.Errorf("got %v, want %v", got.Scalar, tt.want)
			}
		})
	}
}

func TestMeanDistanceDegenerate(t *testing.T) {
	// All-isolated graph: the largest component is a single node, so the
	// statistic must fail rather than fabricate a value.
	if _, err := MeanDistance().Compute(buildGraph(3, nil)); err == nil {
		t.Fatal("expected error on all-isolated graph")
	}
}

func TestDegreeSequence(t *testing.T) {
	got, err := DegreeSequence().Compute(star(4))
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if !got.IsVector() {
		t.Fatal("expected vector value")
	}
	want := []float64{4, 1, 1, 1, 1}
	if !reflect.DeepEqual(got.Vector, want) {
		t.Errorf("got %v, want %v", got.Vector, want)
	}
}

func TestCommunityCount(t *testing.T) {
	// Two disjoint triangles resolve to two communities.
	g := buildGraph(6, [][2]int64{{0, 1}, {1, 2}, {2, 0}, {3, 4}, {4, 5}, {5, 3}})

	first, err := CommunityCount().Compute(g)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if first.Scalar != 2 {
		t.Errorf("got %v communities, want 2", first.Scalar)
	}

	// Fixed seeding makes the statistic a pure function of the graph.
	second, err := CommunityCount().Compute(g)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if first.Scalar != second.Scalar {
		t.Errorf("community count not deterministic: %v != %v", first.Scalar, second.Scalar)
	}
}

func TestRegistryValidation(t *testing.T) {
	if _, err := NewRegistry(); err == nil {
		t.Error("expected error for empty registry")
	}
	if _, err := NewRegistry(Transitivity(), Transitivity()); err == nil {
		t.Error("expected error for duplicate names")
	}
	if _, err := NewRegistry(Spec{Name: "broken"}); err == nil {
		t.Error("expected error for missing compute function")
	}

	r := DefaultRegistry()
	if _, err := r.Subset("transitivity", "no_such_statistic"); err == nil {
		t.Error("expected error for unknown subset name")
	}
	sub, err := r.Subset("transitivity", "diameter")
	if err != nil {
		t.Fatalf("subset failed: %v", err)
	}
	if sub.Len() != 2 {
		t.Errorf("subset has %d statistics, want 2", sub.Len())
	}

	ext, err := r.With(EdgeCount())
	if err != nil {
		t.Fatalf("with failed: %v", err)
	}
	if ext.Len() != r.Len()+1 {
		t.Errorf("extended registry has %d statistics, want %d", ext.Len(), r.Len()+1)
	}
}

func TestEvaluateIsolatesFailures(t *testing.T) {
	failing := Spec{
		Name: "always_fails",
		Compute: func(graph.Undirected) (Value, error) {
			return Value{}, fmt.Errorf("degenerate input")
		},
	}
	panicking := Spec{
		Name: "always_panics",
		Compute: func(graph.Undirected) (Value, error) {
			panic("boom")
		},
	}
	r := MustNewRegistry(MaxDegree(), failing, panicking, ComponentCount())

	ev := Evaluate(r, ring(4))

	if _, ok := ev.Values["max_degree"]; !ok {
		t.Error("max_degree missing despite failures elsewhere")
	}
	if _, ok := ev.Values["components"]; !ok {
		t.Error("components missing despite failures elsewhere")
	}
	if _, ok := ev.Errors["always_fails"]; !ok {
		t.Error("failing statistic not recorded")
	}
	if _, ok := ev.Errors["always_panics"]; !ok {
		t.Error("panicking statistic not recorded")
	}
	if len(ev.Values) != 2 || len(ev.Errors) != 2 {
		t.Errorf("unexpected evaluation shape: %d values, %d errors", len(ev.Values), len(ev.Errors))
	}
}

func TestEvaluateMatchesDirectCompute(t *testing.T) {
	// The same functions score observed and simulated graphs; Evaluate must
	// introduce no drift relative to calling a spec directly.
	g := ring(7)
	r := DefaultRegistry()
	ev := Evaluate(r, g)

	for _, spec := range r.Specs() {
		direct, err := spec.Compute(g)
		if err != nil {
			t.Fatalf("%s: %v", spec.Name, err)
		}
		if !reflect.DeepEqual(ev.Values[spec.Name], direct) {
			t.Errorf("%s: evaluate %v != direct %v", spec.Name, ev.Values[spec.Name], direct)
		}
	}
}
