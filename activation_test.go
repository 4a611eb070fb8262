package openmem

import (
	"testing"
	"time"
)

// buildGraph creates A --0.8--> B --0.6--> C, plus A --0.4--> D, the
// scenario graph used throughout the spec's worked examples.
func buildGraph(t *testing.T) (*Store, map[string]string) {
	t.Helper()
	s := testStore(t)
	ids := map[string]string{}
	now := time.Now()
	for _, name := range []string{"A", "B", "C", "D"} {
		m := newTestMemory(name)
		if err := s.AddMemory(m); err != nil {
			t.Fatal(err)
		}
		ids[name] = m.ID
	}

	edges := []struct {
		from, to string
		weight   float64
	}{
		{"A", "B", 0.8},
		{"B", "C", 0.6},
		{"A", "D", 0.4},
	}
	for _, e := range edges {
		edge := Edge{
			ID:        newID(),
			SourceID:  ids[e.from],
			TargetID:  ids[e.to],
			RelType:   RelMentions,
			Weight:    e.weight,
			CreatedAt: now,
		}
		if err := s.AddEdge(edge); err != nil {
			t.Fatal(err)
		}
	}
	return s, ids
}

func TestSpreadSeedOnly(t *testing.T) {
	s, ids := buildGraph(t)
	seeds := map[string]float64{ids["A"]: 1.0}

	activations, err := Spread(seeds, s, 0, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(activations) != 1 {
		t.Fatalf("expected only the seed with maxHops=0, got %d", len(activations))
	}
	if activations[ids["A"]] != 1.0 {
		t.Errorf("expected seed activation unchanged, got %f", activations[ids["A"]])
	}
}

func TestSpreadOneHop(t *testing.T) {
	s, ids := buildGraph(t)
	seeds := map[string]float64{ids["A"]: 1.0}

	activations, err := Spread(seeds, s, 1, 0.5)
	if err != nil {
		t.Fatal(err)
	}

	wantB := 1.0 * 0.8 * 0.5
	if !closeEnough(activations[ids["B"]], wantB, 1e-9) {
		t.Errorf("expected B activation %f, got %f", wantB, activations[ids["B"]])
	}
	wantD := 1.0 * 0.4 * 0.5
	if !closeEnough(activations[ids["D"]], wantD, 1e-9) {
		t.Errorf("expected D activation %f, got %f", wantD, activations[ids["D"]])
	}
	if _, reached := activations[ids["C"]]; reached {
		t.Error("expected C not reached after only one hop")
	}
}

func TestSpreadTwoHops(t *testing.T) {
	s, ids := buildGraph(t)
	seeds := map[string]float64{ids["A"]: 1.0}

	activations, err := Spread(seeds, s, 2, 0.5)
	if err != nil {
		t.Fatal(err)
	}

	activB := 1.0 * 0.8 * 0.5
	wantC := activB * 0.6 * 0.25
	if !closeEnough(activations[ids["C"]], wantC, 1e-9) {
		t.Errorf("expected C activation %f, got %f", wantC, activations[ids["C"]])
	}
}

func TestSpreadNeverDowngradesSeed(t *testing.T) {
	s, ids := buildGraph(t)
	// Seed A and B both at a high value; the weaker spread each sends
	// the other across their edge must never reduce either seed.
	seeds := map[string]float64{ids["A"]: 1.0, ids["B"]: 1.0}

	activations, err := Spread(seeds, s, 2, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if activations[ids["B"]] != 1.0 {
		t.Errorf("expected seeded B to remain 1.0, got %f", activations[ids["B"]])
	}
	if activations[ids["A"]] != 1.0 {
		t.Errorf("expected seeded A to remain 1.0, got %f", activations[ids["A"]])
	}
}

func TestSpreadEmptySeeds(t *testing.T) {
	s, _ := buildGraph(t)
	activations, err := Spread(map[string]float64{}, s, 2, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(activations) != 0 {
		t.Errorf("expected empty activations for empty seeds, got %d", len(activations))
	}
}

func TestSpreadMaxTakesHigherPath(t *testing.T) {
	s := testStore(t)
	ids := map[string]string{}
	now := time.Now()
	for _, name := range []string{"A", "B", "C"} {
		m := newTestMemory(name)
		s.AddMemory(m)
		ids[name] = m.ID
	}
	// Two paths into C: directly from A (weak) and via B (strong).
	s.AddEdge(Edge{ID: newID(), SourceID: ids["A"], TargetID: ids["C"], RelType: RelMentions, Weight: 0.1, CreatedAt: now})
	s.AddEdge(Edge{ID: newID(), SourceID: ids["A"], TargetID: ids["B"], RelType: RelMentions, Weight: 0.9, CreatedAt: now})
	s.AddEdge(Edge{ID: newID(), SourceID: ids["B"], TargetID: ids["C"], RelType: RelMentions, Weight: 0.9, CreatedAt: now})

	activations, err := Spread(map[string]float64{ids["A"]: 1.0}, s, 2, 1.0)
	if err != nil {
		t.Fatal(err)
	}

	viaDirect := 1.0 * 0.1
	viaB := (1.0 * 0.9) * 0.9
	if activations[ids["C"]] <= viaDirect {
		t.Errorf("expected C's activation to exceed the weak direct path, got %f", activations[ids["C"]])
	}
	if !closeEnough(activations[ids["C"]], viaB, 1e-9) {
		t.Errorf("expected C to take the stronger path's value %f, got %f", viaB, activations[ids["C"]])
	}
}
