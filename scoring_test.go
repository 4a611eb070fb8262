package openmem

import (
	"math"
	"testing"
	"time"
)

func closeEnough(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestRecencyFresh(t *testing.T) {
	now := time.Now()
	m := Memory{CreatedAt: now, LastAccessed: &now}
	r := Recency(m, now)
	if !closeEnough(r, 1.0, 0.01) {
		t.Errorf("expected recency near 1.0 for just-accessed memory, got %f", r)
	}
}

func TestRecencyOld(t *testing.T) {
	now := time.Now()
	old := now.Add(-365 * 24 * time.Hour)
	m := Memory{CreatedAt: old, LastAccessed: &old}
	r := Recency(m, now)
	if r >= 0.1 {
		t.Errorf("expected recency to be small for a year-old memory, got %f", r)
	}
}

func TestRecencyUsesCreatedAtWhenNeverAccessed(t *testing.T) {
	now := time.Now()
	m := Memory{CreatedAt: now, LastAccessed: nil}
	r := Recency(m, now)
	if !closeEnough(r, 1.0, 0.01) {
		t.Errorf("expected recency near 1.0 using created_at, got %f", r)
	}
}

func TestStrengthFresh(t *testing.T) {
	now := time.Now()
	m := Memory{CreatedAt: now, Strength: 1.0, AccessCount: 0}
	s := Strength(m, now)
	if !closeEnough(s, 1.0, 0.01) {
		t.Errorf("expected strength near 1.0 for fresh memory, got %f", s)
	}
}

func TestStrengthReinforcement(t *testing.T) {
	now := time.Now()
	unreinforced := Memory{CreatedAt: now, Strength: 0.5, AccessCount: 0}
	reinforced := Memory{CreatedAt: now, Strength: 0.5, AccessCount: 10}

	sUn := Strength(unreinforced, now)
	sRe := Strength(reinforced, now)
	if sRe <= sUn {
		t.Errorf("expected reinforced strength (%f) to exceed unreinforced (%f)", sRe, sUn)
	}
}

func TestStrengthClamped(t *testing.T) {
	now := time.Now()
	m := Memory{CreatedAt: now, Strength: 1.0, AccessCount: 1000}
	s := Strength(m, now)
	if s > 1.0 {
		t.Errorf("expected strength clamped to 1.0, got %f", s)
	}
	if s < 0 {
		t.Errorf("expected strength non-negative, got %f", s)
	}
}

func TestCompeteRanking(t *testing.T) {
	now := time.Now()
	a := Memory{ID: "a", Strength: 1.0, Confidence: 1.0, CreatedAt: now, Status: StatusActive}
	b := Memory{ID: "b", Strength: 0.1, Confidence: 0.1, CreatedAt: now.Add(-365 * 24 * time.Hour), Status: StatusActive}

	activations := map[string]float64{"a": 1.0, "b": 0.1}
	memories := map[string]Memory{"a": a, "b": b}

	scored := Compete(activations, memories, DefaultWeights(), now)
	if len(scored) != 2 {
		t.Fatalf("expected 2 scored results, got %d", len(scored))
	}
	if scored[0].Memory.ID != "a" {
		t.Errorf("expected 'a' to rank first, got %s", scored[0].Memory.ID)
	}
	if scored[0].Score <= scored[1].Score {
		t.Errorf("expected descending scores, got %f then %f", scored[0].Score, scored[1].Score)
	}
}

func TestCompeteOnlyScoresIntersection(t *testing.T) {
	now := time.Now()
	memories := map[string]Memory{
		"a": {ID: "a", Strength: 1.0, Confidence: 1.0, CreatedAt: now, Status: StatusActive},
	}
	activations := map[string]float64{"a": 1.0, "ghost": 0.5}

	scored := Compete(activations, memories, DefaultWeights(), now)
	if len(scored) != 1 {
		t.Fatalf("expected only 'a' to be scored, got %d results", len(scored))
	}
	if scored[0].Memory.ID != "a" {
		t.Errorf("unexpected id: %s", scored[0].Memory.ID)
	}
}

func TestStatusPenalty(t *testing.T) {
	now := time.Now()
	active := Memory{ID: "active", Strength: 1.0, Confidence: 1.0, CreatedAt: now, Status: StatusActive}
	superseded := Memory{ID: "superseded", Strength: 1.0, Confidence: 1.0, CreatedAt: now, Status: StatusSuperseded}
	contradicted := Memory{ID: "contradicted", Strength: 1.0, Confidence: 1.0, CreatedAt: now, Status: StatusContradicted}

	activations := map[string]float64{"active": 1.0, "superseded": 1.0, "contradicted": 1.0}
	memories := map[string]Memory{"active": active, "superseded": superseded, "contradicted": contradicted}

	scored := Compete(activations, memories, DefaultWeights(), now)
	byID := make(map[string]ScoredMemory, len(scored))
	for _, sm := range scored {
		byID[sm.Memory.ID] = sm
	}

	if byID["active"].Score <= byID["superseded"].Score {
		t.Errorf("expected active to outscore superseded: %f vs %f", byID["active"].Score, byID["superseded"].Score)
	}
	if byID["superseded"].Score <= byID["contradicted"].Score {
		t.Errorf("expected superseded to outscore contradicted: %f vs %f", byID["superseded"].Score, byID["contradicted"].Score)
	}
}

func TestNormalizeAllEqual(t *testing.T) {
	values := map[string]float64{"a": 0.5, "b": 0.5, "c": 0.5}
	out := normalize(values)
	for k, v := range out {
		if v != 1.0 {
			t.Errorf("expected normalized %s to be 1.0, got %f", k, v)
		}
	}
}

func TestNormalizeSingleton(t *testing.T) {
	out := normalize(map[string]float64{"only": 0.3})
	if out["only"] != 1.0 {
		t.Errorf("expected singleton normalization to be 1.0, got %f", out["only"])
	}
}

func TestNormalizeEmpty(t *testing.T) {
	out := normalize(map[string]float64{})
	if len(out) != 0 {
		t.Errorf("expected empty map, got %v", out)
	}
}
