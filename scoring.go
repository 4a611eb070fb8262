package openmem

import (
	"math"
	"sort"
	"time"
)

// Fixed scoring constants (spec §4.3). Weights are tunable at
// construction via Config.Weights; these are not.
const (
	lambdaRecency = 0.05 // per-day exponential recency decay
	alphaDecay    = 0.01 // per-day strength natural decay
	betaReinforce = 0.1  // diminishing returns on access count
)

// expDecay computes exp(-lambda * days).
func expDecay(lambda, days float64) float64 {
	return math.Exp(-lambda * days)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Recency scores how recently a memory was touched: it uses
// LastAccessed when set, else CreatedAt. Negative elapsed time (clock
// skew) is clamped to zero days.
func Recency(m Memory, now time.Time) float64 {
	t := m.CreatedAt
	if m.LastAccessed != nil {
		t = *m.LastAccessed
	}
	days := now.Sub(t).Hours() / 24.0
	if days < 0 {
		days = 0
	}
	return expDecay(lambdaRecency, days)
}

// Strength combines a memory's stored strength with reinforcement
// (diminishing returns on access count) and natural decay since
// creation, clamped to [0, 1].
func Strength(m Memory, now time.Time) float64 {
	days := now.Sub(m.CreatedAt).Hours() / 24.0
	raw := m.Strength * math.Pow(1+float64(m.AccessCount), betaReinforce) * expDecay(alphaDecay, days)
	return clamp01(raw)
}

// normalize min-max normalizes a map of values to [0, 1]. When every
// value is equal (including the single-element case), every value
// becomes 1.0.
func normalize(values map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(values))
	if len(values) == 0 {
		return out
	}

	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	span := max - min
	for k, v := range values {
		if span == 0 {
			out[k] = 1.0
		} else {
			out[k] = (v - min) / span
		}
	}
	return out
}

// Compete scores and ranks activated memories using the weighted
// competition model (spec §4.3). Only ids present in both activations
// and memories are scored. Results are sorted by score descending.
func Compete(activations map[string]float64, memories map[string]Memory, weights Weights, now time.Time) []ScoredMemory {
	if len(activations) == 0 {
		return nil
	}

	rawActivation := make(map[string]float64)
	rawRecency := make(map[string]float64)
	rawStrength := make(map[string]float64)
	for id, a := range activations {
		m, ok := memories[id]
		if !ok {
			continue
		}
		rawActivation[id] = a
		rawRecency[id] = Recency(m, now)
		rawStrength[id] = Strength(m, now)
	}

	normActivation := normalize(rawActivation)
	normStrength := normalize(rawStrength)

	results := make([]ScoredMemory, 0, len(rawActivation))
	for id := range rawActivation {
		m := memories[id]
		components := Components{
			Activation: normActivation[id],
			Recency:    rawRecency[id],
			Strength:   normStrength[id],
			Confidence: m.Confidence,
		}
		score := weights.Activation*components.Activation +
			weights.Recency*components.Recency +
			weights.Strength*components.Strength +
			weights.Confidence*components.Confidence
		score *= statusPenalty(m.Status)

		results = append(results, ScoredMemory{
			Memory:     m,
			Score:      score,
			Activation: activations[id],
			Components: components,
		})
	}

	sortScoredDescending(results)
	return results
}

// sortScoredDescending sorts scored memories by Score, descending.
func sortScoredDescending(s []ScoredMemory) {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].Score > s[j].Score
	})
}
