package openmem

import "time"

// ResolveConflicts scans a scored list for contradicts edges whose
// both endpoints are present in the list, and demotes the weaker
// side of each. A memory is demoted at most once even if it loses
// multiple conflicts. The loser is the side with the smaller
// strength × confidence × recency; on a tie the neighbor discovered
// across the edge is the one demoted. The list is
// re-sorted descending after demotion.
func ResolveConflicts(scored []ScoredMemory, store *Store, now time.Time) ([]ScoredMemory, error) {
	if len(scored) < 2 {
		return scored, nil
	}

	byID := make(map[string]int, len(scored))
	for i, sm := range scored {
		byID[sm.Memory.ID] = i
	}

	demoted := make(map[string]bool)
	for _, sm := range scored {
		edges, err := store.GetEdges(sm.Memory.ID)
		if err != nil {
			return nil, err
		}

		for _, edge := range edges {
			if edge.RelType != RelContradicts {
				continue
			}
			otherID := edge.TargetID
			if edge.SourceID != sm.Memory.ID {
				otherID = edge.SourceID
			}

			otherIdx, ok := byID[otherID]
			if !ok || demoted[otherID] || demoted[sm.Memory.ID] {
				continue
			}

			a := sm.Memory
			b := scored[otherIdx].Memory
			rankA := a.Strength * a.Confidence * Recency(a, now)
			rankB := b.Strength * b.Confidence * Recency(b, now)

			loserID := b.ID
			if rankA < rankB {
				loserID = a.ID
			}
			demoted[loserID] = true
		}
	}

	out := make([]ScoredMemory, len(scored))
	for i, sm := range scored {
		if demoted[sm.Memory.ID] {
			components := sm.Components
			components.ConflictDemoted = true
			out[i] = ScoredMemory{
				Memory:     sm.Memory,
				Score:      sm.Score * 0.3,
				Activation: sm.Activation,
				Components: components,
			}
		} else {
			out[i] = sm
		}
	}

	sortScoredDescending(out)
	return out, nil
}
