package openmem

// Spread performs breadth-limited spreading activation over the edge
// graph. Starting from seed activations (typically BM25 hits),
// activation propagates along edges with multiplicative decay per hop.
//
// A node reached by multiple paths takes the maximum of the incoming
// values; seeds are never decreased, only ever raised by a larger
// spread from another seed. With maxHops == 0 the output equals the
// seeds verbatim. Empty seeds yield empty output.
func Spread(seeds map[string]float64, store *Store, maxHops int, decayPerHop float64) (map[string]float64, error) {
	activations := make(map[string]float64, len(seeds))
	for id, v := range seeds {
		activations[id] = v
	}

	frontier := make([]string, 0, len(seeds))
	for id := range seeds {
		frontier = append(frontier, id)
	}

	for hop := 0; hop < maxHops; hop++ {
		if len(frontier) == 0 {
			break
		}

		nextSet := make(map[string]bool)
		for _, nodeID := range frontier {
			neighbors, err := store.GetNeighbors(nodeID)
			if err != nil {
				return nil, err
			}
			for _, n := range neighbors {
				spreadValue := activations[nodeID] * n.Edge.Weight * pow(decayPerHop, hop+1)
				if spreadValue > activations[n.Memory.ID] {
					activations[n.Memory.ID] = spreadValue
					nextSet[n.Memory.ID] = true
				}
			}
		}

		nextFrontier := make([]string, 0, len(nextSet))
		for id := range nextSet {
			nextFrontier = append(nextFrontier, id)
		}
		frontier = nextFrontier
	}

	return activations, nil
}

// pow computes base^exp for a small non-negative integer exponent.
func pow(base float64, exp int) float64 {
	result := 1.0
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}
