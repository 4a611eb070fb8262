// Package openmem is a persistent cognitive memory store for an AI
// assistant: it ingests short textual memories, links them into a
// directed relationship graph, and answers natural-language recall
// queries with a ranked list of the most relevant memories.
package openmem

import "time"

// Status is a memory's lifecycle state.
type Status string

const (
	StatusActive       Status = "active"
	StatusSuperseded   Status = "superseded"
	StatusContradicted Status = "contradicted"
	StatusDeleted      Status = "deleted"
)

// RelType is the kind of relationship an Edge represents.
type RelType string

const (
	RelMentions    RelType = "mentions"
	RelSupports    RelType = "supports"
	RelContradicts RelType = "contradicts"
	RelDependsOn   RelType = "depends_on"
	RelSameAs      RelType = "same_as"
)

// Memory is a single remembered statement with metadata.
//
// Type is free-form: fact, decision, preference, incident, plan,
// constraint are the conventional values, but unknown values are
// accepted and preserved — they simply carry no special scoring
// semantics.
type Memory struct {
	ID           string
	Type         string
	Text         string
	Gist         string
	Entities     []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastAccessed *time.Time
	Strength     float64
	Confidence   float64
	AccessCount  int
	Status       Status
}

// Edge is a directed, typed, weighted relationship between two
// memories. Edges are undirected for traversal purposes (see
// Store.GetNeighbors) but direction is preserved in storage.
type Edge struct {
	ID        string
	SourceID  string
	TargetID  string
	RelType   RelType
	Weight    float64
	CreatedAt time.Time
}

// ScoredMemory is a transient recall result: a memory, its raw
// post-spread activation, its final competition score, and a named
// component breakdown for observability.
type ScoredMemory struct {
	Memory     Memory
	Score      float64
	Activation float64
	Components Components
}

// Components is the named score breakdown attached to a ScoredMemory.
type Components struct {
	Activation      float64
	Recency         float64
	Strength        float64
	Confidence      float64
	ConflictDemoted bool
}

// Weights controls the competition formula's coefficients.
type Weights struct {
	Activation float64
	Recency    float64
	Strength   float64
	Confidence float64
}

// DefaultWeights returns the spec's fixed competition weights.
func DefaultWeights() Weights {
	return Weights{
		Activation: 0.5,
		Recency:    0.2,
		Strength:   0.2,
		Confidence: 0.1,
	}
}

// statusPenalty returns the multiplicative down-weighting applied in
// scoring for a given lifecycle status. Unknown statuses (including
// the zero value) are treated as active — deleted memories must be
// filtered out upstream of scoring.
func statusPenalty(s Status) float64 {
	switch s {
	case StatusActive:
		return 1.0
	case StatusSuperseded:
		return 0.5
	case StatusContradicted:
		return 0.3
	default:
		return 1.0
	}
}

// Config holds Engine initialization parameters.
type Config struct {
	// DBPath is the SQLite file path, or ":memory:" for an ephemeral store.
	DBPath string

	// MaxHops bounds spreading activation's breadth (default 2).
	MaxHops int
	// DecayPerHop is spreading activation's per-hop multiplicative decay (default 0.5).
	DecayPerHop float64

	// Weights overrides the competition formula's coefficients (nil = DefaultWeights).
	Weights *Weights

	// CharsPerToken is the packing heuristic's token-to-character ratio (default 4).
	CharsPerToken int

	// DecayInterval, if non-zero, starts a background goroutine that calls
	// DecayAll on this interval. Zero (the default) means decay only runs
	// when the caller invokes DecayAll explicitly.
	DecayInterval time.Duration

	// resolvedWeights holds the merged weights after ApplyDefaults.
	resolvedWeights Weights
}

// ApplyDefaults fills zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.DBPath == "" {
		c.DBPath = ":memory:"
	}
	if c.MaxHops == 0 {
		c.MaxHops = 2
	}
	if c.DecayPerHop == 0 {
		c.DecayPerHop = 0.5
	}
	if c.CharsPerToken == 0 {
		c.CharsPerToken = 4
	}
	if c.Weights != nil {
		c.resolvedWeights = *c.Weights
	} else {
		c.resolvedWeights = DefaultWeights()
	}
}
