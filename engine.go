package openmem

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goblincore/openmem/internal/obslog"
)

var log = obslog.For("engine")

// Engine is the cognitive memory engine: it owns a Store and is the
// single writer against it. It orchestrates add/link/recall/
// reinforce/supersede/contradict/decay/stats.
type Engine struct {
	store       *Store
	config      Config
	mu          sync.Mutex
	cancelDecay func()
}

// Init opens (or creates) the backing store and returns a ready Engine.
// If cfg.DecayInterval is non-zero, a background goroutine calls
// DecayAll on that interval until Close.
func Init(cfg Config) (*Engine, error) {
	cfg.ApplyDefaults()

	store, err := NewStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	e := &Engine{store: store, config: cfg}

	if cfg.DecayInterval > 0 {
		e.startDecayWorker(cfg.DecayInterval)
	}

	log.Info("initialized", "db", cfg.DBPath, "max_hops", cfg.MaxHops, "decay_per_hop", cfg.DecayPerHop)
	return e, nil
}

// newID returns a random 128-bit identifier, hex-encoded without
// separators (matching the spec's "opaque 128-bit identifier").
func newID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// Add stores a new memory and returns it.
func (e *Engine) Add(text, memType string, entities []string, confidence float64, gist string) (Memory, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	m := Memory{
		ID:          newID(),
		Type:        memType,
		Text:        text,
		Gist:        gist,
		Entities:    entities,
		CreatedAt:   now,
		UpdatedAt:   now,
		Strength:    1.0,
		Confidence:  confidence,
		AccessCount: 0,
		Status:      StatusActive,
	}
	if err := e.store.AddMemory(m); err != nil {
		return Memory{}, err
	}
	return m, nil
}

// Link creates a new directed edge between two existing memories.
// Self-links are accepted.
func (e *Engine) Link(sourceID, targetID string, relType RelType, weight float64) (Edge, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.link(sourceID, targetID, relType, weight)
}

// link is the unlocked core of Link, reused by Supersede/Contradict
// which already hold the mutex.
func (e *Engine) link(sourceID, targetID string, relType RelType, weight float64) (Edge, error) {
	edge := Edge{
		ID:        newID(),
		SourceID:  sourceID,
		TargetID:  targetID,
		RelType:   relType,
		Weight:    weight,
		CreatedAt: time.Now(),
	}
	if err := e.store.AddEdge(edge); err != nil {
		return Edge{}, err
	}
	return edge, nil
}

// Recall runs the full recall pipeline: lexical retrieval, spreading
// activation, weighted competition, conflict resolution, and
// budgeted packing. It returns at most topK results, ordered by
// descending score, and bumps access stats on every returned memory.
func (e *Engine) Recall(query string, topK, tokenBudget int) ([]ScoredMemory, error) {
	now := time.Now()

	hits, err := e.store.SearchBM25(query, topK*4)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}

	maxScore := hits[0].Score
	for _, h := range hits {
		if h.Score > maxScore {
			maxScore = h.Score
		}
	}
	if maxScore == 0 {
		maxScore = 1.0
	}

	seeds := make(map[string]float64, len(hits))
	for _, h := range hits {
		v := h.Score / maxScore
		if v <= 0 {
			v = 1e-9
		}
		if v > 1 {
			v = 1
		}
		seeds[h.ID] = v
	}

	activations, err := Spread(seeds, e.store, e.config.MaxHops, e.config.DecayPerHop)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(activations))
	for id := range activations {
		ids = append(ids, id)
	}
	allMemories, err := e.store.GetMemoriesByIDs(ids)
	if err != nil {
		return nil, err
	}

	memories := make(map[string]Memory, len(allMemories))
	for id, m := range allMemories {
		if m.Status == StatusDeleted {
			continue
		}
		memories[id] = m
	}

	scored := Compete(activations, memories, e.config.resolvedWeights, now)

	scored, err = ResolveConflicts(scored, e.store, now)
	if err != nil {
		return nil, err
	}

	packed := e.pack(scored, topK, tokenBudget)

	e.mu.Lock()
	for _, sm := range packed {
		if err := e.store.UpdateAccess(sm.Memory.ID); err != nil {
			log.Warn("update access failed", "id", sm.Memory.ID, "error", err)
		}
	}
	e.mu.Unlock()

	return packed, nil
}

// pack greedily accepts scored entries, in order, under a character
// budget of tokenBudget*CharsPerToken, always yielding at least one
// result when scored is non-empty and topK >= 1, and never exceeding
// topK items.
func (e *Engine) pack(scored []ScoredMemory, topK, tokenBudget int) []ScoredMemory {
	if topK <= 0 || len(scored) == 0 {
		return nil
	}

	charBudget := tokenBudget * e.config.CharsPerToken
	var packed []ScoredMemory
	usedChars := 0

	for _, sm := range scored {
		textLen := len(sm.Memory.Text)
		if len(packed) > 0 && usedChars+textLen > charBudget {
			break
		}
		packed = append(packed, sm)
		usedChars += textLen
		if len(packed) >= topK {
			break
		}
	}
	return packed
}

// Reinforce boosts a memory's strength and access stats. A no-op if
// the memory doesn't exist.
func (e *Engine) Reinforce(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, ok, err := e.store.GetMemory(id)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	now := time.Now()
	m.Strength = clamp01(m.Strength + 0.1)
	m.AccessCount++
	m.LastAccessed = &now
	m.UpdatedAt = now
	return e.store.UpdateMemory(m)
}

// Supersede marks oldID superseded and links newID --same_as--> oldID.
// The engine does not check newID itself; if no memory has that id, the
// store's foreign key rejects the same_as edge and that error is returned.
func (e *Engine) Supersede(oldID, newID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	old, ok, err := e.store.GetMemory(oldID)
	if err != nil {
		return err
	}
	if ok {
		old.Status = StatusSuperseded
		old.UpdatedAt = time.Now()
		if err := e.store.UpdateMemory(old); err != nil {
			return err
		}
	}

	_, err = e.link(newID, oldID, RelSameAs, 0.3)
	return err
}

// Contradict creates a contradicts edge between two memories. No
// status change is made here — conflict effects only appear during
// Recall.
func (e *Engine) Contradict(aID, bID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, err := e.link(aID, bID, RelContradicts, 0.8)
	return err
}

// DecayAll applies natural exponential decay to every memory's
// strength. Memories updated within the last ~15 minutes are skipped.
// updated_at is not advanced — a second pass at the same instant
// reapplies the same factor.
func (e *Engine) DecayAll() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	updated, err := e.store.DecaySweep(time.Now())
	if err != nil {
		return err
	}
	if updated > 0 {
		log.Info("decay sweep complete", "updated", updated)
	}
	return nil
}

// Stats summarizes the current state of the store.
type Stats struct {
	MemoryCount       int
	EdgeCount         int
	AvgStrength       float64
	ActiveCount       int
	SupersededCount   int
	ContradictedCount int
}

// Stats computes summary statistics over the whole store.
func (e *Engine) Stats() (Stats, error) {
	memories, err := e.store.AllMemories()
	if err != nil {
		return Stats{}, err
	}

	edgeIDs := make(map[string]bool)
	var strengthSum float64
	var active, superseded, contradicted int

	for _, m := range memories {
		strengthSum += m.Strength
		switch m.Status {
		case StatusActive:
			active++
		case StatusSuperseded:
			superseded++
		case StatusContradicted:
			contradicted++
		}

		edges, err := e.store.GetEdges(m.ID)
		if err != nil {
			return Stats{}, err
		}
		for _, edge := range edges {
			edgeIDs[edge.ID] = true
		}
	}

	avg := 0.0
	if len(memories) > 0 {
		avg = strengthSum / float64(len(memories))
	}

	return Stats{
		MemoryCount:       len(memories),
		EdgeCount:         len(edgeIDs),
		AvgStrength:       avg,
		ActiveCount:       active,
		SupersededCount:   superseded,
		ContradictedCount: contradicted,
	}, nil
}

// Close stops the decay worker (if running) and closes the store.
func (e *Engine) Close() error {
	if e.cancelDecay != nil {
		e.cancelDecay()
	}
	return e.store.Close()
}
