// openmem-mcp exposes openmem as an MCP stdio server.
//
// Environment variables:
//
//	OPENMEM_DB         — SQLite database path (default: ~/.openmem/memories.db)
//	OPENMEM_MAX_HOPS   — spreading activation hop limit (default: 2)
//
// Usage:
//
//	go install github.com/goblincore/openmem/cmd/openmem-mcp
//	openmem-mcp
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	openmem "github.com/goblincore/openmem"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./openmem.db"
	}
	return filepath.Join(home, ".openmem", "memories.db")
}

func main() {
	dbPath := os.Getenv("OPENMEM_DB")
	if dbPath == "" {
		dbPath = defaultDBPath()
	}

	cfg := openmem.Config{DBPath: dbPath}
	if raw := os.Getenv("OPENMEM_MAX_HOPS"); raw != "" {
		if hops, err := strconv.Atoi(raw); err == nil {
			cfg.MaxHops = hops
		}
	}

	engine, err := openmem.Init(cfg)
	if err != nil {
		log.Fatalf("openmem init: %v", err)
	}
	defer engine.Close()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "openmem-mcp",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_memory",
		Description: "Store a new memory and return its id.",
	}, addHandler(engine))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "link_memories",
		Description: "Create a directed, typed, weighted edge between two existing memories.",
	}, linkHandler(engine))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "recall",
		Description: "Run the full recall pipeline (lexical search, spreading activation, weighted competition, conflict resolution, budgeted packing) and return ranked memories.",
	}, recallHandler(engine))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "reinforce_memory",
		Description: "Boost a memory's strength and access stats after it proved useful.",
	}, reinforceHandler(engine))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "supersede_memory",
		Description: "Mark an old memory superseded by a newer one and link them.",
	}, supersedeHandler(engine))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "contradict_memories",
		Description: "Record that two memories contradict each other; affects future recall ranking.",
	}, contradictHandler(engine))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "decay_all",
		Description: "Apply natural exponential decay to every memory's strength.",
	}, decayHandler(engine))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "stats",
		Description: "Return summary statistics over the whole memory store.",
	}, statsHandler(engine))

	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatalf("openmem-mcp: %v", err)
	}
}

// --- Input types ---

type addInput struct {
	Text       string   `json:"text"                 jsonschema:"The memory's text content"`
	Type       string   `json:"type,omitempty"       jsonschema:"Memory type: fact, decision, preference, incident, plan, constraint (default fact)"`
	Entities   []string `json:"entities,omitempty"   jsonschema:"Named entities mentioned in the text"`
	Confidence float64  `json:"confidence,omitempty" jsonschema:"Confidence in this memory, 0.0-1.0 (default 1.0)"`
	Gist       string   `json:"gist,omitempty"       jsonschema:"Optional short summary supplied by the caller"`
}

type linkInput struct {
	SourceID string  `json:"source_id"        jsonschema:"Source memory id"`
	TargetID string  `json:"target_id"        jsonschema:"Target memory id"`
	RelType  string  `json:"rel_type"         jsonschema:"Relationship type: mentions, supports, contradicts, depends_on, same_as"`
	Weight   float64 `json:"weight,omitempty" jsonschema:"Edge weight, 0.0-1.0 (default 0.5)"`
}

type recallInput struct {
	Query       string `json:"query"                  jsonschema:"Natural-language recall query"`
	TopK        int    `json:"top_k,omitempty"        jsonschema:"Max results to return (default 5)"`
	TokenBudget int    `json:"token_budget,omitempty" jsonschema:"Approximate token budget for packed results (default 2000)"`
}

type idInput struct {
	ID string `json:"id" jsonschema:"Memory id"`
}

type supersedeInput struct {
	OldID string `json:"old_id" jsonschema:"Memory id being superseded"`
	NewID string `json:"new_id" jsonschema:"Memory id that supersedes it"`
}

type contradictInput struct {
	AID string `json:"a_id" jsonschema:"First memory id"`
	BID string `json:"b_id" jsonschema:"Second memory id"`
}

type emptyInput struct{}

// --- Handlers ---

func addHandler(e *openmem.Engine) func(context.Context, *mcp.CallToolRequest, addInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input addInput) (*mcp.CallToolResult, any, error) {
		memType := input.Type
		if memType == "" {
			memType = "fact"
		}
		confidence := input.Confidence
		if confidence == 0 {
			confidence = 1.0
		}
		m, err := e.Add(input.Text, memType, input.Entities, confidence, input.Gist)
		if err != nil {
			return textResult(fmt.Sprintf("error: %v", err)), nil, nil
		}
		return textResult(jsonString(map[string]any{"id": m.ID})), nil, nil
	}
}

func linkHandler(e *openmem.Engine) func(context.Context, *mcp.CallToolRequest, linkInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input linkInput) (*mcp.CallToolResult, any, error) {
		weight := input.Weight
		if weight == 0 {
			weight = 0.5
		}
		edge, err := e.Link(input.SourceID, input.TargetID, openmem.RelType(input.RelType), weight)
		if err != nil {
			return textResult(fmt.Sprintf("error: %v", err)), nil, nil
		}
		return textResult(jsonString(map[string]any{"id": edge.ID})), nil, nil
	}
}

func recallHandler(e *openmem.Engine) func(context.Context, *mcp.CallToolRequest, recallInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input recallInput) (*mcp.CallToolResult, any, error) {
		topK := input.TopK
		if topK == 0 {
			topK = 5
		}
		tokenBudget := input.TokenBudget
		if tokenBudget == 0 {
			tokenBudget = 2000
		}

		results, err := e.Recall(input.Query, topK, tokenBudget)
		if err != nil {
			return textResult(fmt.Sprintf("error: %v", err)), nil, nil
		}

		out := make([]map[string]any, len(results))
		for i, r := range results {
			out[i] = scoredMemoryToMap(r)
		}
		return textResult(jsonString(out)), nil, nil
	}
}

func reinforceHandler(e *openmem.Engine) func(context.Context, *mcp.CallToolRequest, idInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, any, error) {
		if err := e.Reinforce(input.ID); err != nil {
			return textResult(fmt.Sprintf("error: %v", err)), nil, nil
		}
		return textResult(`{"status": "reinforced"}`), nil, nil
	}
}

func supersedeHandler(e *openmem.Engine) func(context.Context, *mcp.CallToolRequest, supersedeInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input supersedeInput) (*mcp.CallToolResult, any, error) {
		if err := e.Supersede(input.OldID, input.NewID); err != nil {
			return textResult(fmt.Sprintf("error: %v", err)), nil, nil
		}
		return textResult(`{"status": "superseded"}`), nil, nil
	}
}

func contradictHandler(e *openmem.Engine) func(context.Context, *mcp.CallToolRequest, contradictInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input contradictInput) (*mcp.CallToolResult, any, error) {
		if err := e.Contradict(input.AID, input.BID); err != nil {
			return textResult(fmt.Sprintf("error: %v", err)), nil, nil
		}
		return textResult(`{"status": "contradicted"}`), nil, nil
	}
}

func decayHandler(e *openmem.Engine) func(context.Context, *mcp.CallToolRequest, emptyInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
		if err := e.DecayAll(); err != nil {
			return textResult(fmt.Sprintf("error: %v", err)), nil, nil
		}
		return textResult(`{"status": "decayed"}`), nil, nil
	}
}

func statsHandler(e *openmem.Engine) func(context.Context, *mcp.CallToolRequest, emptyInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
		s, err := e.Stats()
		if err != nil {
			return textResult(fmt.Sprintf("error: %v", err)), nil, nil
		}
		return textResult(jsonString(map[string]any{
			"memory_count":       s.MemoryCount,
			"edge_count":         s.EdgeCount,
			"avg_strength":       s.AvgStrength,
			"active_count":       s.ActiveCount,
			"superseded_count":   s.SupersededCount,
			"contradicted_count": s.ContradictedCount,
		})), nil, nil
	}
}

// --- Helpers ---

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func memoryToMap(m openmem.Memory) map[string]any {
	return map[string]any{
		"id":           m.ID,
		"type":         m.Type,
		"text":         m.Text,
		"gist":         m.Gist,
		"entities":     m.Entities,
		"strength":     m.Strength,
		"confidence":   m.Confidence,
		"access_count": m.AccessCount,
		"status":       m.Status,
	}
}

func scoredMemoryToMap(r openmem.ScoredMemory) map[string]any {
	m := memoryToMap(r.Memory)
	m["score"] = r.Score
	m["activation"] = r.Activation
	m["conflict_demoted"] = r.Components.ConflictDemoted
	return m
}

func jsonString(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal: %v"}`, err)
	}
	return string(data)
}
