package openmem

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite connection for cognitive-memory persistence.
// It owns two authoritative tables (memories, edges) plus a derived
// FTS5 inverted index kept in sync by triggers.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database and runs migrations.
// A path of ":memory:" requests an ephemeral, process-local store.
func NewStore(path string) (*Store, error) {
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	if path == ":memory:" {
		dsn = "file::memory:?cache=shared&_journal_mode=WAL&_busy_timeout=5000"
	} else if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("openmem: mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("openmem: open db: %w", err)
	}

	// Single connection avoids write contention; SQLite is our only writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("openmem: enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("openmem: migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`)

	var version int
	s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)

	if version < 1 {
		if _, err := s.db.Exec(`
			CREATE TABLE IF NOT EXISTS memories (
				id             TEXT    PRIMARY KEY,
				type           TEXT    NOT NULL DEFAULT 'fact',
				text           TEXT    NOT NULL,
				gist           TEXT    NOT NULL DEFAULT '',
				entities       TEXT    NOT NULL DEFAULT '[]',
				created_at     REAL    NOT NULL,
				updated_at     REAL    NOT NULL,
				strength       REAL    NOT NULL DEFAULT 1.0,
				confidence     REAL    NOT NULL DEFAULT 1.0,
				access_count   INTEGER NOT NULL DEFAULT 0,
				last_accessed  REAL,
				status         TEXT    NOT NULL DEFAULT 'active'
			);

			CREATE TABLE IF NOT EXISTS edges (
				id         TEXT PRIMARY KEY,
				source_id  TEXT NOT NULL REFERENCES memories(id),
				target_id  TEXT NOT NULL REFERENCES memories(id),
				rel_type   TEXT NOT NULL DEFAULT 'mentions',
				weight     REAL NOT NULL DEFAULT 0.5,
				created_at REAL NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_id);
			CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_id);

			CREATE VIRTUAL TABLE IF NOT EXISTS memories_fts USING fts5(
				id UNINDEXED,
				text,
				gist,
				entities,
				content='memories',
				content_rowid='rowid'
			);

			CREATE TRIGGER IF NOT EXISTS memories_ai AFTER INSERT ON memories BEGIN
				INSERT INTO memories_fts(rowid, id, text, gist, entities)
				VALUES (new.rowid, new.id, new.text, new.gist, new.entities);
			END;

			CREATE TRIGGER IF NOT EXISTS memories_ad AFTER DELETE ON memories BEGIN
				INSERT INTO memories_fts(memories_fts, rowid, id, text, gist, entities)
				VALUES ('delete', old.rowid, old.id, old.text, old.gist, old.entities);
			END;

			CREATE TRIGGER IF NOT EXISTS memories_au AFTER UPDATE ON memories BEGIN
				INSERT INTO memories_fts(memories_fts, rowid, id, text, gist, entities)
				VALUES ('delete', old.rowid, old.id, old.text, old.gist, old.entities);
				INSERT INTO memories_fts(rowid, id, text, gist, entities)
				VALUES (new.rowid, new.id, new.text, new.gist, new.entities);
			END;
		`); err != nil {
			return err
		}
		s.db.Exec(`INSERT INTO schema_version (version) VALUES (1)`)
	}

	return nil
}

// --- time helpers ---

func toEpoch(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func fromEpoch(sec float64) time.Time {
	return time.Unix(0, int64(sec*1e9)).UTC()
}

// --- Memory CRUD ---

// AddMemory persists a new memory row (and its FTS index entry, via trigger).
func (s *Store) AddMemory(m Memory) error {
	entitiesJSON, err := json.Marshal(m.Entities)
	if err != nil {
		return fmt.Errorf("openmem: marshal entities: %w", err)
	}

	var lastAccessed any
	if m.LastAccessed != nil {
		lastAccessed = toEpoch(*m.LastAccessed)
	}

	_, err = s.db.Exec(`
		INSERT INTO memories (id, type, text, gist, entities, created_at, updated_at,
		                      strength, confidence, access_count, last_accessed, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Type, m.Text, m.Gist, string(entitiesJSON),
		toEpoch(m.CreatedAt), toEpoch(m.UpdatedAt),
		m.Strength, m.Confidence, m.AccessCount, lastAccessed, string(m.Status),
	)
	if err != nil {
		return fmt.Errorf("openmem: insert memory: %w", err)
	}
	return nil
}

const memoryCols = `id, type, text, gist, entities, created_at, updated_at,
	strength, confidence, access_count, last_accessed, status`

func scanMemory(scan func(dest ...any) error) (Memory, error) {
	var m Memory
	var entitiesJSON string
	var created, updated float64
	var lastAccessed sql.NullFloat64
	var status string

	if err := scan(
		&m.ID, &m.Type, &m.Text, &m.Gist, &entitiesJSON, &created, &updated,
		&m.Strength, &m.Confidence, &m.AccessCount, &lastAccessed, &status,
	); err != nil {
		return m, err
	}

	if err := json.Unmarshal([]byte(entitiesJSON), &m.Entities); err != nil {
		return m, fmt.Errorf("openmem: unmarshal entities: %w", err)
	}
	m.CreatedAt = fromEpoch(created)
	m.UpdatedAt = fromEpoch(updated)
	if lastAccessed.Valid {
		t := fromEpoch(lastAccessed.Float64)
		m.LastAccessed = &t
	}
	m.Status = Status(status)
	return m, nil
}

// GetMemory loads a memory by id, or (zero value, false) if not found.
func (s *Store) GetMemory(id string) (Memory, bool, error) {
	row := s.db.QueryRow(`SELECT `+memoryCols+` FROM memories WHERE id = ?`, id)
	m, err := scanMemory(row.Scan)
	if err == sql.ErrNoRows {
		return Memory{}, false, nil
	}
	if err != nil {
		return Memory{}, false, fmt.Errorf("openmem: get memory: %w", err)
	}
	return m, true, nil
}

// AllMemories returns every memory row, including non-active ones.
func (s *Store) AllMemories() ([]Memory, error) {
	rows, err := s.db.Query(`SELECT ` + memoryCols + ` FROM memories`)
	if err != nil {
		return nil, fmt.Errorf("openmem: all memories: %w", err)
	}
	defer rows.Close()

	var out []Memory
	for rows.Next() {
		m, err := scanMemory(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetMemoriesByIDs batch-loads memories for a set of ids, skipping any
// that no longer exist.
func (s *Store) GetMemoriesByIDs(ids []string) (map[string]Memory, error) {
	out := make(map[string]Memory, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	rows, err := s.db.Query(
		`SELECT `+memoryCols+` FROM memories WHERE id IN (`+strings.Join(placeholders, ",")+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("openmem: get memories by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanMemory(rows.Scan)
		if err != nil {
			return nil, err
		}
		out[m.ID] = m
	}
	return out, rows.Err()
}

// UpdateMemory persists the full current state of a memory row
// (and its FTS index entry, via trigger).
func (s *Store) UpdateMemory(m Memory) error {
	entitiesJSON, err := json.Marshal(m.Entities)
	if err != nil {
		return fmt.Errorf("openmem: marshal entities: %w", err)
	}

	var lastAccessed any
	if m.LastAccessed != nil {
		lastAccessed = toEpoch(*m.LastAccessed)
	}

	_, err = s.db.Exec(`
		UPDATE memories SET type=?, text=?, gist=?, entities=?, updated_at=?,
		                    strength=?, confidence=?, access_count=?, last_accessed=?, status=?
		WHERE id=?`,
		m.Type, m.Text, m.Gist, string(entitiesJSON), toEpoch(m.UpdatedAt),
		m.Strength, m.Confidence, m.AccessCount, lastAccessed, string(m.Status),
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("openmem: update memory: %w", err)
	}
	return nil
}

// UpdateAccess bumps access_count and sets last_accessed/updated_at to now.
func (s *Store) UpdateAccess(id string) error {
	now := toEpoch(time.Now())
	_, err := s.db.Exec(`
		UPDATE memories SET access_count = access_count + 1,
		                    last_accessed = ?, updated_at = ?
		WHERE id = ?`,
		now, now, id,
	)
	if err != nil {
		return fmt.Errorf("openmem: update access: %w", err)
	}
	return nil
}

// --- Edge CRUD ---

// AddEdge persists a new edge. SQLite's foreign-key enforcement rejects
// edges whose endpoints don't exist.
func (s *Store) AddEdge(e Edge) error {
	_, err := s.db.Exec(`
		INSERT INTO edges (id, source_id, target_id, rel_type, weight, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.SourceID, e.TargetID, string(e.RelType), e.Weight, toEpoch(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("openmem: insert edge: %w", err)
	}
	return nil
}

func scanEdge(scan func(dest ...any) error) (Edge, error) {
	var e Edge
	var relType string
	var created float64
	if err := scan(&e.ID, &e.SourceID, &e.TargetID, &relType, &e.Weight, &created); err != nil {
		return e, err
	}
	e.RelType = RelType(relType)
	e.CreatedAt = fromEpoch(created)
	return e, nil
}

const edgeCols = `id, source_id, target_id, rel_type, weight, created_at`

// GetEdges returns every edge touching id, in either direction.
func (s *Store) GetEdges(id string) ([]Edge, error) {
	rows, err := s.db.Query(
		`SELECT `+edgeCols+` FROM edges WHERE source_id = ? OR target_id = ?`,
		id, id,
	)
	if err != nil {
		return nil, fmt.Errorf("openmem: get edges: %w", err)
	}
	defer rows.Close()

	var out []Edge
	for rows.Next() {
		e, err := scanEdge(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Neighbor pairs the connecting edge with the memory at its other endpoint.
type Neighbor struct {
	Edge   Edge
	Memory Memory
}

// GetNeighbors returns (edge, neighbor-memory) pairs for id, treating
// edges as undirected. Edges whose other endpoint no longer exists are
// omitted.
func (s *Store) GetNeighbors(id string) ([]Neighbor, error) {
	edges, err := s.GetEdges(id)
	if err != nil {
		return nil, err
	}

	var out []Neighbor
	for _, e := range edges {
		otherID := e.TargetID
		if e.SourceID != id {
			otherID = e.SourceID
		}
		mem, ok, err := s.GetMemory(otherID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, Neighbor{Edge: e, Memory: mem})
	}
	return out, nil
}

// --- Ranked text search ---

// ScoredID is a (memory id, relevance score) pair; higher is better.
type ScoredID struct {
	ID    string
	Score float64
}

// SearchBM25 tokenizes the query on whitespace, wraps each token as a
// literal FTS5 term (so punctuation can't cause a MATCH syntax error),
// combines the tokens with an "any-of" OR, and ranks by BM25. Scores
// are returned positive and higher-is-better, regardless of FTS5's own
// lower-is-better convention. An empty or whitespace-only query
// returns (nil, nil) without touching the database.
func (s *Store) SearchBM25(query string, limit int) ([]ScoredID, error) {
	matchQuery := escapeFTSQuery(query)
	if matchQuery == "" {
		return nil, nil
	}

	rows, err := s.db.Query(`
		SELECT id, bm25(memories_fts) AS rank
		FROM memories_fts
		WHERE memories_fts MATCH ?
		ORDER BY rank
		LIMIT ?`,
		matchQuery, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("openmem: search bm25: %w", err)
	}
	defer rows.Close()

	var out []ScoredID
	for rows.Next() {
		var id string
		var rank float64
		if err := rows.Scan(&id, &rank); err != nil {
			return nil, err
		}
		// bm25() is lower-is-better; negate for a positive, higher-is-better score.
		out = append(out, ScoredID{ID: id, Score: -rank})
	}
	return out, rows.Err()
}

// escapeFTSQuery turns a raw user query into a safe FTS5 MATCH
// expression by double-quoting each whitespace-separated token.
func escapeFTSQuery(query string) string {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return ""
	}
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " OR ")
}

// --- Decay sweep ---

// DecaySweep applies exponential decay to every memory's strength.
// It never deletes rows — deletion is logical (status = deleted) and
// is not a side effect of decay.
func (s *Store) DecaySweep(now time.Time) (updated int, err error) {
	memories, err := s.AllMemories()
	if err != nil {
		return 0, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("openmem: decay sweep: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`UPDATE memories SET strength = ? WHERE id = ?`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, m := range memories {
		days := now.Sub(m.UpdatedAt).Hours() / 24.0
		if days < 0.01 {
			continue
		}
		newStrength := clamp01(m.Strength * expDecay(0.01, days))
		if _, err := stmt.Exec(newStrength, m.ID); err != nil {
			return updated, err
		}
		updated++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("openmem: decay sweep commit: %w", err)
	}
	return updated, nil
}

// Close shuts down the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
