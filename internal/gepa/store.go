package gepa

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"ieltsforge/internal/logging"

	_ "github.com/mattn/go-sqlite3"
)

// RunStore persists candidates and the per-topic score ledger across
// optimization runs, so interrupted runs can be inspected and winning
// prompts survive the process.
type RunStore struct {
	mu        sync.Mutex
	db        *sql.DB
	storePath string
}

// NewRunStore opens (or creates) the run database under runDir.
func NewRunStore(runDir string) (*RunStore, error) {
	storePath := filepath.Join(runDir, "gepa", "runs.db")

	if err := os.MkdirAll(filepath.Dir(storePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create run store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", storePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open run database: %w", err)
	}

	rs := &RunStore{db: db, storePath: storePath}
	if err := rs.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	logging.GEPA("run store initialized: path=%s", storePath)
	return rs, nil
}

func (rs *RunStore) ensureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS candidates (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		prompts TEXT NOT NULL,
		scores TEXT,
		ancestry TEXT,
		is_best INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_candidates_run ON candidates(run_id);

	CREATE TABLE IF NOT EXISTS score_ledger (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		candidate_id TEXT NOT NULL,
		topic TEXT NOT NULL,
		scores TEXT NOT NULL,
		recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (candidate_id) REFERENCES candidates(id)
	);

	CREATE INDEX IF NOT EXISTS idx_ledger_candidate ON score_ledger(run_id, candidate_id);
	`
	_, err := rs.db.Exec(schema)
	return err
}

// SaveCandidate upserts a candidate under runID.
func (rs *RunStore) SaveCandidate(runID string, c *Candidate) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	prompts, err := json.Marshal(c.Prompts)
	if err != nil {
		return fmt.Errorf("failed to marshal prompts: %w", err)
	}
	scores, err := json.Marshal(c.Scores)
	if err != nil {
		return fmt.Errorf("failed to marshal scores: %w", err)
	}
	ancestry, err := json.Marshal(c.Ancestry)
	if err != nil {
		return fmt.Errorf("failed to marshal ancestry: %w", err)
	}

	_, err = rs.db.Exec(`
		INSERT INTO candidates (id, run_id, prompts, scores, ancestry)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET prompts=excluded.prompts, scores=excluded.scores, ancestry=excluded.ancestry`,
		c.ID, runID, string(prompts), string(scores), string(ancestry))
	return err
}

// MarkBest flags a candidate as the winner of its run.
func (rs *RunStore) MarkBest(runID, candidateID string) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	_, err := rs.db.Exec(`UPDATE candidates SET is_best = (id = ?) WHERE run_id = ?`, candidateID, runID)
	return err
}

// RecordScores appends one (candidate, topic) score vector to the ledger.
func (rs *RunStore) RecordScores(runID, candidateID, topic string, scores map[string]float64) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	data, err := json.Marshal(scores)
	if err != nil {
		return fmt.Errorf("failed to marshal scores: %w", err)
	}
	_, err = rs.db.Exec(`
		INSERT INTO score_ledger (run_id, candidate_id, topic, scores)
		VALUES (?, ?, ?, ?)`,
		runID, candidateID, topic, string(data))
	return err
}

// BestCandidate loads the winning candidate of runID, or the most recent
// run when runID is empty. Returns nil when nothing is stored.
func (rs *RunStore) BestCandidate(runID string) (*Candidate, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	query := `SELECT id, prompts, scores, ancestry FROM candidates WHERE is_best = 1`
	args := []interface{}{}
	if runID != "" {
		query += ` AND run_id = ?`
		args = append(args, runID)
	}
	query += ` ORDER BY created_at DESC LIMIT 1`

	row := rs.db.QueryRow(query, args...)
	var c Candidate
	var prompts, scores, ancestry string
	if err := row.Scan(&c.ID, &prompts, &scores, &ancestry); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(prompts), &c.Prompts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal prompts: %w", err)
	}
	if scores != "" {
		if err := json.Unmarshal([]byte(scores), &c.Scores); err != nil {
			return nil, fmt.Errorf("failed to unmarshal scores: %w", err)
		}
	}
	if ancestry != "" {
		if err := json.Unmarshal([]byte(ancestry), &c.Ancestry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ancestry: %w", err)
		}
	}
	return &c, nil
}

// NewRunID returns a timestamped run identifier.
func NewRunID() string {
	return time.Now().Format("20060102_150405")
}

// Close releases the database handle.
func (rs *RunStore) Close() error {
	if rs == nil || rs.db == nil {
		return nil
	}
	return rs.db.Close()
}
