package gepa

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ieltsforge/internal/scoring"
)

// JournalRecord is one iteration's entry in the run journal.
type JournalRecord struct {
	Iteration    int                       `json:"iteration"`
	RolloutsUsed int                       `json:"rollouts_used"`
	ParentID     string                    `json:"parent_id"`
	ChildID      string                    `json:"child_id"`
	Module       string                    `json:"module"`
	ParentScores map[string]float64        `json:"parent_scores"`
	ChildScores  map[string]float64        `json:"child_scores"`
	Accepted     bool                      `json:"accepted"`
	Exploration  bool                      `json:"exploration,omitempty"`
	Examples     []scoring.FeedbackExample `json:"examples,omitempty"`
	Traces       []string                  `json:"traces,omitempty"`
	Timestamp    time.Time                 `json:"timestamp"`
}

// Journal is an append-only JSONL log of optimization iterations.
type Journal struct {
	f   *os.File
	enc *json.Encoder
}

// NewJournal opens a timestamped journal file under dir, creating the
// directory if needed.
func NewJournal(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal dir: %w", err)
	}
	name := fmt.Sprintf("gepa_run_%s.jsonl", time.Now().Format("20060102_150405"))
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to create journal file: %w", err)
	}
	return &Journal{f: f, enc: json.NewEncoder(f)}, nil
}

// Log appends one record. Timestamp is filled in when zero.
func (j *Journal) Log(rec JournalRecord) error {
	if j == nil || j.f == nil {
		return nil
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	return j.enc.Encode(rec)
}

// Path returns the journal file location.
func (j *Journal) Path() string {
	if j == nil || j.f == nil {
		return ""
	}
	return j.f.Name()
}

// Close flushes and closes the journal file.
func (j *Journal) Close() error {
	if j == nil || j.f == nil {
		return nil
	}
	return j.f.Close()
}
