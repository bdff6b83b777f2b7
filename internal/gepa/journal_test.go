package gepa

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func TestJournalAppendsJSONLines(t *testing.T) {
	j, err := NewJournal(t.TempDir())
	if err != nil {
		t.Fatalf("NewJournal: %v", err)
	}
	defer j.Close()

	if !strings.HasSuffix(j.Path(), ".jsonl") {
		t.Errorf("journal path = %q, want .jsonl file", j.Path())
	}

	for i := 1; i <= 3; i++ {
		err := j.Log(JournalRecord{
			Iteration: i,
			ParentID:  "p",
			ChildID:   "c",
			Accepted:  i == 2,
		})
		if err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	f, err := os.Open(j.Path())
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer f.Close()

	var records []JournalRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec JournalRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", len(records)+1, err)
		}
		records = append(records, rec)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if records[1].Iteration != 2 || !records[1].Accepted {
		t.Errorf("unexpected second record: %+v", records[1])
	}
	if records[0].Timestamp.IsZero() {
		t.Error("timestamp should be filled in automatically")
	}
}

func TestNilJournalIsSafe(t *testing.T) {
	var j *Journal
	if err := j.Log(JournalRecord{}); err != nil {
		t.Errorf("nil journal Log returned %v", err)
	}
	if err := j.Close(); err != nil {
		t.Errorf("nil journal Close returned %v", err)
	}
}

func TestRunStoreRoundTrip(t *testing.T) {
	rs, err := NewRunStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewRunStore: %v", err)
	}
	defer rs.Close()

	runID := NewRunID()
	c := NewCandidate(testBasePrompts())
	c.Scores = map[string]float64{"passage": 0.8}
	c.Ancestry = []string{"parent-id"}

	if err := rs.SaveCandidate(runID, c); err != nil {
		t.Fatalf("SaveCandidate: %v", err)
	}
	if err := rs.RecordScores(runID, c.ID, "glaciers", c.Scores); err != nil {
		t.Fatalf("RecordScores: %v", err)
	}
	if err := rs.MarkBest(runID, c.ID); err != nil {
		t.Fatalf("MarkBest: %v", err)
	}

	got, err := rs.BestCandidate(runID)
	if err != nil {
		t.Fatalf("BestCandidate: %v", err)
	}
	if got == nil || got.ID != c.ID {
		t.Fatalf("got %+v, want candidate %s", got, c.ID)
	}
	if got.Prompts["passage"] != c.Prompts["passage"] {
		t.Error("prompts did not round-trip")
	}
	if got.Scores["passage"] != 0.8 {
		t.Errorf("scores did not round-trip: %v", got.Scores)
	}
	if len(got.Ancestry) != 1 || got.Ancestry[0] != "parent-id" {
		t.Errorf("ancestry did not round-trip: %v", got.Ancestry)
	}
}

func TestRunStoreBestOfEmptyRun(t *testing.T) {
	rs, err := NewRunStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewRunStore: %v", err)
	}
	defer rs.Close()

	got, err := rs.BestCandidate("nonexistent")
	if err != nil {
		t.Fatalf("BestCandidate: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for empty run, got %+v", got)
	}
}
