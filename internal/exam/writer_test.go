package exam

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ieltsforge/internal/scoring"
)

func sampleQuestions() []scoring.Question {
	return []scoring.Question{
		{
			ID:           "Q1",
			QuestionText: "What is the main purpose of the passage?",
			Options:      []string{"To entertain", "To inform", "To persuade", "To criticise"},
			Answer:       "To inform",
			Rationale:    "The passage presents factual material throughout.",
		},
		{
			ID:           "Q2",
			QuestionText: "According to the passage, glaciers are...",
			Options:      []string{"growing", "stable", "retreating", "unknown"},
			Answer:       "retreating",
		},
	}
}

func TestRenderFormat(t *testing.T) {
	out := Render("Glacier Retreat", "Text: A. Ice moves.\nSummary: ice.", sampleQuestions())

	for _, want := range []string{
		"Text title: Glacier Retreat",
		"Text: Questions",
		"1. What is the main purpose of the passage?",
		"... The passage presents factual material throughout.",
		"a) To entertain",
		"*b) To inform",
		"2. According to the passage, glaciers are...",
		"*c) retreating",
	} {
		assert.Contains(t, out, want)
	}

	// Exactly one starred option per question.
	assert.Equal(t, 2, strings.Count(out, "*"), "starred option count")
}

func TestRenderWithoutQuestions(t *testing.T) {
	out := Render("Glaciers", "a passage", nil)
	assert.NotContains(t, out, "Text: Questions",
		"question header should be omitted when there are no questions")
}

func TestWriterNumbersRuns(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	first, err := w.Save("Glacier Retreat", "passage one", nil)
	require.NoError(t, err)
	second, err := w.Save("Coral Reefs", "passage two", nil)
	require.NoError(t, err)

	assert.Equal(t, "1", filepath.Base(filepath.Dir(first)))
	assert.Equal(t, "2", filepath.Base(filepath.Dir(second)))
	assert.Equal(t, "Glacier_Retreat.txt", filepath.Base(first))

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Text title: Glacier Retreat")
}
