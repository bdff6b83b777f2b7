// Package exam serializes winning passages and question sets into the
// plain-text exam format consumed by the downstream packaging pipeline.
package exam

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ieltsforge/internal/logging"
	"ieltsforge/internal/scoring"
)

// Writer saves generated exams under numbered run directories: the first
// run goes to <dir>/1, the next to <dir>/2, and so on.
type Writer struct {
	baseDir string
}

// NewWriter creates a writer rooted at baseDir.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// Save writes one exam file for topic and returns its path. Option lines
// are labeled a) through d), with the correct option starred.
func (w *Writer) Save(topic, passage string, questions []scoring.Question) (string, error) {
	if err := os.MkdirAll(w.baseDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create exam directory: %w", err)
	}

	dir, err := w.nextRunDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create run directory: %w", err)
	}

	safeTopic := strings.ReplaceAll(topic, " ", "_")
	path := filepath.Join(dir, safeTopic+".txt")

	if err := os.WriteFile(path, []byte(Render(topic, passage, questions)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write exam file: %w", err)
	}
	logging.Get(logging.CategoryExam).Infow("saved exam", "path", path, "questions", len(questions))
	return path, nil
}

// nextRunDir finds the next unused numeric directory.
func (w *Writer) nextRunDir() (string, error) {
	entries, err := os.ReadDir(w.baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to list exam directory: %w", err)
	}
	count := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := strconv.Atoi(e.Name()); err == nil {
			count++
		}
	}
	return filepath.Join(w.baseDir, strconv.Itoa(count+1)), nil
}

// Render produces the exam text: the titled passage followed by numbered
// questions with lettered options.
func Render(topic, passage string, questions []scoring.Question) string {
	var lines []string

	lines = append(lines, fmt.Sprintf("Text title: %s\n", topic))
	lines = append(lines, fmt.Sprintf("Text: %s\n", strings.TrimSpace(passage)))

	if len(questions) > 0 {
		lines = append(lines, "Text: Questions\n")
		for i, q := range questions {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, strings.TrimSpace(q.QuestionText)))
			if r := strings.TrimSpace(q.Rationale); r != "" {
				lines = append(lines, "... "+r)
			}
			answer := strings.TrimSpace(q.Answer)
			for j, opt := range q.Options {
				label := string(rune('a' + j))
				if strings.TrimSpace(opt) == answer {
					lines = append(lines, fmt.Sprintf("*%s) %s", label, opt))
				} else {
					lines = append(lines, fmt.Sprintf("%s) %s", label, opt))
				}
			}
			lines = append(lines, "")
		}
	}

	return strings.Join(lines, "\n")
}
