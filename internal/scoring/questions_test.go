package scoring

import (
	"strings"
	"testing"
)

func TestValidateQuestionsAllValid(t *testing.T) {
	qs := []Question{
		{ID: "MCQ_1", QuestionText: "What?", Answer: "A"},
		{ID: "MCQ_2", QuestionText: "Which?", Answer: "B"},
		{ID: "MCQ_3", QuestionText: "Why?", Answer: "C"},
	}
	res := ValidateQuestions(qs)
	if res.Score != 1.0 {
		t.Errorf("score = %.2f, want 1.0", res.Score)
	}
	if len(res.Feedback) != 1 || !strings.Contains(res.Feedback[0], "All questions valid") {
		t.Errorf("unexpected feedback: %v", res.Feedback)
	}
}

func TestValidateQuestionsAllMissingAnswer(t *testing.T) {
	qs := []Question{
		{ID: "MCQ_1", QuestionText: "What?"},
		{ID: "MCQ_2", QuestionText: "Which?"},
		{ID: "MCQ_3", QuestionText: "Why?"},
	}
	res := ValidateQuestions(qs)
	if res.Score != 0.3 {
		t.Errorf("score = %.2f, want fixed floor 0.3", res.Score)
	}
	if len(res.Feedback) != 3 {
		t.Errorf("feedback entries = %d, want exactly 3: %v", len(res.Feedback), res.Feedback)
	}
	for i, fb := range res.Feedback {
		if !strings.Contains(fb, "missing answer") {
			t.Errorf("feedback[%d] = %q, want missing-answer message", i, fb)
		}
	}
}

func TestValidateQuestionsPartial(t *testing.T) {
	qs := []Question{
		{ID: "MCQ_1", QuestionText: "What?", Answer: "A"},
		{ID: "MCQ_2", QuestionText: "Which?"},
		{ID: "", QuestionText: "Why?", Answer: "C"},
	}
	res := ValidateQuestions(qs)
	if want := 1.0 / 3.0; res.Score != want {
		t.Errorf("score = %.4f, want %.4f", res.Score, want)
	}
	joined := strings.Join(res.Feedback, "\n")
	if !strings.Contains(joined, "Only 1/3 questions valid") {
		t.Errorf("feedback missing partial summary:\n%s", joined)
	}
}

func TestValidateQuestionsEmpty(t *testing.T) {
	res := ValidateQuestions(nil)
	if res.Score != 0.3 {
		t.Errorf("score = %.2f, want 0.3", res.Score)
	}
	if len(res.Raw) != 1 || res.Raw[0] != "questions=missing_or_not_list" {
		t.Errorf("unexpected raw traces: %v", res.Raw)
	}
}

func TestExtractiveAnswerCheck(t *testing.T) {
	passage := "Text: A. Glaciers retreat due to rising global temperatures over decades."
	tests := []struct {
		name   string
		answer string
		score  float64
		trace  string
	}{
		{"exact span", "rising global temperatures", 1.0, "answer_span_found"},
		{"words present", "temperatures rising over decades", 0.75, "answer_words_all_present"},
		{"paraphrased", "ocean acidification trends", 0.0, "answer_missing_or_paraphrased"},
		{"empty", "", 0.0, "answer_empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, trace := ExtractiveAnswerCheck(passage, Question{Answer: tt.answer})
			if score != tt.score || trace != tt.trace {
				t.Errorf("got (%.2f, %s), want (%.2f, %s)", score, trace, tt.score, tt.trace)
			}
		})
	}
}

func TestValidateDistractors(t *testing.T) {
	good := []Question{{
		Answer:  "the retreat of glaciers",
		Options: []string{"the retreat of glaciers", "the growth of forests", "the spread of deserts", "the rise of oceans"},
	}}
	res := ValidateDistractors(good)
	if res.Score != 1.0 {
		t.Errorf("balanced distractors scored %.2f, want 1.0", res.Score)
	}

	bad := []Question{{
		Answer:  "ice",
		Options: []string{"ice", "a very long and obviously wrong alternative option"},
	}}
	res = ValidateDistractors(bad)
	if res.Score != 0.0 {
		t.Errorf("unbalanced distractor scored %.2f, want 0.0", res.Score)
	}

	res = ValidateDistractors(nil)
	if res.Score != 0.0 {
		t.Errorf("empty questions scored %.2f, want 0.0", res.Score)
	}
}

func TestValidatePenmanship(t *testing.T) {
	rules := []PenmanshipRule{
		{Description: "no contractions", BannedPatterns: []string{`\bdon't\b`, `\bcan't\b`}},
		{Description: "no first person", BannedPatterns: []string{`\bI think\b`}},
	}

	clean := ValidatePenmanship("The process continues without interruption.", rules)
	if clean.Score != 1.0 {
		t.Errorf("clean text scored %.2f, want 1.0", clean.Score)
	}

	dirty := ValidatePenmanship("I think glaciers don't retreat.", rules)
	if dirty.Score != 0.0 {
		t.Errorf("text violating both rules scored %.2f, want 0.0", dirty.Score)
	}

	skipped := ValidatePenmanship("anything", nil)
	if skipped.Score != 1.0 {
		t.Errorf("no rules scored %.2f, want 1.0", skipped.Score)
	}
}
