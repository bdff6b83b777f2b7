package scoring

import (
	"context"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
)

// fakeJudgeClient returns a fixed style evaluation.
type fakeJudgeClient struct {
	reply string
}

func (f *fakeJudgeClient) Complete(ctx context.Context, prompt string) (string, error) {
	return f.reply, nil
}

func (f *fakeJudgeClient) CompleteWithSystem(ctx context.Context, system, user string) (string, error) {
	return f.reply, nil
}

const fullMarksJudgeReply = `{
  "Vocabulary_Level": 10,
  "Sentence_Length_&_Grammar_Complexity": 10,
  "Readability": 10,
  "Content_Balance": 10,
  "Authenticity_of_Style": 10,
  "Feedbacks": {
    "Vocabulary_Level": "good",
    "Sentence_Length_&_Grammar_Complexity": "good",
    "Readability": "good",
    "Content_Balance": "good",
    "Authenticity_of_Style": "good"
  }
}`

func newTestScorer(reply string) *Scorer {
	return NewScorer(NewStyleJudge(&fakeJudgeClient{reply: reply}), nil)
}

const validQuestionsJSON = `[
  {"id": "MCQ_1", "question_text": "What moves slowly?", "answer": "glaciers"},
  {"id": "MCQ_2", "question_text": "What rises?", "answer": "temperatures"},
  {"id": "MCQ_3", "question_text": "What is recapped?", "answer": "the passage"}
]`

func idealOutputs() Outputs {
	return Outputs{
		Passage:   buildPassage(7, 900, true) + "\nText: H. Glaciers respond as temperatures shift across the passage of years.",
		Questions: validQuestionsJSON,
	}
}

func TestScoreAllComposition(t *testing.T) {
	s := newTestScorer(fullMarksJudgeReply)
	out := Outputs{Passage: buildPassage(7, 900, true), Questions: validQuestionsJSON}

	set := s.ScoreAll(context.Background(), out, "glaciers")

	for _, key := range []string{ObjPassage, ObjQuestions, ObjExtractive, ObjVocabulary, ObjSentence, ObjReadability, ObjContent, ObjAuthenticity} {
		if _, ok := set.Scores[key]; !ok {
			t.Errorf("missing objective %q in score set", key)
		}
	}
	if set.Scores[ObjQuestions] != 1.0 {
		t.Errorf("questions = %.2f, want 1.0", set.Scores[ObjQuestions])
	}
	for _, cat := range JudgeCategories {
		if set.Scores[cat] != 1.0 {
			t.Errorf("%s = %.2f, want 1.0 (judge gave 10/10)", cat, set.Scores[cat])
		}
	}
	if set.Band < 8.0 {
		t.Errorf("band = %g, want >= 8.0 for near-perfect inputs", set.Band)
	}
	joined := strings.Join(set.Raw, "\n")
	if !strings.Contains(joined, "SCORE_BAND=") {
		t.Error("raw traces missing band entry")
	}
}

func TestScoreAllJudgeParseFailureZeroes(t *testing.T) {
	s := newTestScorer("sorry, I cannot produce JSON today")
	out := Outputs{Passage: buildPassage(7, 900, true), Questions: validQuestionsJSON}

	set := s.ScoreAll(context.Background(), out, "glaciers")

	for _, cat := range JudgeCategories {
		if set.Scores[cat] != 0.0 {
			t.Errorf("%s = %.2f, want 0.0 on judge parse failure", cat, set.Scores[cat])
		}
	}
	// Heuristic objectives are unaffected.
	if set.Scores[ObjPassage] < 0.99 {
		t.Errorf("passage = %.2f, want ~1.0", set.Scores[ObjPassage])
	}
}

func TestScoreAllDeterministic(t *testing.T) {
	s := newTestScorer(fullMarksJudgeReply)
	out := idealOutputs()
	ctx := context.Background()

	a := s.ScoreAll(ctx, out, "glaciers")
	b := s.ScoreAll(ctx, out, "glaciers")

	if diff := cmp.Diff(a.Scores, b.Scores); diff != "" {
		t.Errorf("score vectors differ between runs (-first +second):\n%s", diff)
	}
	if a.Band != b.Band {
		t.Errorf("bands differ: %g vs %g", a.Band, b.Band)
	}
}

func TestScorePassageOnlyWeights(t *testing.T) {
	s := newTestScorer(fullMarksJudgeReply)
	set := s.ScorePassageOnly(context.Background(), buildPassage(7, 900, true), "glaciers")

	if _, ok := set.Scores[ObjQuestions]; ok {
		t.Error("passage-only scoring should not include a questions objective")
	}
	if set.Band < 8.0 {
		t.Errorf("band = %g, want >= 8.0 for near-perfect inputs", set.Band)
	}
}

func TestParseQuestionsLenient(t *testing.T) {
	fenced := "```json\n" + validQuestionsJSON + "\n```"
	qs := ParseQuestions(fenced)
	if len(qs) != 3 {
		t.Fatalf("parsed %d questions from fenced JSON, want 3", len(qs))
	}
	if qs[0].ID != "MCQ_1" || qs[0].Answer != "glaciers" {
		t.Errorf("unexpected first question: %+v", qs[0])
	}

	if got := ParseQuestions("not json at all"); got != nil {
		t.Errorf("expected nil for garbage input, got %v", got)
	}
}

func TestBuildFeedbackExamples(t *testing.T) {
	long := strings.Repeat("x", 500)
	ex := BuildFeedbackExamples("glaciers", long, []string{"too short", "no summary"})
	if len(ex) != 1 {
		t.Fatalf("got %d examples, want 1", len(ex))
	}
	if len(ex[0].Output) != 200 {
		t.Errorf("output length = %d, want truncated to 200", len(ex[0].Output))
	}
	if ex[0].Feedback != "too short; no summary" {
		t.Errorf("feedback = %q", ex[0].Feedback)
	}

	ex = BuildFeedbackExamples("glaciers", "short", nil)
	if ex[0].Feedback != "Looks good." {
		t.Errorf("feedback = %q, want default", ex[0].Feedback)
	}
}

func TestToBandHalfSteps(t *testing.T) {
	for s := 0.0; s <= 1.0; s += 0.01 {
		band := ToBand(s)
		if math.Mod(band*2, 1) != 0 {
			t.Fatalf("ToBand(%.2f) = %v is not a half step", s, band)
		}
	}
}

func TestBuildFeedbackExamplesMultibyteOutput(t *testing.T) {
	passage := strings.Repeat("ü", 250)
	examples := BuildFeedbackExamples("topic", passage, nil)
	if len(examples) != 1 {
		t.Fatalf("got %d examples, want 1", len(examples))
	}
	if !utf8.ValidString(examples[0].Output) {
		t.Fatal("example output is not valid UTF-8")
	}
	if n := utf8.RuneCountInString(examples[0].Output); n != 200 {
		t.Errorf("output truncated to %d runes, want 200", n)
	}
}
