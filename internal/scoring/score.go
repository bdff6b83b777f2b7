package scoring

import (
	"context"
	"fmt"
	"math"
	"strings"

	"ieltsforge/internal/jsonx"
)

// Outputs are the raw executor products for one rollout.
type Outputs struct {
	Passage   string
	Questions string // JSON array, possibly fenced or malformed
}

// FeedbackExample pairs an input topic with a truncated output and the
// issues found, in the shape the reflective mutation prompt consumes.
type FeedbackExample struct {
	Input    string `json:"input"`
	Output   string `json:"output"`
	Feedback string `json:"feedback"`
}

// Scorer composes all validators and the style judge into the per-rollout
// score vector the optimizer consumes.
type Scorer struct {
	judge           *StyleJudge
	penmanshipRules []PenmanshipRule
}

// NewScorer creates a scorer. judge may not be nil; rules may be empty.
func NewScorer(judge *StyleJudge, rules []PenmanshipRule) *Scorer {
	return &Scorer{judge: judge, penmanshipRules: rules}
}

// ParseQuestions extracts a question list from raw executor output.
// Returns nil when no parseable JSON array is present.
func ParseQuestions(raw string) []Question {
	var qs []Question
	if err := jsonx.DecodeInto(raw, &qs); err != nil {
		return nil
	}
	return qs
}

// ToBand maps a [0,1] composite score onto the 0-9 IELTS band scale,
// rounded to the nearest half band.
func ToBand(score01 float64) float64 {
	return math.Round(score01*9.0*2) / 2
}

// ScoreAll grades a passage plus its questions: heuristic validators, the
// extractive answer check, and the LLM style judge, blended into a final
// weighted score.
func (s *Scorer) ScoreAll(ctx context.Context, out Outputs, topic string) ScoreSet {
	set := ScoreSet{Scores: make(map[string]float64)}
	questions := ParseQuestions(out.Questions)

	pRes := ValidatePassage(out.Passage)
	qRes := ValidateQuestions(questions)
	judged := s.judge.Evaluate(ctx, out.Passage)

	appendPrefixed(&set.Raw, "P:", pRes.Raw)
	appendPrefixed(&set.Raw, "Q:", qRes.Raw)
	appendPrefixed(&set.Feedback, "P:", pRes.Feedback)
	appendPrefixed(&set.Feedback, "Q:", qRes.Feedback)
	for _, cat := range JudgeCategories {
		set.Raw = append(set.Raw, fmt.Sprintf("LLM:%s=%s", cat, judged.Feedbacks[cat]))
	}

	var extractAvg float64
	if len(questions) > 0 {
		var sum float64
		for _, q := range questions {
			score, trace := ExtractiveAnswerCheck(out.Passage, q)
			sum += score
			id := q.ID
			if id == "" {
				id = "?"
			}
			set.Raw = append(set.Raw, fmt.Sprintf("EX:%s:%s", id, trace))
			set.Feedback = append(set.Feedback, fmt.Sprintf("Answer validation for %s: %s", id, trace))
		}
		extractAvg = sum / float64(len(questions))
	}

	cats := judged.ByCategory()
	set.Scores[ObjPassage] = pRes.Score
	set.Scores[ObjQuestions] = qRes.Score
	set.Scores[ObjExtractive] = extractAvg
	for _, cat := range JudgeCategories {
		set.Scores[cat] = cats[cat] / 10.0
	}

	final := 0.20*pRes.Score +
		0.15*qRes.Score +
		0.05*extractAvg +
		0.15*set.Scores[ObjVocabulary] +
		0.10*set.Scores[ObjSentence] +
		0.10*set.Scores[ObjReadability] +
		0.05*set.Scores[ObjContent] +
		0.20*set.Scores[ObjAuthenticity]
	set.Band = ToBand(final)

	set.Raw = append(set.Raw, fmt.Sprintf("SCORE_BAND=%g", set.Band))
	set.Feedback = append(set.Feedback, fmt.Sprintf("Overall estimated IELTS band: %g (0-9 scale).", set.Band))
	return set
}

// ScorePassageOnly grades a passage without questions, used by the
// standalone generation mode. The question weights are redistributed onto
// the style categories.
func (s *Scorer) ScorePassageOnly(ctx context.Context, passage string, topic string) ScoreSet {
	set := ScoreSet{Scores: make(map[string]float64)}

	pRes := ValidatePassage(passage)
	judged := s.judge.Evaluate(ctx, passage)

	appendPrefixed(&set.Raw, "P:", pRes.Raw)
	appendPrefixed(&set.Feedback, "P:", pRes.Feedback)
	for _, cat := range JudgeCategories {
		set.Raw = append(set.Raw, fmt.Sprintf("LLM:%s=%s", cat, judged.Feedbacks[cat]))
	}

	cats := judged.ByCategory()
	set.Scores[ObjPassage] = pRes.Score
	for _, cat := range JudgeCategories {
		set.Scores[cat] = cats[cat] / 10.0
	}

	final := 0.20*pRes.Score +
		0.15*set.Scores[ObjVocabulary] +
		0.15*set.Scores[ObjSentence] +
		0.10*set.Scores[ObjReadability] +
		0.10*set.Scores[ObjContent] +
		0.20*set.Scores[ObjAuthenticity]
	set.Band = ToBand(final)

	set.Raw = append(set.Raw, fmt.Sprintf("SCORE_BAND=%g", set.Band))
	set.Feedback = append(set.Feedback, fmt.Sprintf("Overall estimated IELTS band: %g (0-9 scale).", set.Band))
	return set
}

// Penmanship exposes the configured rules check for callers that grade
// passage text directly.
func (s *Scorer) Penmanship(text string) Result {
	return ValidatePenmanship(text, s.penmanshipRules)
}

// BuildFeedbackExamples packages a scored rollout for the reflective
// mutation prompt.
func BuildFeedbackExamples(topic, passage string, issues []string) []FeedbackExample {
	fb := "Looks good."
	if len(issues) > 0 {
		fb = strings.Join(issues, "; ")
	}
	out := passage
	if runes := []rune(out); len(runes) > 200 {
		out = string(runes[:200])
	}
	return []FeedbackExample{{Input: topic, Output: out, Feedback: fb}}
}

func appendPrefixed(dst *[]string, prefix string, src []string) {
	for _, s := range src {
		*dst = append(*dst, prefix+s)
	}
}
