package scoring

import (
	"context"
	"fmt"

	"ieltsforge/internal/jsonx"
	"ieltsforge/internal/llm"
	"ieltsforge/internal/logging"
)

// JudgeResult holds one style evaluation: five category scores on a 0-10
// scale plus per-category feedback.
type JudgeResult struct {
	VocabularyLevel    float64           `json:"Vocabulary_Level"`
	SentenceComplexity float64           `json:"Sentence_Length_&_Grammar_Complexity"`
	Readability        float64           `json:"Readability"`
	ContentBalance     float64           `json:"Content_Balance"`
	Authenticity       float64           `json:"Authenticity_of_Style"`
	Feedbacks          map[string]string `json:"Feedbacks"`
}

// ByCategory returns the scores keyed by objective name.
func (r JudgeResult) ByCategory() map[string]float64 {
	return map[string]float64{
		ObjVocabulary:   r.VocabularyLevel,
		ObjSentence:     r.SentenceComplexity,
		ObjReadability:  r.Readability,
		ObjContent:      r.ContentBalance,
		ObjAuthenticity: r.Authenticity,
	}
}

// StyleJudge asks an LLM how closely a passage resembles an authentic IELTS
// Academic Reading passage.
type StyleJudge struct {
	client llm.Client
}

// NewStyleJudge creates a judge backed by client.
func NewStyleJudge(client llm.Client) *StyleJudge {
	return &StyleJudge{client: client}
}

const judgeSystemPrompt = "You are an IELTS Reading examiner assistant."

const judgePromptTemplate = `IELTS Reading Passage Evaluation Prompt (Single Passage)

System Role:
You are an IELTS Reading Passage Validator. Your task is to evaluate how closely a single passage resembles an authentic IELTS Reading passage, based on specific categories used in IELTS design.

Categories to Evaluate
1. Vocabulary Level (0-10)

Uses Academic Word List (AWL) and common academic vocabulary.

Rare/technical words <= 5%%, and jargon is defined if used.

Avoids overly literary or archaic terms.

Target level: CEFR B2-C1.

2. Sentence Length & Grammar Complexity (0-10)

Average sentence length: 15-25 words.

Maximum sentence length: <= 35 words.

Mix of simple, compound, and complex sentences (not all long and dense).

Make sure complex sentences only accounts for 55-60%% the passage.

Limited subordinate clauses (<=2 per sentence).

3. Readability (0-10)

Flesch Reading Ease (FRE): Ideal: 40-60.

Flesch-Kincaid Grade Level (FKGL): Ideal: 9-11.

Smooth flow without excessive nominalisation or passive voice.

4. Content Balance (0-10)

Mix of facts, explanations, and some discussion.

Provides examples, statistics, or references (e.g., organizations, studies).

Neutral, informative tone (not persuasive or emotional).

5. Authenticity of Style (0-10)

Formal, academic but accessible.

Resembles Cambridge IELTS passage style.

Avoids journalistic flair, literary metaphors, or conversational tone.
FOLLOW THIS Output Format: (JSON)
{
  "Vocabulary_Level": <score>,
  "Sentence_Length_&_Grammar_Complexity": <score>,
  "Readability": <score>,
  "Content_Balance": <score>,
  "Authenticity_of_Style": <score>,
  "Feedbacks": {
    "Vocabulary_Level": "...",
    "Sentence_Length_&_Grammar_Complexity": "...",
    "Readability": "...",
    "Content_Balance": "...",
    "Authenticity_of_Style": "..."
  }
}
Passage:
"""%s"""
`

// Evaluate scores passage against the five style categories. A completion
// that cannot be parsed as JSON yields an all-zero result rather than an
// error, so a malformed judge response penalizes the candidate instead of
// aborting the rollout.
func (j *StyleJudge) Evaluate(ctx context.Context, passage string) JudgeResult {
	zero := JudgeResult{Feedbacks: map[string]string{
		ObjVocabulary:   "...",
		ObjSentence:     "...",
		ObjReadability:  "...",
		ObjContent:      "...",
		ObjAuthenticity: "...",
	}}

	prompt := fmt.Sprintf(judgePromptTemplate, passage)
	raw, err := j.client.CompleteWithSystem(ctx, judgeSystemPrompt, prompt)
	if err != nil {
		logging.Get(logging.CategoryScoring).Warnw("style judge call failed", "error", err)
		return zero
	}

	var result JudgeResult
	if err := jsonx.DecodeInto(raw, &result); err != nil {
		logging.Get(logging.CategoryScoring).Warnw("style judge returned unparseable JSON",
			"error", err, "raw_prefix", prefix(raw, 120))
		return zero
	}
	if result.Feedbacks == nil {
		result.Feedbacks = map[string]string{}
	}
	return result
}

func prefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n])
	}
	return s
}
