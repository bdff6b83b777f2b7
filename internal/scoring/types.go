// Package scoring implements the validators and LLM style judge that grade
// generated passages and questions against IELTS Academic Reading criteria.
package scoring

// Question is one multiple-choice question as emitted by the question
// executor.
type Question struct {
	ID           string   `json:"id"`
	QuestionText string   `json:"question_text"`
	Options      []string `json:"options"`
	Answer       string   `json:"answer"`
	Rationale    string   `json:"rationale,omitempty"`
	LinkedSkills []string `json:"linked_skills,omitempty"`
}

// PenmanshipRule bans regex patterns from passage text. Rules are loaded
// from a YAML file in the workspace.
type PenmanshipRule struct {
	Description    string   `yaml:"description"`
	BannedPatterns []string `yaml:"banned_patterns"`
}

// Result carries a sub-validator verdict: a score in [0,1], raw trace
// strings for the run journal, and feedback strings for reflective mutation.
type Result struct {
	Score    float64
	Raw      []string
	Feedback []string
}

// ScoreSet holds the named objective scores plus traces for one scored
// rollout. Keys match the judge category names so Pareto comparison can
// treat heuristic and judged objectives uniformly.
type ScoreSet struct {
	Scores   map[string]float64
	Raw      []string
	Feedback []string
	Band     float64
}

// Objective keys shared by validators and the optimizer.
const (
	ObjPassage      = "passage"
	ObjQuestions    = "questions"
	ObjExtractive   = "extractive"
	ObjVocabulary   = "Vocabulary_Level"
	ObjSentence     = "Sentence_Length_&_Grammar_Complexity"
	ObjReadability  = "Readability"
	ObjContent      = "Content_Balance"
	ObjAuthenticity = "Authenticity_of_Style"
)

// JudgeCategories lists the style-judge objectives in report order.
var JudgeCategories = []string{
	ObjVocabulary,
	ObjSentence,
	ObjReadability,
	ObjContent,
	ObjAuthenticity,
}
