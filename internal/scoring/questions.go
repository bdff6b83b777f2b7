package scoring

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidateQuestions checks that each question carries an id, question text,
// and answer. The score is the valid fraction, floored at 0.3 so a fully
// broken question set still produces a usable gradient for mutation.
func ValidateQuestions(questions []Question) Result {
	if len(questions) == 0 {
		return Result{
			Score: 0.3,
			Raw:   []string{"questions=missing_or_not_list"},
			Feedback: []string{
				"Questions missing or invalid JSON. Require a valid JSON array of questions.",
			},
		}
	}

	var res Result
	ok := 0
	for _, q := range questions {
		if q.ID == "" || q.QuestionText == "" {
			id := q.ID
			if id == "" {
				id = "?"
			}
			res.Raw = append(res.Raw, fmt.Sprintf("question_missing_fields:%s", id))
			res.Feedback = append(res.Feedback, "Some questions missing ID or text. Ensure each has 'id' and 'question_text'.")
			continue
		}
		if q.Answer == "" {
			res.Raw = append(res.Raw, fmt.Sprintf("question_%s missing_answer", q.ID))
			res.Feedback = append(res.Feedback, fmt.Sprintf("Question %s missing answer. Always include 'answer'.", q.ID))
			continue
		}
		ok++
	}

	res.Score = float64(ok) / float64(len(questions))
	switch {
	case ok == 0:
		res.Score = 0.3
	case res.Score < 1.0:
		res.Feedback = append(res.Feedback, fmt.Sprintf("Only %d/%d questions valid. Ensure all have complete fields.", ok, len(questions)))
	default:
		res.Feedback = append(res.Feedback, "All questions valid and well-structured.")
	}
	return res
}

var answerWordRe = regexp.MustCompile(`\w+`)

// ExtractiveAnswerCheck verifies the answer is grounded in the passage.
// Exact substring match scores 1.0, all content words present scores 0.75,
// otherwise 0.0.
func ExtractiveAnswerCheck(passage string, q Question) (float64, string) {
	if q.Answer == "" {
		return 0.0, "answer_empty"
	}
	passageLower := strings.ToLower(passage)
	ansLower := strings.ToLower(q.Answer)
	if strings.Contains(passageLower, ansLower) {
		return 1.0, "answer_span_found"
	}
	var words []string
	for _, w := range answerWordRe.FindAllString(ansLower, -1) {
		if len(w) > 3 {
			words = append(words, w)
		}
	}
	if len(words) > 0 {
		all := true
		for _, w := range words {
			if !strings.Contains(passageLower, w) {
				all = false
				break
			}
		}
		if all {
			return 0.75, "answer_words_all_present"
		}
	}
	return 0.0, "answer_missing_or_paraphrased"
}

// ValidateDistractors grades wrong options by length similarity to the
// correct answer. Options wildly longer or shorter than the answer give the
// game away.
func ValidateDistractors(questions []Question) Result {
	if len(questions) == 0 {
		return Result{
			Score:    0.0,
			Raw:      []string{"distractors=missing"},
			Feedback: []string{"No distractors found. Require at least 2-3 per question."},
		}
	}

	var res Result
	valid, total := 0, 0
	for _, q := range questions {
		for _, opt := range q.Options {
			if opt == q.Answer {
				continue
			}
			total++
			diff := len(opt) - len(q.Answer)
			if diff < 0 {
				diff = -diff
			}
			if diff < 10 {
				valid++
			} else {
				res.Raw = append(res.Raw, fmt.Sprintf("distractor_bad_length:%s", opt))
				res.Feedback = append(res.Feedback, fmt.Sprintf("One distractor too different in length: '%s'", opt))
			}
		}
	}

	if total > 0 {
		res.Score = float64(valid) / float64(total)
	}
	if res.Score >= 0.7 {
		res.Feedback = append(res.Feedback, fmt.Sprintf("Distractor quality good (%d/%d acceptable).", valid, total))
	} else {
		res.Feedback = append(res.Feedback, fmt.Sprintf("Distractor quality weak (%d/%d acceptable). Balance lengths with correct answer.", valid, total))
	}
	return res
}
