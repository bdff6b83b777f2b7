package scoring

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	idealWordCount  = 900
	wordCountWidth  = 900
	idealParagraphs = 7
)

var (
	wordRe      = regexp.MustCompile(`\b\w+\b`)
	paragraphRe = regexp.MustCompile(`Text:\s*[A-Z]\.`)
)

// CleanPassageBody strips metadata lines such as "Quiz title:" and keeps
// only the labeled paragraphs and the summary line.
func CleanPassageBody(passage string) string {
	var body []string
	for _, line := range strings.Split(strings.TrimSpace(passage), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "Text:") || strings.HasPrefix(trimmed, "Summary:") {
			body = append(body, line)
		}
	}
	return strings.Join(body, "\n")
}

// WordCount counts words in the cleaned passage body only.
func WordCount(passage string) int {
	return len(wordRe.FindAllString(CleanPassageBody(passage), -1))
}

// ParagraphCount counts paragraphs by their "Text: A." markers.
func ParagraphCount(passage string) int {
	return len(paragraphRe.FindAllString(CleanPassageBody(passage), -1))
}

// ValidatePassage scores a passage on length, paragraph structure, and the
// presence of a closing summary line. The score is a weighted blend:
// 0.5 word count, 0.3 paragraph count, 0.2 summary.
func ValidatePassage(passage string) Result {
	var res Result

	wc := WordCount(passage)
	pc := ParagraphCount(passage)

	wcScore := 1 - abs(float64(wc)-idealWordCount)/wordCountWidth
	if wcScore < 0 {
		wcScore = 0
	}
	res.Raw = append(res.Raw, fmt.Sprintf("word_count=%d", wc))
	switch {
	case wc < 600:
		res.Feedback = append(res.Feedback, fmt.Sprintf("Passage too short (%d words). Aim for ~900 words.", wc))
	case wc > 1200:
		res.Feedback = append(res.Feedback, fmt.Sprintf("Passage too long (%d words). Aim for ~900 words.", wc))
	default:
		res.Feedback = append(res.Feedback, fmt.Sprintf("Passage length acceptable (%d words).", wc))
	}

	var pcScore float64
	if pc >= 5 && pc <= 9 {
		pcScore = 1.0
	} else {
		pcScore = 1 - abs(float64(pc)-idealParagraphs)/idealParagraphs
		if pcScore < 0 {
			pcScore = 0
		}
	}
	res.Raw = append(res.Raw, fmt.Sprintf("paragraph_count=%d", pc))
	switch {
	case pc < 5:
		res.Feedback = append(res.Feedback, fmt.Sprintf("Too few paragraphs (%d). Target 5-9.", pc))
	case pc > 9:
		res.Feedback = append(res.Feedback, fmt.Sprintf("Too many paragraphs (%d). Target 5-9.", pc))
	default:
		res.Feedback = append(res.Feedback, fmt.Sprintf("Paragraph count within range (%d).", pc))
	}

	var sumScore float64
	if strings.Contains(passage, "Summary:") {
		sumScore = 1.0
		res.Raw = append(res.Raw, "summary=present")
		res.Feedback = append(res.Feedback, "Summary line present at end.")
	} else {
		// Softer penalty than an outright zero.
		sumScore = 0.5
		res.Raw = append(res.Raw, "summary=missing")
		res.Feedback = append(res.Feedback, "Missing required summary line at end.")
	}

	res.Score = 0.5*wcScore + 0.3*pcScore + 0.2*sumScore
	return res
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
