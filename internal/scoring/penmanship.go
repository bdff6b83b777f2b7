package scoring

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// LoadPenmanshipRules reads rules from a YAML file. A missing file is not
// an error; penmanship checks are simply skipped.
func LoadPenmanshipRules(path string) ([]PenmanshipRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read penmanship rules: %w", err)
	}
	var rules []PenmanshipRule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse penmanship rules: %w", err)
	}
	return rules, nil
}

// ValidatePenmanship checks text against banned-pattern rules. The score
// drops by the violated fraction of rules. Invalid patterns are skipped.
func ValidatePenmanship(text string, rules []PenmanshipRule) Result {
	if len(rules) == 0 {
		return Result{
			Score:    1.0,
			Raw:      []string{"penmanship=skipped(no_rules)"},
			Feedback: []string{"No penmanship rules provided."},
		}
	}

	var res Result
	violations := 0
	for _, rule := range rules {
		for _, pat := range rule.BannedPatterns {
			re, err := regexp.Compile(pat)
			if err != nil {
				res.Raw = append(res.Raw, fmt.Sprintf("penmanship_bad_pattern:%s", pat))
				continue
			}
			if re.MatchString(text) {
				violations++
				res.Raw = append(res.Raw, fmt.Sprintf("penmanship_violation:%s", rule.Description))
				res.Feedback = append(res.Feedback, fmt.Sprintf("Penmanship violation: %s", rule.Description))
			}
		}
	}

	if violations == 0 {
		res.Score = 1.0
		res.Feedback = append(res.Feedback, "No penmanship violations detected.")
	} else {
		res.Score = 1 - float64(violations)/float64(len(rules))
		if res.Score < 0 {
			res.Score = 0
		}
	}
	return res
}
