// Package jsonx parses the loosely structured JSON that LLMs emit.
// Fallback order is fixed and documented: strict parse, then extraction of
// the first braced object/array, then heuristic repair of common model
// mistakes, then a structured failure. Strict parsing is never silently
// conflated with repair; callers see which path produced the value.
package jsonx

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Result is the outcome of a lenient parse. Exactly one of Value or Err is
// meaningful; Raw always carries the original input for diagnostics.
type Result struct {
	Value    interface{}
	Raw      string
	Err      string
	Repaired bool // value came from the repair path, not strict parsing
}

// Ok reports whether the parse produced a usable value.
func (r Result) Ok() bool { return r.Err == "" }

// ParseError reports whether the parse failed outright.
func (r Result) ParseError() bool { return r.Err != "" }

var (
	firstBracedRe  = regexp.MustCompile(`(?s)(\{.*\}|\[.*\])`)
	trailingComma  = regexp.MustCompile(`,\s*([}\]])`)
	missingCommaV  = regexp.MustCompile(`("[^"]*"|\d)(\s*")`)
	missingCommaBr = regexp.MustCompile(`([}\]])(\s*")`)
)

// Parse attempts strict JSON decoding only.
func Parse(text string) Result {
	s := strings.TrimSpace(text)
	if s == "" {
		return Result{Raw: text, Err: "empty string"}
	}
	var v interface{}
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return Result{Raw: text, Err: err.Error()}
	}
	return Result{Value: v, Raw: text}
}

// Lenient attempts strict decoding first, then extraction and repair.
func Lenient(text string) Result {
	s := StripCodeFence(strings.TrimSpace(text))
	if s == "" {
		return Result{Raw: text, Err: "empty string"}
	}

	var v interface{}
	strictErr := json.Unmarshal([]byte(s), &v)
	if strictErr == nil {
		return Result{Value: v, Raw: text}
	}

	cleaned := repair(s)
	if err := json.Unmarshal([]byte(cleaned), &v); err != nil {
		return Result{
			Raw: text,
			Err: fmt.Sprintf("strict: %v | repaired: %v", strictErr, err),
		}
	}
	return Result{Value: v, Raw: text, Repaired: true}
}

// ExtractFirstBraced returns the first {...} or [...] substring, or "".
func ExtractFirstBraced(text string) string {
	return firstBracedRe.FindString(text)
}

// StripCodeFence removes a surrounding triple-backtick fence, including an
// optional language tag after the opening backticks.
func StripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	parts := strings.SplitN(s, "```", 3)
	if len(parts) < 3 {
		return s
	}
	body := parts[1]
	if nl := strings.IndexByte(body, '\n'); nl != -1 {
		head := strings.TrimSpace(body[:nl])
		// "json", "yaml" etc. on the fence line
		if head != "" && !strings.ContainsAny(head, "{}[]\",") {
			body = body[nl+1:]
		}
	}
	return strings.TrimSpace(body)
}

// repair applies the heuristic cleanup chain to a malformed candidate.
func repair(s string) string {
	cand := ExtractFirstBraced(s)
	if cand == "" {
		cand = s
	}

	cand = trailingComma.ReplaceAllString(cand, "$1")
	cand = missingCommaV.ReplaceAllString(cand, "$1,$2")
	cand = missingCommaBr.ReplaceAllString(cand, "$1,$2")

	// Single-quoted pseudo-JSON, only when no double quotes are present.
	if !strings.Contains(cand, `"`) && strings.Contains(cand, "'") {
		cand = strings.ReplaceAll(cand, "'", `"`)
	}
	return cand
}

// DecodeInto runs Lenient and unmarshals the recovered value into out.
func DecodeInto(text string, out interface{}) error {
	res := Lenient(text)
	if res.ParseError() {
		return fmt.Errorf("lenient parse failed: %s", res.Err)
	}
	data, err := json.Marshal(res.Value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
