package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

// reJSONSpan matches the first bracketed span, greedy and across newlines.
var reJSONSpan = regexp.MustCompile(`(?s)(\[.*\]|\{.*\})`)

// ExtractJSON recovers a JSON value from model output. The whole text is
// tried first, then the first [...] or {...} span, which handles prose and
// code fences around otherwise valid JSON.
func ExtractJSON(text string) (interface{}, bool) {
	var v interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &v); err == nil {
		return v, true
	}

	span := reJSONSpan.FindString(text)
	if span == "" {
		return nil, false
	}
	if err := json.Unmarshal([]byte(span), &v); err != nil {
		return nil, false
	}
	return v, true
}
