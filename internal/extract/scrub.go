package extract

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	scrubFencedRe = regexp.MustCompile("(?s)```.*?```")
	scrubParenRe  = regexp.MustCompile(`\([^)]*\)`)
)

// trailingClauseMarkers introduce explanatory tails the completion backend
// appends after the actual answer. Everything from the marker on is cut.
var trailingClauseMarkers = []string{
	"Note:",
	"Therefore,",
	"Explanation:",
	"In summary,",
}

// scrubResponse normalizes a raw completion response into a bare field
// value: code fences and parenthetical asides are removed, "Answer:" echo
// lines are dropped, trailing explanatory clauses are cut, and wrapper
// punctuation is trimmed from both ends.
func scrubResponse(raw string) string {
	text := scrubFencedRe.ReplaceAllString(raw, "")
	text = scrubParenRe.ReplaceAllString(text, "")

	for _, marker := range trailingClauseMarkers {
		if idx := strings.Index(text, marker); idx != -1 {
			text = text[:idx]
		}
	}

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "Answer:") {
			continue
		}
		kept = append(kept, trimmed)
	}

	return strings.TrimFunc(strings.Join(kept, "\n"), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
