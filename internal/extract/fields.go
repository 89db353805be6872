package extract

import (
	"regexp"
	"strings"
)

// Rule matchers return the extracted value, or "" when the ticket text has
// no recognizable pattern for the field. They never fail; absence of a
// match is an ordinary outcome, not an error.

var (
	fencedBlockRe = regexp.MustCompile("(?s)```(?:[a-zA-Z0-9_-]+\\n)?(.*?)```")
	userLineRe    = regexp.MustCompile(`(?m)^\s*[*\-•]\s*([A-Za-z][A-Za-z .'\-]*?)\s*\(([^)]+)\)\s*$`)
	startTimeRe   = regexp.MustCompile(`(?i)around\s+\d{1,2}(?::\d{2})?\s*(?:AM|PM)?\s+on\s+[A-Za-z0-9][A-Za-z0-9 ,/\-]*`)
)

// matchErrorMessages returns the contents of fenced code blocks, the
// convention tickets use for pasted error output.
func matchErrorMessages(text string) string {
	matches := fencedBlockRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return ""
	}
	var blocks []string
	for _, m := range matches {
		if body := strings.TrimSpace(m[1]); body != "" {
			blocks = append(blocks, body)
		}
	}
	return strings.Join(blocks, "\n")
}

// matchAffectedUsers collects names from bulleted "Name (contact)" lines.
func matchAffectedUsers(text string) string {
	matches := userLineRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return ""
	}
	var names []string
	for _, m := range matches {
		if name := strings.TrimSpace(m[1]); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, "\n")
}

// matchStartTime returns the first "around <time> on <date>" phrase.
func matchStartTime(text string) string {
	match := startTimeRe.FindString(text)
	return strings.TrimRight(strings.TrimSpace(match), " .,")
}

// sectionHeaders are the markers that terminate a section span. Matching is
// case-insensitive against the start of a line.
var sectionHeaders = []string{
	"problem description:",
	"troubleshooting steps:",
	"troubleshooting:",
	"suspected causes:",
	"suspected cause:",
	"resolution steps:",
	"resolution:",
	"solution:",
	"key information:",
	"error messages:",
	"affected users:",
	"affected systems:",
	"start time:",
}

// matchSuspectedCauses returns the text between a "Suspected Cause(s):"
// marker and the next known section header.
func matchSuspectedCauses(text string) string {
	return sectionSpan(text, "suspected causes:", "suspected cause:")
}

// matchResolutionSteps returns the text between a solution/resolution
// marker and the next known section header.
func matchResolutionSteps(text string) string {
	return sectionSpan(text, "resolution steps:", "resolution:", "solution:")
}

// sectionSpan locates the first of the given start markers and captures
// everything up to the next section header, with bullet markers stripped
// from each captured line.
func sectionSpan(text string, startMarkers ...string) string {
	lower := strings.ToLower(text)

	start := -1
	for _, marker := range startMarkers {
		if idx := strings.Index(lower, marker); idx != -1 {
			start = idx + len(marker)
			break
		}
	}
	if start == -1 {
		return ""
	}

	rest := text[start:]
	restLower := lower[start:]
	end := len(rest)
	for _, header := range sectionHeaders {
		if idx := strings.Index(restLower, header); idx != -1 && idx < end {
			end = idx
		}
	}

	var lines []string
	for _, line := range strings.Split(rest[:end], "\n") {
		trimmed := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "*-• \t"))
		if trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n")
}
