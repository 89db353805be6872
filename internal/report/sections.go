package report

import (
	"regexp"
	"strings"

	"github.com/spec-kit/ticket-report-service/internal/domain"
)

// sectionLabels are the headings of the summary instruction template, in
// report order.
var sectionLabels = []string{
	"Problem Description",
	"Troubleshooting Steps",
	"Solution",
	"Key Information",
}

// headingRe matches a summary heading line with optional numbering and
// markdown decoration, e.g. "**2. Troubleshooting Steps:**" or
// "Troubleshooting Steps:".
var headingRe = regexp.MustCompile(`^[#*\s]*(?:\d+\.\s*)?\**([A-Za-z ]+?)\**:?\**\s*$`)

// SplitSections structures a cleaned narrative summary into labeled
// sections. Text before the first recognized heading is labeled "Summary".
// Headings the template does not define stay part of the surrounding body.
func SplitSections(summary string) []domain.ReportSection {
	if strings.TrimSpace(summary) == "" {
		return nil
	}

	var sections []domain.ReportSection
	current := domain.ReportSection{Label: "Summary"}
	var body []string

	flush := func() {
		current.Body = strings.TrimSpace(strings.Join(body, "\n"))
		if current.Body != "" {
			sections = append(sections, current)
		}
		body = nil
	}

	for _, line := range strings.Split(summary, "\n") {
		if label, ok := matchHeading(line); ok {
			flush()
			current = domain.ReportSection{Label: label}
			continue
		}
		body = append(body, line)
	}
	flush()
	return sections
}

// matchHeading reports whether the line is one of the template headings.
func matchHeading(line string) (string, bool) {
	m := headingRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", false
	}
	candidate := strings.TrimSpace(m[1])
	for _, label := range sectionLabels {
		if strings.EqualFold(candidate, label) {
			return label, true
		}
	}
	return "", false
}
