// Package textclean applies deterministic normalization rules to generated
// natural-language output before it reaches report layout.
package textclean

import (
	"regexp"
	"strings"
)

// DefaultNoisePatterns matches conversational boilerplate the completion
// backend tends to append around useful content. The wording tracks observed
// model output; deployments can extend the list via configuration.
var DefaultNoisePatterns = []string{
	`(?i)let me know if you (have any|need) (further |any )?(questions|assistance|help|information)[.!]?`,
	`(?i)feel free to (ask|reach out)[^.\n]*[.!]?`,
	`(?i)i hope this (summary )?(helps|is helpful)[.!]?`,
	`(?i)(best|kind|warm) regards[,.!]?.*`,
	`(?i)sincerely[,.!]?.*`,
	`(?i)i('m| am) (sorry|unable)[^.\n]*[.!]?`,
	`(?i)i apologize[^.\n]*[.!]?`,
	`(?i)unfortunately,? (the )?ticket id (was|is) not provided[^.\n]*[.!]?`,
	`(?i)(please note that )?the ticket id (was|is) not (provided|included|specified)[^.\n]*[.!]?`,
	`(?i)as an ai( language)? model[^.\n]*[.!]?`,
	`(?i)based on the (provided|given) (context|information|ticket)[,:]?`,
	`(?i)here('s| is) (a|the) (concise |well-structured )?summary[^.\n]*[:.]?`,
}

var bulletMarkers = []string{"*", "-", "•"}

// Cleaner strips noise phrases and normalizes line structure. It is a pure
// transform; applying it twice yields the same output as applying it once.
type Cleaner struct {
	noise []*regexp.Regexp
}

// New compiles the default noise patterns plus any extra configured ones.
// Invalid extra patterns are skipped rather than failing construction.
func New(extraPatterns ...string) *Cleaner {
	patterns := make([]string, 0, len(DefaultNoisePatterns)+len(extraPatterns))
	patterns = append(patterns, DefaultNoisePatterns...)
	patterns = append(patterns, extraPatterns...)

	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			continue
		}
		compiled = append(compiled, re)
	}
	return &Cleaner{noise: compiled}
}

// Clean removes noise phrases, then drops blank lines and bare bullet
// markers. A line survives iff it starts with a bullet marker and has
// content beyond the marker, or it is non-empty after trimming.
func (c *Cleaner) Clean(raw string) string {
	text := raw
	for _, re := range c.noise {
		text = re.ReplaceAllString(text, "")
	}

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if rest, ok := splitBullet(trimmed); ok && rest == "" {
			continue
		}
		kept = append(kept, trimmed)
	}
	return strings.Join(kept, "\n")
}

// CleanDedup runs Clean, then removes case-insensitive duplicate lines,
// keeping the first occurrence. Used for the key-information aggregation
// pass where the backend tends to restate the same bullet.
func (c *Cleaner) CleanDedup(raw string) string {
	cleaned := c.Clean(raw)
	if cleaned == "" {
		return ""
	}

	seen := make(map[string]struct{})
	var kept []string
	for _, line := range strings.Split(cleaned, "\n") {
		key := strings.ToLower(strings.TrimSpace(line))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// splitBullet reports whether the trimmed line starts with a bullet marker,
// returning the content beyond the marker.
func splitBullet(trimmed string) (rest string, ok bool) {
	for _, m := range bulletMarkers {
		if strings.HasPrefix(trimmed, m) {
			return strings.TrimSpace(strings.TrimLeft(trimmed, "*-•")), true
		}
	}
	return "", false
}
