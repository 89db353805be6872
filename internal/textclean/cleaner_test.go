package textclean

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanDropsBlankLinesAndBareBullets(t *testing.T) {
	cleaner := New()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "blank lines removed",
			in:   "first\n\n   \nsecond",
			want: "first\nsecond",
		},
		{
			name: "bare bullet markers removed",
			in:   "* item one\n*\n- \nsecond",
			want: "* item one\nsecond",
		},
		{
			name: "bulleted content kept",
			in:   "* Disk full\n• Stale lock",
			want: "* Disk full\n• Stale lock",
		},
		{
			name: "surrounding whitespace trimmed",
			in:   "  padded line  ",
			want: "padded line",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleaner.Clean(tt.in))
		})
	}
}

func TestCleanStripsNoisePhrases(t *testing.T) {
	cleaner := New()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "sign-off removed",
			in:   "The disk was full.\nLet me know if you have any questions!",
			want: "The disk was full.",
		},
		{
			name: "apology about missing ticket id removed",
			in:   "Unfortunately, the ticket id was not provided in the request.\n* Server restarted",
			want: "* Server restarted",
		},
		{
			name: "regards block removed",
			in:   "Root cause identified.\nBest regards, the assistant",
			want: "Root cause identified.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleaner.Clean(tt.in))
		})
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	cleaner := New()

	inputs := []string{
		"",
		"plain line",
		"* bullet\n\n*\nI hope this helps!",
		"Problem:\n* one\n* one\nBest regards,\nBob",
		"  spaced  \n\n- \n• kept bullet",
		"**Problem Description:**\n* printer offline",
	}

	for _, in := range inputs {
		once := cleaner.Clean(in)
		assert.Equal(t, once, cleaner.Clean(once), "Clean must be idempotent for %q", in)
	}
}

func TestCleanDedupKeepsFirstOccurrence(t *testing.T) {
	cleaner := New()

	in := "* Disk full\n* disk FULL\n* Stale lock\n* Disk full"
	assert.Equal(t, "* Disk full\n* Stale lock", cleaner.CleanDedup(in))
}

func TestCleanDedupIsIdempotent(t *testing.T) {
	cleaner := New()

	in := "alpha\nALPHA\nbeta"
	once := cleaner.CleanDedup(in)
	assert.Equal(t, once, cleaner.CleanDedup(once))
}

func TestNewSkipsInvalidExtraPatterns(t *testing.T) {
	cleaner := New(`(?i)tracking note:.*`, `([`)

	got := cleaner.Clean("real content\ntracking note: ignore this")
	assert.Equal(t, "real content", got)
}
