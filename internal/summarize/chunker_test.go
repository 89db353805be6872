package summarize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/ticket-report-service/internal/domain"
)

func TestSplitHTMLElements(t *testing.T) {
	ticket := &domain.Ticket{
		ID:      42,
		Content: "<p>Printer offline since Monday.</p><ul><li>Restarted spooler</li><li>Checked cables</li></ul>",
	}

	chunks := NewChunker(nil).Split(ticket)

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	assert.Contains(t, texts, "Printer offline since Monday.")
	assert.Contains(t, texts, "Restarted spooler")
	assert.Contains(t, texts, "Checked cables")

	for _, c := range chunks {
		assert.Equal(t, 42, c.SourceID)
		assert.Equal(t, domain.ChunkSourceType, c.SourceType)
	}
}

func TestSplitTagFilterRestrictsGranularity(t *testing.T) {
	ticket := &domain.Ticket{
		ID:      7,
		Content: "<p>intro paragraph</p><ul><li>step one</li><li>step two</li></ul>",
	}

	chunks := NewChunker([]string{"li"}).Split(ticket)

	assert.Len(t, chunks, 2)
	assert.Equal(t, "step one", chunks[0].Text)
	assert.Equal(t, "step two", chunks[1].Text)
}

func TestSplitPlainTextFallsBackToParagraphs(t *testing.T) {
	ticket := &domain.Ticket{
		ID:      9,
		Content: "first paragraph of plain text\n\nsecond paragraph",
	}

	chunks := NewChunker(nil).Split(ticket)

	assert.Len(t, chunks, 2)
	assert.Equal(t, "first paragraph of plain text", chunks[0].Text)
}

func TestSplitEmptyContent(t *testing.T) {
	assert.Nil(t, NewChunker(nil).Split(&domain.Ticket{ID: 1, Content: "  "}))
	assert.Nil(t, NewChunker(nil).Split(nil))
}
