package summarize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/spec-kit/ticket-report-service/internal/domain"
)

// defaultChunkTags are the structural elements a ticket body is split on.
// The set determines retrieval granularity and can be narrowed (for example
// to list items only) via configuration.
var defaultChunkTags = []string{"p", "li", "h1", "h2", "h3", "h4", "pre", "td", "blockquote"}

// Chunker splits ticket HTML into element-level chunks.
type Chunker struct {
	tags []string
}

// NewChunker builds a chunker restricted to the given structural tags. An
// empty tag list selects the default set.
func NewChunker(tags []string) *Chunker {
	if len(tags) == 0 {
		tags = defaultChunkTags
	}
	return &Chunker{tags: tags}
}

// Split breaks the ticket body into chunks tagged with the ticket's id.
// Ticket bodies that are plain text rather than HTML fall back to a
// paragraph split, so non-HTML tickets still produce retrieval units.
func (c *Chunker) Split(ticket *domain.Ticket) []domain.Chunk {
	if ticket == nil || strings.TrimSpace(ticket.Content) == "" {
		return nil
	}

	var chunks []domain.Chunk
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(ticket.Content))
	if err == nil {
		selector := strings.Join(c.tags, ", ")
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if text := strings.TrimSpace(sel.Text()); text != "" {
				chunks = append(chunks, domain.NewChunk(text, ticket.ID))
			}
		})
	}

	if len(chunks) == 0 {
		for _, para := range strings.Split(ticket.Content, "\n\n") {
			if text := strings.TrimSpace(para); text != "" {
				chunks = append(chunks, domain.NewChunk(text, ticket.ID))
			}
		}
	}
	return chunks
}
