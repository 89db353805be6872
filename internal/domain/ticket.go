package domain

import "strings"

// TicketStatus mirrors the numeric lifecycle codes used by the GLPI REST API.
type TicketStatus int

const (
	TicketStatusNew      TicketStatus = 1
	TicketStatusAssigned TicketStatus = 2
	TicketStatusPlanned  TicketStatus = 3
	TicketStatusPending  TicketStatus = 4
	TicketStatusSolved   TicketStatus = 5
	TicketStatusClosed   TicketStatus = 6
)

// Ticket is an immutable snapshot of a helpdesk item, retrieved once per
// pipeline run.
type Ticket struct {
	ID        int
	Name      string
	Content   string
	Status    TicketStatus
	CreatedAt string
}

// Empty reports whether the ticket carries no usable body. A nil ticket or
// one with a blank content field counts as absent.
func (t *Ticket) Empty() bool {
	return t == nil || strings.TrimSpace(t.Content) == ""
}

// ChunkSourceType is the provenance tag attached to every chunk built from
// a ticket body.
const ChunkSourceType = "ticket"

// Chunk is a retrieval-granular fragment of a ticket body. Chunks are
// created per run and discarded after summarization.
type Chunk struct {
	Text       string
	SourceID   int
	SourceType string
}

// NewChunk builds a chunk backed by the given ticket.
func NewChunk(text string, ticketID int) Chunk {
	return Chunk{Text: text, SourceID: ticketID, SourceType: ChunkSourceType}
}
