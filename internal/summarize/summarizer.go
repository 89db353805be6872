// Package summarize produces retrieval-augmented narrative summaries of
// ticket bodies: the ticket HTML is split into chunks, the chunks are
// embedded into a per-call similarity index, and the chunks most relevant
// to the instruction ground a single completion request.
package summarize

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-report-service/internal/domain"
	apperrors "github.com/spec-kit/ticket-report-service/pkg/util"
)

// Backend is the language-model capability the summarizer consumes.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Summarizer implements chunk-embed-retrieve-complete summarization.
type Summarizer struct {
	backend Backend
	chunker *Chunker
	topK    int
	logger  *zap.Logger
}

// NewSummarizer constructs a summarizer retrieving topK chunks per call.
func NewSummarizer(backend Backend, chunker *Chunker, topK int, logger *zap.Logger) *Summarizer {
	if topK <= 0 {
		topK = 3
	}
	return &Summarizer{backend: backend, chunker: chunker, topK: topK, logger: logger}
}

// Summarize returns the backend's raw narrative response for the ticket.
// The similarity index is rebuilt for every call; tickets are small enough
// that reuse would buy nothing.
//
// When chunking yields nothing (empty body), the instruction is issued
// against empty context and the cleaner downstream absorbs whatever
// disclaimer the backend produces.
func (s *Summarizer) Summarize(ctx context.Context, ticket *domain.Ticket, instruction string) (string, error) {
	chunks := s.chunker.Split(ticket)
	if len(chunks) == 0 {
		response, err := s.backend.Complete(ctx, instruction)
		if err != nil {
			return "", apperrors.NewBackendUnavailable("summarization", err)
		}
		return response, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := s.backend.EmbedBatch(ctx, texts)
	if err != nil {
		return "", apperrors.NewBackendUnavailable("embedding", err)
	}

	index := &Index{}
	for i, chunk := range chunks {
		if i < len(vectors) {
			index.Add(chunk, vectors[i])
		}
	}

	queryVectors, err := s.backend.EmbedBatch(ctx, []string{instruction})
	if err != nil || len(queryVectors) == 0 {
		return "", apperrors.NewBackendUnavailable("embedding", err)
	}

	retrieved := index.Search(queryVectors[0], s.topK)
	s.logger.Debug("retrieved chunks for summarization",
		zap.Int("ticket_id", ticket.ID),
		zap.Int("indexed", index.Len()),
		zap.Int("retrieved", len(retrieved)),
	)

	response, err := s.backend.Complete(ctx, groundedPrompt(instruction, retrieved))
	if err != nil {
		return "", apperrors.NewBackendUnavailable("summarization", err)
	}
	return response, nil
}

// groundedPrompt combines the instruction with retrieved chunk text.
func groundedPrompt(instruction string, chunks []domain.Chunk) string {
	var b strings.Builder
	b.WriteString(instruction)
	b.WriteString("\n\nContext:\n")
	for _, chunk := range chunks {
		b.WriteString(chunk.Text)
		b.WriteString("\n")
	}
	return b.String()
}
