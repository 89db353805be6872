package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-report-service/internal/domain"
	apperrors "github.com/spec-kit/ticket-report-service/pkg/util"
)

type fakeBackend struct {
	completeResponse string
	completeErr      error
	embedErr         error
	completePrompts  []string
	embedCalls       int
}

func (f *fakeBackend) Complete(_ context.Context, prompt string) (string, error) {
	f.completePrompts = append(f.completePrompts, prompt)
	if f.completeErr != nil {
		return "", f.completeErr
	}
	return f.completeResponse, nil
}

func (f *fakeBackend) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.embedCalls++
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		// Deterministic toy embedding keyed on content length and first byte.
		var first float32
		if len(text) > 0 {
			first = float32(text[0])
		}
		vectors[i] = []float32{float32(len(text)), first}
	}
	return vectors, nil
}

func TestSummarizeGroundsCompletionWithRetrievedChunks(t *testing.T) {
	backend := &fakeBackend{completeResponse: "a narrative summary"}
	summarizer := NewSummarizer(backend, NewChunker(nil), 2, zap.NewNop())

	ticket := &domain.Ticket{
		ID:      5,
		Content: "<ul><li>Printer offline</li><li>Spooler restarted</li></ul>",
	}

	got, err := summarizer.Summarize(context.Background(), ticket, "Summarize this ticket.")
	require.NoError(t, err)
	assert.Equal(t, "a narrative summary", got)

	require.Len(t, backend.completePrompts, 1)
	prompt := backend.completePrompts[0]
	assert.True(t, strings.HasPrefix(prompt, "Summarize this ticket."))
	assert.Contains(t, prompt, "Context:")
	assert.Equal(t, 2, backend.embedCalls, "chunks and query embedded separately")
}

func TestSummarizeEmptyContentSkipsRetrieval(t *testing.T) {
	backend := &fakeBackend{completeResponse: "no content to summarize"}
	summarizer := NewSummarizer(backend, NewChunker(nil), 3, zap.NewNop())

	got, err := summarizer.Summarize(context.Background(), &domain.Ticket{ID: 3, Content: ""}, "Summarize this ticket.")
	require.NoError(t, err)

	assert.Equal(t, "no content to summarize", got)
	assert.Zero(t, backend.embedCalls, "no embedding for empty content")
	require.Len(t, backend.completePrompts, 1)
	assert.Equal(t, "Summarize this ticket.", backend.completePrompts[0])
}

func TestSummarizeEmbeddingFailure(t *testing.T) {
	backend := &fakeBackend{embedErr: errors.New("backend down")}
	summarizer := NewSummarizer(backend, NewChunker(nil), 3, zap.NewNop())

	_, err := summarizer.Summarize(context.Background(), &domain.Ticket{ID: 1, Content: "<p>body</p>"}, "instruction")
	require.Error(t, err)
	assert.Equal(t, "BACKEND_UNAVAILABLE", apperrors.ToDomainError(err).Code)
}

func TestSummarizeCompletionFailure(t *testing.T) {
	backend := &fakeBackend{completeErr: errors.New("rate limited")}
	summarizer := NewSummarizer(backend, NewChunker(nil), 3, zap.NewNop())

	_, err := summarizer.Summarize(context.Background(), &domain.Ticket{ID: 1, Content: "<p>body</p>"}, "instruction")
	require.Error(t, err)
	assert.Equal(t, "BACKEND_UNAVAILABLE", apperrors.ToDomainError(err).Code)
}
