package summarize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/ticket-report-service/internal/domain"
)

func TestIndexSearchRanksBySimilarity(t *testing.T) {
	index := &Index{}
	index.Add(domain.NewChunk("exact match", 1), []float32{1, 0, 0})
	index.Add(domain.NewChunk("orthogonal", 1), []float32{0, 1, 0})
	index.Add(domain.NewChunk("close match", 1), []float32{0.9, 0.1, 0})

	results := index.Search([]float32{1, 0, 0}, 2)

	assert.Len(t, results, 2)
	assert.Equal(t, "exact match", results[0].Text)
	assert.Equal(t, "close match", results[1].Text)
}

func TestIndexSearchEmptyAndZeroK(t *testing.T) {
	index := &Index{}
	assert.Nil(t, index.Search([]float32{1}, 3))

	index.Add(domain.NewChunk("only", 1), []float32{1})
	assert.Nil(t, index.Search([]float32{1}, 0))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0}, []float32{1}))
}
