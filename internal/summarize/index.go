package summarize

import (
	"math"

	"github.com/spec-kit/ticket-report-service/internal/domain"
)

// Index is an ephemeral in-memory similarity store. It is built once per
// summarization call and discarded with it; nothing is shared across runs.
type Index struct {
	entries []indexEntry
}

type indexEntry struct {
	chunk  domain.Chunk
	vector []float32
}

// Add stores a chunk with its embedding vector.
func (ix *Index) Add(chunk domain.Chunk, vector []float32) {
	ix.entries = append(ix.entries, indexEntry{chunk: chunk, vector: vector})
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Search returns the top-k chunks by cosine similarity to the query vector,
// most similar first.
func (ix *Index) Search(query []float32, k int) []domain.Chunk {
	if k <= 0 || len(ix.entries) == 0 {
		return nil
	}

	type scored struct {
		chunk domain.Chunk
		score float64
	}

	candidates := make([]scored, 0, len(ix.entries))
	for _, entry := range ix.entries {
		candidates = append(candidates, scored{
			chunk: entry.chunk,
			score: cosineSimilarity(query, entry.vector),
		})
	}

	// Insertion sort by score descending; chunk counts are small.
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j].score > candidates[j-1].score; j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}

	if len(candidates) > k {
		candidates = candidates[:k]
	}
	results := make([]domain.Chunk, len(candidates))
	for i, c := range candidates {
		results[i] = c.chunk
	}
	return results
}

// cosineSimilarity computes cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
