package embedding

import (
	"context"
	"math"
	"regexp"
)

var wordPattern = regexp.MustCompile(`\w+`)

// Statistical is the deterministic fallback embedder. It derives a small
// vector from text statistics: distinct-word count, total-word count and
// character count, L2-normalized. Crude, but it keeps retrieval working when
// no model is available, and it never fails.
type Statistical struct{}

func NewStatistical() *Statistical { return &Statistical{} }

func (s *Statistical) Embed(_ context.Context, text string) ([]float32, error) {
	words := wordPattern.FindAllString(text, -1)
	distinct := make(map[string]struct{}, len(words))
	for _, w := range words {
		distinct[w] = struct{}{}
	}

	vector := []float32{float32(len(distinct)), float32(len(words)), float32(len(text))}
	return Normalize(vector), nil
}

func (s *Statistical) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i], _ = s.Embed(ctx, text)
	}
	return vectors, nil
}

// Normalize L2-normalizes the vector in place. A zero vector stays zero.
func Normalize(vector []float32) []float32 {
	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return vector
	}
	for i := range vector {
		vector[i] = float32(float64(vector[i]) / norm)
	}
	return vector
}

// CosineSimilarity computes cosine similarity between two vectors,
// zero-padding the shorter one so strategies with different dimensions can
// still be compared.
func CosineSimilarity(a, b []float32) float32 {
	n := max(len(a), len(b))
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		var va, vb float64
		if i < len(a) {
			va = float64(a[i])
		}
		if i < len(b) {
			vb = float64(b[i])
		}
		dot += va * vb
		normA += va * va
		normB += vb * vb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
