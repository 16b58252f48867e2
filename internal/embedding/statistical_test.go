package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatisticalEmbedDeterministic(t *testing.T) {
	emb := NewStatistical()
	ctx := context.Background()

	first, err := emb.Embed(ctx, "the quick brown fox jumps over the lazy dog")
	require.NoError(t, err)
	second, err := emb.Embed(ctx, "the quick brown fox jumps over the lazy dog")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, first, 3)

	var norm float64
	for _, v := range first {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-6)
}

func TestStatisticalEmbedEmptyText(t *testing.T) {
	vector, err := NewStatistical().Embed(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0}, vector)
}

func TestStatisticalEmbedBatch(t *testing.T) {
	vectors, err := NewStatistical().EmbedBatch(context.Background(), []string{"one", "two words"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.NotEqual(t, vectors[0], vectors[1])
}

func TestNormalizeZeroVector(t *testing.T) {
	assert.Equal(t, []float32{0, 0, 0}, Normalize([]float32{0, 0, 0}))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-6)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 1}, []float32{-1, -1}), 1e-6)
}

func TestCosineSimilarityMismatchedDimensions(t *testing.T) {
	// the shorter vector is zero-padded
	got := CosineSimilarity([]float32{1, 0, 0}, []float32{1})
	assert.InDelta(t, 1.0, got, 1e-6)

	got = CosineSimilarity([]float32{0, 1}, []float32{1})
	assert.InDelta(t, 0.0, got, 1e-6)
}

func TestCosineSimilarityZeroVector(t *testing.T) {
	assert.Equal(t, float32(0), CosineSimilarity([]float32{0, 0}, []float32{1, 2}))
	assert.Equal(t, float32(0), CosineSimilarity(nil, []float32{1}))
}
