package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-rag/internal/config"
	"chat-rag/internal/models"
)

func testConfig(backend string) *config.Config {
	cfg := config.Default()
	cfg.Store.Backend = backend
	return cfg
}

func chunkFor(file string, index int, emb []float32) models.Chunk {
	return models.Chunk{
		ChunkID:    fmt.Sprintf("%s_%d", file, index),
		Content:    fmt.Sprintf("content %d of %s", index, file),
		Type:       models.ChunkText,
		Metadata:   map[string]string{models.MetaFileName: file},
		Embedding:  emb,
		SourceFile: file,
		ChunkIndex: index,
	}
}

func TestMemorySessionIsolation(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Add(ctx, "session-a", []models.Chunk{chunkFor("a.csv", 0, []float32{1, 0})}))
	require.NoError(t, m.Add(ctx, "session-b", []models.Chunk{chunkFor("b.csv", 0, []float32{1, 0})}))

	matches, err := m.Query(ctx, "session-a", []float32{1, 0}, 5, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a.csv", matches[0].Chunk.SourceFile)

	matches, err = m.Query(ctx, "session-c", []float32{1, 0}, 5, nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestMemoryFileFilter(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Add(ctx, "s", []models.Chunk{
		chunkFor("devices.csv", 0, []float32{1, 0}),
		chunkFor("interfaces.csv", 0, []float32{1, 0}),
	}))

	matches, err := m.Query(ctx, "s", []float32{1, 0}, 5, []string{"devices.csv"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "devices.csv", matches[0].Chunk.SourceFile)

	matches, err = m.Query(ctx, "s", []float32{1, 0}, 5, nil)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestMemoryDeleteByFile(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Add(ctx, "s", []models.Chunk{
		chunkFor("devices.csv", 0, []float32{1, 0}),
		chunkFor("devices.csv", 1, []float32{0, 1}),
		chunkFor("interfaces.csv", 0, []float32{1, 0}),
	}))

	removed, err := m.DeleteByFile(ctx, "s", "devices.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	stats, err := m.Stats(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalChunks)
	assert.Equal(t, 1, stats.TotalFiles)
	assert.Equal(t, 1, stats.PerFile["interfaces.csv"])

	removed, err = m.DeleteByFile(ctx, "s", "missing.csv")
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestMemoryStats(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	stats, err := m.Stats(ctx, "empty")
	require.NoError(t, err)
	assert.Zero(t, stats.TotalChunks)
	assert.Zero(t, stats.TotalFiles)

	require.NoError(t, m.Add(ctx, "s", []models.Chunk{
		chunkFor("a.csv", 0, []float32{1}),
		chunkFor("a.csv", 1, []float32{1}),
		chunkFor("b.json", 0, []float32{1}),
	}))

	stats, err = m.Stats(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalChunks)
	assert.Equal(t, 2, stats.TotalFiles)
	assert.Equal(t, 2, stats.PerFile["a.csv"])
}

func TestMemoryClearSession(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Add(ctx, "s", []models.Chunk{chunkFor("a.csv", 0, []float32{1})}))
	require.NoError(t, m.ClearSession(ctx, "s"))

	stats, err := m.Stats(ctx, "s")
	require.NoError(t, err)
	assert.Zero(t, stats.TotalChunks)
}

func TestMemorySkipsChunksWithoutEmbedding(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Add(ctx, "s", []models.Chunk{chunkFor("a.csv", 0, nil)}))

	matches, err := m.Query(ctx, "s", []float32{1, 0}, 5, nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestNewDefaultsToMemory(t *testing.T) {
	s := New(testConfig("memory"))
	_, ok := s.(*Memory)
	assert.True(t, ok)
	assert.True(t, s.Thresholded())
}
