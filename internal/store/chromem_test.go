package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-rag/internal/embedding"
	"chat-rag/internal/models"
)

func newTestChromem(t *testing.T) *Chromem {
	t.Helper()
	cfg := testConfig("chromem")
	cfg.Store.Path = t.TempDir()
	c, err := NewChromem(cfg)
	require.NoError(t, err)
	return c
}

func embedded(file string, index int, text string) models.Chunk {
	vector, _ := embedding.NewStatistical().Embed(context.Background(), text)
	chunk := chunkFor(file, index, vector)
	chunk.Content = text
	return chunk
}

func TestChromemAddAndQuery(t *testing.T) {
	ctx := context.Background()
	c := newTestChromem(t)

	require.NoError(t, c.Add(ctx, "s", []models.Chunk{
		embedded("devices.csv", 0, "device status uptime"),
		embedded("devices.csv", 1, "router1 is currently down and unreachable"),
	}))

	query, _ := embedding.NewStatistical().Embed(ctx, "which device is down")
	matches, err := c.Query(ctx, "s", query, 2, nil)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "devices.csv", matches[0].Chunk.SourceFile)
	assert.NotEmpty(t, matches[0].Chunk.Content)
}

func TestChromemEmptySessionQuery(t *testing.T) {
	ctx := context.Background()
	c := newTestChromem(t)

	query, _ := embedding.NewStatistical().Embed(ctx, "anything")
	matches, err := c.Query(ctx, "empty", query, 5, nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestChromemFileFilter(t *testing.T) {
	ctx := context.Background()
	c := newTestChromem(t)

	require.NoError(t, c.Add(ctx, "s", []models.Chunk{
		embedded("devices.csv", 0, "device inventory list"),
		embedded("interfaces.csv", 0, "interface bandwidth table"),
	}))

	query, _ := embedding.NewStatistical().Embed(ctx, "inventory")
	matches, err := c.Query(ctx, "s", query, 5, []string{"devices.csv"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "devices.csv", matches[0].Chunk.SourceFile)

	matches, err = c.Query(ctx, "s", query, 5, []string{"devices.csv", "interfaces.csv"})
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	matches, err = c.Query(ctx, "s", query, 5, []string{"missing.csv"})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestChromemDeleteByFile(t *testing.T) {
	ctx := context.Background()
	c := newTestChromem(t)

	require.NoError(t, c.Add(ctx, "s", []models.Chunk{
		embedded("devices.csv", 0, "first chunk"),
		embedded("devices.csv", 1, "second chunk"),
		embedded("interfaces.csv", 0, "other file"),
	}))

	removed, err := c.DeleteByFile(ctx, "s", "devices.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	stats, err := c.Stats(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalChunks)
	assert.Equal(t, 1, stats.PerFile["interfaces.csv"])
}

func TestChromemReopenKeepsSessionState(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig("chromem")
	cfg.Store.Path = t.TempDir()

	first, err := NewChromem(cfg)
	require.NoError(t, err)
	require.NoError(t, first.Add(ctx, "s", []models.Chunk{
		embedded("devices.csv", 0, "device status uptime"),
		embedded("devices.csv", 1, "router1 is currently down"),
	}))

	// a new store on the same path sees everything the first one persisted
	second, err := NewChromem(cfg)
	require.NoError(t, err)

	stats, err := second.Stats(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalChunks)
	assert.Equal(t, 2, stats.PerFile["devices.csv"])

	query, _ := embedding.NewStatistical().Embed(ctx, "which device is down")
	matches, err := second.Query(ctx, "s", query, 5, []string{"devices.csv"})
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	removed, err := second.DeleteByFile(ctx, "s", "devices.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
}

func TestChromemClearSession(t *testing.T) {
	ctx := context.Background()
	c := newTestChromem(t)

	require.NoError(t, c.Add(ctx, "s", []models.Chunk{embedded("a.csv", 0, "some rows")}))
	require.NoError(t, c.ClearSession(ctx, "s"))

	stats, err := c.Stats(ctx, "s")
	require.NoError(t, err)
	assert.Zero(t, stats.TotalChunks)
}
