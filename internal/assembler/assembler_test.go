package assembler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-rag/internal/models"
)

func result(file, content string, chunkType models.ChunkType, score float32) models.SearchResult {
	return models.SearchResult{
		Chunk:      models.Chunk{Content: content, Type: chunkType, SourceFile: file},
		Score:      score,
		SourceFile: file,
		Preview:    content,
	}
}

func TestAssemble(t *testing.T) {
	results := []models.SearchResult{
		result("devices.csv", "router1 is down", models.ChunkSampleData, 0.9),
		result("notes.txt", "maintenance window on friday", models.ChunkText, 0.7),
	}

	qc := Assemble(results, nil)
	require.True(t, qc.Success)

	parts := strings.Split(qc.Context, models.ContextSeparator)
	require.Len(t, parts, 2)
	assert.Equal(t, "Source: devices.csv\nrouter1 is down", parts[0])
	assert.Equal(t, "Source: notes.txt\nmaintenance window on friday", parts[1])

	require.Len(t, qc.Sources, 2)
	assert.Equal(t, "devices.csv", qc.Sources[0].FileName)
	assert.Equal(t, string(models.ChunkSampleData), qc.Sources[0].ChunkType)
	assert.InDelta(t, 0.8, qc.AverageRelevance, 1e-6)
}

func TestAssembleEmpty(t *testing.T) {
	qc := Assemble(nil, nil)
	assert.False(t, qc.Success)
	assert.Empty(t, qc.Context)
	assert.Equal(t, "No relevant context found.", qc.Message)
}

func TestAssembleEmptyNamesSearchedFiles(t *testing.T) {
	qc := Assemble(nil, []string{"devices.csv", "interfaces.csv"})
	assert.False(t, qc.Success)
	assert.Equal(t, "No relevant context found in the specified files: devices.csv, interfaces.csv.", qc.Message)
}

func TestAssemblePreviewTruncation(t *testing.T) {
	long := strings.Repeat("z", models.PreviewLimit+100)
	qc := Assemble([]models.SearchResult{result("big.txt", long, models.ChunkText, 0.8)}, nil)

	require.Len(t, qc.Sources, 1)
	assert.Len(t, qc.Sources[0].Preview, models.PreviewLimit+3)
	// context keeps the full chunk, only the attribution preview truncates
	assert.Contains(t, qc.Context, long)
}
