package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
store:
  backend: chromem
  path: /tmp/vectors
rag:
  chunk_size: 500
  top_k: 3
embed_llm:
  provider: ollama
  model: nomic-embed-text
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "chromem", cfg.Store.Backend)
	assert.Equal(t, "/tmp/vectors", cfg.Store.Path)
	assert.Equal(t, 500, cfg.RAG.ChunkSize)
	assert.Equal(t, 3, cfg.RAG.TopK)
	assert.Equal(t, "ollama", cfg.EmbedLLM.Provider)

	// unset values still get defaults
	assert.Equal(t, 200, cfg.RAG.ChunkOverlap)
	assert.Equal(t, float32(0.7), cfg.RAG.SimilarityThreshold)
	assert.Equal(t, "ollama", cfg.InferLLM.Provider)
	assert.Equal(t, 60, cfg.InferLLM.TimeoutSeconds)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "statistical", cfg.EmbedLLM.Provider)
	assert.Equal(t, 1000, cfg.RAG.ChunkSize)
	assert.Equal(t, 5, cfg.RAG.TopK)
	assert.Equal(t, 100, cfg.RAG.MaxSampleRows)
	assert.Equal(t, 20, cfg.RAG.SampleBatchSize)
	assert.Equal(t, 768, cfg.Database.VectorDim)
}
