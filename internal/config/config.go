package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// LLMConfig configures one model endpoint (embedding or inference).
type LLMConfig struct {
	Provider       string `yaml:"provider"` // openai, ollama, openrouter, statistical
	BaseURL        string `yaml:"base_url"`
	Key            string `yaml:"key"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// StoreConfig selects and configures the vector store backend.
type StoreConfig struct {
	Backend       string `yaml:"backend"` // chromem, memory, postgres
	Path          string `yaml:"path"`
	EncryptionKey string `yaml:"encryption_key"`
}

// DatabaseConfig configures the postgres backend.
type DatabaseConfig struct {
	DSN       string `yaml:"dsn"`
	Password  string `yaml:"password"`
	VectorDim int    `yaml:"vector_dim"`
	Debug     bool   `yaml:"debug"`
}

// RAGConfig tunes chunking and retrieval.
type RAGConfig struct {
	ChunkSize           int     `yaml:"chunk_size"`
	ChunkOverlap        int     `yaml:"chunk_overlap"`
	TopK                int     `yaml:"top_k"`
	SimilarityThreshold float32 `yaml:"similarity_threshold"`
	MaxSampleRows       int     `yaml:"max_sample_rows"`
	SampleBatchSize     int     `yaml:"sample_batch_size"`
}

type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Database DatabaseConfig `yaml:"database"`
	RAG      RAGConfig      `yaml:"rag"`
	EmbedLLM LLMConfig      `yaml:"embed_llm"`
	InferLLM LLMConfig      `yaml:"infer_llm"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a config usable without a file: in-memory store and the
// statistical embedder, so nothing external is required.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills unset values.
func ApplyDefaults(cfg *Config) {
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "memory"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "./chromemdb"
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 1000
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = 200
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 5
	}
	if cfg.RAG.SimilarityThreshold == 0 {
		cfg.RAG.SimilarityThreshold = 0.7
	}
	if cfg.RAG.MaxSampleRows == 0 {
		cfg.RAG.MaxSampleRows = 100
	}
	if cfg.RAG.SampleBatchSize == 0 {
		cfg.RAG.SampleBatchSize = 20
	}
	if cfg.Database.VectorDim == 0 {
		cfg.Database.VectorDim = 768
	}
	if cfg.EmbedLLM.Provider == "" {
		cfg.EmbedLLM.Provider = "statistical"
	}
	if cfg.EmbedLLM.BaseURL == "" {
		cfg.EmbedLLM.BaseURL = "http://localhost:11434"
	}
	if cfg.InferLLM.Provider == "" {
		cfg.InferLLM.Provider = "ollama"
	}
	if cfg.InferLLM.BaseURL == "" {
		cfg.InferLLM.BaseURL = "http://localhost:11434"
	}
	if cfg.InferLLM.TimeoutSeconds == 0 {
		cfg.InferLLM.TimeoutSeconds = 60
	}
}
