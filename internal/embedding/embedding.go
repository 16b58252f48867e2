package embedding

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"chat-rag/internal/config"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder maps text to a numeric vector. Batch results keep input order.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// New builds the embedder for the configured provider. A model that cannot
// be initialized degrades to the statistical embedder instead of failing,
// and every model embedder is wrapped so per-call failures degrade too.
func New(cfg *config.LLMConfig) Embedder {
	switch cfg.Provider {
	case "openai", "openrouter":
		model, err := newOpenAIEmbedder(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Embedding model unavailable, using statistical embedder")
			return NewStatistical()
		}
		return withFallback(model)
	case "ollama":
		model, err := newOllamaEmbedder(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Embedding model unavailable, using statistical embedder")
			return NewStatistical()
		}
		return withFallback(model)
	default:
		return NewStatistical()
	}
}

func newOpenAIEmbedder(cfg *config.LLMConfig) (*modelEmbedder, error) {
	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, err
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, err
	}
	return &modelEmbedder{impl: embedder}, nil
}

func newOllamaEmbedder(cfg *config.LLMConfig) (*modelEmbedder, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(cfg.BaseURL),
		ollama.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, err
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, err
	}
	return &modelEmbedder{impl: embedder}, nil
}

// modelEmbedder adapts a langchaingo embedder.
type modelEmbedder struct {
	impl *embeddings.EmbedderImpl
}

func (m *modelEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return m.impl.EmbedQuery(ctx, text)
}

func (m *modelEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return m.impl.EmbedDocuments(ctx, texts)
}

// fallbackEmbedder degrades to the statistical embedder when the model
// fails, so one bad call never aborts ingestion of sibling chunks.
type fallbackEmbedder struct {
	primary  Embedder
	fallback Embedder
}

func withFallback(primary Embedder) Embedder {
	return &fallbackEmbedder{primary: primary, fallback: NewStatistical()}
}

func (f *fallbackEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vector, err := f.primary.Embed(ctx, text)
	if err != nil || len(vector) == 0 {
		if err != nil {
			log.Warn().Err(err).Msg("Embedding model failed, falling back to statistical embedding")
		}
		return f.fallback.Embed(ctx, text)
	}
	return vector, nil
}

func (f *fallbackEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := f.primary.EmbedBatch(ctx, texts)
	if err != nil || len(vectors) != len(texts) {
		if err != nil {
			log.Warn().Err(err).Msg("Embedding model failed, falling back to statistical embedding")
		}
		return f.fallback.EmbedBatch(ctx, texts)
	}
	return vectors, nil
}
