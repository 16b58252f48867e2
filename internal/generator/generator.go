package generator

import (
	"context"
	"fmt"
	"strings"

	"chat-rag/internal/config"
	"chat-rag/internal/models"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator is the external text-generation service: prompt in, text out.
// Implementations are one explicitly configured adapter per provider.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// New builds the adapter for the configured provider.
func New(cfg *config.LLMConfig) (Generator, error) {
	switch cfg.Provider {
	case "openai":
		llm, err := openai.New(
			openai.WithBaseURL(cfg.BaseURL),
			openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
			openai.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrGeneratorFailure, err)
		}
		return &langchainGenerator{llm: llm}, nil
	case "ollama":
		llm, err := ollama.New(
			ollama.WithServerURL(cfg.BaseURL),
			ollama.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrGeneratorFailure, err)
		}
		return &langchainGenerator{llm: llm}, nil
	case "openrouter":
		return NewOpenRouter(cfg), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", models.ErrGeneratorFailure, cfg.Provider)
	}
}

// langchainGenerator adapts a langchaingo model.
type langchainGenerator struct {
	llm llms.Model
}

func (g *langchainGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}
	res, err := g.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrGeneratorFailure, err)
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", models.ErrGeneratorFailure)
	}
	return res.Choices[0].Content, nil
}
