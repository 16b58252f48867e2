package retriever

import (
	"context"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"chat-rag/internal/config"
	"chat-rag/internal/embedding"
	"chat-rag/internal/models"
	"chat-rag/internal/store"
)

// Retriever runs similarity search against the session store, optionally
// restricted to a file-name set.
type Retriever struct {
	store     store.Store
	embedder  embedding.Embedder
	topK      int
	threshold float32
}

func New(cfg *config.Config, s store.Store, e embedding.Embedder) *Retriever {
	return &Retriever{
		store:     s,
		embedder:  e,
		topK:      cfg.RAG.TopK,
		threshold: cfg.RAG.SimilarityThreshold,
	}
}

// Search embeds the question and returns the k best chunks, sorted by
// non-increasing score with ties broken by ascending chunk index. An empty
// result is a valid outcome, never an error.
func (r *Retriever) Search(ctx context.Context, sessionID, question string, fileFilter []string, k int) ([]models.SearchResult, error) {
	if k <= 0 {
		k = r.topK
	}

	queryEmbedding, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrEmbeddingFailure, err)
	}

	matches, err := r.store.Query(ctx, sessionID, queryEmbedding, k, fileFilter)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("Store query failed")
		return nil, nil
	}

	if r.store.Thresholded() {
		kept := matches[:0]
		for _, match := range matches {
			if match.Similarity >= r.threshold {
				kept = append(kept, match)
			}
		}
		matches = kept
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Chunk.ChunkIndex < matches[j].Chunk.ChunkIndex
	})
	if len(matches) > k {
		matches = matches[:k]
	}

	results := make([]models.SearchResult, len(matches))
	for i, match := range matches {
		results[i] = models.SearchResult{
			Chunk:      match.Chunk,
			Score:      match.Similarity,
			SourceFile: match.Chunk.SourceFile,
			Preview:    Preview(match.Chunk.Content),
		}
	}

	log.Debug().Str("session_id", sessionID).Int("results", len(results)).
		Strs("file_filter", fileFilter).Msgf("Searched for: %s", question)
	return results, nil
}

// Preview truncates content to the source-attribution preview limit,
// backing up to a rune boundary so multi-byte characters never get split.
func Preview(content string) string {
	if len(content) <= models.PreviewLimit {
		return content
	}
	cut := models.PreviewLimit
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut] + "..."
}
