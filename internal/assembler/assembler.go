package assembler

import (
	"fmt"
	"strings"

	"chat-rag/internal/models"
	"chat-rag/internal/retriever"
)

// Assemble turns ranked retrieval results into an LLM-ready context plus
// source attributions. It never fabricates content: everything in the
// context text comes from the retrieved chunks.
func Assemble(results []models.SearchResult, searchedFiles []string) models.QuestionContext {
	if len(results) == 0 {
		message := "No relevant context found."
		if len(searchedFiles) > 0 {
			message = fmt.Sprintf("No relevant context found in the specified files: %s.", strings.Join(searchedFiles, ", "))
		}
		return models.QuestionContext{Success: false, Message: message}
	}

	contextParts := make([]string, 0, len(results))
	sources := make([]models.Source, 0, len(results))
	var totalScore float32

	for _, result := range results {
		contextParts = append(contextParts, fmt.Sprintf("Source: %s\n%s", result.SourceFile, result.Chunk.Content))
		sources = append(sources, models.Source{
			FileName:       result.SourceFile,
			ChunkType:      string(result.Chunk.Type),
			RelevanceScore: result.Score,
			Preview:        retriever.Preview(result.Chunk.Content),
		})
		totalScore += result.Score
	}

	return models.QuestionContext{
		Success:          true,
		Context:          strings.Join(contextParts, models.ContextSeparator),
		Sources:          sources,
		AverageRelevance: totalScore / float32(len(results)),
	}
}
