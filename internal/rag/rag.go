package rag

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"chat-rag/internal/analyzer"
	"chat-rag/internal/assembler"
	"chat-rag/internal/chunker"
	"chat-rag/internal/config"
	"chat-rag/internal/embedding"
	"chat-rag/internal/filestore"
	"chat-rag/internal/generator"
	"chat-rag/internal/helper"
	"chat-rag/internal/models"
	"chat-rag/internal/retriever"
	"chat-rag/internal/store"
)

// Engine drives the retrieval pipeline for every session: ingestion into
// the session store, semantic retrieval with context assembly, and the
// heuristic fallback when retrieval comes up empty.
type Engine struct {
	cfg       *config.Config
	files     filestore.Store
	chunker   *chunker.Chunker
	embedder  embedding.Embedder
	store     store.Store
	retriever *retriever.Retriever
	analyzer  *analyzer.Analyzer
	generator generator.Generator

	mu       sync.Mutex
	sessions map[string]map[string]models.FileRef
}

// NewEngine wires the pipeline. gen may be nil when only ingestion and
// context assembly are needed.
func NewEngine(cfg *config.Config, files filestore.Store, emb embedding.Embedder, s store.Store, gen generator.Generator) *Engine {
	return &Engine{
		cfg:       cfg,
		files:     files,
		chunker:   chunker.New(cfg),
		embedder:  emb,
		store:     s,
		retriever: retriever.New(cfg, s, emb),
		analyzer:  analyzer.New(files),
		generator: gen,
		sessions:  make(map[string]map[string]models.FileRef),
	}
}

// IngestFiles processes each file into the session store. Failures are
// isolated per file: one bad file never blocks its siblings.
func (e *Engine) IngestFiles(ctx context.Context, sessionID string, files []models.FileRef) []models.IngestReport {
	reports := make([]models.IngestReport, 0, len(files))
	for _, file := range files {
		report := e.ingestFile(ctx, sessionID, file)
		if report.Success {
			log.Info().Str("session_id", sessionID).Str("file", file.Name).
				Int("chunks", report.ChunksCreated).Msg("Ingested file")
		} else {
			log.Error().Str("session_id", sessionID).Str("file", file.Name).
				Str("error", report.Error).Msg("Failed to ingest file")
		}
		reports = append(reports, report)
	}
	return reports
}

// ingestFile is atomic per file: chunks are built and embedded up front,
// the previous batch for the same file name is replaced, and a failed add
// is rolled back so a partial chunk set is never queryable.
func (e *Engine) ingestFile(ctx context.Context, sessionID string, file models.FileRef) models.IngestReport {
	report := models.IngestReport{FileName: file.Name}

	if file.ID == "" {
		id, err := helper.GenerateUUID()
		if err != nil {
			report.Error = err.Error()
			return report
		}
		file.ID = id
	}

	content, err := e.files.Load(file.Path, file.Type)
	if err != nil {
		report.Error = err.Error()
		return report
	}

	chunkContents, err := e.chunker.Chunk(content, file.Name)
	if err != nil {
		report.Error = err.Error()
		return report
	}

	texts := make([]string, len(chunkContents))
	for i, cc := range chunkContents {
		texts[i] = cc.Content
	}
	embeddings, err := e.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		report.Error = fmt.Errorf("%w: %v", models.ErrEmbeddingFailure, err).Error()
		return report
	}

	chunks := buildChunks(sessionID, file, chunkContents, embeddings)

	// same file name replaces its previous chunks
	if _, err := e.store.DeleteByFile(ctx, sessionID, file.Name); err != nil {
		report.Error = err.Error()
		return report
	}
	if err := e.store.Add(ctx, sessionID, chunks); err != nil {
		if _, rollbackErr := e.store.DeleteByFile(ctx, sessionID, file.Name); rollbackErr != nil {
			log.Error().Err(rollbackErr).Str("file", file.Name).Msg("Rollback after failed add also failed")
		}
		report.Error = err.Error()
		return report
	}

	e.registerFile(sessionID, file)

	report.Success = true
	report.ChunksCreated = len(chunks)
	for _, chunk := range chunks {
		report.ContentLength += len(chunk.Content)
	}
	return report
}

func buildChunks(sessionID string, file models.FileRef, contents []models.ChunkContent, embeddings [][]float32) []models.Chunk {
	now := time.Now().Format(time.RFC3339)
	chunks := make([]models.Chunk, len(contents))
	for i, cc := range contents {
		metadata := map[string]string{
			models.MetaFileID:     file.ID,
			models.MetaFileName:   file.Name,
			models.MetaFileType:   string(file.Type),
			models.MetaChunkType:  string(cc.Type),
			models.MetaChunkIndex: strconv.Itoa(i),
			models.MetaSessionID:  sessionID,
			models.MetaUploadedAt: now,
		}
		for k, v := range cc.Metadata {
			metadata[k] = v
		}

		var emb []float32
		if i < len(embeddings) {
			emb = embeddings[i]
		}
		chunks[i] = models.Chunk{
			ChunkID:    fmt.Sprintf("%s_%d", file.ID, i),
			Content:    cc.Content,
			Type:       cc.Type,
			Metadata:   metadata,
			Embedding:  emb,
			SourceFile: file.Name,
			ChunkIndex: i,
		}
	}
	return chunks
}

// AnswerQuestion tries the semantic path first and falls back to the
// heuristic analyzer when it finds nothing. It never returns an error: the
// outcome is always a structured QuestionContext.
func (e *Engine) AnswerQuestion(ctx context.Context, sessionID, question string, fileScope []string) models.QuestionContext {
	scope := e.resolveScope(sessionID, fileScope)

	results, err := e.retriever.Search(ctx, sessionID, question, fileScope, e.cfg.RAG.TopK)
	if err != nil {
		log.Warn().Err(err).Msg("Semantic retrieval unavailable, using heuristic analysis")
	}
	if err == nil && len(results) > 0 {
		return assembler.Assemble(results, fileScope)
	}

	report := e.analyzer.AnalyzeQuestion(question, scope)
	return fallbackContext(report, fileScope)
}

// fallbackContext wraps a heuristic report into the same shape the
// assembler produces.
func fallbackContext(report analyzer.Report, searchedFiles []string) models.QuestionContext {
	qc := models.QuestionContext{
		UsedFallback: true,
		Context:      report.Comprehensive,
	}

	for _, analysis := range report.Analyses {
		if analysis.RelevanceScore <= 0 {
			continue
		}
		qc.Success = true
		qc.Sources = append(qc.Sources, models.Source{
			FileName:       analysis.FileName,
			ChunkType:      "heuristic_analysis",
			RelevanceScore: float32(analysis.RelevanceScore),
			Preview:        retriever.Preview(analysis.Summary),
		})
	}

	if !qc.Success {
		searched := "the attached files"
		if len(searchedFiles) > 0 {
			searched = strings.Join(searchedFiles, ", ")
		}
		qc.Message = fmt.Sprintf("No relevant data found in %s (searched for: %s).",
			searched, strings.Join(report.SearchTerms, ", "))
	}
	return qc
}

// Ask answers a question end to end: context assembly, prompt building and
// one generator call bounded by the configured timeout. On generator
// failure the heuristic-only answer is substituted, never a stall.
func (e *Engine) Ask(ctx context.Context, sessionID, question string, fileScope []string) models.PromptResponse {
	qc := e.AnswerQuestion(ctx, sessionID, question, fileScope)

	response := models.PromptResponse{Query: question, Source: sourceList(qc)}

	if !qc.Success {
		response.Content = qc.Message
		return response
	}

	var prompt string
	if qc.UsedFallback {
		prompt = fmt.Sprintf(models.FallbackPromptTemplate, qc.Context, question)
	} else {
		prompt = fmt.Sprintf(models.RAGPromptTemplate, qc.Context, question)
	}

	if e.generator == nil {
		response.Content = qc.Context
		return response
	}

	timeout := time.Duration(e.cfg.InferLLM.TimeoutSeconds) * time.Second
	genCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	answer, err := e.generator.Generate(genCtx, prompt)
	if err != nil {
		log.Warn().Err(err).Msg("Generator failed, substituting heuristic answer")
		if qc.UsedFallback {
			response.Content = qc.Context
		} else {
			report := e.analyzer.AnalyzeQuestion(question, e.resolveScope(sessionID, fileScope))
			response.Content = report.Comprehensive
		}
		return response
	}

	response.Content = answer
	return response
}

// ClearFile removes every chunk belonging to one file in one session.
func (e *Engine) ClearFile(ctx context.Context, sessionID, fileName string) bool {
	removed, err := e.store.DeleteByFile(ctx, sessionID, fileName)
	if err != nil {
		log.Error().Err(err).Str("file", fileName).Msg("Failed to clear file")
		return false
	}

	e.mu.Lock()
	delete(e.sessions[sessionID], fileName)
	e.mu.Unlock()

	log.Info().Str("session_id", sessionID).Str("file", fileName).
		Int("removed", removed).Msg("Cleared file chunks")
	return true
}

// SessionStats reports what the session currently holds.
func (e *Engine) SessionStats(ctx context.Context, sessionID string) (models.SessionStats, error) {
	return e.store.Stats(ctx, sessionID)
}

// ClearSession tears the whole session down.
func (e *Engine) ClearSession(ctx context.Context, sessionID string) error {
	e.mu.Lock()
	delete(e.sessions, sessionID)
	e.mu.Unlock()
	return e.store.ClearSession(ctx, sessionID)
}

func (e *Engine) registerFile(sessionID string, file models.FileRef) {
	e.mu.Lock()
	defer e.mu.Unlock()
	files, ok := e.sessions[sessionID]
	if !ok {
		files = make(map[string]models.FileRef)
		e.sessions[sessionID] = files
	}
	files[file.Name] = file
}

// resolveScope maps scope names to registered file refs; an empty scope
// means every file the session has ingested.
func (e *Engine) resolveScope(sessionID string, fileScope []string) []models.FileRef {
	e.mu.Lock()
	defer e.mu.Unlock()

	files := e.sessions[sessionID]
	var refs []models.FileRef
	if len(fileScope) == 0 {
		for _, ref := range files {
			refs = append(refs, ref)
		}
		return refs
	}
	for _, name := range fileScope {
		if ref, ok := files[name]; ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

func sourceList(qc models.QuestionContext) string {
	seen := make(map[string]struct{})
	var names []string
	for _, source := range qc.Sources {
		if _, ok := seen[source.FileName]; ok {
			continue
		}
		seen[source.FileName] = struct{}{}
		names = append(names, source.FileName)
	}
	return strings.Join(names, ", ")
}
