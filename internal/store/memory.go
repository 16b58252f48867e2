package store

import (
	"context"
	"sync"

	"chat-rag/internal/embedding"
	"chat-rag/internal/models"
)

// Memory is a brute-force cosine-similarity store. It is the degradation
// target for every other backend and the default for tests and small runs.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string][]models.Chunk
	locks    *sessionLocks
}

func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[string][]models.Chunk),
		locks:    newSessionLocks(),
	}
}

func (m *Memory) Thresholded() bool { return true }

func (m *Memory) Add(_ context.Context, sessionID string, chunks []models.Chunk) error {
	lock := m.locks.get(sessionID)
	lock.Lock()
	defer lock.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = append(m.sessions[sessionID], chunks...)
	return nil
}

func (m *Memory) Query(_ context.Context, sessionID string, queryEmbedding []float32, k int, fileFilter []string) ([]Match, error) {
	lock := m.locks.get(sessionID)
	lock.Lock()
	defer lock.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()

	filter := fileSet(fileFilter)
	var matches []Match
	for _, chunk := range m.sessions[sessionID] {
		if filter != nil {
			if _, ok := filter[chunk.SourceFile]; !ok {
				continue
			}
		}
		if len(chunk.Embedding) == 0 {
			continue
		}
		matches = append(matches, Match{
			Chunk:      chunk,
			Similarity: embedding.CosineSimilarity(queryEmbedding, chunk.Embedding),
		})
	}
	return matches, nil
}

func (m *Memory) DeleteByFile(_ context.Context, sessionID, fileName string) (int, error) {
	lock := m.locks.get(sessionID)
	lock.Lock()
	defer lock.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	chunks := m.sessions[sessionID]
	kept := chunks[:0:0]
	removed := 0
	for _, chunk := range chunks {
		if chunk.SourceFile == fileName {
			removed++
			continue
		}
		kept = append(kept, chunk)
	}
	m.sessions[sessionID] = kept
	return removed, nil
}

func (m *Memory) Stats(_ context.Context, sessionID string) (models.SessionStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := models.SessionStats{PerFile: make(map[string]int)}
	for _, chunk := range m.sessions[sessionID] {
		stats.TotalChunks++
		stats.PerFile[chunk.SourceFile]++
	}
	stats.TotalFiles = len(stats.PerFile)
	return stats, nil
}

func (m *Memory) ClearSession(_ context.Context, sessionID string) error {
	lock := m.locks.get(sessionID)
	lock.Lock()
	defer lock.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

func fileSet(names []string) map[string]struct{} {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}
