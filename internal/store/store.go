package store

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"chat-rag/internal/config"
	"chat-rag/internal/models"
)

// Match is one store hit with its similarity in [0,1], higher is closer.
type Match struct {
	Chunk      models.Chunk
	Similarity float32
}

// Store is a per-session collection of embedded chunks. Session isolation is
// the backend's contract: a query for one session never sees another
// session's chunks.
type Store interface {
	Add(ctx context.Context, sessionID string, chunks []models.Chunk) error
	Query(ctx context.Context, sessionID string, queryEmbedding []float32, k int, fileFilter []string) ([]Match, error)
	DeleteByFile(ctx context.Context, sessionID, fileName string) (int, error)
	Stats(ctx context.Context, sessionID string) (models.SessionStats, error)
	ClearSession(ctx context.Context, sessionID string) error

	// Thresholded reports whether the retriever should apply the minimum
	// similarity cutoff. Backends whose own ranking is already meaningful
	// return false and results are taken top-k as is.
	Thresholded() bool
}

// New selects the configured backend. A backend that fails to initialize
// degrades to the in-memory store with a warning instead of failing the
// whole service.
func New(cfg *config.Config) Store {
	switch cfg.Store.Backend {
	case "postgres":
		s, err := NewPostgres(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Postgres store unavailable, falling back to in-memory store")
			return NewMemory()
		}
		return s
	case "chromem":
		s, err := NewChromem(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Chromem store unavailable, falling back to in-memory store")
			return NewMemory()
		}
		return s
	default:
		return NewMemory()
	}
}

// sessionLocks serializes operations per session id while letting different
// sessions proceed in parallel.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *sessionLocks) get(sessionID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[sessionID] = lock
	}
	return lock
}
