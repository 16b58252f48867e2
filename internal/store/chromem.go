package store

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"chat-rag/internal/config"
	"chat-rag/internal/models"
)

const compress = false

// Chromem stores chunks in chromem-go collections, one collection per
// session. Persistent storage is preferred; when the persistent database
// cannot be opened the store degrades to chromem's in-process mode with a
// warning instead of failing.
type Chromem struct {
	db       *chromem.DB
	dbPath   string
	degraded bool

	locks  *sessionLocks
	counts *countIndex

	encryptionKey string
}

func NewChromem(cfg *config.Config) (*Chromem, error) {
	db, err := chromem.NewPersistentDB(cfg.Store.Path, compress)
	degraded := false
	if err != nil {
		log.Warn().Err(err).Msg("Failed to open persistent store, using in-process collections")
		db = chromem.NewDB()
		degraded = true
	}
	if db == nil {
		return nil, fmt.Errorf("%w: failed to create database", models.ErrStoreUnavailable)
	}

	// in-process collections vanish on exit, so their counts stay in memory too
	countPath := cfg.Store.Path
	if degraded {
		countPath = ""
	}

	return &Chromem{
		db:            db,
		dbPath:        cfg.Store.Path,
		degraded:      degraded,
		locks:         newSessionLocks(),
		counts:        newCountIndex(countPath),
		encryptionKey: cfg.Store.EncryptionKey,
	}, nil
}

func (c *Chromem) Thresholded() bool { return false }

// Degraded reports whether the persistent backend was unavailable.
func (c *Chromem) Degraded() bool { return c.degraded }

func collectionName(sessionID string) string {
	return "session_" + sessionID
}

// collection creation is idempotent
func (c *Chromem) collection(sessionID string) (*chromem.Collection, error) {
	coll, err := c.db.GetOrCreateCollection(collectionName(sessionID), map[string]string{models.MetaSessionID: sessionID}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %v", err)
	}
	return coll, nil
}

func (c *Chromem) Add(ctx context.Context, sessionID string, chunks []models.Chunk) error {
	lock := c.locks.get(sessionID)
	lock.Lock()
	defer lock.Unlock()

	coll, err := c.collection(sessionID)
	if err != nil {
		return err
	}

	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chromem.Document{
			ID:        chunk.ChunkID,
			Content:   chunk.Content,
			Metadata:  chunk.Metadata,
			Embedding: chunk.Embedding,
		}
	}

	if err := coll.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %v", err)
	}
	for _, chunk := range chunks {
		c.counts.add(sessionID, chunk.SourceFile, 1)
	}
	return nil
}

func (c *Chromem) Query(ctx context.Context, sessionID string, queryEmbedding []float32, k int, fileFilter []string) ([]Match, error) {
	lock := c.locks.get(sessionID)
	lock.Lock()
	defer lock.Unlock()

	coll, err := c.collection(sessionID)
	if err != nil {
		return nil, err
	}

	total := coll.Count()
	if total == 0 {
		return nil, nil
	}

	// chromem filters metadata on a single value only, so with a multi-file
	// filter we fetch the whole collection and filter here. Sessions hold a
	// handful of files, this stays cheap.
	opts := chromem.QueryOptions{QueryEmbedding: queryEmbedding, NResults: min(k, total)}
	if len(fileFilter) == 1 {
		opts.Where = map[string]string{models.MetaFileName: fileFilter[0]}
		opts.NResults = min(k, c.counts.get(sessionID, fileFilter[0]))
	} else if len(fileFilter) > 1 {
		opts.NResults = total
	}
	if opts.NResults <= 0 {
		return nil, nil
	}

	results, err := coll.QueryWithOptions(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}

	filter := fileSet(fileFilter)
	matches := make([]Match, 0, len(results))
	for _, result := range results {
		chunk := chunkFromDocument(result.ID, result.Content, result.Metadata, result.Embedding)
		if filter != nil {
			if _, ok := filter[chunk.SourceFile]; !ok {
				continue
			}
		}
		matches = append(matches, Match{Chunk: chunk, Similarity: result.Similarity})
		if len(matches) == k {
			break
		}
	}
	return matches, nil
}

func (c *Chromem) DeleteByFile(ctx context.Context, sessionID, fileName string) (int, error) {
	lock := c.locks.get(sessionID)
	lock.Lock()
	defer lock.Unlock()

	coll, err := c.collection(sessionID)
	if err != nil {
		return 0, err
	}

	removed := c.counts.get(sessionID, fileName)
	if err := coll.Delete(ctx, map[string]string{models.MetaFileName: fileName}, nil); err != nil {
		return 0, fmt.Errorf("failed to delete documents: %v", err)
	}
	c.counts.drop(sessionID, fileName)
	return removed, nil
}

func (c *Chromem) Stats(_ context.Context, sessionID string) (models.SessionStats, error) {
	return c.counts.stats(sessionID), nil
}

func (c *Chromem) ClearSession(_ context.Context, sessionID string) error {
	lock := c.locks.get(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if err := c.db.DeleteCollection(collectionName(sessionID)); err != nil {
		return fmt.Errorf("failed to drop collection: %v", err)
	}
	c.counts.clear(sessionID)
	return nil
}

// Export writes a session's collection to an encrypted file. Only useful in
// degraded (in-process) mode, where nothing persists otherwise.
func (c *Chromem) Export(ctx context.Context, sessionID string) error {
	if c.encryptionKey == "" {
		return fmt.Errorf("encryption key is required")
	}
	filePath := c.dbPath + "/" + collectionName(sessionID) + ".chromem"
	if err := c.db.ExportToFile(filePath, compress, c.encryptionKey, collectionName(sessionID)); err != nil {
		return fmt.Errorf("failed to export database: %v", err)
	}
	log.Debug().Msgf("Exported collection %s to %s", collectionName(sessionID), filePath)
	return nil
}

func chunkFromDocument(id, content string, metadata map[string]string, emb []float32) models.Chunk {
	index, _ := strconv.Atoi(metadata[models.MetaChunkIndex])
	return models.Chunk{
		ChunkID:    id,
		Content:    content,
		Type:       models.ChunkType(metadata[models.MetaChunkType]),
		Metadata:   metadata,
		Embedding:  emb,
		SourceFile: metadata[models.MetaFileName],
		ChunkIndex: index,
	}
}
