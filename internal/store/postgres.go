package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"chat-rag/internal/config"
	"chat-rag/internal/embedding"
	"chat-rag/internal/models"
)

// ChunkRecord is the pgvector-backed row for one chunk.
type ChunkRecord struct {
	bun.BaseModel `bun:"table:chunks,alias:c"`
	ID            string            `bun:"id,pk"`
	SessionID     string            `bun:"session_id,notnull"`
	FileName      string            `bun:"file_name,notnull"`
	ChunkType     string            `bun:"chunk_type,notnull"`
	ChunkIndex    int               `bun:"chunk_index,notnull"`
	Content       string            `bun:"content,notnull"`
	Metadata      map[string]string `bun:"metadata,type:jsonb"`
	Embedding     []float32         `bun:"embedding,notnull,type:vector(768)"`
}

// Postgres stores chunks in a pgvector table, session-scoped by column.
type Postgres struct {
	db    *bun.DB
	locks *sessionLocks
}

func NewPostgres(cfg *config.Config) (*Postgres, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(cfg.Database.DSN),
		pgdriver.WithPassword(cfg.Database.Password),
	))
	if err := sqldb.Ping(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Database.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if _, err := db.NewCreateTable().Model((*ChunkRecord)(nil)).IfNotExists().Exec(context.Background()); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}

	return &Postgres{db: db, locks: newSessionLocks()}, nil
}

func (p *Postgres) Thresholded() bool { return false }

func (p *Postgres) Close() error { return p.db.Close() }

func (p *Postgres) Add(ctx context.Context, sessionID string, chunks []models.Chunk) error {
	lock := p.locks.get(sessionID)
	lock.Lock()
	defer lock.Unlock()

	records := make([]ChunkRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = ChunkRecord{
			ID:         chunk.ChunkID,
			SessionID:  sessionID,
			FileName:   chunk.SourceFile,
			ChunkType:  string(chunk.Type),
			ChunkIndex: chunk.ChunkIndex,
			Content:    chunk.Content,
			Metadata:   chunk.Metadata,
			Embedding:  chunk.Embedding,
		}
	}
	if _, err := p.db.NewInsert().Model(&records).Exec(ctx); err != nil {
		return fmt.Errorf("failed to store chunks: %v", err)
	}
	return nil
}

func (p *Postgres) Query(ctx context.Context, sessionID string, queryEmbedding []float32, k int, fileFilter []string) ([]Match, error) {
	lock := p.locks.get(sessionID)
	lock.Lock()
	defer lock.Unlock()

	query := p.db.NewSelect().
		Model((*ChunkRecord)(nil)).
		Where("session_id = ?", sessionID).
		OrderExpr("embedding <-> ?", queryEmbedding).
		Limit(k)
	if len(fileFilter) > 0 {
		query = query.Where("file_name IN (?)", bun.In(fileFilter))
	}

	var records []ChunkRecord
	if err := query.Scan(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to query chunks: %v", err)
	}

	matches := make([]Match, len(records))
	for i, record := range records {
		matches[i] = Match{
			Chunk: models.Chunk{
				ChunkID:    record.ID,
				Content:    record.Content,
				Type:       models.ChunkType(record.ChunkType),
				Metadata:   record.Metadata,
				Embedding:  record.Embedding,
				SourceFile: record.FileName,
				ChunkIndex: record.ChunkIndex,
			},
			Similarity: embedding.CosineSimilarity(queryEmbedding, record.Embedding),
		}
	}
	return matches, nil
}

func (p *Postgres) DeleteByFile(ctx context.Context, sessionID, fileName string) (int, error) {
	lock := p.locks.get(sessionID)
	lock.Lock()
	defer lock.Unlock()

	res, err := p.db.NewDelete().
		Model((*ChunkRecord)(nil)).
		Where("session_id = ?", sessionID).
		Where("file_name = ?", fileName).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete chunks: %v", err)
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

func (p *Postgres) Stats(ctx context.Context, sessionID string) (models.SessionStats, error) {
	var rows []struct {
		FileName string `bun:"file_name"`
		Count    int    `bun:"count"`
	}
	err := p.db.NewSelect().
		Model((*ChunkRecord)(nil)).
		Column("file_name").
		ColumnExpr("count(*) AS count").
		Where("session_id = ?", sessionID).
		Group("file_name").
		Scan(ctx, &rows)
	if err != nil {
		return models.SessionStats{}, fmt.Errorf("failed to read stats: %v", err)
	}

	stats := models.SessionStats{PerFile: make(map[string]int)}
	for _, row := range rows {
		stats.PerFile[row.FileName] = row.Count
		stats.TotalChunks += row.Count
	}
	stats.TotalFiles = len(stats.PerFile)
	return stats, nil
}

func (p *Postgres) ClearSession(ctx context.Context, sessionID string) error {
	lock := p.locks.get(sessionID)
	lock.Lock()
	defer lock.Unlock()

	_, err := p.db.NewDelete().
		Model((*ChunkRecord)(nil)).
		Where("session_id = ?", sessionID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear session: %v", err)
	}
	return nil
}
