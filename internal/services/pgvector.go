package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// cvVector is the row layout of the cv_vectors table.
type cvVector struct {
	ID        string          `gorm:"column:id;type:text;primaryKey"`
	Filename  string          `gorm:"type:text"`
	Text      string          `gorm:"type:text;not null"`
	Embedding pgvector.Vector `gorm:"type:vector"`
	CreatedAt time.Time
}

func (cvVector) TableName() string {
	return "cv_vectors"
}

type pgVectorStore struct {
	db         *gorm.DB
	vectorSize uint64
	log        *zap.Logger
}

// NewPgVectorStore keeps CV embeddings in Postgres through the pgvector extension.
func NewPgVectorStore(db *gorm.DB, vectorSize uint64, log *zap.Logger) VectorStore {
	return &pgVectorStore{db: db, vectorSize: vectorSize, log: log.Named("pgvector")}
}

// InitCollection implements VectorStore.
func (p *pgVectorStore) InitCollection(ctx context.Context) error {
	db := p.db.WithContext(ctx)

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("failed to enable pgvector: %w", err)
	}

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS cv_vectors (
		id TEXT PRIMARY KEY,
		filename TEXT,
		text TEXT NOT NULL,
		embedding vector(%d),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`, p.vectorSize)
	if err := db.Exec(ddl).Error; err != nil {
		return fmt.Errorf("failed to create cv_vectors table: %w", err)
	}

	p.log.Info("✅ cv_vectors table ready", zap.Uint64("size", p.vectorSize))
	return nil
}

// Upsert implements VectorStore.
func (p *pgVectorStore) Upsert(ctx context.Context, doc *CVDocument) error {
	row := cvVector{
		ID:        doc.VectorID,
		Filename:  doc.Filename,
		Text:      doc.Text,
		Embedding: pgvector.NewVector(doc.Embedding),
		CreatedAt: time.Now(),
	}

	err := p.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert cv vector: %w", err)
	}

	return nil
}

// FetchText implements VectorStore.
func (p *pgVectorStore) FetchText(ctx context.Context, vectorID string) (string, error) {
	var row cvVector
	err := p.db.WithContext(ctx).
		Select("id", "text").
		Where("id = ?", vectorID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrCVTextNotFound
		}
		return "", fmt.Errorf("failed to fetch cv vector: %w", err)
	}

	if strings.TrimSpace(row.Text) == "" {
		return "", ErrCVTextNotFound
	}

	return row.Text, nil
}

// SearchSimilar implements VectorStore.
func (p *pgVectorStore) SearchSimilar(ctx context.Context, queryEmbedding []float32, limit int) ([]SearchResult, error) {
	var rows []struct {
		ID       string
		Filename string
		Text     string
		Score    float32
	}

	query := pgvector.NewVector(queryEmbedding)
	err := p.db.WithContext(ctx).Raw(`
		SELECT id, filename, text, 1 - (embedding <=> ?) AS score
		FROM cv_vectors
		ORDER BY embedding <=> ?
		LIMIT ?`, query, query, limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search cv vectors: %w", err)
	}

	results := make([]SearchResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, SearchResult{
			VectorID: row.ID,
			Score:    row.Score,
			Text:     row.Text,
			Filename: row.Filename,
		})
	}

	return results, nil
}
