package services

import (
	"context"
	"errors"
)

// ErrCVTextNotFound means no stored CV text exists under the requested vector id.
var ErrCVTextNotFound = errors.New("cv text not found")

// CVDocument is what gets indexed for each uploaded CV.
type CVDocument struct {
	VectorID  string
	Filename  string
	Text      string
	Embedding []float32
}

type SearchResult struct {
	VectorID string
	Score    float32
	Text     string
	Filename string
}

type VectorStore interface {
	InitCollection(ctx context.Context) error
	Upsert(ctx context.Context, doc *CVDocument) error
	FetchText(ctx context.Context, vectorID string) (string, error)
	SearchSimilar(ctx context.Context, queryEmbedding []float32, limit int) ([]SearchResult, error)
}
