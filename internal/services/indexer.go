package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEmptyText        = errors.New("extracted text is empty")
	ErrEmbedding        = errors.New("failed to generate embedding")
	ErrVectorStoreWrite = errors.New("failed to save to vector store")
)

// CVIndexer runs the upload pipeline: extract text, embed it, index it.
type CVIndexer interface {
	Index(ctx context.Context, filename, contentType string, data []byte) (string, error)
}

type cvIndexer struct {
	extractor   TextExtractor
	embedder    Embedder
	vectorStore VectorStore
	storage     StorageService
	log         *zap.Logger
}

// NewCVIndexer wires the upload pipeline. storage may be nil to skip
// archiving the raw file.
func NewCVIndexer(extractor TextExtractor, embedder Embedder, vectorStore VectorStore, storage StorageService, log *zap.Logger) CVIndexer {
	return &cvIndexer{
		extractor:   extractor,
		embedder:    embedder,
		vectorStore: vectorStore,
		storage:     storage,
		log:         log.Named("indexer"),
	}
}

// Index implements CVIndexer and returns the new vector id.
func (i *cvIndexer) Index(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	if !IsSupportedMimeType(contentType) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, contentType)
	}

	text, err := i.extractor.Extract(data, contentType)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}

	vectorID := uuid.NewString()

	embedding, err := i.embedder.Embed(ctx, text)
	if err == nil {
		err = ValidateEmbedding(embedding)
	}
	if err != nil {
		if errors.Is(err, ErrEmbeddingFormat) {
			return "", err
		}
		i.log.Error("❌ embedding failed", zap.String("file", filename), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	doc := &CVDocument{
		VectorID:  vectorID,
		Filename:  filename,
		Text:      text,
		Embedding: embedding,
	}
	if err := i.vectorStore.Upsert(ctx, doc); err != nil {
		i.log.Error("❌ vector upsert failed", zap.String("vectorId", vectorID), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrVectorStoreWrite, err)
	}

	if i.storage != nil {
		location, err := i.storage.SaveFile(ctx, vectorID, filename, data, contentType)
		if err != nil {
			// The CV is already indexed; a missing archive copy is not fatal.
			i.log.Warn("⚠️ failed to archive uploaded file", zap.String("vectorId", vectorID), zap.Error(err))
		} else {
			i.log.Debug("archived upload", zap.String("vectorId", vectorID), zap.String("location", location))
		}
	}

	i.log.Info("✅ cv indexed", zap.String("vectorId", vectorID), zap.String("file", filename), zap.Int("chars", len(text)))
	return vectorID, nil
}
