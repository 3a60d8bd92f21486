package services

import (
	"context"
	"fmt"

	"alfredoptarigan/cv-screener/internal/logger"
	"alfredoptarigan/cv-screener/internal/models"
)

const snippetLength = 200

type SearchService interface {
	Search(ctx context.Context, query string) ([]models.SearchMatch, error)
}

type searchService struct {
	embedder    Embedder
	vectorStore VectorStore
	maxResults  int
}

func NewSearchService(embedder Embedder, vectorStore VectorStore, maxResults int) SearchService {
	if maxResults <= 0 {
		maxResults = 1
	}
	return &searchService{embedder: embedder, vectorStore: vectorStore, maxResults: maxResults}
}

// Search implements SearchService.
func (s *searchService) Search(ctx context.Context, query string) ([]models.SearchMatch, error) {
	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := s.vectorStore.SearchSimilar(ctx, embedding, s.maxResults)
	if err != nil {
		return nil, err
	}

	matches := make([]models.SearchMatch, 0, len(results))
	for _, r := range results {
		matches = append(matches, models.SearchMatch{
			VectorID: r.VectorID,
			Score:    r.Score,
			Snippet:  logger.TruncateForLog(CleanText(r.Text), snippetLength),
			Filename: r.Filename,
		})
	}
	return matches, nil
}
