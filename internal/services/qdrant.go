package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

const (
	payloadText       = "text"
	payloadFilename   = "filename"
	payloadUploadedAt = "uploaded_at"
)

type qdrantStore struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
	log            *zap.Logger
}

func NewQdrantStore(urlStr, apiKey, collectionName string, vectorSize uint64, log *zap.Logger) (VectorStore, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantStore{
		client:         client,
		collectionName: collectionName,
		vectorSize:     vectorSize,
		log:            log.Named("qdrant"),
	}, nil
}

// InitCollection implements VectorStore.
func (q *qdrantStore) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		q.log.Info("✅ collection already exists", zap.String("collection", q.collectionName))
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.log.Info("✅ collection created", zap.String("collection", q.collectionName), zap.Uint64("size", q.vectorSize))
	return nil
}

// Upsert implements VectorStore. The vector id doubles as the Qdrant point id.
func (q *qdrantStore) Upsert(ctx context.Context, doc *CVDocument) error {
	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(doc.VectorID),
		Vectors: qdrant.NewVectors(doc.Embedding...),
		Payload: qdrant.NewValueMap(map[string]any{
			payloadText:       doc.Text,
			payloadFilename:   doc.Filename,
			payloadUploadedAt: time.Now().UTC().Format(time.RFC3339),
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// FetchText implements VectorStore.
func (q *qdrantStore) FetchText(ctx context.Context, vectorID string) (string, error) {
	// Points are keyed by UUID; any other id cannot have been stored.
	if _, err := uuid.Parse(vectorID); err != nil {
		return "", ErrCVTextNotFound
	}

	points, err := q.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: q.collectionName,
		Ids:            []*qdrant.PointId{qdrant.NewID(vectorID)},
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to fetch point: %w", err)
	}

	if len(points) == 0 {
		return "", ErrCVTextNotFound
	}

	text := points[0].GetPayload()[payloadText].GetStringValue()
	if strings.TrimSpace(text) == "" {
		return "", ErrCVTextNotFound
	}

	return text, nil
}

// SearchSimilar implements VectorStore.
func (q *qdrantStore) SearchSimilar(ctx context.Context, queryEmbedding []float32, limit int) ([]SearchResult, error) {
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, 0, len(points))
	for _, point := range points {
		payload := point.GetPayload()
		results = append(results, SearchResult{
			VectorID: point.GetId().GetUuid(),
			Score:    point.GetScore(),
			Text:     payload[payloadText].GetStringValue(),
			Filename: payload[payloadFilename].GetStringValue(),
		})
	}

	return results, nil
}

// Close releases the gRPC connection.
func (q *qdrantStore) Close() error {
	return q.client.Close()
}
