package services

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

type openAIEmbedder struct {
	client     *openai.Client
	dimensions int64
}

// NewOpenAIEmbedder returns an Embedder backed by text-embedding-3-small,
// truncated to dimensions so it fits the same collection as Gemini vectors.
func NewOpenAIEmbedder(apiKey string, dimensions uint64) (Embedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is empty")
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &openAIEmbedder{
		client:     &client,
		dimensions: int64(dimensions),
	}, nil
}

// Embed implements Embedder.
func (o *openAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
		Model: openai.EmbeddingModelTextEmbedding3Small,
	}
	if o.dimensions > 0 {
		params.Dimensions = openai.Int(o.dimensions)
	}

	resp, err := o.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: no embedding data returned", ErrEmbeddingFormat)
	}

	embedding := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		embedding[i] = float32(v)
	}

	return embedding, nil
}
