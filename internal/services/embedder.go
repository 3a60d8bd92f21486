package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

// ErrEmbeddingFormat is returned when a provider hands back a vector that is
// empty, non-finite, or inconsistent in dimension.
var ErrEmbeddingFormat = errors.New("embedding format invalid")

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ValidateEmbedding checks that every component is a finite number.
func ValidateEmbedding(vec []float32) error {
	if len(vec) == 0 {
		return fmt.Errorf("%w: empty vector", ErrEmbeddingFormat)
	}
	for i, v := range vec {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: component %d is not finite", ErrEmbeddingFormat, i)
		}
	}
	return nil
}

type pooledEmbedder struct {
	base        Embedder
	chunker     TextChunker
	concurrency int
}

// NewPooledEmbedder embeds text chunk by chunk and mean-pools the chunk
// vectors, so documents longer than the provider's input window still map to
// a single vector.
func NewPooledEmbedder(base Embedder, chunker TextChunker, concurrency int) Embedder {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &pooledEmbedder{base: base, chunker: chunker, concurrency: concurrency}
}

// Embed implements Embedder.
func (p *pooledEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	chunks := p.chunker.Chunk(text)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("cannot embed empty text")
	}

	vectors := make([][]float32, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			vec, err := p.base.Embed(gctx, chunk)
			if err != nil {
				return fmt.Errorf("failed to embed chunk %d: %w", i, err)
			}
			if err := ValidateEmbedding(vec); err != nil {
				return err
			}
			vectors[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return meanPool(vectors)
}

func meanPool(vectors [][]float32) ([]float32, error) {
	if len(vectors) == 1 {
		return vectors[0], nil
	}

	dim := len(vectors[0])
	sum := make([]float64, dim)
	for _, vec := range vectors {
		if len(vec) != dim {
			return nil, fmt.Errorf("%w: chunk dimensions differ (%d vs %d)", ErrEmbeddingFormat, len(vec), dim)
		}
		for j, v := range vec {
			sum[j] += float64(v)
		}
	}

	out := make([]float32, dim)
	for j := range sum {
		out[j] = float32(sum[j] / float64(len(vectors)))
	}
	return out, nil
}
