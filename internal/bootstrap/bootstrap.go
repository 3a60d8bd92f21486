// Package bootstrap builds the configured backends shared by the API server
// and the ingest command.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"alfredoptarigan/cv-screener/internal/config"
	"alfredoptarigan/cv-screener/internal/repositories"
	"alfredoptarigan/cv-screener/internal/services"
)

// Components holds the long-lived clients built from config.
type Components struct {
	DB          *gorm.DB
	Redis       *redis.Client
	Gemini      services.GeminiService
	Embedder    services.Embedder
	VectorStore services.VectorStore
	Storage     services.StorageService
}

// Build connects every backend the config selects. Close releases them.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Components, error) {
	c := &Components{}

	if cfg.NeedsDatabase() {
		db, err := config.InitDatabase(cfg, log)
		if err != nil {
			return nil, err
		}
		c.DB = db
	}

	if cfg.Gemini.APIKey != "" {
		gemini, err := services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.EmbedModel, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize gemini: %w", err)
		}
		c.Gemini = gemini
		log.Info("✅ gemini initialized", zap.String("model", cfg.Gemini.Model))
	}

	base, err := c.baseEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	chunker := services.NewTextChunker(cfg.Evaluation.EmbedChunkSize, cfg.Evaluation.EmbedChunkOverlap)
	c.Embedder = services.NewPooledEmbedder(base, chunker, cfg.Worker.Concurrency)

	switch cfg.Evaluation.VectorBackend {
	case "qdrant":
		store, err := services.NewQdrantStore(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, cfg.Evaluation.VectorSize, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize qdrant: %w", err)
		}
		c.VectorStore = store
	case "pgvector":
		c.VectorStore = services.NewPgVectorStore(c.DB, cfg.Evaluation.VectorSize, log)
	default:
		return nil, fmt.Errorf("unknown vector backend %q", cfg.Evaluation.VectorBackend)
	}
	if err := c.VectorStore.InitCollection(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize vector collection: %w", err)
	}
	log.Info("✅ vector store ready", zap.String("backend", cfg.Evaluation.VectorBackend))

	switch cfg.Storage.Backend {
	case "local":
		c.Storage = services.NewLocalStorage(cfg.Storage.UploadPath)
	case "s3":
		storage, err := services.NewS3Storage(ctx, cfg.Storage.S3Region, cfg.Storage.S3Bucket, cfg.Storage.S3Prefix)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize s3 storage: %w", err)
		}
		c.Storage = storage
	case "none", "":
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if c.Storage != nil {
		if err := c.Storage.EnsureReady(ctx); err != nil {
			return nil, fmt.Errorf("failed to prepare storage: %w", err)
		}
		log.Info("✅ raw upload archive ready", zap.String("backend", cfg.Storage.Backend))
	}

	return c, nil
}

func (c *Components) baseEmbedder(cfg *config.Config) (services.Embedder, error) {
	switch cfg.Evaluation.EmbeddingProvider {
	case "gemini":
		if c.Gemini == nil {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for gemini embeddings")
		}
		return c.Gemini, nil
	case "openai":
		embedder, err := services.NewOpenAIEmbedder(cfg.OpenAI.APIKey, cfg.Evaluation.VectorSize)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize openai: %w", err)
		}
		return embedder, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Evaluation.EmbeddingProvider)
	}
}

// EvaluationStore builds the configured evaluation store.
func (c *Components) EvaluationStore(ctx context.Context, cfg *config.Config) (repositories.EvaluationStore, error) {
	switch cfg.Evaluation.StoreBackend {
	case "memory":
		return repositories.NewMemoryStore(cfg.Evaluation.TTL), nil
	case "postgres":
		return repositories.NewEvaluationRepository(c.DB), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		c.Redis = client
		return repositories.NewRedisStore(client, cfg.Redis.KeyPrefix, cfg.Evaluation.TTL), nil
	default:
		return nil, fmt.Errorf("unknown evaluation store %q", cfg.Evaluation.StoreBackend)
	}
}

// TextGenerator returns the LLM used for structured CV extraction, or nil
// when extraction should stay heuristic.
func (c *Components) TextGenerator(cfg *config.Config) services.TextGenerator {
	if !cfg.Evaluation.LLMExtraction || c.Gemini == nil {
		return nil
	}
	return c.Gemini
}

// Close releases every client Build or EvaluationStore opened.
func (c *Components) Close(log *zap.Logger) {
	if closer, ok := c.VectorStore.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Warn("⚠️ failed to close vector store", zap.Error(err))
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn("⚠️ failed to close redis", zap.Error(err))
		}
	}
	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}
