package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Qdrant     QdrantConfig
	Gemini     GeminiConfig
	OpenAI     OpenAIConfig
	Storage    StorageConfig
	Worker     WorkerConfig
	Evaluation EvaluationConfig
	Security   SecurityConfig
}

type ServerConfig struct {
	Port      string
	Env       string
	LogJSON   bool
	LogDebug  bool
	BodyLimit int
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

type GeminiConfig struct {
	APIKey     string
	Model      string
	EmbedModel string
}

type OpenAIConfig struct {
	APIKey string
}

type StorageConfig struct {
	// Backend is "local" or "s3".
	Backend     string
	UploadPath  string
	MaxFileSize int64
	S3Bucket    string
	S3Region    string
	S3Prefix    string
}

type WorkerConfig struct {
	Concurrency      int
	QueueSize        int
	RetryMaxAttempts int
}

type EvaluationConfig struct {
	// StoreBackend is "memory", "postgres" or "redis".
	StoreBackend string
	// VectorBackend is "qdrant" or "pgvector".
	VectorBackend     string
	EmbeddingProvider string
	VectorSize        uint64
	EmbedChunkSize    int
	EmbedChunkOverlap int
	Delay             time.Duration
	TTL               time.Duration
	LLMExtraction     bool
}

type SecurityConfig struct {
	CORSOrigins     []string
	RateLimit       int
	RateLimitWindow time.Duration
	MaxQueryLen     int
	MaxResults      int
}

func Load() *Config {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:      getEnv("PORT", "5050"),
			Env:       getEnv("ENV", "development"),
			LogJSON:   getEnvAsBool("LOG_JSON", false),
			LogDebug:  getEnvAsBool("LOG_DEBUG", false),
			BodyLimit: getEnvAsInt("BODY_LIMIT", 12*1024*1024),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "cv_screener"),
		},
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", "localhost:6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvAsInt("REDIS_DB", 0),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "cv-screener:evaluation:"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6334"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "cv_texts"),
		},
		Gemini: GeminiConfig{
			APIKey:     getEnv("GEMINI_API_KEY", ""),
			Model:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			EmbedModel: getEnv("GEMINI_EMBED_MODEL", "text-embedding-004"),
		},
		OpenAI: OpenAIConfig{
			APIKey: getEnv("OPENAI_API_KEY", ""),
		},
		Storage: StorageConfig{
			Backend:     getEnv("STORAGE_BACKEND", "local"),
			UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
			S3Bucket:    getEnv("AWS_BUCKET", ""),
			S3Region:    getEnv("AWS_REGION", "us-east-1"),
			S3Prefix:    getEnv("AWS_PREFIX", "uploads"),
		},
		Worker: WorkerConfig{
			Concurrency:      getEnvAsInt("WORKER_CONCURRENCY", 3),
			QueueSize:        getEnvAsInt("WORKER_QUEUE_SIZE", 100),
			RetryMaxAttempts: getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
		},
		Evaluation: EvaluationConfig{
			StoreBackend:      getEnv("EVALUATION_STORE", "memory"),
			VectorBackend:     getEnv("VECTOR_BACKEND", "qdrant"),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			VectorSize:        uint64(getEnvAsInt("VECTOR_SIZE", 768)),
			EmbedChunkSize:    getEnvAsInt("EMBED_CHUNK_SIZE", 8000),
			EmbedChunkOverlap: getEnvAsInt("EMBED_CHUNK_OVERLAP", 200),
			Delay:             getEnvAsDuration("EVALUATION_DELAY", "3s"),
			TTL:               getEnvAsDuration("EVALUATION_TTL", "0s"),
			LLMExtraction:     getEnvAsBool("LLM_EXTRACTION", false),
		},
		Security: SecurityConfig{
			CORSOrigins:     getEnvAsList("CORS_ORIGINS"),
			RateLimit:       getEnvAsInt("RATE_LIMIT", 30),
			RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", "1m"),
			MaxQueryLen:     getEnvAsInt("MAX_QUERY_LEN", 120),
			MaxResults:      getEnvAsInt("MAX_RESULTS", 1),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// NeedsDatabase reports whether any configured backend lives in Postgres.
func (c *Config) NeedsDatabase() bool {
	return c.Evaluation.StoreBackend == "postgres" || c.Evaluation.VectorBackend == "pgvector"
}

// AllowOrigins renders the CORS origin list in the form the Fiber cors middleware expects.
func (c *Config) AllowOrigins() string {
	if len(c.Security.CORSOrigins) == 0 {
		return "*"
	}
	return strings.Join(c.Security.CORSOrigins, ",")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, ""), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
