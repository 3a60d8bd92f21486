package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"

	"alfredoptarigan/cv-screener/internal/models"
)

type redisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore stores each evaluation as a JSON value under prefix+id. A
// positive ttl is applied as the key expiry on every write.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) EvaluationStore {
	return &redisStore{client: client, prefix: prefix, ttl: ttl}
}

func (r *redisStore) key(id string) string {
	return r.prefix + id
}

// Get implements EvaluationStore.
func (r *redisStore) Get(ctx context.Context, id string) (*models.Evaluation, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrEvaluationNotFound
		}
		return nil, fmt.Errorf("failed to get evaluation: %w", err)
	}

	return decodeEvaluation(data)
}

// Set implements EvaluationStore.
func (r *redisStore) Set(ctx context.Context, eval *models.Evaluation) error {
	now := time.Now()
	record := redisEvaluation{Evaluation: *eval, CreatedAt: eval.CreatedAt, UpdatedAt: now}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
		if prev, err := r.Get(ctx, eval.EvaluationID); err == nil {
			record.CreatedAt = prev.CreatedAt
		}
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode evaluation: %w", err)
	}

	if err := r.client.Set(ctx, r.key(eval.EvaluationID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save evaluation: %w", err)
	}
	return nil
}

// Has implements EvaluationStore.
func (r *redisStore) Has(ctx context.Context, id string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check evaluation: %w", err)
	}
	return n > 0, nil
}

// List implements EvaluationStore.
func (r *redisStore) List(ctx context.Context) ([]models.Evaluation, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan evaluations: %w", err)
	}

	if len(keys) == 0 {
		return nil, nil
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load evaluations: %w", err)
	}

	out := make([]models.Evaluation, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			// expired between SCAN and MGET
			continue
		}
		eval, err := decodeEvaluation([]byte(s))
		if err != nil {
			return nil, err
		}
		out = append(out, *eval)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// redisEvaluation carries the timestamps that models.Evaluation hides from JSON.
type redisEvaluation struct {
	models.Evaluation
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func decodeEvaluation(data []byte) (*models.Evaluation, error) {
	var record redisEvaluation
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode evaluation: %w", err)
	}

	eval := record.Evaluation
	eval.CreatedAt = record.CreatedAt
	eval.UpdatedAt = record.UpdatedAt
	return &eval, nil
}
