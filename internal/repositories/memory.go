package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"alfredoptarigan/cv-screener/internal/models"
)

type memoryStore struct {
	mu      sync.RWMutex
	entries map[string]models.Evaluation
	ttl     time.Duration
	now     func() time.Time

	lastSweep time.Time
}

// NewMemoryStore keeps evaluations in process memory. A positive ttl evicts
// records that have not been written for that long; zero keeps them forever.
func NewMemoryStore(ttl time.Duration) EvaluationStore {
	return &memoryStore{
		entries: make(map[string]models.Evaluation),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get implements EvaluationStore.
func (m *memoryStore) Get(_ context.Context, id string) (*models.Evaluation, error) {
	m.mu.RLock()
	eval, ok := m.entries[id]
	m.mu.RUnlock()

	if !ok || m.expired(eval) {
		return nil, ErrEvaluationNotFound
	}
	return cloneEvaluation(eval), nil
}

// Set implements EvaluationStore.
func (m *memoryStore) Set(_ context.Context, eval *models.Evaluation) error {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *cloneEvaluation(*eval)
	if prev, ok := m.entries[eval.EvaluationID]; ok && stored.CreatedAt.IsZero() {
		stored.CreatedAt = prev.CreatedAt
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	m.entries[eval.EvaluationID] = stored

	m.evictLocked()
	return nil
}

// Has implements EvaluationStore.
func (m *memoryStore) Has(_ context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	eval, ok := m.entries[id]
	return ok && !m.expired(eval), nil
}

// List implements EvaluationStore.
func (m *memoryStore) List(_ context.Context) ([]models.Evaluation, error) {
	m.mu.RLock()
	out := make([]models.Evaluation, 0, len(m.entries))
	for _, eval := range m.entries {
		if !m.expired(eval) {
			out = append(out, *cloneEvaluation(eval))
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].EvaluationID < out[j].EvaluationID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memoryStore) expired(eval models.Evaluation) bool {
	return m.ttl > 0 && m.now().Sub(eval.UpdatedAt) > m.ttl
}

// evictLocked drops expired entries. It runs on writes, at most once per
// ttl, so the map cannot grow without bound when a ttl is set.
func (m *memoryStore) evictLocked() {
	if m.ttl <= 0 || m.now().Sub(m.lastSweep) < m.ttl {
		return
	}
	m.lastSweep = m.now()
	for id, eval := range m.entries {
		if m.expired(eval) {
			delete(m.entries, id)
		}
	}
}

func cloneEvaluation(eval models.Evaluation) *models.Evaluation {
	if eval.Result != nil {
		result := *eval.Result
		eval.Result = &result
	}
	return &eval
}
