package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/cv-screener/internal/models"
)

var ErrEvaluationNotFound = errors.New("evaluation not found")

// EvaluationStore maps an evaluation id to its latest record. Set replaces
// the whole record.
type EvaluationStore interface {
	Get(ctx context.Context, id string) (*models.Evaluation, error)
	Set(ctx context.Context, eval *models.Evaluation) error
	Has(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]models.Evaluation, error)
}

type evaluationRepository struct {
	db *gorm.DB
}

// NewEvaluationRepository returns a Postgres-backed EvaluationStore.
func NewEvaluationRepository(db *gorm.DB) EvaluationStore {
	return &evaluationRepository{db: db}
}

// Get implements EvaluationStore.
func (r *evaluationRepository) Get(ctx context.Context, id string) (*models.Evaluation, error) {
	var eval models.Evaluation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&eval).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEvaluationNotFound
		}
		return nil, fmt.Errorf("failed to find evaluation: %w", err)
	}
	return &eval, nil
}

// Set implements EvaluationStore.
func (r *evaluationRepository) Set(ctx context.Context, eval *models.Evaluation) error {
	now := time.Now()
	if eval.CreatedAt.IsZero() {
		eval.CreatedAt = now
	}
	eval.UpdatedAt = now

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "result", "updated_at"}),
		}).
		Create(eval).Error
	if err != nil {
		return fmt.Errorf("failed to save evaluation: %w", err)
	}
	return nil
}

// Has implements EvaluationStore.
func (r *evaluationRepository) Has(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Evaluation{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check evaluation: %w", err)
	}
	return count > 0, nil
}

// List implements EvaluationStore.
func (r *evaluationRepository) List(ctx context.Context) ([]models.Evaluation, error) {
	var evals []models.Evaluation
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&evals).Error; err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	return evals, nil
}
