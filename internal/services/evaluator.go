package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"alfredoptarigan/cv-screener/internal/models"
	"alfredoptarigan/cv-screener/internal/repositories"
)

// ErrCVFetch wraps vector store failures while resolving CV text.
var ErrCVFetch = errors.New("failed to fetch cv text")

type EvaluatorService interface {
	// Submit marks the evaluation as processing, resolves the CV text and
	// queues scoring. It returns once the task is queued.
	Submit(ctx context.Context, vectorID string, job *models.JobDescription) (*models.EvaluateResponse, error)
	Result(ctx context.Context, evaluationID string) (*models.Evaluation, error)
}

type evaluatorService struct {
	store       repositories.EvaluationStore
	vectorStore VectorStore
	extractor   CVExtractor
	scorer      Scorer
	worker      Worker
	log         *zap.Logger

	// mu orders store writes against generation checks, so a stale task can
	// never overwrite a newer submission for the same id.
	mu          sync.Mutex
	generation  uint64
	generations map[string]uint64
}

func NewEvaluatorService(
	store repositories.EvaluationStore,
	vectorStore VectorStore,
	extractor CVExtractor,
	scorer Scorer,
	worker Worker,
	log *zap.Logger,
) EvaluatorService {
	return &evaluatorService{
		store:       store,
		vectorStore: vectorStore,
		extractor:   extractor,
		scorer:      scorer,
		worker:      worker,
		log:         log.Named("evaluator"),
		generations: make(map[string]uint64),
	}
}

// Submit implements EvaluatorService.
func (e *evaluatorService) Submit(ctx context.Context, vectorID string, job *models.JobDescription) (*models.EvaluateResponse, error) {
	ref, err := e.begin(ctx, vectorID)
	if err != nil {
		return nil, err
	}

	text, err := e.vectorStore.FetchText(ctx, vectorID)
	if err != nil {
		// A failed lookup still ends the evaluation as completed, with no result.
		e.commit(ctx, ref, &models.Evaluation{EvaluationID: vectorID, Status: models.StatusCompleted})

		if errors.Is(err, ErrCVTextNotFound) {
			e.log.Info("🔍 cv text not found", zap.String("vectorId", vectorID))
			return nil, err
		}
		e.log.Error("❌ failed to fetch cv text", zap.String("vectorId", vectorID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrCVFetch, err)
	}

	task := Task{
		ID: vectorID,
		Run: func(taskCtx context.Context) {
			e.score(taskCtx, ref, vectorID, text, job)
		},
	}
	if err := e.worker.Enqueue(task); err != nil {
		e.commit(ctx, ref, &models.Evaluation{EvaluationID: vectorID, Status: models.StatusFailed})
		e.log.Warn("⚠️ could not queue evaluation", zap.String("vectorId", vectorID), zap.Error(err))
		return nil, err
	}

	e.log.Info("📥 evaluation queued", zap.String("evaluationId", vectorID))
	return &models.EvaluateResponse{EvaluationID: vectorID, Status: models.StatusProcessing}, nil
}

// Result implements EvaluatorService.
func (e *evaluatorService) Result(ctx context.Context, evaluationID string) (*models.Evaluation, error) {
	return e.store.Get(ctx, evaluationID)
}

type generationRef struct {
	id  string
	gen uint64
}

// begin records a new submission for id and writes the processing record.
func (e *evaluatorService) begin(ctx context.Context, id string) (generationRef, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev, hadPrev := e.generations[id]
	e.generation++
	ref := generationRef{id: id, gen: e.generation}
	e.generations[id] = ref.gen

	if err := e.store.Set(ctx, &models.Evaluation{EvaluationID: id, Status: models.StatusProcessing}); err != nil {
		if hadPrev {
			e.generations[id] = prev
		} else {
			delete(e.generations, id)
		}
		return ref, fmt.Errorf("failed to mark evaluation processing: %w", err)
	}
	return ref, nil
}

// commit writes the final record if ref is still the latest submission for
// its id and reports whether it did.
func (e *evaluatorService) commit(ctx context.Context, ref generationRef, eval *models.Evaluation) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.generations[ref.id] != ref.gen {
		e.log.Debug("discarding stale evaluation", zap.String("evaluationId", ref.id), zap.Uint64("generation", ref.gen))
		return false
	}

	if err := e.store.Set(ctx, eval); err != nil {
		e.log.Error("❌ failed to save evaluation", zap.String("evaluationId", ref.id), zap.Error(err))
		return false
	}

	delete(e.generations, ref.id)
	return true
}

func (e *evaluatorService) score(ctx context.Context, ref generationRef, vectorID, text string, job *models.JobDescription) {
	cv := e.extractor.Extract(ctx, vectorID, text)
	result := e.scorer.Score(vectorID, cv, job)

	if e.commit(ctx, ref, &models.Evaluation{
		EvaluationID: vectorID,
		Status:       models.StatusCompleted,
		Result:       result,
	}) {
		e.log.Info("✅ evaluation completed",
			zap.String("evaluationId", vectorID),
			zap.Float64("matchRate", result.MatchRate),
		)
	}
}
