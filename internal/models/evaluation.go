package models

import (
	"time"
)

type EvaluationStatus string

const (
	StatusPending    EvaluationStatus = "pending"
	StatusProcessing EvaluationStatus = "processing"
	StatusCompleted  EvaluationStatus = "completed"
	StatusFailed     EvaluationStatus = "failed"
)

// InFlight reports whether the evaluation has not produced its final snapshot yet.
func (s EvaluationStatus) InFlight() bool {
	return s == StatusPending || s == StatusProcessing
}

type EvaluationResult struct {
	EvaluationID    string           `json:"evaluationId"`
	MatchRate       float64          `json:"matchRate"`
	CVFeedback      string           `json:"cv_feedback"`
	ProjectScore    float64          `json:"project_score"`
	ProjectFeedback string           `json:"project_feedback"`
	OverallSummary  string           `json:"overall_summary"`
	Status          EvaluationStatus `json:"status"`
}

// Evaluation is the record held by the evaluation store. Result stays nil
// until scoring finishes, and also when the CV text lookup failed.
type Evaluation struct {
	EvaluationID string            `gorm:"column:id;type:text;primaryKey" json:"evaluationId"`
	Status       EvaluationStatus  `gorm:"type:text;not null;default:'processing'" json:"status"`
	Result       *EvaluationResult `gorm:"type:jsonb;serializer:json" json:"result,omitempty"`
	CreatedAt    time.Time         `json:"-"`
	UpdatedAt    time.Time         `json:"-"`
}

func (Evaluation) TableName() string {
	return "evaluations"
}
