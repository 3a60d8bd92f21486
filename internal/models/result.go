package models

type UploadResponse struct {
	Message  string `json:"message"`
	VectorID string `json:"vectorId"`
}

type EvaluateRequest struct {
	VectorID       string          `json:"vectorId" validate:"required"`
	JobDescription *JobDescription `json:"jobDescription" validate:"required"`
}

type EvaluateResponse struct {
	EvaluationID string           `json:"evaluationId"`
	Status       EvaluationStatus `json:"status"`
}

type SearchRequest struct {
	Query string `json:"query" validate:"required"`
}

type SearchMatch struct {
	VectorID string  `json:"vectorId"`
	Score    float32 `json:"score"`
	Snippet  string  `json:"snippet"`
	Filename string  `json:"filename,omitempty"`
}

type SearchResponse struct {
	Query   string        `json:"query"`
	Matches []SearchMatch `json:"matches"`
}
