package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/cv-screener/internal/models"
)

func TestScoreTechnicalSkills(t *testing.T) {
	job := &models.JobDescription{Requirements: []string{"Go", "Rust", "Kubernetes", "Postgres", "Redis"}}

	tests := []struct {
		name   string
		skills []string
		want   int
	}{
		{"no skills", nil, 1},
		{"one match", []string{"go"}, 2},
		{"two matches", []string{"GO", "rust", "java"}, 3},
		{"three matches", []string{"go", "rust", "kubernetes"}, 4},
		{"four matches", []string{"go", "rust", "kubernetes", "postgres"}, 4},
		{"all matches", []string{"Redis", "Postgres", "Kubernetes", "Rust", "Go"}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreTechnicalSkills(&models.CV{Skills: tt.skills}, job))
		})
	}
}

func TestScoreTechnicalSkills_EmptyRequirements(t *testing.T) {
	cv := &models.CV{Skills: []string{"Go"}}
	assert.Equal(t, 1, ScoreTechnicalSkills(cv, &models.JobDescription{}))
}

func TestScoreTechnicalSkills_Monotonic(t *testing.T) {
	reqs := []string{"a", "b", "c", "d", "e", "f"}
	job := &models.JobDescription{Requirements: reqs}

	prev := 0
	for n := 0; n <= len(reqs); n++ {
		score := ScoreTechnicalSkills(&models.CV{Skills: reqs[:n]}, job)
		assert.GreaterOrEqual(t, score, prev)
		assert.GreaterOrEqual(t, score, 1)
		assert.LessOrEqual(t, score, 5)
		prev = score
	}
}

func TestScoreExperience(t *testing.T) {
	tests := []struct {
		years float64
		want  int
	}{
		{0, 1},
		{0.99, 1},
		{1, 2},
		{2, 3},
		{3, 4},
		{4.9, 4},
		{5, 5},
		{12, 5},
		{-3, 1},
		{math.NaN(), 1},
	}

	for _, tt := range tests {
		cv := &models.CV{YearsOfExperience: models.YearsOfExperience(tt.years)}
		assert.Equal(t, tt.want, ScoreExperience(cv), "years=%v", tt.years)
	}
}

func TestScoreAchievements(t *testing.T) {
	for count, want := range map[int]int{0: 1, 1: 2, 2: 3, 3: 4, 5: 5, 9: 5} {
		cv := &models.CV{Achievements: make([]string, count)}
		assert.Equal(t, want, ScoreAchievements(cv), "count=%d", count)
	}
}

func TestScoreCultureFit(t *testing.T) {
	tests := map[string]int{
		"Strong teamwork and leadership": 5,
		"LEADERSHIP of small squads":      4,
		"values teamwork":                 4,
		"communication focused":           3,
		"continuous learning":             2,
		"":                                1,
		"enjoys hiking":                   1,
	}

	for text, want := range tests {
		assert.Equal(t, want, ScoreCultureFit(&models.CV{CultureFit: text}), text)
	}
}

func TestMatchRate(t *testing.T) {
	assert.InDelta(t, 1.0, WeightTechnicalSkills+WeightExperience+WeightAchievements+WeightCultureFit, 1e-12)
	assert.Equal(t, 5.00, MatchRate(SubScores{5, 5, 5, 5}))
	assert.Equal(t, 1.00, MatchRate(SubScores{1, 1, 1, 1}))
	// 3*0.40 + 2*0.25 + 4*0.20 + 1*0.15
	assert.Equal(t, 2.65, MatchRate(SubScores{3, 2, 4, 1}))
}

func TestGenerateCVFeedback(t *testing.T) {
	high := GenerateCVFeedback(SubScores{5, 4, 4, 5})
	assert.Equal(t, "Strong match on the required technical skills, backed by solid professional experience and a track record of measurable achievements. Shows strong teamwork and leadership signals.", high)

	mid := GenerateCVFeedback(SubScores{3, 3, 3, 3})
	assert.Contains(t, mid, "Partial match on the required technical skills")
	assert.Contains(t, mid, ", with a moderate level of experience")
	assert.Contains(t, mid, " and some notable achievements.")
	assert.Contains(t, mid, " Shows good communication signals.")

	low := GenerateCVFeedback(SubScores{1, 2, 1, 2})
	assert.Equal(t, "Limited match on the required technical skills, though professional experience is limited and few documented achievements. Culture fit signals are limited.", low)
}

func TestGenerateProjectFeedback(t *testing.T) {
	cv := &models.CV{Projects: []string{"Payments API", " Search indexer "}}
	assert.Equal(t, "Projects reviewed: Payments API, Search indexer.", GenerateProjectFeedback(cv))
	assert.Equal(t, ProjectScorePresent, ProjectScore(cv))

	empty := &models.CV{}
	assert.Equal(t, NoProjectsFeedback, GenerateProjectFeedback(empty))
	assert.Zero(t, ProjectScore(empty))
}

func TestScorer_Score(t *testing.T) {
	cv := &models.CV{
		Skills:            []string{"Go", "Rust", "Kubernetes"},
		YearsOfExperience: 6,
		Achievements:      []string{"a", "b", "c", "d"},
		CultureFit:        "teamwork and leadership",
	}
	job := &models.JobDescription{Title: "Backend", Requirements: []string{"go", "rust", "kubernetes"}}

	result := NewScorer().Score("eval-1", cv, job)

	require.NotNil(t, result)
	assert.Equal(t, "eval-1", result.EvaluationID)
	assert.Equal(t, 5.00, result.MatchRate)
	assert.Equal(t, models.StatusCompleted, result.Status)
	assert.Equal(t, OverallSummary, result.OverallSummary)
	assert.Equal(t, NoProjectsFeedback, result.ProjectFeedback)
}

func TestScorer_ScoreNilInputs(t *testing.T) {
	result := NewScorer().Score("eval-2", nil, nil)

	require.NotNil(t, result)
	assert.Equal(t, 1.00, result.MatchRate)
	assert.Zero(t, result.ProjectScore)
}
