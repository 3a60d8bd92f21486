package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/cv-screener/internal/models"
)

type fakeGenerator struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeGenerator) GenerateTextWithRetry(_ context.Context, prompt string, _ float32, _ int) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

const sampleCV = `Jane Doe
jane.doe@example.com | +62 812 3456 7890

Summary
Backend engineer with 6 years of experience. Values teamwork and leadership.

Skills: Go, Rust; PostgreSQL | go

EXPERIENCE
- Senior Engineer, Acme (2020-2024)
- Engineer, Initech (2018-2020)

Education:
- BSc Computer Science

Projects
- Payments API
- Search indexer

Achievements
- Cut p99 latency by 40%
- Led migration to Kubernetes
`

func TestParseCVText(t *testing.T) {
	cv := ParseCVText(sampleCV)

	assert.Equal(t, "Jane Doe", cv.Name)
	assert.Equal(t, "jane.doe@example.com", cv.Email)
	assert.Equal(t, "+62 812 3456 7890", cv.Phone)
	assert.Equal(t, []string{"Go", "Rust", "PostgreSQL"}, cv.Skills)
	assert.Equal(t, []string{"Senior Engineer, Acme (2020-2024)", "Engineer, Initech (2018-2020)"}, cv.Experience)
	assert.Equal(t, []string{"BSc Computer Science"}, cv.Education)
	assert.Equal(t, []string{"Payments API", "Search indexer"}, cv.Projects)
	assert.Len(t, cv.Achievements, 2)
	assert.Contains(t, cv.CultureFit, "teamwork and leadership")
	assert.Equal(t, 6.0, cv.YearsOfExperience.Value())
	assert.Equal(t, sampleCV, cv.Text)
}

func TestParseCVText_InlineSkillsScoresThree(t *testing.T) {
	cv := ParseCVText("Skills: Go, Rust")
	job := &models.JobDescription{Title: "Backend", Requirements: []string{"Go", "Rust", "Kubernetes"}}

	assert.Equal(t, []string{"Go", "Rust"}, cv.Skills)
	assert.Equal(t, 3, ScoreTechnicalSkills(cv, job))
}

func TestParseCVText_NoSections(t *testing.T) {
	cv := ParseCVText("just some words about a person")

	assert.Empty(t, cv.Skills)
	assert.Empty(t, cv.CultureFit)
	assert.Zero(t, cv.YearsOfExperience.Value())
}

func TestDetectYears_IgnoresImplausible(t *testing.T) {
	assert.Equal(t, 3.5, detectYears("3.5 yrs in fintech, company has 120 years of history"))
}

func TestExtract_JSONPassthrough(t *testing.T) {
	text := `{"name":"Ann","skills":["Go"],"yearsOfExperience":"4","achievements":["a"]}`
	gen := &fakeGenerator{}

	cv := NewCVExtractor(gen, 2, zap.NewNop()).Extract(context.Background(), "vec-1", text)

	assert.Equal(t, "vec-1", cv.ID)
	assert.Equal(t, "Ann", cv.Name)
	assert.Equal(t, []string{"Go"}, cv.Skills)
	assert.Equal(t, 4.0, cv.YearsOfExperience.Value())
	assert.Equal(t, text, cv.Text)
	assert.Empty(t, gen.prompts)
}

func TestExtract_LLM(t *testing.T) {
	gen := &fakeGenerator{response: "```json\n{\"skills\":[\"Kubernetes\"],\"cultureFit\":\"communication\"}\n```"}

	cv := NewCVExtractor(gen, 2, zap.NewNop()).Extract(context.Background(), "vec-2", "Skills: Go")

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Skills: Go")
	assert.Equal(t, []string{"Kubernetes"}, cv.Skills)
	assert.Equal(t, "communication", cv.CultureFit)
	assert.Equal(t, "vec-2", cv.ID)
}

func TestExtract_LLMFailureFallsBack(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("rate limited")}

	cv := NewCVExtractor(gen, 2, zap.NewNop()).Extract(context.Background(), "vec-3", "Skills: Go, Rust")

	assert.Equal(t, []string{"Go", "Rust"}, cv.Skills)
}

func TestExtract_NoLLM(t *testing.T) {
	cv := NewCVExtractor(nil, 0, zap.NewNop()).Extract(context.Background(), "vec-4", "Achievements: shipped v1")

	assert.Equal(t, []string{"shipped v1"}, cv.Achievements)
	assert.Equal(t, "vec-4", cv.ID)
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSON("Here you go:\n```json\n{\"a\":1}\n```"))
	assert.Equal(t, `[1,2]`, extractJSON("result [1,2] done"))
	assert.Equal(t, "plain", extractJSON(" plain "))
}
