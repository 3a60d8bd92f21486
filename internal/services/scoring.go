package services

import (
	"math"
	"strings"

	"alfredoptarigan/cv-screener/internal/models"
)

// Rubric weights. They must sum to 1.0.
const (
	WeightTechnicalSkills = 0.40
	WeightExperience      = 0.25
	WeightAchievements    = 0.20
	WeightCultureFit      = 0.15
)

const (
	ProjectScorePresent = 7.5
	OverallSummary      = "Good candidate fit, would benefit from deeper RAG knowledge."
	NoProjectsFeedback  = "No project section found in CV."
)

// SubScores holds the four rubric dimensions, each in 1..5.
type SubScores struct {
	TechnicalSkills int
	Experience      int
	Achievements    int
	CultureFit      int
}

type Scorer interface {
	Score(evaluationID string, cv *models.CV, job *models.JobDescription) *models.EvaluationResult
}

type rubricScorer struct{}

func NewScorer() Scorer {
	return &rubricScorer{}
}

// Score implements Scorer.
func (s *rubricScorer) Score(evaluationID string, cv *models.CV, job *models.JobDescription) *models.EvaluationResult {
	if cv == nil {
		cv = &models.CV{}
	}
	if job == nil {
		job = &models.JobDescription{}
	}

	sub := SubScores{
		TechnicalSkills: ScoreTechnicalSkills(cv, job),
		Experience:      ScoreExperience(cv),
		Achievements:    ScoreAchievements(cv),
		CultureFit:      ScoreCultureFit(cv),
	}

	return &models.EvaluationResult{
		EvaluationID:    evaluationID,
		MatchRate:       MatchRate(sub),
		CVFeedback:      GenerateCVFeedback(sub),
		ProjectScore:    ProjectScore(cv),
		ProjectFeedback: GenerateProjectFeedback(cv),
		OverallSummary:  OverallSummary,
		Status:          models.StatusCompleted,
	}
}

// ScoreTechnicalSkills counts the job requirements present in the CV skills,
// compared case-insensitively, and maps the count onto 1..5.
func ScoreTechnicalSkills(cv *models.CV, job *models.JobDescription) int {
	skills := make(map[string]struct{}, len(cv.Skills))
	for _, skill := range cv.Skills {
		skills[strings.ToLower(skill)] = struct{}{}
	}

	matches := 0
	for _, req := range job.Requirements {
		if _, ok := skills[strings.ToLower(req)]; ok {
			matches++
		}
	}

	switch {
	case matches == 0:
		return 1
	case matches == 1:
		return 2
	case matches == 2:
		return 3
	case matches == len(job.Requirements):
		return 5
	default:
		return 4
	}
}

func ScoreExperience(cv *models.CV) int {
	years := cv.YearsOfExperience.Value()

	switch {
	case years < 1:
		return 1
	case years < 2:
		return 2
	case years < 3:
		return 3
	case years < 5:
		return 4
	default:
		return 5
	}
}

func ScoreAchievements(cv *models.CV) int {
	n := len(cv.Achievements)
	if n >= 4 {
		return 5
	}
	return n + 1
}

// ScoreCultureFit applies keyword rules to the culture narrative; the first
// matching rule wins.
func ScoreCultureFit(cv *models.CV) int {
	text := strings.ToLower(cv.CultureFit)
	teamwork := strings.Contains(text, "teamwork")
	leadership := strings.Contains(text, "leadership")

	switch {
	case teamwork && leadership:
		return 5
	case teamwork || leadership:
		return 4
	case strings.Contains(text, "communication"):
		return 3
	case strings.Contains(text, "learning"):
		return 2
	default:
		return 1
	}
}

// MatchRate is the weighted composite on the 1..5 scale, rounded to 2 decimals.
func MatchRate(sub SubScores) float64 {
	rate := float64(sub.TechnicalSkills)*WeightTechnicalSkills +
		float64(sub.Experience)*WeightExperience +
		float64(sub.Achievements)*WeightAchievements +
		float64(sub.CultureFit)*WeightCultureFit

	return math.Round(rate*100) / 100
}

func GenerateCVFeedback(sub SubScores) string {
	var b strings.Builder

	b.WriteString(band(sub.TechnicalSkills,
		"Strong match on the required technical skills",
		"Partial match on the required technical skills",
		"Limited match on the required technical skills"))
	b.WriteString(band(sub.Experience,
		", backed by solid professional experience",
		", with a moderate level of experience",
		", though professional experience is limited"))
	b.WriteString(band(sub.Achievements,
		" and a track record of measurable achievements.",
		" and some notable achievements.",
		" and few documented achievements."))
	b.WriteString(band(sub.CultureFit,
		" Shows strong teamwork and leadership signals.",
		" Shows good communication signals.",
		" Culture fit signals are limited."))

	return b.String()
}

func band(score int, high, mid, low string) string {
	switch {
	case score >= 4:
		return high
	case score == 3:
		return mid
	default:
		return low
	}
}

func ProjectScore(cv *models.CV) float64 {
	if len(cv.Projects) > 0 {
		return ProjectScorePresent
	}
	return 0
}

func GenerateProjectFeedback(cv *models.CV) string {
	if len(cv.Projects) == 0 {
		return NoProjectsFeedback
	}

	titles := make([]string, 0, len(cv.Projects))
	for _, p := range cv.Projects {
		if p = strings.TrimSpace(p); p != "" {
			titles = append(titles, p)
		}
	}

	return "Projects reviewed: " + strings.Join(titles, ", ") + "."
}
