package services

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/cv-screener/internal/models"
)

// TextGenerator is the slice of an LLM client the extractor needs.
type TextGenerator interface {
	GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error)
}

// CVExtractor turns stored CV text into a structured CV record.
type CVExtractor interface {
	Extract(ctx context.Context, vectorID, text string) *models.CV
}

type cvSection int

const (
	sectionNone cvSection = iota
	sectionSkills
	sectionExperience
	sectionEducation
	sectionCertifications
	sectionLanguages
	sectionProjects
	sectionAchievements
	sectionCulture
)

var sectionHeaders = map[string]cvSection{
	"skills":                    sectionSkills,
	"technical skills":          sectionSkills,
	"core skills":               sectionSkills,
	"tech stack":                sectionSkills,
	"technologies":              sectionSkills,
	"experience":                sectionExperience,
	"work experience":           sectionExperience,
	"professional experience":   sectionExperience,
	"employment":                sectionExperience,
	"employment history":        sectionExperience,
	"work history":              sectionExperience,
	"education":                 sectionEducation,
	"certifications":            sectionCertifications,
	"certificates":              sectionCertifications,
	"licenses & certifications": sectionCertifications,
	"languages":                 sectionLanguages,
	"projects":                  sectionProjects,
	"personal projects":         sectionProjects,
	"key projects":              sectionProjects,
	"achievements":              sectionAchievements,
	"accomplishments":           sectionAchievements,
	"awards":                    sectionAchievements,
	"culture fit":               sectionCulture,
	"summary":                   sectionCulture,
	"professional summary":      sectionCulture,
	"about":                     sectionCulture,
	"about me":                  sectionCulture,
	"profile":                   sectionCulture,
	"soft skills":               sectionCulture,
}

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\s().\-]{7,}\d`)
	yearsPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*\+?\s*(?:years?|yrs?)\b`)
)

// maxPlausibleYears filters out matches such as "100 years of history".
const maxPlausibleYears = 60

type cvExtractor struct {
	llm        TextGenerator
	prompts    *PromptBuilder
	maxRetries int
	log        *zap.Logger
}

// NewCVExtractor builds an extractor. llm may be nil, in which case only the
// JSON passthrough and the heuristic section parser are used.
func NewCVExtractor(llm TextGenerator, maxRetries int, log *zap.Logger) CVExtractor {
	return &cvExtractor{
		llm:        llm,
		prompts:    NewPromptBuilder(),
		maxRetries: maxRetries,
		log:        log.Named("cv-extractor"),
	}
}

// Extract implements CVExtractor.
func (e *cvExtractor) Extract(ctx context.Context, vectorID, text string) *models.CV {
	if cv, ok := decodeCVJSON(text); ok {
		return finishCV(cv, vectorID, text)
	}

	if e.llm != nil {
		cv, err := e.extractWithLLM(ctx, text)
		if err == nil {
			return finishCV(cv, vectorID, text)
		}
		e.log.Warn("⚠️ llm extraction failed, falling back to heuristics",
			zap.String("vectorId", vectorID), zap.Error(err))
	}

	return finishCV(ParseCVText(text), vectorID, text)
}

func (e *cvExtractor) extractWithLLM(ctx context.Context, text string) (*models.CV, error) {
	response, err := e.llm.GenerateTextWithRetry(ctx, e.prompts.BuildCVExtractionPrompt(text), 0.1, e.maxRetries)
	if err != nil {
		return nil, err
	}

	var cv models.CV
	if err := json.Unmarshal([]byte(extractJSON(response)), &cv); err != nil {
		return nil, err
	}
	return &cv, nil
}

// decodeCVJSON accepts stored text that already is a CV JSON object.
func decodeCVJSON(text string) (*models.CV, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}

	var cv models.CV
	if err := json.Unmarshal([]byte(trimmed), &cv); err != nil {
		return nil, false
	}
	return &cv, true
}

func finishCV(cv *models.CV, vectorID, text string) *models.CV {
	if cv.ID == "" {
		cv.ID = vectorID
	}
	if cv.Text == "" {
		cv.Text = text
	}
	return cv
}

// ParseCVText reads section headers ("Skills:", "EXPERIENCE", ...) and a few
// contact patterns out of plain CV text.
func ParseCVText(text string) *models.CV {
	cv := &models.CV{Text: text}

	section := sectionNone
	var culture []string
	seenSkills := make(map[string]struct{})

	addSkill := func(s string) {
		key := strings.ToLower(s)
		if _, dup := seenSkills[key]; dup {
			return
		}
		seenSkills[key] = struct{}{}
		cv.Skills = append(cv.Skills, s)
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if next, inline, ok := parseHeader(line); ok {
			section = next
			line = inline
			if line == "" {
				continue
			}
		} else if section == sectionNone {
			if cv.Name == "" && looksLikeName(line) {
				cv.Name = line
			}
			continue
		}

		switch section {
		case sectionSkills:
			for _, item := range splitList(line) {
				addSkill(item)
			}
		case sectionLanguages:
			cv.Languages = append(cv.Languages, splitList(line)...)
		case sectionExperience:
			cv.Experience = append(cv.Experience, stripBullet(line))
		case sectionEducation:
			cv.Education = append(cv.Education, stripBullet(line))
		case sectionCertifications:
			cv.Certifications = append(cv.Certifications, stripBullet(line))
		case sectionProjects:
			cv.Projects = append(cv.Projects, stripBullet(line))
		case sectionAchievements:
			cv.Achievements = append(cv.Achievements, stripBullet(line))
		case sectionCulture:
			culture = append(culture, stripBullet(line))
		}
	}

	cv.CultureFit = strings.Join(culture, " ")
	cv.Email = emailPattern.FindString(text)
	if phone := phonePattern.FindString(text); phone != "" {
		cv.Phone = strings.TrimSpace(phone)
	}
	cv.YearsOfExperience = models.YearsOfExperience(detectYears(text))

	return cv
}

// parseHeader recognises "Header", "Header:" and "Header: inline content".
func parseHeader(line string) (cvSection, string, bool) {
	line = strings.TrimLeft(line, "#*•- \t")

	head, rest, hasColon := strings.Cut(line, ":")
	key := strings.ToLower(strings.TrimSpace(strings.Trim(head, "*_ ")))

	section, ok := sectionHeaders[key]
	if !ok {
		return sectionNone, "", false
	}
	if !hasColon {
		rest = ""
	}
	return section, strings.TrimSpace(rest), true
}

func splitList(line string) []string {
	line = stripBullet(line)
	parts := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ';' || r == '|' || r == '•'
	})

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func stripBullet(line string) string {
	return strings.TrimSpace(strings.TrimLeft(line, "-*•–· \t"))
}

func looksLikeName(line string) bool {
	if len(line) > 60 || strings.ContainsAny(line, ":@/0123456789") {
		return false
	}
	return len(strings.Fields(line)) <= 5
}

func detectYears(text string) float64 {
	best := 0.0
	for _, m := range yearsPattern.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil || v > maxPlausibleYears {
			continue
		}
		if v > best {
			best = v
		}
	}
	return best
}
