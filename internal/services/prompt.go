package services

import (
	"fmt"
	"strings"
)

// maxPromptCVChars bounds the CV text placed into a single prompt.
const maxPromptCVChars = 30000

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildCVExtractionPrompt asks the model to turn raw CV text into the CV JSON record.
func (pb *PromptBuilder) BuildCVExtractionPrompt(cvText string) string {
	if len(cvText) > maxPromptCVChars {
		cvText = cvText[:maxPromptCVChars]
	}

	return fmt.Sprintf(`You are an expert HR assistant extracting structured data from a candidate's CV.

CANDIDATE CV:
%s

Extract the following fields and return ONLY a JSON object in this exact shape:
{
  "name": "<full name or empty string>",
  "email": "<email or empty string>",
  "phone": "<phone or empty string>",
  "skills": ["<one technical skill per entry, e.g. Go, PostgreSQL, Kubernetes>"],
  "experience": ["<one entry per role: title, company, period>"],
  "education": ["<one entry per degree>"],
  "certifications": ["<certification name>"],
  "languages": ["<spoken language>"],
  "projects": ["<project title>"],
  "achievements": ["<one measurable achievement per entry>"],
  "cultureFit": "<short narrative of soft skills: teamwork, leadership, communication, learning>",
  "yearsOfExperience": <total years of professional experience as a number>
}

Rules:
- Use only information present in the CV. Never invent data.
- Use empty arrays or empty strings when a field is missing.
- Keep skill names short and canonical (no sentences).`, strings.TrimSpace(cvText))
}

// extractJSON pulls the JSON object or array out of a model response that
// may be wrapped in markdown fences or prose.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	endObj := strings.LastIndex(text, "}")
	if startObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	}

	startArr := strings.Index(text, "[")
	endArr := strings.LastIndex(text, "]")
	if startArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return strings.TrimSpace(text)
}
