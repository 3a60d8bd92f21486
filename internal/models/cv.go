package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// CV is the canonical representation of a parsed résumé. Text is always
// populated; the structured fields may be empty when only raw text exists.
type CV struct {
	ID                string            `json:"id"`
	Name              string            `json:"name,omitempty"`
	Email             string            `json:"email,omitempty"`
	Phone             string            `json:"phone,omitempty"`
	Skills            []string          `json:"skills"`
	Experience        []string          `json:"experience"`
	Education         []string          `json:"education"`
	Certifications    []string          `json:"certifications,omitempty"`
	Languages         []string          `json:"languages,omitempty"`
	Projects          []string          `json:"projects,omitempty"`
	Achievements      []string          `json:"achievements,omitempty"`
	CultureFit        string            `json:"cultureFit,omitempty"`
	YearsOfExperience YearsOfExperience `json:"yearsOfExperience,omitempty"`
	Text              string            `json:"text"`
}

// YearsOfExperience decodes from a JSON number or a numeric string. Anything
// else (null, booleans, free text) decodes as zero.
type YearsOfExperience float64

func (y *YearsOfExperience) UnmarshalJSON(data []byte) error {
	*y = 0

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*y = YearsOfExperience(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*y = YearsOfExperience(v)
		}
	}

	return nil
}

// Value returns the years as a float, clamping negative and NaN values to 0.
func (y YearsOfExperience) Value() float64 {
	v := float64(y)
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
