package models

// JobDescription describes a job posting. Only Requirements feeds the
// scoring rubric; the other fields are informational.
type JobDescription struct {
	Title                   string   `json:"title"`
	Company                 string   `json:"company,omitempty"`
	Location                string   `json:"location,omitempty"`
	Responsibilities        []string `json:"responsibilities,omitempty"`
	Requirements            []string `json:"requirements"`
	PreferredQualifications []string `json:"preferredQualifications,omitempty"`
	Benefits                []string `json:"benefits,omitempty"`
	Description             string   `json:"description,omitempty"`
}
