package dtos

import "encoding/json"

type JobExtractionRequest struct {
	RawHTML string `json:"raw_html" binding:"required"`
	URL     string `json:"url"`
}

type ApplicationCreationRequest struct {
	OwnerID        string `json:"owner_id" binding:"required,uuid"`
	CompanyName    string `json:"company_name" binding:"required"`
	Title          string `json:"role_title" binding:"required"`
	JobLink        string `json:"job_link" binding:"omitempty,url"`
	JobDescription string `json:"job_description" binding:"required"`

	// Optional Fields
	ResumeText    string          `json:"resume_text"`
	Status        string          `json:"status"` // Defaults to "DRAFT" if empty
	InterviewPrep json.RawMessage `json:"interview_prep"`
}

// MigrationRequest is the admin migration body. Both fields are optional.
type MigrationRequest struct {
	DryRun *bool `json:"dryRun"`
	Limit  *int  `json:"limit" binding:"omitempty,min=1"`
}
