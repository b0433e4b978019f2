package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Company struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name string `gorm:"uniqueIndex;not null" json:"company_name"`

	// 'omitempty' prevents infinite loops when fetching Application -> Company -> Applications -> ...
	Applications []Application `json:"applications,omitempty"`
}

// Application is one job the user is applying to, along with the material
// generated for it.
type Application struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	OwnerID uuid.UUID `gorm:"type:uuid;index;not null" json:"owner_id"`

	CompanyID uint    `json:"company_id"`
	Company   Company `json:"company"`

	Title          string `gorm:"not null" json:"title"`
	JobDescription string `gorm:"type:text" json:"job_description"`
	JobLink        string `json:"job_link"`
	Status         string `gorm:"default:'DRAFT'" json:"status"`
	ResumeText     string `gorm:"type:text" json:"resume_text,omitempty"`
	CoverLetter    string `gorm:"type:text" json:"cover_letter,omitempty"`

	// Either shape: see package prep. NULL until generated.
	InterviewPrep datatypes.JSON `json:"interview_prep,omitempty"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// UserRole grants a named role to a user of the identity provider.
type UserRole struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_role" json:"user_id"`
	Role      string    `gorm:"not null;uniqueIndex:idx_user_role" json:"role"`
}
