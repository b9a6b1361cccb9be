package discovery

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DocumentKindPRD         = "prd"
	DocumentKindLandingPage = "landing_page"
)

// GeneratedDocument is a long-form markdown artifact (PRD or landing-page
// copy) produced for a selected solution.
type GeneratedDocument struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID  uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	SolutionID uuid.UUID `gorm:"type:uuid;not null;index" json:"solution_id"`

	Kind    string `gorm:"type:text;not null" json:"kind"`
	Content string `gorm:"type:text;not null" json:"content"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (GeneratedDocument) TableName() string { return "generated_document" }

func (d *GeneratedDocument) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
