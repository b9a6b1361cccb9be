package discovery

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TagTypeProblem  = "problem"
	TagTypeSolution = "solution"
)

// Tag is upserted by (name, type); sessions and solutions link to it through
// the join rows below.
type Tag struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name    string    `gorm:"type:text;not null;uniqueIndex:idx_tag_name_type" json:"name"`
	TagType string    `gorm:"type:text;not null;uniqueIndex:idx_tag_name_type" json:"tag_type"`

	CreatedAt time.Time `json:"created_at"`
}

func (Tag) TableName() string { return "tag" }

func (t *Tag) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type SessionTag struct {
	SessionID uuid.UUID `gorm:"type:uuid;primaryKey" json:"session_id"`
	TagID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"tag_id"`
}

func (SessionTag) TableName() string { return "session_tag" }

type SolutionTag struct {
	SolutionID uuid.UUID `gorm:"type:uuid;primaryKey" json:"solution_id"`
	TagID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"tag_id"`
}

func (SolutionTag) TableName() string { return "solution_tag" }
