package discovery

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DiscoverySession is one completed interview: the intro summary the model
// produced plus the transcript that led to it.
type DiscoverySession struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	IntroSummary        string         `gorm:"type:text;not null" json:"intro_summary"`
	ConversationHistory datatypes.JSON `gorm:"type:jsonb" json:"conversation_history"`

	Solutions []Solution `gorm:"foreignKey:SessionID" json:"solutions,omitempty"`

	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (DiscoverySession) TableName() string { return "discovery_session" }

func (s *DiscoverySession) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
