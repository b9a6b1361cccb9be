package discovery

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Solution is one of the three proposals of a session, flattened from the
// model's suggestion fields. Position is 1-based and unique per session.
type Solution struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	Position  int       `gorm:"not null" json:"position"`

	Title   string `gorm:"type:text;not null" json:"title"`
	Summary string `gorm:"type:text" json:"summary"`

	Pain                 string `gorm:"type:text" json:"pain"`
	SolutionDescription  string `gorm:"type:text" json:"solution_description"`
	IdealCustomerProfile string `gorm:"type:text" json:"ideal_customer_profile"`
	BusinessModelPricing string `gorm:"type:text" json:"business_model_pricing"`
	GoToMarketPlan       string `gorm:"type:text" json:"go_to_market_plan"`
	CurrentSolutions     string `gorm:"type:text" json:"current_solutions"`
	TenXOpportunity      string `gorm:"type:text" json:"ten_x_opportunity"`

	FeaturesCore datatypes.JSON `gorm:"type:jsonb" json:"features_core"`
	FeaturesBase datatypes.JSON `gorm:"type:jsonb" json:"features_base"`

	IsSelected bool `gorm:"not null;default:false;index" json:"is_selected"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Solution) TableName() string { return "solution" }

func (s *Solution) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
