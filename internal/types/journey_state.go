package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	PhaseWelcome  = "welcome"
	PhaseActive   = "development_active"
	PhaseAdvanced = "development_advanced"
	PhaseMastery  = "mastery"
)

// JourneyState is the single per-user progress row. It is overwritten in
// place by progress recalculation and assessment completion; last write wins.
type JourneyState struct {
	ID                        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID                    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User                      *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	CurrentPhase              string         `gorm:"column:current_phase;not null;default:'welcome'" json:"current_phase"`
	JourneyProgress           int            `gorm:"column:journey_progress;not null;default:0" json:"journey_progress"`
	CompletedAssessments      datatypes.JSON `gorm:"type:jsonb;column:completed_assessments" json:"completed_assessments"`
	NextRecommendedAssessment string         `gorm:"column:next_recommended_assessment" json:"next_recommended_assessment"`
	Metadata                  datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata"`
	LastActivityAt            time.Time      `gorm:"column:last_activity_at" json:"last_activity_at"`
	CreatedAt                 time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt                 time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (JourneyState) TableName() string {
	return "user_journey_states"
}
