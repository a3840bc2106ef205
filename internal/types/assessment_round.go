package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AssessmentRound is an immutable completed submission. Append-only per
// (user, kind); once AIAnalysis is attached the row never changes again.
type AssessmentRound struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User       *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	PillarType string         `gorm:"column:pillar_type;not null;index" json:"pillar_type"`
	Answers    datatypes.JSON `gorm:"type:jsonb;column:answers;not null" json:"answers"`
	Scores     datatypes.JSON `gorm:"type:jsonb;column:scores" json:"scores"`
	AIAnalysis *string        `gorm:"column:ai_analysis" json:"ai_analysis,omitempty"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (AssessmentRound) TableName() string {
	return "assessment_rounds"
}
