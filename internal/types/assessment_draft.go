package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AssessmentDraft is an unfinished, resumable response set. One row per
// (user, kind); deleted when a completed round is written, retained when
// stale so it can be inspected until explicitly cleared.
type AssessmentDraft struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index:idx_user_assessment,unique" json:"user_id"`
	User        *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Kind        string         `gorm:"column:assessment_key;not null;index:idx_user_assessment,unique" json:"assessment_key"`
	FormData    datatypes.JSON `gorm:"type:jsonb;column:form_data" json:"form_data"`
	LastSavedAt time.Time      `gorm:"column:last_saved_at;not null" json:"last_saved_at"`
	CompletedAt *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (AssessmentDraft) TableName() string {
	return "assessment_states"
}
