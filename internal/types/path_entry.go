package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	PathEntryRecommendation = "recommendation"
	PathEntryTask           = "task"
	PathEntryEvent          = "event"
	PathEntryMilestone      = "milestone"
	PathEntryAssessment     = "assessment"
)

// PathEntry is an append-only timeline item on a client's journey.
type PathEntry struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User            *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Type            string         `gorm:"column:type;not null" json:"type"`
	Title           string         `gorm:"column:title;not null" json:"title"`
	Details         string         `gorm:"column:details" json:"details"`
	AIGenerated     bool           `gorm:"column:ai_generated;not null;default:false" json:"ai_generated"`
	VisibleToClient bool           `gorm:"column:visible_to_client;not null;default:true" json:"visible_to_client"`
	Status          string         `gorm:"column:status;not null;default:'pending'" json:"status"`
	Timestamp       time.Time      `gorm:"column:timestamp;not null" json:"timestamp"`
	Metadata        datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata"`
	CreatedBy       uuid.UUID      `gorm:"type:uuid;column:created_by" json:"created_by"`
	CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (PathEntry) TableName() string {
	return "path_entries"
}
