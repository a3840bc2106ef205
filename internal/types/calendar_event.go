package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type CalendarEvent struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User            *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Title           string         `gorm:"column:title;not null" json:"title"`
	Description     string         `gorm:"column:description" json:"description"`
	StartsAt        time.Time      `gorm:"column:starts_at;not null;index" json:"starts_at"`
	EndsAt          *time.Time     `gorm:"column:ends_at" json:"ends_at,omitempty"`
	VisibleToClient bool           `gorm:"column:visible_to_client;not null;default:true" json:"visible_to_client"`
	Metadata        datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata"`
	CreatedBy       uuid.UUID      `gorm:"type:uuid;column:created_by" json:"created_by"`
	CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (CalendarEvent) TableName() string {
	return "calendar_events"
}
