package types

import (
	"time"

	"github.com/google/uuid"
)

type CoachClientAssignment struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CoachID   uuid.UUID `gorm:"type:uuid;not null;index:idx_coach_client,unique" json:"coach_id"`
	Coach     *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:CoachID;references:ID" json:"coach,omitempty"`
	ClientID  uuid.UUID `gorm:"type:uuid;not null;index:idx_coach_client,unique" json:"client_id"`
	Client    *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:ClientID;references:ID" json:"client,omitempty"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (CoachClientAssignment) TableName() string {
	return "coach_client_assignments"
}
