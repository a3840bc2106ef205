package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	TaskPending   = "pending"
	TaskCompleted = "completed"
)

type Task struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Title       string     `gorm:"column:title;not null" json:"title"`
	Description string     `gorm:"column:description" json:"description"`
	Status      string     `gorm:"column:status;not null;default:'pending'" json:"status"`
	Priority    string     `gorm:"column:priority;not null;default:'medium'" json:"priority"`
	AIGenerated bool       `gorm:"column:ai_generated;not null;default:false" json:"ai_generated"`
	DueDate     *time.Time `gorm:"column:due_date" json:"due_date,omitempty"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedBy   uuid.UUID  `gorm:"type:uuid;column:created_by" json:"created_by"`
	CreatedAt   time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}
