package types

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SenderID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"sender_id"`
	Sender     *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:SenderID;references:ID" json:"sender,omitempty"`
	ReceiverID uuid.UUID  `gorm:"type:uuid;not null;index" json:"receiver_id"`
	Receiver   *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:ReceiverID;references:ID" json:"receiver,omitempty"`
	Content    string     `gorm:"column:content;not null" json:"content"`
	ReadAt     *time.Time `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt  time.Time  `gorm:"not null;default:now()" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}
