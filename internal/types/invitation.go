package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationExpired  = "expired"
)

// Invitation is a one-shot token row. pending -> accepted happens exactly
// once; redeeming an accepted token is rejected.
type Invitation struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email      string     `gorm:"column:email;not null;index" json:"email"`
	Token      string     `gorm:"uniqueIndex;not null;column:token" json:"-"`
	Role       string     `gorm:"column:role;not null;default:'client'" json:"role"`
	InvitedBy  uuid.UUID  `gorm:"type:uuid;column:invited_by" json:"invited_by"`
	Status     string     `gorm:"column:status;not null;default:'pending'" json:"status"`
	ExpiresAt  time.Time  `gorm:"column:expires_at;not null" json:"expires_at"`
	AcceptedAt *time.Time `gorm:"column:accepted_at" json:"accepted_at,omitempty"`
	CreatedAt  time.Time  `gorm:"not null;default:now()" json:"created_at"`
}

func (Invitation) TableName() string {
	return "invitations"
}
