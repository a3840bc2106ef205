package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleClient     = "client"
	RoleCoach      = "coach"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

type UserRole struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_user_role,unique" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Role      string    `gorm:"column:role;not null;index:idx_user_role,unique" json:"role"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

func ValidRole(role string) bool {
	switch role {
	case RoleClient, RoleCoach, RoleAdmin, RoleSuperadmin:
		return true
	}
	return false
}
