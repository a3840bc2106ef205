package types

import (
	"time"

	"github.com/google/uuid"
)

// User is the single canonical identity table. Coaching metadata lives here
// directly; there is no secondary clients table.
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email          string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password       string    `gorm:"not null;column:password" json:"-"`
	FirstName      string    `gorm:"not null;column:first_name" json:"first_name"`
	LastName       string    `gorm:"not null;column:last_name" json:"last_name"`
	ClientCategory string    `gorm:"column:client_category" json:"client_category"`
	ClientStatus   string    `gorm:"column:client_status;not null;default:'active'" json:"client_status"`
	CreatedAt      time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string {
	return "user"
}
