package types

import (
	"time"

	"github.com/google/uuid"
)

// User mirrors the identity store this service trusts. Accounts are
// created and authenticated elsewhere; rows here exist for foreign keys
// and leaderboard display.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username  string    `gorm:"size:150;not null;uniqueIndex" json:"username"`
	Email     string    `gorm:"size:254;not null;uniqueIndex" json:"email"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "users" }
