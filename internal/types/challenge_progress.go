package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ChallengeProgress is the durable record of one user's work on one
// challenge. Exactly one row per (user, challenge); rows are never
// deleted by this service, only cascaded away with their owner.
type ChallengeProgress struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index:idx_user_challenge,unique" json:"user_id"`
	User        *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ChallengeID uuid.UUID      `gorm:"type:uuid;not null;index:idx_user_challenge,unique" json:"challenge_id"`
	Challenge   *Challenge     `gorm:"constraint:OnDelete:CASCADE;foreignKey:ChallengeID;references:ID" json:"challenge,omitempty"`
	Status      string         `gorm:"size:20;not null;default:'attempted'" json:"status"`
	LastState   datatypes.JSON `gorm:"type:jsonb;column:last_state" json:"last_state,omitempty"`
	LastSavedOk bool           `gorm:"column:last_saved_ok;not null;default:true" json:"last_saved_ok"`
	StartedAt   time.Time      `gorm:"column:started_at;not null" json:"started_at"`
	CompletedAt *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	// CreatedAt duplicates StartedAt for all current rows; the column
	// predates started_at and existing data depends on it.
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ChallengeProgress) TableName() string { return "challenge_progress" }
