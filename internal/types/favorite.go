package types

import (
	"time"

	"github.com/google/uuid"
)

// Favorite is pure membership; a row exists iff the user has the
// challenge favorited.
type Favorite struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_user_challenge_fav,unique" json:"user_id"`
	User        *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ChallengeID uuid.UUID  `gorm:"type:uuid;not null;index:idx_user_challenge_fav,unique" json:"challenge_id"`
	Challenge   *Challenge `gorm:"constraint:OnDelete:CASCADE;foreignKey:ChallengeID;references:ID" json:"challenge,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
}

func (Favorite) TableName() string { return "favorites" }
