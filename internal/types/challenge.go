package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Challenge is the read-only catalog entry progress records hang off.
type Challenge struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CategoryID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"category_id"`
	Category    *Category      `gorm:"foreignKey:CategoryID;references:ID" json:"category,omitempty"`
	Title       string         `gorm:"size:200;not null;uniqueIndex" json:"title"`
	Slug        string         `gorm:"size:200;not null;uniqueIndex" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	Difficulty  string         `gorm:"size:20;not null;default:'easy'" json:"difficulty"`
	Points      int            `gorm:"not null;default:100" json:"points"`
	IsActive    bool           `gorm:"not null;default:true" json:"is_active"`
	Entrypoint  string         `gorm:"size:100" json:"entrypoint,omitempty"`
	Topology    datatypes.JSON `gorm:"type:jsonb" json:"topology,omitempty"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
}

func (Challenge) TableName() string { return "challenges" }
