package types

import (
	"github.com/google/uuid"
)

type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Slug      string    `gorm:"size:100;not null;uniqueIndex" json:"slug"`
	IconClass string    `gorm:"size:50;not null;default:'fa-solid fa-shield-halved'" json:"icon_class"`
}

func (Category) TableName() string { return "categories" }
