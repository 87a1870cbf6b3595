package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShoppingItem struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	FamilyID    string    `gorm:"size:36;not null;index" json:"family_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Quantity    *float64  `json:"quantity,omitempty"`
	Unit        *string   `gorm:"size:20" json:"unit,omitempty"`
	Category    *string   `gorm:"size:100" json:"category,omitempty"`
	Purchased   bool      `gorm:"not null;default:false" json:"purchased"`
	CreatedByID string    `gorm:"size:36;not null" json:"created_by_id"`
	CreatedBy   User      `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	RecipeID    *string   `gorm:"size:36" json:"recipe_id,omitempty"`
	Recipe      *Recipe   `gorm:"foreignKey:RecipeID" json:"recipe,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s *ShoppingItem) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
