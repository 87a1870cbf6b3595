package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Recipe is family-scoped when FamilyID is set, or part of the shared public
// catalog when FamilyID is nil and IsPublic is true.
type Recipe struct {
	ID           string             `gorm:"primaryKey;size:36" json:"id"`
	FamilyID     *string            `gorm:"size:36;index" json:"family_id"`
	Name         string             `gorm:"size:255;not null" json:"name"`
	ImageURL     *string            `gorm:"size:512" json:"image_url,omitempty"`
	Category     *string            `gorm:"size:100" json:"category,omitempty"`
	Servings     int                `gorm:"not null;default:4" json:"servings"`
	Emoji        *string            `gorm:"size:16" json:"emoji,omitempty"`
	Instructions *string            `gorm:"type:text" json:"instructions,omitempty"`
	IsPublic     bool               `gorm:"not null;default:false" json:"is_public"`
	CreatedByID  string             `gorm:"size:36;not null" json:"created_by_id"`
	CreatedBy    User               `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	Ingredients  []RecipeIngredient `json:"ingredients,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

type RecipeIngredient struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	RecipeID  string    `gorm:"size:36;not null;index" json:"recipe_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Quantity  float64   `gorm:"not null" json:"quantity"` // per single serving
	Unit      *string   `gorm:"size:20" json:"unit,omitempty"`
	Notes     *string   `gorm:"size:255" json:"notes,omitempty"`
	Order     int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *RecipeIngredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
