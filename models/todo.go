package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Todo struct {
	ID              string     `gorm:"primaryKey;size:36" json:"id"`
	FamilyID        string     `gorm:"size:36;not null;index" json:"family_id"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	Description     *string    `gorm:"type:text" json:"description,omitempty"`
	Completed       bool       `gorm:"not null;default:false" json:"completed"`
	IsImportant     bool       `gorm:"not null;default:false" json:"is_important"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedByID     string     `gorm:"size:36;not null" json:"created_by_id"`
	CreatedBy       User       `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	AssignedToID    *string    `gorm:"size:36" json:"assigned_to_id,omitempty"`
	AssignedTo      *User      `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
	RecurringRuleID *string    `gorm:"size:36" json:"recurring_rule_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (t *Todo) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// RecurringRule spawns a todo from TemplateData each time NextOccurrence
// passes, then advances by Interval units of Frequency.
type RecurringRule struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	FamilyID       string    `gorm:"size:36;not null;index" json:"family_id"`
	Frequency      string    `gorm:"size:10;not null" json:"frequency"` // daily, weekly, monthly, yearly
	Interval       int       `gorm:"not null;default:1" json:"interval"`
	NextOccurrence time.Time `gorm:"not null;index" json:"next_occurrence"`
	TemplateData   string    `gorm:"type:text;not null" json:"template_data"` // JSON todo template
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (r *RecurringRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
