package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	InviteKindEmail = "email"
	InviteKindQR    = "qr"

	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
	InviteStatusExpired  = "expired"
)

type Invite struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	FamilyID  string    `gorm:"size:36;not null;index" json:"family_id"`
	Family    Family    `gorm:"foreignKey:FamilyID" json:"-"`
	Token     string    `gorm:"size:64;not null;unique" json:"token"`
	Email     *string   `gorm:"size:255;index" json:"email,omitempty"`
	Role      string    `gorm:"size:20;not null;default:'member'" json:"role"`
	Kind      string    `gorm:"size:10;not null" json:"kind"`               // email, qr
	Status    string    `gorm:"size:20;not null;default:'pending'" json:"status"` // pending, accepted, expired
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	InviterID *string   `gorm:"size:36" json:"inviter_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (i *Invite) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// Pending reports whether the invite is still usable at the given time.
func (i *Invite) Pending(now time.Time) bool {
	return i.Status == InviteStatusPending && i.ExpiresAt.After(now)
}
