package services

import (
	"errors"
	"strings"
	"time"

	"github.com/hearthhub/household_backend/database"
	"github.com/hearthhub/household_backend/errs"
	"github.com/hearthhub/household_backend/models"
	"github.com/hearthhub/household_backend/utils"
	"gorm.io/gorm"
)

// InviteTTL is the fixed lifetime of every invite.
const InviteTTL = 7 * 24 * time.Hour

// QRInvite is the response shape for QR invites: just enough to render a code.
type QRInvite struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	FamilyID  string    `json:"family_id"`
}

// InviteInfo is the public, denormalized view of a pending invite. It omits
// all membership and role detail on purpose.
type InviteInfo struct {
	FamilyID    string    `json:"family_id"`
	FamilyName  string    `json:"family_name"`
	ExpiresAt   time.Time `json:"expires_at"`
	InviterName *string   `json:"inviter_name,omitempty"`
}

// PendingInvite is an entry of a user's pending invite list.
type PendingInvite struct {
	Token       string    `json:"token"`
	FamilyID    string    `json:"family_id"`
	FamilyName  string    `json:"family_name"`
	ExpiresAt   time.Time `json:"expires_at"`
	InviterName *string   `json:"inviter_name,omitempty"`
}

// InviteByEmail creates a pending email invite to a family. The requester must
// be an admin; the address must not already belong to a member, and at most
// one pending, unexpired invite may exist per (family, email). The duplicate
// checks and the insert run in one transaction, backed by a partial unique
// index on pending invites.
func InviteByEmail(requesterID, familyID, email, role string) (*models.Invite, error) {
	if err := EnsureAdmin(requesterID, familyID); err != nil {
		return nil, err
	}
	if role == "" {
		role = models.RoleMember
	}

	token, err := utils.GenerateInviteToken()
	if err != nil {
		return nil, err
	}

	invite := models.Invite{
		FamilyID:  familyID,
		Token:     token,
		Email:     &email,
		Role:      role,
		Kind:      models.InviteKindEmail,
		Status:    models.InviteStatusPending,
		ExpiresAt: time.Now().Add(InviteTTL),
		InviterID: &requesterID,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var memberCount int64
		if err := tx.Model(&models.FamilyMember{}).
			Joins("JOIN users ON users.id = family_members.user_id").
			Where("family_members.family_id = ? AND users.email = ?", familyID, email).
			Count(&memberCount).Error; err != nil {
			return err
		}
		if memberCount > 0 {
			return errs.New(errs.ErrConflict, "user already in family")
		}

		// Retire any pending invite for the address that has already run out,
		// so it stops occupying the partial unique index slot.
		if err := tx.Model(&models.Invite{}).
			Where("family_id = ? AND email = ? AND status = ? AND expires_at <= ?",
				familyID, email, models.InviteStatusPending, time.Now()).
			Update("status", models.InviteStatusExpired).Error; err != nil {
			return err
		}

		var pendingCount int64
		if err := tx.Model(&models.Invite{}).
			Where("family_id = ? AND email = ? AND status = ?",
				familyID, email, models.InviteStatusPending).
			Count(&pendingCount).Error; err != nil {
			return err
		}
		if pendingCount > 0 {
			return errs.New(errs.ErrConflict, "invite for this email already exists")
		}

		if err := tx.Create(&invite).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errs.New(errs.ErrConflict, "invite for this email already exists")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

// CreateQRInvite creates a pending invite not bound to any email address. QR
// invites may be created repeatedly, so there is no duplicate check.
func CreateQRInvite(requesterID, familyID, role string) (*QRInvite, error) {
	if err := EnsureAdmin(requesterID, familyID); err != nil {
		return nil, err
	}
	if role == "" {
		role = models.RoleMember
	}

	token, err := utils.GenerateInviteToken()
	if err != nil {
		return nil, err
	}

	invite := models.Invite{
		FamilyID:  familyID,
		Token:     token,
		Role:      role,
		Kind:      models.InviteKindQR,
		Status:    models.InviteStatusPending,
		ExpiresAt: time.Now().Add(InviteTTL),
		InviterID: &requesterID,
	}
	if err := database.DB.Create(&invite).Error; err != nil {
		return nil, err
	}

	return &QRInvite{
		Token:     invite.Token,
		ExpiresAt: invite.ExpiresAt,
		FamilyID:  invite.FamilyID,
	}, nil
}

// GetInviteByToken resolves a token to its public invite info. A token that
// never existed, was already accepted, or has expired yields the same
// ErrNotFound, so callers cannot probe for invite existence.
func GetInviteByToken(token string) (*InviteInfo, error) {
	invite, err := resolve(database.DB, token)
	if err != nil {
		return nil, err
	}

	return &InviteInfo{
		FamilyID:    invite.FamilyID,
		FamilyName:  invite.Family.Name,
		ExpiresAt:   invite.ExpiresAt,
		InviterName: inviterName(invite.InviterID),
	}, nil
}

// GetPendingInvites lists all pending, unexpired invites addressed to the
// given email, denormalized with family and inviter names.
func GetPendingInvites(email string) ([]PendingInvite, error) {
	var invites []models.Invite
	if err := database.DB.Preload("Family").
		Where("email = ? AND status = ? AND expires_at > ?",
			email, models.InviteStatusPending, time.Now()).
		Find(&invites).Error; err != nil {
		return nil, err
	}

	result := make([]PendingInvite, 0, len(invites))
	for _, invite := range invites {
		result = append(result, PendingInvite{
			Token:       invite.Token,
			FamilyID:    invite.FamilyID,
			FamilyName:  invite.Family.Name,
			ExpiresAt:   invite.ExpiresAt,
			InviterName: inviterName(invite.InviterID),
		})
	}
	return result, nil
}

// AcceptInvite consumes a token. The token is resolved first, so unknown,
// accepted and expired tokens always yield the collapsed NotFound no matter
// who is asking. Authenticated users (non-empty userID) join the family at the
// invite's role; the membership insert and the pending→accepted transition
// commit atomically, so a token can never be replayed after a join. Guests
// must supply a name, and are then refused: passwordless registration is
// intentionally not implemented.
func AcceptInvite(token, userID, guestName string) (*models.FamilyMember, error) {
	if userID == "" {
		if _, err := resolve(database.DB, token); err != nil {
			return nil, err
		}
		if strings.TrimSpace(guestName) == "" {
			return nil, errs.New(errs.ErrBadRequest, "name required for guest join")
		}
		return nil, errs.New(errs.ErrBadRequest, "passwordless registration not implemented")
	}

	var member models.FamilyMember
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		invite, err := resolve(tx, token)
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.FamilyMember{}).
			Where("family_id = ? AND user_id = ?", invite.FamilyID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errs.New(errs.ErrConflict, "already in family")
		}

		member = models.FamilyMember{
			FamilyID: invite.FamilyID,
			UserID:   userID,
			Role:     invite.Role,
		}
		if err := tx.Create(&member).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errs.New(errs.ErrConflict, "already in family")
			}
			return err
		}

		return tx.Model(&models.Invite{}).Where("id = ?", invite.ID).
			Update("status", models.InviteStatusAccepted).Error
	})
	if err != nil {
		return nil, err
	}

	if err := database.DB.Preload("User").First(&member, "id = ?", member.ID).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// resolve loads a usable invite by token, collapsing missing, non-pending and
// expired into one error.
func resolve(tx *gorm.DB, token string) (*models.Invite, error) {
	var invite models.Invite
	err := tx.Preload("Family").First(&invite, "token = ?", token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.New(errs.ErrNotFound, "invite not found or expired")
		}
		return nil, err
	}
	if !invite.Pending(time.Now()) {
		return nil, errs.New(errs.ErrNotFound, "invite not found or expired")
	}
	return &invite, nil
}

func inviterName(inviterID *string) *string {
	if inviterID == nil {
		return nil
	}
	var user models.User
	if err := database.DB.First(&user, "id = ?", *inviterID).Error; err != nil {
		return nil
	}
	return &user.Name
}
