// Package services holds the family membership and invite workflows shared by
// the REST controllers. All functions operate on database.DB; multi-step
// check-then-write sequences run inside a single transaction.
package services

import (
	"errors"

	"github.com/hearthhub/household_backend/database"
	"github.com/hearthhub/household_backend/errs"
	"github.com/hearthhub/household_backend/models"
	"gorm.io/gorm"
)

// FindFamilies returns every family the user belongs to, members preloaded.
func FindFamilies(userID string) ([]models.Family, error) {
	var memberships []models.FamilyMember
	if err := database.DB.Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		return nil, err
	}

	familyIDs := make([]string, 0, len(memberships))
	for _, m := range memberships {
		familyIDs = append(familyIDs, m.FamilyID)
	}

	families := []models.Family{}
	if len(familyIDs) == 0 {
		return families, nil
	}
	if err := database.DB.Preload("Members.User").Where("id IN ?", familyIDs).Find(&families).Error; err != nil {
		return nil, err
	}
	return families, nil
}

// FindFamily looks up a family by ID with members preloaded.
func FindFamily(familyID string) (*models.Family, error) {
	var family models.Family
	if err := database.DB.Preload("Members.User").First(&family, "id = ?", familyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.New(errs.ErrNotFound, "family not found")
		}
		return nil, err
	}
	return &family, nil
}

// FindFamilyForUser returns the family only when the user is a member of it.
func FindFamilyForUser(userID, familyID string) (*models.Family, error) {
	family, err := FindFamily(familyID)
	if err != nil {
		return nil, err
	}
	for _, m := range family.Members {
		if m.UserID == userID {
			return family, nil
		}
	}
	return nil, errs.New(errs.ErrForbidden, "no access to this family")
}

// CreateFamily creates a family with the creator as its first admin member.
// Both rows are written in one transaction.
func CreateFamily(userID, name string) (*models.Family, error) {
	family := models.Family{Name: name}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&family).Error; err != nil {
			return err
		}
		member := models.FamilyMember{
			FamilyID: family.ID,
			UserID:   userID,
			Role:     models.RoleAdmin,
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		return nil, err
	}
	return FindFamily(family.ID)
}

// UpdateFamily renames a family. Admin only.
func UpdateFamily(userID, familyID, name string) (*models.Family, error) {
	if err := EnsureAdmin(userID, familyID); err != nil {
		return nil, err
	}
	if err := database.DB.Model(&models.Family{}).Where("id = ?", familyID).
		Update("name", name).Error; err != nil {
		return nil, err
	}
	return FindFamily(familyID)
}

// RemoveMember deletes a membership. Admins may remove anyone; a member may
// remove themself. Removing the last admin is refused so the family is never
// left without one.
func RemoveMember(userID, familyID, memberID string) error {
	family, err := FindFamilyForUser(userID, familyID)
	if err != nil {
		return err
	}

	var target *models.FamilyMember
	var requester *models.FamilyMember
	adminCount := 0
	for i := range family.Members {
		m := &family.Members[i]
		if m.ID == memberID {
			target = m
		}
		if m.UserID == userID {
			requester = m
		}
		if m.Role == models.RoleAdmin {
			adminCount++
		}
	}
	if target == nil {
		return errs.New(errs.ErrNotFound, "member not found")
	}

	isAdmin := requester != nil && requester.Role == models.RoleAdmin
	isSelf := target.UserID == userID
	if !isAdmin && !isSelf {
		return errs.New(errs.ErrForbidden, "only admin can remove other members")
	}
	if target.Role == models.RoleAdmin && adminCount == 1 {
		return errs.New(errs.ErrConflict, "cannot remove the last admin")
	}

	return database.DB.Delete(&models.FamilyMember{}, "id = ?", memberID).Error
}

// EnsureMember fails with ErrForbidden (or ErrNotFound for a missing family)
// unless the user belongs to the family.
func EnsureMember(userID, familyID string) error {
	_, err := FindFamilyForUser(userID, familyID)
	return err
}

// EnsureAdmin fails unless the user is an admin member of the family.
func EnsureAdmin(userID, familyID string) error {
	family, err := FindFamilyForUser(userID, familyID)
	if err != nil {
		return err
	}
	for _, m := range family.Members {
		if m.UserID == userID && m.Role == models.RoleAdmin {
			return nil
		}
	}
	return errs.New(errs.ErrForbidden, "admin role required")
}

// IsMember reports whether the user belongs to the family.
func IsMember(userID, familyID string) (bool, error) {
	var count int64
	err := database.DB.Model(&models.FamilyMember{}).
		Where("family_id = ? AND user_id = ?", familyID, userID).
		Count(&count).Error
	return count > 0, err
}
