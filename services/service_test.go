package services

import (
	"fmt"
	"testing"

	"github.com/hearthhub/household_backend/database"
	"github.com/hearthhub/household_backend/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB points database.DB at a fresh in-memory SQLite database with
// the full schema migrated.
func setupTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	database.DB = db
	database.Migrate()
}

func createUser(t *testing.T, email, name string) *models.User {
	t.Helper()
	user := models.User{Email: email, Name: name, Password: "secret123"}
	if err := database.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	return &user
}

func createFamilyWithAdmin(t *testing.T, name string, admin *models.User) *models.Family {
	t.Helper()
	family, err := CreateFamily(admin.ID, name)
	if err != nil {
		t.Fatalf("failed to create family %s: %v", name, err)
	}
	return family
}

func addMember(t *testing.T, family *models.Family, user *models.User, role string) *models.FamilyMember {
	t.Helper()
	member := models.FamilyMember{FamilyID: family.ID, UserID: user.ID, Role: role}
	if err := database.DB.Create(&member).Error; err != nil {
		t.Fatalf("failed to add member: %v", err)
	}
	return &member
}
