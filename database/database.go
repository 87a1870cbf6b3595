package database

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/hearthhub/household_backend/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Connect establishes a connection to the database
func Connect() {
	var err error

	host := os.Getenv("DB_HOST")
	if host == "" {
		host = "localhost"
	}

	user := os.Getenv("DB_USER")
	if user == "" {
		user = "postgres"
	}

	password := os.Getenv("DB_PASS")
	if password == "" {
		password = "postgres"
	}

	dbname := os.Getenv("DB_NAME")
	if dbname == "" {
		dbname = "household"
	}

	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		host, user, password, dbname, port)

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	slog.Info("database connection established", "host", host, "dbname", dbname)
}

// Migrate automatically migrates the database schema
func Migrate() {
	if err := DB.AutoMigrate(
		&models.User{},
		&models.Family{},
		&models.FamilyMember{},
		&models.Invite{},
		&models.Todo{},
		&models.RecurringRule{},
		&models.ShoppingItem{},
		&models.Recipe{},
		&models.RecipeIngredient{},
	); err != nil {
		slog.Error("database migration failed", "error", err)
		os.Exit(1)
	}

	// Partial unique index so the database itself rejects a second pending
	// email invite for the same family, closing the check-then-create race.
	if err := DB.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_invites_pending_email
		 ON invites (family_id, email)
		 WHERE status = 'pending' AND email IS NOT NULL`,
	).Error; err != nil {
		slog.Error("failed to create pending invite index", "error", err)
		os.Exit(1)
	}

	slog.Info("database migration completed")
}
