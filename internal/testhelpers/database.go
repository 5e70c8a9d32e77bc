package testhelpers

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hgyoseo/HDMeal-Chatbot/internal/models"
)

// SetupTestDB opens an in-memory sqlite database migrated with the
// application schema. Every call returns an isolated database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.UserPreference{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}
