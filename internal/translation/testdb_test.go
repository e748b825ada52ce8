package translation

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/avrentals/backend/internal/models"
)

// newTestDB opens a fresh in-memory database per test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Translation{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// newTestStore builds a store without the background usage recorder, so tests
// never race against its flush goroutine.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(newTestDB(t), nil)
}
