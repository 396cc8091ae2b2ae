package services_test

import (
	"path/filepath"
	"testing"

	"buildease/internal/adapters/persistence/models"

	"github.com/glebarez/sqlite"
	gormlogger "gorm.io/gorm/logger"

	"gorm.io/gorm"
)

// newTestDB opens a throwaway sqlite database under t.TempDir and migrates
// the full schema into it
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	return db
}
