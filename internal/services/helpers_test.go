package services

import (
	"log/slog"
	"os"
	"testing"

	"logsight/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupTestDB() *gorm.DB {
	db, _ := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	db.AutoMigrate(
		&models.ApplicationLog{},
		&models.SerilogEntry{},
		&models.AuditLog{},
		&models.AuditLogAction{},
		&models.ApiClient{},
	)
	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}
