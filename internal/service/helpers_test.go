package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/folio/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	store, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "blog.db"),
		db.WithGormLogger(logger.Default.LogMode(logger.Silent)))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store.Gorm()
}

func strPtr(v string) *string {
	return &v
}
