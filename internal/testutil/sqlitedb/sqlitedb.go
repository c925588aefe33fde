// Package sqlitedb opens a migrated throwaway sqlite database for tests.
package sqlitedb

import (
	"path/filepath"
	"testing"

	"scholarship-backend/internal/infrastructure/db"

	"gorm.io/gorm"
)

// Open returns a migrated database in t.TempDir(). The pool is capped at
// one connection: sqlite has no row locks, so transactions are serialized
// by the pool instead.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "scholarship.db") + "?_busy_timeout=5000"
	gdb, err := db.OpenGorm("sqlite", dsn, "silent")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}
