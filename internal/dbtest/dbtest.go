// Package dbtest opens migrated in-memory sqlite databases for tests.
package dbtest

import (
	"strings"
	"testing"

	"github.com/diewo77/autoparts/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// New returns an empty, migrated database private to the test.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	d, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(d); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, _ := d.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })
	return d
}

// Seeded is New plus the starter catalog and an admin account.
func Seeded(t testing.TB) *gorm.DB {
	t.Helper()
	d := New(t)
	if err := db.Seed(d, db.SeedOptions{AdminEmail: AdminEmail, AdminPassword: AdminPassword}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return d
}

const (
	AdminEmail    = "admin@example.com"
	AdminPassword = "admin-secret"
)
