package db

import (
	"embed"
	"errors"
	"fmt"
	"log"

	"github.com/diewo77/autoparts/internal/config"
	"github.com/diewo77/autoparts/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// Registers the postgres database driver for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var requiredTables = []string{"users", "user_roles", "products", "quotations", "quotation_items", "carts"}

// Migrate brings the schema up to date according to mode:
// auto runs gorm AutoMigrate, sql applies the embedded SQL files (postgres only), off does nothing.
func Migrate(db *gorm.DB, mode string, dbCfg config.DatabaseConfig) error {
	switch mode {
	case config.MigrateOff:
		return nil
	case config.MigrateSQL:
		if dbCfg.Driver != "postgres" {
			return fmt.Errorf("sql migrations require postgres, got %q", dbCfg.Driver)
		}
		if err := RunSQLMigrations(dbCfg.URL()); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
	default:
		if err := AutoMigrate(db); err != nil {
			return err
		}
	}
	for _, table := range requiredTables {
		if !db.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

// AutoMigrate creates or updates every model table.
func AutoMigrate(db *gorm.DB) error {
	for _, m := range models.All() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// RunSQLMigrations applies the embedded migrations against a postgres URL.
func RunSQLMigrations(url string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	version, dirty, _ := m.Version()
	log.Printf("[DB] migrations at version %d (dirty=%v)", version, dirty)
	return nil
}
