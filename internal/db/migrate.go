package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/diewo77/go-pos/internal/config"
	"github.com/diewo77/go-pos/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// Registers the postgres database driver for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate brings the schema up to date. PostgreSQL runs the versioned SQL
// migrations when sqlMigrations is set; every other case falls back to
// AutoMigrate.
func Migrate(db *gorm.DB, cfg config.DatabaseConfig, sqlMigrations bool) error {
	if sqlMigrations && (cfg.Driver == "postgres" || cfg.Driver == "") {
		if err := runSQLMigrations(ToURLDSN(NormalizeDSN(cfg.ConnString()))); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
	} else if err := AutoMigrate(db); err != nil {
		return err
	}

	// sanity check: ensure required core tables exist
	for _, table := range []string{"products", "invoices", "invoice_items", "invoice_sequences"} {
		if !db.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

// AutoMigrate creates or updates every table from the models.
func AutoMigrate(db *gorm.DB) error {
	for _, m := range models.All() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// runSQLMigrations executes the embedded migrations.
func runSQLMigrations(dsn string) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return err
	}
	defer m.Close()
	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
