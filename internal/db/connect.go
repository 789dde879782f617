package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/diewo77/go-pos/internal/config"
	"github.com/diewo77/go-pos/internal/obs"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Dialector picks the GORM driver for cfg.Driver.
func Dialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres", "":
		return postgres.Open(NormalizeDSN(cfg.ConnString())), nil
	case "mysql":
		return mysql.Open(cfg.ConnString()), nil
	case "sqlite":
		return sqlite.Open(SQLiteDSN(cfg.ConnString())), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}

// GormConfig is shared by the server and the tests so both see the same
// error translation and UTC clock.
func GormConfig(log *slog.Logger, debug bool) *gorm.Config {
	return &gorm.Config{
		Logger:         obs.GormLogger(log, debug, 200*time.Millisecond),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
}

// Connect opens the database, retrying while it comes up, and checks it
// answers. The caller owns the handle and must Close it at shutdown.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}
	log.Info("connecting to database", "driver", cfg.Driver, "dsn", MaskDSN(cfg.ConnString()))

	retries := max(cfg.ConnectRetries, 1)
	var db *gorm.DB
	for i := 0; i < retries; i++ {
		db, err = gorm.Open(dialector, GormConfig(log, cfg.Debug))
		if err == nil {
			break
		}
		log.Warn("database connection failed", "attempt", i+1, "of", retries, "err", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db handle: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("db ping failed: %w", err)
	}
	return db, nil
}

// Close releases the connection pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping is used by the readiness probe.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
