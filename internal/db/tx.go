package db

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// TxRunner runs a unit of work in a transaction and runs it again when the
// database rejects it for a transient reason. fn must therefore be safe to
// repeat: it may only touch the database through tx.
type TxRunner struct {
	db       *gorm.DB
	attempts int
	backoff  time.Duration
	log      *slog.Logger
}

// NewTxRunner builds a runner; attempts below 1 means a single try.
func NewTxRunner(db *gorm.DB, attempts int, backoff time.Duration, log *slog.Logger) *TxRunner {
	if log == nil {
		log = slog.Default()
	}
	return &TxRunner{db: db, attempts: max(attempts, 1), backoff: backoff, log: log}
}

// DB returns the handle the runner opens transactions on.
func (r *TxRunner) DB() *gorm.DB { return r.db }

// Run executes fn inside a transaction bound to ctx.
func (r *TxRunner) Run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	for attempt := 1; ; attempt++ {
		err := r.db.WithContext(ctx).Transaction(fn)
		if err == nil {
			return nil
		}
		if attempt >= r.attempts || !IsRetryable(err) || ctx.Err() != nil {
			return err
		}
		r.log.Warn("transaction retry", "attempt", attempt, "err", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.backoff * time.Duration(attempt)):
		}
	}
}

// Postgres SQLSTATE codes worth another attempt.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgUniqueViolation      = "23505"
)

// MySQL error numbers worth another attempt.
const (
	myLockWaitTimeout = 1205
	myDeadlock        = 1213
)

// IsRetryable reports whether err is a conflict between concurrent
// transactions rather than a fault of the request.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable, pgUniqueViolation:
			return true
		}
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == myDeadlock || myErr.Number == myLockWaitTimeout
	}
	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		return sqErr.Code == sqlite3.ErrBusy || sqErr.Code == sqlite3.ErrLocked
	}
	return false
}
