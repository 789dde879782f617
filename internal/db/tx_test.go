package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"duplicate", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), true},
		{"pg serialization", &pgconn.PgError{Code: "40001"}, true},
		{"pg deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"pg check violation", &pgconn.PgError{Code: "23514"}, false},
		{"mysql deadlock", &mysql.MySQLError{Number: 1213}, true},
		{"mysql syntax", &mysql.MySQLError{Number: 1064}, false},
		{"sqlite busy", sqlite3.Error{Code: sqlite3.ErrBusy}, true},
		{"sqlite constraint", sqlite3.Error{Code: sqlite3.ErrConstraint}, false},
		{"not found", gorm.ErrRecordNotFound, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Fatalf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestTxRunnerRetriesTransientErrors(t *testing.T) {
	d := openTestDB(t)
	r := NewTxRunner(d, 3, time.Millisecond, nil)

	calls := 0
	err := r.Run(context.Background(), func(tx *gorm.DB) error {
		calls++
		if calls < 3 {
			return &pgconn.PgError{Code: "40001"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success on third attempt, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestTxRunnerStopsOnPermanentError(t *testing.T) {
	d := openTestDB(t)
	r := NewTxRunner(d, 5, time.Millisecond, nil)
	permanent := errors.New("insufficient stock")

	calls := 0
	err := r.Run(context.Background(), func(tx *gorm.DB) error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("permanent errors must not be retried, got %d calls", calls)
	}
}

func TestTxRunnerGivesUpAfterAttempts(t *testing.T) {
	d := openTestDB(t)
	r := NewTxRunner(d, 2, time.Millisecond, nil)

	calls := 0
	err := r.Run(context.Background(), func(tx *gorm.DB) error {
		calls++
		return gorm.ErrDuplicatedKey
	})
	if !errors.Is(err, gorm.ErrDuplicatedKey) || calls != 2 {
		t.Fatalf("expected 2 attempts ending in duplicate key, got %d: %v", calls, err)
	}
}
