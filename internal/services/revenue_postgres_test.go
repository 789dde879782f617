package services

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/diewo77/go-pos/internal/db"
	"github.com/diewo77/go-pos/internal/models"
	"github.com/diewo77/go-pos/internal/obs"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// TestRevenueByMonthPostgres runs the DATE_TRUNC query. It needs a
// PostgreSQL database in POS_TEST_POSTGRES_DSN and leaves no rows behind.
func TestRevenueByMonthPostgres(t *testing.T) {
	dsn := os.Getenv("POS_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POS_TEST_POSTGRES_DSN not set")
	}
	gdb, err := gorm.Open(postgres.Open(db.NormalizeDSN(dsn)), db.GormConfig(obs.NewLogger(io.Discard, "error"), false))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	require.NoError(t, db.AutoMigrate(gdb))

	tx := gdb.Begin()
	require.NoError(t, tx.Error)
	defer tx.Rollback()
	require.NoError(t, tx.Exec("DELETE FROM invoice_items").Error)
	require.NoError(t, tx.Exec("DELETE FROM invoices").Error)

	add := func(number, total string, date time.Time) {
		inv := models.Invoice{
			InvoiceNumber: number, Date: date, Customer: "A", SalesPerson: "B",
			TotalAmount: decimal.RequireFromString(total),
			PaymentType: models.PaymentCash, Status: models.InvoiceStatusPaid,
		}
		require.NoError(t, tx.Create(&inv).Error)
	}
	add("INV-2401-0001", "100", day(2024, time.January, 5))
	add("INV-2401-0002", "50", day(2024, time.January, 20))
	// The evening of January 31 in UTC-5 is already February in UTC.
	add("INV-2402-0003", "30", time.Date(2024, time.January, 31, 23, 30, 0, 0, time.FixedZone("EST", -5*3600)))

	svc := NewRevenueService(tx, NewProductService(tx), 5)
	ctx := context.Background()

	months, err := svc.Revenue(ctx, RevenueParams{Range: RangeMonth})
	require.NoError(t, err)
	require.Len(t, months, 2)
	assert.Equal(t, day(2024, time.January, 1), months[0].Date)
	assert.Equal(t, "150", months[0].Revenue.String())
	assert.Equal(t, day(2024, time.February, 1), months[1].Date)
	assert.Equal(t, "30", months[1].Revenue.String())

	weeks, err := svc.Revenue(ctx, RevenueParams{Range: RangeWeek, Dense: true})
	require.NoError(t, err)
	require.Len(t, weeks, 5)
	assert.Equal(t, day(2024, time.January, 1), weeks[0].Date)
	assert.Equal(t, time.Monday, weeks[1].Date.Weekday())
	assert.Equal(t, day(2024, time.January, 29), weeks[4].Date)
}
