package services

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/diewo77/go-pos/internal/db"
	"github.com/diewo77/go-pos/internal/models"
	"github.com/diewo77/go-pos/internal/obs"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2024, time.March, 14, 10, 30, 0, 0, time.UTC)

type testEnv struct {
	db       *gorm.DB
	products *ProductService
	invoices *InvoiceService
	revenue  *RevenueService
}

// newTestEnv opens a file-backed SQLite database so that concurrent
// transactions behave like they do against a server.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := obs.NewLogger(io.Discard, "error")
	path := filepath.Join(t.TempDir(), "pos.db")
	gdb, err := gorm.Open(sqlite.Open(db.SQLiteDSN(path)), db.GormConfig(log, false))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })

	products := NewProductService(gdb)
	runner := db.NewTxRunner(gdb, 5, time.Millisecond, log)
	now := func() time.Time { return fixedNow }
	return &testEnv{
		db:       gdb,
		products: products,
		invoices: NewInvoiceService(runner, products, NewNumberGenerator(now), now, log),
		revenue:  NewRevenueService(gdb, products, 5),
	}
}

func (e *testEnv) product(t *testing.T, name, price string, stock int) models.Product {
	t.Helper()
	p := models.Product{Name: name, Price: decimal.RequireFromString(price), Stock: stock}
	require.NoError(t, e.db.Create(&p).Error)
	return p
}

func (e *testEnv) stock(t *testing.T, id uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, e.db.Take(&p, id).Error)
	return p.Stock
}

func (e *testEnv) invoiceCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.Invoice{}).Count(&n).Error)
	return n
}

// rawInvoice inserts an invoice bypassing the workflow.
func (e *testEnv) rawInvoice(t *testing.T, number, customer, total string, date time.Time) models.Invoice {
	t.Helper()
	inv := models.Invoice{
		InvoiceNumber: number,
		Date:          date,
		Customer:      customer,
		SalesPerson:   "Dana",
		TotalAmount:   decimal.RequireFromString(total),
		PaymentType:   models.PaymentCash,
		Status:        models.InvoiceStatusPaid,
	}
	require.NoError(t, e.db.Create(&inv).Error)
	return inv
}
