package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-pos/internal/config"
	"github.com/diewo77/go-pos/internal/db"
	"github.com/diewo77/go-pos/internal/models"
	"github.com/diewo77/go-pos/internal/obs"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupApp(t *testing.T) (*App, *gorm.DB) {
	t.Helper()
	log := obs.NewLogger(io.Discard, "error")
	gdb, err := gorm.Open(sqlite.Open(db.SQLiteDSN(filepath.Join(t.TempDir(), "e2e.db"))), db.GormConfig(log, false))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	cfg := &config.Config{
		Server:   config.ServerConfig{RequestTimeout: 5},
		Database: config.DatabaseConfig{Driver: "sqlite", TxAttempts: 3, TxBackoff: time.Millisecond},
		App:      config.AppConfig{LowStockThreshold: 5},
	}
	if err := db.Migrate(gdb, cfg.Database, true); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(gdb) })
	return NewApp(gdb, cfg, log), gdb
}

func do(t *testing.T, app *App, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	app, _ := setupApp(t)
	for _, path := range []string{"/health", "/healthz"} {
		rr := do(t, app, http.MethodGet, path, "")
		if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"ok"`) {
			t.Fatalf("%s: got %d %s", path, rr.Code, rr.Body.String())
		}
		if rr.Header().Get("X-Request-Id") == "" {
			t.Fatalf("%s: missing request id", path)
		}
	}
}

func TestHealthzDegraded(t *testing.T) {
	app, gdb := setupApp(t)
	if err := db.Close(gdb); err != nil {
		t.Fatalf("close: %v", err)
	}
	rr := do(t, app, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusServiceUnavailable || !strings.Contains(rr.Body.String(), "degraded") {
		t.Fatalf("expected degraded, got %d %s", rr.Code, rr.Body.String())
	}
}

func TestInvoiceFlowE2E(t *testing.T) {
	app, gdb := setupApp(t)
	pen := models.Product{Name: "Pen", Price: decimal.RequireFromString("1.25"), Stock: 10}
	if err := gdb.Create(&pen).Error; err != nil {
		t.Fatalf("product: %v", err)
	}

	rr := do(t, app, http.MethodPost, "/api/invoices",
		`{"customer":"ACME","salesPerson":"Dana","items":[{"productId":1,"quantity":4}]}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, app, http.MethodGet, "/api/invoices?search=acme", "")
	var list struct {
		Status     string           `json:"status"`
		Data       []models.Invoice `json:"data"`
		Pagination map[string]any   `json:"pagination"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Data) != 1 || !list.Data[0].TotalAmount.Equal(decimal.RequireFromString("5")) {
		t.Fatalf("unexpected list %s", rr.Body.String())
	}

	rr = do(t, app, http.MethodGet, "/api/invoices/revenue?range=month", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"revenue":5`) {
		t.Fatalf("revenue: %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, app, http.MethodGet, "/api/products/1", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"stock":6`) {
		t.Fatalf("product: %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, app, http.MethodGet, "/api/dashboard/summary", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"invoiceCount":1`) {
		t.Fatalf("summary: %d %s", rr.Code, rr.Body.String())
	}
}

func TestRoutingErrors(t *testing.T) {
	app, _ := setupApp(t)
	if rr := do(t, app, http.MethodGet, "/api/invoices/abc", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid id: %d", rr.Code)
	}
	if rr := do(t, app, http.MethodGet, "/api/invoices/42", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("missing invoice: %d", rr.Code)
	}
	rr := do(t, app, http.MethodDelete, "/api/invoices/1", "")
	if rr.Code != http.StatusMethodNotAllowed || rr.Header().Get("Allow") != "GET" {
		t.Fatalf("delete: %d allow=%q", rr.Code, rr.Header().Get("Allow"))
	}
	if !strings.Contains(rr.Body.String(), `"message":"Method not allowed"`) {
		t.Fatalf("delete body: %s", rr.Body.String())
	}
	rr = do(t, app, http.MethodPut, "/api/invoices", "")
	if rr.Code != http.StatusMethodNotAllowed || rr.Header().Get("Allow") != "GET, POST" {
		t.Fatalf("put: %d allow=%q", rr.Code, rr.Header().Get("Allow"))
	}
	rr = do(t, app, http.MethodGet, "/api/nope", "")
	if rr.Code != http.StatusNotFound || !strings.Contains(rr.Body.String(), `"status":"fail"`) {
		t.Fatalf("unknown route: %d %s", rr.Code, rr.Body.String())
	}
}

func TestErrorsAreLocalised(t *testing.T) {
	app, _ := setupApp(t)
	rr := do(t, app, http.MethodGet, "/api/invoices/revenue?range=year&lang=fr", "")
	if rr.Code != http.StatusBadRequest || !strings.Contains(rr.Body.String(), "Utilisez day, week ou month") {
		t.Fatalf("got %d %s", rr.Code, rr.Body.String())
	}
}
