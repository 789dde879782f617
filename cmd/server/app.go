package main

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/diewo77/go-pos/httpx"
	"github.com/diewo77/go-pos/i18n"
	"github.com/diewo77/go-pos/internal/config"
	"github.com/diewo77/go-pos/internal/db"
	"github.com/diewo77/go-pos/internal/handlers"
	"github.com/diewo77/go-pos/internal/middleware"
	"github.com/diewo77/go-pos/internal/services"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux     *http.ServeMux
	handler http.Handler
	db      *gorm.DB
	log     *slog.Logger

	invoices  *handlers.InvoiceHandler
	products  *handlers.ProductHandler
	dashboard *handlers.DashboardHandler
}

// NewApp wires services and handlers onto db.
func NewApp(gdb *gorm.DB, cfg *config.Config, log *slog.Logger) *App {
	products := services.NewProductService(gdb)
	runner := db.NewTxRunner(gdb, cfg.Database.TxAttempts, cfg.Database.TxBackoff, log)
	invoices := services.NewInvoiceService(runner, products, services.NewNumberGenerator(nil), nil, log)
	revenue := services.NewRevenueService(gdb, products, cfg.App.LowStockThreshold)

	app := &App{
		mux:       http.NewServeMux(),
		db:        gdb,
		log:       log,
		invoices:  handlers.NewInvoiceHandler(invoices, revenue, log),
		products:  handlers.NewProductHandler(products, log),
		dashboard: handlers.NewDashboardHandler(revenue, log),
	}
	app.setupRoutes()
	app.handler = middleware.Chain(http.HandlerFunc(app.route),
		middleware.Recover(log),
		middleware.RequestID,
		middleware.Logging(log),
		middleware.Lang,
		middleware.Timeout(time.Duration(cfg.Server.RequestTimeout)*time.Second),
	)
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// route dispatches to the mux and answers unmatched requests with the JSON
// error envelope instead of the mux's plain-text 404/405.
func (a *App) route(w http.ResponseWriter, r *http.Request) {
	if _, pattern := a.mux.Handler(r); pattern != "" {
		a.mux.ServeHTTP(w, r)
		return
	}
	var allow []string
	for _, m := range []string{http.MethodGet, http.MethodPost} {
		alt := r.Clone(r.Context())
		alt.Method = m
		if _, pattern := a.mux.Handler(alt); pattern != "" {
			allow = append(allow, m)
		}
	}
	lang := i18n.LangFrom(r.Context())
	if len(allow) > 0 {
		w.Header().Set("Allow", strings.Join(allow, ", "))
		httpx.JSONError(w, http.StatusMethodNotAllowed, i18n.T(lang, "method_not_allowed"), nil)
		return
	}
	httpx.JSONError(w, http.StatusNotFound, i18n.T(lang, "not_found"), nil)
}

func (a *App) setupRoutes() {
	a.mux.HandleFunc("GET /health", a.health)
	a.mux.HandleFunc("GET /healthz", a.healthz)

	// Invoices. The literal "revenue" segment wins over {id}.
	ih := a.invoices
	a.mux.HandleFunc("POST /api/invoices", ih.Create)
	a.mux.HandleFunc("GET /api/invoices", ih.List)
	a.mux.HandleFunc("GET /api/invoices/revenue", ih.Revenue)
	a.mux.HandleFunc("GET /api/invoices/{id}", ih.Get)

	// Products
	ph := a.products
	a.mux.HandleFunc("GET /api/products/search", ph.Search)
	a.mux.HandleFunc("GET /api/products/{id}", ph.Get)
	a.mux.HandleFunc("POST /api/products", ph.Create)

	a.mux.HandleFunc("GET /api/dashboard/summary", a.dashboard.Summary)
}

func (a *App) health(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) healthz(w http.ResponseWriter, r *http.Request) {
	if err := db.Ping(r.Context(), a.db); err != nil {
		a.log.Warn("health check failed", "err", err)
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
