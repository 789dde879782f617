package handlers

import (
	"log/slog"
	"net/http"

	"github.com/diewo77/go-pos/httpx"
	"github.com/diewo77/go-pos/internal/services"
)

type DashboardHandler struct {
	revenue *services.RevenueService
	log     *slog.Logger
}

func NewDashboardHandler(revenue *services.RevenueService, log *slog.Logger) *DashboardHandler {
	return &DashboardHandler{revenue: revenue, log: log}
}

// Summary: GET /api/dashboard/summary
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.revenue.Summary(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.Success(w, http.StatusOK, s)
}
