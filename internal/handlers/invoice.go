package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/diewo77/go-pos/httpx"
	"github.com/diewo77/go-pos/internal/models"
	"github.com/diewo77/go-pos/internal/services"
)

// InvoiceHandler serves /api/invoices.
type InvoiceHandler struct {
	svc     *services.InvoiceService
	revenue *services.RevenueService
	log     *slog.Logger
}

func NewInvoiceHandler(svc *services.InvoiceService, revenue *services.RevenueService, log *slog.Logger) *InvoiceHandler {
	return &InvoiceHandler{svc: svc, revenue: revenue, log: log}
}

type invoiceItemRequest struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
	// UnitPrice is accepted for compatibility; the catalogue price is charged.
	UnitPrice *float64 `json:"unitPrice,omitempty"`
}

type createInvoiceRequest struct {
	Customer    string               `json:"customer"`
	SalesPerson string               `json:"salesPerson"`
	Notes       string               `json:"notes"`
	PaymentType string               `json:"paymentType"`
	Items       []invoiceItemRequest `json:"items"`
}

type invoiceData struct {
	Invoice *models.Invoice `json:"invoice"`
}

// Create: POST /api/invoices
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in := services.CreateInvoiceInput{
		Customer:    req.Customer,
		SalesPerson: req.SalesPerson,
		Notes:       req.Notes,
		PaymentType: req.PaymentType,
		Items:       make([]services.ItemInput, 0, len(req.Items)),
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, services.ItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	inv, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.Header().Set("Location", "/api/invoices/"+strconv.FormatUint(uint64(inv.ID), 10))
	httpx.Success(w, http.StatusCreated, invoiceData{Invoice: inv})
}

// List: GET /api/invoices?page=&limit=&search=
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := q.Get("search")
	if search == "" {
		search = q.Get("q")
	}
	page, err := h.svc.List(r.Context(), services.ListParams{
		Page:   queryInt(r, "page"),
		Limit:  queryInt(r, "limit"),
		Search: search,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.Page(w, page.Invoices, page.Pagination)
}

// Get: GET /api/invoices/{id}
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		fail(w, r, http.StatusBadRequest, "invalid_id")
		return
	}
	inv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.Success(w, http.StatusOK, invoiceData{Invoice: inv})
}

// Revenue: GET /api/invoices/revenue?range=day|week|month&dense=true
func (h *InvoiceHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rng, err := services.ParseRange(q.Get("range"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	dense, _ := strconv.ParseBool(q.Get("dense"))
	buckets, err := h.revenue.Revenue(r.Context(), services.RevenueParams{Range: rng, Dense: dense})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.Success(w, http.StatusOK, buckets)
}
