package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/diewo77/go-pos/httpx"
	"github.com/diewo77/go-pos/internal/services"
	"github.com/shopspring/decimal"
)

// ProductHandler serves /api/products. Product payloads are returned bare,
// without the success envelope.
type ProductHandler struct {
	svc *services.ProductService
	log *slog.Logger
}

func NewProductHandler(svc *services.ProductService, log *slog.Logger) *ProductHandler {
	return &ProductHandler{svc: svc, log: log}
}

// Search: GET /api/products/search?q=&limit=
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.Search(r.Context(), r.URL.Query().Get("q"), queryInt(r, "limit"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

// Get: GET /api/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		fail(w, r, http.StatusBadRequest, "invalid_id")
		return
	}
	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

type createProductRequest struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
	Image string          `json:"image"`
}

// Create: POST /api/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.Create(r.Context(), services.CreateProductInput{
		Name: req.Name, Price: req.Price, Stock: req.Stock, Image: req.Image,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.Header().Set("Location", "/api/products/"+strconv.FormatUint(uint64(p.ID), 10))
	httpx.JSON(w, http.StatusCreated, p)
}
