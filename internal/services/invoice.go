package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/diewo77/go-pos/internal/db"
	"github.com/diewo77/go-pos/internal/models"
	"github.com/diewo77/go-pos/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceService creates and reads invoices.
type InvoiceService struct {
	db       *gorm.DB
	tx       *db.TxRunner
	products *ProductService
	numbers  *NumberGenerator
	now      func() time.Time
	log      *slog.Logger
}

// NewInvoiceService wires the invoice workflow. now may be nil.
func NewInvoiceService(tx *db.TxRunner, products *ProductService, numbers *NumberGenerator, now func() time.Time, log *slog.Logger) *InvoiceService {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &InvoiceService{db: tx.DB(), tx: tx, products: products, numbers: numbers, now: now, log: log}
}

// ItemInput is one requested line.
type ItemInput struct {
	ProductID uint
	Quantity  int
}

// CreateInvoiceInput is an invoice draft.
type CreateInvoiceInput struct {
	Customer    string
	SalesPerson string
	Notes       string
	PaymentType string
	Items       []ItemInput
}

// demand is the total quantity requested per product, in first-seen order.
type demand struct {
	ids []uint
	qty map[uint]int
}

func (in *CreateInvoiceInput) validate() (models.PaymentType, demand, error) {
	in.Customer = strings.TrimSpace(in.Customer)
	in.SalesPerson = strings.TrimSpace(in.SalesPerson)
	in.Notes = strings.TrimSpace(in.Notes)

	v := make(validation.Violations)
	validation.Required("customer", in.Customer, v)
	validation.MaxLen("customer", in.Customer, 255, v)
	validation.Required("salesPerson", in.SalesPerson, v)
	validation.MaxLen("salesPerson", in.SalesPerson, 255, v)
	pt, ok := models.ParsePaymentType(in.PaymentType)
	if !ok {
		v["paymentType"] = "invalid_choice"
	}
	if len(in.Items) == 0 {
		v["items"] = "required"
	}
	d := demand{qty: make(map[uint]int, len(in.Items))}
	for i, it := range in.Items {
		if it.ProductID == 0 {
			v[fmt.Sprintf("items[%d].productId", i)] = "required"
		}
		validation.PositiveInt(fmt.Sprintf("items[%d].quantity", i), it.Quantity, v)
		if it.ProductID == 0 || it.Quantity <= 0 {
			continue
		}
		if _, seen := d.qty[it.ProductID]; !seen {
			d.ids = append(d.ids, it.ProductID)
		}
		if d.qty[it.ProductID] > math.MaxInt32-it.Quantity {
			v[fmt.Sprintf("items[%d].quantity", i)] = "out_of_range"
			continue
		}
		d.qty[it.ProductID] += it.Quantity
	}
	if !v.Empty() {
		return "", demand{}, ValidationError("validation_failed", v)
	}
	return pt, d, nil
}

// Create records a sale. It either persists the invoice, its items and the
// stock decrements together, or nothing at all.
func (s *InvoiceService) Create(ctx context.Context, in CreateInvoiceInput) (*models.Invoice, error) {
	pt, d, err := in.validate()
	if err != nil {
		return nil, err
	}

	// Fail fast on the snapshot; the transaction re-checks under lock.
	snapshot, err := s.products.GetMany(ctx, d.ids)
	if err != nil {
		return nil, Unexpected(err)
	}
	for _, id := range d.ids {
		p, ok := snapshot[id]
		if !ok {
			return nil, productNotFound(id)
		}
		if !p.InStock(d.qty[id]) {
			return nil, StockError(StockDetails{ProductID: id, Product: p.Name, Remaining: p.Stock, Requested: d.qty[id]})
		}
	}

	var inv models.Invoice
	err = s.tx.Run(ctx, func(tx *gorm.DB) error {
		number, err := s.numbers.Next(tx)
		if err != nil {
			return fmt.Errorf("invoice number: %w", err)
		}
		for _, id := range d.ids {
			if err := s.products.DecrementStock(tx, id, d.qty[id]); err != nil {
				return err
			}
		}
		var locked []models.Product
		if err := tx.Where("id IN ?", d.ids).Find(&locked).Error; err != nil {
			return err
		}
		prices := make(map[uint]decimal.Decimal, len(locked))
		for _, p := range locked {
			prices[p.ID] = p.Price
		}

		inv = models.Invoice{
			InvoiceNumber: number,
			Date:          s.now().UTC(),
			Customer:      in.Customer,
			SalesPerson:   in.SalesPerson,
			Notes:         in.Notes,
			PaymentType:   pt,
			Status:        models.InvoiceStatusPaid,
			Items:         make([]models.InvoiceItem, 0, len(in.Items)),
		}
		for _, it := range in.Items {
			item := models.InvoiceItem{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: prices[it.ProductID]}
			item.TotalPrice = item.LineTotal()
			inv.Items = append(inv.Items, item)
		}
		inv.TotalAmount = inv.ComputeTotal()
		return tx.Create(&inv).Error
	})
	if err != nil {
		var ae *AppError
		if errors.As(err, &ae) {
			return nil, ae
		}
		return nil, Unexpected(err)
	}

	s.log.Info("invoice created",
		"invoice_id", inv.ID,
		"number", inv.InvoiceNumber,
		"total", inv.TotalAmount.StringFixed(2),
		"items", len(inv.Items),
	)
	// The sale is committed; a cancelled request must not turn it into an error.
	out, err := s.Get(context.WithoutCancel(ctx), inv.ID)
	if err != nil {
		s.log.Warn("reload created invoice", "invoice_id", inv.ID, "err", err)
		return &inv, nil
	}
	return out, nil
}

// Get returns an invoice with its items and their products.
func (s *InvoiceService) Get(ctx context.Context, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		Preload("Items.Product").
		First(&inv, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("invoice_not_found", "Invoice not found")
		}
		return nil, Unexpected(err)
	}
	return &inv, nil
}

// ListParams selects a page of invoices.
type ListParams struct {
	Page   int
	Limit  int
	Search string
}

// Pagination describes where a page sits in the full result.
type Pagination struct {
	CurrentPage     int   `json:"currentPage"`
	Limit           int   `json:"limit"`
	TotalItems      int64 `json:"totalItems"`
	TotalPages      int   `json:"totalPages"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// InvoicePage is one page of invoices, newest first.
type InvoicePage struct {
	Invoices   []models.Invoice
	Pagination Pagination
}

// List returns a page of invoices, optionally filtered by a search term
// matched against number, customer and salesperson.
func (s *InvoiceService) List(ctx context.Context, p ListParams) (*InvoicePage, error) {
	limit := clampLimit(p.Limit)
	page := min(max(p.Page, 1), maxPage)
	search := func(tx *gorm.DB) *gorm.DB {
		term := strings.TrimSpace(p.Search)
		if term == "" {
			return tx
		}
		like := containsPattern(term)
		esc := " LIKE ? ESCAPE '" + likeEscape + "'"
		return tx.Where("LOWER(invoice_number)"+esc+" OR LOWER(customer)"+esc+" OR LOWER(sales_person)"+esc, like, like, like)
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Invoice{}).Scopes(search).Count(&total).Error; err != nil {
		return nil, Unexpected(err)
	}
	invoices := []models.Invoice{}
	offset := (page - 1) * limit
	if int64(offset) >= total {
		return newInvoicePage(invoices, page, limit, total), nil
	}
	err := s.db.WithContext(ctx).
		Scopes(search).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		Preload("Items.Product").
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&invoices).Error
	if err != nil {
		return nil, Unexpected(err)
	}
	return newInvoicePage(invoices, page, limit, total), nil
}

func newInvoicePage(invoices []models.Invoice, page, limit int, total int64) *InvoicePage {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &InvoicePage{
		Invoices: invoices,
		Pagination: Pagination{
			CurrentPage:     page,
			Limit:           limit,
			TotalItems:      total,
			TotalPages:      totalPages,
			HasNextPage:     page < totalPages,
			HasPreviousPage: page > 1,
		},
	}
}
