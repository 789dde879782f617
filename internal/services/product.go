package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/diewo77/go-pos/internal/models"
	"github.com/diewo77/go-pos/validation"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// prefetchConcurrency bounds parallel product lookups per request.
const prefetchConcurrency = 8

// ProductService is the product store.
type ProductService struct {
	db *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

// Search returns products whose name contains q, case-insensitively,
// ordered by name.
func (s *ProductService) Search(ctx context.Context, q string, limit int) ([]models.Product, error) {
	dbq := s.db.WithContext(ctx).Model(&models.Product{})
	if q = strings.TrimSpace(q); q != "" {
		dbq = dbq.Where("LOWER(name) LIKE ? ESCAPE '"+likeEscape+"'", containsPattern(q))
	}
	products := []models.Product{}
	if err := dbq.Order("name ASC").Order("id ASC").Limit(clampLimit(limit)).Find(&products).Error; err != nil {
		return nil, Unexpected(err)
	}
	return products, nil
}

// Get returns one product.
func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, productNotFound(id)
		}
		return nil, Unexpected(err)
	}
	return &p, nil
}

// CreateProductInput is a new catalogue entry.
type CreateProductInput struct {
	Name  string
	Price decimal.Decimal
	Stock int
	Image string
}

// Create adds a product to the catalogue.
func (s *ProductService) Create(ctx context.Context, in CreateProductInput) (*models.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	validation.MaxLen("name", in.Name, 255, v)
	validation.PositiveDecimal("price", in.Price, v)
	validation.NonNegativeInt("stock", in.Stock, v)
	validation.MaxLen("image", in.Image, 500, v)
	if !v.Empty() {
		return nil, ValidationError("validation_failed", v)
	}

	p := models.Product{Name: in.Name, Price: in.Price.Round(2), Stock: in.Stock, Image: strings.TrimSpace(in.Image)}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, Unexpected(err)
	}
	return &p, nil
}

// GetMany loads the given products concurrently. Unknown ids are simply
// absent from the result.
func (s *ProductService) GetMany(ctx context.Context, ids []uint) (map[uint]models.Product, error) {
	out := make(map[uint]models.Product, len(ids))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(prefetchConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			var p models.Product
			err := s.db.WithContext(gctx).Take(&p, id).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("load product %d: %w", id, err)
			}
			mu.Lock()
			out[id] = p
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// DecrementStock takes qty units from a product inside tx. The update only
// applies when enough stock is left, so concurrent sales cannot overdraw.
func (s *ProductService) DecrementStock(tx *gorm.DB, id uint, qty int) error {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}
	var p models.Product
	if err := tx.Take(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return productNotFound(id)
		}
		return err
	}
	return StockError(StockDetails{ProductID: p.ID, Product: p.Name, Remaining: p.Stock, Requested: qty})
}

// LowStock lists products at or below threshold, lowest stock first.
func (s *ProductService) LowStock(ctx context.Context, threshold, limit int) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.WithContext(ctx).
		Where("stock <= ?", threshold).
		Order("stock ASC").Order("name ASC").
		Limit(clampLimit(limit)).
		Find(&products).Error
	if err != nil {
		return nil, Unexpected(err)
	}
	return products, nil
}

// Count returns the catalogue size.
func (s *ProductService) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Count(&n).Error; err != nil {
		return 0, Unexpected(err)
	}
	return n, nil
}

func productNotFound(id uint) *AppError {
	return NotFoundError("product_not_found", fmt.Sprintf("Product %d not found", id))
}
