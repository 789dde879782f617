package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts are emitted as JSON numbers, which is what API clients chart and sum.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is an item for sale. Stock is only ever changed through a
// conditional decrement and can never go below zero.
type Product struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name  string          `gorm:"size:255;not null;index" json:"name"`
	Price decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Stock int             `gorm:"not null;default:0;check:chk_products_stock,stock >= 0" json:"stock"`
	Image string          `gorm:"size:500" json:"image,omitempty"`
}

// InStock reports whether qty units can be taken from the product.
func (p *Product) InStock(qty int) bool {
	return qty > 0 && p.Stock >= qty
}
