package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentType is how a sale was settled.
type PaymentType string

const (
	PaymentCash            PaymentType = "CASH"
	PaymentCreditCard      PaymentType = "CREDIT_CARD"
	PaymentNotCashOrCredit PaymentType = "NOT_CASH_OR_CREDIT"
)

// PaymentTypes lists every accepted payment type.
var PaymentTypes = []PaymentType{PaymentCash, PaymentCreditCard, PaymentNotCashOrCredit}

// ParsePaymentType normalises s. An empty value means cash; the legacy
// spelling NOTCASHORCREDIT is still accepted.
func ParsePaymentType(s string) (PaymentType, bool) {
	v := strings.ToUpper(strings.TrimSpace(s))
	switch v {
	case "":
		return PaymentCash, true
	case "NOTCASHORCREDIT":
		return PaymentNotCashOrCredit, true
	}
	for _, pt := range PaymentTypes {
		if string(pt) == v {
			return pt, true
		}
	}
	return "", false
}

// InvoiceStatus represents the status of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// InvoiceStatuses lists the lifecycle in order.
var InvoiceStatuses = []InvoiceStatus{
	InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled,
}

// Invoice is a recorded sale. It is written once, together with its items,
// and never edited afterwards.
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	InvoiceNumber string          `gorm:"size:50;not null;uniqueIndex" json:"invoiceNumber"`
	Date          time.Time       `gorm:"not null;index" json:"date"`
	Customer      string          `gorm:"size:255;not null" json:"customer"`
	SalesPerson   string          `gorm:"size:255;not null" json:"salesPerson"`
	Notes         string          `gorm:"type:text" json:"notes,omitempty"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"totalAmount"`
	PaymentType   PaymentType     `gorm:"size:32;not null" json:"paymentType"`
	Status        InvoiceStatus   `gorm:"size:20;not null;default:'draft'" json:"status"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// ComputeTotal sums the line totals of the loaded items.
func (i *Invoice) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range i.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// InvoiceItem is one product line. UnitPrice is the product price at the
// time of sale, so later price changes leave history untouched.
type InvoiceItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	InvoiceID uint     `gorm:"index;not null" json:"invoiceId"`
	ProductID uint     `gorm:"index;not null" json:"productId"`
	Product   *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"product,omitempty"`

	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unitPrice"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"totalPrice"`
}

// LineTotal calculates quantity × unit price.
func (item *InvoiceItem) LineTotal() decimal.Decimal {
	return item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// InvoiceSequence holds the last value issued by a named counter.
// Incrementing the row locks it until the transaction ends.
type InvoiceSequence struct {
	Name      string `gorm:"primaryKey;size:32"`
	Value     int64  `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// All returns every model in migration order.
func All() []any {
	return []any{&Product{}, &Invoice{}, &InvoiceItem{}, &InvoiceSequence{}}
}
