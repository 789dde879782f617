package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/go-pos/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const invoiceCounter = "invoice"

// maxNumberSkips bounds how far Next walks past numbers that already exist.
const maxNumberSkips = 1000

// NumberGenerator issues invoice numbers of the form INV-YYMM-NNNN.
// Numbers are reserved inside the caller's transaction, so a rolled back
// invoice gives its number back and two committed invoices never share one.
type NumberGenerator struct {
	now func() time.Time
}

func NewNumberGenerator(now func() time.Time) *NumberGenerator {
	if now == nil {
		now = time.Now
	}
	return &NumberGenerator{now: now}
}

// Next reserves the next number. tx must be an open transaction.
func (g *NumberGenerator) Next(tx *gorm.DB) (string, error) {
	if err := ensureCounter(tx); err != nil {
		return "", err
	}
	now := g.now()
	for range maxNumberSkips {
		seq, err := increment(tx)
		if err != nil {
			return "", err
		}
		number := FormatNumber(now, seq)
		var taken int64
		if err := tx.Model(&models.Invoice{}).Where("invoice_number = ?", number).Count(&taken).Error; err != nil {
			return "", err
		}
		if taken == 0 {
			return number, nil
		}
	}
	return "", errors.New("invoice number space exhausted")
}

// ensureCounter creates the counter row on first use, continuing from the
// sequence of the most recently created invoice.
func ensureCounter(tx *gorm.DB) error {
	var n int64
	if err := tx.Model(&models.InvoiceSequence{}).Where("name = ?", invoiceCounter).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var start int64
	var last models.Invoice
	err := tx.Select("invoice_number").Order("id DESC").Take(&last).Error
	switch {
	case err == nil:
		if seq, ok := ParseSequence(last.InvoiceNumber); ok {
			start = seq
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.InvoiceSequence{Name: invoiceCounter, Value: start}).Error
}

func increment(tx *gorm.DB) (int64, error) {
	res := tx.Model(&models.InvoiceSequence{}).
		Where("name = ?", invoiceCounter).
		UpdateColumn("value", gorm.Expr("value + ?", 1))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected != 1 {
		return 0, fmt.Errorf("invoice counter missing")
	}
	var seq models.InvoiceSequence
	if err := tx.Where("name = ?", invoiceCounter).Take(&seq).Error; err != nil {
		return 0, err
	}
	return seq.Value, nil
}

// FormatNumber renders seq for the month of t.
func FormatNumber(t time.Time, seq int64) string {
	return fmt.Sprintf("INV-%s-%04d", t.UTC().Format("0601"), seq)
}

// ParseSequence extracts the counter from the third dash-separated part of
// an invoice number. ok is false for anything that is not a positive integer.
func ParseSequence(number string) (int64, bool) {
	parts := strings.Split(number, "-")
	if len(parts) < 3 {
		return 0, false
	}
	seq, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || seq <= 0 {
		return 0, false
	}
	return seq, true
}
