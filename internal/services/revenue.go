package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/diewo77/go-pos/internal/models"
	"github.com/diewo77/go-pos/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Range is the width of a revenue bucket.
type Range string

const (
	RangeDay   Range = "day"
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
)

// ParseRange accepts day, week or month; empty means day.
func ParseRange(s string) (Range, error) {
	switch r := Range(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return RangeDay, nil
	case RangeDay, RangeWeek, RangeMonth:
		return r, nil
	default:
		return "", ValidationError("invalid_range", validation.Violations{"range": "invalid_choice"})
	}
}

// Truncate returns the start of the bucket holding t, in UTC. Weeks start
// on Monday.
func (r Range) Truncate(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch r {
	case RangeWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case RangeMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

// Next returns the start of the bucket after the one starting at t.
func (r Range) Next(t time.Time) time.Time {
	switch r {
	case RangeWeek:
		return t.AddDate(0, 0, 7)
	case RangeMonth:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// Bucket is the revenue of one period.
type Bucket struct {
	Date    time.Time       `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
}

// RevenueParams selects the bucket width and whether empty buckets between
// the first and last sale are reported as zero.
type RevenueParams struct {
	Range Range
	Dense bool
}

// RevenueService reports sales totals.
type RevenueService struct {
	db                *gorm.DB
	products          *ProductService
	lowStockThreshold int
}

func NewRevenueService(db *gorm.DB, products *ProductService, lowStockThreshold int) *RevenueService {
	return &RevenueService{db: db, products: products, lowStockThreshold: lowStockThreshold}
}

// Revenue sums invoice totals per bucket, oldest bucket first.
func (s *RevenueService) Revenue(ctx context.Context, p RevenueParams) ([]Bucket, error) {
	rng, err := ParseRange(string(p.Range))
	if err != nil {
		return nil, err
	}
	var buckets []Bucket
	if s.db.Dialector.Name() == "postgres" {
		buckets, err = s.revenueSQL(ctx, rng)
	} else {
		buckets, err = s.revenueScan(ctx, rng)
	}
	if err != nil {
		return nil, Unexpected(err)
	}
	if p.Dense {
		buckets = densify(buckets, rng)
	}
	return buckets, nil
}

func (s *RevenueService) revenueSQL(ctx context.Context, rng Range) ([]Bucket, error) {
	var rows []struct {
		Bucket  time.Time
		Revenue decimal.Decimal
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT DATE_TRUNC(?, date AT TIME ZONE 'UTC') AS bucket, SUM(total_amount) AS revenue
		FROM invoices GROUP BY 1 ORDER BY 1`, string(rng)).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("revenue by %s: %w", rng, err)
	}
	out := make([]Bucket, 0, len(rows))
	for _, r := range rows {
		b := r.Bucket
		out = append(out, Bucket{
			Date:    time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC),
			Revenue: r.Revenue.Round(2),
		})
	}
	return out, nil
}

// revenueScan buckets in Go for dialects without DATE_TRUNC.
func (s *RevenueService) revenueScan(ctx context.Context, rng Range) ([]Bucket, error) {
	rows, err := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Select("date, total_amount").Order("date ASC").Rows()
	if err != nil {
		return nil, fmt.Errorf("revenue by %s: %w", rng, err)
	}
	defer rows.Close()

	var out []Bucket
	for rows.Next() {
		var (
			date  time.Time
			total decimal.Decimal
		)
		if err := rows.Scan(&date, &total); err != nil {
			return nil, err
		}
		start := rng.Truncate(date)
		if n := len(out); n > 0 && out[n-1].Date.Equal(start) {
			out[n-1].Revenue = out[n-1].Revenue.Add(total)
			continue
		}
		out = append(out, Bucket{Date: start, Revenue: total})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Revenue = out[i].Revenue.Round(2)
	}
	if out == nil {
		out = []Bucket{}
	}
	return out, nil
}

// densify inserts zero buckets for every gap between the first and last
// bucket. buckets must be sorted.
func densify(buckets []Bucket, rng Range) []Bucket {
	if len(buckets) < 2 {
		return buckets
	}
	out := make([]Bucket, 0, len(buckets))
	i := 0
	last := buckets[len(buckets)-1].Date
	for t := buckets[0].Date; !t.After(last); t = rng.Next(t) {
		if i < len(buckets) && buckets[i].Date.Equal(t) {
			out = append(out, buckets[i])
			i++
			continue
		}
		out = append(out, Bucket{Date: t, Revenue: decimal.Zero})
	}
	return out
}

// Summary holds the dashboard totals.
type Summary struct {
	TotalRevenue   decimal.Decimal  `json:"totalRevenue"`
	InvoiceCount   int64            `json:"invoiceCount"`
	AverageInvoice decimal.Decimal  `json:"averageInvoice"`
	ProductCount   int64            `json:"productCount"`
	LowStock       []models.Product `json:"lowStock"`
}

// Summary computes the dashboard totals.
func (s *RevenueService) Summary(ctx context.Context) (*Summary, error) {
	var agg struct {
		Total decimal.Decimal
		Count int64
	}
	err := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Select("COALESCE(SUM(total_amount), 0) AS total, COUNT(*) AS count").
		Scan(&agg).Error
	if err != nil {
		return nil, Unexpected(err)
	}
	productCount, err := s.products.Count(ctx)
	if err != nil {
		return nil, err
	}
	low, err := s.products.LowStock(ctx, s.lowStockThreshold, maxLimit)
	if err != nil {
		return nil, err
	}
	sum := &Summary{
		TotalRevenue:   agg.Total.Round(2),
		InvoiceCount:   agg.Count,
		AverageInvoice: decimal.Zero,
		ProductCount:   productCount,
		LowStock:       low,
	}
	if agg.Count > 0 {
		sum.AverageInvoice = agg.Total.DivRound(decimal.NewFromInt(agg.Count), 2)
	}
	return sum, nil
}
