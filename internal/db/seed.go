package db

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/diewo77/go-pos/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	seedDesignProducts = []string{
		"UI/UX Design Package", "Logo Design", "Brand Identity Kit", "Website Redesign",
		"Mobile App Design", "Social Media Graphics", "Print Design (Brochures, Flyers)",
		"Presentation Design", "Icon Set", "Illustration Pack",
	}
	seedSoftwareProducts = []string{
		"Web Application Development", "Mobile App Development", "E-commerce Website",
		"Custom CMS", "API Development", "Database Design", "Cloud Migration",
		"DevOps Setup", "Progressive Web App", "Chatbot Development",
	}
	seedCustomers = []string{
		"Acme Corp", "Globex Corporation", "Soylent Corp", "Initech", "Umbrella Corporation",
		"Wonka Industries", "Stark Industries", "Wayne Enterprises", "Cyberdyne Systems",
		"Olivia Pope & Associates",
	}
	seedSalesPeople = []string{
		"John Smith", "Sarah Johnson", "Michael Brown", "Emily Davis", "Robert Wilson", "Jennifer Lee",
	}
	seedNotes = []string{
		"Delivered on site.", "Customer asked for a follow-up call.", "Gift wrapping requested.",
	}
)

// SeedOptions tunes the demo data set.
type SeedOptions struct {
	Invoices int
	Now      time.Time
	Seed     uint64
}

// Seed fills an empty database with demo products and invoices spread over
// the last three months. It does nothing when products already exist.
func Seed(ctx context.Context, db *gorm.DB, opts SeedOptions) error {
	if opts.Invoices == 0 {
		opts.Invoices = 50
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	var count int64
	if err := db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := make([]models.Product, 0, len(seedDesignProducts)+len(seedSoftwareProducts))
		for _, name := range seedDesignProducts {
			products = append(products, seedProduct(rng, name, 5, 100, 100))
		}
		for _, name := range seedSoftwareProducts {
			products = append(products, seedProduct(rng, name, 1, 50, 500))
		}
		if err := tx.Create(&products).Error; err != nil {
			return fmt.Errorf("seed products: %w", err)
		}

		from := opts.Now.AddDate(0, -3, 0)
		span := opts.Now.Sub(from)
		dates := make([]time.Time, opts.Invoices)
		for i := range dates {
			dates[i] = from.Add(time.Duration(rng.Int64N(int64(span))))
		}
		slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })

		for i, date := range dates {
			inv := models.Invoice{
				InvoiceNumber: fmt.Sprintf("INV-%s-%04d", date.Format("0601"), i+1),
				Date:          date,
				Customer:      pick(rng, seedCustomers),
				SalesPerson:   pick(rng, seedSalesPeople),
				PaymentType:   pick(rng, models.PaymentTypes),
				Status:        pick(rng, models.InvoiceStatuses),
				CreatedAt:     date,
				UpdatedAt:     date,
			}
			if rng.IntN(10) < 3 {
				inv.Notes = pick(rng, seedNotes)
			}
			for _, idx := range rng.Perm(len(products))[:1+rng.IntN(5)] {
				p := &products[idx]
				if p.Stock == 0 {
					continue
				}
				qty := min(1+rng.IntN(5), p.Stock)
				p.Stock -= qty
				inv.Items = append(inv.Items, models.InvoiceItem{
					ProductID:  p.ID,
					Quantity:   qty,
					UnitPrice:  p.Price,
					TotalPrice: p.Price.Mul(decimal.NewFromInt(int64(qty))),
					CreatedAt:  date,
					UpdatedAt:  date,
				})
			}
			if len(inv.Items) == 0 {
				continue
			}
			inv.TotalAmount = inv.ComputeTotal()
			if err := tx.Create(&inv).Error; err != nil {
				return fmt.Errorf("seed invoice %s: %w", inv.InvoiceNumber, err)
			}
		}

		for _, p := range products {
			if err := tx.Model(&models.Product{}).Where("id = ?", p.ID).UpdateColumn("stock", p.Stock).Error; err != nil {
				return fmt.Errorf("seed stock: %w", err)
			}
		}
		return nil
	})
}

func seedProduct(rng *rand.Rand, name string, minStock, maxStock, minPrice int) models.Product {
	return models.Product{
		Name:  name,
		Image: fmt.Sprintf("https://picsum.photos/seed/%d/400/300", rng.IntN(1000)),
		Stock: minStock + rng.IntN(maxStock-minStock+1),
		Price: decimal.NewFromInt(int64(minPrice + rng.IntN(10000-minPrice+1))),
	}
}

func pick[T any](rng *rand.Rand, xs []T) T {
	return xs[rng.IntN(len(xs))]
}
