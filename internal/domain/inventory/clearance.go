package inventory

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"github.com/GarimaGupta40/Main-Intercorp/internal/admin"
	"github.com/GarimaGupta40/Main-Intercorp/internal/domain/product"
)

var ErrInvalidPercent = errors.New("discount percent must be between 1 and 99")

// Catalog is the subset of product.Catalog clearance needs.
type Catalog interface {
	Get(ctx context.Context, id string) (product.Product, error)
	Upsert(ctx context.Context, p product.Product) error
}

type Clearance struct {
	catalog  Catalog
	activity admin.Recorder
}

func NewClearance(catalog Catalog, activity admin.Recorder) *Clearance {
	return &Clearance{catalog: catalog, activity: activity}
}

// MarkdownPrice reduces price by percent and rounds to a whole rupee.
func MarkdownPrice(price decimal.Decimal, percent int) decimal.Decimal {
	factor := decimal.NewFromInt(int64(100 - percent)).Div(decimal.NewFromInt(100))
	return price.Mul(factor).Round(0)
}

// ApplyClearance permanently marks a product down by percent and records
// the change in the activity log.
func (c *Clearance) ApplyClearance(ctx context.Context, productID string, percent int) (product.Product, error) {
	if percent <= 0 || percent >= 100 {
		return product.Product{}, ErrInvalidPercent
	}

	p, err := c.catalog.Get(ctx, productID)
	if err != nil {
		return product.Product{}, err
	}

	p.Price = MarkdownPrice(p.Price, percent)
	if err := c.catalog.Upsert(ctx, p); err != nil {
		return product.Product{}, fmt.Errorf("failed to save discounted price: %w", err)
	}

	if c.activity != nil {
		msg := fmt.Sprintf("Applied %d%% discount to %s. New price: ₹%s", percent, p.Name, p.Price.String())
		if _, err := c.activity.Append(ctx, admin.ActivityDiscount, msg); err != nil {
			log.Printf("[Inventory] Failed to record clearance for %s: %v", p.ID, err)
		}
	}
	return p, nil
}
