package product

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("invalid product")
)

type Category string

const (
	HumanNutrition   Category = "human-nutrition"
	AnimalNutrition  Category = "animal-nutrition"
	ConsumerProducts Category = "consumer-products"
)

// Categories lists the known categories in display order.
var Categories = []Category{HumanNutrition, AnimalNutrition, ConsumerProducts}

func (c Category) Valid() bool {
	switch c {
	case HumanNutrition, AnimalNutrition, ConsumerProducts:
		return true
	}
	return false
}

// DateLayout is the layout used for expiry dates.
const DateLayout = "2006-01-02"

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    Category        `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	Rating      float64         `json:"rating"`
	Stock       int             `json:"stock"`
	ExpiryDate  string          `json:"expiryDate,omitempty"`
}

// Expiry parses ExpiryDate. Both plain dates and RFC 3339 timestamps are
// accepted; ok is false when the field is empty or unparseable.
func (p Product) Expiry() (time.Time, bool) {
	if p.ExpiryDate == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, p.ExpiryDate); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, p.ExpiryDate); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Validate is applied to every upsert.
func (p Product) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidProduct)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	}
	if !p.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidProduct, p.Category)
	}
	if p.ExpiryDate != "" {
		if _, ok := p.Expiry(); !ok {
			return fmt.Errorf("%w: bad expiry date %q", ErrInvalidProduct, p.ExpiryDate)
		}
	}
	return nil
}

// repair fixes a record read back from storage. Records without an id
// cannot be addressed and are reported as unusable.
func repair(p Product) (Product, bool) {
	if strings.TrimSpace(p.ID) == "" {
		return p, false
	}
	if p.Price.IsNegative() {
		p.Price = decimal.Zero
	}
	if p.Stock < 0 {
		p.Stock = 0
	}
	return p, true
}
