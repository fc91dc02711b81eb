package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

// Statuses lists every order status in lifecycle order.
var Statuses = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrInvalidOrder  = errors.New("invalid order")
	ErrInvalidStatus = errors.New("invalid order status")
)

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Eligible reports whether an order in this status counts toward loyalty.
func (s Status) Eligible() bool {
	return s.Valid() && s != StatusCancelled
}

// PaymentCashOnDelivery is the stored label for the only accepted method.
const PaymentCashOnDelivery = "Cash on Delivery"

type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
}

// LineTotal is price times quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID            string          `json:"id"`
	CustomerName  string          `json:"customerName"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	Address       string          `json:"address"`
	Pincode       string          `json:"pincode"`
	Items         []Item          `json:"items"`
	Total         decimal.Decimal `json:"total"`
	Discount      decimal.Decimal `json:"discount"`
	PaymentMethod string          `json:"paymentMethod"`
	Status        Status          `json:"status"`
	Date          time.Time       `json:"date"`
}

// Subtotal sums the line items before discount.
func (o Order) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

// HasDiscount reports whether a loyalty discount was applied.
func (o Order) HasDiscount() bool {
	return o.Discount.IsPositive()
}

// BelongsTo compares emails case-insensitively.
func (o Order) BelongsTo(email string) bool {
	return strings.EqualFold(strings.TrimSpace(o.Email), strings.TrimSpace(email))
}

// NewID returns an opaque order id such as ORD-3FA2C1.
func NewID() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "ORD-" + strings.ToUpper(hex[:6])
}

// Validate is applied on insert.
func (o Order) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidOrder)
	}
	if len(o.Items) == 0 {
		return fmt.Errorf("%w: order must have at least one item", ErrInvalidOrder)
	}
	for _, it := range o.Items {
		if it.Quantity < 1 {
			return fmt.Errorf("%w: item %s has quantity %d", ErrInvalidOrder, it.ProductID, it.Quantity)
		}
		if it.Price.IsNegative() {
			return fmt.Errorf("%w: item %s has negative price", ErrInvalidOrder, it.ProductID)
		}
	}
	if o.Discount.IsNegative() || o.Total.IsNegative() {
		return fmt.Errorf("%w: amounts must not be negative", ErrInvalidOrder)
	}
	if !o.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, o.Status)
	}
	return nil
}

// usable filters records read back from storage.
func usable(o Order) bool {
	return strings.TrimSpace(o.ID) != "" && len(o.Items) > 0
}
