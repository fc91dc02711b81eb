package loyalty

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/GarimaGupta40/Main-Intercorp/internal/admin"
	"github.com/GarimaGupta40/Main-Intercorp/internal/domain/order"
	"github.com/GarimaGupta40/Main-Intercorp/internal/infrastructure/store"
)

// CouponCode is the value stored under an active coupon key.
const CouponCode = "LOYALTY15"

// DefaultPercent is the discount granted by a coupon.
const DefaultPercent = 15

// OrderLister is the read side of order.Store.
type OrderLister interface {
	List(ctx context.Context) ([]order.Order, error)
}

// Engine grants a single-use coupon every time a customer's eligible order
// count reaches a new even milestone.
type Engine struct {
	kv       store.Store
	orders   OrderLister
	activity admin.Recorder
	percent  int
	mu       sync.Mutex
}

// NewEngine wires the engine. activity may be nil; percent <= 0 selects
// DefaultPercent.
func NewEngine(kv store.Store, orders OrderLister, activity admin.Recorder, percent int) *Engine {
	if percent <= 0 {
		percent = DefaultPercent
	}
	return &Engine{kv: kv, orders: orders, activity: activity, percent: percent}
}

func (e *Engine) Percent() int {
	return e.percent
}

// eligible returns the customer's non-cancelled orders.
func (e *Engine) eligible(ctx context.Context, email string) ([]order.Order, error) {
	orders, err := e.orders.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	var out []order.Order
	for _, o := range orders {
		if o.BelongsTo(email) && o.Status.Eligible() {
			out = append(out, o)
		}
	}
	return out, nil
}

// CheckLoyaltyStatus grants a coupon when the eligible order count is a
// positive even number not rewarded before. It returns true only for a new
// grant; repeated calls at the same count return false.
func (e *Engine) CheckLoyaltyStatus(ctx context.Context, email string) (bool, error) {
	if store.NormalizeEmail(email) == "" {
		return false, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	orders, err := e.eligible(ctx, email)
	if err != nil {
		return false, err
	}
	count := len(orders)
	if count == 0 || count%2 != 0 {
		return false, nil
	}

	milestone := store.MilestoneKey(email, count)
	_, granted, err := e.kv.Get(ctx, milestone)
	if err != nil {
		return false, fmt.Errorf("failed to read milestone: %w", err)
	}
	if granted {
		return false, nil
	}

	// A coupon never exists without its milestone.
	if err := e.kv.Set(ctx, milestone, "true"); err != nil {
		return false, fmt.Errorf("failed to record milestone: %w", err)
	}
	if err := e.kv.Set(ctx, store.CouponKey(email), CouponCode); err != nil {
		if rerr := e.kv.Remove(ctx, milestone); rerr != nil {
			log.Printf("[Loyalty] Failed to roll back milestone %s: %v", milestone, rerr)
		}
		return false, fmt.Errorf("failed to grant coupon: %w", err)
	}

	log.Printf("[Loyalty] Granted coupon to %s at %d orders", store.NormalizeEmail(email), count)
	e.recordGrant(ctx, email, orders[0].CustomerName, count)
	return true, nil
}

func (e *Engine) recordGrant(ctx context.Context, email, name string, count int) {
	if e.activity == nil {
		return
	}
	if strings.TrimSpace(name) == "" {
		name = email
	}
	id := fmt.Sprintf("loyalty-act-%s-%d", store.NormalizeEmail(email), count)
	msg := fmt.Sprintf("Customer %s received a %d%% loyalty coupon for completing %d purchases.", name, e.percent, count)
	if _, err := e.activity.AppendUnique(ctx, id, admin.ActivityLoyaltyCoupon, msg); err != nil {
		log.Printf("[Loyalty] Failed to record activity for %s: %v", email, err)
	}
}

func (e *Engine) HasActiveCoupon(ctx context.Context, email string) (bool, error) {
	if store.NormalizeEmail(email) == "" {
		return false, nil
	}
	_, ok, err := e.kv.Get(ctx, store.CouponKey(email))
	if err != nil {
		return false, fmt.Errorf("failed to read coupon: %w", err)
	}
	return ok, nil
}

// UseLoyaltyCoupon clears the active coupon. Milestone history is kept.
func (e *Engine) UseLoyaltyCoupon(ctx context.Context, email string) error {
	if err := e.kv.Remove(ctx, store.CouponKey(email)); err != nil {
		return fmt.Errorf("failed to consume coupon: %w", err)
	}
	return nil
}

// DiscountFor applies the coupon percentage to subtotal, rounded to paise.
func (e *Engine) DiscountFor(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(decimal.NewFromInt(int64(e.percent))).Div(decimal.NewFromInt(100)).Round(2)
}

// Discount returns the discount the customer would get on subtotal now.
func (e *Engine) Discount(ctx context.Context, email string, subtotal decimal.Decimal) (decimal.Decimal, error) {
	active, err := e.HasActiveCoupon(ctx, email)
	if err != nil || !active {
		return decimal.Zero, err
	}
	return e.DiscountFor(subtotal), nil
}

type CouponStatus string

const (
	CouponActive CouponStatus = "Active"
	CouponUsed   CouponStatus = "Used"
	CouponNone   CouponStatus = "None"
)

// CouponStatus is Active while a coupon is unspent, Used once a discounted
// order exists or a milestone was granted, None otherwise.
func (e *Engine) CouponStatus(ctx context.Context, email string) (CouponStatus, error) {
	orders, err := e.orders.List(ctx)
	if err != nil {
		return CouponNone, fmt.Errorf("failed to list orders: %w", err)
	}
	return e.statusFor(ctx, email, orders)
}

func (e *Engine) statusFor(ctx context.Context, email string, orders []order.Order) (CouponStatus, error) {
	active, err := e.HasActiveCoupon(ctx, email)
	if err != nil {
		return CouponNone, err
	}
	if active {
		return CouponActive, nil
	}

	placed := 0
	for _, o := range orders {
		if !o.BelongsTo(email) {
			continue
		}
		placed++
		if o.HasDiscount() {
			return CouponUsed, nil
		}
	}
	for count := 2; count <= placed; count += 2 {
		_, ok, err := e.kv.Get(ctx, store.MilestoneKey(email, count))
		if err != nil {
			return CouponNone, fmt.Errorf("failed to read milestone: %w", err)
		}
		if ok {
			return CouponUsed, nil
		}
	}
	return CouponNone, nil
}

type CustomerCoupon struct {
	Name       string       `json:"name"`
	Email      string       `json:"email"`
	OrderCount int          `json:"orderCount"`
	Status     CouponStatus `json:"couponStatus"`
}

// Report lists every customer whose coupon status is not None, in order of
// their most recent purchase.
func (e *Engine) Report(ctx context.Context) ([]CustomerCoupon, error) {
	orders, err := e.orders.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	var customers []*CustomerCoupon
	byEmail := make(map[string]*CustomerCoupon)
	for _, o := range orders {
		key := store.NormalizeEmail(o.Email)
		c, ok := byEmail[key]
		if !ok {
			c = &CustomerCoupon{Name: o.CustomerName, Email: key}
			byEmail[key] = c
			customers = append(customers, c)
		}
		c.OrderCount++
	}

	var out []CustomerCoupon
	for _, c := range customers {
		status, err := e.statusFor(ctx, c.Email, orders)
		if err != nil {
			return nil, err
		}
		if status == CouponNone {
			continue
		}
		c.Status = status
		out = append(out, *c)
	}
	return out, nil
}

type RepeatBuyer struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type RepeatStats struct {
	RepeatRate     float64       `json:"repeatRate"`
	TotalCustomers int           `json:"totalCustomers"`
	TopBuyers      []RepeatBuyer `json:"topBuyers"`
}

// Repeat computes the share of customers (by name) with more than one
// order and the five most frequent of them.
func Repeat(orders []order.Order) RepeatStats {
	counts := make(map[string]int)
	for _, o := range orders {
		counts[strings.TrimSpace(o.CustomerName)]++
	}

	var repeat []RepeatBuyer
	for name, n := range counts {
		if n > 1 {
			repeat = append(repeat, RepeatBuyer{Name: name, Count: n})
		}
	}
	sort.Slice(repeat, func(i, j int) bool {
		if repeat[i].Count != repeat[j].Count {
			return repeat[i].Count > repeat[j].Count
		}
		return repeat[i].Name < repeat[j].Name
	})

	stats := RepeatStats{TotalCustomers: len(counts)}
	if stats.TotalCustomers > 0 {
		stats.RepeatRate = float64(len(repeat)) / float64(stats.TotalCustomers) * 100
	}
	if len(repeat) > 5 {
		repeat = repeat[:5]
	}
	stats.TopBuyers = repeat
	return stats
}

func (e *Engine) RepeatStats(ctx context.Context) (RepeatStats, error) {
	orders, err := e.orders.List(ctx)
	if err != nil {
		return RepeatStats{}, fmt.Errorf("failed to list orders: %w", err)
	}
	return Repeat(orders), nil
}
