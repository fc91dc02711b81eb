package inventory

import (
	"math"
	"time"

	"github.com/GarimaGupta40/Main-Intercorp/internal/domain/order"
	"github.com/GarimaGupta40/Main-Intercorp/internal/domain/product"
)

const day = 24 * time.Hour

// Policy holds the health thresholds.
type Policy struct {
	LowStockThreshold   int
	SlowMovingThreshold int
	SalesWindow         time.Duration
	ExpiryWindow        time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		LowStockThreshold:   10,
		SlowMovingThreshold: 3,
		SalesWindow:         30 * day,
		ExpiryWindow:        30 * day,
	}
}

type InsightRow struct {
	Product         product.Product `json:"product"`
	SalesLast30Days int             `json:"salesLast30Days"`
	IsLowStock      bool            `json:"isLowStock"`
	IsSlowMoving    bool            `json:"isSlowMoving"`
	IsExpiringSoon  bool            `json:"isExpiringSoon"`
	IsExpired       bool            `json:"isExpired"`
	// DaysLeft is nil when there were no recent sales to extrapolate from.
	DaysLeft *int `json:"daysLeft"`
}

func (r InsightRow) flagged() bool {
	return r.IsLowStock || r.IsSlowMoving || r.IsExpiringSoon || r.IsExpired
}

type Analyzer struct {
	policy Policy
}

func NewAnalyzer(policy Policy) *Analyzer {
	return &Analyzer{policy: policy}
}

func (a *Analyzer) Policy() Policy {
	return a.policy
}

// Sales sums item quantities per product over orders placed within the
// sales window ending at now.
func (a *Analyzer) Sales(orders []order.Order, now time.Time) map[string]int {
	since := now.Add(-a.policy.SalesWindow)
	sales := make(map[string]int)
	for _, o := range orders {
		if o.Date.Before(since) {
			continue
		}
		for _, it := range o.Items {
			sales[it.ProductID] += it.Quantity
		}
	}
	return sales
}

// Analyze returns one row per product with at least one health flag set,
// in catalog order.
func (a *Analyzer) Analyze(products []product.Product, orders []order.Order, now time.Time) []InsightRow {
	sales := a.Sales(orders, now)
	windowDays := a.policy.SalesWindow.Hours() / 24

	var rows []InsightRow
	for _, p := range products {
		sold := sales[p.ID]
		row := InsightRow{
			Product:         p,
			SalesLast30Days: sold,
			IsLowStock:      p.Stock < a.policy.LowStockThreshold,
			IsSlowMoving:    sold < a.policy.SlowMovingThreshold,
		}
		row.IsExpiringSoon, row.IsExpired = a.expiry(p, now)

		if sold > 0 && windowDays > 0 {
			days := int(math.Floor(float64(p.Stock) * windowDays / float64(sold)))
			row.DaysLeft = &days
		}

		if row.flagged() {
			rows = append(rows, row)
		}
	}
	return rows
}

// expiry reports (expiring soon, already expired). The two are exclusive.
func (a *Analyzer) expiry(p product.Product, now time.Time) (bool, bool) {
	exp, ok := p.Expiry()
	if !ok {
		return false, false
	}
	if !exp.After(now) {
		return false, true
	}
	return !exp.After(now.Add(a.policy.ExpiryWindow)), false
}

// Attention is the dashboard's "needs attention" summary.
type Attention struct {
	LowStock      int `json:"lowStock"`
	NearExpiry    int `json:"nearExpiry"`
	PendingOrders int `json:"pendingOrders"`
}

// Attention counts low-stock products, products expiring within the window
// (expired ones included) and pending orders.
func (a *Analyzer) Attention(products []product.Product, orders []order.Order, now time.Time) Attention {
	var att Attention
	for _, p := range products {
		if p.Stock < a.policy.LowStockThreshold {
			att.LowStock++
		}
		soon, expired := a.expiry(p, now)
		if soon || expired {
			att.NearExpiry++
		}
	}
	for _, o := range orders {
		if o.Status == order.StatusPending {
			att.PendingOrders++
		}
	}
	return att
}
