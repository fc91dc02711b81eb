package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/GarimaGupta40/Main-Intercorp/internal/domain/product"
)

// AlertPolicy controls which products raise inbox alerts.
type AlertPolicy struct {
	LowStockThreshold int
	ExpiryWindow      time.Duration
}

func DefaultAlertPolicy() AlertPolicy {
	return AlertPolicy{LowStockThreshold: 10, ExpiryWindow: 30 * 24 * time.Hour}
}

const displayDate = "02/01/2006"

// Alerts builds low-stock and expiry notifications for products. Ids are
// derived from the product so repeated scans produce the same ids.
func Alerts(products []product.Product, now time.Time, policy AlertPolicy) []Notification {
	limit := now.Add(policy.ExpiryWindow)
	var out []Notification

	for _, p := range products {
		if p.Stock < policy.LowStockThreshold {
			out = append(out, Notification{
				ID:        "low-stock-" + p.ID,
				Type:      NotificationStatusChange,
				Message:   fmt.Sprintf("Low Stock Alert: %s (%d left)", p.Name, p.Stock),
				Timestamp: now,
			})
		}
	}

	for _, p := range products {
		expiry, ok := p.Expiry()
		if !ok || expiry.After(limit) {
			continue
		}
		msg := fmt.Sprintf("Expiry Warning: %s (Expires on %s)", p.Name, expiry.Format(displayDate))
		if expiry.Before(now) {
			msg = fmt.Sprintf("Expired Product: %s (Expired on %s)", p.Name, expiry.Format(displayDate))
		}
		out = append(out, Notification{
			ID:        fmt.Sprintf("expiry-%s-%d", p.ID, expiry.UnixMilli()),
			Type:      NotificationStatusChange,
			Message:   msg,
			Timestamp: now,
		})
	}

	return out
}

// ScanAlerts stores the alerts for products that are not already in the inbox.
func (n *Notifications) ScanAlerts(ctx context.Context, products []product.Product, policy AlertPolicy) (int, error) {
	return n.AddUnique(ctx, Alerts(products, n.now(), policy)...)
}
