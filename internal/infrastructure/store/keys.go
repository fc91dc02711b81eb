package store

import (
	"fmt"
	"strings"
)

// Collection keys shared by all backends.
const (
	KeyCatalog            = "catalog"
	KeyOrders             = "orders"
	KeyFunnelStats        = "funnel-stats"
	KeyAdminNotifications = "admin-notifications"
	KeyAdminActivityLog   = "admin-activity-log"
)

// NormalizeEmail lower-cases and trims an email so it can be used in keys.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CouponKey is the active-coupon flag for a customer.
func CouponKey(email string) string {
	return "coupon:" + NormalizeEmail(email)
}

// MilestoneKey marks a loyalty milestone as granted.
func MilestoneKey(email string, count int) string {
	return fmt.Sprintf("milestone:%s:%d", NormalizeEmail(email), count)
}
