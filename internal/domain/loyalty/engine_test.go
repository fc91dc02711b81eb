package loyalty

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GarimaGupta40/Main-Intercorp/internal/admin"
	"github.com/GarimaGupta40/Main-Intercorp/internal/domain/order"
	"github.com/GarimaGupta40/Main-Intercorp/internal/infrastructure/store"
	"github.com/GarimaGupta40/Main-Intercorp/internal/infrastructure/store/mocks"
)

type testEnv struct {
	engine   *Engine
	orders   *order.Store
	kv       *mocks.MockStore
	activity *admin.ActivityLog
}

func newTestEngine() *testEnv {
	kv := mocks.NewMockStore()
	orders := order.NewStore(kv, nil)
	activity := admin.NewActivityLog(kv, admin.NewNotifications(kv))
	return &testEnv{
		engine:   NewEngine(kv, orders, activity, 0),
		orders:   orders,
		kv:       kv,
		activity: activity,
	}
}

func (env *testEnv) place(t *testing.T, email string, status order.Status) string {
	t.Helper()
	o := order.Order{
		ID:           order.NewID(),
		CustomerName: "Asha Rao",
		Email:        email,
		Items:        []order.Item{{ProductID: "hn-001", Name: "Whey", Quantity: 1, Price: decimal.NewFromInt(100)}},
		Total:        decimal.NewFromInt(100),
		Status:       status,
		Date:         time.Now(),
	}
	inserted, err := env.orders.Insert(context.Background(), o)
	require.NoError(t, err)
	require.True(t, inserted)
	return o.ID
}

const email = "asha@example.com"

// ============================================
// CheckLoyaltyStatus Tests
// ============================================

func TestEngine_CheckLoyaltyStatus_SecondOrderGrants(t *testing.T) {
	env := newTestEngine()
	ctx := context.Background()

	env.place(t, email, order.StatusPending)
	granted, err := env.engine.CheckLoyaltyStatus(ctx, email)
	require.NoError(t, err)
	assert.False(t, granted)

	env.place(t, email, order.StatusPending)
	granted, err = env.engine.CheckLoyaltyStatus(ctx, email)
	require.NoError(t, err)
	assert.True(t, granted)

	active, err := env.engine.HasActiveCoupon(ctx, email)
	require.NoError(t, err)
	assert.True(t, active)

	v, _ := env.kv.GetRaw(store.CouponKey(email))
	assert.Equal(t, CouponCode, v)
	_, ok := env.kv.GetRaw(store.MilestoneKey(email, 2))
	assert.True(t, ok)

	granted, err = env.engine.CheckLoyaltyStatus(ctx, email)
	require.NoError(t, err)
	assert.False(t, granted)
}

func TestEngine_CheckLoyaltyStatus_Idempotent(t *testing.T) {
	env := newTestEngine()
	ctx := context.Background()
	env.place(t, email, order.StatusDelivered)
	env.place(t, email, order.StatusShipped)

	grants := 0
	for i := 0; i < 5; i++ {
		granted, err := env.engine.CheckLoyaltyStatus(ctx, email)
		require.NoError(t, err)
		if granted {
			grants++
		}
	}

	assert.Equal(t, 1, grants)
	assert.Len(t, env.kv.SetCallsFor(store.CouponKey(email)), 1)
}

func TestEngine_CheckLoyaltyStatus_RecordsActivityOnce(t *testing.T) {
	env := newTestEngine()
	ctx := context.Background()
	env.place(t, email, order.StatusPending)
	env.place(t, email, order.StatusPending)

	_, err := env.engine.CheckLoyaltyStatus(ctx, email)
	require.NoError(t, err)

	entries, err := env.activity.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, admin.ActivityLoyaltyCoupon, entries[0].Type)
	assert.Equal(t, "Customer Asha Rao received a 15% loyalty coupon for completing 2 purchases.", entries[0].Message)
	assert.Equal(t, fmt.Sprintf("loyalty-act-%s-2", email), entries[0].ID)
}

func TestEngine_CheckLoyaltyStatus_CancelledNotCounted(t *testing.T) {
	env := newTestEngine()
	ctx := context.Background()
	env.place(t, email, order.StatusPending)
	env.place(t, email, order.StatusCancelled)

	granted, err := env.engine.CheckLoyaltyStatus(ctx, email)

	require.NoError(t, err)
	assert.False(t, granted)
}

func TestEngine_CheckLoyaltyStatus_EmailCaseInsensitive(t *testing.T) {
	env := newTestEngine()
	env.place(t, "Asha@Example.com", order.StatusPending)
	env.place(t, email, order.StatusPending)

	granted, err := env.engine.CheckLoyaltyStatus(context.Background(), " ASHA@example.com ")

	require.NoError(t, err)
	assert.True(t, granted)
}

func TestEngine_CheckLoyaltyStatus_GuestNeverGranted(t *testing.T) {
	env := newTestEngine()

	granted, err := env.engine.CheckLoyaltyStatus(context.Background(), "")

	require.NoError(t, err)
	assert.False(t, granted)
}

func TestEngine_CheckLoyaltyStatus_StoreFailure(t *testing.T) {
	env := newTestEngine()
	env.place(t, email, order.StatusPending)
	env.place(t, email, order.StatusPending)
	env.kv.SetErr = errors.New("unavailable")
	env.kv.FailKeys = map[string]bool{store.CouponKey(email): true}

	granted, err := env.engine.CheckLoyaltyStatus(context.Background(), email)

	assert.Error(t, err)
	assert.False(t, granted)
	_, ok := env.kv.GetRaw(store.MilestoneKey(email, 2))
	assert.False(t, ok, "milestone rolled back so a retry can grant")
	assert.Contains(t, env.kv.RemoveCalls, store.MilestoneKey(email, 2))

	// Once storage recovers the same count grants exactly once
	env.kv.SetErr = nil
	granted, err = env.engine.CheckLoyaltyStatus(context.Background(), email)
	require.NoError(t, err)
	assert.True(t, granted)
}

func TestEngine_CheckLoyaltyStatus_MilestoneFailureGrantsNothing(t *testing.T) {
	env := newTestEngine()
	ctx := context.Background()
	env.place(t, email, order.StatusPending)
	env.place(t, email, order.StatusPending)
	env.kv.SetErr = errors.New("unavailable")
	env.kv.FailKeys = map[string]bool{store.MilestoneKey(email, 2): true}

	granted, err := env.engine.CheckLoyaltyStatus(ctx, email)

	assert.Error(t, err)
	assert.False(t, granted)
	active, err := env.engine.HasActiveCoupon(ctx, email)
	require.NoError(t, err)
	assert.False(t, active)

	// Recover, grant, spend: the same milestone must not pay out twice
	env.kv.SetErr = nil
	granted, err = env.engine.CheckLoyaltyStatus(ctx, email)
	require.NoError(t, err)
	require.True(t, granted)
	require.NoError(t, env.engine.UseLoyaltyCoupon(ctx, email))

	granted, err = env.engine.CheckLoyaltyStatus(ctx, email)
	require.NoError(t, err)
	assert.False(t, granted)
}

// ============================================
// Cancellation Policy Tests
// ============================================

func TestEngine_CancelledMilestoneStaysSpent(t *testing.T) {
	env := newTestEngine()
	ctx := context.Background()
	env.place(t, email, order.StatusPending)
	second := env.place(t, email, order.StatusPending)

	granted, err := env.engine.CheckLoyaltyStatus(ctx, email)
	require.NoError(t, err)
	require.True(t, granted)

	// Cancelling the milestone order keeps the coupon already issued
	require.NoError(t, env.orders.SetStatus(ctx, second, order.StatusCancelled))
	active, _ := env.engine.HasActiveCoupon(ctx, email)
	assert.True(t, active)

	// Reaching count 2 again does not grant a second coupon
	require.NoError(t, env.engine.UseLoyaltyCoupon(ctx, email))
	env.place(t, email, order.StatusPending)
	granted, err = env.engine.CheckLoyaltyStatus(ctx, email)
	require.NoError(t, err)
	assert.False(t, granted)

	// Count 4 is a new milestone
	env.place(t, email, order.StatusPending)
	env.place(t, email, order.StatusPending)
	granted, err = env.engine.CheckLoyaltyStatus(ctx, email)
	require.NoError(t, err)
	assert.True(t, granted)
}

// ============================================
// Coupon Consumption and Discount Tests
// ============================================

func TestEngine_UseLoyaltyCoupon(t *testing.T) {
	env := newTestEngine()
	ctx := context.Background()
	env.kv.SetRaw(store.CouponKey(email), CouponCode)

	require.NoError(t, env.engine.UseLoyaltyCoupon(ctx, email))

	active, err := env.engine.HasActiveCoupon(ctx, email)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestEngine_Discount(t *testing.T) {
	env := newTestEngine()
	ctx := context.Background()
	subtotal := decimal.NewFromInt(250)

	d, err := env.engine.Discount(ctx, email, subtotal)
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	env.kv.SetRaw(store.CouponKey(email), CouponCode)
	d, err = env.engine.Discount(ctx, email, subtotal)
	require.NoError(t, err)
	assert.Equal(t, "37.5", d.String())
	assert.Equal(t, "212.5", subtotal.Sub(d).String())
}

func TestEngine_DiscountFor_Rounding(t *testing.T) {
	tests := []struct {
		subtotal string
		expected string
	}{
		{"250", "37.5"},
		{"99.99", "15"},
		{"0", "0"},
		{"1234.56", "185.18"},
	}

	engine := NewEngine(mocks.NewMockStore(), nil, nil, 0)
	for _, tt := range tests {
		t.Run(tt.subtotal, func(t *testing.T) {
			got := engine.DiscountFor(decimal.RequireFromString(tt.subtotal))
			assert.Equal(t, tt.expected, got.String())
		})
	}
}

// ============================================
// Reporting Tests
// ============================================

func TestEngine_CouponStatusAndReport(t *testing.T) {
	env := newTestEngine()
	ctx := context.Background()

	env.place(t, email, order.StatusPending)
	status, err := env.engine.CouponStatus(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, CouponNone, status)

	env.place(t, email, order.StatusPending)
	_, err = env.engine.CheckLoyaltyStatus(ctx, email)
	require.NoError(t, err)
	status, _ = env.engine.CouponStatus(ctx, email)
	assert.Equal(t, CouponActive, status)

	require.NoError(t, env.engine.UseLoyaltyCoupon(ctx, email))
	status, _ = env.engine.CouponStatus(ctx, email)
	assert.Equal(t, CouponUsed, status)

	env.place(t, "ravi@example.com", order.StatusPending)
	report, err := env.engine.Report(ctx)
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, email, report[0].Email)
	assert.Equal(t, 2, report[0].OrderCount)
	assert.Equal(t, CouponUsed, report[0].Status)
}

func TestRepeat(t *testing.T) {
	var orders []order.Order
	add := func(name string, n int) {
		for i := 0; i < n; i++ {
			orders = append(orders, order.Order{CustomerName: name})
		}
	}
	add("Asha", 3)
	add("Ravi", 2)
	add(" Ravi ", 1)
	add("Meera", 1)
	add("A", 2)
	add("B", 2)
	add("C", 2)
	add("D", 2)

	stats := Repeat(orders)

	assert.Equal(t, 7, stats.TotalCustomers)
	assert.InDelta(t, 6.0/7.0*100, stats.RepeatRate, 0.001)
	require.Len(t, stats.TopBuyers, 5)
	assert.Equal(t, RepeatBuyer{Name: "Asha", Count: 3}, stats.TopBuyers[0])
	assert.Equal(t, RepeatBuyer{Name: "Ravi", Count: 3}, stats.TopBuyers[1])
	assert.Equal(t, "A", stats.TopBuyers[2].Name)
}

func TestRepeat_Empty(t *testing.T) {
	stats := Repeat(nil)

	assert.Equal(t, 0, stats.TotalCustomers)
	assert.Zero(t, stats.RepeatRate)
	assert.Empty(t, stats.TopBuyers)
}
