package order

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GarimaGupta40/Main-Intercorp/internal/events"
	"github.com/GarimaGupta40/Main-Intercorp/internal/infrastructure/store"
	"github.com/GarimaGupta40/Main-Intercorp/internal/infrastructure/store/mocks"
)

func newTestOrderStore() (*Store, *mocks.MockStore, *[]events.Change) {
	kv := mocks.NewMockStore()
	bus := events.NewBus()
	var changes []events.Change
	bus.Subscribe(func(c events.Change) { changes = append(changes, c) }, events.OrdersUpdated)
	return NewStore(kv, bus), kv, &changes
}

func testOrder(id, email string) Order {
	return Order{
		ID:           id,
		CustomerName: "Asha Rao",
		Email:        email,
		Items: []Item{
			{ProductID: "hn-001", Name: "Whey Protein Isolate", Quantity: 2, Price: decimal.NewFromInt(100)},
		},
		Total:         decimal.NewFromInt(200),
		PaymentMethod: PaymentCashOnDelivery,
		Status:        StatusPending,
		Date:          time.Now(),
	}
}

// ============================================
// Insert Tests
// ============================================

func TestStore_Insert_PrependsNewest(t *testing.T) {
	s, _, changes := newTestOrderStore()
	ctx := context.Background()

	inserted, err := s.Insert(ctx, testOrder("ORD-1", "a@x.com"))
	require.NoError(t, err)
	assert.True(t, inserted)
	inserted, err = s.Insert(ctx, testOrder("ORD-2", "a@x.com"))
	require.NoError(t, err)
	assert.True(t, inserted)

	orders, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "ORD-2", orders[0].ID)
	assert.Equal(t, "ORD-1", orders[1].ID)
	assert.Len(t, *changes, 2)
	assert.Equal(t, events.KindPlaced, (*changes)[0].Kind)
}

func TestStore_Insert_DuplicateIsNoop(t *testing.T) {
	s, kv, changes := newTestOrderStore()
	ctx := context.Background()

	first := testOrder("ORD-1", "a@x.com")
	_, err := s.Insert(ctx, first)
	require.NoError(t, err)

	second := testOrder("ORD-1", "other@x.com")
	second.Total = decimal.NewFromInt(999)
	inserted, err := s.Insert(ctx, second)

	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Len(t, kv.SetCallsFor(store.KeyOrders), 1)
	assert.Len(t, *changes, 1)

	orders, _ := s.List(ctx)
	require.Len(t, orders, 1)
	assert.Equal(t, "a@x.com", orders[0].Email)
}

func TestStore_Insert_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *Order)
		err    error
	}{
		{"missing id", func(o *Order) { o.ID = "" }, ErrInvalidOrder},
		{"no items", func(o *Order) { o.Items = nil }, ErrInvalidOrder},
		{"zero quantity", func(o *Order) { o.Items[0].Quantity = 0 }, ErrInvalidOrder},
		{"negative discount", func(o *Order) { o.Discount = decimal.NewFromInt(-1) }, ErrInvalidOrder},
		{"bad status", func(o *Order) { o.Status = "Lost" }, ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, kv, _ := newTestOrderStore()
			o := testOrder("ORD-1", "a@x.com")
			tt.mutate(&o)

			inserted, err := s.Insert(context.Background(), o)

			assert.ErrorIs(t, err, tt.err)
			assert.False(t, inserted)
			assert.Empty(t, kv.SetCalls)
		})
	}
}

func TestStore_Insert_StoreFailure(t *testing.T) {
	s, kv, changes := newTestOrderStore()
	kv.SetErr = errors.New("quota exceeded")

	inserted, err := s.Insert(context.Background(), testOrder("ORD-1", "a@x.com"))

	assert.Error(t, err)
	assert.False(t, inserted)
	assert.Empty(t, *changes)
}

// ============================================
// SetStatus Tests
// ============================================

func TestStore_SetStatus(t *testing.T) {
	s, _, changes := newTestOrderStore()
	ctx := context.Background()
	_, err := s.Insert(ctx, testOrder("ORD-1", "a@x.com"))
	require.NoError(t, err)

	require.NoError(t, s.SetStatus(ctx, "ORD-1", StatusShipped))

	o, err := s.Get(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, o.Status)
	require.Len(t, *changes, 2)
	assert.Equal(t, events.KindStatusChanged, (*changes)[1].Kind)
	assert.Equal(t, "ORD-1", (*changes)[1].EntityID)
}

func TestStore_SetStatus_UnknownIDIsNoop(t *testing.T) {
	s, kv, changes := newTestOrderStore()
	ctx := context.Background()
	_, err := s.Insert(ctx, testOrder("ORD-1", "a@x.com"))
	require.NoError(t, err)

	require.NoError(t, s.SetStatus(ctx, "ORD-404", StatusDelivered))

	assert.Len(t, kv.SetCallsFor(store.KeyOrders), 1)
	assert.Len(t, *changes, 1)
}

func TestStore_SetStatus_Invalid(t *testing.T) {
	s, _, _ := newTestOrderStore()

	err := s.SetStatus(context.Background(), "ORD-1", "Returned")

	assert.ErrorIs(t, err, ErrInvalidStatus)
}

// ============================================
// Read Tests
// ============================================

func TestStore_List_MissingKeyIsEmpty(t *testing.T) {
	s, _, _ := newTestOrderStore()

	orders, err := s.List(context.Background())

	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestStore_List_DropsUnusableRecords(t *testing.T) {
	s, kv, _ := newTestOrderStore()
	kv.SetRaw(store.KeyOrders, `[
		{"id":"ORD-A","email":"a@x.com","items":[{"productId":"p","name":"P","quantity":1,"price":10}],"total":10,"status":"Pending"},
		{"id":"","items":[{"productId":"p","name":"P","quantity":1,"price":10}]},
		{"id":"ORD-B","items":[]},
		{"id":"ORD-A","email":"dup@x.com","items":[{"productId":"p","name":"P","quantity":1,"price":10}]}
	]`)

	orders, err := s.List(context.Background())

	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "a@x.com", orders[0].Email)
}

func TestStore_ListByEmailAndSearch(t *testing.T) {
	s, _, _ := newTestOrderStore()
	ctx := context.Background()
	_, _ = s.Insert(ctx, testOrder("ORD-1", "Asha@X.com"))
	other := testOrder("ORD-2", "ravi@x.com")
	other.CustomerName = "Ravi Kumar"
	other.Items[0].Name = "Cattle Mineral Mixture"
	_, _ = s.Insert(ctx, other)

	mine, err := s.ListByEmail(ctx, "asha@x.com")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "ORD-1", mine[0].ID)

	found, err := s.Search(ctx, "mineral")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "ORD-2", found[0].ID)

	found, err = s.Search(ctx, "pending")
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestSummarize(t *testing.T) {
	a := testOrder("ORD-1", "a@x.com")
	b := testOrder("ORD-2", "a@x.com")
	b.Status = StatusDelivered
	b.Total = decimal.RequireFromString("212.50")
	c := testOrder("ORD-3", "b@x.com")
	c.CustomerName = "  asha rao "
	c.Status = StatusCancelled

	st := Summarize([]Order{a, b, c})

	assert.True(t, st.Revenue.Equal(decimal.RequireFromString("612.50")))
	assert.Equal(t, 3, st.TotalOrders)
	assert.Equal(t, 1, st.ActiveCustomers)
	assert.Equal(t, 1, st.PendingOrders)
	assert.Equal(t, 1, st.ByStatus[StatusCancelled])
}

func TestNewID_Format(t *testing.T) {
	re := regexp.MustCompile(`^ORD-[0-9A-F]{6}$`)
	for i := 0; i < 20; i++ {
		assert.Regexp(t, re, NewID())
	}
}

func TestStatus_Eligible(t *testing.T) {
	assert.True(t, StatusPending.Eligible())
	assert.True(t, StatusDelivered.Eligible())
	assert.False(t, StatusCancelled.Eligible())
	assert.False(t, Status("Lost").Eligible())
}
