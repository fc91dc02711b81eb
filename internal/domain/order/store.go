package order

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/GarimaGupta40/Main-Intercorp/internal/events"
	"github.com/GarimaGupta40/Main-Intercorp/internal/infrastructure/store"
)

// Store persists orders under store.KeyOrders, newest first.
type Store struct {
	kv  store.Store
	bus events.Publisher
	mu  sync.Mutex
}

func NewStore(kv store.Store, bus events.Publisher) *Store {
	if bus == nil {
		bus = events.Discard{}
	}
	return &Store{kv: kv, bus: bus}
}

// List returns all orders, most recently inserted first.
func (s *Store) List(ctx context.Context) ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) ([]Order, error) {
	var raw []Order
	if _, err := store.GetJSON(ctx, s.kv, store.KeyOrders, &raw); err != nil {
		return nil, err
	}

	orders := make([]Order, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, o := range raw {
		if !usable(o) || seen[o.ID] {
			log.Printf("[OrderStore] Dropping unusable record %q", o.ID)
			continue
		}
		seen[o.ID] = true
		orders = append(orders, o)
	}
	return orders, nil
}

// Insert prepends o unless an order with the same id already exists.
// inserted is false for a duplicate; nothing is written in that case.
func (s *Store) Insert(ctx context.Context, o Order) (inserted bool, err error) {
	if err := o.Validate(); err != nil {
		return false, err
	}

	inserted, err = s.insert(ctx, o)
	if inserted {
		s.bus.Publish(events.NewChange(events.OrdersUpdated, events.KindPlaced, o.ID))
	}
	return inserted, err
}

func (s *Store) insert(ctx context.Context, o Order) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	for _, existing := range orders {
		if existing.ID == o.ID {
			log.Printf("[OrderStore] Ignoring duplicate order %s", o.ID)
			return false, nil
		}
	}

	updated := make([]Order, 0, len(orders)+1)
	updated = append(updated, o)
	updated = append(updated, orders...)

	if err := store.SetJSON(ctx, s.kv, store.KeyOrders, updated); err != nil {
		return false, err
	}
	return true, nil
}

// SetStatus changes the status of order id. Unknown ids are ignored.
func (s *Store) SetStatus(ctx context.Context, id string, status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	changed, err := s.setStatus(ctx, id, status)
	if changed {
		s.bus.Publish(events.NewChange(events.OrdersUpdated, events.KindStatusChanged, id))
	}
	return err
}

func (s *Store) setStatus(ctx context.Context, id string, status Status) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.load(ctx)
	if err != nil {
		return false, err
	}

	changed := false
	for i := range orders {
		if orders[i].ID == id && orders[i].Status != status {
			orders[i].Status = status
			changed = true
		}
	}
	if !changed {
		return false, nil
	}

	if err := store.SetJSON(ctx, s.kv, store.KeyOrders, orders); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Get(ctx context.Context, id string) (Order, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return Order{}, err
	}
	for _, o := range orders {
		if o.ID == id {
			return o, nil
		}
	}
	return Order{}, ErrOrderNotFound
}

// ListByEmail returns a customer's orders, newest first.
func (s *Store) ListByEmail(ctx context.Context, email string) ([]Order, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []Order
	for _, o := range orders {
		if o.BelongsTo(email) {
			out = append(out, o)
		}
	}
	return out, nil
}

// Search matches id, customer name, status and item names.
func (s *Store) Search(ctx context.Context, q string) ([]Order, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return orders, nil
	}

	var out []Order
	for _, o := range orders {
		if matches(o, q) {
			out = append(out, o)
		}
	}
	return out, nil
}

func matches(o Order, q string) bool {
	if strings.Contains(strings.ToLower(o.ID), q) ||
		strings.Contains(strings.ToLower(o.CustomerName), q) ||
		strings.Contains(strings.ToLower(string(o.Status)), q) {
		return true
	}
	for _, it := range o.Items {
		if strings.Contains(strings.ToLower(it.Name), q) {
			return true
		}
	}
	return false
}

type Stats struct {
	Revenue         decimal.Decimal `json:"revenue"`
	TotalOrders     int             `json:"totalOrders"`
	ActiveCustomers int             `json:"activeCustomers"`
	PendingOrders   int             `json:"pendingOrders"`
	ByStatus        map[Status]int  `json:"byStatus"`
}

// Stats summarises orders for the admin dashboard. Revenue sums every
// order total, cancelled ones included.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Summarize(orders), nil
}

func Summarize(orders []Order) Stats {
	st := Stats{Revenue: decimal.Zero, ByStatus: make(map[Status]int)}
	customers := make(map[string]bool)
	for _, o := range orders {
		st.Revenue = st.Revenue.Add(o.Total)
		st.TotalOrders++
		st.ByStatus[o.Status]++
		customers[strings.ToLower(strings.TrimSpace(o.CustomerName))] = true
		if o.Status == StatusPending {
			st.PendingOrders++
		}
	}
	st.ActiveCustomers = len(customers)
	return st
}
