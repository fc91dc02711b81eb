package funnel

import (
	"context"
	"math"
	"sync"

	"github.com/GarimaGupta40/Main-Intercorp/internal/infrastructure/store"
)

// Counters are coarse, non-authoritative event counts stored under
// store.KeyFunnelStats.
type Counters struct {
	Views     int `json:"views"`
	Carts     int `json:"carts"`
	Checkouts int `json:"checkouts"`
}

type Tracker struct {
	kv store.Store
	mu sync.Mutex
}

func NewTracker(kv store.Store) *Tracker {
	return &Tracker{kv: kv}
}

func (t *Tracker) Counters(ctx context.Context) (Counters, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load(ctx)
}

func (t *Tracker) load(ctx context.Context) (Counters, error) {
	var c Counters
	if _, err := store.GetJSON(ctx, t.kv, store.KeyFunnelStats, &c); err != nil {
		return Counters{}, err
	}
	return c, nil
}

func (t *Tracker) bump(ctx context.Context, fn func(*Counters)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, err := t.load(ctx)
	if err != nil {
		return err
	}
	fn(&c)
	return store.SetJSON(ctx, t.kv, store.KeyFunnelStats, c)
}

func (t *Tracker) RecordView(ctx context.Context) error {
	return t.bump(ctx, func(c *Counters) { c.Views++ })
}

func (t *Tracker) RecordCart(ctx context.Context) error {
	return t.bump(ctx, func(c *Counters) { c.Carts++ })
}

func (t *Tracker) RecordCheckout(ctx context.Context) error {
	return t.bump(ctx, func(c *Counters) { c.Checkouts++ })
}

// Stage names in funnel order.
const (
	StageViewed    = "Product Viewed"
	StageCart      = "Added to Cart"
	StageCheckout  = "Checkout Started"
	StageConverted = "Order Placed"
)

type Stage struct {
	Name string `json:"name"`
	// Value never exceeds the previous stage.
	Value int `json:"value"`
	// ConversionRate is Value as a whole percentage of the first stage.
	ConversionRate int `json:"conversionRate"`
	// DropOff is the whole percentage lost since the previous stage.
	DropOff int `json:"dropOff"`
}

type Report struct {
	Stages         []Stage `json:"stages"`
	ConversionRate int     `json:"conversionRate"`
}

// Build derives a monotone funnel from raw counters and the number of
// placed orders. Each stage is lifted to at least the size of the stages
// after it, since every checkout implies a cart and a view.
func Build(c Counters, ordersPlaced int) Report {
	checkouts := max(c.Checkouts, ordersPlaced)
	carts := max(c.Carts, checkouts)
	views := max(c.Views, carts)

	values := []struct {
		name  string
		value int
	}{
		{StageViewed, views},
		{StageCart, carts},
		{StageCheckout, checkouts},
		{StageConverted, ordersPlaced},
	}

	r := Report{Stages: make([]Stage, 0, len(values))}
	for i, v := range values {
		st := Stage{Name: v.name, Value: v.value, ConversionRate: percent(v.value, views)}
		if i > 0 {
			prev := values[i-1].value
			if prev > 0 {
				st.DropOff = 100 - percent(v.value, prev)
			}
		}
		r.Stages = append(r.Stages, st)
	}
	r.ConversionRate = percent(ordersPlaced, views)
	return r
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

// Report reads the counters and builds the funnel.
func (t *Tracker) Report(ctx context.Context, ordersPlaced int) (Report, error) {
	c, err := t.Counters(ctx)
	if err != nil {
		return Report{}, err
	}
	return Build(c, ordersPlaced), nil
}
