package product

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/GarimaGupta40/Main-Intercorp/internal/events"
	"github.com/GarimaGupta40/Main-Intercorp/internal/infrastructure/store"
)

//go:embed catalog.json
var defaultCatalog []byte

// DefaultCatalog returns the bundled product list used to seed an empty store.
func DefaultCatalog() ([]Product, error) {
	var products []Product
	if err := json.Unmarshal(defaultCatalog, &products); err != nil {
		return nil, fmt.Errorf("failed to decode bundled catalog: %w", err)
	}
	return products, nil
}

// Catalog persists products under store.KeyCatalog.
type Catalog struct {
	kv  store.Store
	bus events.Publisher
	mu  sync.Mutex
}

func NewCatalog(kv store.Store, bus events.Publisher) *Catalog {
	if bus == nil {
		bus = events.Discard{}
	}
	return &Catalog{kv: kv, bus: bus}
}

// List returns every product, seeding the store from the bundled catalog
// the first time it is read.
func (c *Catalog) List(ctx context.Context) ([]Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

func (c *Catalog) load(ctx context.Context) ([]Product, error) {
	var raw []Product
	ok, err := store.GetJSON(ctx, c.kv, store.KeyCatalog, &raw)
	if err != nil {
		return nil, err
	}
	if !ok {
		seed, err := DefaultCatalog()
		if err != nil {
			return nil, err
		}
		if err := store.SetJSON(ctx, c.kv, store.KeyCatalog, seed); err != nil {
			return nil, err
		}
		log.Printf("[Catalog] Seeded %d products", len(seed))
		return seed, nil
	}

	products := make([]Product, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, p := range raw {
		fixed, ok := repair(p)
		if !ok || seen[fixed.ID] {
			log.Printf("[Catalog] Dropping unusable record %q", p.ID)
			continue
		}
		seen[fixed.ID] = true
		products = append(products, fixed)
	}
	return products, nil
}

// Get returns ErrProductNotFound for unknown ids.
func (c *Catalog) Get(ctx context.Context, id string) (Product, error) {
	products, err := c.List(ctx)
	if err != nil {
		return Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrProductNotFound
}

// Upsert replaces a product with the same id in place, or appends it.
func (c *Catalog) Upsert(ctx context.Context, p Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := c.upsert(ctx, p); err != nil {
		return err
	}

	c.bus.Publish(events.NewChange(events.ProductsUpdated, events.KindUpserted, p.ID))
	return nil
}

func (c *Catalog) upsert(ctx context.Context, p Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	products, err := c.load(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i := range products {
		if products[i].ID == p.ID {
			products[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		products = append(products, p)
	}
	return store.SetJSON(ctx, c.kv, store.KeyCatalog, products)
}

// Remove deletes the product with id. Unknown ids are ignored.
func (c *Catalog) Remove(ctx context.Context, id string) error {
	removed, err := c.remove(ctx, id)
	if removed {
		c.bus.Publish(events.NewChange(events.ProductsUpdated, events.KindRemoved, id))
	}
	return err
}

func (c *Catalog) remove(ctx context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	products, err := c.load(ctx)
	if err != nil {
		return false, err
	}

	kept := make([]Product, 0, len(products))
	for _, p := range products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(products) {
		return false, nil
	}

	if err := store.SetJSON(ctx, c.kv, store.KeyCatalog, kept); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Catalog) ListByCategory(ctx context.Context, category Category) ([]Product, error) {
	products, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []Product
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

// Search matches q case-insensitively against id, name and category.
// An empty query returns everything.
func (c *Catalog) Search(ctx context.Context, q string) ([]Product, error) {
	products, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return products, nil
	}

	var out []Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.ID), q) ||
			strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(string(p.Category), q) {
			out = append(out, p)
		}
	}
	return out, nil
}
