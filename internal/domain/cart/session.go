package cart

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/GarimaGupta40/Main-Intercorp/internal/domain/product"
	"github.com/GarimaGupta40/Main-Intercorp/internal/infrastructure/store"
)

var ErrInvalidProduct = errors.New("product id is required")

// LineItem snapshots the product at the time it was first added.
type LineItem struct {
	ProductID   string          `json:"productId"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
}

func (li LineItem) Total() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Snapshot is handed to listeners after every mutation.
type Snapshot struct {
	Items    []LineItem `json:"items"`
	Wishlist []string   `json:"wishlist"`
}

type Listener func(Snapshot)

// Session holds one shopper's cart and wishlist for the life of the process.
type Session struct {
	mu        sync.Mutex
	items     []LineItem
	wishlist  []string
	listeners map[int]Listener
	nextID    int
}

func NewSession() *Session {
	return &Session{listeners: make(map[int]Listener)}
}

// OnChange registers fn and returns a function that removes it.
func (s *Session) OnChange(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// mutate runs fn under the lock and notifies listeners afterwards.
func (s *Session) mutate(fn func() bool) {
	s.mu.Lock()
	changed := fn()
	var snap Snapshot
	var listeners []Listener
	if changed {
		snap = s.snapshotLocked()
		for _, l := range s.listeners {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

func (s *Session) snapshotLocked() Snapshot {
	items := make([]LineItem, len(s.items))
	copy(items, s.items)
	wishlist := make([]string, len(s.wishlist))
	copy(wishlist, s.wishlist)
	return Snapshot{Items: items, Wishlist: wishlist}
}

// AddToCart increments an existing line or appends a new one. Quantities
// below one are treated as one.
func (s *Session) AddToCart(p product.Product, quantity int) error {
	if p.ID == "" {
		return ErrInvalidProduct
	}
	if quantity < 1 {
		quantity = 1
	}

	s.mutate(func() bool {
		for i := range s.items {
			if s.items[i].ProductID == p.ID {
				s.items[i].Quantity += quantity
				return true
			}
		}
		s.items = append(s.items, LineItem{
			ProductID:   p.ID,
			Name:        p.Name,
			Price:       p.Price,
			Image:       p.Image,
			Description: p.Description,
			Quantity:    quantity,
		})
		return true
	})
	return nil
}

func (s *Session) RemoveFromCart(productID string) {
	s.mutate(func() bool {
		for i := range s.items {
			if s.items[i].ProductID == productID {
				s.items = append(s.items[:i], s.items[i+1:]...)
				return true
			}
		}
		return false
	})
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
func (s *Session) UpdateQuantity(productID string, quantity int) {
	if quantity <= 0 {
		s.RemoveFromCart(productID)
		return
	}
	s.mutate(func() bool {
		for i := range s.items {
			if s.items[i].ProductID == productID {
				if s.items[i].Quantity == quantity {
					return false
				}
				s.items[i].Quantity = quantity
				return true
			}
		}
		return false
	})
}

// RemoveLines takes the given quantities out of the cart, dropping lines
// that reach zero. Lines and quantities added since lines was read stay.
func (s *Session) RemoveLines(lines []LineItem) {
	s.mutate(func() bool {
		changed := false
		for _, taken := range lines {
			for i := range s.items {
				if s.items[i].ProductID != taken.ProductID {
					continue
				}
				s.items[i].Quantity -= taken.Quantity
				if s.items[i].Quantity <= 0 {
					s.items = append(s.items[:i], s.items[i+1:]...)
				}
				changed = true
				break
			}
		}
		return changed
	})
}

func (s *Session) ClearCart() {
	s.mutate(func() bool {
		if len(s.items) == 0 {
			return false
		}
		s.items = nil
		return true
	})
}

// ToggleWishlist adds or removes productID and reports whether it is now
// on the wishlist.
func (s *Session) ToggleWishlist(productID string) bool {
	var present bool
	s.mutate(func() bool {
		for i, id := range s.wishlist {
			if id == productID {
				s.wishlist = append(s.wishlist[:i], s.wishlist[i+1:]...)
				present = false
				return true
			}
		}
		s.wishlist = append(s.wishlist, productID)
		present = true
		return true
	})
	return present
}

func (s *Session) IsWishlisted(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.wishlist {
		if id == productID {
			return true
		}
	}
	return false
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) Items() []LineItem {
	return s.Snapshot().Items
}

func (s *Session) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

func (s *Session) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, li := range s.items {
		total += li.Quantity
	}
	return total
}

func (s *Session) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, li := range s.items {
		total = total.Add(li.Total())
	}
	return total
}

// Registry hands out one Session per shopper key.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// For returns the session for key (an email or a guest session id),
// creating it on first use.
func (r *Registry) For(key string) *Session {
	key = store.NormalizeEmail(key)

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[key]
	if !ok {
		s = NewSession()
		r.sessions[key] = s
	}
	return s
}
