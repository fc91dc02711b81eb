package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/GarimaGupta40/Main-Intercorp/internal/admin"
	"github.com/GarimaGupta40/Main-Intercorp/internal/api/middleware"
	"github.com/GarimaGupta40/Main-Intercorp/internal/checkout"
	"github.com/GarimaGupta40/Main-Intercorp/internal/domain/cart"
	"github.com/GarimaGupta40/Main-Intercorp/internal/domain/inventory"
	"github.com/GarimaGupta40/Main-Intercorp/internal/domain/loyalty"
	"github.com/GarimaGupta40/Main-Intercorp/internal/domain/order"
	"github.com/GarimaGupta40/Main-Intercorp/internal/domain/product"
	"github.com/GarimaGupta40/Main-Intercorp/internal/funnel"
	"github.com/GarimaGupta40/Main-Intercorp/internal/infrastructure/store"
)

// SessionHeader identifies a guest's cart when no token is sent.
const SessionHeader = "X-Session-ID"

const guestSession = "guest"

// Services bundles everything the handlers call into.
type Services struct {
	Catalog       *product.Catalog
	Orders        *order.Store
	Loyalty       *loyalty.Engine
	Carts         *cart.Registry
	Checkout      *checkout.Workflow
	Funnel        *funnel.Tracker
	Analyzer      *inventory.Analyzer
	Clearance     *inventory.Clearance
	Activity      *admin.ActivityLog
	Notifications *admin.Notifications
	AlertPolicy   admin.AlertPolicy
}

type Handlers struct {
	Services
	now func() time.Time
}

func NewHandlers(svc Services) *Handlers {
	return &Handlers{Services: svc, now: time.Now}
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondErr maps domain errors onto HTTP status codes. Anything not
// recognised is logged and reported as a 500.
func respondErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, product.ErrProductNotFound), errors.Is(err, order.ErrOrderNotFound):
		respondJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, product.ErrInvalidProduct),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrInvalidOrder),
		errors.Is(err, cart.ErrInvalidProduct),
		errors.Is(err, inventory.ErrInvalidPercent),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrUnsupportedPayment):
		respondJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, checkout.ErrNotLoggedIn):
		respondJSONError(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, checkout.ErrDuplicateOrder), errors.Is(err, checkout.ErrInProgress):
		respondJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, store.ErrCorrupt):
		log.Printf("[API] %s: %v", op, err)
		respondJSONError(w, "stored data is unreadable", http.StatusInternalServerError)
	default:
		log.Printf("[API] %s: %v", op, err)
		respondJSONError(w, "internal error", http.StatusInternalServerError)
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

// sessionKey picks the cart for a request: the signed-in email, else the
// guest session header, else the shared guest cart.
func sessionKey(r *http.Request) string {
	if email := middleware.GetEmail(r.Context()); email != "" {
		return email
	}
	if id := strings.TrimSpace(r.Header.Get(SessionHeader)); id != "" {
		return "session:" + id
	}
	return guestSession
}

func (h *Handlers) session(r *http.Request) *cart.Session {
	return h.Carts.For(sessionKey(r))
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
