package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GarimaGupta40/Main-Intercorp/internal/admin"
	"github.com/GarimaGupta40/Main-Intercorp/internal/domain/product"
)

// DefaultRating is given to products created from the dashboard.
const DefaultRating = 5.0

// ProductRequest is the admin product form.
type ProductRequest struct {
	Name        string           `json:"name"`
	Category    product.Category `json:"category"`
	Price       decimal.Decimal  `json:"price"`
	Image       string           `json:"image"`
	Description string           `json:"description"`
	Stock       int              `json:"stock"`
	ExpiryDate  string           `json:"expiryDate"`
}

func (req ProductRequest) apply(p product.Product) product.Product {
	p.Name = req.Name
	p.Category = req.Category
	p.Price = req.Price
	p.Image = req.Image
	p.Description = req.Description
	p.Stock = req.Stock
	p.ExpiryDate = req.ExpiryDate
	return p
}

// ListProducts supports ?category= and ?q= filters.
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	var (
		products []product.Product
		err      error
	)
	if c := r.URL.Query().Get("category"); c != "" {
		products, err = h.Catalog.ListByCategory(r.Context(), product.Category(c))
	} else {
		products, err = h.Catalog.Search(r.Context(), r.URL.Query().Get("q"))
	}
	if err != nil {
		respondErr(w, "list products", err)
		return
	}
	if products == nil {
		products = []product.Product{}
	}
	respondJSON(w, http.StatusOK, products)
}

// GetProduct serves a product page and counts it as a funnel view.
func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, "get product", err)
		return
	}
	if err := h.Funnel.RecordView(r.Context()); err != nil {
		log.Printf("[API] Failed to record view: %v", err)
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decode(w, r, &req) {
		return
	}

	p := req.apply(product.Product{ID: "prod-" + uuid.NewString(), Rating: DefaultRating})
	if err := h.Catalog.Upsert(r.Context(), p); err != nil {
		respondErr(w, "create product", err)
		return
	}

	h.recordActivity(r, admin.ActivityProductUpdate, fmt.Sprintf("New product %q added", p.Name))
	respondJSON(w, http.StatusCreated, p)
}

// UpdateProduct edits an existing product, keeping its rating.
func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decode(w, r, &req) {
		return
	}

	existing, err := h.Catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, "update product", err)
		return
	}
	p := req.apply(existing)
	if err := h.Catalog.Upsert(r.Context(), p); err != nil {
		respondErr(w, "update product", err)
		return
	}

	h.recordActivity(r, admin.ActivityProductUpdate, fmt.Sprintf("Product %q updated", p.Name))
	respondJSON(w, http.StatusOK, p)
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	name := id
	if p, err := h.Catalog.Get(r.Context(), id); err == nil {
		name = p.Name
	} else if !errors.Is(err, product.ErrProductNotFound) {
		respondErr(w, "delete product", err)
		return
	}

	if err := h.Catalog.Remove(r.Context(), id); err != nil {
		respondErr(w, "delete product", err)
		return
	}

	h.recordActivity(r, admin.ActivityProductDeleted, "Deleted product: "+name)
	w.WriteHeader(http.StatusNoContent)
}

// recordActivity logs instead of failing the request: the change itself
// has already been saved.
func (h *Handlers) recordActivity(r *http.Request, typ, message string) {
	if _, err := h.Activity.Append(r.Context(), typ, message); err != nil {
		log.Printf("[API] Failed to record activity %q: %v", typ, err)
	}
}
