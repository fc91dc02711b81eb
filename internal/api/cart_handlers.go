package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/GarimaGupta40/Main-Intercorp/internal/domain/cart"
)

type CartResponse struct {
	Items      []cart.LineItem `json:"items"`
	Wishlist   []string        `json:"wishlist"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

type AddItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func cartResponse(s *cart.Session) CartResponse {
	snap := s.Snapshot()
	resp := CartResponse{
		Items:      snap.Items,
		Wishlist:   snap.Wishlist,
		TotalItems: s.TotalItems(),
		TotalPrice: s.TotalPrice(),
	}
	if resp.Items == nil {
		resp.Items = []cart.LineItem{}
	}
	if resp.Wishlist == nil {
		resp.Wishlist = []string{}
	}
	return resp
}

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, cartResponse(h.session(r)))
}

// AddToCart looks the product up in the catalog so the line carries the
// current name and price.
func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !decode(w, r, &req) {
		return
	}

	p, err := h.Catalog.Get(r.Context(), req.ProductID)
	if err != nil {
		respondErr(w, "add to cart", err)
		return
	}

	s := h.session(r)
	if err := s.AddToCart(p, req.Quantity); err != nil {
		respondErr(w, "add to cart", err)
		return
	}
	if err := h.Funnel.RecordCart(r.Context()); err != nil {
		log.Printf("[API] Failed to record cart: %v", err)
	}
	respondJSON(w, http.StatusOK, cartResponse(s))
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if !decode(w, r, &req) {
		return
	}
	s := h.session(r)
	s.UpdateQuantity(chi.URLParam(r, "productID"), req.Quantity)
	respondJSON(w, http.StatusOK, cartResponse(s))
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	s.RemoveFromCart(chi.URLParam(r, "productID"))
	respondJSON(w, http.StatusOK, cartResponse(s))
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	s.ClearCart()
	respondJSON(w, http.StatusOK, cartResponse(s))
}

func (h *Handlers) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")
	wishlisted := h.session(r).ToggleWishlist(id)
	respondJSON(w, http.StatusOK, map[string]any{"productId": id, "wishlisted": wishlisted})
}
