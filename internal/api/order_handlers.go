package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GarimaGupta40/Main-Intercorp/internal/admin"
	"github.com/GarimaGupta40/Main-Intercorp/internal/api/middleware"
	"github.com/GarimaGupta40/Main-Intercorp/internal/checkout"
	"github.com/GarimaGupta40/Main-Intercorp/internal/domain/loyalty"
	"github.com/GarimaGupta40/Main-Intercorp/internal/domain/order"
)

type CheckoutRequest struct {
	Shipping      checkout.Shipping `json:"shipping"`
	PaymentMethod string            `json:"paymentMethod"`
	OrderID       string            `json:"orderId,omitempty"`
}

type StatusRequest struct {
	Status order.Status `json:"status"`
}

type LoyaltyResponse struct {
	HasCoupon bool                 `json:"hasCoupon"`
	Code      string               `json:"code,omitempty"`
	Percent   int                  `json:"percent"`
	Status    loyalty.CouponStatus `json:"status"`
}

// PlaceOrder blocks for the configured processing delay. The customer
// comes from the token; guests check out under the fallback email.
func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if !decode(w, r, &req) {
		return
	}

	placed, err := h.Checkout.PlaceOrder(r.Context(), h.session(r), checkout.Request{
		Customer: checkout.Customer{
			Email:    middleware.GetEmail(r.Context()),
			LoggedIn: middleware.IsLoggedIn(r.Context()),
		},
		Shipping:      req.Shipping,
		PaymentMethod: req.PaymentMethod,
		OrderID:       req.OrderID,
	})
	if err != nil {
		respondErr(w, "place order", err)
		return
	}
	respondJSON(w, http.StatusCreated, placed)
}

func (h *Handlers) CheckoutState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"state": string(h.Checkout.State(h.session(r)))})
}

func (h *Handlers) MyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.ListByEmail(r.Context(), middleware.GetEmail(r.Context()))
	if err != nil {
		respondErr(w, "list my orders", err)
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) LoyaltyStatus(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetEmail(r.Context())
	active, err := h.Loyalty.HasActiveCoupon(r.Context(), email)
	if err != nil {
		respondErr(w, "loyalty status", err)
		return
	}
	status, err := h.Loyalty.CouponStatus(r.Context(), email)
	if err != nil {
		respondErr(w, "loyalty status", err)
		return
	}

	resp := LoyaltyResponse{HasCoupon: active, Percent: h.Loyalty.Percent(), Status: status}
	if active {
		resp.Code = loyalty.CouponCode
	}
	respondJSON(w, http.StatusOK, resp)
}

// Admin order handlers

// ListOrders returns every order, filtered by ?q= when given.
func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondErr(w, "list orders", err)
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, "get order", err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if !decode(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")

	if _, err := h.Orders.Get(r.Context(), id); err != nil {
		respondErr(w, "update order status", err)
		return
	}
	if err := h.Orders.SetStatus(r.Context(), id, req.Status); err != nil {
		respondErr(w, "update order status", err)
		return
	}

	if _, err := h.Notifications.Add(r.Context(), admin.NotificationStatusChange,
		fmt.Sprintf("Order %s status changed to %s", id, req.Status)); err != nil {
		log.Printf("[API] Failed to add status notification: %v", err)
	}
	h.recordActivity(r, admin.ActivityOrderStatus, fmt.Sprintf("Order %s status updated to %s", id, req.Status))

	o, err := h.Orders.Get(r.Context(), id)
	if err != nil {
		respondErr(w, "update order status", err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) OrderStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Orders.Stats(r.Context())
	if err != nil {
		respondErr(w, "order stats", err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}
