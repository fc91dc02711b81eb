package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GarimaGupta40/Main-Intercorp/internal/admin"
	"github.com/GarimaGupta40/Main-Intercorp/internal/domain/inventory"
	"github.com/GarimaGupta40/Main-Intercorp/internal/domain/loyalty"
)

type ClearanceRequest struct {
	Percent int `json:"percent"`
}

type NotificationsResponse struct {
	Notifications []admin.Notification `json:"notifications"`
	Unread        int                  `json:"unread"`
}

// Inventory

func (h *Handlers) InventoryInsights(w http.ResponseWriter, r *http.Request) {
	products, err := h.Catalog.List(r.Context())
	if err != nil {
		respondErr(w, "inventory insights", err)
		return
	}
	orders, err := h.Orders.List(r.Context())
	if err != nil {
		respondErr(w, "inventory insights", err)
		return
	}

	rows := h.Analyzer.Analyze(products, orders, h.now())
	if rows == nil {
		rows = []inventory.InsightRow{}
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handlers) Attention(w http.ResponseWriter, r *http.Request) {
	products, err := h.Catalog.List(r.Context())
	if err != nil {
		respondErr(w, "attention", err)
		return
	}
	orders, err := h.Orders.List(r.Context())
	if err != nil {
		respondErr(w, "attention", err)
		return
	}
	respondJSON(w, http.StatusOK, h.Analyzer.Attention(products, orders, h.now()))
}

func (h *Handlers) ApplyClearance(w http.ResponseWriter, r *http.Request) {
	var req ClearanceRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.Clearance.ApplyClearance(r.Context(), chi.URLParam(r, "id"), req.Percent)
	if err != nil {
		respondErr(w, "apply clearance", err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// Activity and notifications

func (h *Handlers) ListActivity(w http.ResponseWriter, r *http.Request) {
	list, err := h.Activity.List(r.Context())
	if err != nil {
		respondErr(w, "list activity", err)
		return
	}
	if list == nil {
		list = []admin.Activity{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *Handlers) ClearActivity(w http.ResponseWriter, r *http.Request) {
	if err := h.Activity.Clear(r.Context()); err != nil {
		respondErr(w, "clear activity", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.Notifications.List(r.Context())
	if err != nil {
		respondErr(w, "list notifications", err)
		return
	}
	unread, err := h.Notifications.UnreadCount(r.Context())
	if err != nil {
		respondErr(w, "list notifications", err)
		return
	}
	if list == nil {
		list = []admin.Notification{}
	}
	respondJSON(w, http.StatusOK, NotificationsResponse{Notifications: list, Unread: unread})
}

func (h *Handlers) MarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.Notifications.MarkAllRead(r.Context()); err != nil {
		respondErr(w, "mark notifications read", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ScanAlerts raises low-stock and expiry notifications for the current
// catalog. Alerts already in the inbox are not repeated.
func (h *Handlers) ScanAlerts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Catalog.List(r.Context())
	if err != nil {
		respondErr(w, "scan alerts", err)
		return
	}
	added, err := h.Notifications.ScanAlerts(r.Context(), products, h.AlertPolicy)
	if err != nil {
		respondErr(w, "scan alerts", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"added": added})
}

// Analytics

func (h *Handlers) FunnelReport(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.List(r.Context())
	if err != nil {
		respondErr(w, "funnel report", err)
		return
	}
	report, err := h.Funnel.Report(r.Context(), len(orders))
	if err != nil {
		respondErr(w, "funnel report", err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (h *Handlers) LoyaltyReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.Loyalty.Report(r.Context())
	if err != nil {
		respondErr(w, "loyalty report", err)
		return
	}
	if report == nil {
		report = []loyalty.CustomerCoupon{}
	}
	respondJSON(w, http.StatusOK, report)
}

func (h *Handlers) RepeatStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Loyalty.RepeatStats(r.Context())
	if err != nil {
		respondErr(w, "repeat stats", err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}
