package notification

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/GarimaGupta40/Main-Intercorp/internal/admin"
	"github.com/GarimaGupta40/Main-Intercorp/internal/checkout"
	"github.com/GarimaGupta40/Main-Intercorp/internal/domain/order"
	"github.com/GarimaGupta40/Main-Intercorp/internal/events"
)

// Mailer is implemented by email.Service.
type Mailer interface {
	SendOrderConfirmation(o order.Order) error
	SendStatusUpdate(o order.Order) error
}

// OrderReader loads the order a change refers to.
type OrderReader interface {
	Get(ctx context.Context, id string) (order.Order, error)
}

// Handler emails customers about their orders as change events arrive
type Handler struct {
	mailer Mailer
	orders OrderReader
}

// NewHandler creates a new notification handler
func NewHandler(mailer Mailer, orders OrderReader) *Handler {
	return &Handler{
		mailer: mailer,
		orders: orders,
	}
}

// HandleChange processes a change event consumed from Kafka
func (h *Handler) HandleChange(ctx context.Context, change events.Change) error {
	if change.Type != events.OrdersUpdated {
		return nil
	}

	o, err := h.orders.Get(ctx, change.EntityID)
	if errors.Is(err, order.ErrOrderNotFound) {
		log.Printf("[Notifier] Order not found: %s", change.EntityID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load order %s: %w", change.EntityID, err)
	}

	if o.Email == "" || o.Email == checkout.GuestEmail {
		log.Printf("[Notifier] Skipping guest order %s", o.ID)
		return nil
	}

	switch change.Kind {
	case events.KindPlaced:
		log.Printf("[Notifier] Processing placed order %s for %s", o.ID, o.Email)
		if err := h.mailer.SendOrderConfirmation(o); err != nil {
			return fmt.Errorf("failed to send confirmation for %s: %w", o.ID, err)
		}
		log.Printf("[Notifier] Order confirmation email sent to %s for order %s", o.Email, o.ID)
	case events.KindStatusChanged:
		if err := h.mailer.SendStatusUpdate(o); err != nil {
			return fmt.Errorf("failed to send status update for %s: %w", o.ID, err)
		}
		log.Printf("[Notifier] Status update email sent to %s for order %s (%s)", o.Email, o.ID, o.Status)
	}
	return nil
}

// AdminFeed puts a new_order notification in the admin inbox for every
// placed order observed on the bus.
type AdminFeed struct {
	inbox  *admin.Notifications
	orders OrderReader
}

func NewAdminFeed(inbox *admin.Notifications, orders OrderReader) *AdminFeed {
	return &AdminFeed{inbox: inbox, orders: orders}
}

// Attach subscribes the feed to order changes.
func (f *AdminFeed) Attach(bus *events.Bus) func() {
	return bus.Subscribe(f.OnChange, events.OrdersUpdated)
}

func (f *AdminFeed) OnChange(change events.Change) {
	if change.Kind != events.KindPlaced {
		return
	}
	ctx := context.Background()

	msg := fmt.Sprintf("New order %s received", change.EntityID)
	if o, err := f.orders.Get(ctx, change.EntityID); err == nil {
		msg = fmt.Sprintf("New order %s from %s (₹%s)", o.ID, o.CustomerName, o.Total.StringFixed(2))
	}

	notif := admin.Notification{
		ID:        "order-" + change.EntityID,
		Type:      admin.NotificationNewOrder,
		Message:   msg,
		Timestamp: change.Timestamp,
	}
	if _, err := f.inbox.AddUnique(ctx, notif); err != nil {
		log.Printf("[Notifier] Failed to add admin notification for %s: %v", change.EntityID, err)
	}
}
