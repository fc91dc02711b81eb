package events

import (
	"time"

	"github.com/google/uuid"
)

// Type names a change notification.
type Type string

const (
	ProductsUpdated Type = "products_updated"
	OrdersUpdated   Type = "orders_updated"
)

// Kind refines what happened to the entity.
type Kind string

const (
	KindUpserted      Kind = "upserted"
	KindRemoved       Kind = "removed"
	KindPlaced        Kind = "placed"
	KindStatusChanged Kind = "status_changed"
)

// Change is emitted after a successful mutating write.
type Change struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Kind      Kind      `json:"kind"`
	EntityID  string    `json:"entity_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChange stamps a change with a fresh id and the current time.
func NewChange(t Type, kind Kind, entityID string) Change {
	return Change{
		ID:        uuid.New().String(),
		Type:      t,
		Kind:      kind,
		EntityID:  entityID,
		Timestamp: time.Now(),
	}
}
