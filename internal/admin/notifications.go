package admin

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GarimaGupta40/Main-Intercorp/internal/infrastructure/store"
)

type NotificationType string

const (
	NotificationNewOrder     NotificationType = "new_order"
	NotificationStatusChange NotificationType = "status_change"
)

type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Read      bool             `json:"read"`
}

// MaxEntries caps the stored notification and activity lists.
const MaxEntries = 500

// Notifications is the admin inbox, newest first, stored under
// store.KeyAdminNotifications.
type Notifications struct {
	kv  store.Store
	mu  sync.Mutex
	now func() time.Time
}

func NewNotifications(kv store.Store) *Notifications {
	return &Notifications{kv: kv, now: time.Now}
}

func (n *Notifications) List(ctx context.Context) ([]Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.load(ctx)
}

func (n *Notifications) load(ctx context.Context) ([]Notification, error) {
	var list []Notification
	if _, err := store.GetJSON(ctx, n.kv, store.KeyAdminNotifications, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (n *Notifications) save(ctx context.Context, list []Notification) error {
	if len(list) > MaxEntries {
		list = list[:MaxEntries]
	}
	return store.SetJSON(ctx, n.kv, store.KeyAdminNotifications, list)
}

// Add stores a new unread notification with a generated id.
func (n *Notifications) Add(ctx context.Context, typ NotificationType, message string) (Notification, error) {
	notif := Notification{
		ID:        "notif-" + uuid.New().String(),
		Type:      typ,
		Message:   message,
		Timestamp: n.now(),
	}
	if _, err := n.AddUnique(ctx, notif); err != nil {
		return Notification{}, err
	}
	return notif, nil
}

// AddUnique prepends the notifications whose ids are not already stored and
// returns how many were added.
func (n *Notifications) AddUnique(ctx context.Context, notifs ...Notification) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	existing, err := n.load(ctx)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]bool, len(existing))
	for _, e := range existing {
		seen[e.ID] = true
	}

	var fresh []Notification
	for _, notif := range notifs {
		if seen[notif.ID] {
			continue
		}
		seen[notif.ID] = true
		if notif.Timestamp.IsZero() {
			notif.Timestamp = n.now()
		}
		fresh = append(fresh, notif)
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	if err := n.save(ctx, append(fresh, existing...)); err != nil {
		return 0, err
	}
	return len(fresh), nil
}

func (n *Notifications) MarkAllRead(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	list, err := n.load(ctx)
	if err != nil {
		return err
	}
	changed := false
	for i := range list {
		if !list[i].Read {
			list[i].Read = true
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return n.save(ctx, list)
}

func (n *Notifications) UnreadCount(ctx context.Context) (int, error) {
	list, err := n.List(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, notif := range list {
		if !notif.Read {
			count++
		}
	}
	return count, nil
}
