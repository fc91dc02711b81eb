package admin

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GarimaGupta40/Main-Intercorp/internal/infrastructure/store"
)

// Activity types written by the application.
const (
	ActivityProductUpdate  = "Product Update"
	ActivityProductDeleted = "Product Deleted"
	ActivityOrderStatus    = "status"
	ActivityDiscount       = "Discount Applied"
	ActivityLoyaltyCoupon  = "Loyalty Coupon"
)

type Activity struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Recorder is what domain services use to leave an audit trail.
type Recorder interface {
	Append(ctx context.Context, typ, message string) (Activity, error)
	AppendUnique(ctx context.Context, id, typ, message string) (bool, error)
}

// ActivityLog is the admin audit trail, newest first. Every entry is
// mirrored into the notification inbox as "{type}: {message}".
type ActivityLog struct {
	kv            store.Store
	notifications *Notifications
	mu            sync.Mutex
	now           func() time.Time
}

func NewActivityLog(kv store.Store, notifications *Notifications) *ActivityLog {
	return &ActivityLog{kv: kv, notifications: notifications, now: time.Now}
}

func (l *ActivityLog) List(ctx context.Context) ([]Activity, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx)
}

func (l *ActivityLog) load(ctx context.Context) ([]Activity, error) {
	var list []Activity
	if _, err := store.GetJSON(ctx, l.kv, store.KeyAdminActivityLog, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (l *ActivityLog) Append(ctx context.Context, typ, message string) (Activity, error) {
	a := Activity{ID: "act-" + uuid.New().String(), Type: typ, Message: message, Timestamp: l.now()}
	if _, err := l.add(ctx, a); err != nil {
		return Activity{}, err
	}
	return a, nil
}

// AppendUnique records an entry under a caller-chosen id, doing nothing when
// that id is already in the log.
func (l *ActivityLog) AppendUnique(ctx context.Context, id, typ, message string) (bool, error) {
	return l.add(ctx, Activity{ID: id, Type: typ, Message: message, Timestamp: l.now()})
}

func (l *ActivityLog) add(ctx context.Context, entry Activity) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	list, err := l.load(ctx)
	if err != nil {
		return false, err
	}
	for _, a := range list {
		if a.ID == entry.ID {
			return false, nil
		}
	}

	list = append([]Activity{entry}, list...)
	if len(list) > MaxEntries {
		list = list[:MaxEntries]
	}
	if err := store.SetJSON(ctx, l.kv, store.KeyAdminActivityLog, list); err != nil {
		return false, err
	}

	if l.notifications != nil {
		if _, err := l.notifications.Add(ctx, NotificationStatusChange, fmt.Sprintf("%s: %s", entry.Type, entry.Message)); err != nil {
			return true, fmt.Errorf("activity recorded but notification failed: %w", err)
		}
	}
	return true, nil
}

func (l *ActivityLog) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.kv.Remove(ctx, store.KeyAdminActivityLog)
}
