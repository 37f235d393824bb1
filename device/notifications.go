package device

import (
	"context"

	"github.com/jrsteele09/go-pos-console/prefs"
)

// NotificationMarker is the last-notification-seen value the notification screen writes.
// The session core only reads it at logout.
type NotificationMarker struct {
	store prefs.Store
}

func NewNotificationMarker(store prefs.Store) *NotificationMarker {
	return &NotificationMarker{store: store}
}

// LastSeen returns "" when nothing has been seen yet.
func (m *NotificationMarker) LastSeen(ctx context.Context) (string, error) {
	return prefs.GetOr(ctx, m.store, prefs.KeyLastNotificationSeen, "")
}

func (m *NotificationMarker) SetLastSeen(ctx context.Context, marker string) error {
	return m.store.Set(ctx, prefs.KeyLastNotificationSeen, marker)
}
