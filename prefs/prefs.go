package prefs

import (
	"context"

	apperrors "github.com/jrsteele09/go-pos-console/internal/errors"
)

// Keys of the client-local state the console persists between runs.
const (
	KeyBackendOrigin        = "backend_origin"
	KeyDeviceID             = "device_id"
	KeyLastNotificationSeen = "last_notification_seen"
	// KeyCookies holds the backend cookies (the refresh credential) for CLI runs.
	KeyCookies = "cookies"
)

// ErrNotFound is returned by Get when the key has never been set or was deleted.
var ErrNotFound = apperrors.ErrPrefNotFound

// Store is durable client-local key-value storage.
// Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// GetOr returns the stored value for key, or def when it is not set.
// Errors other than ErrNotFound are returned unchanged.
func GetOr(ctx context.Context, s Store, key, def string) (string, error) {
	v, err := s.Get(ctx, key)
	if apperrors.Is(err, ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}
