// Package prefstest holds behaviour every prefs.Store implementation must share.
package prefstest

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-pos-console/prefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func RunStoreContract(t *testing.T, newStore func(t *testing.T) prefs.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, "absent")
		assert.ErrorIs(t, err, prefs.ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, prefs.KeyDeviceID, "dev-1"))
		v, err := s.Get(ctx, prefs.KeyDeviceID)
		require.NoError(t, err)
		assert.Equal(t, "dev-1", v)
	})

	t.Run("overwrite", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, prefs.KeyBackendOrigin, "https://a.example.com"))
		require.NoError(t, s.Set(ctx, prefs.KeyBackendOrigin, "https://b.example.com"))
		v, err := s.Get(ctx, prefs.KeyBackendOrigin)
		require.NoError(t, err)
		assert.Equal(t, "https://b.example.com", v)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, prefs.KeyLastNotificationSeen, "42"))
		require.NoError(t, s.Delete(ctx, prefs.KeyLastNotificationSeen))
		require.NoError(t, s.Delete(ctx, prefs.KeyLastNotificationSeen))
		_, err := s.Get(ctx, prefs.KeyLastNotificationSeen)
		assert.ErrorIs(t, err, prefs.ErrNotFound)
	})

	t.Run("GetOr falls back", func(t *testing.T) {
		s := newStore(t)
		v, err := prefs.GetOr(ctx, s, "absent", "fallback")
		require.NoError(t, err)
		assert.Equal(t, "fallback", v)
	})
}
