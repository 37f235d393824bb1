package redisstore_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-pos-console/prefs"
	"github.com/jrsteele09/go-pos-console/prefs/prefstest"
	"github.com/jrsteele09/go-pos-console/prefs/redisstore"
	"github.com/stretchr/testify/require"
)

func TestRedisStore(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set")
	}

	client, err := redisstore.Connect(context.Background(), redisURL)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	prefstest.RunStoreContract(t, func(t *testing.T) prefs.Store {
		// Unique prefix per subtest keeps runs isolated on a shared server.
		return redisstore.New(client, "pos-console-test:"+uuid.NewString()+":")
	})
}
