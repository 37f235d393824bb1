package console

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-pos-console/internal/config"
	"github.com/jrsteele09/go-pos-console/prefs"
	"github.com/jrsteele09/go-pos-console/prefs/filestore"
	"github.com/jrsteele09/go-pos-console/prefs/memstore"
	"github.com/jrsteele09/go-pos-console/prefs/redisstore"
	"github.com/rs/zerolog"
)

// OpenPrefs opens the preference backend selected by cfg. The returned close func is never nil.
func OpenPrefs(ctx context.Context, cfg config.StorageConfig, log zerolog.Logger) (prefs.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.GetPrefsBackend() {
	case config.PrefsBackendMemory:
		log.Debug().Msg("using in-memory preferences")
		return memstore.New(), noop, nil

	case config.PrefsBackendRedis:
		client, err := redisstore.Connect(ctx, cfg.GetRedisURL())
		if err != nil {
			return nil, noop, fmt.Errorf("open redis preferences: %w", err)
		}
		store := redisstore.New(client, cfg.GetRedisKeyPrefix())
		log.Debug().Str("prefix", cfg.GetRedisKeyPrefix()).Msg("using redis preferences")
		return store, store.Close, nil

	default:
		store, err := filestore.Open(cfg.GetPrefsFile())
		if err != nil {
			return nil, noop, fmt.Errorf("open preference file: %w", err)
		}
		log.Debug().Str("file", cfg.GetPrefsFile()).Msg("using file preferences")
		return store, noop, nil
	}
}
