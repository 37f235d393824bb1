package device

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-pos-console/internal/errors"
	"github.com/jrsteele09/go-pos-console/prefs"
	"github.com/rs/zerolog"
)

// Identity correlates sign-out calls with the installation that made them.
type Identity struct {
	DeviceID string
}

// Registry creates the device identity once per installation and never replaces it.
type Registry struct {
	store prefs.Store
	newID func() string
	lock  sync.Mutex
	log   zerolog.Logger
}

type Option func(*Registry)

// WithIDGenerator overrides uuid generation, mostly for tests.
func WithIDGenerator(fn func() string) Option {
	return func(r *Registry) {
		r.newID = fn
	}
}

func NewRegistry(store prefs.Store, log zerolog.Logger, opts ...Option) *Registry {
	r := &Registry{
		store: store,
		newID: uuid.NewString,
		log:   log.With().Str("component", "device").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the stored identity; ok is false when none has been created yet.
func (r *Registry) Get(ctx context.Context) (id Identity, ok bool, err error) {
	v, err := r.store.Get(ctx, prefs.KeyDeviceID)
	if apperrors.Is(err, prefs.ErrNotFound) {
		return Identity{}, false, nil
	}
	if err != nil {
		return Identity{}, false, fmt.Errorf("read device id: %w", err)
	}
	return Identity{DeviceID: v}, v != "", nil
}

// Ensure returns the existing identity or creates and persists a new one.
func (r *Registry) Ensure(ctx context.Context) (id Identity, created bool, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	id, ok, err := r.Get(ctx)
	if err != nil || ok {
		return id, false, err
	}

	id = Identity{DeviceID: r.newID()}
	if err := r.store.Set(ctx, prefs.KeyDeviceID, id.DeviceID); err != nil {
		return Identity{}, false, fmt.Errorf("persist device id: %w", err)
	}
	r.log.Info().Str("device_id", id.DeviceID).Msg("device identity created")
	return id, true, nil
}
