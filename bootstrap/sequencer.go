package bootstrap

import (
	"context"
	"sync"

	"github.com/dmitrymomot/foundation/pkg/async"
	"github.com/jrsteele09/go-pos-console/action"
	"github.com/jrsteele09/go-pos-console/api"
	"github.com/jrsteele09/go-pos-console/device"
	apperrors "github.com/jrsteele09/go-pos-console/internal/errors"
	"github.com/jrsteele09/go-pos-console/session"
	"github.com/jrsteele09/go-pos-console/users"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// Backend is the subset of the dispatcher the sequencer calls.
type Backend interface {
	Refresh(ctx context.Context) (*oauth2.Token, error)
	Profile(ctx context.Context) (*users.User, error)
}

// DeviceRegistry creates the device identity after the first successful profile fetch.
type DeviceRegistry interface {
	Ensure(ctx context.Context) (device.Identity, bool, error)
}

// Sequencer restores the session once per process start and keeps the profile in
// step with the token afterwards.
type Sequencer struct {
	backend Backend
	session *session.Store
	devices DeviceRegistry
	log     zerolog.Logger

	lock    sync.RWMutex
	status  Status
	started bool
	done    chan struct{}

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()

	profileLock sync.Mutex
	profile     *async.ExecFuture
}

func New(backend Backend, store *session.Store, devices DeviceRegistry, log zerolog.Logger) *Sequencer {
	return &Sequencer{
		backend: backend,
		session: store,
		devices: devices,
		log:     log.With().Str("component", "bootstrap").Logger(),
		status:  Status{Phase: Initializing},
		done:    make(chan struct{}),
	}
}

// Status returns the current bootstrap status.
func (s *Sequencer) Status() Status {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.status
}

// Done is closed once the refresh step has resolved, whatever the outcome.
func (s *Sequencer) Done() <-chan struct{} {
	return s.done
}

// Run starts the sequence and blocks until the refresh step resolves.
func (s *Sequencer) Run(ctx context.Context) (Status, error) {
	f, err := s.Start(ctx)
	if err != nil {
		return s.Status(), err
	}
	err = f.Await()
	return s.Status(), err
}

// Start begins the sequence without blocking. It may only be called once. The
// returned future resolves with the refresh step; read the outcome from Status.
// Cancelling ctx, or calling Close, stops pending refresh and profile tasks
// before they write to the session store.
func (s *Sequencer) Start(ctx context.Context) (*async.ExecFuture, error) {
	s.lock.Lock()
	if s.started {
		s.lock.Unlock()
		return nil, apperrors.ErrBootstrapCalled
	}
	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.lock.Unlock()

	// Subscribe before refreshing so the token written below triggers the first profile fetch.
	unsubscribe := s.session.Subscribe(s.onSessionChange)
	s.lock.Lock()
	s.unsubscribe = unsubscribe
	s.lock.Unlock()
	if token := s.session.State().AccessToken(); token != "" {
		s.fetchProfile(token)
	}

	return async.Exec(s.ctx, s.backend, s.refresh), nil
}

// Close detaches from the session store and cancels anything still in flight.
func (s *Sequencer) Close() {
	s.lock.Lock()
	cancel, unsubscribe := s.cancel, s.unsubscribe
	s.unsubscribe = nil
	s.lock.Unlock()

	if cancel != nil {
		cancel()
	}
	if unsubscribe != nil {
		unsubscribe()
	}
}

// ProfileFetch returns the most recently started profile fetch, or nil if none has started.
func (s *Sequencer) ProfileFetch() *async.ExecFuture {
	s.profileLock.Lock()
	defer s.profileLock.Unlock()
	return s.profile
}

func (s *Sequencer) refresh(ctx context.Context, backend Backend) error {
	tok, err := backend.Refresh(ctx)
	if ctx.Err() != nil {
		// Torn down while waiting; leave the store alone.
		return ctx.Err()
	}

	switch {
	case err == nil:
		s.log.Debug().Msg("session restored from refresh credential")
		s.session.SetToken(tok.AccessToken)
		s.finish(Status{Phase: Authenticated, Complete: true})

	case api.IsUnauthorized(err):
		// Expected on a first visit or after the refresh credential expired.
		s.log.Debug().Msg("no session to restore")
		s.finish(Status{Phase: Unauthenticated, Complete: true})

	default:
		cause := action.Classify(err)
		s.log.Error().Err(err).Int("status_code", cause.StatusCode).Msg("session refresh failed")
		s.finish(Status{Phase: FatalError, Complete: true, Cause: cause})
	}
	return nil
}

// finish publishes the outcome of the refresh step. Unless it is fatal, the phase
// is taken from the token held now: the session may have changed between the
// refresh resolving and this call, and onSessionChange ignores changes made
// while the status is incomplete.
func (s *Sequencer) finish(st Status) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if st.Phase != FatalError {
		if s.session.State().HasToken() {
			st.Phase = Authenticated
		} else {
			st.Phase = Unauthenticated
		}
	}
	s.status = st
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

// onSessionChange runs synchronously inside the session store's notification.
func (s *Sequencer) onSessionChange(prev, next session.State) {
	if next.AccessToken() != "" && next.AccessToken() != prev.AccessToken() {
		s.fetchProfile(next.AccessToken())
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.status.Complete || s.status.Phase == FatalError {
		return
	}
	if next.HasToken() {
		s.status.Phase = Authenticated
	} else {
		s.status.Phase = Unauthenticated
	}
}

// fetchProfile never changes the bootstrap phase: a failed fetch is logged and the
// dispatcher's 401 handling is what ends an invalid session.
func (s *Sequencer) fetchProfile(token string) {
	s.lock.RLock()
	ctx := s.ctx
	s.lock.RUnlock()

	f := async.Exec(ctx, token, s.loadProfile)
	s.profileLock.Lock()
	s.profile = f
	s.profileLock.Unlock()
}

func (s *Sequencer) loadProfile(ctx context.Context, token string) error {
	user, err := s.backend.Profile(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("profile fetch failed")
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if !s.session.SetUserFor(token, user) {
		s.log.Debug().Msg("profile arrived for a token that is no longer current, dropped")
		return nil
	}

	id, created, err := s.devices.Ensure(ctx)
	switch {
	case err != nil:
		s.log.Warn().Err(err).Msg("ensuring device identity failed")
	case created:
		s.log.Info().Str("device_id", id.DeviceID).Msg("registered new device")
	}
	return nil
}

// Wait blocks until the refresh step has resolved or ctx ends.
func (s *Sequencer) Wait(ctx context.Context) (Status, error) {
	select {
	case <-s.done:
		return s.Status(), nil
	case <-ctx.Done():
		return s.Status(), ctx.Err()
	}
}
