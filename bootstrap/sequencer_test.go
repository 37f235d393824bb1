package bootstrap_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-pos-console/api"
	"github.com/jrsteele09/go-pos-console/bootstrap"
	"github.com/jrsteele09/go-pos-console/device"
	apperrors "github.com/jrsteele09/go-pos-console/internal/errors"
	"github.com/jrsteele09/go-pos-console/prefs"
	"github.com/jrsteele09/go-pos-console/prefs/memstore"
	"github.com/jrsteele09/go-pos-console/session"
	"github.com/jrsteele09/go-pos-console/users"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const waitFor = 2 * time.Second

type fakeBackend struct {
	refresh      func(ctx context.Context) (*oauth2.Token, error)
	profile      func(ctx context.Context) (*users.User, error)
	profileCalls atomic.Int32
}

func (f *fakeBackend) Refresh(ctx context.Context) (*oauth2.Token, error) {
	return f.refresh(ctx)
}

func (f *fakeBackend) Profile(ctx context.Context) (*users.User, error) {
	f.profileCalls.Add(1)
	return f.profile(ctx)
}

func refreshWith(token string) func(context.Context) (*oauth2.Token, error) {
	return func(context.Context) (*oauth2.Token, error) {
		return &oauth2.Token{AccessToken: token}, nil
	}
}

func refreshFails(status int) func(context.Context) (*oauth2.Token, error) {
	return func(context.Context) (*oauth2.Token, error) {
		return nil, &api.StatusError{Method: http.MethodPost, Path: api.PathRefresh, StatusCode: status}
	}
}

func profileOf(u *users.User) func(context.Context) (*users.User, error) {
	return func(context.Context) (*users.User, error) {
		return u, nil
	}
}

type fixture struct {
	backend *fakeBackend
	store   *session.Store
	prefs   prefs.Store
	seq     *bootstrap.Sequencer
}

func setupFixture(t *testing.T, backend *fakeBackend) *fixture {
	t.Helper()
	f := &fixture{
		backend: backend,
		store:   session.NewStore(),
		prefs:   memstore.New(),
	}
	devices := device.NewRegistry(f.prefs, zerolog.Nop(), device.WithIDGenerator(func() string { return "dev-1" }))
	f.seq = bootstrap.New(backend, f.store, devices, zerolog.Nop())
	t.Cleanup(f.seq.Close)
	return f
}

func (f *fixture) awaitProfile(t *testing.T) {
	t.Helper()
	require.Eventually(t, func() bool { return f.seq.ProfileFetch() != nil }, waitFor, 5*time.Millisecond)
	_ = f.seq.ProfileFetch().AwaitWithTimeout(waitFor)
}

func TestRefreshSuccessAuthenticates(t *testing.T) {
	admin := &users.User{Username: "admin", IsAdmin: true}
	f := setupFixture(t, &fakeBackend{refresh: refreshWith("tok1"), profile: profileOf(admin)})

	st, err := f.seq.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, bootstrap.Authenticated, st.Phase)
	assert.True(t, st.Complete)
	assert.Nil(t, st.Cause)
	assert.Equal(t, "tok1", f.store.State().AccessToken())

	f.awaitProfile(t)
	assert.Equal(t, session.Authenticated, f.store.State().Kind())
	assert.True(t, f.store.State().IsAdmin())

	id, err := f.prefs.Get(context.Background(), prefs.KeyDeviceID)
	require.NoError(t, err)
	assert.Equal(t, "dev-1", id)
}

func TestCompleteDoesNotWaitForProfile(t *testing.T) {
	release := make(chan struct{})
	f := setupFixture(t, &fakeBackend{
		refresh: refreshWith("tok1"),
		profile: func(ctx context.Context) (*users.User, error) {
			<-release
			return &users.User{Username: "cashier"}, nil
		},
	})

	st, err := f.seq.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, st.Complete)
	assert.Equal(t, session.PendingUser, f.store.State().Kind())

	close(release)
	f.awaitProfile(t)
	assert.Equal(t, "cashier", f.store.State().User().Username)
}

func TestRefreshUnauthorizedIsNotAnError(t *testing.T) {
	f := setupFixture(t, &fakeBackend{refresh: refreshFails(http.StatusUnauthorized)})

	st, err := f.seq.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, bootstrap.Unauthenticated, st.Phase)
	assert.True(t, st.Complete)
	assert.Nil(t, st.Cause)
	assert.False(t, f.store.State().HasToken())
	assert.Nil(t, f.seq.ProfileFetch())
	assert.Zero(t, f.backend.profileCalls.Load())
}

func TestRefreshFailureIsFatal(t *testing.T) {
	tests := []struct {
		name       string
		refresh    func(context.Context) (*oauth2.Token, error)
		wantStatus int
	}{
		{name: "server error", refresh: refreshFails(http.StatusInternalServerError), wantStatus: http.StatusInternalServerError},
		{name: "forbidden", refresh: refreshFails(http.StatusForbidden), wantStatus: http.StatusForbidden},
		{
			name: "transport",
			refresh: func(context.Context) (*oauth2.Token, error) {
				return nil, fmt.Errorf("%w: dial tcp: connection refused", apperrors.ErrTransport)
			},
			wantStatus: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupFixture(t, &fakeBackend{refresh: tt.refresh})

			st, err := f.seq.Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, bootstrap.FatalError, st.Phase)
			assert.True(t, st.Complete)
			require.NotNil(t, st.Cause)
			assert.Equal(t, tt.wantStatus, st.Cause.StatusCode)
			assert.False(t, f.store.State().HasToken())
		})
	}
}

func TestRunOnlyOnce(t *testing.T) {
	f := setupFixture(t, &fakeBackend{refresh: refreshFails(http.StatusUnauthorized)})

	_, err := f.seq.Run(context.Background())
	require.NoError(t, err)

	_, err = f.seq.Run(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrBootstrapCalled)
}

func TestStatusBeforeCompletion(t *testing.T) {
	release := make(chan struct{})
	f := setupFixture(t, &fakeBackend{
		refresh: func(ctx context.Context) (*oauth2.Token, error) {
			<-release
			return nil, &api.StatusError{StatusCode: http.StatusUnauthorized}
		},
	})

	future, err := f.seq.Start(context.Background())
	require.NoError(t, err)

	st := f.seq.Status()
	assert.Equal(t, bootstrap.Initializing, st.Phase)
	assert.False(t, st.Complete)

	close(release)
	require.NoError(t, future.AwaitWithTimeout(waitFor))
	assert.True(t, f.seq.Status().Complete)

	select {
	case <-f.seq.Done():
	default:
		t.Fatal("Done must be closed once the refresh step resolves")
	}
}

func TestProfileFailureKeepsToken(t *testing.T) {
	f := setupFixture(t, &fakeBackend{
		refresh: refreshWith("tok1"),
		profile: func(context.Context) (*users.User, error) {
			return nil, &api.StatusError{StatusCode: http.StatusInternalServerError}
		},
	})

	st, err := f.seq.Run(context.Background())
	require.NoError(t, err)
	f.awaitProfile(t)

	assert.Equal(t, bootstrap.Authenticated, f.seq.Status().Phase)
	assert.Equal(t, bootstrap.Authenticated, st.Phase)
	assert.Equal(t, session.PendingUser, f.store.State().Kind())
	_, err = f.prefs.Get(context.Background(), prefs.KeyDeviceID)
	assert.ErrorIs(t, err, prefs.ErrNotFound, "device identity waits for a successful profile fetch")
}

func TestLaterLoginFetchesProfile(t *testing.T) {
	f := setupFixture(t, &fakeBackend{
		refresh: refreshFails(http.StatusUnauthorized),
		profile: profileOf(&users.User{Username: "cashier"}),
	})

	st, err := f.seq.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, bootstrap.Unauthenticated, st.Phase)

	f.store.SetToken("login-token")
	f.awaitProfile(t)

	assert.Equal(t, "cashier", f.store.State().User().Username)
	assert.Equal(t, bootstrap.Authenticated, f.seq.Status().Phase)

	f.store.ClearSession()
	assert.Equal(t, bootstrap.Unauthenticated, f.seq.Status().Phase)
}

func TestStaleProfileIsDropped(t *testing.T) {
	release := make(chan struct{})
	f := setupFixture(t, &fakeBackend{
		refresh: refreshWith("tok1"),
		profile: func(context.Context) (*users.User, error) {
			<-release
			return &users.User{Username: "old"}, nil
		},
	})

	_, err := f.seq.Run(context.Background())
	require.NoError(t, err)
	fetch := f.seq.ProfileFetch()
	require.NotNil(t, fetch)

	f.store.ClearSession()
	close(release)
	_ = fetch.AwaitWithTimeout(waitFor)

	assert.Equal(t, session.LoggedOut, f.store.State().Kind())
	assert.Nil(t, f.store.State().User())
}

func TestCancelBeforeRefreshResolves(t *testing.T) {
	started := make(chan struct{})
	f := setupFixture(t, &fakeBackend{
		refresh: func(ctx context.Context) (*oauth2.Token, error) {
			close(started)
			<-ctx.Done()
			// A late success must still be ignored once the owner is gone.
			return &oauth2.Token{AccessToken: "late"}, nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	future, err := f.seq.Start(ctx)
	require.NoError(t, err)
	<-started
	cancel()

	err = future.AwaitWithTimeout(waitFor)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, f.store.State().HasToken())
	assert.False(t, f.seq.Status().Complete)
}

func TestProfileUnauthorizedDuringCompletion(t *testing.T) {
	f := setupFixture(t, &fakeBackend{refresh: refreshWith("tok1")})
	f.backend.profile = func(ctx context.Context) (*users.User, error) {
		// The dispatcher clears the session before returning a 401.
		f.store.ClearSession()
		return nil, &api.StatusError{Method: http.MethodGet, Path: api.PathProfile, StatusCode: http.StatusUnauthorized}
	}

	_, err := f.seq.Run(context.Background())
	require.NoError(t, err)
	f.awaitProfile(t)

	st := f.seq.Status()
	assert.True(t, st.Complete)
	assert.Equal(t, bootstrap.Unauthenticated, st.Phase)
	assert.False(t, f.store.State().HasToken())
}

func TestLoginWhileRefreshPending(t *testing.T) {
	release := make(chan struct{})
	f := setupFixture(t, &fakeBackend{
		refresh: func(ctx context.Context) (*oauth2.Token, error) {
			<-release
			return refreshFails(http.StatusUnauthorized)(ctx)
		},
		profile: profileOf(&users.User{Username: "cashier"}),
	})

	fut, err := f.seq.Start(context.Background())
	require.NoError(t, err)
	f.store.SetToken("login-tok")
	close(release)

	require.NoError(t, fut.Await())
	st := f.seq.Status()
	assert.True(t, st.Complete)
	assert.Equal(t, bootstrap.Authenticated, st.Phase, "the phase follows the token held at completion")
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "initializing", bootstrap.Initializing.String())
	assert.Equal(t, "fatal_error", bootstrap.FatalError.String())
}
