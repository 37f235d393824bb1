package features_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-pos-console/action"
	"github.com/jrsteele09/go-pos-console/api"
	"github.com/jrsteele09/go-pos-console/features"
	"github.com/jrsteele09/go-pos-console/internal/config"
	"github.com/jrsteele09/go-pos-console/prefs/memstore"
	"github.com/jrsteele09/go-pos-console/session"
	"github.com/jrsteele09/go-pos-console/stubbackend"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	reported []*action.ClassifiedError
}

func (r *recordingReporter) SetError(err *action.ClassifiedError) {
	r.reported = append(r.reported, err)
}

type fixture struct {
	session    *session.Store
	dispatcher *api.Dispatcher
	reporter   *recordingReporter
	brands     *features.Brands
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	backend, err := stubbackend.New(config.New())
	require.NoError(t, err)
	ts := httptest.NewServer(backend)
	t.Cleanup(ts.Close)

	f := &fixture{session: session.NewStore(), reporter: &recordingReporter{}}
	origin := api.NewOriginResolver(memstore.New(), ts.URL, zerolog.Nop())
	f.dispatcher, err = api.NewDispatcher(config.New(), origin, f.session, zerolog.Nop())
	require.NoError(t, err)
	f.brands = features.NewBrands(f.dispatcher, f.reporter)
	return f
}

func (f *fixture) signIn(t *testing.T, username, password string) {
	t.Helper()
	tok, err := f.dispatcher.SignIn(context.Background(), api.SignInRequest{Username: username, Password: password})
	require.NoError(t, err)
	f.session.SetToken(tok.AccessToken)
}

func TestCreateAndList(t *testing.T) {
	f := setupFixture(t)
	f.signIn(t, stubbackend.SeedAdminUsername, stubbackend.SeedAdminPassword)
	ctx := context.Background()

	for _, name := range []string{"Oat Co", "Bean Bros", "Leaf & Co"} {
		res := f.brands.Create(ctx, features.CreateBrandRequest{Name: name})
		require.True(t, res.OK(), "create %s: %v", name, res.Error)
		assert.NotEmpty(t, res.Response.ID)
		assert.False(t, res.Response.CreatedAt.IsZero())
	}

	res := f.brands.List(ctx, 2, 2)
	require.True(t, res.OK())
	require.Len(t, res.Response.Brands, 1)
	assert.Equal(t, "Oat Co", res.Response.Brands[0].Name)
	assert.Equal(t, api.Pagination{Page: 2, PageSize: 2, Total: 3}, res.Response.Pagination)
	assert.Empty(t, f.reporter.reported)
	assert.Same(t, res.Response, f.brands.Loaded())
}

func TestLoadedKeepsLastSuccessfulPage(t *testing.T) {
	f := setupFixture(t)
	f.signIn(t, stubbackend.SeedAdminUsername, stubbackend.SeedAdminPassword)
	ctx := context.Background()
	assert.Nil(t, f.brands.Loaded())

	res := f.brands.List(ctx, 1, 10)
	require.True(t, res.OK())
	require.NotNil(t, f.brands.Loaded())

	f.session.SetToken("expired")
	require.False(t, f.brands.List(ctx, 1, 10).OK())
	assert.Same(t, res.Response, f.brands.Loaded(), "a failed fetch keeps the previous page")

	f.brands.Forget()
	assert.Nil(t, f.brands.Loaded())
}

func TestCreateValidationFailureIsReported(t *testing.T) {
	f := setupFixture(t)
	f.signIn(t, stubbackend.SeedAdminUsername, stubbackend.SeedAdminPassword)

	res := f.brands.Create(context.Background(), features.CreateBrandRequest{Name: ""})
	require.False(t, res.OK())
	assert.Nil(t, res.Response)
	assert.Equal(t, http.StatusBadRequest, res.Error.StatusCode)
	assert.Equal(t, "Name is required", res.Error.DetailMessage)
	assert.Equal(t, "Bad Request", res.Error.Message)

	require.Len(t, f.reporter.reported, 1)
	assert.Same(t, res.Error, f.reporter.reported[0])
}

func TestForbiddenIsReported(t *testing.T) {
	f := setupFixture(t)
	f.signIn(t, stubbackend.SeedCashierUsername, stubbackend.SeedCashierPassword)

	res := f.brands.Create(context.Background(), features.CreateBrandRequest{Name: "Acme"})
	require.False(t, res.OK())
	assert.Equal(t, http.StatusForbidden, res.Error.StatusCode)
	require.Len(t, f.reporter.reported, 1)
	assert.NotEmpty(t, f.session.State().AccessToken(), "only a 401 ends the session")
}

func TestUnauthorizedIsNotReported(t *testing.T) {
	f := setupFixture(t)
	f.session.SetToken("expired")

	res := f.brands.List(context.Background(), 1, 10)
	require.False(t, res.OK())
	assert.True(t, res.Error.Unauthorized())
	assert.Empty(t, f.reporter.reported)
	assert.False(t, f.session.State().HasToken())
}
