package stubbackend_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-pos-console/api"
	"github.com/jrsteele09/go-pos-console/internal/config"
	"github.com/jrsteele09/go-pos-console/stubbackend"
	"github.com/jrsteele09/go-pos-console/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	server *stubbackend.Server
	http   *httptest.Server
	client *http.Client
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	srv, err := stubbackend.New(config.New())
	require.NoError(t, err)

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &fixture{server: srv, http: ts, client: &http.Client{Jar: jar}}
}

func (f *fixture) do(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, f.http.URL+"/api/v1"+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (f *fixture) signIn(t *testing.T, username, password string) string {
	t.Helper()
	var env api.Envelope[api.TokenPayload]
	status := f.do(t, http.MethodPost, stubbackend.RouteSignIn, "", api.SignInRequest{Username: username, Password: password}, &env)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, env.Payload.AccessToken)
	return env.Payload.AccessToken
}

func TestSignInAndProfile(t *testing.T) {
	f := setupFixture(t)
	token := f.signIn(t, stubbackend.SeedAdminUsername, stubbackend.SeedAdminPassword)

	var env api.Envelope[users.User]
	status := f.do(t, http.MethodGet, stubbackend.RouteProfile, token, nil, &env)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, stubbackend.SeedAdminUsername, env.Payload.Username)
	assert.True(t, env.Payload.IsAdmin)
	assert.Equal(t, "Main Warehouse", env.Payload.WarehouseName())
	assert.Empty(t, env.Payload.PasswordHash)
}

func TestSignInWrongPassword(t *testing.T) {
	f := setupFixture(t)

	var env api.Envelope[api.MessagePayload]
	status := f.do(t, http.MethodPost, stubbackend.RouteSignIn, "", api.SignInRequest{Username: "admin", Password: "nope"}, &env)
	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, env.Error)
	assert.NotEmpty(t, env.Error.ReferenceID)
}

func TestProfileRequiresBearer(t *testing.T) {
	f := setupFixture(t)

	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, stubbackend.RouteProfile, "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, stubbackend.RouteProfile, "garbage", nil, nil))
}

func TestRefreshWithoutCookie(t *testing.T) {
	f := setupFixture(t)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodPost, stubbackend.RouteRefresh, "", nil, nil))
}

func TestRefreshRotatesCookie(t *testing.T) {
	f := setupFixture(t)
	f.signIn(t, stubbackend.SeedCashierUsername, stubbackend.SeedCashierPassword)

	var env api.Envelope[api.TokenPayload]
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, stubbackend.RouteRefresh, "", nil, &env))
	assert.NotEmpty(t, env.Payload.AccessToken)
	assert.False(t, env.Payload.ExpiresAt.IsZero())

	// The jar now holds the rotated credential, so a second refresh works too.
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, stubbackend.RouteRefresh, "", nil, nil))
}

func TestFailRefresh(t *testing.T) {
	f := setupFixture(t)
	f.server.FailRefresh(http.StatusServiceUnavailable)
	assert.Equal(t, http.StatusServiceUnavailable, f.do(t, http.MethodPost, stubbackend.RouteRefresh, "", nil, nil))

	f.server.FailRefresh(0)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodPost, stubbackend.RouteRefresh, "", nil, nil))
}

func TestSignOutRevokes(t *testing.T) {
	f := setupFixture(t)
	token := f.signIn(t, stubbackend.SeedCashierUsername, stubbackend.SeedCashierPassword)

	body := api.SignOutRequest{DeviceID: "dev-1", LastNotificationSeen: "n-42"}
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, stubbackend.RouteSignOut, token, body, nil))

	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, stubbackend.RouteProfile, token, nil, nil))
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodPost, stubbackend.RouteRefresh, "", nil, nil))
}

func TestBrands(t *testing.T) {
	f := setupFixture(t)
	admin := f.signIn(t, stubbackend.SeedAdminUsername, stubbackend.SeedAdminPassword)

	var failed api.Envelope[api.MessagePayload]
	status := f.do(t, http.MethodPost, stubbackend.RouteBrands, admin, map[string]string{"name": " "}, &failed)
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, failed.Error)
	assert.Equal(t, "Name is required", failed.Error.DetailMessage)
	assert.Equal(t, http.StatusBadRequest, failed.StatusCode)

	for _, name := range []string{"Zeta", "Acme", "Mid"} {
		require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, stubbackend.RouteBrands, admin, map[string]string{"name": name}, nil))
	}
	assert.Equal(t, http.StatusConflict, f.do(t, http.MethodPost, stubbackend.RouteBrands, admin, map[string]string{"name": "acme"}, nil))

	var page api.Envelope[[]map[string]any]
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, stubbackend.RouteBrands+"?page=1&pageSize=2", admin, nil, &page))
	require.Len(t, page.Payload, 2)
	assert.Equal(t, "Acme", page.Payload[0]["name"])
	require.NotNil(t, page.Pagination)
	assert.Equal(t, 3, page.Pagination.Total)
}

func TestCreateBrandRequiresAdmin(t *testing.T) {
	f := setupFixture(t)
	cashier := f.signIn(t, stubbackend.SeedCashierUsername, stubbackend.SeedCashierPassword)

	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodPost, stubbackend.RouteBrands, cashier, map[string]string{"name": "Acme"}, nil))
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, stubbackend.RouteBrands, cashier, nil, nil))
}
