package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/jrsteele09/go-pos-console/users"
	"golang.org/x/oauth2"
)

const (
	PathRefresh = "/auth/refresh"
	PathSignIn  = "/auth/signin"
	PathSignOut = "/auth/signout"
	PathProfile = "/user/"
)

var errEmptyAccessToken = errors.New("backend returned an empty access token")

// Refresh exchanges the refresh cookie for a new access token.
func (d *Dispatcher) Refresh(ctx context.Context) (*oauth2.Token, error) {
	return d.tokenCall(ctx, PathRefresh, nil)
}

// SignIn authenticates with username and password.
func (d *Dispatcher) SignIn(ctx context.Context, req SignInRequest) (*oauth2.Token, error) {
	return d.tokenCall(ctx, PathSignIn, req)
}

// SignOut revokes the current session on the backend.
func (d *Dispatcher) SignOut(ctx context.Context, req SignOutRequest) error {
	_, err := Call[MessagePayload](ctx, d, http.MethodPost, PathSignOut, req)
	return err
}

// Profile fetches the logged-in user.
func (d *Dispatcher) Profile(ctx context.Context) (*users.User, error) {
	env, err := Call[users.User](ctx, d, http.MethodGet, PathProfile, nil)
	if err != nil {
		return nil, err
	}
	return &env.Payload, nil
}

func (d *Dispatcher) tokenCall(ctx context.Context, path string, body any) (*oauth2.Token, error) {
	env, err := Call[TokenPayload](ctx, d, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	if env.Payload.AccessToken == "" {
		return nil, errEmptyAccessToken
	}
	return env.Payload.OAuth2Token(), nil
}
