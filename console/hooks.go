package console

import (
	"context"

	"github.com/jrsteele09/go-pos-console/action"
	"github.com/jrsteele09/go-pos-console/api"
	"github.com/jrsteele09/go-pos-console/users"
)

// SessionHook is what screens read the session through.
type SessionHook struct {
	app *App
}

// User is nil until the profile has arrived.
func (h SessionHook) User() *users.User {
	return h.app.session.State().User()
}

func (h SessionHook) AccessToken() string {
	return h.app.session.State().AccessToken()
}

// SetAccessToken stores token. "" logs out locally without calling the backend.
func (h SessionHook) SetAccessToken(token string) {
	h.app.session.SetToken(token)
}

// Logout signs out on the backend, then clears the session whatever the backend said.
// The returned error is only worth logging.
func (h SessionHook) Logout(ctx context.Context) error {
	return h.app.session.Logout(ctx, h.app.signOut)
}

// ErrorHook is what screens report user-facing failures through.
type ErrorHook struct {
	app *App
}

func (h ErrorHook) Error() *action.ClassifiedError {
	return h.app.errors.Error()
}

func (h ErrorHook) SetError(err *action.ClassifiedError) {
	h.app.errors.SetError(err)
}

// Issue runs op through the action wrapper.
func Issue[T any](ctx context.Context, op func(ctx context.Context) (T, error)) action.Result[T] {
	return action.Issue(ctx, op)
}

func (a *App) signOut(ctx context.Context) error {
	req := api.SignOutRequest{}
	if id, ok, err := a.devices.Get(ctx); err != nil {
		a.log.Warn().Err(err).Msg("reading device id for sign out")
	} else if ok {
		req.DeviceID = id.DeviceID
	}
	if seen, err := a.marker.LastSeen(ctx); err != nil {
		a.log.Warn().Err(err).Msg("reading notification marker for sign out")
	} else {
		req.LastNotificationSeen = seen
	}

	err := a.dispatcher.SignOut(ctx, req)
	if err != nil {
		a.log.Info().Err(err).Msg("backend sign out failed, clearing local session anyway")
	}
	return err
}
