// Package console wires the session core into one application object.
package console

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-pos-console/action"
	"github.com/jrsteele09/go-pos-console/api"
	"github.com/jrsteele09/go-pos-console/bootstrap"
	"github.com/jrsteele09/go-pos-console/device"
	"github.com/jrsteele09/go-pos-console/errorstore"
	"github.com/jrsteele09/go-pos-console/features"
	"github.com/jrsteele09/go-pos-console/guard"
	"github.com/jrsteele09/go-pos-console/internal/config"
	"github.com/jrsteele09/go-pos-console/prefs"
	"github.com/jrsteele09/go-pos-console/session"
	"github.com/rs/zerolog"
)

// Screen routes registered by New.
const (
	RouteDashboard   = "/dashboard"
	RouteProfile     = "/profile"
	RouteBrands      = "/brands"
	RouteAdminBrands = "/admin/brands"
)

type App struct {
	log   zerolog.Logger
	prefs prefs.Store
	close func() error

	unsubscribe func()

	session    *session.Store
	origin     *api.OriginResolver
	dispatcher *api.Dispatcher
	errors     *errorstore.Store
	surface    *errorstore.Surface
	devices    *device.Registry
	marker     *device.NotificationMarker
	sequencer  *bootstrap.Sequencer
	router     *guard.Router
	brands     *features.Brands
}

type options struct {
	prefs      prefs.Store
	httpClient *http.Client
}

type Option func(*options)

// WithPrefsStore bypasses the configured preference backend.
func WithPrefsStore(store prefs.Store) Option {
	return func(o *options) {
		o.prefs = store
	}
}

// WithHTTPClient replaces the dispatcher's HTTP client. Without it, cookies are
// persisted in the preference store so a later process can restore the session.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

func New(ctx context.Context, cfg config.Config, log zerolog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{log: log, close: func() error { return nil }}
	if o.prefs != nil {
		a.prefs = o.prefs
	} else {
		store, closeFn, err := OpenPrefs(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		a.prefs, a.close = store, closeFn
	}

	a.session = session.NewStore()
	a.origin = api.NewOriginResolver(a.prefs, cfg.GetDefaultOrigin(), log)

	client := o.httpClient
	if client == nil {
		jar, err := newPersistentJar(ctx, a.prefs, log)
		if err != nil {
			_ = a.close()
			return nil, err
		}
		client = &http.Client{Jar: jar, Timeout: cfg.GetRequestTimeout()}
	}
	dispatcher, err := api.NewDispatcher(cfg, a.origin, a.session, log, api.WithHTTPClient(client))
	if err != nil {
		_ = a.close()
		return nil, fmt.Errorf("create dispatcher: %w", err)
	}
	a.dispatcher = dispatcher

	a.errors = errorstore.NewStore()
	a.surface = errorstore.NewSurface(a.errors)
	a.devices = device.NewRegistry(a.prefs, log)
	a.marker = device.NewNotificationMarker(a.prefs)
	a.sequencer = bootstrap.New(a.dispatcher, a.session, a.devices, log)
	a.brands = features.NewBrands(a.dispatcher, a.errors)
	a.unsubscribe = a.session.Subscribe(func(prev, next session.State) {
		if prev.HasToken() && !next.HasToken() {
			a.brands.Forget()
		}
	})

	a.router = guard.NewRouter(a.sequencer, a.session)
	a.registerScreens()
	return a, nil
}

// Start runs the bootstrap sequence once and waits for its refresh step.
// Cancelling ctx later stops any profile fetch still in flight.
func (a *App) Start(ctx context.Context) (bootstrap.Status, error) {
	return a.sequencer.Run(ctx)
}

// Close detaches the sequencer and releases the preference backend.
func (a *App) Close() error {
	a.sequencer.Close()
	a.unsubscribe()
	return a.close()
}

// Login signs in and stores the token, which triggers the profile fetch.
// Failures other than bad credentials are reported to the error store.
func (a *App) Login(ctx context.Context, username, password string) action.Result[action.Done] {
	res := action.Issue(ctx, func(ctx context.Context) (action.Done, error) {
		tok, err := a.dispatcher.SignIn(ctx, api.SignInRequest{Username: username, Password: password})
		if err != nil {
			return action.Done{}, err
		}
		a.session.SetToken(tok.AccessToken)
		return action.Done{}, nil
	})
	if res.Error != nil && !res.Error.Unauthorized() {
		a.errors.SetError(res.Error)
	}
	return res
}

// LoadBrands fetches a page of brands for the brands screens to render.
func (a *App) LoadBrands(ctx context.Context, page, pageSize int) action.Result[features.BrandPage] {
	return a.brands.List(ctx, page, pageSize)
}

// Render is one render pass for path. It reads state only.
func (a *App) Render(path string) guard.View {
	return a.router.Render(path)
}

func (a *App) Session() SessionHook { return SessionHook{app: a} }

func (a *App) Errors() ErrorHook { return ErrorHook{app: a} }

func (a *App) Surface() *errorstore.Surface { return a.surface }

func (a *App) Origin() *api.OriginResolver { return a.origin }

func (a *App) Bootstrap() *bootstrap.Sequencer { return a.sequencer }

func (a *App) Devices() *device.Registry { return a.devices }

func (a *App) Notifications() *device.NotificationMarker { return a.marker }

func (a *App) Brands() *features.Brands { return a.brands }

func (a *App) SessionStore() *session.Store { return a.session }
