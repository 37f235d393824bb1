package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	apperrors "github.com/jrsteele09/go-pos-console/internal/errors"
	"github.com/jrsteele09/go-pos-console/prefs"
	"github.com/rs/zerolog"
)

// OriginResolver answers "which backend do we talk to" at call time.
// An override persisted in the preference store wins over the build-time default.
type OriginResolver struct {
	store    prefs.Store
	fallback string
	log      zerolog.Logger
}

func NewOriginResolver(store prefs.Store, fallback string, log zerolog.Logger) *OriginResolver {
	return &OriginResolver{
		store:    store,
		fallback: strings.TrimRight(fallback, "/"),
		log:      log.With().Str("component", "origin").Logger(),
	}
}

// Resolve never fails: an unreadable preference store falls back to the default origin.
func (o *OriginResolver) Resolve(ctx context.Context) string {
	v, err := prefs.GetOr(ctx, o.store, prefs.KeyBackendOrigin, o.fallback)
	if err != nil {
		o.log.Warn().Err(err).Str("fallback", o.fallback).Msg("reading origin override failed")
		return o.fallback
	}
	return v
}

// Default returns the build-time origin.
func (o *OriginResolver) Default() string {
	return o.fallback
}

// SetOverride validates and persists a new origin.
func (o *OriginResolver) SetOverride(ctx context.Context, origin string) error {
	normalized, err := NormalizeOrigin(origin)
	if err != nil {
		return err
	}
	if err := o.store.Set(ctx, prefs.KeyBackendOrigin, normalized); err != nil {
		return fmt.Errorf("persist origin override: %w", err)
	}
	o.log.Info().Str("origin", normalized).Msg("backend origin overridden")
	return nil
}

// ClearOverride reverts to the build-time default.
func (o *OriginResolver) ClearOverride(ctx context.Context) error {
	if err := o.store.Delete(ctx, prefs.KeyBackendOrigin); err != nil {
		return fmt.Errorf("clear origin override: %w", err)
	}
	return nil
}

// NormalizeOrigin accepts an absolute http(s) URL and strips any trailing slash.
func NormalizeOrigin(origin string) (string, error) {
	origin = strings.TrimSpace(origin)
	u, err := url.Parse(origin)
	if err != nil {
		return "", apperrors.Wrapf(apperrors.ErrInvalidOrigin, "%q: %v", origin, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", apperrors.Wrapf(apperrors.ErrInvalidOrigin, "%q: scheme must be http or https", origin)
	}
	if u.Host == "" {
		return "", apperrors.Wrapf(apperrors.ErrInvalidOrigin, "%q: missing host", origin)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return "", apperrors.Wrapf(apperrors.ErrInvalidOrigin, "%q: query and fragment are not allowed", origin)
	}
	return strings.TrimRight(u.String(), "/"), nil
}
