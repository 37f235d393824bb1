package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/jrsteele09/go-pos-console/internal/config"
	apperrors "github.com/jrsteele09/go-pos-console/internal/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// maxErrorBody caps how much of a failed response is kept for classification.
const maxErrorBody = 64 << 10

// Session is what the dispatcher needs from the session store.
type Session interface {
	oauth2.TokenSource
	ClearSession()
}

// Dispatcher is the single authenticated HTTP pipeline every backend call goes through.
type Dispatcher struct {
	client  *http.Client
	origin  *OriginResolver
	prefix  string
	session Session
	log     zerolog.Logger
}

type Option func(*Dispatcher)

// WithHTTPClient replaces the default client. If c has no cookie jar the dispatcher
// uses a copy of c with its own jar; c itself is never modified.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Dispatcher) {
		d.client = c
	}
}

func NewDispatcher(cfg config.BackendConfig, origin *OriginResolver, session Session, log zerolog.Logger, opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		client:  &http.Client{Timeout: cfg.GetRequestTimeout()},
		origin:  origin,
		prefix:  "/" + strings.Trim(cfg.GetAPIPrefix(), "/"),
		session: session,
		log:     log.With().Str("component", "dispatcher").Logger(),
	}
	if d.prefix == "/" {
		d.prefix = ""
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.client.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		client := *d.client
		client.Jar = jar
		d.client = &client
	}
	return d, nil
}

// URL builds the absolute URL for path against the origin resolved now.
func (d *Dispatcher) URL(ctx context.Context, path string) string {
	return d.origin.Resolve(ctx) + d.prefix + "/" + strings.TrimLeft(path, "/")
}

// Call sends one request and decodes the envelope payload into T.
// Non-2xx responses return *StatusError; a 401 clears the session first.
func Call[T any](ctx context.Context, d *Dispatcher, method, path string, body any) (*Envelope[T], error) {
	raw, err := d.Do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	var env Envelope[T]
	if len(bytes.TrimSpace(raw)) == 0 {
		return &env, nil
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", apperrors.ErrDecodeResponse, method, path, err)
	}
	return &env, nil
}

// Do sends the request and returns the raw 2xx body.
func (d *Dispatcher) Do(ctx context.Context, method, path string, body any) ([]byte, error) {
	req, err := d.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := d.client.Do(req)
	if err != nil {
		d.log.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return nil, fmt.Errorf("%w: %s %s: %w", apperrors.ErrTransport, method, path, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			d.log.Debug().Err(closeErr).Msg("failed to close response body")
		}
	}()

	d.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status_code", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("response")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s %s: %w", apperrors.ErrTransport, method, path, err)
		}
		return raw, nil
	}

	statusErr := &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode}
	statusErr.Body, _ = io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var env rawEnvelope
	if json.Unmarshal(statusErr.Body, &env) == nil {
		statusErr.Envelope = &env
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// One clear per failing response; the store ignores it when already empty.
		d.session.ClearSession()
		d.log.Info().Str("method", method).Str("path", path).Msg("unauthorized response, session cleared")
	}
	return nil, statusErr
}

func (d *Dispatcher) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, d.URL(ctx, path), reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// The token is read per request, so a cleared session stops the bearer immediately.
	if tok, err := d.session.Token(); err == nil && tok.AccessToken != "" {
		tok.SetAuthHeader(req)
	}
	return req, nil
}
