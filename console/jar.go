package console

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-pos-console/internal/errors"
	"github.com/jrsteele09/go-pos-console/prefs"
	"github.com/rs/zerolog"
)

type savedCookie struct {
	URL    string       `json:"url"`
	Cookie *http.Cookie `json:"cookie"`
}

// persistentJar is a cookie jar whose cookies survive process restarts, so a
// CLI run can restore the session another run started. Cookies are kept in
// the preference store under prefs.KeyCookies.
type persistentJar struct {
	jar   *cookiejar.Jar
	store prefs.Store
	log   zerolog.Logger

	lock  sync.Mutex
	saved map[string]savedCookie // keyed by origin, name and path
}

var _ http.CookieJar = (*persistentJar)(nil)

func newPersistentJar(ctx context.Context, store prefs.Store, log zerolog.Logger) (*persistentJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	p := &persistentJar{jar: jar, store: store, log: log, saved: make(map[string]savedCookie)}

	raw, err := store.Get(ctx, prefs.KeyCookies)
	if apperrors.Is(err, prefs.ErrNotFound) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read saved cookies: %w", err)
	}

	var saved []savedCookie
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		// A corrupt entry only costs a fresh login.
		log.Warn().Err(err).Msg("discarding unreadable saved cookies")
		return p, nil
	}
	now := time.Now()
	for _, sc := range saved {
		u, err := url.Parse(sc.URL)
		if err != nil || sc.Cookie == nil || (!sc.Cookie.Expires.IsZero() && sc.Cookie.Expires.Before(now)) {
			continue
		}
		p.saved[cookieKey(u, sc.Cookie)] = sc
		jar.SetCookies(u, []*http.Cookie{sc.Cookie})
	}
	return p, nil
}

func (p *persistentJar) Cookies(u *url.URL) []*http.Cookie {
	return p.jar.Cookies(u)
}

func (p *persistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	p.jar.SetCookies(u, cookies)

	p.lock.Lock()
	defer p.lock.Unlock()
	origin := &url.URL{Scheme: u.Scheme, Host: u.Host, Path: u.Path}
	for _, c := range cookies {
		key := cookieKey(u, c)
		if c.MaxAge < 0 || c.Value == "" || (!c.Expires.IsZero() && c.Expires.Before(time.Now())) {
			delete(p.saved, key)
			continue
		}
		p.saved[key] = savedCookie{URL: origin.String(), Cookie: c}
	}

	list := make([]savedCookie, 0, len(p.saved))
	for _, sc := range p.saved {
		list = append(list, sc)
	}
	raw, err := json.Marshal(list)
	if err != nil {
		p.log.Warn().Err(err).Msg("encoding cookies")
		return
	}
	// SetCookies has no context or error return; persistence is best effort.
	if err := p.store.Set(context.Background(), prefs.KeyCookies, string(raw)); err != nil {
		p.log.Warn().Err(err).Msg("saving cookies")
	}
}

func cookieKey(u *url.URL, c *http.Cookie) string {
	return u.Scheme + "://" + u.Host + "|" + c.Name + "|" + c.Path
}
