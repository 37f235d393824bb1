package session

import (
	"context"
	"sync"

	apperrors "github.com/jrsteele09/go-pos-console/internal/errors"
	"github.com/jrsteele09/go-pos-console/users"
	"golang.org/x/oauth2"
)

// ErrNoToken is returned by Token when nobody is logged in.
var ErrNoToken = apperrors.ErrNoToken

// Listener receives every state change, in order, with the state before and after it.
// Listeners run synchronously on the writer's goroutine and must not call Store setters,
// Subscribe or an unsubscribe func directly; spawn a goroutine for follow-up writes.
type Listener func(prev, next State)

type subscription struct {
	id int
	fn Listener
}

// Store is the single source of truth for who is logged in.
// It also implements oauth2.TokenSource so the dispatcher can attach the bearer token.
type Store struct {
	lock  sync.RWMutex
	state State

	// notifyLock serializes mutate+notify so listeners observe changes in commit order.
	notifyLock sync.Mutex
	listeners  []subscription
	nextID     int
}

var _ oauth2.TokenSource = (*Store)(nil)

func NewStore() *Store {
	return &Store{state: loggedOut()}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.state
}

// SetToken stores an opaque bearer token. An empty token logs out.
// A new token while Authenticated keeps the current user until a profile fetch replaces it.
func (s *Store) SetToken(token string) {
	s.update(func(cur State) (State, bool) {
		if token == cur.token {
			return cur, false
		}
		if token == "" {
			return loggedOut(), true
		}
		var next State
		if cur.kind == Authenticated {
			next = authenticated(token, cur.user)
		} else {
			next = pendingUser(token)
		}
		next.profilePanelOpen = cur.profilePanelOpen
		return next, true
	})
}

// SetUser attaches a fetched profile. It is ignored, and returns false, when no token is held,
// which drops profile responses that resolve after a logout.
func (s *Store) SetUser(user *users.User) bool {
	applied := false
	s.update(func(cur State) (State, bool) {
		if cur.token == "" || user == nil {
			return cur, false
		}
		applied = true
		next := authenticated(cur.token, user)
		next.profilePanelOpen = cur.profilePanelOpen
		return next, true
	})
	return applied
}

// SetUserFor is SetUser guarded by the token the profile was fetched with, so a
// response that resolves after a logout and a new login cannot attach the wrong user.
func (s *Store) SetUserFor(token string, user *users.User) bool {
	applied := false
	s.update(func(cur State) (State, bool) {
		if token == "" || cur.token != token || user == nil {
			return cur, false
		}
		applied = true
		next := authenticated(cur.token, user)
		next.profilePanelOpen = cur.profilePanelOpen
		return next, true
	})
	return applied
}

// ClearSession is SetToken(""). Calling it on an empty session is a no-op.
func (s *Store) ClearSession() {
	s.SetToken("")
}

// SetProfilePanelOpen toggles the profile side panel flag. Ignored while logged out.
func (s *Store) SetProfilePanelOpen(open bool) {
	s.update(func(cur State) (State, bool) {
		if cur.token == "" || cur.profilePanelOpen == open {
			return cur, false
		}
		next := cur
		next.profilePanelOpen = open
		return next, true
	})
}

// Logout calls signOut and then clears the session whatever the call returned.
// The sign-out error is returned for logging only.
func (s *Store) Logout(ctx context.Context, signOut func(context.Context) error) error {
	var err error
	if signOut != nil {
		err = signOut(ctx)
	}
	s.ClearSession()
	return err
}

// Token implements oauth2.TokenSource.
func (s *Store) Token() (*oauth2.Token, error) {
	token := s.State().AccessToken()
	if token == "" {
		return nil, ErrNoToken
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.notifyLock.Lock()
	defer s.notifyLock.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	return func() {
		s.notifyLock.Lock()
		defer s.notifyLock.Unlock()
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) update(mutate func(cur State) (State, bool)) {
	s.notifyLock.Lock()
	defer s.notifyLock.Unlock()

	s.lock.Lock()
	prev := s.state
	next, changed := mutate(prev)
	if changed {
		s.state = next
	}
	s.lock.Unlock()

	if !changed {
		return
	}
	for _, sub := range s.listeners {
		sub.fn(prev, next)
	}
}
