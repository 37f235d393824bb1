package session

import "github.com/jrsteele09/go-pos-console/users"

// Kind tags which variant a State holds.
type Kind int

const (
	// LoggedOut: no access token.
	LoggedOut Kind = iota
	// PendingUser: a token is held but the profile has not arrived yet.
	PendingUser
	// Authenticated: token and profile are both held.
	Authenticated
)

func (k Kind) String() string {
	switch k {
	case LoggedOut:
		return "logged_out"
	case PendingUser:
		return "pending_user"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// State is an immutable snapshot of the session. The zero value is LoggedOut.
// Fields are unexported so a user can never be attached to a state without a token.
type State struct {
	kind  Kind
	token string
	user  *users.User

	profilePanelOpen bool
}

func loggedOut() State {
	return State{kind: LoggedOut}
}

func pendingUser(token string) State {
	return State{kind: PendingUser, token: token}
}

func authenticated(token string, user *users.User) State {
	return State{kind: Authenticated, token: token, user: user}
}

func (s State) Kind() Kind { return s.kind }

// AccessToken is "" when logged out.
func (s State) AccessToken() string { return s.token }

// User is nil unless the state is Authenticated.
func (s State) User() *users.User {
	if s.kind != Authenticated {
		return nil
	}
	return s.user
}

// HasToken reports whether protected routes may be mounted at all.
func (s State) HasToken() bool { return s.token != "" }

// IsAdmin is false for every state except an Authenticated admin.
func (s State) IsAdmin() bool { return s.User().Admin() }

func (s State) ProfilePanelOpen() bool { return s.profilePanelOpen }
