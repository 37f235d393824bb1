package stubbackend

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-pos-console/api"
	"github.com/jrsteele09/go-pos-console/stubbackend/tokens"
	"github.com/jrsteele09/go-pos-console/users"
	"github.com/rs/zerolog/log"
)

// RefreshHandler rotates the refresh cookie and issues a new access token.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if status := s.refreshFault(); status != 0 {
			writeError(w, status, "Refresh temporarily unavailable")
			return
		}

		cookie, err := r.Cookie(RefreshCookieName)
		if err != nil || cookie.Value == "" {
			writeError(w, http.StatusUnauthorized, "No refresh credential")
			return
		}

		userID, next, err := s.refresh.Rotate(cookie.Value)
		if err != nil {
			s.clearRefreshCookie(w)
			writeError(w, http.StatusUnauthorized, "Refresh credential is no longer valid")
			return
		}

		user, err := s.users.GetByID(userID)
		if err != nil || user.Blocked {
			s.refresh.Revoke(next)
			s.clearRefreshCookie(w)
			writeError(w, http.StatusUnauthorized, "User is not allowed to sign in")
			return
		}

		s.issueTokens(w, user, next)
	}
}

// SignInHandler checks username and password and starts a session.
func (s *Server) SignInHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.SignInRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Malformed request body")
			return
		}
		req.Username = strings.TrimSpace(req.Username)
		if req.Username == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "Username and password are required")
			return
		}

		user, err := s.users.GetByUsername(req.Username)
		if err != nil || !users.CheckPasswordHash(req.Password, user.PasswordHash) {
			writeError(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		if user.Blocked {
			writeError(w, http.StatusForbidden, "Account is blocked")
			return
		}

		updated := *user
		updated.LastLogin = tokens.NowTimeFunc()
		if err := s.users.Upsert(&updated); err != nil {
			log.Err(err).Str("user_id", user.ID).Msg("Failed to record last login")
		}

		refresh, err := s.refresh.Create(user.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to start session")
			return
		}
		s.issueTokens(w, user, refresh)
	}
}

// SignOutHandler revokes the presented access token and the user's refresh token.
func (s *Server) SignOutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.SignOutRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "Malformed request body")
				return
			}
		}

		claims := claimsFrom(r)
		if claims.ExpiresAt != nil {
			s.revoked.Add(claims.ID, claims.ExpiresAt.Time)
		}
		s.refresh.RevokeUser(claims.Subject)
		s.clearRefreshCookie(w)

		log.Info().
			Str("user_id", claims.Subject).
			Str("device_id", req.DeviceID).
			Str("last_notification_seen", req.LastNotificationSeen).
			Msg("signed out")
		writeEnvelope(w, http.StatusOK, api.MessagePayload{Message: "Signed out"}, nil)
	}
}

func (s *Server) issueTokens(w http.ResponseWriter, user *users.User, refresh string) {
	access, exp, err := s.access.Create(user)
	if err != nil {
		log.Err(err).Str("user_id", user.ID).Msg("Failed to create access token")
		writeError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    refresh,
		Path:     s.prefix + "/auth",
		Expires:  tokens.NowTimeFunc().Add(s.refresh.Expiry()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	writeEnvelope(w, http.StatusOK, api.TokenPayload{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    exp,
	}, nil)
}

func (s *Server) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     s.prefix + "/auth",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
}
