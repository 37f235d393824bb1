package stubbackend

import "net/http"

// ProfileHandler returns the user the access token was issued to.
func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r)
		user, err := s.users.GetByID(claims.Subject)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "User no longer exists")
			return
		}
		if user.Blocked {
			writeError(w, http.StatusUnauthorized, "Account is blocked")
			return
		}
		writeEnvelope(w, http.StatusOK, user, nil)
	}
}
