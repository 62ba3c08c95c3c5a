package server

import (
	"net/http"

	"github.com/corralworks/corral/internal/auth"
	"github.com/corralworks/corral/internal/session"
)

type principalResponse struct {
	ID         int64             `json:"id"`
	Username   string            `json:"username"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// handleLogin completes a credential login. The authentication pipeline has
// already run in front of this handler; a request that reaches it carries a
// bound principal and, for username/password logins, a session with the
// username key written by the winning strategy. The handler only reports the
// established identity back.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		// The pipeline guards this route; reaching here without a principal
		// is a wiring bug.
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, principalResponse{
		ID:         principal.ID,
		Username:   principal.Username,
		Attributes: principal.Attributes,
	})
}

// handleWhoAmI reports the authenticated principal.
func (s *Server) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, principalResponse{
		ID:         principal.ID,
		Username:   principal.Username,
		Attributes: principal.Attributes,
	})
}

// handleLogout ends the caller's session. The session record is removed and
// the cookie expired; bearer credentials are unaffected since the server
// holds no state for them.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if sess != nil && s.sessions != nil {
		if err := s.sessions.Destroy(r.Context(), w, sess); err != nil {
			writeError(w, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
