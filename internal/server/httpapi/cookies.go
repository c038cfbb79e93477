package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/secureapp/internal/server/auth"
)

// sessionFromRequest extracts the session identifier from the signed cookie.
// A missing, malformed or tampered cookie yields ok=false; whether the
// session is still live is the caller's concern.
func (s *Server) sessionFromRequest(r *http.Request) (string, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return "", false
	}

	sessionID, err := auth.GetSessionIDFromToken(c.Value, s.secretKey)
	if err != nil {
		return "", false
	}

	return sessionID, true
}

// ensureSession returns the live session referenced by the cookie, creating
// a fresh session and setting the cookie when there is none. Sessions are
// only created here, by handlers that are about to store state in them.
func (s *Server) ensureSession(w http.ResponseWriter, r *http.Request) (string, error) {
	if sessionID, ok := s.sessionFromRequest(r); ok && s.sessions.Exists(sessionID) {
		return sessionID, nil
	}

	sessionID, expiresAt, err := s.sessions.Create()
	if err != nil {
		return "", err
	}

	token, err := auth.GenerateToken(sessionID, s.secretKey, s.sessionLifetime)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  expiresAt,
	})

	return sessionID, nil
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}
