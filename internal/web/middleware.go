// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package web

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// SessionCookie names the per-browser session cookie. Searches from the
// same session supersede each other.
const SessionCookie = "rs_session"

type sessionKey struct{}

// session makes sure every request carries a session id, issuing a cookie
// when the browser has none or an unparsable one.
func (s *Server) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(SessionCookie); err == nil {
			if u, err := uuid.Parse(c.Value); err == nil {
				id = u.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, id)))
	})
}

// sessionID returns the request's session id, or "" outside the session
// middleware.
func sessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}
