package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

const sessionCookie = "gw_session"

type sessionKey struct{}

// sessionMiddleware attaches the browser's session id to the request context,
// starting a new session when the cookie is missing or has expired.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(sessionCookie); err == nil {
			if _, ok := s.sessions.Get(c.Value); ok {
				id = c.Value
			}
		}
		if id == "" {
			id, _ = s.sessions.Create()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			slog.Debug("Started session", "request_id", middleware.GetReqID(r.Context()), "sessions", s.sessions.Len())
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, id)))
	})
}

func sessionID(r *http.Request) string {
	id, _ := r.Context().Value(sessionKey{}).(string)
	return id
}
