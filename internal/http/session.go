package http

import (
	"context"
	"errors"
	"net/http"

	applog "despesas/internal/log"
	"despesas/internal/session"
)

type contextKey string

const sessionContextKey contextKey = "session"

var errTemplatesNotLoaded = errors.New("templates not loaded")

// withSession resolves the session named by the cookie, creating one when
// the cookie is missing or expired, and refreshes the cookie lifetime.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.sessions == nil {
			InternalServerError("Sessões indisponíveis").Write(w)
			return
		}
		id := ""
		if c, err := r.Cookie(session.CookieName); err == nil {
			id = c.Value
		}
		sess, created := s.sessions.Resolve(id)
		if created {
			applog.FromContext(r.Context()).WithComponent(applog.ComponentSession).DebugContext(r.Context(), "Session created",
				applog.FieldSessionID, sess.ID)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     session.CookieName,
			Value:    sess.ID,
			Path:     "/",
			MaxAge:   int(s.sessions.TTL().Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   r.TLS != nil,
		})
		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionFrom returns the session stored by withSession.
func sessionFrom(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionContextKey).(*session.Session)
	return sess
}
