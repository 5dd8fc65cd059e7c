package auth

import (
	"net/http"
	"time"

	"finance-tracker/internal/repository"

	"github.com/sirupsen/logrus"
)

// Middleware resolves the session cookie into a user on the request context.
// Unauthenticated requests pass through without a user; resolvers decide
// what requires identity. Sessions past the halfway point of their lifetime
// are renewed, so active users stay logged in while idle sessions expire.
func Middleware(sessions repository.SessionStore, users repository.UserStore, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithRequest(r.Context(), w, r)

			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			session, err := sessions.Find(ctx, cookie.Value)
			if err != nil {
				ClearSessionCookie(w)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			user, err := users.FindByID(ctx, session.UserID)
			if err != nil {
				log.Warnf("Session %s references missing user: %v", cookie.Value[:8], err)
				ClearSessionCookie(w)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			now := time.Now()
			if session.ExpiresAt.Sub(now) < SessionDuration/2 {
				if err := sessions.Renew(ctx, cookie.Value, now.Add(SessionDuration)); err == nil {
					SetSessionCookie(w, cookie.Value)
				}
				// If renewal fails, continue with the current session.
			}

			next.ServeHTTP(w, r.WithContext(WithUser(ctx, user)))
		})
	}
}
