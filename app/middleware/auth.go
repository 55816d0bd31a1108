package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"portfolio/app/models"
	"portfolio/app/services"

	"github.com/rs/zerolog/log"
)

// SessionCookie holds the session token of browser clients
const SessionCookie = "session"

type userKey struct{}

// WithUser returns a copy of ctx carrying user
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFrom returns the signed in user, or nil for anonymous requests
func UserFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey{}).(*models.User)
	return user
}

// TokenFrom reads the session token from the Authorization header, falling
// back to the session cookie.
func TokenFrom(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// Authenticate resolves the session token, when present, and stores the user
// in the request context. Requests with a missing or invalid token continue
// anonymously.
func Authenticate(auth *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFrom(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			user, err := auth.CurrentUser(r.Context(), token)
			if err != nil {
				if !errors.Is(err, services.ErrUnauthenticated) {
					log.Error().Err(err).Str("op", "middleware.Authenticate").Send()
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireAuth rejects anonymous requests. API clients get a 401, browsers are
// sent to the sign in page.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFrom(r.Context()) != nil {
			next.ServeHTTP(w, r)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/api") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": services.ErrUnauthenticated.Error()})
			return
		}
		http.Redirect(w, r, "/signin?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
	})
}
