package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"portfolio/app/models"
	"portfolio/app/repositories/mock"
	"portfolio/app/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenFrom(t *testing.T) {
	tests := []struct {
		name   string
		header string
		cookie string
		want   string
	}{
		{name: "none"},
		{name: "bearer", header: "Bearer abc", want: "abc"},
		{name: "other scheme", header: "Basic abc", cookie: "xyz", want: ""},
		{name: "cookie", cookie: "xyz", want: "xyz"},
		{name: "header wins", header: "Bearer abc", cookie: "xyz", want: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}
			assert.Equal(t, tt.want, TokenFrom(req))
		})
	}
}

func TestAuthenticate(t *testing.T) {
	auth := services.NewAuthService(mock.NewUserRepository(), services.AuthConfig{
		Secret:      []byte("secret"),
		TokenTTL:    time.Hour,
		AllowSignup: true,
	})
	ctx := context.Background()
	_, err := auth.SignUp(ctx, "author@example.com", "long enough")
	require.NoError(t, err)
	session, err := auth.SignIn(ctx, "author@example.com", "long enough")
	require.NoError(t, err)

	var seen *models.User
	handler := Authenticate(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFrom(r.Context())
	}))

	tests := []struct {
		name     string
		header   string
		wantUser bool
	}{
		{name: "anonymous"},
		{name: "valid token", header: "Bearer " + session.Token, wantUser: true},
		{name: "invalid token", header: "Bearer nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest("GET", "/api/posts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if tt.wantUser {
				require.NotNil(t, seen)
				assert.Equal(t, session.User.ID, seen.ID)
			} else {
				assert.Nil(t, seen)
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("api request", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/api/posts", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"authentication required"}`, w.Body.String())
	})

	t.Run("browser request", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/posts/new", nil))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/signin?next=%2Fposts%2Fnew", w.Header().Get("Location"))
	})

	t.Run("signed in", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/posts", nil)
		req = req.WithContext(WithUser(req.Context(), &models.User{ID: "u1"}))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
