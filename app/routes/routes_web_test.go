package routes

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"portfolio/app/middleware"
	"portfolio/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebRoutes(t *testing.T) {
	app := setupTestApp(t)
	token := app.signIn(t, "author@example.com")
	post := createPost(t, app, token, "Hello from the web", models.StatusPublished)

	get := func(path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", path, nil)
		if token != "" {
			req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
		}
		w := httptest.NewRecorder()
		app.handler.ServeHTTP(w, req)
		return w
	}

	tests := []struct {
		name           string
		path           string
		token          string
		expectedStatus int
		contains       string
	}{
		{name: "Home redirects", path: "/", expectedStatus: http.StatusFound},
		{name: "Posts list", path: "/posts", expectedStatus: http.StatusOK, contains: "Hello from the web"},
		{name: "Post page", path: "/posts/" + post.Slug, expectedStatus: http.StatusOK, contains: "<h1>Hello from the web</h1>"},
		{name: "Missing post", path: "/posts/missing", expectedStatus: http.StatusNotFound, contains: "Error: not found"},
		{name: "New post requires sign in", path: "/posts/new", expectedStatus: http.StatusSeeOther},
		{name: "New post form", path: "/posts/new", token: token, expectedStatus: http.StatusOK, contains: "<form"},
		{name: "Projects", path: "/projects", expectedStatus: http.StatusOK, contains: "Invoice-Book"},
		{name: "Learnings", path: "/learnings", expectedStatus: http.StatusOK, contains: `href="/learnings/html"`},
		{name: "Tutorial first topic", path: "/learnings/HTML", expectedStatus: http.StatusOK, contains: "<h1>Introduction</h1>"},
		{name: "Tutorial topic", path: "/learnings/html?topic=forms", expectedStatus: http.StatusOK, contains: "<h1>Forms and Inputs</h1>"},
		{name: "Unknown topic", path: "/learnings/html?topic=canvas", expectedStatus: http.StatusNotFound},
		{name: "Link only tutorial", path: "/learnings/css", expectedStatus: http.StatusFound},
		{name: "About", path: "/about", expectedStatus: http.StatusOK, contains: "Master of Computer Science"},
		{name: "Sign in page", path: "/signin", expectedStatus: http.StatusOK, contains: `name="password"`},
		{name: "Static file", path: "/static/style.css", expectedStatus: http.StatusOK, contains: "background"},
		{name: "Missing static file", path: "/static/missing.css", expectedStatus: http.StatusNotFound},
		{name: "Unknown page", path: "/nowhere", expectedStatus: http.StatusNotFound, contains: "Error: not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(tt.path, tt.token)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.contains != "" {
				assert.Contains(t, w.Body.String(), tt.contains)
			}
		})
	}
}

func TestWebSignInAndCreate(t *testing.T) {
	app := setupTestApp(t)
	app.signIn(t, "author@example.com")

	form := url.Values{
		"email":    {"author@example.com"},
		"password": {"password123"},
		"next":     {"/posts/new"},
	}
	req := httptest.NewRequest("POST", "/signin", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	app.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/posts/new", w.Header().Get("Location"))

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			session = c
		}
	}
	require.NotNil(t, session)

	form = url.Values{
		"title":   {"Written in the browser"},
		"content": {"# Heading\n\nSome *text*."},
		"tags":    {"web"},
		"publish": {"1"},
	}
	req = httptest.NewRequest("POST", "/posts", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(session)
	w = httptest.NewRecorder()
	app.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusSeeOther, w.Code)
	location := w.Header().Get("Location")
	assert.Equal(t, "/posts/written-in-the-browser", location)

	req = httptest.NewRequest("GET", location, nil)
	w = httptest.NewRecorder()
	app.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<h1>Heading</h1>")
	assert.Contains(t, w.Body.String(), "<em>text</em>")
}
