package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"portfolio/app/catalog"
	"portfolio/app/models"
	"portfolio/app/repositories"
	"portfolio/app/search"
	"portfolio/app/services"
	"portfolio/app/views"

	"github.com/stretchr/testify/require"
)

type testApp struct {
	handler http.Handler
	store   *repositories.Store
	posts   *services.PostService
	auth    *services.AuthService
}

func setupStaticDir(t *testing.T) string {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "style.css"), []byte("body { background: #f0f0f0; }"), 0644))
	return dir
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()

	store, err := repositories.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	index, err := search.NewIndex()
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	projects, err := catalog.Default()
	require.NoError(t, err)
	tutorials, err := catalog.Tutorials()
	require.NoError(t, err)
	profile, err := catalog.About()
	require.NoError(t, err)

	posts := services.NewPostService(store.Posts, store.Tags, services.WithSearchIndex(index), services.WithListCacheTTL(time.Minute))
	auth := services.NewAuthService(store.Users, services.AuthConfig{
		Secret:      []byte("routes-test"),
		TokenTTL:    time.Hour,
		AllowSignup: true,
	})

	handler := SetupRoutes(Dependencies{
		Posts:          posts,
		Tags:           services.NewTagService(store.Tags, store.Posts),
		Projects:       services.NewProjectService(projects),
		Learnings:      services.NewLearningService(tutorials, profile),
		Auth:           auth,
		Views:          views.Must(),
		StaticDir:      setupStaticDir(t),
		AllowedOrigins: []string{"https://example.com"},
	})

	return &testApp{handler: handler, store: store, posts: posts, auth: auth}
}

// signIn registers an author and returns a session token
func (a *testApp) signIn(t *testing.T, email string) string {
	t.Helper()
	ctx := context.Background()
	_, err := a.auth.SignUp(ctx, email, "password123")
	require.NoError(t, err)
	session, err := a.auth.SignIn(ctx, email, "password123")
	require.NoError(t, err)
	return session.Token
}

func (a *testApp) do(t *testing.T, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = strings.NewReader(string(data))
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func createPost(t *testing.T, a *testApp, token, title string, status models.Status) *models.Post {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/posts", token, map[string]interface{}{
		"title":   title,
		"content": "Body of " + title,
		"status":  status,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	post := decode[models.Post](t, w)
	return &post
}
