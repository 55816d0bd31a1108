package service

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"portfolio/app/models"
	"portfolio/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppServe(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.InMemory = true
	cfg.Server.StaticDir = t.TempDir()

	app, err := NewApp(cfg)
	require.NoError(t, err)
	defer app.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String()
	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get(url + "/api/projects/categories")
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var categories []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&categories))
	assert.Equal(t, []string{"All", "AI", "Chrome Extension", "Web", "Window"}, categories)

	author, err := app.auth.SignUp(ctx, "author@example.com", "password123")
	require.NoError(t, err)
	status := models.StatusPublished
	title := "Counted"
	post, err := app.posts.CreatePost(ctx, author, models.PostInput{Title: &title, Status: &status})
	require.NoError(t, err)

	view, err := http.Get(url + "/api/posts/" + post.ID)
	require.NoError(t, err)
	view.Body.Close()
	assert.Equal(t, http.StatusOK, view.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	// stopping the counter flushes the pending view
	app.views.Stop()
	stored, err := app.store.Posts.GetByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.ViewCount)
}

func TestNewAppBadCatalog(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.InMemory = true
	cfg.Projects.Catalog = "missing-projects.yaml"

	_, err := NewApp(cfg)
	assert.Error(t, err)
}

func TestSetupLogger(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{level: "debug", want: zerolog.DebugLevel},
		{level: "WARN", want: zerolog.WarnLevel},
		{level: "nonsense", want: zerolog.InfoLevel},
		{level: "", want: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := config.Default()
			cfg.Env = config.EnvProd
			cfg.Log.Level = tt.level

			SetupLogger(cfg)
			assert.Equal(t, tt.want, zerolog.GlobalLevel())
		})
	}
}
