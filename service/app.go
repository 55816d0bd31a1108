package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"portfolio/app/catalog"
	"portfolio/app/events"
	"portfolio/app/models"
	"portfolio/app/repositories"
	"portfolio/app/routes"
	"portfolio/app/search"
	"portfolio/app/services"
	"portfolio/app/views"
	"portfolio/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// App is the wired blog service
type App struct {
	cfg       *config.Config
	store     *repositories.Store
	index     *search.Index
	publisher events.Publisher
	views     *services.ViewCounter
	posts     *services.PostService
	auth      *services.AuthService
	handler   http.Handler
}

// SetupLogger configures the global logger from cfg
func SetupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Env == config.EnvLocal {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Str("env", cfg.Env).Logger()
}

// NewApp opens the store and builds every service from cfg
func NewApp(cfg *config.Config) (*App, error) {
	const op = "service.NewApp"

	path := cfg.Storage.Path
	if cfg.Storage.InMemory {
		path = ""
	}
	store, err := repositories.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app := &App{cfg: cfg, store: store}
	if err := app.build(); err != nil {
		app.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return app, nil
}

func (a *App) build() error {
	cfg := a.cfg

	projects, err := loadProjects(cfg.Projects.Catalog)
	if err != nil {
		return err
	}
	tutorials, err := catalog.Tutorials()
	if err != nil {
		return err
	}
	profile, err := catalog.About()
	if err != nil {
		return err
	}

	a.index, err = search.NewIndex()
	if err != nil {
		return err
	}

	a.publisher, err = newPublisher(cfg.Kafka)
	if err != nil {
		return err
	}

	a.views = services.NewViewCounter(a.store.Posts, cfg.Views.FlushInterval.Duration)
	a.posts = services.NewPostService(a.store.Posts, a.store.Tags,
		services.WithSearchIndex(a.index),
		services.WithPublisher(a.publisher),
		services.WithViewCounter(a.views),
		services.WithListCacheTTL(cfg.Cache.TTL.Duration),
	)
	a.auth = services.NewAuthService(a.store.Users, services.AuthConfig{
		Secret:      []byte(cfg.Auth.JWTSecret),
		TokenTTL:    cfg.Auth.TokenTTL.Duration,
		AllowSignup: cfg.Auth.AllowSignup,
	})

	renderer, err := views.New()
	if err != nil {
		return err
	}

	a.handler = routes.SetupRoutes(routes.Dependencies{
		Posts:          a.posts,
		Tags:           services.NewTagService(a.store.Tags, a.store.Posts),
		Projects:       services.NewProjectService(projects),
		Learnings:      services.NewLearningService(tutorials, profile),
		Auth:           a.auth,
		Views:          renderer,
		StaticDir:      cfg.Server.StaticDir,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})
	return nil
}

func loadProjects(path string) ([]*models.Project, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}

func newPublisher(cfg config.Kafka) (events.Publisher, error) {
	if !cfg.Enabled {
		return events.NopPublisher{}, nil
	}
	publisher, err := events.NewKafkaPublisher(cfg.Brokers, cfg.Topic, events.KafkaConfig(cfg.Retries, cfg.Timeout.Duration))
	if err != nil {
		return nil, err
	}
	log.Info().Strs("brokers", cfg.Brokers).Str("topic", cfg.Topic).Msg("publishing post events to kafka")
	return publisher, nil
}

// Handler is the HTTP handler of the service
func (a *App) Handler() http.Handler {
	return a.handler
}

// Serve reindexes the posts and serves HTTP on ln until ctx is done, then
// shuts down gracefully.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	const op = "service.App.Serve"

	if err := a.posts.Reindex(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	a.views.Start()

	srv := &http.Server{
		Handler:      a.handler,
		ReadTimeout:  a.cfg.Server.ReadTimeout.Duration,
		WriteTimeout: a.cfg.Server.WriteTimeout.Duration,
		IdleTimeout:  a.cfg.Server.IdleTimeout.Duration,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Msg("starting blog service")
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down blog service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout.Duration)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close stops the view counter, then closes the publisher and the store
func (a *App) Close() error {
	var errs []error
	if a.views != nil {
		a.views.Stop()
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.index != nil {
		if err := a.index.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
