package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"portfolio/app/models"
	"portfolio/app/repositories"
	"portfolio/app/services"
	"portfolio/config"

	"github.com/brianvoe/gofakeit"
	"github.com/rs/zerolog/log"
)

const (
	DemoEmail    = "demo@example.com"
	DemoPassword = "demo-password"

	defaultSeedCount = 10
)

// Stdin and Stdout carry command prompts and output
var (
	Stdin  io.Reader = os.Stdin
	Stdout io.Writer = os.Stdout
)

// HandleCommand runs one CLI command against cfg and returns an exit code
func HandleCommand(cfg *config.Config, args []string) int {
	if len(args) < 1 {
		printHelp()
		return 1
	}

	switch args[0] {
	case "serve":
		return serve(cfg)
	case "clean":
		return clean(cfg)
	case "init":
		return initDb(cfg)
	case "backup":
		return backup(cfg)
	case "restore":
		if len(args) < 2 {
			fmt.Fprintln(Stdout, "Error: backup file path required for restore")
			return 1
		}
		return restore(cfg, args[1])
	case "seed":
		count := defaultSeedCount
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				fmt.Fprintf(Stdout, "Error: invalid post count %q\n", args[1])
				return 1
			}
			count = n
		}
		return seed(cfg, count)
	case "help":
		printHelp()
		return 0
	default:
		fmt.Fprintf(Stdout, "Unknown command: %s\n\n", args[0])
		printHelp()
		return 1
	}
}

func printHelp() {
	helpText := `Usage: portfolio [-config <path>] <command>

Commands:
  serve                           Run the blog service
  init                            Initialize a new empty database
  clean                           Remove the blog database
  backup                          Create a backup of the database
  restore <file>                  Restore the database from a backup
  seed [count]                    Add a demo author and count generated posts (default 10)
  version                         Show version information
  help                            Display this help message
`
	fmt.Fprintln(Stdout, helpText)
}

func serve(cfg *config.Config) int {
	app, err := NewApp(cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to start blog service")
		return 1
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close blog service")
		}
	}()

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		log.Error().Err(err).Str("addr", cfg.Server.Addr).Msg("failed to listen")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Serve(ctx, ln); err != nil {
		log.Error().Err(err).Msg("blog service stopped with an error")
		return 1
	}
	log.Info().Msg("blog service stopped")
	return 0
}

func confirm(prompt string) bool {
	fmt.Fprintf(Stdout, "%s [y/N] ", prompt)
	var response string
	fmt.Fscanln(Stdin, &response)
	return response == "y" || response == "Y"
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func onDisk(cfg *config.Config) bool {
	if cfg.Storage.InMemory {
		fmt.Fprintln(Stdout, "Storage is in-memory; there is no database on disk")
		return false
	}
	return true
}

// clean removes the database
func clean(cfg *config.Config) int {
	if !onDisk(cfg) {
		return 1
	}
	path := cfg.Storage.Path
	if !exists(path) {
		fmt.Fprintln(Stdout, "Database is already clean (does not exist)")
		return 0
	}

	if !confirm("Are you sure you want to clean the database? This cannot be undone.") {
		fmt.Fprintln(Stdout, "Operation cancelled")
		return 1
	}

	if err := os.RemoveAll(path); err != nil {
		fmt.Fprintf(Stdout, "Failed to clean database: %v\n", err)
		return 1
	}
	fmt.Fprintln(Stdout, "Database cleaned successfully")
	return 0
}

// initDb creates a new empty database
func initDb(cfg *config.Config) int {
	if !onDisk(cfg) {
		return 1
	}
	path := cfg.Storage.Path
	if exists(path) {
		fmt.Fprintln(Stdout, "Database already exists. Use 'clean' first if you want to reinitialize.")
		return 1
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		fmt.Fprintf(Stdout, "Failed to create database directory: %v\n", err)
		return 1
	}
	store, err := repositories.Open(path)
	if err != nil {
		fmt.Fprintf(Stdout, "Failed to initialize database: %v\n", err)
		return 1
	}
	defer store.Close()

	fmt.Fprintln(Stdout, "Database initialized successfully")
	return 0
}

// backupDir keeps backups next to the database directory
func backupDir(cfg *config.Config) string {
	return filepath.Join(filepath.Dir(filepath.Clean(cfg.Storage.Path)), "backups")
}

// backup writes a full backup of the database
func backup(cfg *config.Config) int {
	if !onDisk(cfg) {
		return 1
	}
	if !exists(cfg.Storage.Path) {
		fmt.Fprintln(Stdout, "No database exists to backup")
		return 1
	}

	dir := backupDir(cfg)
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Fprintf(Stdout, "Failed to create backup directory: %v\n", err)
		return 1
	}

	store, err := repositories.Open(cfg.Storage.Path)
	if err != nil {
		fmt.Fprintf(Stdout, "Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	backupFile := filepath.Join(dir, fmt.Sprintf("backup_%d.db", time.Now().Unix()))
	f, err := os.Create(backupFile)
	if err != nil {
		fmt.Fprintf(Stdout, "Failed to create backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	if err := store.Backup(f); err != nil {
		fmt.Fprintf(Stdout, "Failed to backup database: %v\n", err)
		return 1
	}

	fmt.Fprintf(Stdout, "Database backed up successfully to %s\n", backupFile)
	return 0
}

// restore replaces the database with a backup
func restore(cfg *config.Config, backupFile string) int {
	if !onDisk(cfg) {
		return 1
	}
	fi, err := os.Stat(backupFile)
	if err != nil {
		fmt.Fprintf(Stdout, "Backup file does not exist: %s\n", backupFile)
		return 1
	}
	if fi.Size() == 0 {
		fmt.Fprintf(Stdout, "Backup file is empty: %s\n", backupFile)
		return 1
	}

	path := cfg.Storage.Path
	if exists(path) {
		if !confirm("Existing database found. Do you want to replace it?") {
			fmt.Fprintln(Stdout, "Operation cancelled")
			return 1
		}
		if err := os.RemoveAll(path); err != nil {
			fmt.Fprintf(Stdout, "Failed to remove existing database: %v\n", err)
			return 1
		}
	}

	f, err := os.Open(backupFile)
	if err != nil {
		fmt.Fprintf(Stdout, "Failed to open backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	if err := os.MkdirAll(path, 0755); err != nil {
		fmt.Fprintf(Stdout, "Failed to create database directory: %v\n", err)
		return 1
	}
	store, err := repositories.Open(path)
	if err != nil {
		fmt.Fprintf(Stdout, "Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	if err := store.Restore(f); err != nil {
		fmt.Fprintf(Stdout, "Failed to restore database: %v\n", err)
		return 1
	}

	fmt.Fprintln(Stdout, "Database restored successfully")
	return 0
}

// seed adds the demo author and count generated posts
func seed(cfg *config.Config, count int) int {
	if !onDisk(cfg) {
		return 1
	}
	store, err := repositories.Open(cfg.Storage.Path)
	if err != nil {
		fmt.Fprintf(Stdout, "Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	created, err := seedPosts(context.Background(), store, count)
	if err != nil {
		fmt.Fprintf(Stdout, "Failed to seed database: %v\n", err)
		return 1
	}
	fmt.Fprintf(Stdout, "Seeded %d posts as %s (password %q)\n", created, DemoEmail, DemoPassword)
	return 0
}

func seedPosts(ctx context.Context, store *repositories.Store, count int) (int, error) {
	auth := services.NewAuthService(store.Users, services.AuthConfig{Secret: []byte("seed"), AllowSignup: true})
	author, err := auth.SignUp(ctx, DemoEmail, DemoPassword)
	if errors.Is(err, services.ErrEmailTaken) {
		author, err = store.Users.GetByEmail(DemoEmail)
	}
	if err != nil {
		return 0, err
	}

	posts := services.NewPostService(store.Posts, store.Tags)
	for i := 0; i < count; i++ {
		if _, err := posts.CreatePost(ctx, author, fakePost(i)); err != nil {
			return i, err
		}
	}
	return count, nil
}

var seedTags = []string{"go", "react", "web", "ai", "tooling", "notes"}

// fakePost alternates draft and published posts and text and block bodies
func fakePost(i int) models.PostInput {
	title := strings.TrimSuffix(gofakeit.Sentence(gofakeit.Number(3, 7)), ".")
	excerpt := gofakeit.Sentence(12)
	tags := []string{
		seedTags[gofakeit.Number(0, len(seedTags)-1)],
		seedTags[gofakeit.Number(0, len(seedTags)-1)],
	}

	status := models.StatusPublished
	if i%3 == 2 {
		status = models.StatusDraft
	}

	var body models.Body
	if i%2 == 0 {
		body = models.TextBody(gofakeit.Paragraph(3, 4, 12, "\n\n"))
	} else {
		body = models.BlockBody(
			models.Block{Type: models.BlockParagraph, Text: gofakeit.Paragraph(1, 4, 12, " ")},
			models.Block{
				Type:    models.BlockPoints,
				Heading: gofakeit.Sentence(3),
				Items:   []string{gofakeit.Sentence(5), gofakeit.Sentence(5), gofakeit.Sentence(5)},
				Format:  models.FormatBulleted,
			},
			models.Block{Type: models.BlockImage, Src: "/static/placeholder.svg", Alt: gofakeit.Word(), Caption: gofakeit.Sentence(4)},
		)
	}

	return models.PostInput{
		Title:   &title,
		Excerpt: &excerpt,
		Content: &body,
		Tags:    &tags,
		Status:  &status,
	}
}
