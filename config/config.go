// Package config loads the service configuration from defaults, an optional
// TOML file, a .env file and PORTFOLIO_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	DefaultPath = "config.toml"
	envPrefix   = "PORTFOLIO_"
)

// Duration is a time.Duration written as a string such as "5m" in config files
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type Config struct {
	Env      string   `toml:"env"`
	Log      Log      `toml:"log"`
	Server   Server   `toml:"server"`
	Storage  Storage  `toml:"storage"`
	Auth     Auth     `toml:"auth"`
	Cache    Cache    `toml:"cache"`
	Views    Views    `toml:"views"`
	Kafka    Kafka    `toml:"kafka"`
	CORS     CORS     `toml:"cors"`
	Projects Projects `toml:"projects"`
}

type Log struct {
	Level string `toml:"level"`
}

type Server struct {
	Addr            string   `toml:"addr"`
	ReadTimeout     Duration `toml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout"`
	IdleTimeout     Duration `toml:"idle_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
	StaticDir       string   `toml:"static_dir"`
}

type Storage struct {
	Path     string `toml:"path"`
	InMemory bool   `toml:"in_memory"`
}

type Auth struct {
	JWTSecret   string   `toml:"jwt_secret"`
	TokenTTL    Duration `toml:"token_ttl"`
	AllowSignup bool     `toml:"allow_signup"`
}

type Cache struct {
	TTL Duration `toml:"ttl"`
}

type Views struct {
	FlushInterval Duration `toml:"flush_interval"`
}

type Kafka struct {
	Enabled bool     `toml:"enabled"`
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
	Retries int      `toml:"retries"`
	Timeout Duration `toml:"timeout"`
}

type CORS struct {
	AllowedOrigins []string `toml:"allowed_origins"`
}

type Projects struct {
	Catalog string `toml:"catalog"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Env: EnvLocal,
		Log: Log{Level: "info"},
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     Duration{15 * time.Second},
			WriteTimeout:    Duration{15 * time.Second},
			IdleTimeout:     Duration{60 * time.Second},
			ShutdownTimeout: Duration{10 * time.Second},
			StaticDir:       "static",
		},
		Storage: Storage{Path: "data/badger"},
		Auth: Auth{
			TokenTTL:    Duration{24 * time.Hour},
			AllowSignup: true,
		},
		Cache: Cache{TTL: Duration{5 * time.Minute}},
		Views: Views{FlushInterval: Duration{time.Minute}},
		Kafka: Kafka{
			Brokers: []string{"localhost:9092"},
			Topic:   "posts",
			Retries: 3,
			Timeout: Duration{10 * time.Second},
		},
		CORS: CORS{AllowedOrigins: []string{"*"}},
	}
}

// ResolvePath picks the config file path: flag > env > default
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := strings.TrimSpace(os.Getenv(envPrefix + "CONFIG")); v != "" {
		return v
	}
	return DefaultPath
}

// Load builds the configuration. A missing file at path is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf(".env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad is wrapper of Load to panic if error occurred
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	return cfg
}

// Validate checks values that the service cannot run without
func (c *Config) Validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("unknown env %q", c.Env)
	}
	if c.Env == EnvProd && c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required in prod")
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if !c.Storage.InMemory && c.Storage.Path == "" {
		return errors.New("storage.path is required unless storage.in_memory is set")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers is required when kafka is enabled")
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Env = getEnv("ENV", c.Env)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Server.Addr = getEnv("ADDR", c.Server.Addr)
	c.Server.StaticDir = getEnv("STATIC_DIR", c.Server.StaticDir)
	c.Storage.Path = getEnv("STORAGE_PATH", c.Storage.Path)
	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Kafka.Topic = getEnv("KAFKA_TOPIC", c.Kafka.Topic)
	c.Projects.Catalog = getEnv("PROJECTS_CATALOG", c.Projects.Catalog)

	if v := getEnv("KAFKA_BROKERS", ""); v != "" {
		c.Kafka.Brokers = splitCSV(v)
	}
	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		c.CORS.AllowedOrigins = splitCSV(v)
	}

	bools := map[string]*bool{
		"STORAGE_IN_MEMORY": &c.Storage.InMemory,
		"AUTH_ALLOW_SIGNUP": &c.Auth.AllowSignup,
		"KAFKA_ENABLED":     &c.Kafka.Enabled,
	}
	for name, dst := range bools {
		if v := getEnv(name, ""); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, name, err)
			}
			*dst = b
		}
	}

	durations := map[string]*Duration{
		"AUTH_TOKEN_TTL":       &c.Auth.TokenTTL,
		"CACHE_TTL":            &c.Cache.TTL,
		"VIEWS_FLUSH_INTERVAL": &c.Views.FlushInterval,
	}
	for name, dst := range durations {
		if v := getEnv(name, ""); v != "" {
			if err := dst.UnmarshalText([]byte(v)); err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, name, err)
			}
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(envPrefix + key))
	if value == "" {
		return fallback
	}
	return value
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	return out
}
