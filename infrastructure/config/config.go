// Package config reads usersctl settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	BaseURL string `envconfig:"USERS_BASE_URL" default:"http://127.0.0.1:8000"`

	CSRFCookie string `envconfig:"USERS_CSRF_COOKIE" default:"csrftoken"`
	CSRFHeader string `envconfig:"USERS_CSRF_HEADER" default:"X-CSRFToken"`
	CSRFToken  string `envconfig:"USERS_CSRF_TOKEN"`

	SessionCookie string `envconfig:"USERS_SESSION_COOKIE" default:"sessionid"`
	SessionID     string `envconfig:"USERS_SESSION_ID"`

	SnapshotPath string `envconfig:"USERS_SNAPSHOT_PATH" default:"users-snapshot.db"`
	StubAddr     string `envconfig:"USERS_STUB_ADDR" default:"127.0.0.1:8000"`

	LogFormat string `envconfig:"USERS_LOG_FORMAT" default:"text"`
	LogLevel  string `envconfig:"USERS_LOG_LEVEL" default:"warn"`
}

// Load applies the given .env files (missing ones are skipped, existing
// environment variables win) and then reads the environment.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("USERS_BASE_URL %q must be an absolute URL", cfg.BaseURL)
	}
	if strings.TrimSpace(cfg.SnapshotPath) == "" {
		return nil, errors.New("USERS_SNAPSHOT_PATH must not be empty")
	}
	return &cfg, nil
}

// NewLogger returns a slog.Logger writing to w in the configured format.
func NewLogger(cfg *Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg)}
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(cfg *Config) slog.Level {
	if cfg == nil {
		return slog.LevelWarn
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return slog.LevelWarn
	}
	return level
}
