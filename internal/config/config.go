// Package config handles application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults applied when a variable is unset.
const (
	DefaultDriver         = "sqlite"
	DefaultDSN            = "./data/exchange.db"
	DefaultLogLevel       = "info"
	DefaultCatalogBaseURL = "https://is.cuni.cz/studium/term_st2/index.php"
	DefaultCatalogTimeout = 5 * time.Second
	DefaultPublicBaseURL  = "http://localhost:8080"
	DefaultSMTPPort       = 587
)

// Config holds the application configuration.
type Config struct {
	DatabaseDriver string
	DatabaseDSN    string
	LogLevel       string
	CatalogBaseURL string
	CatalogTimeout time.Duration
	PublicBaseURL  string
	SMTP           SMTP
	Telegram       Telegram
}

// SMTP is the outgoing mail server. Mail is disabled when Host is empty.
type SMTP struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Enabled reports whether a mail server is configured.
func (s SMTP) Enabled() bool { return s.Host != "" }

// Telegram is the announcement channel. Announcements are disabled when
// BotToken is empty.
type Telegram struct {
	BotToken string
	ChatID   int64
}

// Enabled reports whether announcements are configured.
func (t Telegram) Enabled() bool { return t.BotToken != "" }

// LoadDotEnv loads variables from path into the environment without
// overriding ones already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseDriver: getenv("DATABASE_DRIVER", DefaultDriver),
		DatabaseDSN:    getenv("DATABASE_DSN", DefaultDSN),
		LogLevel:       getenv("LOG_LEVEL", DefaultLogLevel),
		CatalogBaseURL: getenv("CATALOG_BASE_URL", DefaultCatalogBaseURL),
		CatalogTimeout: DefaultCatalogTimeout,
		PublicBaseURL:  getenv("PUBLIC_BASE_URL", DefaultPublicBaseURL),
		SMTP: SMTP{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     DefaultSMTPPort,
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
		Telegram: Telegram{BotToken: os.Getenv("TELEGRAM_BOT_TOKEN")},
	}

	switch cfg.DatabaseDriver {
	case "sqlite", "mysql":
	default:
		return nil, fmt.Errorf("invalid DATABASE_DRIVER %q: want sqlite or mysql", cfg.DatabaseDriver)
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL %q", cfg.LogLevel)
	}

	if raw := os.Getenv("CATALOG_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid CATALOG_TIMEOUT %q: %w", raw, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("CATALOG_TIMEOUT must be positive, got %s", d)
		}
		cfg.CatalogTimeout = d
	}

	if raw := os.Getenv("SMTP_PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("invalid SMTP_PORT %q", raw)
		}
		cfg.SMTP.Port = port
	}
	if cfg.SMTP.Enabled() && cfg.SMTP.From == "" {
		return nil, fmt.Errorf("SMTP_FROM is required when SMTP_HOST is set")
	}

	rawChat := os.Getenv("TELEGRAM_CHAT_ID")
	switch {
	case cfg.Telegram.BotToken == "" && rawChat == "":
	case cfg.Telegram.BotToken == "" || rawChat == "":
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together")
	default:
		chatID, err := strconv.ParseInt(rawChat, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", rawChat, err)
		}
		cfg.Telegram.ChatID = chatID
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
