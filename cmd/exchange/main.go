package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"exam_exchange/internal/catalog"
	"exam_exchange/internal/config"
	"exam_exchange/internal/exchange"
	"exam_exchange/internal/notify"
	"exam_exchange/internal/storage"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run executes the selected subcommand and closes the app it opened, also
// when the subcommand fails.
func run(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if current != nil {
		if cerr := current.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close database: %w", cerr)
		}
		current = nil
	}
	return err
}

// app holds the components shared by every subcommand.
type app struct {
	cfg   *config.Config
	log   *slog.Logger
	store *storage.Store
	svc   *exchange.Service
}

func newApp(ctx context.Context) (*app, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := newLogger(cfg.LogLevel)

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Error("open database", "driver", cfg.DatabaseDriver, "error", err)
		return nil, err
	}

	cat := catalog.New(http.DefaultClient, cfg.CatalogBaseURL)
	cat.SetTimeout(cfg.CatalogTimeout)

	opts := exchange.Options{PublicBaseURL: cfg.PublicBaseURL}
	if cfg.SMTP.Enabled() {
		opts.Notifier = notify.NewMailer(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, log)
	} else {
		log.Debug("smtp not configured, notifications disabled")
	}
	if cfg.Telegram.Enabled() {
		tg, err := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, log)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		opts.Announcer = tg
	}

	return &app{
		cfg:   cfg,
		log:   log,
		store: store,
		svc:   exchange.New(store, cat, opts, log),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func openStore(ctx context.Context, cfg *config.Config) (*storage.Store, error) {
	if cfg.DatabaseDriver == "mysql" {
		return storage.NewMySQL(ctx, cfg.DatabaseDSN)
	}
	if dir := filepath.Dir(cfg.DatabaseDSN); dir != "." && !strings.HasPrefix(cfg.DatabaseDSN, "file:") && cfg.DatabaseDSN != ":memory:" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create data directory %s: %w", dir, err)
		}
	}
	return storage.NewSQLite(cfg.DatabaseDSN)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
