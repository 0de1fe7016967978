package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"smartcents/internal/amqp"
	"smartcents/internal/analytics"
	"smartcents/internal/auth"
	"smartcents/internal/budget"
	"smartcents/internal/config"
	"smartcents/internal/core"
	"smartcents/internal/ledger"
	"smartcents/internal/log"
	"smartcents/internal/ports"
	"smartcents/internal/settings"
	"smartcents/internal/storage"
	"smartcents/internal/taxonomy"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DBPath  string
	Format  string // "json" | "text"
	Verbose bool
}

// App owns the store and the services for one CLI invocation. It opens
// lazily so that help and flag errors never touch the database.
type App struct {
	cfg    *config.Config
	opts   *RootOptions
	stderr io.Writer

	logger *log.Logger
	store  *storage.Store
	broker *amqp.Client

	Auth      *auth.Service
	Taxonomy  *taxonomy.Service
	Ledger    *ledger.Service
	Settings  *settings.Service
	Analytics *analytics.Service
	Budget    *budget.Service
}

func NewApp(cfg *config.Config, stderr io.Writer) *App {
	if stderr == nil {
		stderr = os.Stderr
	}
	return &App{cfg: cfg, opts: &RootOptions{}, stderr: stderr}
}

func (a *App) open() error {
	if a.store != nil {
		return nil
	}

	level := slog.LevelWarn
	if a.opts.Verbose {
		level = slog.LevelDebug
	}
	a.logger = log.New(log.Config{
		Level:     level,
		Component: log.ComponentCLI,
		Format:    a.cfg.LogFormat,
		Output:    a.stderr,
	})

	dbPath := a.cfg.DBPath
	if a.opts.DBPath != "" {
		dbPath = a.opts.DBPath
	}
	store, err := storage.Open(dbPath)
	if err != nil {
		return err
	}
	a.store = store

	var events ports.EventPublisher
	if a.cfg.AMQPURL != "" {
		broker, err := amqp.NewClient(a.cfg.AMQPURL, a.cfg.AMQPExchange, a.cfg.AMQPQueue, a.logger)
		if err != nil {
			a.logger.Warn("Ledger events disabled", log.FieldError, err)
		} else {
			a.broker = broker
			events = broker
		}
	}

	a.Auth = auth.NewService(store, auth.NewSessions(a.cfg.JWTSecret, a.cfg.SessionTTL), a.cfg.BcryptCost, a.logger)
	a.Taxonomy = taxonomy.NewService(store, events, a.logger)
	a.Ledger = ledger.NewService(store, events, a.logger)
	a.Settings = settings.NewService(store, a.cfg.SettingsCacheSize, a.cfg.SettingsCacheTTL, a.logger)
	a.Analytics = analytics.NewService(store, a.logger)
	a.Budget = budget.NewService(store, a.logger)

	a.logger.Debug("Opened database", "path", dbPath, log.FieldOperation, log.OpStartup)
	return nil
}

func (a *App) Close() error {
	var errs []error
	if a.broker != nil {
		errs = append(errs, a.broker.Close())
		a.broker = nil
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
		a.store = nil
	}
	return errors.Join(errs...)
}

func (a *App) readToken() (string, error) {
	data, err := os.ReadFile(a.cfg.SessionFile)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read session: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (a *App) writeToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(a.cfg.SessionFile), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(a.cfg.SessionFile, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (a *App) clearToken() error {
	err := os.Remove(a.cfg.SessionFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// identity resolves the stored session into the acting user.
func (a *App) identity(ctx context.Context) (core.Identity, error) {
	token, err := a.readToken()
	if err != nil {
		return core.Identity{}, err
	}
	id, err := a.Auth.RequireIdentity(ctx, token)
	if errors.Is(err, core.ErrNotAuthenticated) {
		return core.Identity{}, fmt.Errorf("%w: run 'smartcents login' first", err)
	}
	return id, err
}
