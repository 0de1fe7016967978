// Package storage is the SQLite implementation of the ports consumed by the
// ledger services.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"smartcents/internal/core"
	"smartcents/internal/ports"
)

var (
	_ ports.Store      = (*Store)(nil)
	_ ports.Transactor = (*Store)(nil)
)

// Store is an explicitly constructed handle; callers own its lifetime and
// must Close it.
type Store struct {
	db      *sql.DB
	queries *Queries
	inTx    bool
	now     func() time.Time
}

func dsn(dbPath string) string {
	return "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Open creates the database file if needed, applies migrations and returns a
// ready store.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Debug("SQLite store opened", "path", dbPath, "schema_version", version)

	return &Store{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (s *Store) Close() error {
	if s.db == nil || s.inTx {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// Atomically runs fn inside one database transaction. Nested calls join the
// outer transaction.
func (s *Store) Atomically(ctx context.Context, fn func(tx ports.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin transaction", err)
	}
	txStore := &Store{
		db:      s.db,
		queries: s.queries.WithTx(tx),
		inTx:    true,
		now:     s.now,
	}

	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			slog.WarnContext(ctx, "Rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return unavailable("commit transaction", err)
	}
	return nil
}

// Users

func (s *Store) CreateUser(ctx context.Context, u core.User) error {
	if err := s.queries.CreateUser(ctx, u); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", core.ErrDuplicateIdentity, u.Email)
		}
		return unavailable("create user", err)
	}
	slog.InfoContext(ctx, "User created", "user_id", u.ID)
	return nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (core.User, error) {
	u, err := s.queries.GetUserByEmail(ctx, email)
	if err != nil {
		return core.User{}, notFoundOr("get user by email", err, core.ErrUserNotFound)
	}
	return u, nil
}

func (s *Store) UserByID(ctx context.Context, id string) (core.User, error) {
	u, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		return core.User{}, notFoundOr("get user by id", err, core.ErrUserNotFound)
	}
	return u, nil
}

func (s *Store) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	n, err := s.queries.UpdatePasswordHash(ctx, userID, hash)
	if err != nil {
		return unavailable("update password", err)
	}
	if n == 0 {
		return core.ErrUserNotFound
	}
	return nil
}

// Settings

func (s *Store) GetSettings(ctx context.Context, userID string) (core.Settings, bool, error) {
	st, err := s.queries.GetSettings(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Settings{}, false, nil
	}
	if err != nil {
		return core.Settings{}, false, unavailable("get settings", err)
	}
	return st, true, nil
}

func (s *Store) UpsertSettings(ctx context.Context, userID string, st core.Settings) (core.Settings, error) {
	out, err := s.queries.UpsertSettings(ctx, userID, st, s.now())
	if err != nil {
		return core.Settings{}, unavailable("upsert settings", err)
	}
	return out, nil
}

// Categories

func (s *Store) CreateCategory(ctx context.Context, c core.Category) error {
	if err := s.queries.CreateCategory(ctx, c); err != nil {
		return unavailable("create category", err)
	}
	return nil
}

func (s *Store) GetCategory(ctx context.Context, userID, id string) (core.Category, error) {
	c, err := s.queries.GetCategory(ctx, userID, id)
	if err != nil {
		return core.Category{}, notFoundOr("get category", err, core.ErrCategoryNotFound)
	}
	return c, nil
}

func (s *Store) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	cs, err := s.queries.ListCategories(ctx, userID)
	if err != nil {
		return nil, unavailable("list categories", err)
	}
	return cs, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c core.Category) error {
	n, err := s.queries.UpdateCategory(ctx, c)
	if err != nil {
		return unavailable("update category", err)
	}
	if n == 0 {
		return core.ErrCategoryNotFound
	}
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, userID, id string) error {
	n, err := s.queries.DeleteCategory(ctx, userID, id)
	if err != nil {
		return unavailable("delete category", err)
	}
	if n == 0 {
		return core.ErrCategoryNotFound
	}
	return nil
}

func (s *Store) ClearTransactionCategory(ctx context.Context, userID, categoryID string) (int64, error) {
	n, err := s.queries.ClearTransactionCategory(ctx, userID, categoryID)
	if err != nil {
		return 0, unavailable("clear transaction category", err)
	}
	return n, nil
}

func (s *Store) DetachChildren(ctx context.Context, userID, parentID string) (int64, error) {
	n, err := s.queries.DetachChildren(ctx, userID, parentID)
	if err != nil {
		return 0, unavailable("detach child categories", err)
	}
	return n, nil
}

func (s *Store) ClearBudgetCategory(ctx context.Context, userID, categoryID string) (int64, error) {
	n, err := s.queries.ClearBudgetCategory(ctx, userID, categoryID)
	if err != nil {
		return 0, unavailable("clear budget category", err)
	}
	return n, nil
}

// Transactions

func (s *Store) InsertTransaction(ctx context.Context, t core.Transaction) error {
	if err := s.queries.InsertTransaction(ctx, t); err != nil {
		return unavailable("insert transaction", err)
	}
	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"type", t.Type,
		"amount", t.Amount.String(),
		"date", t.Date.String())
	return nil
}

func (s *Store) ListTransactions(ctx context.Context, userID string, q ports.TransactionQuery) ([]core.Transaction, error) {
	txs, err := s.queries.ListTransactions(ctx, userID, q)
	if err != nil {
		return nil, unavailable("list transactions", err)
	}
	return txs, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, userID, id string) (bool, error) {
	n, err := s.queries.DeleteTransaction(ctx, userID, id)
	if err != nil {
		return false, unavailable("delete transaction", err)
	}
	return n > 0, nil
}

// Budgets

func (s *Store) InsertBudget(ctx context.Context, b core.Budget) error {
	if err := s.queries.InsertBudget(ctx, b); err != nil {
		return unavailable("insert budget", err)
	}
	return nil
}

func (s *Store) ListBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	bs, err := s.queries.ListBudgets(ctx, userID)
	if err != nil {
		return nil, unavailable("list budgets", err)
	}
	return bs, nil
}

func (s *Store) DeleteBudget(ctx context.Context, userID, id string) (bool, error) {
	n, err := s.queries.DeleteBudget(ctx, userID, id)
	if err != nil {
		return false, unavailable("delete budget", err)
	}
	return n > 0, nil
}
