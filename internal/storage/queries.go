package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"smartcents/internal/core"
	"smartcents/internal/ports"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the raw SQL. It knows nothing about error classes; Store
// translates what comes back.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// Users

const createUser = `INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`

func (q *Queries) CreateUser(ctx context.Context, u core.User) error {
	_, err := q.db.ExecContext(ctx, createUser, u.ID, u.Email, u.PasswordHash, toUnix(u.CreatedAt))
	return err
}

const userColumns = `id, email, password_hash, created_at`

func scanUser(r rowScanner) (core.User, error) {
	var (
		u       core.User
		created int64
	)
	if err := r.Scan(&u.ID, &u.Email, &u.PasswordHash, &created); err != nil {
		return core.User{}, err
	}
	u.CreatedAt = fromUnix(created)
	return u, nil
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	return scanUser(q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (q *Queries) GetUserByID(ctx context.Context, id string) (core.User, error) {
	return scanUser(q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (q *Queries) UpdatePasswordHash(ctx context.Context, id, hash string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, hash, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Settings

func (q *Queries) GetSettings(ctx context.Context, userID string) (core.Settings, error) {
	var (
		s    core.Settings
		name sql.NullString
	)
	err := q.db.QueryRowContext(ctx,
		`SELECT language, currency, theme, name FROM settings WHERE user_id = ?`, userID,
	).Scan(&s.Language, &s.Currency, &s.Theme, &name)
	if err != nil {
		return core.Settings{}, err
	}
	s.Name = name.String
	return s, nil
}

// created_at is kept from the first insert; every other column is replaced.
const upsertSettings = `
INSERT INTO settings (user_id, language, currency, theme, name, created_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
    language = excluded.language,
    currency = excluded.currency,
    theme    = excluded.theme,
    name     = excluded.name
RETURNING language, currency, theme, name`

func (q *Queries) UpsertSettings(ctx context.Context, userID string, s core.Settings, now time.Time) (core.Settings, error) {
	var (
		out  core.Settings
		name sql.NullString
	)
	err := q.db.QueryRowContext(ctx, upsertSettings,
		userID, s.Language, s.Currency, string(s.Theme), nullString(s.Name), toUnix(now),
	).Scan(&out.Language, &out.Currency, &out.Theme, &name)
	if err != nil {
		return core.Settings{}, err
	}
	out.Name = name.String
	return out, nil
}

// Categories

const categoryColumns = `id, name, type, color, parent_id, user_id, created_at`

func scanCategory(r rowScanner) (core.Category, error) {
	var (
		c       core.Category
		parent  sql.NullString
		created int64
	)
	if err := r.Scan(&c.ID, &c.Name, &c.Type, &c.Color, &parent, &c.UserID, &created); err != nil {
		return core.Category{}, err
	}
	c.ParentID = stringPtr(parent)
	c.CreatedAt = fromUnix(created)
	return c, nil
}

func (q *Queries) CreateCategory(ctx context.Context, c core.Category) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, string(c.Type), c.Color, nullStringPtr(c.ParentID), c.UserID, toUnix(c.CreatedAt),
	)
	return err
}

func (q *Queries) GetCategory(ctx context.Context, userID, id string) (core.Category, error) {
	return scanCategory(q.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = ? AND id = ?`, userID, id))
}

func (q *Queries) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = ? ORDER BY name, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (q *Queries) UpdateCategory(ctx context.Context, c core.Category) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, color = ?, parent_id = ? WHERE user_id = ? AND id = ?`,
		c.Name, c.Color, nullStringPtr(c.ParentID), c.UserID, c.ID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) DeleteCategory(ctx context.Context, userID, id string) (int64, error) {
	return q.exec(ctx, `DELETE FROM categories WHERE user_id = ? AND id = ?`, userID, id)
}

func (q *Queries) ClearTransactionCategory(ctx context.Context, userID, categoryID string) (int64, error) {
	return q.exec(ctx, `UPDATE transactions SET category_id = NULL WHERE user_id = ? AND category_id = ?`, userID, categoryID)
}

func (q *Queries) DetachChildren(ctx context.Context, userID, parentID string) (int64, error) {
	return q.exec(ctx, `UPDATE categories SET parent_id = NULL WHERE user_id = ? AND parent_id = ?`, userID, parentID)
}

func (q *Queries) ClearBudgetCategory(ctx context.Context, userID, categoryID string) (int64, error) {
	return q.exec(ctx, `UPDATE budgets SET category_id = NULL WHERE user_id = ? AND category_id = ?`, userID, categoryID)
}

// Transactions

const transactionColumns = `id, amount, type, category_id, description, date, user_id, created_at`

func scanTransaction(r rowScanner) (core.Transaction, error) {
	var (
		t        core.Transaction
		category sql.NullString
		created  int64
	)
	if err := r.Scan(&t.ID, &t.Amount, &t.Type, &category, &t.Description, &t.Date, &t.UserID, &created); err != nil {
		return core.Transaction{}, err
	}
	t.CategoryID = stringPtr(category)
	t.CreatedAt = fromUnix(created)
	return t, nil
}

func (q *Queries) InsertTransaction(ctx context.Context, t core.Transaction) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Amount.String(), string(t.Type), nullStringPtr(t.CategoryID), t.Description, t.Date.String(), t.UserID, toUnix(t.CreatedAt),
	)
	return err
}

// ListTransactions builds the WHERE clause from the non-zero fields of f.
func (q *Queries) ListTransactions(ctx context.Context, userID string, f ports.TransactionQuery) ([]core.Transaction, error) {
	var (
		where = []string{"user_id = ?"}
		args  = []any{userID}
	)
	if !f.From.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, f.From.String())
	}
	if !f.To.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, f.To.String())
	}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(f.Type))
	}
	if f.CategoryID != "" {
		where = append(where, "category_id = ?")
		args = append(args, f.CategoryID)
	}
	order := "date ASC, created_at ASC, id ASC"
	if f.Descending {
		order = "date DESC, created_at DESC, id DESC"
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY ` + order

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (q *Queries) DeleteTransaction(ctx context.Context, userID, id string) (int64, error) {
	return q.exec(ctx, `DELETE FROM transactions WHERE user_id = ? AND id = ?`, userID, id)
}

// Budgets

const budgetColumns = `id, category_id, amount, period, user_id, created_at`

func (q *Queries) InsertBudget(ctx context.Context, b core.Budget) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO budgets (`+budgetColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, nullStringPtr(b.CategoryID), b.Amount.String(), string(b.Period), b.UserID, toUnix(b.CreatedAt),
	)
	return err
}

func (q *Queries) ListBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var (
			b        core.Budget
			category sql.NullString
			created  int64
		)
		if err := rows.Scan(&b.ID, &category, &b.Amount, &b.Period, &b.UserID, &created); err != nil {
			return nil, err
		}
		b.CategoryID = stringPtr(category)
		b.CreatedAt = fromUnix(created)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (q *Queries) DeleteBudget(ctx context.Context, userID, id string) (int64, error) {
	return q.exec(ctx, `DELETE FROM budgets WHERE user_id = ? AND id = ?`, userID, id)
}

func (q *Queries) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func toUnix(t time.Time) int64 {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return nullString(*s)
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	s := ns.String
	return &s
}
