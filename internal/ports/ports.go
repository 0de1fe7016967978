// Package ports declares the storage contracts the ledger services consume.
// internal/storage implements all of them over SQLite.
package ports

import (
	"context"

	"smartcents/internal/core"
)

type (
	UserStore interface {
		// CreateUser returns core.ErrDuplicateIdentity when the email is taken.
		CreateUser(ctx context.Context, u core.User) error
		UserByEmail(ctx context.Context, email string) (core.User, error)
		UserByID(ctx context.Context, id string) (core.User, error)
		UpdatePasswordHash(ctx context.Context, userID, hash string) error
	}

	SettingsStore interface {
		// GetSettings reports found=false when the user never saved settings.
		GetSettings(ctx context.Context, userID string) (s core.Settings, found bool, err error)
		// UpsertSettings replaces the whole row in a single statement.
		UpsertSettings(ctx context.Context, userID string, s core.Settings) (core.Settings, error)
	}

	CategoryStore interface {
		CreateCategory(ctx context.Context, c core.Category) error
		GetCategory(ctx context.Context, userID, id string) (core.Category, error)
		ListCategories(ctx context.Context, userID string) ([]core.Category, error)
		UpdateCategory(ctx context.Context, c core.Category) error
		DeleteCategory(ctx context.Context, userID, id string) error

		// Reference clearing used by the category delete policy.
		ClearTransactionCategory(ctx context.Context, userID, categoryID string) (int64, error)
		DetachChildren(ctx context.Context, userID, parentID string) (int64, error)
		ClearBudgetCategory(ctx context.Context, userID, categoryID string) (int64, error)
	}

	TransactionStore interface {
		InsertTransaction(ctx context.Context, t core.Transaction) error
		ListTransactions(ctx context.Context, userID string, q TransactionQuery) ([]core.Transaction, error)
		// DeleteTransaction reports whether a row was removed.
		DeleteTransaction(ctx context.Context, userID, id string) (bool, error)
	}

	BudgetStore interface {
		InsertBudget(ctx context.Context, b core.Budget) error
		ListBudgets(ctx context.Context, userID string) ([]core.Budget, error)
		DeleteBudget(ctx context.Context, userID, id string) (bool, error)
	}

	// Store is the full relational collaborator.
	Store interface {
		UserStore
		SettingsStore
		CategoryStore
		TransactionStore
		BudgetStore
	}

	// Transactor runs fn against a Store bound to one storage transaction.
	// Any error returned by fn rolls the whole unit back.
	Transactor interface {
		Atomically(ctx context.Context, fn func(tx Store) error) error
	}

	// TaxonomyStore is what the category service needs: plain reads and
	// writes plus the atomic unit for deletes.
	TaxonomyStore interface {
		CategoryStore
		Transactor
	}
)

// EventPublisher delivers ledger events to whoever mirrors the ledger.
// Services treat publishing as best effort.
type EventPublisher interface {
	Publish(ctx context.Context, e core.LedgerEvent) error
}

// TransactionQuery is the part of a ledger filter storage can evaluate.
// Zero dates are unbounded.
type TransactionQuery struct {
	From       core.Date
	To         core.Date
	Type       core.TransactionType
	CategoryID string
	Descending bool
}
