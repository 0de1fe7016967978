// Package ledger records, queries and exports a user's transactions.
package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"smartcents/internal/core"
	"smartcents/internal/log"
	"smartcents/internal/ports"
)

type NewTransaction struct {
	Amount      decimal.Decimal
	Type        core.TransactionType
	Date        core.Date
	CategoryID  string // empty means uncategorized
	Description string
}

// Store is the slice of storage the ledger reads and writes.
type Store interface {
	ports.TransactionStore
	GetCategory(ctx context.Context, userID, id string) (core.Category, error)
	ListCategories(ctx context.Context, userID string) ([]core.Category, error)
}

type Service struct {
	store  Store
	events ports.EventPublisher
	logger *log.Logger
	now    func() time.Time
}

// NewService wires the ledger. events may be nil.
func NewService(store Store, events ports.EventPublisher, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		store:  store,
		events: events,
		logger: logger.WithComponent(log.ComponentLedger),
		now:    time.Now,
	}
}

// Record validates and stores one transaction. Every check runs before the
// insert, so a rejected call leaves no row behind.
func (s *Service) Record(ctx context.Context, userID string, in NewTransaction) (core.Transaction, error) {
	t := core.Transaction{
		ID:          uuid.NewString(),
		Amount:      in.Amount,
		Type:        in.Type,
		Description: strings.TrimSpace(in.Description),
		Date:        in.Date,
		UserID:      userID,
		CreatedAt:   s.now(),
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	var categoryName string
	if categoryID := strings.TrimSpace(in.CategoryID); categoryID != "" {
		c, err := s.store.GetCategory(ctx, userID, categoryID)
		if err != nil {
			return core.Transaction{}, err
		}
		if c.Type != t.Type {
			return core.Transaction{}, core.ErrCategoryTypeMismatch
		}
		t.CategoryID = &categoryID
		categoryName = c.Name
	}

	if err := s.store.InsertTransaction(ctx, t); err != nil {
		return core.Transaction{}, err
	}

	s.logger.InfoContext(ctx, "Transaction recorded",
		log.NewFields().WithTransaction(t).WithOperation(log.OpCreate).ToSlice()...)

	recorded := t
	s.publish(ctx, core.LedgerEvent{
		ID:           uuid.NewString(),
		Kind:         core.EventTransactionRecorded,
		UserID:       userID,
		Transaction:  &recorded,
		CategoryName: categoryName,
		OccurredAt:   s.now(),
	})
	return t, nil
}

// Query returns the user's transactions matching every set field of f.
func (s *Service) Query(ctx context.Context, userID string, f Filter) ([]core.Transaction, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	txs, err := s.store.ListTransactions(ctx, userID, f.storageQuery())
	if err != nil {
		return nil, err
	}
	return f.matchText(txs), nil
}

// Delete removes one transaction. Nothing else references transactions, so
// there is no cascade.
func (s *Service) Delete(ctx context.Context, userID, transactionID string) error {
	removed, err := s.store.DeleteTransaction(ctx, userID, transactionID)
	if err != nil {
		return err
	}
	if !removed {
		return core.ErrTransactionNotFound
	}

	s.logger.InfoContext(ctx, "Transaction deleted", log.FieldTransactionID, transactionID)
	s.publish(ctx, core.LedgerEvent{
		ID:            uuid.NewString(),
		Kind:          core.EventTransactionDeleted,
		UserID:        userID,
		TransactionID: transactionID,
		OccurredAt:    s.now(),
	})
	return nil
}

// Snapshot loads transactions and categories for projections that need both.
func (s *Service) Snapshot(ctx context.Context, userID string, f Filter) ([]core.Transaction, []core.Category, error) {
	txs, err := s.Query(ctx, userID, f)
	if err != nil {
		return nil, nil, err
	}
	cats, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return txs, cats, nil
}

func (s *Service) publish(ctx context.Context, e core.LedgerEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, e); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.WarnContext(ctx, "Failed to publish ledger event",
			log.FieldEvent, string(e.Kind), log.FieldError, err)
	}
}
