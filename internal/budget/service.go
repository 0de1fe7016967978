// Package budget stores spending limits per category. Budgets are data only;
// nothing evaluates them against the ledger yet.
package budget

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"smartcents/internal/core"
	"smartcents/internal/log"
	"smartcents/internal/ports"
)

type Store interface {
	ports.BudgetStore
	GetCategory(ctx context.Context, userID, id string) (core.Category, error)
}

type Service struct {
	store  Store
	logger *log.Logger
	now    func() time.Time
}

func NewService(store Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		store:  store,
		logger: logger.WithComponent(log.ComponentBudget),
		now:    time.Now,
	}
}

// Set creates a budget. An empty categoryID means an overall budget; otherwise
// the category must belong to userID.
func (s *Service) Set(ctx context.Context, userID, categoryID string, amount decimal.Decimal, period core.BudgetPeriod) (core.Budget, error) {
	b := core.Budget{
		ID:        uuid.NewString(),
		Amount:    amount,
		Period:    period,
		UserID:    userID,
		CreatedAt: s.now(),
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	if categoryID = strings.TrimSpace(categoryID); categoryID != "" {
		if _, err := s.store.GetCategory(ctx, userID, categoryID); err != nil {
			return core.Budget{}, err
		}
		b.CategoryID = &categoryID
	}

	if err := s.store.InsertBudget(ctx, b); err != nil {
		return core.Budget{}, err
	}

	s.logger.InfoContext(ctx, "Budget set",
		log.FieldUserID, userID,
		log.FieldBudgetID, b.ID,
		log.FieldAmount, b.Amount.String(),
	)
	return b, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]core.Budget, error) {
	return s.store.ListBudgets(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	removed, err := s.store.DeleteBudget(ctx, userID, id)
	if err != nil {
		return err
	}
	if !removed {
		return core.ErrBudgetNotFound
	}
	s.logger.InfoContext(ctx, "Budget deleted", log.FieldUserID, userID, log.FieldBudgetID, id)
	return nil
}
