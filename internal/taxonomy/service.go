// Package taxonomy maintains the per-user category hierarchy.
package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"smartcents/internal/core"
	"smartcents/internal/log"
	"smartcents/internal/ports"
)

// DefaultColor is used by imports when neither an entry nor its parent has a color.
const DefaultColor = "#3B82F6"

type NewCategory struct {
	Name     string
	Type     core.TransactionType
	Color    string
	ParentID string // empty for a root
}

// CategoryPatch changes a category in place. Nil fields are kept. A ParentID
// pointing at "" turns the category into a root.
type CategoryPatch struct {
	Name     *string
	Color    *string
	ParentID *string
}

type Service struct {
	store  ports.TaxonomyStore
	events ports.EventPublisher
	logger *log.Logger
	now    func() time.Time
}

// NewService wires the taxonomy. events may be nil.
func NewService(store ports.TaxonomyStore, events ports.EventPublisher, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		store:  store,
		events: events,
		logger: logger.WithComponent(log.ComponentTaxonomy),
		now:    time.Now,
	}
}

func (s *Service) Create(ctx context.Context, userID string, in NewCategory) (core.Category, error) {
	c, err := s.create(ctx, s.store, userID, in)
	if err != nil {
		return core.Category{}, err
	}
	s.logger.InfoContext(ctx, "Category created", log.NewFields().WithCategory(c).WithOperation(log.OpCreate).ToSlice()...)
	return c, nil
}

// create validates and inserts through store, which may be bound to an open
// transaction.
func (s *Service) create(ctx context.Context, store ports.CategoryStore, userID string, in NewCategory) (core.Category, error) {
	c := core.Category{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Type:      in.Type,
		Color:     strings.TrimSpace(in.Color),
		UserID:    userID,
		CreatedAt: s.now(),
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	if parentID := strings.TrimSpace(in.ParentID); parentID != "" {
		if _, err := validParent(ctx, store, userID, parentID, c.Type); err != nil {
			return core.Category{}, err
		}
		c.ParentID = &parentID
	}

	if err := store.CreateCategory(ctx, c); err != nil {
		return core.Category{}, err
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, userID, categoryID string, patch CategoryPatch) (core.Category, error) {
	c, err := s.store.GetCategory(ctx, userID, categoryID)
	if err != nil {
		return core.Category{}, err
	}

	if patch.Name != nil {
		c.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Color != nil {
		c.Color = strings.TrimSpace(*patch.Color)
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	if patch.ParentID != nil {
		parentID := strings.TrimSpace(*patch.ParentID)
		if parentID == "" {
			c.ParentID = nil
		} else {
			if err := s.checkReparent(ctx, c, parentID); err != nil {
				return core.Category{}, err
			}
			c.ParentID = &parentID
		}
	}

	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return core.Category{}, err
	}
	s.logger.InfoContext(ctx, "Category updated", log.NewFields().WithCategory(c).WithOperation(log.OpUpdate).ToSlice()...)
	return c, nil
}

// checkReparent enforces the parent rule and rejects any parent whose
// ancestor chain already contains c.
func (s *Service) checkReparent(ctx context.Context, c core.Category, parentID string) error {
	if parentID == c.ID {
		return core.ErrCyclicHierarchy
	}
	if _, err := validParent(ctx, s.store, c.UserID, parentID, c.Type); err != nil {
		return err
	}

	all, err := s.store.ListCategories(ctx, c.UserID)
	if err != nil {
		return err
	}
	if isAncestor(c.ID, parentID, index(all)) {
		return core.ErrCyclicHierarchy
	}
	return nil
}

func validParent(ctx context.Context, store ports.CategoryStore, userID, parentID string, typ core.TransactionType) (core.Category, error) {
	parent, err := store.GetCategory(ctx, userID, parentID)
	if errors.Is(err, core.ErrCategoryNotFound) {
		return core.Category{}, fmt.Errorf("%w: %s does not exist", core.ErrInvalidParent, parentID)
	}
	if err != nil {
		return core.Category{}, err
	}
	if parent.Type != typ {
		return core.Category{}, fmt.Errorf("%w: parent is %s, category is %s", core.ErrInvalidParent, parent.Type, typ)
	}
	return parent, nil
}

// Delete removes a category. Referencing transactions become uncategorized,
// children become roots and budgets lose their category; all of it commits
// together or not at all.
func (s *Service) Delete(ctx context.Context, userID, categoryID string) error {
	var (
		deleted                  core.Category
		txCleared, kids, budgets int64
	)
	err := s.store.Atomically(ctx, func(tx ports.Store) error {
		var err error
		if deleted, err = tx.GetCategory(ctx, userID, categoryID); err != nil {
			return err
		}
		if txCleared, err = tx.ClearTransactionCategory(ctx, userID, categoryID); err != nil {
			return err
		}
		if kids, err = tx.DetachChildren(ctx, userID, categoryID); err != nil {
			return err
		}
		if budgets, err = tx.ClearBudgetCategory(ctx, userID, categoryID); err != nil {
			return err
		}
		return tx.DeleteCategory(ctx, userID, categoryID)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Category deleted",
		log.FieldCategoryID, categoryID,
		"transactions_uncategorized", txCleared,
		"children_detached", kids,
		"budgets_cleared", budgets)

	s.publish(ctx, core.LedgerEvent{
		ID:           uuid.NewString(),
		Kind:         core.EventCategoryDeleted,
		UserID:       userID,
		CategoryID:   categoryID,
		CategoryName: deleted.Name,
		OccurredAt:   s.now(),
	})
	return nil
}

// List returns the user's categories ordered by name.
func (s *Service) List(ctx context.Context, userID string) ([]core.Category, error) {
	return s.store.ListCategories(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID, categoryID string) (core.Category, error) {
	return s.store.GetCategory(ctx, userID, categoryID)
}

// ListTree returns the user's categories as a forest.
func (s *Service) ListTree(ctx context.Context, userID string) ([]*Node, error) {
	cats, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	return BuildForest(cats), nil
}

func (s *Service) publish(ctx context.Context, e core.LedgerEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish ledger event",
			log.FieldEvent, string(e.Kind), log.FieldError, err)
	}
}
