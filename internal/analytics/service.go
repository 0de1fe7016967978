package analytics

import (
	"context"

	"golang.org/x/sync/errgroup"

	"smartcents/internal/core"
	"smartcents/internal/log"
	"smartcents/internal/ports"
)

// Source is the read side the summary needs.
type Source interface {
	ListTransactions(ctx context.Context, userID string, q ports.TransactionQuery) ([]core.Transaction, error)
	ListCategories(ctx context.Context, userID string) ([]core.Category, error)
}

type Summary struct {
	From     core.Date        `json:"from"`
	To       core.Date        `json:"to"`
	Totals   Totals           `json:"totals"`
	Expenses []CategoryAmount `json:"expenses_by_category"`
	Income   []CategoryAmount `json:"income_by_category"`
	Monthly  []MonthPoint     `json:"monthly"`
}

type Service struct {
	source Source
	logger *log.Logger
}

func NewService(source Source, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{source: source, logger: logger.WithComponent(log.ComponentAnalytics)}
}

// Summary loads the transactions in [from, to] and the taxonomy concurrently
// and derives every projection from that one snapshot.
func (s *Service) Summary(ctx context.Context, userID string, from, to core.Date) (Summary, error) {
	var (
		txs  []core.Transaction
		cats []core.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.source.ListTransactions(gctx, userID, ports.TransactionQuery{From: from, To: to})
		return err
	})
	g.Go(func() error {
		var err error
		cats, err = s.source.ListCategories(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	s.logger.DebugContext(ctx, "Summary snapshot loaded", log.FieldUserID, userID, log.FieldCount, len(txs))

	return Summary{
		From:     from,
		To:       to,
		Totals:   PeriodTotals(txs, from, to),
		Expenses: SortedBreakdown(ByCategory(txs, cats, core.Expense)),
		Income:   SortedBreakdown(ByCategory(txs, cats, core.Income)),
		Monthly:  MonthlySeries(txs),
	}, nil
}
