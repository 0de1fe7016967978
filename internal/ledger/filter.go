package ledger

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"smartcents/internal/core"
	"smartcents/internal/ports"
)

type Order int

const (
	OrderDateAsc Order = iota
	OrderDateDesc
)

// Filter narrows a query. Zero fields match everything; set fields are ANDed.
// Date bounds are inclusive.
type Filter struct {
	DateFrom   core.Date
	DateTo     core.Date
	Type       core.TransactionType
	CategoryID string
	// Text is a case-insensitive substring of the description.
	Text  string
	Order Order
}

func (f Filter) Validate() error {
	if f.Type != "" {
		if err := f.Type.Validate(); err != nil {
			return err
		}
	}
	if f.Order != OrderDateAsc && f.Order != OrderDateDesc {
		return fmt.Errorf("unknown order %d", f.Order)
	}
	return nil
}

func (f Filter) storageQuery() ports.TransactionQuery {
	return ports.TransactionQuery{
		From:       f.DateFrom,
		To:         f.DateTo,
		Type:       f.Type,
		CategoryID: strings.TrimSpace(f.CategoryID),
		Descending: f.Order == OrderDateDesc,
	}
}

// matchText filters in memory: SQLite's LIKE only folds ASCII.
func (f Filter) matchText(txs []core.Transaction) []core.Transaction {
	needle := strings.TrimSpace(f.Text)
	if needle == "" {
		return txs
	}
	fold := cases.Fold()
	needle = fold.String(needle)

	out := txs[:0:0]
	for _, t := range txs {
		if strings.Contains(fold.String(t.Description), needle) {
			out = append(out, t)
		}
	}
	return out
}
