// Package sheets defines the spreadsheet mirror of the ledger. Adapters live
// in the google and memory subpackages.
package sheets

import (
	"context"

	"github.com/shopspring/decimal"

	"smartcents/internal/core"
)

// Row is one mirrored transaction, in column order.
type Row struct {
	Date          string
	Type          string
	Amount        decimal.Decimal
	Category      string
	Description   string
	TransactionID string
	CategoryID    string
}

// Header names the mirror columns A through G.
var Header = []string{"Date", "Type", "Amount", "Category", "Description", "Transaction ID", "Category ID"}

// Column indexes into Header.
const (
	ColCategory      = 3
	ColTransactionID = 5
	ColCategoryID    = 6
)

func NewRow(t core.Transaction, categoryName string) Row {
	r := Row{
		Date:          t.Date.String(),
		Type:          string(t.Type),
		Amount:        t.Amount,
		Category:      categoryName,
		Description:   t.Description,
		TransactionID: t.ID,
	}
	if t.CategoryID != nil {
		r.CategoryID = *t.CategoryID
	}
	return r
}

// Values renders the row for the Sheets API. Amounts are numeric cells.
func (r Row) Values() []any {
	return []any{r.Date, r.Type, r.Amount.InexactFloat64(), r.Category, r.Description, r.TransactionID, r.CategoryID}
}

// TransactionMirror keeps an external copy of the ledger in step with
// published events. Every method must be safe to repeat.
type TransactionMirror interface {
	// Append adds a row unless one with the same transaction id exists and
	// returns a reference to it.
	Append(ctx context.Context, r Row) (ref string, err error)
	// DeleteTransaction removes the rows of a transaction.
	DeleteTransaction(ctx context.Context, transactionID string) (removed bool, err error)
	// ClearCategory blanks the category cells of rows filed under categoryID.
	ClearCategory(ctx context.Context, categoryID string) (cleared int, err error)
}
