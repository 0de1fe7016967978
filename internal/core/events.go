package core

import "time"

type EventKind string

const (
	EventTransactionRecorded EventKind = "transaction.recorded"
	EventTransactionDeleted  EventKind = "transaction.deleted"
	EventCategoryDeleted     EventKind = "category.deleted"
)

// LedgerEvent is emitted after a committed ledger or taxonomy change.
type LedgerEvent struct {
	ID            string       `json:"id"`
	Kind          EventKind    `json:"kind"`
	UserID        string       `json:"user_id"`
	Transaction   *Transaction `json:"transaction,omitempty"`
	TransactionID string       `json:"transaction_id,omitempty"`
	CategoryID    string       `json:"category_id,omitempty"`
	// CategoryName is resolved at publish time so consumers need no store access.
	CategoryName string    `json:"category_name,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}
