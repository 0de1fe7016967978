package log

import "smartcents/internal/core"

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldUserID        = "user_id"
	FieldCategoryID    = "category_id"
	FieldTransactionID = "transaction_id"
	FieldBudgetID      = "budget_id"
	FieldType          = "type"
	FieldAmount        = "amount"
	FieldDate          = "date"
	FieldCount         = "count"
	FieldEvent         = "event"
	FieldSheetsRef     = "sheets_ref"
	FieldDuration      = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentCLI       = "cli"
	ComponentAuth      = "auth"
	ComponentTaxonomy  = "taxonomy"
	ComponentLedger    = "ledger"
	ComponentSettings  = "settings"
	ComponentAnalytics = "analytics"
	ComponentBudget    = "budget"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpExport   = "export"
	OpImport   = "import"
	OpPublish  = "publish"
	OpSync     = "sync"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithTransaction adds the fields that identify a ledger entry. The
// description is left out on purpose: it is free text typed by the user.
func (f LogFields) WithTransaction(t core.Transaction) LogFields {
	f[FieldTransactionID] = t.ID
	f[FieldType] = string(t.Type)
	f[FieldAmount] = t.Amount.String()
	f[FieldDate] = t.Date.String()
	if t.CategoryID != nil {
		f[FieldCategoryID] = *t.CategoryID
	}
	return f
}

func (f LogFields) WithCategory(c core.Category) LogFields {
	f[FieldCategoryID] = c.ID
	f[FieldType] = string(c.Type)
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
