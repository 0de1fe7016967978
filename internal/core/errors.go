package core

import "errors"

// Failure classes callers are expected to match with errors.Is.
var (
	ErrDuplicateIdentity    = errors.New("identity already exists")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInvalidParent        = errors.New("invalid parent category")
	ErrCyclicHierarchy      = errors.New("category hierarchy would contain a cycle")
	ErrCategoryTypeMismatch = errors.New("category type does not match transaction type")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrNotAuthenticated     = errors.New("not authenticated")

	// ErrStorageUnavailable wraps every storage failure that is not a domain condition.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Validation and lookup errors.
var (
	ErrInvalidType         = errors.New("type must be 'income' or 'expense'")
	ErrInvalidPeriod       = errors.New("period must be 'monthly' or 'yearly'")
	ErrInvalidTheme        = errors.New("theme must be 'light' or 'dark'")
	ErrInvalidCurrency     = errors.New("unknown currency code")
	ErrInvalidLanguage     = errors.New("language cannot be empty")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrWeakPassword        = errors.New("password too short")
	ErrEmptyName           = errors.New("name cannot be empty")
	ErrNameTooLong         = errors.New("name too long")
	ErrEmptyColor          = errors.New("color cannot be empty")
	ErrDescriptionTooLong  = errors.New("description too long")
	ErrUserNotFound        = errors.New("user not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrBudgetNotFound      = errors.New("budget not found")
)

// IsValidation reports whether err is a caller mistake rather than a storage
// or authentication failure.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidParent, ErrCyclicHierarchy, ErrCategoryTypeMismatch, ErrInvalidAmount,
		ErrInvalidType, ErrInvalidPeriod, ErrInvalidTheme, ErrInvalidCurrency,
		ErrInvalidLanguage, ErrInvalidDate, ErrInvalidEmail, ErrWeakPassword,
		ErrEmptyName, ErrNameTooLong, ErrEmptyColor, ErrDescriptionTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err signals a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrBudgetNotFound)
}
