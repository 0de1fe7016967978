package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Monthly BudgetPeriod = "monthly"
	Yearly  BudgetPeriod = "yearly"
)

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// UncategorizedLabel names the bucket for transactions without a resolvable category.
const UncategorizedLabel = "Uncategorized"

const (
	maxNameLength        = 64
	maxDescriptionLength = 500
)

type (
	// TransactionType is shared by categories and transactions; the sign of an
	// amount is carried here, never by the stored value.
	TransactionType string

	BudgetPeriod string

	Theme string

	// Identity is the resolved caller every scoped operation receives.
	Identity struct {
		UserID string
		Email  string
	}

	User struct {
		ID           string
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}

	Settings struct {
		Language string `json:"language"`
		Currency string `json:"currency"`
		Theme    Theme  `json:"theme"`
		Name     string `json:"name,omitempty"` // empty means none
	}

	// SettingsPatch holds the fields a caller wants to change; nil fields are kept.
	SettingsPatch struct {
		Language *string
		Currency *string
		Theme    *Theme
		Name     *string
	}

	Category struct {
		ID        string          `json:"id"`
		Name      string          `json:"name"`
		Type      TransactionType `json:"type"`
		Color     string          `json:"color"`
		ParentID  *string         `json:"parent_id,omitempty"`
		UserID    string          `json:"-"`
		CreatedAt time.Time       `json:"created_at"`
	}

	Transaction struct {
		ID          string          `json:"id"`
		Amount      decimal.Decimal `json:"amount"`
		Type        TransactionType `json:"type"`
		CategoryID  *string         `json:"category_id,omitempty"`
		Description string          `json:"description,omitempty"`
		Date        Date            `json:"date"`
		UserID      string          `json:"-"`
		CreatedAt   time.Time       `json:"created_at"`
	}

	Budget struct {
		ID         string          `json:"id"`
		CategoryID *string         `json:"category_id,omitempty"`
		Amount     decimal.Decimal `json:"amount"`
		Period     BudgetPeriod    `json:"period"`
		UserID     string          `json:"-"`
		CreatedAt  time.Time       `json:"created_at"`
	}
)

// DefaultSettings is what Get returns for a user that never saved settings.
func DefaultSettings() Settings {
	return Settings{
		Language: "en",
		Currency: "USD",
		Theme:    ThemeLight,
	}
}

func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidType
	}
}

func ParseBudgetPeriod(s string) (BudgetPeriod, error) {
	p := BudgetPeriod(strings.ToLower(strings.TrimSpace(s)))
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}

func (p BudgetPeriod) Validate() error {
	switch p {
	case Monthly, Yearly:
		return nil
	default:
		return ErrInvalidPeriod
	}
}

func (t Theme) Validate() error {
	switch t {
	case ThemeLight, ThemeDark:
		return nil
	default:
		return ErrInvalidTheme
	}
}

// IsRoot reports whether the category has no parent.
func (c Category) IsRoot() bool {
	return c.ParentID == nil || *c.ParentID == ""
}

// Validate checks the fields a category owns on its own; parent rules need the
// rest of the taxonomy and are enforced by the taxonomy service.
func (c Category) Validate() error {
	if err := ValidateName(c.Name); err != nil {
		return err
	}
	if err := c.Type.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Color) == "" {
		return ErrEmptyColor
	}
	return nil
}

func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > maxNameLength {
		return ErrNameTooLong
	}
	return nil
}

// IsUncategorized reports whether the transaction has no category reference.
func (t Transaction) IsUncategorized() bool {
	return t.CategoryID == nil || *t.CategoryID == ""
}

func (t Transaction) Validate() error {
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(t.Description) > maxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

func (b Budget) Validate() error {
	if err := ValidateAmount(b.Amount); err != nil {
		return err
	}
	return b.Period.Validate()
}

func (s Settings) Validate() error {
	if strings.TrimSpace(s.Language) == "" {
		return ErrInvalidLanguage
	}
	if _, ok := LookupCurrency(s.Currency); !ok {
		return ErrInvalidCurrency
	}
	if err := s.Theme.Validate(); err != nil {
		return err
	}
	if len(s.Name) > maxNameLength {
		return ErrNameTooLong
	}
	return nil
}

// Apply returns a copy of s with every non-nil patch field replaced. Storage
// only ever sees full objects, so callers merge with Apply before upserting.
func (s Settings) Apply(p SettingsPatch) Settings {
	out := s
	if p.Language != nil {
		out.Language = strings.TrimSpace(*p.Language)
	}
	if p.Currency != nil {
		out.Currency = strings.ToUpper(strings.TrimSpace(*p.Currency))
	}
	if p.Theme != nil {
		out.Theme = *p.Theme
	}
	if p.Name != nil {
		out.Name = strings.TrimSpace(*p.Name)
	}
	return out
}

// NormalizeEmail is applied before every lookup and insert so uniqueness is
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
