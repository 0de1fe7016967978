package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("case %d expected ErrInvalidDate, got %v", i, err)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-02-29 ")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.String() != "2024-02-29" || d.Period() != "2024-02" {
		t.Fatalf("unexpected date %s / %s", d, d.Period())
	}
	for _, bad := range []string{"", "2024-13-01", "2023-02-29", "01/02/2024"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", bad, err)
		}
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan("2025-03-04"); err != nil {
		t.Fatalf("scan string: %v", err)
	}
	if d != NewDate(2025, 3, 4) {
		t.Fatalf("unexpected %v", d)
	}
	if err := d.Scan([]byte("2025-03-05")); err != nil || d != NewDate(2025, 3, 5) {
		t.Fatalf("scan bytes: %v %v", d, err)
	}
	if err := d.Scan(time.Date(2025, 3, 6, 13, 0, 0, 0, time.UTC)); err != nil || d != NewDate(2025, 3, 6) {
		t.Fatalf("scan time: %v %v", d, err)
	}
	if err := d.Scan(42); err == nil {
		t.Fatalf("expected error for int source")
	}
	v, _ := NewDate(2025, 1, 2).Value()
	if v != "2025-01-02" {
		t.Fatalf("unexpected value %v", v)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Amount: decimal.RequireFromString("12.50"),
		Type:   Expense,
		Date:   NewDate(2025, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	zero := good
	zero.Amount = decimal.Zero
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount should be allowed, got %v", err)
	}

	cases := []struct {
		mutate func(*Transaction)
		want   error
	}{
		{func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-1) }, ErrInvalidAmount},
		{func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
		{func(tx *Transaction) { tx.Date = Date{} }, ErrInvalidDate},
		{func(tx *Transaction) { tx.Description = string(make([]byte, 501)) }, ErrDescriptionTooLong},
	}
	for i, tc := range cases {
		tx := good
		tc.mutate(&tx)
		if err := tx.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestCategoryValidate(t *testing.T) {
	good := Category{Name: "Food", Type: Expense, Color: "#ff0000"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if !good.IsRoot() {
		t.Fatalf("category without parent should be root")
	}
	empty := ""
	good.ParentID = &empty
	if !good.IsRoot() {
		t.Fatalf("empty parent id should count as root")
	}

	bads := []struct {
		c    Category
		want error
	}{
		{Category{Name: "  ", Type: Expense, Color: "red"}, ErrEmptyName},
		{Category{Name: "Food", Type: "other", Color: "red"}, ErrInvalidType},
		{Category{Name: "Food", Type: Income}, ErrEmptyColor},
	}
	for i, tc := range bads {
		if err := tc.c.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestSettingsApplyAndValidate(t *testing.T) {
	base := DefaultSettings()
	if err := base.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}

	eur := " eur "
	dark := ThemeDark
	got := base.Apply(SettingsPatch{Currency: &eur, Theme: &dark})
	want := Settings{Language: "en", Currency: "EUR", Theme: ThemeDark}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if base.Currency != "USD" {
		t.Fatalf("apply must not mutate the receiver")
	}

	bad := got
	bad.Theme = "blue"
	if err := bad.Validate(); !errors.Is(err, ErrInvalidTheme) {
		t.Fatalf("expected ErrInvalidTheme, got %v", err)
	}
	bad = got
	bad.Currency = "XXX"
	if err := bad.Validate(); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}
}

func TestParseEnums(t *testing.T) {
	if tt, err := ParseTransactionType(" Income "); err != nil || tt != Income {
		t.Fatalf("unexpected %q %v", tt, err)
	}
	if _, err := ParseTransactionType("refund"); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
	if p, err := ParseBudgetPeriod("YEARLY"); err != nil || p != Yearly {
		t.Fatalf("unexpected %q %v", p, err)
	}
	if _, err := ParseBudgetPeriod("weekly"); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestErrorClassifiers(t *testing.T) {
	wrapped := errors.Join(errors.New("ctx"), ErrCyclicHierarchy)
	if !IsValidation(wrapped) {
		t.Fatalf("cyclic hierarchy should be a validation error")
	}
	if IsValidation(ErrStorageUnavailable) || IsValidation(ErrNotAuthenticated) {
		t.Fatalf("storage and auth failures are not validation errors")
	}
	if !IsNotFound(ErrTransactionNotFound) || IsNotFound(ErrInvalidAmount) {
		t.Fatalf("unexpected IsNotFound classification")
	}
}
