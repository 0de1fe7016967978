package core

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is a display label only; amounts are never converted.
type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

var currencies = map[string]Currency{
	"USD": {Code: "USD", Symbol: "$", Name: "US Dollar"},
	"EUR": {Code: "EUR", Symbol: "€", Name: "Euro"},
	"GBP": {Code: "GBP", Symbol: "£", Name: "British Pound"},
	"JPY": {Code: "JPY", Symbol: "¥", Name: "Japanese Yen"},
	"CNY": {Code: "CNY", Symbol: "¥", Name: "Chinese Yuan"},
	"INR": {Code: "INR", Symbol: "₹", Name: "Indian Rupee"},
	"AUD": {Code: "AUD", Symbol: "A$", Name: "Australian Dollar"},
	"CAD": {Code: "CAD", Symbol: "C$", Name: "Canadian Dollar"},
	"CHF": {Code: "CHF", Symbol: "Fr", Name: "Swiss Franc"},
	"NZD": {Code: "NZD", Symbol: "NZ$", Name: "New Zealand Dollar"},
	"BRL": {Code: "BRL", Symbol: "R$", Name: "Brazilian Real"},
	"RUB": {Code: "RUB", Symbol: "₽", Name: "Russian Ruble"},
	"KRW": {Code: "KRW", Symbol: "₩", Name: "South Korean Won"},
	"SGD": {Code: "SGD", Symbol: "S$", Name: "Singapore Dollar"},
	"HKD": {Code: "HKD", Symbol: "HK$", Name: "Hong Kong Dollar"},
	"MXN": {Code: "MXN", Symbol: "Mex$", Name: "Mexican Peso"},
	"ZAR": {Code: "ZAR", Symbol: "R", Name: "South African Rand"},
	"SEK": {Code: "SEK", Symbol: "kr", Name: "Swedish Krona"},
	"NOK": {Code: "NOK", Symbol: "kr", Name: "Norwegian Krone"},
	"DKK": {Code: "DKK", Symbol: "kr", Name: "Danish Krone"},
}

func LookupCurrency(code string) (Currency, bool) {
	c, ok := currencies[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

// Currencies returns the known currencies ordered by code.
func Currencies() []Currency {
	out := make([]Currency, 0, len(currencies))
	for _, c := range currencies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// FormatMoney prefixes the amount with the currency symbol, falling back to
// USD for unknown codes. Amounts are shown with two decimals.
func FormatMoney(amount decimal.Decimal, code string) string {
	c, ok := LookupCurrency(code)
	if !ok {
		c = currencies["USD"]
	}
	if amount.IsNegative() {
		return "-" + c.Symbol + amount.Neg().StringFixed(2)
	}
	return c.Symbol + amount.StringFixed(2)
}
