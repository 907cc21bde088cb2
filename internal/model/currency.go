package model

import "strings"

// Currency is an ISO 4217 code from the supported set. Anything outside the
// set parses to DefaultCurrency.
type Currency string

// Supported currencies.
const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyCHF Currency = "CHF"
	CurrencyPLN Currency = "PLN"
	CurrencyJPY Currency = "JPY"
	CurrencyCAD Currency = "CAD"
	CurrencyAUD Currency = "AUD"
	CurrencyMXN Currency = "MXN"
	CurrencyBRL Currency = "BRL"
)

// DefaultCurrency is used whenever the model omits or invents a currency.
const DefaultCurrency = CurrencyUSD

var supportedCurrencies = map[Currency]struct{}{
	CurrencyUSD: {},
	CurrencyEUR: {},
	CurrencyGBP: {},
	CurrencyCHF: {},
	CurrencyPLN: {},
	CurrencyJPY: {},
	CurrencyCAD: {},
	CurrencyAUD: {},
	CurrencyMXN: {},
	CurrencyBRL: {},
}

// ParseCurrency validates a raw code (case-insensitive). Unknown or empty
// input falls back to DefaultCurrency; the second return reports whether the
// input was a supported code.
func ParseCurrency(raw string) (Currency, bool) {
	c := Currency(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := supportedCurrencies[c]; ok {
		return c, true
	}
	return DefaultCurrency, false
}
