package model

import "testing"

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		input     string
		want      Currency
		wantKnown bool
	}{
		{"USD", CurrencyUSD, true},
		{"usd", CurrencyUSD, true},
		{" eur ", CurrencyEUR, true},
		{"PLN", CurrencyPLN, true},
		{"XYZ", CurrencyUSD, false},
		{"", CurrencyUSD, false},
		{"dollars", CurrencyUSD, false},
	}

	for _, tt := range tests {
		got, known := ParseCurrency(tt.input)
		if got != tt.want || known != tt.wantKnown {
			t.Errorf("ParseCurrency(%q) = (%v, %v), want (%v, %v)",
				tt.input, got, known, tt.want, tt.wantKnown)
		}
	}
}
