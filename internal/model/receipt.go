package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ParsedReceiptData is the ephemeral output of the receipt classification
// pipeline. It is never persisted directly; the upload orchestration maps it
// into expense and receipt records.
//
// Nil pointer fields mean the model produced nothing usable for that field.
type ParsedReceiptData struct {
	PurchaseDate *time.Time
	TotalAmount  *decimal.Decimal
	StoreName    string
	Currency     Currency
	Category     CategoryKey
	Items        []ReceiptLineItem
}

// ReceiptLineItem is a single line item extracted from a receipt. Its
// category is validated independently of the receipt-level category: a
// grocery receipt may carry a dining-categorized line item.
type ReceiptLineItem struct {
	Name       string
	Category   CategoryKey
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// EmptyParsedReceiptData is the graceful-degradation result: default currency,
// fallback category, nothing extracted. The pipeline returns it for any
// failure rather than surfacing an error.
func EmptyParsedReceiptData() ParsedReceiptData {
	return ParsedReceiptData{
		Currency: DefaultCurrency,
		Category: CategoryOther,
	}
}

// NeedsReview reports whether the classification extracted so little that the
// resulting receipt should be flagged for manual review.
func (r ParsedReceiptData) NeedsReview() bool {
	return r.StoreName == "" && r.TotalAmount == nil && len(r.Items) == 0
}
