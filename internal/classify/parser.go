package classify

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/model"
)

// purchaseDateLayout is the only accepted purchase date format.
const purchaseDateLayout = "2006-01-02"

// defaultItemName is used when a line item carries no name.
const defaultItemName = "Unknown"

// extractJSONObject locates the single JSON object in free text by taking the
// substring from the first '{' to the last '}'. Models wrap JSON in prose or
// code fences often enough that this is the most reliable extraction.
func extractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

// rawReceipt mirrors the model's response schema. Numeric fields stay raw so
// one malformed value degrades to its fallback instead of failing the whole
// object; items stay raw so one malformed entry is skipped individually.
type rawReceipt struct {
	StoreName    string            `json:"store_name"`
	Currency     string            `json:"currency"`
	PurchaseDate string            `json:"purchase_date"`
	Category     string            `json:"category"`
	TotalAmount  json.RawMessage   `json:"total_amount"`
	Items        []json.RawMessage `json:"items"`
}

type rawItem struct {
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	Quantity   json.RawMessage `json:"quantity"`
	UnitPrice  json.RawMessage `json:"unit_price"`
	TotalPrice json.RawMessage `json:"total_price"`
}

// parseReceiptResponse converts the model's raw text response into a
// ParsedReceiptData, applying per-field fallbacks. It never fails: anything
// unusable becomes the empty result.
func parseReceiptResponse(content string, logger *slog.Logger) model.ParsedReceiptData {
	jsonText, ok := extractJSONObject(content)
	if !ok {
		logger.Warn("no JSON object in classification response", "response_length", len(content))
		return model.EmptyParsedReceiptData()
	}

	var raw rawReceipt
	if err := json.Unmarshal([]byte(jsonText), &raw); err != nil {
		logger.Warn("failed to parse classification response", "error", err)
		return model.EmptyParsedReceiptData()
	}

	result := model.EmptyParsedReceiptData()
	result.StoreName = raw.StoreName

	if amount, ok := coerceDecimal(raw.TotalAmount); ok {
		result.TotalAmount = &amount
	}

	currency, known := model.ParseCurrency(raw.Currency)
	if !known && raw.Currency != "" {
		logger.Debug("unsupported currency in response", "currency", raw.Currency)
	}
	result.Currency = currency

	if raw.PurchaseDate != "" {
		if date, err := time.Parse(purchaseDateLayout, raw.PurchaseDate); err == nil {
			result.PurchaseDate = &date
		} else {
			logger.Debug("invalid purchase date in response", "purchase_date", raw.PurchaseDate)
		}
	}

	result.Category, _ = model.ParseCategoryKey(raw.Category)

	for _, rawEntry := range raw.Items {
		item, ok := parseLineItem(rawEntry)
		if !ok {
			logger.Debug("skipping malformed line item", "item", string(rawEntry))
			continue
		}
		result.Items = append(result.Items, item)
	}

	return result
}

// parseLineItem coerces a single line item. A malformed entry (unparseable
// object or non-numeric price fields) is reported as not ok and skipped by
// the caller; it never aborts the rest of the list.
func parseLineItem(raw json.RawMessage) (model.ReceiptLineItem, bool) {
	var entry rawItem
	if err := json.Unmarshal(raw, &entry); err != nil {
		return model.ReceiptLineItem{}, false
	}

	item := model.ReceiptLineItem{Name: entry.Name}
	if item.Name == "" {
		item.Name = defaultItemName
	}

	// The item-level category is validated independently of the receipt
	// category: a grocery receipt may carry a dining line item.
	item.Category, _ = model.ParseCategoryKey(entry.Category)

	for _, field := range []struct {
		dst *decimal.Decimal
		raw json.RawMessage
	}{
		{&item.Quantity, entry.Quantity},
		{&item.UnitPrice, entry.UnitPrice},
		{&item.TotalPrice, entry.TotalPrice},
	} {
		if len(field.raw) == 0 || string(field.raw) == "null" {
			continue // absent numeric fields stay zero
		}
		value, ok := coerceDecimal(field.raw)
		if !ok {
			return model.ReceiptLineItem{}, false
		}
		*field.dst = value
	}

	return item, true
}

// coerceDecimal parses a raw JSON value as a decimal number. It accepts both
// JSON numbers and numeric strings; anything else (including null or absence)
// is not ok.
func coerceDecimal(raw json.RawMessage) (decimal.Decimal, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Decimal{}, false
	}
	var d decimal.Decimal
	if err := json.Unmarshal(raw, &d); err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
