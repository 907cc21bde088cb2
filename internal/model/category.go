// Package model defines the core domain models used throughout the application.
package model

import "time"

// CategoryKey identifies a classification bucket in the default catalogue.
// It is a closed set: anything outside it parses to CategoryOther.
type CategoryKey string

// Default category keys.
const (
	CategoryGroceries     CategoryKey = "groceries"
	CategoryDining        CategoryKey = "dining"
	CategoryTransport     CategoryKey = "transport"
	CategoryShopping      CategoryKey = "shopping"
	CategoryEntertainment CategoryKey = "entertainment"
	CategoryHealth        CategoryKey = "health"
	CategoryUtilities     CategoryKey = "utilities"
	CategoryHousing       CategoryKey = "housing"
	CategoryTravel        CategoryKey = "travel"
	CategoryEducation     CategoryKey = "education"
	CategorySubscriptions CategoryKey = "subscriptions"
	CategoryPersonalCare  CategoryKey = "personal_care"
	CategoryIncome        CategoryKey = "income"
	CategoryOther         CategoryKey = "other"
)

// DefaultCategory describes one entry of the static catalogue shipped with
// the application. Each user gets a copy of the catalogue as Category rows
// (see storage.SeedDefaultCategories).
type DefaultCategory struct {
	Key         CategoryKey
	Name        string
	Description string
	Icon        string
	Color       string
	Type        CategoryType
}

// DefaultCatalogue is the ordered static category catalogue. Order matters:
// the prompt builder renders it top to bottom.
var DefaultCatalogue = []DefaultCategory{
	{CategoryGroceries, "Groceries", "Supermarkets, food stores, markets", "cart", "#4CAF50", CategoryTypeExpense},
	{CategoryDining, "Dining", "Restaurants, cafes, bars, takeout, delivery", "utensils", "#FF9800", CategoryTypeExpense},
	{CategoryTransport, "Transport", "Fuel, public transit, rideshare, parking", "car", "#2196F3", CategoryTypeExpense},
	{CategoryShopping, "Shopping", "Clothing, electronics, general retail", "bag", "#9C27B0", CategoryTypeExpense},
	{CategoryEntertainment, "Entertainment", "Movies, concerts, games, events", "film", "#E91E63", CategoryTypeExpense},
	{CategoryHealth, "Health", "Pharmacies, doctors, gyms, insurance", "heart", "#F44336", CategoryTypeExpense},
	{CategoryUtilities, "Utilities", "Electricity, water, gas, internet, phone", "bolt", "#607D8B", CategoryTypeExpense},
	{CategoryHousing, "Housing", "Rent, mortgage, maintenance, furniture", "home", "#795548", CategoryTypeExpense},
	{CategoryTravel, "Travel", "Flights, hotels, vacation expenses", "plane", "#00BCD4", CategoryTypeExpense},
	{CategoryEducation, "Education", "Courses, books, tuition, training", "book", "#3F51B5", CategoryTypeExpense},
	{CategorySubscriptions, "Subscriptions", "Streaming, software, memberships", "repeat", "#673AB7", CategoryTypeExpense},
	{CategoryPersonalCare, "Personal Care", "Haircuts, cosmetics, spa", "smile", "#FFC107", CategoryTypeExpense},
	{CategoryIncome, "Income", "Salary, refunds, transfers in", "trending-up", "#8BC34A", CategoryTypeIncome},
	{CategoryOther, "Other", "Anything that fits no other category", "circle", "#9E9E9E", CategoryTypeExpense},
}

var defaultCatalogueIndex = func() map[CategoryKey]DefaultCategory {
	idx := make(map[CategoryKey]DefaultCategory, len(DefaultCatalogue))
	for _, dc := range DefaultCatalogue {
		idx[dc.Key] = dc
	}
	return idx
}()

// ParseCategoryKey validates a raw string against the default catalogue.
// Unknown or empty input falls back to CategoryOther; the second return
// reports whether the input was a known key.
func ParseCategoryKey(raw string) (CategoryKey, bool) {
	if dc, ok := defaultCatalogueIndex[CategoryKey(raw)]; ok {
		return dc.Key, true
	}
	return CategoryOther, false
}

// LookupDefaultCategory returns the catalogue entry for a key.
func LookupDefaultCategory(key CategoryKey) (DefaultCategory, bool) {
	dc, ok := defaultCatalogueIndex[key]
	return dc, ok
}

// CategoryType indicates whether a category tracks income or expenses.
type CategoryType string

const (
	// CategoryTypeExpense represents categories for expense transactions.
	CategoryTypeExpense CategoryType = "expense"
	// CategoryTypeIncome represents categories for income transactions.
	CategoryTypeIncome CategoryType = "income"
)

// Category is a user-visible classification bucket: either a per-user copy of
// a default catalogue entry or a user-created custom category.
//
// Defaults are immutable except for the hidden flag; only custom categories
// may be deleted. Both rules are enforced by the storage layer.
type Category struct {
	CreatedAt  time.Time
	UpdatedAt  time.Time
	UserID     string
	Name       string
	Icon       string
	Color      string
	DefaultKey CategoryKey // set only when IsDefault; links back to the catalogue
	Type       CategoryType
	ID         int64
	IsDefault  bool
	IsHidden   bool
}

// Key returns the identifier the prompt and pipeline use for this category:
// the catalogue key for defaults, the name for custom categories.
func (c Category) Key() string {
	if c.IsDefault && c.DefaultKey != "" {
		return string(c.DefaultKey)
	}
	return c.Name
}
