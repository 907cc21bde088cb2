package model

import "time"

// Confidence bounds for learned preferences.
const (
	// BaselineConfidence is the score assigned to a freshly created or
	// retargeted preference.
	BaselineConfidence = 1.0
	// ConfidenceStep is added on each reinforcing correction.
	ConfidenceStep = 0.5
	// MaxConfidence is the plateau; repeated identical corrections never
	// push a preference past it.
	MaxConfidence = 5.0
)

// CategoryPreference is a learned mapping from a normalized item pattern
// (optionally qualified by a normalized store pattern) to a target category,
// scoped to one user.
//
// The match key is (UserID, ItemPattern, StorePattern) and store-pattern
// absence is itself part of the key: a preference without a store pattern is
// a different rule than the same item pattern at a concrete store.
type CategoryPreference struct {
	CreatedAt        time.Time
	UpdatedAt        time.Time
	LastUsed         time.Time
	UserID           string
	ItemPattern      string
	StorePattern     string // normalized; empty means absent (stored as NULL)
	TargetCategory   string
	OriginalCategory string // category the user overrode, if known
	SourceRef        string // originating transaction reference, if any
	Confidence       float64
	CorrectionCount  int
	ID               int64
}

// HasStorePattern reports whether the preference is qualified by a store.
func (p CategoryPreference) HasStorePattern() bool {
	return p.StorePattern != ""
}
