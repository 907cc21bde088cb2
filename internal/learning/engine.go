// Package learning turns user category corrections into persistent
// preferences. Repeated identical corrections reinforce an existing
// preference; a correction to a different category retargets it and resets
// its confidence; anything else creates a new preference at baseline.
package learning

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tallyhq/tally/internal/model"
	"github.com/tallyhq/tally/internal/normalize"
	"github.com/tallyhq/tally/internal/service"
)

// Correction carries one user category correction into the engine.
type Correction struct {
	// ItemName is the free-text item or expense description the user
	// corrected. Required.
	ItemName string
	// StoreName optionally qualifies the correction to one store. Its
	// absence is preserved as part of the preference match key.
	StoreName string
	// CorrectedCategory is the category the user chose. Required.
	CorrectedCategory string
	// OriginalCategory is what the system had assigned, if known.
	OriginalCategory string
	// SourceRef points at the originating transaction, if any.
	SourceRef string
}

// Outcome names the state transition a correction produced.
type Outcome string

// Correction outcomes. There is no deletion outcome: removing a preference
// is an explicit user action on the store, never a learning side effect.
const (
	OutcomeCreated    Outcome = "created"
	OutcomeReinforced Outcome = "reinforced"
	OutcomeRetargeted Outcome = "retargeted"
)

// Engine applies corrections to the preference store.
type Engine struct {
	prefs  service.PreferenceStore
	logger *slog.Logger
}

// NewEngine creates a learning engine backed by the given preference store.
func NewEngine(prefs service.PreferenceStore, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{prefs: prefs, logger: logger}
}

// LearnFromCorrection records one correction and returns the resulting
// preference together with the outcome that produced it.
func (e *Engine) LearnFromCorrection(ctx context.Context, userID string, c Correction) (*model.CategoryPreference, Outcome, error) {
	itemPattern := normalize.Text(c.ItemName)
	if itemPattern == "" {
		return nil, "", fmt.Errorf("correction item name is empty after normalization")
	}
	if c.CorrectedCategory == "" {
		return nil, "", fmt.Errorf("correction has no target category")
	}

	// An empty store name normalizes to absence, not to an empty pattern:
	// "no store" must stay a distinct match key from any concrete store.
	storePattern := normalize.Text(c.StoreName)

	existing, err := e.prefs.FindExactPreference(ctx, userID, itemPattern, storePattern)
	if err != nil {
		return nil, "", fmt.Errorf("preference lookup failed: %w", err)
	}

	switch {
	case existing == nil:
		pref, createErr := e.prefs.CreatePreference(ctx, &model.CategoryPreference{
			UserID:           userID,
			ItemPattern:      itemPattern,
			StorePattern:     storePattern,
			TargetCategory:   c.CorrectedCategory,
			OriginalCategory: c.OriginalCategory,
			SourceRef:        c.SourceRef,
		})
		if createErr != nil {
			return nil, "", fmt.Errorf("failed to create preference: %w", createErr)
		}
		e.logOutcome(userID, pref, OutcomeCreated)
		return pref, OutcomeCreated, nil

	case existing.TargetCategory == c.CorrectedCategory:
		pref, reinforceErr := e.prefs.ReinforcePreference(ctx, existing)
		if reinforceErr != nil {
			return nil, "", fmt.Errorf("failed to reinforce preference: %w", reinforceErr)
		}
		e.logOutcome(userID, pref, OutcomeReinforced)
		return pref, OutcomeReinforced, nil

	default:
		pref, retargetErr := e.prefs.RetargetPreference(ctx, existing, c.CorrectedCategory, c.OriginalCategory)
		if retargetErr != nil {
			return nil, "", fmt.Errorf("failed to retarget preference: %w", retargetErr)
		}
		e.logOutcome(userID, pref, OutcomeRetargeted)
		return pref, OutcomeRetargeted, nil
	}
}

func (e *Engine) logOutcome(userID string, pref *model.CategoryPreference, outcome Outcome) {
	e.logger.Info("correction learned",
		"user_id", userID,
		"item_pattern", pref.ItemPattern,
		"store_pattern", pref.StorePattern,
		"target_category", pref.TargetCategory,
		"confidence", pref.Confidence,
		"outcome", string(outcome))
}
