package prepplan

import (
	"context"

	"go.uber.org/zap"

	"github.com/prepline/v1/internal/domain/commitment"
	"github.com/prepline/v1/internal/domain/prepplan"
	"github.com/prepline/v1/internal/ports/outbound"
)

// staticGeneralTips is the deterministic fallback advice used whenever the
// batch-suggestion collaborator is unavailable or returns an invalid payload.
var staticGeneralTips = []string{
	"Cook grains and proteins in large batches at the start of the week.",
	"Chop sturdy vegetables ahead of time and store them in airtight containers.",
	"Label every prepped container with its contents and date.",
	"Freeze portions you won't use within three days.",
	"Keep sauces and dressings separate until serving to preserve texture.",
}

// Advisor wraps the batch-suggestion collaborator with schema validation and
// the static fallback. Its output is always usable: either validated
// collaborator advice or empty suggestions with the general tips.
type Advisor struct {
	suggester outbound.BatchSuggester
	logger    *zap.Logger
}

// NewAdvisor creates a batch-cooking advisor
func NewAdvisor(suggester outbound.BatchSuggester, logger *zap.Logger) *Advisor {
	return &Advisor{
		suggester: suggester,
		logger:    logger.Named("advisor"),
	}
}

// Advise returns batch-cooking advice for the aggregated window. Collaborator
// failures degrade to the static fallback, never to an error.
func (a *Advisor) Advise(ctx context.Context, ingredients []*prepplan.AggregatedIngredient, commitments []commitment.Commitment) prepplan.BatchSuggestions {
	result, err := a.suggester.Suggest(ctx, ingredients, commitments)
	if err != nil {
		a.logger.Warn("Batch suggestion failed, using static tips", zap.Error(err))
		return fallbackSuggestions()
	}
	if !validSuggestions(result) {
		a.logger.Warn("Batch suggestion payload failed validation, using static tips")
		return fallbackSuggestions()
	}

	// Drop malformed entries rather than rejecting the whole payload.
	kept := make([]prepplan.BatchSuggestion, 0, len(result.Suggestions))
	for _, s := range result.Suggestions {
		if s.Ingredient == "" || s.Suggestion == "" {
			continue
		}
		kept = append(kept, s)
	}
	return prepplan.BatchSuggestions{
		Suggestions: kept,
		GeneralTips: result.GeneralTips,
	}
}

func validSuggestions(result *prepplan.BatchSuggestions) bool {
	if result == nil || len(result.GeneralTips) == 0 {
		return false
	}
	for _, tip := range result.GeneralTips {
		if tip == "" {
			return false
		}
	}
	return true
}

func fallbackSuggestions() prepplan.BatchSuggestions {
	tips := make([]string, len(staticGeneralTips))
	copy(tips, staticGeneralTips)
	return prepplan.BatchSuggestions{
		Suggestions: []prepplan.BatchSuggestion{},
		GeneralTips: tips,
	}
}
