package outbound

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/prepline/v1/internal/domain/commitment"
	"github.com/prepline/v1/internal/domain/prepplan"
)

// External AI/knowledge collaborator contracts. Every implementation must be
// safe to fail: callers convert any error into a deterministic fallback, so a
// slow or down collaborator degrades quality but never availability.

// GeneratedIngredient is one ingredient produced by the generation
// collaborator, with the quantity already scaled for the requested servings.
type GeneratedIngredient struct {
	Name     string
	Quantity decimal.Decimal
	Unit     string
}

// IngredientGenerator produces a full ingredient list for a meal that has no
// structured recipe data. It must tolerate empty or unknown meal names by
// returning a best-effort generic list.
type IngredientGenerator interface {
	Generate(ctx context.Context, mealName, description string, servings int) ([]GeneratedIngredient, error)
}

// QuantityEstimate is the estimated amount for one named ingredient,
// pre-scaled for the requested servings.
type QuantityEstimate struct {
	Quantity decimal.Decimal
	Unit     string
}

// QuantityEstimator fills in amounts for ingredients that are named in a
// recipe but carry no quantity. Results are keyed by lower-cased name.
type QuantityEstimator interface {
	Estimate(ctx context.Context, dishName string, ingredientNames []string, servings int) (map[string]QuantityEstimate, error)
}

// ShelfLifeEntry is one resolved storage profile from the knowledge service
type ShelfLifeEntry struct {
	IngredientName string
	ShelfLifeDays  int
	StorageType    string
	Notes          string
}

// ShelfLifeKnowledge answers batched shelf-life lookups. Incomplete answers
// are allowed; the resolver fills the gaps from its local fallback table.
type ShelfLifeKnowledge interface {
	Lookup(ctx context.Context, names []string, storageHint string) ([]ShelfLifeEntry, error)
}

// BatchSuggester produces human-readable batch-cooking advice from the
// aggregated shopping data and the commitment calendar.
type BatchSuggester interface {
	Suggest(ctx context.Context, ingredients []*prepplan.AggregatedIngredient, commitments []commitment.Commitment) (*prepplan.BatchSuggestions, error)
}
