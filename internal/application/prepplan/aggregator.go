package prepplan

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/prepline/v1/internal/domain/commitment"
	"github.com/prepline/v1/internal/domain/prepplan"
	"github.com/prepline/v1/internal/ports/outbound"
)

// Aggregator expands commitments into per-ingredient aggregates. Missing
// recipe data is filled by the generation and estimation collaborators; any
// collaborator failure degrades to the deterministic fallbacks so aggregation
// always completes.
type Aggregator struct {
	generator outbound.IngredientGenerator
	estimator outbound.QuantityEstimator
	logger    *zap.Logger
}

// NewAggregator creates an ingredient aggregator
func NewAggregator(
	generator outbound.IngredientGenerator,
	estimator outbound.QuantityEstimator,
	logger *zap.Logger,
) *Aggregator {
	return &Aggregator{
		generator: generator,
		estimator: estimator,
		logger:    logger.Named("aggregator"),
	}
}

// Aggregate merges every dish of every commitment into a map of normalized
// ingredient name to aggregate. A commitment with zero dishes contributes
// nothing; totals only ever grow.
func (a *Aggregator) Aggregate(ctx context.Context, commitments []commitment.Commitment) map[string]*prepplan.AggregatedIngredient {
	aggregates := make(map[string]*prepplan.AggregatedIngredient)

	for _, c := range commitments {
		for _, dish := range c.Dishes() {
			if dish.NeedsIngredientGeneration {
				a.addGenerated(ctx, aggregates, c, dish)
				continue
			}
			a.addStructured(ctx, aggregates, c, dish)
		}
	}
	return aggregates
}

// addGenerated resolves a dish with no structured recipe via the generation
// collaborator; on failure it substitutes the keyword fallback set.
func (a *Aggregator) addGenerated(ctx context.Context, aggregates map[string]*prepplan.AggregatedIngredient, c commitment.Commitment, dish commitment.Dish) {
	generated, err := a.generator.Generate(ctx, dish.Name, dish.Description, c.Servings())
	if err != nil || len(generated) == 0 {
		a.logger.Warn("Ingredient generation failed, using fallback set",
			zap.String("dish", dish.Name),
			zap.Error(err),
		)
		generated = fallbackDishIngredients(dish.Name, c.Servings())
	}

	for _, ing := range generated {
		accumulate(aggregates, ing.Name, ing.Unit, ing.Quantity, c)
	}
}

// addStructured scales explicit per-serving quantities and batches the
// quantity-less names per dish through the estimation collaborator.
func (a *Aggregator) addStructured(ctx context.Context, aggregates map[string]*prepplan.AggregatedIngredient, c commitment.Commitment, dish commitment.Dish) {
	scale := decimal.NewFromInt(int64(c.Servings()))

	var unquantified []commitment.IngredientEntry
	for _, entry := range dish.Ingredients {
		if entry.Name == "" {
			continue
		}
		if entry.HasQuantity() {
			accumulate(aggregates, entry.Name, entry.Unit, entry.Quantity.Mul(scale), c)
		} else {
			unquantified = append(unquantified, entry)
		}
	}

	if len(unquantified) == 0 {
		return
	}

	names := make([]string, 0, len(unquantified))
	for _, entry := range unquantified {
		names = append(names, entry.Name)
	}

	estimates, err := a.estimator.Estimate(ctx, dish.Name, names, c.Servings())
	if err != nil {
		a.logger.Warn("Quantity estimation failed, using fallback amounts",
			zap.String("dish", dish.Name),
			zap.Int("ingredients", len(names)),
			zap.Error(err),
		)
		estimates = nil
	}

	for _, entry := range unquantified {
		est, ok := estimates[prepplan.NormalizeIngredientKey(entry.Name)]
		if !ok {
			est = fallbackQuantity(entry.Name, c.Servings())
		}
		unit := entry.Unit
		if unit == "" {
			unit = est.Unit
		}
		accumulate(aggregates, entry.Name, unit, est.Quantity, c)
	}
}

// accumulate adds one scaled quantity into the aggregate for the ingredient,
// creating the aggregate on first occurrence.
func accumulate(aggregates map[string]*prepplan.AggregatedIngredient, name, unit string, quantity decimal.Decimal, c commitment.Commitment) {
	key := prepplan.NormalizeIngredientKey(name)
	if key == "" {
		return
	}
	agg, ok := aggregates[key]
	if !ok {
		agg = prepplan.NewAggregatedIngredient(name, unit)
		aggregates[key] = agg
	}
	agg.Add(quantity, c.MealLabel(), c.ServiceDate())
}
