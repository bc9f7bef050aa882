package prepplan

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/prepline/v1/internal/domain/commitment"
	"github.com/prepline/v1/internal/ports/outbound"
)

// AggregatorTestSuite covers ingredient expansion and merging
type AggregatorTestSuite struct {
	suite.Suite
}

func structuredCommitment(t *testing.T, mealName string, servings int, serviceDay int, entries []commitment.IngredientEntry) commitment.Commitment {
	t.Helper()
	c, err := commitment.New(
		commitment.KindClientMealPlan, uuid.New(), day(2025, 3, serviceDay),
		servings, mealName, "",
		[]commitment.Dish{{Name: mealName, Ingredients: entries}},
	)
	require.NoError(t, err)
	return c
}

func quantity(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func (s *AggregatorTestSuite) TestScalingAndMerging() {
	// Two commitments both requiring chicken breast: 1 lb/serving x 2 servings
	// on day 1, 0.5 lb/serving x 4 servings on day 4.
	c1 := structuredCommitment(s.T(), "Meal One", 2, 1, []commitment.IngredientEntry{
		{Name: "Chicken Breast", Quantity: quantity("1"), Unit: "lb"},
	})
	c2 := structuredCommitment(s.T(), "Meal Two", 4, 4, []commitment.IngredientEntry{
		{Name: "chicken breast", Quantity: quantity("0.5"), Unit: "lb"},
	})

	agg := NewAggregator(&stubGenerator{}, &stubEstimator{}, zap.NewNop())
	result := agg.Aggregate(context.Background(), []commitment.Commitment{c1, c2})

	require.Len(s.T(), result, 1)
	chicken := result["chicken breast"]
	require.NotNil(s.T(), chicken)

	assert.True(s.T(), chicken.TotalQuantity().Equal(decimal.NewFromInt(4)),
		"2x1 + 4x0.5 must sum to 4, got %s", chicken.TotalQuantity())
	assert.Equal(s.T(), "Chicken Breast", chicken.Name(), "display name from first occurrence")
	assert.Equal(s.T(), 3, chicken.UseSpanDays())
	assert.Len(s.T(), chicken.MealsUsing(), 2)
}

func (s *AggregatorTestSuite) TestGeneratedDishes() {
	flagged, err := commitment.New(
		commitment.KindServiceOrder, uuid.New(), day(2025, 3, 2), 3, "Mystery Menu", "Ben",
		[]commitment.Dish{{Name: "Mystery Menu", NeedsIngredientGeneration: true}},
	)
	require.NoError(s.T(), err)

	s.Run("CollaboratorOutputIsUsedAsIs", func() {
		gen := &stubGenerator{result: []outbound.GeneratedIngredient{
			{Name: "Salmon Fillet", Quantity: decimal.RequireFromString("1.2"), Unit: "lb"},
			{Name: "Lemon", Quantity: decimal.NewFromInt(3), Unit: "whole"},
		}}
		agg := NewAggregator(gen, &stubEstimator{}, zap.NewNop())

		result := agg.Aggregate(context.Background(), []commitment.Commitment{flagged})

		require.Len(s.T(), result, 2)
		// Already scaled for servings, no further multiplication
		assert.True(s.T(), result["salmon fillet"].TotalQuantity().Equal(decimal.RequireFromString("1.2")))
		assert.Equal(s.T(), 1, gen.calls)
	})

	s.Run("CollaboratorFailure_FallsBackDeterministically", func() {
		gen := &stubGenerator{err: fmt.Errorf("model timeout")}
		agg := NewAggregator(gen, &stubEstimator{}, zap.NewNop())

		first := agg.Aggregate(context.Background(), []commitment.Commitment{flagged})
		second := agg.Aggregate(context.Background(), []commitment.Commitment{flagged})

		require.NotEmpty(s.T(), first)
		require.Len(s.T(), second, len(first))
		for key, a := range first {
			b := second[key]
			require.NotNil(s.T(), b, "fallback must be deterministic for %s", key)
			assert.True(s.T(), a.TotalQuantity().Equal(b.TotalQuantity()))
		}
	})
}

func (s *AggregatorTestSuite) TestQuantityEstimation() {
	c := structuredCommitment(s.T(), "Herbed Chicken", 2, 3, []commitment.IngredientEntry{
		{Name: "Chicken Breast", Quantity: quantity("0.5"), Unit: "lb"},
		{Name: "Thyme"},
		{Name: "Parsley"},
	})

	s.Run("UnquantifiedEntries_AreBatchedPerDish", func() {
		est := &stubEstimator{result: map[string]outbound.QuantityEstimate{
			"thyme":   {Quantity: decimal.RequireFromString("0.2"), Unit: "oz"},
			"parsley": {Quantity: decimal.RequireFromString("0.4"), Unit: "oz"},
		}}
		agg := NewAggregator(&stubGenerator{}, est, zap.NewNop())

		result := agg.Aggregate(context.Background(), []commitment.Commitment{c})

		assert.Equal(s.T(), 1, est.calls, "one estimation call per dish")
		require.Len(s.T(), result, 3)
		assert.True(s.T(), result["thyme"].TotalQuantity().Equal(decimal.RequireFromString("0.2")))
		assert.Equal(s.T(), "oz", result["thyme"].Unit())
	})

	s.Run("MissingEstimate_GetsFallbackAmount", func() {
		est := &stubEstimator{result: map[string]outbound.QuantityEstimate{
			"thyme": {Quantity: decimal.RequireFromString("0.2"), Unit: "oz"},
		}}
		agg := NewAggregator(&stubGenerator{}, est, zap.NewNop())

		result := agg.Aggregate(context.Background(), []commitment.Commitment{c})
		require.NotNil(s.T(), result["parsley"])
		assert.True(s.T(), result["parsley"].TotalQuantity().GreaterThan(decimal.Zero))
	})

	s.Run("EstimatorFailure_DoesNotAbortAggregation", func() {
		est := &stubEstimator{err: fmt.Errorf("service down")}
		agg := NewAggregator(&stubGenerator{}, est, zap.NewNop())

		result := agg.Aggregate(context.Background(), []commitment.Commitment{c})

		require.Len(s.T(), result, 3)
		assert.True(s.T(), result["chicken breast"].TotalQuantity().Equal(decimal.NewFromInt(1)))
		assert.True(s.T(), result["thyme"].TotalQuantity().GreaterThan(decimal.Zero))
	})
}

func (s *AggregatorTestSuite) TestEdgeCases() {
	s.Run("ZeroDishCommitment_ContributesNothing", func() {
		c, err := commitment.New(
			commitment.KindMealEvent, uuid.New(), day(2025, 3, 2), 2, "Potluck", "", nil,
		)
		require.NoError(s.T(), err)

		agg := NewAggregator(&stubGenerator{}, &stubEstimator{}, zap.NewNop())
		result := agg.Aggregate(context.Background(), []commitment.Commitment{c})
		assert.Empty(s.T(), result)
	})

	s.Run("NamelessEntries_AreSkipped", func() {
		c := structuredCommitment(s.T(), "Dinner", 2, 3, []commitment.IngredientEntry{
			{Name: "", Quantity: quantity("1"), Unit: "lb"},
			{Name: "Rice", Quantity: quantity("0.5"), Unit: "cup"},
		})
		agg := NewAggregator(&stubGenerator{}, &stubEstimator{}, zap.NewNop())
		result := agg.Aggregate(context.Background(), []commitment.Commitment{c})
		assert.Len(s.T(), result, 1)
	})
}

func TestAggregatorTestSuite(t *testing.T) {
	suite.Run(t, new(AggregatorTestSuite))
}
