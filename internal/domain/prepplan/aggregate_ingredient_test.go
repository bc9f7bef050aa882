package prepplan

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// AggregatedIngredientTestSuite covers the aggregation builder invariants
type AggregatedIngredientTestSuite struct {
	suite.Suite
}

func (s *AggregatedIngredientTestSuite) TestNormalizeIngredientKey() {
	assert.Equal(s.T(), "chicken breast", NormalizeIngredientKey("  Chicken Breast "))
	assert.Equal(s.T(), "chicken breast", NormalizeIngredientKey("CHICKEN BREAST"))
	assert.Equal(s.T(), "", NormalizeIngredientKey("   "))
}

func (s *AggregatedIngredientTestSuite) TestTotalIsMonotonic() {
	agg := NewAggregatedIngredient("Olive Oil", "tbsp")

	previous := decimal.Zero
	quantities := []string{"0.5", "1.25", "0.1", "3", "0.0001"}
	for i, q := range quantities {
		agg.Add(decimal.RequireFromString(q), "Meal", date(2025, 3, i+1))
		assert.True(s.T(), agg.TotalQuantity().GreaterThanOrEqual(previous),
			"total must never decrease")
		previous = agg.TotalQuantity()
	}

	// Exact decimal sum, no float drift
	assert.True(s.T(), agg.TotalQuantity().Equal(decimal.RequireFromString("4.8501")))
	assert.Len(s.T(), agg.MealsUsing(), len(quantities))
}

func (s *AggregatedIngredientTestSuite) TestFirstOccurrenceWins() {
	agg := NewAggregatedIngredient("Chicken Breast", "lb")
	agg.Add(decimal.NewFromInt(2), "Dinner", date(2025, 3, 1))

	// A later occurrence with different casing and unit still sums numerically
	agg.Add(decimal.NewFromInt(1), "Lunch", date(2025, 3, 2))

	assert.Equal(s.T(), "Chicken Breast", agg.Name())
	assert.Equal(s.T(), "lb", agg.Unit())
	assert.True(s.T(), agg.TotalQuantity().Equal(decimal.NewFromInt(3)))
}

func (s *AggregatedIngredientTestSuite) TestUseSpanTracking() {
	agg := NewAggregatedIngredient("Rice", "cup")

	agg.Add(decimal.NewFromInt(1), "Meal A", date(2025, 3, 10))
	assert.Equal(s.T(), 0, agg.UseSpanDays())

	agg.Add(decimal.NewFromInt(1), "Meal B", date(2025, 3, 4))
	agg.Add(decimal.NewFromInt(1), "Meal C", date(2025, 3, 24))

	assert.Equal(s.T(), date(2025, 3, 4), agg.EarliestUse())
	assert.Equal(s.T(), date(2025, 3, 24), agg.LatestUse())
	assert.Equal(s.T(), 20, agg.UseSpanDays())
}

func (s *AggregatedIngredientTestSuite) TestSortedKeysIsDeterministic() {
	aggregates := map[string]*AggregatedIngredient{
		"zucchini": NewAggregatedIngredient("Zucchini", ""),
		"apple":    NewAggregatedIngredient("Apple", ""),
		"milk":     NewAggregatedIngredient("Milk", ""),
	}

	assert.Equal(s.T(), []string{"apple", "milk", "zucchini"}, SortedKeys(aggregates))
	assert.Equal(s.T(), SortedKeys(aggregates), SortedKeys(aggregates))
}

func TestAggregatedIngredientTestSuite(t *testing.T) {
	suite.Run(t, new(AggregatedIngredientTestSuite))
}
