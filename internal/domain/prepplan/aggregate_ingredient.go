package prepplan

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NormalizeIngredientKey produces the aggregation key for an ingredient name.
// All casing and whitespace variants of one name collapse to a single
// aggregate under this key.
func NormalizeIngredientKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// MealUsage records one meal's draw on an aggregated ingredient
type MealUsage struct {
	Meal     string          `json:"meal"`
	Date     time.Time       `json:"date"`
	Quantity decimal.Decimal `json:"quantity"`
}

// AggregatedIngredient is the merged requirement for one ingredient across all
// commitments in a planning window. It is a builder: the total only ever
// increases via Add, and the usage span is maintained as a running min/max.
type AggregatedIngredient struct {
	displayName string
	unit        string
	total       decimal.Decimal
	mealsUsing  []MealUsage
	earliestUse time.Time
	latestUse   time.Time
}

// NewAggregatedIngredient starts an aggregate for an ingredient. The display
// name and unit are taken from the first occurrence and never change; later
// occurrences with a different unit still sum numerically (unit conversion is
// an explicit non-goal, see the unit handling note in DESIGN.md).
func NewAggregatedIngredient(displayName, unit string) *AggregatedIngredient {
	return &AggregatedIngredient{
		displayName: strings.TrimSpace(displayName),
		unit:        unit,
		total:       decimal.Zero,
	}
}

// Add accumulates one meal's requirement into the aggregate
func (a *AggregatedIngredient) Add(quantity decimal.Decimal, mealLabel string, date time.Time) {
	a.total = a.total.Add(quantity)
	a.mealsUsing = append(a.mealsUsing, MealUsage{
		Meal:     mealLabel,
		Date:     date,
		Quantity: quantity,
	})
	if a.earliestUse.IsZero() || date.Before(a.earliestUse) {
		a.earliestUse = date
	}
	if a.latestUse.IsZero() || date.After(a.latestUse) {
		a.latestUse = date
	}
}

// Name returns the display-cased ingredient name from the first occurrence
func (a *AggregatedIngredient) Name() string { return a.displayName }

// Unit returns the unit from the first occurrence
func (a *AggregatedIngredient) Unit() string { return a.unit }

// TotalQuantity returns the exact accumulated quantity
func (a *AggregatedIngredient) TotalQuantity() decimal.Decimal { return a.total }

// MealsUsing returns the ordered list of meal usages
func (a *AggregatedIngredient) MealsUsing() []MealUsage { return a.mealsUsing }

// EarliestUse returns the first date the ingredient is needed
func (a *AggregatedIngredient) EarliestUse() time.Time { return a.earliestUse }

// LatestUse returns the last date the ingredient is needed
func (a *AggregatedIngredient) LatestUse() time.Time { return a.latestUse }

// UseSpanDays returns the whole-day span between first and last use
func (a *AggregatedIngredient) UseSpanDays() int {
	if a.earliestUse.IsZero() || a.latestUse.IsZero() {
		return 0
	}
	return int(a.latestUse.Sub(a.earliestUse).Hours() / 24)
}

// SortedKeys returns the keys of an aggregation map in deterministic order.
// External lookups may complete in any order; downstream stages iterate via
// this so completion order never affects the result.
func SortedKeys(aggregates map[string]*AggregatedIngredient) []string {
	keys := make([]string, 0, len(aggregates))
	for k := range aggregates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
