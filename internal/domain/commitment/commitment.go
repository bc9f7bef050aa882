// Package commitment contains the domain model for fulfillment obligations.
// A commitment is anything a chef has promised to cook inside a planning
// window: a client meal plan entry, a public meal-share event, or a booked
// service appointment. The three sources collapse into one representation so
// the aggregation and timing stages never branch on source kind.
package commitment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind identifies the source a commitment came from
type Kind string

const (
	KindClientMealPlan Kind = "client_meal_plan"
	KindMealEvent      Kind = "meal_event"
	KindServiceOrder   Kind = "service_order"
)

// IngredientEntry is one ingredient requirement inside a dish.
// Quantity and Unit are nil/empty when the source has no structured recipe;
// those entries are resolved later by the quantity-estimation collaborator.
type IngredientEntry struct {
	Name     string
	Quantity *decimal.Decimal
	Unit     string
}

// HasQuantity reports whether the entry carries an explicit per-serving amount
func (e IngredientEntry) HasQuantity() bool {
	return e.Quantity != nil
}

// Dish is one dish a commitment requires.
// NeedsIngredientGeneration marks a synthetic dish created for a meal with no
// structured ingredient data at all, so the aggregation stage calls the
// generation collaborator instead of treating it as zero ingredients.
type Dish struct {
	Name                      string
	Description               string
	Ingredients               []IngredientEntry
	NeedsIngredientGeneration bool
}

// Commitment represents one scheduled obligation to serve a meal or service
type Commitment struct {
	kind         Kind
	sourceID     uuid.UUID
	serviceDate  time.Time
	servings     int
	mealName     string
	customerName string
	dishes       []Dish
}

// New creates a Commitment. A non-positive servings count degrades to the
// default of 1 rather than failing; an unparseable count upstream maps to 0
// and lands here.
func New(kind Kind, sourceID uuid.UUID, serviceDate time.Time, servings int, mealName, customerName string, dishes []Dish) (Commitment, error) {
	if mealName == "" {
		return Commitment{}, ErrMissingMealName
	}
	if servings < 1 {
		servings = 1
	}
	return Commitment{
		kind:         kind,
		sourceID:     sourceID,
		serviceDate:  truncateToDay(serviceDate),
		servings:     servings,
		mealName:     mealName,
		customerName: customerName,
		dishes:       dishes,
	}, nil
}

// Kind returns the source kind
func (c Commitment) Kind() Kind { return c.kind }

// SourceID returns the variant-specific source reference id
func (c Commitment) SourceID() uuid.UUID { return c.sourceID }

// ServiceDate returns the calendar date the commitment is fulfilled on
func (c Commitment) ServiceDate() time.Time { return c.serviceDate }

// Servings returns the effective serving count
func (c Commitment) Servings() int { return c.servings }

// MealName returns the display name of the meal
func (c Commitment) MealName() string { return c.mealName }

// CustomerName returns the recipient's name, if known
func (c Commitment) CustomerName() string { return c.customerName }

// Dishes returns the dishes the commitment requires
func (c Commitment) Dishes() []Dish { return c.dishes }

// MealLabel returns the display label used in shopping list usage entries
func (c Commitment) MealLabel() string {
	if c.customerName != "" {
		return c.mealName + " (" + c.customerName + ")"
	}
	return c.mealName
}

// Overlaps reports whether the commitment's fulfillment date falls inside
// the inclusive window [start, end].
func (c Commitment) Overlaps(start, end time.Time) bool {
	d := c.serviceDate
	return !d.Before(truncateToDay(start)) && !d.After(truncateToDay(end))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
