package prepplan

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is one shopping list line: an aggregated ingredient with its resolved
// shelf life and computed purchase timing. Items are owned exclusively by
// their plan; NormalizedName is unique within a plan.
type Item struct {
	ID                    uuid.UUID
	IngredientName        string
	NormalizedName        string
	TotalQuantity         decimal.Decimal
	Unit                  string
	ShelfLifeDays         int
	StorageType           StorageType
	EarliestUseDate       time.Time
	LatestUseDate         time.Time
	SuggestedPurchaseDate time.Time
	TimingStatus          TimingStatus
	TimingNotes           string
	MealsUsing            []MealUsage

	// Purchase tracking, mutated by the chef after generation
	IsPurchased       bool
	PurchasedDate     *time.Time
	PurchasedQuantity *decimal.Decimal
}

// MarkPurchased records that the chef bought this item
func (i *Item) MarkPurchased(date *time.Time, quantity *decimal.Decimal) {
	i.IsPurchased = true
	i.PurchasedDate = date
	i.PurchasedQuantity = quantity
}

// CommitmentSnapshot is the denormalized record of one commitment a plan was
// generated from, kept for fast reads without re-joining source tables.
type CommitmentSnapshot struct {
	ID           uuid.UUID
	Kind         string
	SourceID     uuid.UUID
	ServiceDate  time.Time
	Servings     int
	MealName     string
	CustomerName string
}
