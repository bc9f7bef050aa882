package prepplan

import (
	"sort"
	"time"
)

// Purchase timing calculation. Pure functions of their numeric inputs: no
// clock access beyond the explicit "today" argument, no randomness, no side
// effects. Exported so callers can run previews before committing a plan.

// PurchaseBufferDays is subtracted from shelf life when back-dating a
// purchase, so an ingredient bought on the suggested date still has one day
// of margin after its last planned use.
const PurchaseBufferDays = 1

// ComputePurchaseDate suggests when to buy an ingredient first needed on
// earliestUse given its shelf life. The raw suggestion backs off from the
// first use date by the shelf life minus the buffer, then clamps to never fall
// before today or the plan's start date.
func ComputePurchaseDate(earliestUse time.Time, shelfLifeDays int, today, planStart time.Time) time.Time {
	suggested := earliestUse.AddDate(0, 0, -(shelfLifeDays - PurchaseBufferDays))
	if suggested.Before(today) {
		suggested = today
	}
	if suggested.Before(planStart) {
		suggested = planStart
	}
	return suggested
}

// ClassifyTiming classifies the purchase-timing risk for an ingredient whose
// usage spans useSpanDays and whose shelf life is shelfLifeDays. Rules are
// evaluated in order; the first match wins.
func ClassifyTiming(shelfLifeDays, useSpanDays int) (TimingStatus, string) {
	switch {
	case shelfLifeDays >= useSpanDays+2:
		return TimingOptimal, "Shelf life comfortably covers the usage span."
	case shelfLifeDays >= useSpanDays:
		return TimingTight, "Shelf life just covers the usage span; buy close to the first use date."
	case shelfLifeDays >= useSpanDays/2:
		return TimingProblematic, "Shelf life doesn't cover the full span; consider splitting the purchase or using frozen stock."
	default:
		return TimingImpossible, "Shelf life is far shorter than the usage span; must purchase multiple times or freeze."
	}
}

// BuildItem computes an unsaved prep plan item for one aggregated ingredient
func BuildItem(agg *AggregatedIngredient, life ShelfLife, today, planStart time.Time) *Item {
	span := agg.UseSpanDays()
	status, notes := ClassifyTiming(life.Days, span)
	if life.Notes != "" {
		notes = notes + " " + life.Notes
	}

	return &Item{
		IngredientName:        agg.Name(),
		NormalizedName:        NormalizeIngredientKey(agg.Name()),
		TotalQuantity:         agg.TotalQuantity(),
		Unit:                  agg.Unit(),
		ShelfLifeDays:         life.Days,
		StorageType:           life.Storage,
		EarliestUseDate:       agg.EarliestUse(),
		LatestUseDate:         agg.LatestUse(),
		SuggestedPurchaseDate: ComputePurchaseDate(agg.EarliestUse(), life.Days, today, planStart),
		TimingStatus:          status,
		TimingNotes:           notes,
		MealsUsing:            agg.MealsUsing(),
	}
}

// SortItems orders a batch of items ascending by suggested purchase date,
// ties broken by ingredient name.
func SortItems(items []*Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].SuggestedPurchaseDate.Equal(items[j].SuggestedPurchaseDate) {
			return items[i].SuggestedPurchaseDate.Before(items[j].SuggestedPurchaseDate)
		}
		return items[i].IngredientName < items[j].IngredientName
	})
}
