package gorm

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/prepline/v1/internal/domain/prepplan"
	"github.com/prepline/v1/internal/ports/outbound"
)

// Mappers between domain aggregates and GORM models. Domain objects are
// rehydrated through their package constructors so invariants stay in one
// place.

// itemSnapshot is the embedded JSON shape for one shopping list line,
// cached on the plan row for reads that skip the item table.
type itemSnapshot struct {
	IngredientName        string          `json:"ingredient_name"`
	TotalQuantity         decimal.Decimal `json:"total_quantity"`
	Unit                  string          `json:"unit"`
	StorageType           string          `json:"storage_type"`
	SuggestedPurchaseDate string          `json:"suggested_purchase_date"`
	TimingStatus          string          `json:"timing_status"`
}

// PlanToModel converts a domain plan to its GORM model, children included
func PlanToModel(plan *prepplan.PrepPlan) *PrepPlanModel {
	model := &PrepPlanModel{
		ID:                plan.ID(),
		ChefID:            plan.ChefID(),
		Status:            string(plan.Status()),
		StartDate:         plan.StartDate(),
		EndDate:           plan.EndDate(),
		Notes:             plan.Notes(),
		TotalMeals:        plan.TotalMeals(),
		TotalServings:     plan.TotalServings(),
		UniqueIngredients: plan.UniqueIngredients(),
		CreatedAt:         plan.CreatedAt(),
		UpdatedAt:         plan.UpdatedAt(),
	}

	for _, c := range plan.Commitments() {
		model.Commitments = append(model.Commitments, PrepPlanCommitmentModel{
			ID:           c.ID,
			PrepPlanID:   plan.ID(),
			Kind:         c.Kind,
			SourceID:     c.SourceID,
			ServiceDate:  c.ServiceDate,
			Servings:     c.Servings,
			MealName:     c.MealName,
			CustomerName: c.CustomerName,
		})
	}

	snapshots := make([]itemSnapshot, 0, len(plan.Items()))
	for _, item := range plan.Items() {
		model.Items = append(model.Items, *ItemToModel(plan.ID(), item))
		snapshots = append(snapshots, itemSnapshot{
			IngredientName:        item.IngredientName,
			TotalQuantity:         item.TotalQuantity,
			Unit:                  item.Unit,
			StorageType:           string(item.StorageType),
			SuggestedPurchaseDate: item.SuggestedPurchaseDate.Format("2006-01-02"),
			TimingStatus:          string(item.TimingStatus),
		})
	}

	if data, err := json.Marshal(snapshots); err == nil {
		model.ShoppingList = RawJSON(data)
	}
	if data, err := json.Marshal(plan.Suggestions()); err == nil {
		model.BatchSuggestions = RawJSON(data)
	}
	return model
}

// ItemToModel converts one domain item to its GORM model
func ItemToModel(planID uuid.UUID, item *prepplan.Item) *PrepPlanItemModel {
	return &PrepPlanItemModel{
		ID:                    item.ID,
		PrepPlanID:            planID,
		IngredientName:        item.IngredientName,
		NormalizedName:        item.NormalizedName,
		TotalQuantity:         item.TotalQuantity,
		Unit:                  item.Unit,
		ShelfLifeDays:         item.ShelfLifeDays,
		StorageType:           string(item.StorageType),
		EarliestUseDate:       item.EarliestUseDate,
		LatestUseDate:         item.LatestUseDate,
		SuggestedPurchaseDate: item.SuggestedPurchaseDate,
		TimingStatus:          string(item.TimingStatus),
		TimingNotes:           item.TimingNotes,
		MealsUsing:            MealUsageList(item.MealsUsing),
		IsPurchased:           item.IsPurchased,
		PurchasedDate:         item.PurchasedDate,
		PurchasedQuantity:     item.PurchasedQuantity,
	}
}

// ModelToPlan reconstructs a domain plan from its model
func ModelToPlan(model *PrepPlanModel) *prepplan.PrepPlan {
	commitments := make([]prepplan.CommitmentSnapshot, 0, len(model.Commitments))
	for _, c := range model.Commitments {
		commitments = append(commitments, prepplan.CommitmentSnapshot{
			ID:           c.ID,
			Kind:         c.Kind,
			SourceID:     c.SourceID,
			ServiceDate:  c.ServiceDate,
			Servings:     c.Servings,
			MealName:     c.MealName,
			CustomerName: c.CustomerName,
		})
	}

	items := make([]*prepplan.Item, 0, len(model.Items))
	for i := range model.Items {
		items = append(items, ModelToItem(&model.Items[i]))
	}

	var suggestions prepplan.BatchSuggestions
	if len(model.BatchSuggestions) > 0 {
		_ = json.Unmarshal(model.BatchSuggestions, &suggestions)
	}

	return prepplan.Rehydrate(
		model.ID, model.ChefID,
		prepplan.PlanStatus(model.Status),
		model.StartDate, model.EndDate,
		model.Notes,
		model.TotalMeals, model.TotalServings, model.UniqueIngredients,
		commitments,
		items,
		suggestions,
		model.CreatedAt, model.UpdatedAt,
	)
}

// ModelToItem reconstructs one domain item from its model
func ModelToItem(model *PrepPlanItemModel) *prepplan.Item {
	return &prepplan.Item{
		ID:                    model.ID,
		IngredientName:        model.IngredientName,
		NormalizedName:        model.NormalizedName,
		TotalQuantity:         model.TotalQuantity,
		Unit:                  model.Unit,
		ShelfLifeDays:         model.ShelfLifeDays,
		StorageType:           prepplan.StorageType(model.StorageType),
		EarliestUseDate:       model.EarliestUseDate,
		LatestUseDate:         model.LatestUseDate,
		SuggestedPurchaseDate: model.SuggestedPurchaseDate,
		TimingStatus:          prepplan.TimingStatus(model.TimingStatus),
		TimingNotes:           model.TimingNotes,
		MealsUsing:            []prepplan.MealUsage(model.MealsUsing),
		IsPurchased:           model.IsPurchased,
		PurchasedDate:         model.PurchasedDate,
		PurchasedQuantity:     model.PurchasedQuantity,
	}
}

// dishDocsToRecords converts a JSON dish column into source records
func dishDocsToRecords(docs DishList) []outbound.DishRecord {
	if len(docs) == 0 {
		return nil
	}
	records := make([]outbound.DishRecord, 0, len(docs))
	for _, doc := range docs {
		rec := outbound.DishRecord{
			Name:        doc.Name,
			Description: doc.Description,
		}
		for _, ing := range doc.Ingredients {
			rec.Ingredients = append(rec.Ingredients, outbound.IngredientRecord{
				Name:     ing.Name,
				Quantity: ing.Quantity,
				Unit:     ing.Unit,
			})
		}
		records = append(records, rec)
	}
	return records
}

// endOfDay widens an inclusive date bound so timestamped rows on the end date
// still match.
func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// startOfDay truncates an inclusive start bound to midnight
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
