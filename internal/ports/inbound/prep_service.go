// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the use cases the engine exposes to the surrounding system
package inbound

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/prepline/v1/internal/domain/prepplan"
)

// PrepPlanService exposes prep plan generation and shopping list reads
type PrepPlanService interface {
	// GeneratePrepPlan runs the full pipeline for the chef's window and
	// persists the result atomically. The caller receives either a generated
	// plan or a draft plan annotated with a failure reason, never a partially
	// populated generated plan.
	GeneratePrepPlan(ctx context.Context, cmd GeneratePrepPlanCommand) (*PrepPlanDTO, error)

	// GetPlan loads one plan with its full shopping list
	GetPlan(ctx context.Context, planID uuid.UUID) (*PrepPlanDTO, error)

	// ListPlans lists a chef's plans, newest first, without item payloads
	ListPlans(ctx context.Context, chefID uuid.UUID) ([]PrepPlanSummary, error)

	// ShoppingListByDate groups a plan's items by suggested purchase date
	// (ISO date keys)
	ShoppingListByDate(ctx context.Context, planID uuid.UUID) (map[string][]ItemView, error)

	// ShoppingListByCategory groups a plan's items by storage type, ordered
	// [refrigerated, frozen, counter, pantry]
	ShoppingListByCategory(ctx context.Context, planID uuid.UUID) ([]CategoryGroup, error)

	// MarkPurchased flags items as purchased; unknown ids are reported in the
	// result, not silently dropped
	MarkPurchased(ctx context.Context, cmd MarkPurchasedCommand) (*MarkPurchasedResult, error)
}

// GeneratePrepPlanCommand is the request to generate a plan
type GeneratePrepPlanCommand struct {
	ChefID    uuid.UUID `validate:"required"`
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required"`
	Notes     string    `validate:"max=2000"`
}

// MarkPurchasedCommand flags shopping list items as bought
type MarkPurchasedCommand struct {
	PlanID        uuid.UUID       `validate:"required"`
	ItemIDs       []uuid.UUID     `validate:"required,min=1"`
	PurchasedDate *time.Time
	Quantities    map[uuid.UUID]decimal.Decimal
}

// MarkPurchasedResult reports the outcome of a purchase mutation
type MarkPurchasedResult struct {
	Updated    int         `json:"updated"`
	UnknownIDs []uuid.UUID `json:"unknown_ids,omitempty"`
	PlanStatus string      `json:"plan_status"`
}

// ItemView is the read model for one shopping list line
type ItemView struct {
	ID                    uuid.UUID            `json:"id"`
	IngredientName        string               `json:"ingredient_name"`
	TotalQuantity         decimal.Decimal      `json:"total_quantity"`
	Unit                  string               `json:"unit"`
	ShelfLifeDays         int                  `json:"shelf_life_days"`
	StorageType           string               `json:"storage_type"`
	EarliestUseDate       string               `json:"earliest_use_date"`
	LatestUseDate         string               `json:"latest_use_date"`
	SuggestedPurchaseDate string               `json:"suggested_purchase_date"`
	TimingStatus          string               `json:"timing_status"`
	TimingNotes           string               `json:"timing_notes"`
	MealsUsing            []prepplan.MealUsage `json:"meals_using"`
	IsPurchased           bool                 `json:"is_purchased"`
	PurchasedDate         *time.Time           `json:"purchased_date,omitempty"`
	PurchasedQuantity     *decimal.Decimal     `json:"purchased_quantity,omitempty"`
}

// CategoryGroup is one storage category's slice of the shopping list
type CategoryGroup struct {
	Storage string     `json:"storage_type"`
	Items   []ItemView `json:"items"`
}

// CommitmentView is the read model for one commitment snapshot
type CommitmentView struct {
	Kind         string `json:"kind"`
	ServiceDate  string `json:"service_date"`
	Servings     int    `json:"servings"`
	MealName     string `json:"meal_name"`
	CustomerName string `json:"customer_name,omitempty"`
}

// PrepPlanDTO is the full read model for one plan
type PrepPlanDTO struct {
	ID                uuid.UUID                 `json:"id"`
	ChefID            uuid.UUID                 `json:"chef_id"`
	Status            string                    `json:"status"`
	StartDate         string                    `json:"start_date"`
	EndDate           string                    `json:"end_date"`
	Notes             string                    `json:"notes,omitempty"`
	TotalMeals        int                       `json:"total_meals"`
	TotalServings     int                       `json:"total_servings"`
	UniqueIngredients int                       `json:"unique_ingredients"`
	Commitments       []CommitmentView          `json:"commitments"`
	Items             []ItemView                `json:"shopping_list"`
	Suggestions       prepplan.BatchSuggestions `json:"batch_suggestions"`
	CreatedAt         time.Time                 `json:"created_at"`
}

// PrepPlanSummary is the list read model
type PrepPlanSummary struct {
	ID            uuid.UUID `json:"id"`
	Status        string    `json:"status"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	TotalMeals    int       `json:"total_meals"`
	TotalServings int       `json:"total_servings"`
	CreatedAt     time.Time `json:"created_at"`
}
