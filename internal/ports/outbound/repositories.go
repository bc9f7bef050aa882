// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces the application uses to reach storage and caches
package outbound

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/prepline/v1/internal/domain/chef"
	"github.com/prepline/v1/internal/domain/prepplan"
)

// PrepPlanRepository defines persistence for prep plans and their children
type PrepPlanRepository interface {
	// Create persists a new plan row (draft, no children yet)
	Create(ctx context.Context, plan *prepplan.PrepPlan) error

	// SaveGenerated persists the full generation result as one atomic unit:
	// commitment snapshots, items, derived counters, JSON snapshots and the
	// status transition. On error nothing of the result is visible; the plan
	// row itself stays in its prior state.
	SaveGenerated(ctx context.Context, plan *prepplan.PrepPlan) error

	// UpdateStatusNotes persists only status/notes changes (failure notes,
	// completion sweeps)
	UpdateStatusNotes(ctx context.Context, plan *prepplan.PrepPlan) error

	// SavePurchases persists purchase-tracking mutations for the given items
	// along with the plan's status
	SavePurchases(ctx context.Context, plan *prepplan.PrepPlan, itemIDs []uuid.UUID) error

	// FindByID loads a plan with all children; returns nil when absent
	FindByID(ctx context.Context, id uuid.UUID) (*prepplan.PrepPlan, error)

	// FindByChef lists a chef's plans, newest first, without item payloads
	FindByChef(ctx context.Context, chefID uuid.UUID) ([]*prepplan.PrepPlan, error)

	// Delete removes a plan and cascades to its children
	Delete(ctx context.Context, id uuid.UUID) error
}

// ChefRepository resolves chef identity and ownership
type ChefRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*chef.Chef, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// IngredientRecord is one raw ingredient entry from a source recipe.
// Quantity is nil when the source has no structured amount.
type IngredientRecord struct {
	Name     string
	Quantity *decimal.Decimal
	Unit     string
}

// DishRecord is one raw dish from a source record
type DishRecord struct {
	Name        string
	Description string
	Ingredients []IngredientRecord
}

// ClientMealPlanRecord is one scheduled meal from a client's meal plan
type ClientMealPlanRecord struct {
	ID            uuid.UUID
	ClientName    string
	HouseholdSize int
	ServiceDate   time.Time
	Servings      int
	MealName      string
	Dishes        []DishRecord
}

// MealEventRecord is one public meal-share event the chef is hosting.
// PortionsReserved is carried raw: some sources store it free-text and an
// unparseable value degrades to a single serving.
type MealEventRecord struct {
	ID               uuid.UUID
	Title            string
	EventDate        time.Time
	PortionsReserved string
	Dishes           []DishRecord
}

// ServiceOrderRecord is one booked service appointment
type ServiceOrderRecord struct {
	ID           uuid.UUID
	CustomerName string
	ServiceDate  time.Time
	GuestCount   int
	MenuName     string
	Dishes       []DishRecord
}

// CommitmentSourceRepository reads the three commitment sources. All queries
// are bounded to the inclusive window [start, end] and are read-only.
type CommitmentSourceRepository interface {
	ClientMealPlans(ctx context.Context, chefID uuid.UUID, start, end time.Time) ([]ClientMealPlanRecord, error)
	MealEvents(ctx context.Context, chefID uuid.UUID, start, end time.Time) ([]MealEventRecord, error)
	ServiceOrders(ctx context.Context, chefID uuid.UUID, start, end time.Time) ([]ServiceOrderRecord, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
