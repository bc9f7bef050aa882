// Package prepplan provides the application layer for prep plan generation.
// It implements the use cases defined in the inbound ports by orchestrating
// the domain model, the persistence ports and the external collaborators.
package prepplan

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prepline/v1/internal/domain/commitment"
	"github.com/prepline/v1/internal/ports/outbound"
	"github.com/prepline/v1/pkg/errors"
)

// Gatherer collects a chef's commitments from the three source tables and
// normalizes them into the single commitment representation the rest of the
// pipeline consumes.
type Gatherer struct {
	chefRepo   outbound.ChefRepository
	sourceRepo outbound.CommitmentSourceRepository
	logger     *zap.Logger
}

// NewGatherer creates a commitment gatherer
func NewGatherer(
	chefRepo outbound.ChefRepository,
	sourceRepo outbound.CommitmentSourceRepository,
	logger *zap.Logger,
) *Gatherer {
	return &Gatherer{
		chefRepo:   chefRepo,
		sourceRepo: sourceRepo,
		logger:     logger.Named("gatherer"),
	}
}

// Gather returns every commitment of the chef whose fulfillment date falls
// inside the inclusive window [start, end], ordered by service date ascending
// with ties broken by source-insertion order. Read-only.
func (g *Gatherer) Gather(ctx context.Context, chefID uuid.UUID, start, end time.Time) ([]commitment.Commitment, error) {
	exists, err := g.chefRepo.Exists(ctx, chefID)
	if err != nil {
		return nil, errors.NewPersistenceError("chef lookup", err)
	}
	if !exists {
		return nil, errors.NewNotFoundError("chef", chefID.String())
	}

	var commitments []commitment.Commitment

	mealPlans, err := g.sourceRepo.ClientMealPlans(ctx, chefID, start, end)
	if err != nil {
		return nil, errors.NewPersistenceError("client meal plan query", err)
	}
	for _, rec := range mealPlans {
		c, err := commitment.New(
			commitment.KindClientMealPlan,
			rec.ID,
			rec.ServiceDate,
			effectiveServings(rec.Servings, rec.HouseholdSize),
			rec.MealName,
			rec.ClientName,
			buildDishes(rec.MealName, "", rec.Dishes),
		)
		if err != nil {
			g.logger.Warn("Skipping malformed client meal plan",
				zap.String("source_id", rec.ID.String()),
				zap.Error(err),
			)
			continue
		}
		commitments = append(commitments, c)
	}

	events, err := g.sourceRepo.MealEvents(ctx, chefID, start, end)
	if err != nil {
		return nil, errors.NewPersistenceError("meal event query", err)
	}
	for _, rec := range events {
		c, err := commitment.New(
			commitment.KindMealEvent,
			rec.ID,
			rec.EventDate,
			parsePortions(rec.PortionsReserved),
			rec.Title,
			"",
			buildDishes(rec.Title, "", rec.Dishes),
		)
		if err != nil {
			g.logger.Warn("Skipping malformed meal event",
				zap.String("source_id", rec.ID.String()),
				zap.Error(err),
			)
			continue
		}
		commitments = append(commitments, c)
	}

	orders, err := g.sourceRepo.ServiceOrders(ctx, chefID, start, end)
	if err != nil {
		return nil, errors.NewPersistenceError("service order query", err)
	}
	for _, rec := range orders {
		c, err := commitment.New(
			commitment.KindServiceOrder,
			rec.ID,
			rec.ServiceDate,
			rec.GuestCount,
			rec.MenuName,
			rec.CustomerName,
			buildDishes(rec.MenuName, "", rec.Dishes),
		)
		if err != nil {
			g.logger.Warn("Skipping malformed service order",
				zap.String("source_id", rec.ID.String()),
				zap.Error(err),
			)
			continue
		}
		commitments = append(commitments, c)
	}

	// Window filtering is also applied by the source queries; re-checking
	// here keeps the contract independent of repository behavior.
	filtered := commitments[:0]
	for _, c := range commitments {
		if c.Overlaps(start, end) {
			filtered = append(filtered, c)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].ServiceDate().Before(filtered[j].ServiceDate())
	})

	g.logger.Debug("Gathered commitments",
		zap.String("chef_id", chefID.String()),
		zap.Int("count", len(filtered)),
	)
	return filtered, nil
}

// effectiveServings resolves the serving count for a client meal plan entry:
// the maximum of the explicit count and the client's household size, never
// below 1.
func effectiveServings(explicit, householdSize int) int {
	servings := explicit
	if householdSize > servings {
		servings = householdSize
	}
	if servings < 1 {
		servings = 1
	}
	return servings
}

// parsePortions parses a free-text reserved-portion count. Unparseable values
// degrade to a single serving rather than failing the gather.
func parsePortions(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// buildDishes converts raw dish records into domain dishes. A meal with no
// structured ingredient data at all gets a single synthetic dish flagged for
// ingredient generation; a present dish with an empty ingredient list is
// flagged the same way.
func buildDishes(mealName, mealDescription string, records []outbound.DishRecord) []commitment.Dish {
	if len(records) == 0 {
		return []commitment.Dish{{
			Name:                      mealName,
			Description:               mealDescription,
			NeedsIngredientGeneration: true,
		}}
	}

	dishes := make([]commitment.Dish, 0, len(records))
	for _, rec := range records {
		dish := commitment.Dish{
			Name:        rec.Name,
			Description: rec.Description,
		}
		if len(rec.Ingredients) == 0 {
			dish.NeedsIngredientGeneration = true
		} else {
			dish.Ingredients = make([]commitment.IngredientEntry, 0, len(rec.Ingredients))
			for _, ing := range rec.Ingredients {
				dish.Ingredients = append(dish.Ingredients, commitment.IngredientEntry{
					Name:     ing.Name,
					Quantity: ing.Quantity,
					Unit:     ing.Unit,
				})
			}
		}
		dishes = append(dishes, dish)
	}
	return dishes
}
