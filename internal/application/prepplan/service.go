package prepplan

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prepline/v1/internal/domain/commitment"
	"github.com/prepline/v1/internal/domain/prepplan"
	"github.com/prepline/v1/internal/ports/inbound"
	"github.com/prepline/v1/internal/ports/outbound"
	"github.com/prepline/v1/pkg/errors"
)

// Service implements the prep plan use cases
type Service struct {
	planRepo   outbound.PrepPlanRepository
	gatherer   *Gatherer
	aggregator *Aggregator
	shelfLife  *ShelfLifeResolver
	advisor    *Advisor
	validate   *validator.Validate
	logger     *zap.Logger

	// now is the clock used for clamping and status sweeps; tests override it
	now func() time.Time
}

// NewService creates the prep plan service
func NewService(
	planRepo outbound.PrepPlanRepository,
	gatherer *Gatherer,
	aggregator *Aggregator,
	shelfLife *ShelfLifeResolver,
	advisor *Advisor,
	logger *zap.Logger,
) inbound.PrepPlanService {
	return &Service{
		planRepo:   planRepo,
		gatherer:   gatherer,
		aggregator: aggregator,
		shelfLife:  shelfLife,
		advisor:    advisor,
		validate:   validator.New(),
		logger:     logger.Named("prepplan-service"),
		now:        time.Now,
	}
}

// GeneratePrepPlan runs the full pipeline: gather commitments, aggregate
// ingredients, resolve shelf lives, compute purchase timing, fetch batch
// advice, and persist everything atomically. On any failure after the draft
// row exists, the plan is left in draft with a failure note and no children.
func (s *Service) GeneratePrepPlan(ctx context.Context, cmd inbound.GeneratePrepPlanCommand) (*inbound.PrepPlanDTO, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	plan, err := prepplan.NewPrepPlan(cmd.ChefID, cmd.StartDate, cmd.EndDate, cmd.Notes)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	// Identity is resolved before the draft row becomes visible, so an
	// unknown chef never leaves an orphaned plan behind.
	commitments, err := s.gatherer.Gather(ctx, cmd.ChefID, plan.StartDate(), plan.EndDate())
	if err != nil {
		return nil, err
	}

	if err := s.planRepo.Create(ctx, plan); err != nil {
		return nil, errors.NewPersistenceError("create prep plan", err)
	}

	s.logger.Info("Generating prep plan",
		zap.String("plan_id", plan.ID().String()),
		zap.String("chef_id", cmd.ChefID.String()),
		zap.Int("commitments", len(commitments)),
	)

	aggregates := s.aggregator.Aggregate(ctx, commitments)

	keys := prepplan.SortedKeys(aggregates)
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		names = append(names, aggregates[key].Name())
	}
	shelfLives := s.shelfLife.Resolve(ctx, names)

	today := dateOnly(s.now())
	items := make([]*prepplan.Item, 0, len(keys))
	ingredients := make([]*prepplan.AggregatedIngredient, 0, len(keys))
	for _, key := range keys {
		agg := aggregates[key]
		life, ok := shelfLives[key]
		if !ok {
			life = FallbackShelfLife(agg.Name())
		}
		item := prepplan.BuildItem(agg, life, today, plan.StartDate())
		item.ID = uuid.New()
		items = append(items, item)
		ingredients = append(ingredients, agg)
	}
	prepplan.SortItems(items)

	suggestions := s.advisor.Advise(ctx, ingredients, commitments)

	if err := plan.AttachResults(snapshotCommitments(commitments), items, suggestions); err != nil {
		return nil, s.failPlan(ctx, plan, "generation state error: "+err.Error(), err)
	}
	if err := plan.MarkGenerated(); err != nil {
		return nil, s.failPlan(ctx, plan, "generation state error: "+err.Error(), err)
	}

	if err := s.planRepo.SaveGenerated(ctx, plan); err != nil {
		return nil, s.failPlan(ctx, plan, "generation failed: storage error while saving the plan", err)
	}

	s.logger.Info("Prep plan generated",
		zap.String("plan_id", plan.ID().String()),
		zap.Int("items", len(items)),
		zap.Int("total_servings", plan.TotalServings()),
	)
	return planToDTO(plan), nil
}

// failPlan reverts a mid-generation plan to draft with a failure note and
// surfaces the cause as a persistence error.
func (s *Service) failPlan(ctx context.Context, plan *prepplan.PrepPlan, note string, cause error) error {
	s.logger.Error("Prep plan generation failed",
		zap.String("plan_id", plan.ID().String()),
		zap.Error(cause),
	)
	plan.MarkFailed(note)
	if err := s.planRepo.UpdateStatusNotes(ctx, plan); err != nil {
		s.logger.Error("Failed to record failure note",
			zap.String("plan_id", plan.ID().String()),
			zap.Error(err),
		)
	}
	return errors.NewPersistenceError("generate prep plan", cause)
}

// GetPlan loads one plan with its full shopping list
func (s *Service) GetPlan(ctx context.Context, planID uuid.UUID) (*inbound.PrepPlanDTO, error) {
	plan, err := s.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	// Completion sweep: a read after the window has passed settles status.
	before := plan.Status()
	plan.RefreshStatus(s.now())
	if plan.Status() != before {
		if err := s.planRepo.UpdateStatusNotes(ctx, plan); err != nil {
			s.logger.Warn("Status sweep write failed",
				zap.String("plan_id", planID.String()),
				zap.Error(err),
			)
		}
	}
	return planToDTO(plan), nil
}

// ListPlans lists a chef's plans, newest first, without item payloads
func (s *Service) ListPlans(ctx context.Context, chefID uuid.UUID) ([]inbound.PrepPlanSummary, error) {
	plans, err := s.planRepo.FindByChef(ctx, chefID)
	if err != nil {
		return nil, errors.NewPersistenceError("list prep plans", err)
	}

	summaries := make([]inbound.PrepPlanSummary, 0, len(plans))
	for _, plan := range plans {
		summaries = append(summaries, inbound.PrepPlanSummary{
			ID:            plan.ID(),
			Status:        string(plan.Status()),
			StartDate:     plan.StartDate().Format("2006-01-02"),
			EndDate:       plan.EndDate().Format("2006-01-02"),
			TotalMeals:    plan.TotalMeals(),
			TotalServings: plan.TotalServings(),
			CreatedAt:     plan.CreatedAt(),
		})
	}
	return summaries, nil
}

// ShoppingListByDate groups a plan's items by suggested purchase date
func (s *Service) ShoppingListByDate(ctx context.Context, planID uuid.UUID) (map[string][]inbound.ItemView, error) {
	plan, err := s.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]inbound.ItemView)
	for date, items := range plan.ShoppingListByDate() {
		views := make([]inbound.ItemView, 0, len(items))
		for _, item := range items {
			views = append(views, itemToView(item))
		}
		grouped[date] = views
	}
	return grouped, nil
}

// ShoppingListByCategory groups a plan's items by storage type in the fixed
// presentation order. Empty categories are omitted.
func (s *Service) ShoppingListByCategory(ctx context.Context, planID uuid.UUID) ([]inbound.CategoryGroup, error) {
	plan, err := s.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	byStorage := plan.ShoppingListByCategory()
	groups := make([]inbound.CategoryGroup, 0, len(prepplan.StorageDisplayOrder))
	for _, storage := range prepplan.StorageDisplayOrder {
		items, ok := byStorage[storage]
		if !ok {
			continue
		}
		views := make([]inbound.ItemView, 0, len(items))
		for _, item := range items {
			views = append(views, itemToView(item))
		}
		groups = append(groups, inbound.CategoryGroup{
			Storage: string(storage),
			Items:   views,
		})
	}
	return groups, nil
}

// MarkPurchased flags items as purchased and reports unknown ids
func (s *Service) MarkPurchased(ctx context.Context, cmd inbound.MarkPurchasedCommand) (*inbound.MarkPurchasedResult, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	plan, err := s.loadPlan(ctx, cmd.PlanID)
	if err != nil {
		return nil, err
	}

	unknown := plan.MarkItemsPurchased(cmd.ItemIDs, cmd.PurchasedDate, cmd.Quantities)
	plan.RefreshStatus(s.now())

	updated := make([]uuid.UUID, 0, len(cmd.ItemIDs))
	unknownSet := make(map[uuid.UUID]struct{}, len(unknown))
	for _, id := range unknown {
		unknownSet[id] = struct{}{}
	}
	for _, id := range cmd.ItemIDs {
		if _, ok := unknownSet[id]; !ok {
			updated = append(updated, id)
		}
	}

	if len(updated) > 0 {
		if err := s.planRepo.SavePurchases(ctx, plan, updated); err != nil {
			return nil, errors.NewPersistenceError("save purchases", err)
		}
	}

	s.logger.Info("Items marked purchased",
		zap.String("plan_id", cmd.PlanID.String()),
		zap.Int("updated", len(updated)),
		zap.Int("unknown", len(unknown)),
	)
	return &inbound.MarkPurchasedResult{
		Updated:    len(updated),
		UnknownIDs: unknown,
		PlanStatus: string(plan.Status()),
	}, nil
}

func (s *Service) loadPlan(ctx context.Context, planID uuid.UUID) (*prepplan.PrepPlan, error) {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, errors.NewPersistenceError("load prep plan", err)
	}
	if plan == nil {
		return nil, errors.NewNotFoundError("prep plan", planID.String())
	}
	return plan, nil
}

func snapshotCommitments(commitments []commitment.Commitment) []prepplan.CommitmentSnapshot {
	snapshots := make([]prepplan.CommitmentSnapshot, 0, len(commitments))
	for _, c := range commitments {
		snapshots = append(snapshots, prepplan.CommitmentSnapshot{
			ID:           uuid.New(),
			Kind:         string(c.Kind()),
			SourceID:     c.SourceID(),
			ServiceDate:  c.ServiceDate(),
			Servings:     c.Servings(),
			MealName:     c.MealName(),
			CustomerName: c.CustomerName(),
		})
	}
	return snapshots
}

func planToDTO(plan *prepplan.PrepPlan) *inbound.PrepPlanDTO {
	commitments := make([]inbound.CommitmentView, 0, len(plan.Commitments()))
	for _, c := range plan.Commitments() {
		commitments = append(commitments, inbound.CommitmentView{
			Kind:         c.Kind,
			ServiceDate:  c.ServiceDate.Format("2006-01-02"),
			Servings:     c.Servings,
			MealName:     c.MealName,
			CustomerName: c.CustomerName,
		})
	}

	sorted := make([]*prepplan.Item, len(plan.Items()))
	copy(sorted, plan.Items())
	prepplan.SortItems(sorted)
	items := make([]inbound.ItemView, 0, len(sorted))
	for _, item := range sorted {
		items = append(items, itemToView(item))
	}

	return &inbound.PrepPlanDTO{
		ID:                plan.ID(),
		ChefID:            plan.ChefID(),
		Status:            string(plan.Status()),
		StartDate:         plan.StartDate().Format("2006-01-02"),
		EndDate:           plan.EndDate().Format("2006-01-02"),
		Notes:             plan.Notes(),
		TotalMeals:        plan.TotalMeals(),
		TotalServings:     plan.TotalServings(),
		UniqueIngredients: plan.UniqueIngredients(),
		Commitments:       commitments,
		Items:             items,
		Suggestions:       plan.Suggestions(),
		CreatedAt:         plan.CreatedAt(),
	}
}

func itemToView(item *prepplan.Item) inbound.ItemView {
	return inbound.ItemView{
		ID:                    item.ID,
		IngredientName:        item.IngredientName,
		TotalQuantity:         item.TotalQuantity,
		Unit:                  item.Unit,
		ShelfLifeDays:         item.ShelfLifeDays,
		StorageType:           string(item.StorageType),
		EarliestUseDate:       item.EarliestUseDate.Format("2006-01-02"),
		LatestUseDate:         item.LatestUseDate.Format("2006-01-02"),
		SuggestedPurchaseDate: item.SuggestedPurchaseDate.Format("2006-01-02"),
		TimingStatus:          string(item.TimingStatus),
		TimingNotes:           item.TimingNotes,
		MealsUsing:            item.MealsUsing,
		IsPurchased:           item.IsPurchased,
		PurchasedDate:         item.PurchasedDate,
		PurchasedQuantity:     item.PurchasedQuantity,
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
