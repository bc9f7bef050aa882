package prepplan

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prepline/v1/internal/domain/chef"
	"github.com/prepline/v1/internal/domain/commitment"
	"github.com/prepline/v1/internal/domain/prepplan"
	"github.com/prepline/v1/internal/ports/outbound"
)

// Deterministic stubs for the outbound ports, shared by the tests in this
// package.

type stubChefRepo struct {
	exists bool
	err    error
}

func (s *stubChefRepo) FindByID(_ context.Context, id uuid.UUID) (*chef.Chef, error) {
	if !s.exists {
		return nil, nil
	}
	return chef.Rehydrate(id, "Test Chef", "chef@example.com", time.Now()), s.err
}

func (s *stubChefRepo) Exists(context.Context, uuid.UUID) (bool, error) {
	return s.exists, s.err
}

type stubSourceRepo struct {
	mealPlans []outbound.ClientMealPlanRecord
	events    []outbound.MealEventRecord
	orders    []outbound.ServiceOrderRecord
	err       error
}

func (s *stubSourceRepo) ClientMealPlans(context.Context, uuid.UUID, time.Time, time.Time) ([]outbound.ClientMealPlanRecord, error) {
	return s.mealPlans, s.err
}

func (s *stubSourceRepo) MealEvents(context.Context, uuid.UUID, time.Time, time.Time) ([]outbound.MealEventRecord, error) {
	return s.events, s.err
}

func (s *stubSourceRepo) ServiceOrders(context.Context, uuid.UUID, time.Time, time.Time) ([]outbound.ServiceOrderRecord, error) {
	return s.orders, s.err
}

type stubGenerator struct {
	result []outbound.GeneratedIngredient
	err    error
	calls  int
}

func (s *stubGenerator) Generate(context.Context, string, string, int) ([]outbound.GeneratedIngredient, error) {
	s.calls++
	return s.result, s.err
}

type stubEstimator struct {
	result map[string]outbound.QuantityEstimate
	err    error
	calls  int
}

func (s *stubEstimator) Estimate(context.Context, string, []string, int) (map[string]outbound.QuantityEstimate, error) {
	s.calls++
	return s.result, s.err
}

type stubKnowledge struct {
	entries []outbound.ShelfLifeEntry
	err     error
	calls   int
	asked   []string
}

func (s *stubKnowledge) Lookup(_ context.Context, names []string, _ string) ([]outbound.ShelfLifeEntry, error) {
	s.calls++
	s.asked = append(s.asked, names...)
	return s.entries, s.err
}

type stubSuggester struct {
	result *prepplan.BatchSuggestions
	err    error
}

func (s *stubSuggester) Suggest(context.Context, []*prepplan.AggregatedIngredient, []commitment.Commitment) (*prepplan.BatchSuggestions, error) {
	return s.result, s.err
}

// stubPlanRepo keeps plans in memory and can fail selected operations
type stubPlanRepo struct {
	mu               sync.Mutex
	plans            map[uuid.UUID]*prepplan.PrepPlan
	failCreate       error
	failSaveGen      error
	savedGenerated   int
	savedPurchases   int
	statusNoteWrites int
}

func newStubPlanRepo() *stubPlanRepo {
	return &stubPlanRepo{plans: make(map[uuid.UUID]*prepplan.PrepPlan)}
}

func (s *stubPlanRepo) Create(_ context.Context, plan *prepplan.PrepPlan) error {
	if s.failCreate != nil {
		return s.failCreate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[plan.ID()] = plan
	return nil
}

func (s *stubPlanRepo) SaveGenerated(_ context.Context, plan *prepplan.PrepPlan) error {
	if s.failSaveGen != nil {
		return s.failSaveGen
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.savedGenerated++
	s.plans[plan.ID()] = plan
	return nil
}

func (s *stubPlanRepo) UpdateStatusNotes(_ context.Context, plan *prepplan.PrepPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusNoteWrites++
	s.plans[plan.ID()] = plan
	return nil
}

func (s *stubPlanRepo) SavePurchases(_ context.Context, plan *prepplan.PrepPlan, _ []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.savedPurchases++
	s.plans[plan.ID()] = plan
	return nil
}

func (s *stubPlanRepo) FindByID(_ context.Context, id uuid.UUID) (*prepplan.PrepPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plans[id], nil
}

func (s *stubPlanRepo) FindByChef(_ context.Context, chefID uuid.UUID) ([]*prepplan.PrepPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*prepplan.PrepPlan
	for _, plan := range s.plans {
		if plan.ChefID() == chefID {
			out = append(out, plan)
		}
	}
	return out, nil
}

func (s *stubPlanRepo) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.plans, id)
	return nil
}

// stubCache is a map-backed cache without TTL handling
type stubCache struct {
	mu    sync.Mutex
	store map[string][]byte
	gets  int
	sets  int
}

func newStubCache() *stubCache {
	return &stubCache{store: make(map[string][]byte)}
}

func (s *stubCache) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	return s.store[key], nil
}

func (s *stubCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	s.store[key] = value
	return nil
}

func (s *stubCache) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.store, key)
	return nil
}
