package gorm

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/prepline/v1/internal/domain/prepplan"
	"github.com/prepline/v1/internal/ports/outbound"
)

// PrepPlanRepositoryTestSuite exercises plan persistence against an
// in-memory SQLite database.
type PrepPlanRepositoryTestSuite struct {
	suite.Suite
	db     *gorm.DB
	repo   outbound.PrepPlanRepository
	chefID uuid.UUID
	ctx    context.Context
}

func (s *PrepPlanRepositoryTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)

	// One pooled connection, otherwise each connection sees its own
	// empty in-memory database.
	sqlDB, err := db.DB()
	require.NoError(s.T(), err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(s.T(), db.AutoMigrate(AllModels()...))

	s.db = db
	s.repo = NewPrepPlanRepository(db)
	s.chefID = uuid.New()
	s.ctx = context.Background()
}

func testDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *PrepPlanRepositoryTestSuite) newGeneratedPlan() *prepplan.PrepPlan {
	plan, err := prepplan.NewPrepPlan(s.chefID, testDate(2025, 3, 1), testDate(2025, 3, 7), "week 10")
	require.NoError(s.T(), err)

	commitments := []prepplan.CommitmentSnapshot{
		{
			ID: uuid.New(), Kind: "client_meal_plan", SourceID: uuid.New(),
			ServiceDate: testDate(2025, 3, 2), Servings: 2,
			MealName: "Grilled Chicken", CustomerName: "Ana",
		},
	}
	items := []*prepplan.Item{
		{
			ID:                    uuid.New(),
			IngredientName:        "Chicken Breast",
			NormalizedName:        "chicken breast",
			TotalQuantity:         decimal.RequireFromString("4.5"),
			Unit:                  "lb",
			ShelfLifeDays:         3,
			StorageType:           prepplan.StorageRefrigerated,
			EarliestUseDate:       testDate(2025, 3, 2),
			LatestUseDate:         testDate(2025, 3, 5),
			SuggestedPurchaseDate: testDate(2025, 3, 1),
			TimingStatus:          prepplan.TimingTight,
			MealsUsing: []prepplan.MealUsage{
				{Meal: "Grilled Chicken (Ana)", Date: testDate(2025, 3, 2), Quantity: decimal.NewFromInt(2)},
			},
		},
		{
			ID:                    uuid.New(),
			IngredientName:        "Basmati Rice",
			NormalizedName:        "basmati rice",
			TotalQuantity:         decimal.NewFromInt(3),
			Unit:                  "cup",
			ShelfLifeDays:         180,
			StorageType:           prepplan.StoragePantry,
			EarliestUseDate:       testDate(2025, 3, 4),
			LatestUseDate:         testDate(2025, 3, 4),
			SuggestedPurchaseDate: testDate(2025, 3, 1),
			TimingStatus:          prepplan.TimingOptimal,
		},
	}
	suggestions := prepplan.BatchSuggestions{
		Suggestions: []prepplan.BatchSuggestion{
			{Ingredient: "Chicken Breast", Suggestion: "Roast in one batch", MealsCovered: 2},
		},
		GeneralTips: []string{"Label containers"},
	}

	require.NoError(s.T(), plan.AttachResults(commitments, items, suggestions))
	require.NoError(s.T(), plan.MarkGenerated())
	return plan
}

func (s *PrepPlanRepositoryTestSuite) TestCreateLeavesDraftWithoutChildren() {
	plan, err := prepplan.NewPrepPlan(s.chefID, testDate(2025, 3, 1), testDate(2025, 3, 7), "")
	require.NoError(s.T(), err)
	require.NoError(s.T(), s.repo.Create(s.ctx, plan))

	loaded, err := s.repo.FindByID(s.ctx, plan.ID())
	require.NoError(s.T(), err)
	require.NotNil(s.T(), loaded)
	assert.Equal(s.T(), prepplan.PlanStatusDraft, loaded.Status())
	assert.Empty(s.T(), loaded.Items())
	assert.Empty(s.T(), loaded.Commitments())
}

func (s *PrepPlanRepositoryTestSuite) TestSaveGeneratedRoundTrip() {
	plan := s.newGeneratedPlan()
	require.NoError(s.T(), s.repo.Create(s.ctx, plan))
	require.NoError(s.T(), s.repo.SaveGenerated(s.ctx, plan))

	loaded, err := s.repo.FindByID(s.ctx, plan.ID())
	require.NoError(s.T(), err)
	require.NotNil(s.T(), loaded)

	assert.Equal(s.T(), prepplan.PlanStatusGenerated, loaded.Status())
	assert.Equal(s.T(), 1, loaded.TotalMeals())
	assert.Equal(s.T(), 2, loaded.TotalServings())
	assert.Equal(s.T(), 2, loaded.UniqueIngredients())
	assert.Equal(s.T(), "week 10", loaded.Notes())

	require.Len(s.T(), loaded.Commitments(), 1)
	assert.Equal(s.T(), "Grilled Chicken", loaded.Commitments()[0].MealName)

	require.Len(s.T(), loaded.Items(), 2)
	// Preload orders by (purchase date, name): rice before chicken
	rice, chicken := loaded.Items()[0], loaded.Items()[1]
	assert.Equal(s.T(), "Basmati Rice", rice.IngredientName)
	assert.Equal(s.T(), "Chicken Breast", chicken.IngredientName)
	assert.True(s.T(), chicken.TotalQuantity.Equal(decimal.RequireFromString("4.5")))
	assert.Equal(s.T(), prepplan.StorageRefrigerated, chicken.StorageType)
	assert.Equal(s.T(), prepplan.TimingTight, chicken.TimingStatus)
	require.Len(s.T(), chicken.MealsUsing, 1)
	assert.Equal(s.T(), "Grilled Chicken (Ana)", chicken.MealsUsing[0].Meal)

	require.Len(s.T(), loaded.Suggestions().Suggestions, 1)
	assert.Equal(s.T(), []string{"Label containers"}, loaded.Suggestions().GeneralTips)
}

func (s *PrepPlanRepositoryTestSuite) TestSaveGeneratedReplacesChildren() {
	plan := s.newGeneratedPlan()
	require.NoError(s.T(), s.repo.Create(s.ctx, plan))
	require.NoError(s.T(), s.repo.SaveGenerated(s.ctx, plan))
	require.NoError(s.T(), s.repo.SaveGenerated(s.ctx, plan))

	var itemCount, commitmentCount int64
	require.NoError(s.T(), s.db.Model(&PrepPlanItemModel{}).Where("prep_plan_id = ?", plan.ID()).Count(&itemCount).Error)
	require.NoError(s.T(), s.db.Model(&PrepPlanCommitmentModel{}).Where("prep_plan_id = ?", plan.ID()).Count(&commitmentCount).Error)
	assert.Equal(s.T(), int64(2), itemCount, "re-generation must not duplicate items")
	assert.Equal(s.T(), int64(1), commitmentCount)
}

func (s *PrepPlanRepositoryTestSuite) TestUpdateStatusNotes() {
	plan := s.newGeneratedPlan()
	require.NoError(s.T(), s.repo.Create(s.ctx, plan))
	require.NoError(s.T(), s.repo.SaveGenerated(s.ctx, plan))

	plan.MarkFailed("generation failed: storage error while saving the plan")
	require.NoError(s.T(), s.repo.UpdateStatusNotes(s.ctx, plan))

	loaded, err := s.repo.FindByID(s.ctx, plan.ID())
	require.NoError(s.T(), err)
	assert.Equal(s.T(), prepplan.PlanStatusDraft, loaded.Status())
	assert.Contains(s.T(), loaded.Notes(), "generation failed")
	assert.Zero(s.T(), loaded.TotalMeals())
}

func (s *PrepPlanRepositoryTestSuite) TestSavePurchases() {
	plan := s.newGeneratedPlan()
	require.NoError(s.T(), s.repo.Create(s.ctx, plan))
	require.NoError(s.T(), s.repo.SaveGenerated(s.ctx, plan))

	itemID := plan.Items()[0].ID
	purchasedDate := testDate(2025, 3, 1)
	qty := decimal.RequireFromString("4.5")
	unknown := plan.MarkItemsPurchased(
		[]uuid.UUID{itemID},
		&purchasedDate,
		map[uuid.UUID]decimal.Decimal{itemID: qty},
	)
	require.Empty(s.T(), unknown)
	require.NoError(s.T(), s.repo.SavePurchases(s.ctx, plan, []uuid.UUID{itemID}))

	loaded, err := s.repo.FindByID(s.ctx, plan.ID())
	require.NoError(s.T(), err)
	assert.Equal(s.T(), prepplan.PlanStatusInProgress, loaded.Status())

	var purchased *prepplan.Item
	for _, item := range loaded.Items() {
		if item.ID == itemID {
			purchased = item
		}
	}
	require.NotNil(s.T(), purchased)
	assert.True(s.T(), purchased.IsPurchased)
	require.NotNil(s.T(), purchased.PurchasedDate)
	assert.Equal(s.T(), purchasedDate, purchased.PurchasedDate.UTC())
	require.NotNil(s.T(), purchased.PurchasedQuantity)
	assert.True(s.T(), purchased.PurchasedQuantity.Equal(qty))
}

func (s *PrepPlanRepositoryTestSuite) TestFindByChefNewestFirst() {
	first, err := prepplan.NewPrepPlan(s.chefID, testDate(2025, 3, 1), testDate(2025, 3, 7), "")
	require.NoError(s.T(), err)
	require.NoError(s.T(), s.repo.Create(s.ctx, first))

	time.Sleep(10 * time.Millisecond)
	second, err := prepplan.NewPrepPlan(s.chefID, testDate(2025, 3, 8), testDate(2025, 3, 14), "")
	require.NoError(s.T(), err)
	require.NoError(s.T(), s.repo.Create(s.ctx, second))

	other, err := prepplan.NewPrepPlan(uuid.New(), testDate(2025, 3, 1), testDate(2025, 3, 7), "")
	require.NoError(s.T(), err)
	require.NoError(s.T(), s.repo.Create(s.ctx, other))

	plans, err := s.repo.FindByChef(s.ctx, s.chefID)
	require.NoError(s.T(), err)
	require.Len(s.T(), plans, 2)
	assert.Equal(s.T(), second.ID(), plans[0].ID())
	assert.Equal(s.T(), first.ID(), plans[1].ID())
}

func (s *PrepPlanRepositoryTestSuite) TestDeleteCascades() {
	plan := s.newGeneratedPlan()
	require.NoError(s.T(), s.repo.Create(s.ctx, plan))
	require.NoError(s.T(), s.repo.SaveGenerated(s.ctx, plan))

	require.NoError(s.T(), s.repo.Delete(s.ctx, plan.ID()))

	loaded, err := s.repo.FindByID(s.ctx, plan.ID())
	require.NoError(s.T(), err)
	assert.Nil(s.T(), loaded)

	var itemCount int64
	require.NoError(s.T(), s.db.Model(&PrepPlanItemModel{}).Where("prep_plan_id = ?", plan.ID()).Count(&itemCount).Error)
	assert.Zero(s.T(), itemCount)
}

func (s *PrepPlanRepositoryTestSuite) TestFindByIDMissingReturnsNil() {
	loaded, err := s.repo.FindByID(s.ctx, uuid.New())
	require.NoError(s.T(), err)
	assert.Nil(s.T(), loaded)
}

func TestPrepPlanRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(PrepPlanRepositoryTestSuite))
}
