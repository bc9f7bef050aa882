package prepplan

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/prepline/v1/internal/domain/prepplan"
	"github.com/prepline/v1/internal/ports/outbound"
)

// ShelfLifeTestSuite covers resolution order and the local keyword table
type ShelfLifeTestSuite struct {
	suite.Suite
}

func (s *ShelfLifeTestSuite) resolver(knowledge outbound.ShelfLifeKnowledge) (*ShelfLifeResolver, *stubCache) {
	cache := newStubCache()
	return NewShelfLifeResolver(knowledge, cache, zap.NewNop()), cache
}

func (s *ShelfLifeTestSuite) TestFallbackTable() {
	cases := []struct {
		name    string
		days    int
		storage prepplan.StorageType
	}{
		{"Chicken Breast", 3, prepplan.StorageRefrigerated},
		{"Ground Beef", 3, prepplan.StorageRefrigerated},
		{"Salmon Fillet", 2, prepplan.StorageRefrigerated},
		{"Whole Milk", 7, prepplan.StorageRefrigerated},
		{"Eggs", 21, prepplan.StorageRefrigerated},
		{"Baby Spinach", 5, prepplan.StorageRefrigerated},
		{"Fresh Basil", 7, prepplan.StorageRefrigerated},
		{"Russet Potato", 14, prepplan.StoragePantry},
		{"Banana", 5, prepplan.StorageCounter},
		{"Broccoli", 7, prepplan.StorageRefrigerated},
		{"Basmati Rice", 180, prepplan.StoragePantry},
		{"Canned Tomatoes", 365, prepplan.StoragePantry},
		{"Paprika", 365, prepplan.StoragePantry},
		{"Olive Oil", 180, prepplan.StoragePantry},
		{"Soy Sauce", 90, prepplan.StorageRefrigerated},
		{"Frozen Peas", 90, prepplan.StorageFrozen},
		{"Dragonfruit Extract", 5, prepplan.StorageRefrigerated}, // default
	}
	for _, tc := range cases {
		life := FallbackShelfLife(tc.name)
		assert.Equal(s.T(), tc.days, life.Days, tc.name)
		assert.Equal(s.T(), tc.storage, life.Storage, tc.name)
	}
}

func (s *ShelfLifeTestSuite) TestRuleOrderMatters() {
	// "Frozen Chicken" matches the meat rule before the frozen rule:
	// evaluation is strictly top-to-bottom, first match wins.
	life := FallbackShelfLife("Frozen Chicken")
	assert.Equal(s.T(), 3, life.Days)
	assert.Equal(s.T(), prepplan.StorageRefrigerated, life.Storage)

	// "Frozen Waffles" reaches the frozen rule because nothing earlier claims it
	life = FallbackShelfLife("Frozen Waffles")
	assert.Equal(s.T(), prepplan.StorageFrozen, life.Storage)
}

func (s *ShelfLifeTestSuite) TestKnowledgeServicePath() {
	s.Run("SingleBatchedCall", func() {
		knowledge := &stubKnowledge{entries: []outbound.ShelfLifeEntry{
			{IngredientName: "Chicken Breast", ShelfLifeDays: 4, StorageType: "refrigerated", Notes: "vacuum sealed"},
			{IngredientName: "Rice", ShelfLifeDays: 200, StorageType: "pantry"},
		}}
		resolver, _ := s.resolver(knowledge)

		resolved := resolver.Resolve(context.Background(), []string{"Chicken Breast", "Rice"})

		assert.Equal(s.T(), 1, knowledge.calls)
		require.Len(s.T(), resolved, 2)
		assert.Equal(s.T(), 4, resolved["chicken breast"].Days)
		assert.Equal(s.T(), "vacuum sealed", resolved["chicken breast"].Notes)
		assert.Equal(s.T(), prepplan.StoragePantry, resolved["rice"].Storage)
	})

	s.Run("IncompleteAnswer_FilledFromTable", func() {
		knowledge := &stubKnowledge{entries: []outbound.ShelfLifeEntry{
			{IngredientName: "Rice", ShelfLifeDays: 200, StorageType: "pantry"},
		}}
		resolver, _ := s.resolver(knowledge)

		resolved := resolver.Resolve(context.Background(), []string{"Rice", "Salmon"})

		require.Len(s.T(), resolved, 2)
		assert.Equal(s.T(), 200, resolved["rice"].Days)
		assert.Equal(s.T(), 2, resolved["salmon"].Days, "table value for the missing name")
	})

	s.Run("InvalidStorageType_IsRejected", func() {
		knowledge := &stubKnowledge{entries: []outbound.ShelfLifeEntry{
			{IngredientName: "Milk", ShelfLifeDays: 7, StorageType: "underwater"},
		}}
		resolver, _ := s.resolver(knowledge)

		resolved := resolver.Resolve(context.Background(), []string{"Milk"})
		assert.Equal(s.T(), prepplan.StorageRefrigerated, resolved["milk"].Storage)
		assert.Equal(s.T(), 7, resolved["milk"].Days, "table value, not the rejected entry")
	})

	s.Run("ServiceFailure_StillTotal", func() {
		knowledge := &stubKnowledge{err: fmt.Errorf("timeout")}
		resolver, _ := s.resolver(knowledge)

		names := []string{"Chicken", "Quinoa", "Mystery Paste"}
		resolved := resolver.Resolve(context.Background(), names)

		require.Len(s.T(), resolved, 3, "fallback must cover every name")
		assert.Equal(s.T(), 5, resolved["mystery paste"].Days)
	})
}

func (s *ShelfLifeTestSuite) TestCaching() {
	knowledge := &stubKnowledge{entries: []outbound.ShelfLifeEntry{
		{IngredientName: "Rice", ShelfLifeDays: 200, StorageType: "pantry"},
	}}
	resolver, cache := s.resolver(knowledge)

	first := resolver.Resolve(context.Background(), []string{"Rice"})
	second := resolver.Resolve(context.Background(), []string{"Rice"})

	assert.Equal(s.T(), 1, knowledge.calls, "second resolve must hit the cache")
	assert.Equal(s.T(), first, second)
	assert.NotZero(s.T(), cache.sets)
}

func (s *ShelfLifeTestSuite) TestDuplicateAndBlankNames() {
	knowledge := &stubKnowledge{err: fmt.Errorf("down")}
	resolver, _ := s.resolver(knowledge)

	resolved := resolver.Resolve(context.Background(), []string{"Rice", "rice", "  RICE ", "   "})
	assert.Len(s.T(), resolved, 1)
}

func TestShelfLifeTestSuite(t *testing.T) {
	suite.Run(t, new(ShelfLifeTestSuite))
}
