package prepplan

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/prepline/v1/internal/domain/prepplan"
	"github.com/prepline/v1/internal/ports/outbound"
)

// shelfLifeCacheTTL bounds how long a resolved profile is reused. Shelf-life
// knowledge changes rarely; a day keeps repeated generations cheap.
const shelfLifeCacheTTL = 24 * time.Hour

const shelfLifeCachePrefix = "shelflife:"

// ShelfLifeResolver answers batched shelf-life queries. Resolution order per
// ingredient: cache, then one batched knowledge-service call for the misses,
// then the local keyword table for anything still unresolved. The result is
// total: every requested name gets a profile.
type ShelfLifeResolver struct {
	knowledge outbound.ShelfLifeKnowledge
	cache     outbound.CacheRepository
	logger    *zap.Logger
}

// NewShelfLifeResolver creates a shelf-life resolver
func NewShelfLifeResolver(
	knowledge outbound.ShelfLifeKnowledge,
	cache outbound.CacheRepository,
	logger *zap.Logger,
) *ShelfLifeResolver {
	return &ShelfLifeResolver{
		knowledge: knowledge,
		cache:     cache,
		logger:    logger.Named("shelflife"),
	}
}

// Resolve returns a storage profile for every name, keyed by normalized name
func (r *ShelfLifeResolver) Resolve(ctx context.Context, names []string) map[string]prepplan.ShelfLife {
	resolved := make(map[string]prepplan.ShelfLife, len(names))

	var misses []string
	for _, name := range names {
		key := prepplan.NormalizeIngredientKey(name)
		if key == "" {
			continue
		}
		if _, ok := resolved[key]; ok {
			continue
		}
		if life, ok := r.fromCache(ctx, key); ok {
			resolved[key] = life
			continue
		}
		misses = append(misses, name)
	}

	if len(misses) > 0 {
		r.lookupBatch(ctx, misses, resolved)
	}

	// Total fallback: anything the service skipped gets the keyword table.
	for _, name := range misses {
		key := prepplan.NormalizeIngredientKey(name)
		if _, ok := resolved[key]; ok {
			continue
		}
		life := FallbackShelfLife(name)
		resolved[key] = life
		r.store(ctx, key, life)
	}
	return resolved
}

func (r *ShelfLifeResolver) lookupBatch(ctx context.Context, names []string, resolved map[string]prepplan.ShelfLife) {
	entries, err := r.knowledge.Lookup(ctx, names, "")
	if err != nil {
		r.logger.Warn("Shelf-life lookup failed, using fallback table",
			zap.Int("ingredients", len(names)),
			zap.Error(err),
		)
		return
	}

	for _, entry := range entries {
		key := prepplan.NormalizeIngredientKey(entry.IngredientName)
		if key == "" || entry.ShelfLifeDays < 1 {
			continue
		}
		storage := prepplan.StorageType(entry.StorageType)
		switch storage {
		case prepplan.StorageRefrigerated, prepplan.StorageFrozen, prepplan.StoragePantry, prepplan.StorageCounter:
		default:
			continue
		}
		life := prepplan.ShelfLife{
			Days:    entry.ShelfLifeDays,
			Storage: storage,
			Notes:   entry.Notes,
		}
		resolved[key] = life
		r.store(ctx, key, life)
	}
}

func (r *ShelfLifeResolver) fromCache(ctx context.Context, key string) (prepplan.ShelfLife, bool) {
	data, err := r.cache.Get(ctx, shelfLifeCachePrefix+key)
	if err != nil || data == nil {
		return prepplan.ShelfLife{}, false
	}
	var life prepplan.ShelfLife
	if err := json.Unmarshal(data, &life); err != nil {
		return prepplan.ShelfLife{}, false
	}
	return life, true
}

func (r *ShelfLifeResolver) store(ctx context.Context, key string, life prepplan.ShelfLife) {
	data, err := json.Marshal(life)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, shelfLifeCachePrefix+key, data, shelfLifeCacheTTL); err != nil {
		r.logger.Debug("Shelf-life cache write failed", zap.String("key", key), zap.Error(err))
	}
}

type shelfLifeRule struct {
	keywords []string
	life     prepplan.ShelfLife
}

// shelfLifeRules is the local keyword table, evaluated top-to-bottom with
// first match winning. Ordering matters: "ground beef" must hit the meat rule
// before anything later could claim it.
var shelfLifeRules = []shelfLifeRule{
	{
		keywords: []string{"chicken", "beef", "pork", "turkey", "lamb", "veal", "sausage", "bacon", "steak", "meat"},
		life:     prepplan.ShelfLife{Days: 3, Storage: prepplan.StorageRefrigerated, Notes: "Use fresh meat within a few days or freeze."},
	},
	{
		keywords: []string{"fish", "salmon", "tuna", "cod", "shrimp", "prawn", "crab", "lobster", "scallop", "seafood"},
		life:     prepplan.ShelfLife{Days: 2, Storage: prepplan.StorageRefrigerated, Notes: "Seafood is best cooked within two days."},
	},
	{
		keywords: []string{"milk", "cream", "yogurt", "cheese", "butter"},
		life:     prepplan.ShelfLife{Days: 7, Storage: prepplan.StorageRefrigerated},
	},
	{
		keywords: []string{"egg"},
		life:     prepplan.ShelfLife{Days: 21, Storage: prepplan.StorageRefrigerated},
	},
	{
		keywords: []string{"lettuce", "spinach", "arugula", "kale", "chard", "salad", "greens"},
		life:     prepplan.ShelfLife{Days: 5, Storage: prepplan.StorageRefrigerated},
	},
	{
		keywords: []string{"basil", "cilantro", "parsley", "mint", "dill", "thyme", "rosemary", "chive", "herb"},
		life:     prepplan.ShelfLife{Days: 7, Storage: prepplan.StorageRefrigerated, Notes: "Store herbs with stems in water."},
	},
	{
		keywords: []string{"potato", "onion", "carrot", "beet", "turnip", "radish", "ginger", "garlic"},
		life:     prepplan.ShelfLife{Days: 14, Storage: prepplan.StoragePantry},
	},
	{
		keywords: []string{"banana", "avocado", "tomato", "peach", "mango", "pear", "plum"},
		life:     prepplan.ShelfLife{Days: 5, Storage: prepplan.StorageCounter, Notes: "Ripens at room temperature."},
	},
	{
		keywords: []string{"broccoli", "cauliflower", "zucchini", "cucumber", "mushroom", "celery", "pepper", "apple", "berry", "berries", "grape", "lemon", "lime", "orange", "fruit", "vegetable", "produce"},
		life:     prepplan.ShelfLife{Days: 7, Storage: prepplan.StorageRefrigerated},
	},
	{
		keywords: []string{"rice", "pasta", "flour", "oat", "quinoa", "couscous", "barley", "noodle", "grain", "lentil", "bean"},
		life:     prepplan.ShelfLife{Days: 180, Storage: prepplan.StoragePantry},
	},
	{
		keywords: []string{"canned", "tinned", "can of"},
		life:     prepplan.ShelfLife{Days: 365, Storage: prepplan.StoragePantry},
	},
	{
		keywords: []string{"spice", "paprika", "cumin", "cinnamon", "oregano", "powder", "dried", "salt"},
		life:     prepplan.ShelfLife{Days: 365, Storage: prepplan.StoragePantry},
	},
	{
		keywords: []string{"oil", "vinegar"},
		life:     prepplan.ShelfLife{Days: 180, Storage: prepplan.StoragePantry},
	},
	{
		keywords: []string{"sauce", "ketchup", "mustard", "mayo", "mayonnaise", "dressing", "condiment"},
		life:     prepplan.ShelfLife{Days: 90, Storage: prepplan.StorageRefrigerated},
	},
	{
		keywords: []string{"frozen"},
		life:     prepplan.ShelfLife{Days: 90, Storage: prepplan.StorageFrozen},
	},
}

// fallbackDefaultShelfLife is the conservative profile for unmatched names
var fallbackDefaultShelfLife = prepplan.ShelfLife{
	Days:    5,
	Storage: prepplan.StorageRefrigerated,
	Notes:   "Unknown ingredient, conservative estimate.",
}

// FallbackShelfLife resolves a shelf-life profile from the local keyword
// table. Total: every input maps to a profile.
func FallbackShelfLife(ingredientName string) prepplan.ShelfLife {
	name := strings.ToLower(ingredientName)
	for _, rule := range shelfLifeRules {
		if containsAny(name, rule.keywords) {
			return rule.life
		}
	}
	return fallbackDefaultShelfLife
}
