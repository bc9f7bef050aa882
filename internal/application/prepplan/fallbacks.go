package prepplan

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/prepline/v1/internal/ports/outbound"
)

// Deterministic fallbacks for collaborator failures. Keyword rules are
// evaluated top-to-bottom against the lower-cased dish or ingredient name;
// the first match wins, so the same input always yields the same output.

type fallbackDishRule struct {
	keywords    []string
	ingredients []fallbackIngredient
}

type fallbackIngredient struct {
	name       string
	perServing string // decimal literal, scaled by servings
	unit       string
}

var fallbackDishRules = []fallbackDishRule{
	{
		keywords: []string{"chicken", "poultry"},
		ingredients: []fallbackIngredient{
			{"Chicken Breast", "0.5", "lb"},
			{"Olive Oil", "0.5", "tbsp"},
			{"Garlic", "1", "clove"},
			{"Salt", "0.25", "tsp"},
		},
	},
	{
		keywords: []string{"beef", "steak", "burger"},
		ingredients: []fallbackIngredient{
			{"Ground Beef", "0.5", "lb"},
			{"Onion", "0.25", "whole"},
			{"Salt", "0.25", "tsp"},
			{"Black Pepper", "0.25", "tsp"},
		},
	},
	{
		keywords: []string{"fish", "salmon", "tuna", "seafood", "shrimp"},
		ingredients: []fallbackIngredient{
			{"Fish Fillet", "0.4", "lb"},
			{"Lemon", "0.25", "whole"},
			{"Olive Oil", "0.5", "tbsp"},
		},
	},
	{
		keywords: []string{"pasta", "spaghetti", "noodle", "lasagna"},
		ingredients: []fallbackIngredient{
			{"Pasta", "4", "oz"},
			{"Tomato Sauce", "0.5", "cup"},
			{"Parmesan Cheese", "2", "tbsp"},
		},
	},
	{
		keywords: []string{"salad", "greens"},
		ingredients: []fallbackIngredient{
			{"Mixed Greens", "2", "cup"},
			{"Olive Oil", "0.5", "tbsp"},
			{"Vinegar", "0.5", "tbsp"},
		},
	},
	{
		keywords: []string{"soup", "stew", "chili"},
		ingredients: []fallbackIngredient{
			{"Vegetable Broth", "1.5", "cup"},
			{"Onion", "0.25", "whole"},
			{"Carrot", "0.5", "whole"},
			{"Celery", "0.5", "stalk"},
		},
	},
	{
		keywords: []string{"rice", "stir fry", "stir-fry", "curry"},
		ingredients: []fallbackIngredient{
			{"Rice", "0.5", "cup"},
			{"Mixed Vegetables", "1", "cup"},
			{"Cooking Oil", "0.5", "tbsp"},
		},
	},
	{
		keywords: []string{"breakfast", "omelet", "omelette", "pancake", "egg"},
		ingredients: []fallbackIngredient{
			{"Eggs", "2", "whole"},
			{"Butter", "0.5", "tbsp"},
			{"Milk", "0.25", "cup"},
		},
	},
}

// genericDishIngredients covers dishes no keyword rule recognizes, including
// empty dish names.
var genericDishIngredients = []fallbackIngredient{
	{"Protein", "0.5", "lb"},
	{"Mixed Vegetables", "1", "cup"},
	{"Cooking Oil", "0.5", "tbsp"},
	{"Salt", "0.25", "tsp"},
}

// fallbackDishIngredients returns a deterministic ingredient set for a dish
// whose generation call failed, scaled for the commitment's servings.
func fallbackDishIngredients(dishName string, servings int) []outbound.GeneratedIngredient {
	name := strings.ToLower(dishName)
	set := genericDishIngredients
	for _, rule := range fallbackDishRules {
		if containsAny(name, rule.keywords) {
			set = rule.ingredients
			break
		}
	}

	scale := decimal.NewFromInt(int64(servings))
	out := make([]outbound.GeneratedIngredient, 0, len(set))
	for _, ing := range set {
		perServing := decimal.RequireFromString(ing.perServing)
		out = append(out, outbound.GeneratedIngredient{
			Name:     ing.name,
			Quantity: perServing.Mul(scale),
			Unit:     ing.unit,
		})
	}
	return out
}

// fallbackQuantity supplies a conservative amount for a named ingredient whose
// estimation call failed or returned no entry.
func fallbackQuantity(ingredientName string, servings int) outbound.QuantityEstimate {
	name := strings.ToLower(ingredientName)
	scale := decimal.NewFromInt(int64(servings))

	switch {
	case containsAny(name, []string{"chicken", "beef", "pork", "turkey", "lamb", "fish", "salmon", "shrimp", "meat"}):
		return outbound.QuantityEstimate{Quantity: decimal.RequireFromString("0.5").Mul(scale), Unit: "lb"}
	case containsAny(name, []string{"oil", "vinegar", "sauce", "butter"}):
		return outbound.QuantityEstimate{Quantity: decimal.RequireFromString("0.5").Mul(scale), Unit: "tbsp"}
	case containsAny(name, []string{"salt", "pepper", "spice", "paprika", "cumin", "oregano", "powder"}):
		return outbound.QuantityEstimate{Quantity: decimal.RequireFromString("0.25").Mul(scale), Unit: "tsp"}
	case containsAny(name, []string{"rice", "pasta", "flour", "oat", "quinoa", "milk", "cream", "broth", "stock"}):
		return outbound.QuantityEstimate{Quantity: decimal.RequireFromString("0.5").Mul(scale), Unit: "cup"}
	case containsAny(name, []string{"egg", "onion", "carrot", "potato", "tomato", "lemon", "lime", "apple", "banana"}):
		return outbound.QuantityEstimate{Quantity: decimal.NewFromInt(1).Mul(scale), Unit: "whole"}
	default:
		return outbound.QuantityEstimate{Quantity: decimal.NewFromInt(1).Mul(scale), Unit: "unit"}
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
