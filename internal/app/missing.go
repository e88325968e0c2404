package app

import (
	"strings"

	"github.com/Chitrank-Dixit/pict2recipe/internal/domain"
)

// MissingIngredients returns the recipe ingredients not covered by the
// identified ingredients. An ingredient is covered when an identified
// name equals it case-insensitively, or failing that, when the
// identified name is a substring of the recipe ingredient name. This is
// a deliberate substring heuristic, not fuzzy matching: "milk" covers
// "Whole milk" but "butter" does not cover "buttermilk biscuits" any
// less than plain containment allows.
func MissingIngredients(recipe *domain.Recipe, identified []string) []domain.Ingredient {
	var missing []domain.Ingredient
	for _, ing := range recipe.Ingredients {
		if !covered(ing.Name, identified) {
			missing = append(missing, ing)
		}
	}
	return missing
}

func covered(name string, identified []string) bool {
	lower := strings.ToLower(name)
	for _, id := range identified {
		idLower := strings.ToLower(id)
		if idLower == lower {
			return true
		}
		if strings.Contains(lower, idLower) {
			return true
		}
	}
	return false
}
