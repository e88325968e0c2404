// Package domain defines the core types and interfaces for the
// image-to-recipe assistant. All other packages depend on domain;
// domain depends on nothing.
package domain

// Difficulty rates how demanding a recipe is to cook.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Ingredient is a single recipe ingredient with a human-readable quantity.
type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

// Recipe is one generated recipe. A recipe is immutable once produced by
// the model; Ingredients and Instructions keep their generated order
// (shopping/display order and step sequence respectively).
type Recipe struct {
	Name         string       `json:"name"`
	Difficulty   Difficulty   `json:"difficulty"`
	PrepTime     string       `json:"prepTime"`
	Calories     string       `json:"calories"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions []string     `json:"instructions"`
}

// AnalysisResult is the outcome of one image analysis call: the
// ingredients the model spotted in the photo plus the recipes it
// proposed. At most one result is live at a time; a new upload replaces
// it entirely.
type AnalysisResult struct {
	IdentifiedIngredients []string `json:"identifiedIngredients"`
	Recipes               []Recipe `json:"recipes"`
}

// DietaryFilter is a named dietary constraint applied to generation
// requests. Filters never mutate an already-computed result; they only
// affect the next upload.
type DietaryFilter string

const (
	FilterVegetarian DietaryFilter = "vegetarian"
	FilterKeto       DietaryFilter = "keto"
	FilterGlutenFree DietaryFilter = "gluten-free"
	FilterVegan      DietaryFilter = "vegan"
)

// DietaryFilters lists every filter in canonical display order.
var DietaryFilters = []DietaryFilter{
	FilterVegetarian,
	FilterKeto,
	FilterGlutenFree,
	FilterVegan,
}

// ParseDietaryFilter maps a user-typed name to a filter.
func ParseDietaryFilter(s string) (DietaryFilter, bool) {
	for _, f := range DietaryFilters {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}
