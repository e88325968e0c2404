package vision

import "google.golang.org/genai"

var ingredientsSchema = &genai.Schema{
	Type:        "array",
	Description: "The ingredients of the recipe, in display order.",
	Items: &genai.Schema{
		Type:        "object",
		Description: "An ingredient in the recipe.",
		Properties: map[string]*genai.Schema{
			"name": {
				Type:        "string",
				Description: "The name of the ingredient.",
			},
			"quantity": {
				Type:        "string",
				Description: "The quantity of the ingredient, e.g. \"2 cups\".",
			},
		},
		Required: []string{"name", "quantity"},
	},
}

var recipeSchema = &genai.Schema{
	Type:        "object",
	Description: "A recipe that can be made from the identified ingredients.",
	Required:    []string{"name", "difficulty", "prepTime", "calories", "ingredients", "instructions"},
	Properties: map[string]*genai.Schema{
		"name": {
			Type:        "string",
			Description: "The name of the recipe.",
		},
		"difficulty": {
			Type:        "string",
			Description: "How demanding the recipe is to cook.",
			Enum:        []string{"Easy", "Medium", "Hard"},
		},
		"prepTime": {
			Type:        "string",
			Description: "The preparation time, e.g. \"25 minutes\".",
		},
		"calories": {
			Type:        "string",
			Description: "The approximate calories per serving, e.g. \"450 kcal\".",
		},
		"ingredients": ingredientsSchema,
		"instructions": {
			Type:        "array",
			Description: "The cooking steps of the recipe, in order.",
			Items: &genai.Schema{
				Type:        "string",
				Description: "A single cooking step.",
			},
		},
	},
}

// AnalysisSchema constrains the model output to the exact shape of
// domain.AnalysisResult.
var AnalysisSchema = &genai.Schema{
	Type:        "object",
	Description: "The result of analyzing a photo of refrigerator contents.",
	Required:    []string{"identifiedIngredients", "recipes"},
	Properties: map[string]*genai.Schema{
		"identifiedIngredients": {
			Type:        "array",
			Description: "The food ingredients identified in the photo.",
			Items: &genai.Schema{
				Type:        "string",
				Description: "The name of an identified ingredient.",
			},
		},
		"recipes": {
			Type:        "array",
			Description: "Recipes that can be made from the identified ingredients.",
			Items:       recipeSchema,
		},
	},
}
