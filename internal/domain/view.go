package domain

// View identifies which screen of the assistant is active.
type View int

const (
	// ViewUpload is the initial screen: pick a photo, toggle filters.
	ViewUpload View = iota
	// ViewRecipes lists the generated recipes.
	ViewRecipes
	// ViewCooking steps through the selected recipe's instructions.
	ViewCooking
	// ViewShopping shows the accumulated shopping list.
	ViewShopping
)

// String returns a human-readable view name.
func (v View) String() string {
	switch v {
	case ViewUpload:
		return "upload"
	case ViewRecipes:
		return "recipes"
	case ViewCooking:
		return "cooking"
	case ViewShopping:
		return "shopping"
	default:
		return "unknown"
	}
}
