package domain

// IntentType classifies what the user wants to do.
type IntentType int

const (
	IntentUnknown IntentType = iota
	IntentUpload
	IntentToggleFilter
	IntentListRecipes
	IntentSelectRecipe
	IntentNextStep
	IntentPrevStep
	IntentReadStep
	IntentShowShopping
	IntentAddMissing
	IntentReset
	IntentHelp
	IntentQuit
)

// String returns a human-readable intent name.
func (i IntentType) String() string {
	switch i {
	case IntentUpload:
		return "upload"
	case IntentToggleFilter:
		return "toggle_filter"
	case IntentListRecipes:
		return "list_recipes"
	case IntentSelectRecipe:
		return "select_recipe"
	case IntentNextStep:
		return "next_step"
	case IntentPrevStep:
		return "prev_step"
	case IntentReadStep:
		return "read_step"
	case IntentShowShopping:
		return "show_shopping"
	case IntentAddMissing:
		return "add_missing"
	case IntentReset:
		return "reset"
	case IntentHelp:
		return "help"
	case IntentQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Intent represents a parsed user action.
type Intent struct {
	Type    IntentType
	Payload string // optional context, e.g. image path for upload
}
