// Package app implements the view state machine driving the assistant:
// upload -> recipes -> cooking, with the shopping list reachable from
// the recipe list. It owns all derived state (identified ingredients,
// active filters, selection, cooking position) and orchestrates calls
// into the generation and narration clients.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Chitrank-Dixit/pict2recipe/internal/domain"
	"github.com/Chitrank-Dixit/pict2recipe/internal/logger"
	"github.com/Chitrank-Dixit/pict2recipe/internal/shopping"
)

// Narrator abstracts the speech pipeline the app toggles per step.
type Narrator interface {
	Toggle(ctx context.Context, text string, done func(error)) bool
	Speaking() bool
	Stop()
}

// imageMIMETypes maps accepted photo extensions to their MIME type.
var imageMIMETypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// App is the session state machine. All methods are safe for concurrent
// use; in practice one user action is handled at a time and the loading
// flag guards against overlapping uploads.
type App struct {
	generator domain.RecipeGenerator
	narrator  Narrator // nil when speech is disabled
	list      *shopping.List
	log       *logger.Logger

	mu        sync.Mutex
	view      domain.View
	filters   map[domain.DietaryFilter]bool
	analysis  *domain.AnalysisResult
	imagePath string // preview reference for the last upload
	selected  int    // index into analysis.Recipes, -1 when none
	stepIdx   int
	loading   bool
	errMsg    string
	audioErr  string
}

// New creates the app in the upload view with no filters active.
func New(generator domain.RecipeGenerator, narrator Narrator, list *shopping.List, log *logger.Logger) *App {
	return &App{
		generator: generator,
		narrator:  narrator,
		list:      list,
		log:       log,
		view:      domain.ViewUpload,
		filters:   make(map[domain.DietaryFilter]bool),
		selected:  -1,
	}
}

// ── Upload ───────────────────────────────────────────────────────

// SubmitImage reads the photo at path and asks the generator for
// recipes under the currently active filters. On success the app moves
// to the recipe list; on any failure it stays on the upload view with an
// inline error. The loading flag is cleared on every path, including
// early validation errors.
func (a *App) SubmitImage(ctx context.Context, path string) error {
	a.mu.Lock()
	if a.view != domain.ViewUpload {
		a.mu.Unlock()
		a.log.Debug("app: ignoring upload outside the upload view")
		return nil
	}
	if a.loading {
		a.mu.Unlock()
		return domain.ErrBusy
	}
	a.loading = true
	a.errMsg = ""
	filters := a.activeFiltersLocked()
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.loading = false
		a.mu.Unlock()
	}()

	img, mimeType, err := readImage(path)
	if err != nil {
		a.mu.Lock()
		a.errMsg = err.Error()
		a.mu.Unlock()
		return err
	}

	a.mu.Lock()
	a.imagePath = path
	a.mu.Unlock()

	result, err := a.generator.Generate(ctx, img, mimeType, filters)
	if err != nil {
		a.mu.Lock()
		a.errMsg = domain.ErrGeneration.Error()
		a.mu.Unlock()
		return err
	}

	a.mu.Lock()
	a.analysis = result
	a.selected = -1
	a.stepIdx = 0
	a.view = domain.ViewRecipes
	a.mu.Unlock()

	a.log.Info("app: analysis complete (%d ingredients, %d recipes)",
		len(result.IdentifiedIngredients), len(result.Recipes))
	return nil
}

// readImage loads the photo fully into memory and resolves its MIME
// type from the extension. Accepted types match the picker filter of
// the upload view: PNG, JPEG, WEBP.
func readImage(path string) ([]byte, string, error) {
	mimeType, ok := imageMIMETypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, "", fmt.Errorf("unsupported image type %q (use png, jpg, or webp)", filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading image: %w", err)
	}
	return data, mimeType, nil
}

// ToggleFilter flips membership of f in the active filter set and
// reports whether it is now active. Filters only affect the next upload;
// an existing analysis is never recomputed.
func (a *App) ToggleFilter(f domain.DietaryFilter) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.filters[f] {
		delete(a.filters, f)
		return false
	}
	a.filters[f] = true
	return true
}

// ActiveFilters returns the active filters in canonical order.
func (a *App) ActiveFilters() []domain.DietaryFilter {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.activeFiltersLocked()
}

func (a *App) activeFiltersLocked() []domain.DietaryFilter {
	var out []domain.DietaryFilter
	for _, f := range domain.DietaryFilters {
		if a.filters[f] {
			out = append(out, f)
		}
	}
	return out
}

// ── Recipes / cooking ────────────────────────────────────────────

// SelectRecipe stores the recipe at idx as the current selection, resets
// the cooking position to the first step, and enters cooking mode.
func (a *App) SelectRecipe(idx int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.view != domain.ViewRecipes || a.analysis == nil {
		return domain.ErrNoRecipeSelected
	}
	if idx < 0 || idx >= len(a.analysis.Recipes) {
		return fmt.Errorf("recipe %d does not exist", idx+1)
	}

	a.selected = idx
	a.stepIdx = 0
	a.view = domain.ViewCooking
	a.log.Debug("app: selected recipe %q", a.analysis.Recipes[idx].Name)
	return nil
}

// CurrentRecipe returns the selected recipe, if any.
func (a *App) CurrentRecipe() (*domain.Recipe, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentRecipeLocked()
}

func (a *App) currentRecipeLocked() (*domain.Recipe, bool) {
	if a.analysis == nil || a.selected < 0 || a.selected >= len(a.analysis.Recipes) {
		return nil, false
	}
	return &a.analysis.Recipes[a.selected], true
}

// StepIndex returns the 0-based cooking position.
func (a *App) StepIndex() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stepIdx
}

// CurrentStep returns the instruction text at the cooking position.
func (a *App) CurrentStep() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	r, ok := a.currentRecipeLocked()
	if !ok || a.stepIdx < 0 || a.stepIdx >= len(r.Instructions) {
		return "", false
	}
	return r.Instructions[a.stepIdx], true
}

// AdvanceStep moves to the next instruction. A no-op at the last step:
// the index never leaves [0, len(instructions)-1].
func (a *App) AdvanceStep() {
	a.mu.Lock()
	defer a.mu.Unlock()

	r, ok := a.currentRecipeLocked()
	if !ok {
		return
	}
	if a.stepIdx < len(r.Instructions)-1 {
		a.stepIdx++
	}
}

// RetreatStep moves to the previous instruction. A no-op at the first step.
func (a *App) RetreatStep() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.currentRecipeLocked(); !ok {
		return
	}
	if a.stepIdx > 0 {
		a.stepIdx--
	}
}

// ReadCurrentStepAloud toggles narration of the current instruction:
// if narration is in flight or playing it stops, otherwise it starts.
// Returns true when narration started. Because synthesis is remote, a
// started narration can still fail later; the failure is stored as the
// inline audio error before notify fires, so callers can surface it.
// notify is invoked once a started narration finishes or fails, never
// for a stopped one; nil is allowed.
func (a *App) ReadCurrentStepAloud(ctx context.Context, notify func(error)) bool {
	if a.narrator == nil {
		a.mu.Lock()
		a.audioErr = "speech is not available"
		a.mu.Unlock()
		return false
	}

	step, ok := a.CurrentStep()
	if !ok {
		return false
	}

	a.mu.Lock()
	a.audioErr = ""
	a.mu.Unlock()

	return a.narrator.Toggle(ctx, step, func(err error) {
		if err != nil {
			a.mu.Lock()
			a.audioErr = err.Error()
			a.mu.Unlock()
		}
		if notify != nil {
			notify(err)
		}
	})
}

// ExitCooking stops narration and returns to the recipe list. The
// selection is kept so re-entering cooking resumes the same recipe.
func (a *App) ExitCooking() {
	if a.narrator != nil {
		a.narrator.Stop()
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.view == domain.ViewCooking {
		a.view = domain.ViewRecipes
	}
}

// Speaking reports whether narration is active.
func (a *App) Speaking() bool {
	if a.narrator == nil {
		return false
	}
	return a.narrator.Speaking()
}

// ── Shopping ─────────────────────────────────────────────────────

// OpenShopping moves from the recipe list to the shopping list.
func (a *App) OpenShopping() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.view == domain.ViewRecipes {
		a.view = domain.ViewShopping
	}
}

// CloseShopping returns from the shopping list to the recipe list.
func (a *App) CloseShopping() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.view == domain.ViewShopping {
		a.view = domain.ViewRecipes
	}
}

// MissingForCurrent returns the current recipe's ingredients not covered
// by the identified ingredients.
func (a *App) MissingForCurrent() []domain.Ingredient {
	a.mu.Lock()
	defer a.mu.Unlock()

	r, ok := a.currentRecipeLocked()
	if !ok {
		return nil
	}
	return MissingIngredients(r, a.analysis.IdentifiedIngredients)
}

// AddToShoppingList adds items to the shopping list, dropping entries
// whose name is already present (case-insensitive). Returns the number
// actually added.
func (a *App) AddToShoppingList(items []domain.Ingredient) int {
	added := a.list.AddAll(items)
	a.log.Info("app: added %d of %d items to the shopping list", added, len(items))
	return added
}

// ShoppingList exposes the session shopping list.
func (a *App) ShoppingList() *shopping.List { return a.list }

// ── Reset / accessors ────────────────────────────────────────────

// Reset discards the analysis, selection, cooking position, and any
// inline errors, and returns to the upload view. The shopping list is
// deliberately kept: it accumulates for the whole process lifetime.
func (a *App) Reset() {
	if a.narrator != nil {
		a.narrator.Stop()
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.analysis = nil
	a.selected = -1
	a.stepIdx = 0
	a.imagePath = ""
	a.errMsg = ""
	a.audioErr = ""
	a.loading = false
	a.view = domain.ViewUpload
	a.log.Debug("app: reset to upload view")
}

// View returns the active view.
func (a *App) View() domain.View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view
}

// Loading reports whether a generation request is outstanding.
func (a *App) Loading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading
}

// ErrorMessage returns the inline upload/generation error, if any.
func (a *App) ErrorMessage() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.errMsg
}

// AudioError returns the inline narration error, if any.
func (a *App) AudioError() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.audioErr
}

// Analysis returns the live analysis result, or nil before the first
// successful upload.
func (a *App) Analysis() *domain.AnalysisResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.analysis
}

// ImagePath returns the preview reference of the last uploaded photo.
func (a *App) ImagePath() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.imagePath
}
