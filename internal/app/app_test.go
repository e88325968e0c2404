package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Chitrank-Dixit/pict2recipe/internal/domain"
	"github.com/Chitrank-Dixit/pict2recipe/internal/logger"
	"github.com/Chitrank-Dixit/pict2recipe/internal/shopping"
)

// fakeGenerator returns a canned analysis and records the filters it
// saw, optionally blocking until released.
type fakeGenerator struct {
	result  *domain.AnalysisResult
	err     error
	release chan struct{} // when non-nil, Generate blocks until closed
	filters []domain.DietaryFilter
}

func (f *fakeGenerator) Generate(ctx context.Context, image []byte, mimeType string, filters []domain.DietaryFilter) (*domain.AnalysisResult, error) {
	f.filters = filters
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakeNarrator flips its speaking state on every toggle. A configured
// err is reported through done before Toggle returns; otherwise the
// done func is kept so tests can complete the narration later via
// finish, the way a remote synthesis resolves.
type fakeNarrator struct {
	mu       sync.Mutex
	speaking bool
	err      error
	done     func(error)
	toggles  int
	stops    int
}

func (f *fakeNarrator) Toggle(ctx context.Context, text string, done func(error)) bool {
	f.mu.Lock()
	f.toggles++
	if f.speaking {
		f.speaking = false
		f.mu.Unlock()
		return false
	}
	if f.err != nil {
		f.mu.Unlock()
		if done != nil {
			done(f.err)
		}
		return false
	}
	f.speaking = true
	f.done = done
	f.mu.Unlock()
	return true
}

// finish resolves the started narration with err.
func (f *fakeNarrator) finish(err error) {
	f.mu.Lock()
	done := f.done
	f.done = nil
	f.speaking = false
	f.mu.Unlock()
	if done != nil {
		done(err)
	}
}

func (f *fakeNarrator) Speaking() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.speaking
}

func (f *fakeNarrator) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.speaking = false
	f.stops++
}

func testAnalysis() *domain.AnalysisResult {
	return &domain.AnalysisResult{
		IdentifiedIngredients: []string{"eggs", "milk", "butter"},
		Recipes: []domain.Recipe{
			{
				Name:       "Scrambled Eggs",
				Difficulty: domain.DifficultyEasy,
				Ingredients: []domain.Ingredient{
					{Name: "Eggs", Quantity: "3"},
					{Name: "Whole milk", Quantity: "50ml"},
					{Name: "Chives", Quantity: "1 tbsp"},
				},
				Instructions: []string{"Whisk the eggs.", "Cook over low heat.", "Serve."},
			},
			{
				Name:         "Pancakes",
				Difficulty:   domain.DifficultyMedium,
				Ingredients:  []domain.Ingredient{{Name: "Flour", Quantity: "200g"}},
				Instructions: []string{"Mix.", "Fry."},
			},
		},
	}
}

func writeTestImage(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("not a real photo"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestApp(gen *fakeGenerator, narr *fakeNarrator) *App {
	log := logger.New(logger.LevelOff, nil)
	var n Narrator
	if narr != nil {
		n = narr
	}
	return New(gen, n, shopping.NewList(log), log)
}

func TestSubmitImageMovesToRecipes(t *testing.T) {
	gen := &fakeGenerator{result: testAnalysis()}
	a := newTestApp(gen, nil)
	a.ToggleFilter(domain.FilterVegan)
	a.ToggleFilter(domain.FilterVegetarian)

	path := writeTestImage(t, "fridge.png")
	if err := a.SubmitImage(context.Background(), path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.View() != domain.ViewRecipes {
		t.Fatalf("expected recipes view, got %s", a.View())
	}
	if a.Loading() {
		t.Fatal("loading flag should clear after completion")
	}
	if a.ImagePath() != path {
		t.Fatalf("expected image path %q, got %q", path, a.ImagePath())
	}

	// Filters reach the generator in canonical order.
	want := []domain.DietaryFilter{domain.FilterVegetarian, domain.FilterVegan}
	if len(gen.filters) != len(want) {
		t.Fatalf("expected %d filters, got %v", len(want), gen.filters)
	}
	for i, f := range want {
		if gen.filters[i] != f {
			t.Fatalf("filter %d: expected %s, got %s", i, f, gen.filters[i])
		}
	}
}

func TestSubmitImageUnsupportedType(t *testing.T) {
	a := newTestApp(&fakeGenerator{result: testAnalysis()}, nil)

	if err := a.SubmitImage(context.Background(), "notes.txt"); err == nil {
		t.Fatal("expected an error for an unsupported extension")
	}
	if a.View() != domain.ViewUpload {
		t.Fatal("a rejected upload must stay on the upload view")
	}
	if a.Loading() {
		t.Fatal("loading flag should clear after a validation error")
	}
	if a.ErrorMessage() == "" {
		t.Fatal("expected an inline error message")
	}
}

func TestSubmitImageGenerationFailure(t *testing.T) {
	a := newTestApp(&fakeGenerator{err: domain.ErrGeneration}, nil)

	path := writeTestImage(t, "fridge.jpg")
	if err := a.SubmitImage(context.Background(), path); !errors.Is(err, domain.ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
	if a.View() != domain.ViewUpload {
		t.Fatal("a failed analysis must stay on the upload view")
	}
	if a.ErrorMessage() != domain.ErrGeneration.Error() {
		t.Fatalf("expected the generation message, got %q", a.ErrorMessage())
	}
	if a.Analysis() != nil {
		t.Fatal("no analysis should be stored on failure")
	}
}

func TestSubmitImageWhileLoadingIsRejected(t *testing.T) {
	release := make(chan struct{})
	gen := &fakeGenerator{result: testAnalysis(), release: release}
	a := newTestApp(gen, nil)
	path := writeTestImage(t, "fridge.png")

	firstDone := make(chan error, 1)
	go func() { firstDone <- a.SubmitImage(context.Background(), path) }()

	waitLoading(t, a)

	if err := a.SubmitImage(context.Background(), path); !errors.Is(err, domain.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	// The rejection leaves no inline message; callers report ErrBusy
	// itself.
	if a.ErrorMessage() != "" {
		t.Fatalf("unexpected inline error %q", a.ErrorMessage())
	}

	close(release)
	select {
	case err := <-firstDone:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first upload did not complete in time")
	}
	if a.View() != domain.ViewRecipes {
		t.Fatalf("expected recipes view, got %s", a.View())
	}
}

func waitLoading(t *testing.T, a *App) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !a.Loading() {
		if time.Now().After(deadline) {
			t.Fatal("upload never entered the loading state")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestToggleFilter(t *testing.T) {
	a := newTestApp(&fakeGenerator{}, nil)

	if !a.ToggleFilter(domain.FilterKeto) {
		t.Fatal("first toggle should activate")
	}
	if a.ToggleFilter(domain.FilterKeto) {
		t.Fatal("second toggle should deactivate")
	}
	if len(a.ActiveFilters()) != 0 {
		t.Fatalf("expected no active filters, got %v", a.ActiveFilters())
	}
}

func submitTestAnalysis(t *testing.T, a *App) {
	t.Helper()
	if err := a.SubmitImage(context.Background(), writeTestImage(t, "fridge.png")); err != nil {
		t.Fatal(err)
	}
}

func TestSelectRecipe(t *testing.T) {
	a := newTestApp(&fakeGenerator{result: testAnalysis()}, nil)

	// Selecting before any analysis fails.
	if err := a.SelectRecipe(0); !errors.Is(err, domain.ErrNoRecipeSelected) {
		t.Fatalf("expected ErrNoRecipeSelected, got %v", err)
	}

	submitTestAnalysis(t, a)

	if err := a.SelectRecipe(5); err == nil {
		t.Fatal("expected an error for an out-of-range index")
	}
	if err := a.SelectRecipe(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.View() != domain.ViewCooking {
		t.Fatalf("expected cooking view, got %s", a.View())
	}
	if a.StepIndex() != 0 {
		t.Fatal("selection must reset the cooking position")
	}
	r, ok := a.CurrentRecipe()
	if !ok || r.Name != "Scrambled Eggs" {
		t.Fatalf("unexpected selection: %+v", r)
	}
}

func TestStepNavigationClamps(t *testing.T) {
	a := newTestApp(&fakeGenerator{result: testAnalysis()}, nil)
	submitTestAnalysis(t, a)
	if err := a.SelectRecipe(0); err != nil {
		t.Fatal(err)
	}

	// Back at the first step is a no-op.
	a.RetreatStep()
	if a.StepIndex() != 0 {
		t.Fatalf("expected step 0, got %d", a.StepIndex())
	}

	// Forward past the last step is a no-op.
	for i := 0; i < 10; i++ {
		a.AdvanceStep()
	}
	if a.StepIndex() != 2 {
		t.Fatalf("expected step 2, got %d", a.StepIndex())
	}
	step, ok := a.CurrentStep()
	if !ok || step != "Serve." {
		t.Fatalf("unexpected step %q", step)
	}

	a.RetreatStep()
	if a.StepIndex() != 1 {
		t.Fatalf("expected step 1, got %d", a.StepIndex())
	}
}

func TestExitCookingKeepsSelection(t *testing.T) {
	narr := &fakeNarrator{}
	a := newTestApp(&fakeGenerator{result: testAnalysis()}, narr)
	submitTestAnalysis(t, a)
	if err := a.SelectRecipe(1); err != nil {
		t.Fatal(err)
	}

	a.ExitCooking()
	if a.View() != domain.ViewRecipes {
		t.Fatalf("expected recipes view, got %s", a.View())
	}
	if narr.stops != 1 {
		t.Fatal("leaving cooking mode must stop narration")
	}
	if r, ok := a.CurrentRecipe(); !ok || r.Name != "Pancakes" {
		t.Fatal("the selection should survive leaving cooking mode")
	}
}

func TestReadStepReportsAudioError(t *testing.T) {
	narr := &fakeNarrator{err: domain.ErrSynthesis}
	a := newTestApp(&fakeGenerator{result: testAnalysis()}, narr)
	submitTestAnalysis(t, a)
	if err := a.SelectRecipe(0); err != nil {
		t.Fatal(err)
	}

	if a.ReadCurrentStepAloud(context.Background(), nil) {
		t.Fatal("narration should not report started on failure")
	}
	if a.Speaking() {
		t.Fatal("a failed narration must leave the narrator idle")
	}
	if a.AudioError() != domain.ErrSynthesis.Error() {
		t.Fatalf("expected the synthesis message, got %q", a.AudioError())
	}
	if a.StepIndex() != 0 {
		t.Fatal("a failed narration must not move the cooking position")
	}
}

func TestReadStepNotifiesLateAudioError(t *testing.T) {
	narr := &fakeNarrator{}
	a := newTestApp(&fakeGenerator{result: testAnalysis()}, narr)
	submitTestAnalysis(t, a)
	if err := a.SelectRecipe(0); err != nil {
		t.Fatal(err)
	}

	notified := make(chan error, 1)
	if !a.ReadCurrentStepAloud(context.Background(), func(err error) { notified <- err }) {
		t.Fatal("expected narration to start")
	}
	if a.AudioError() != "" {
		t.Fatal("no audio error should be stored while narration is in flight")
	}

	// The remote synthesis fails after the toggle already returned.
	narr.finish(domain.ErrNoAudio)

	select {
	case err := <-notified:
		if !errors.Is(err, domain.ErrNoAudio) {
			t.Fatalf("expected ErrNoAudio, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("completion was never reported")
	}

	// The inline error is stored before the caller is notified, so a
	// notify handler can surface it.
	if a.AudioError() != domain.ErrNoAudio.Error() {
		t.Fatalf("expected the no-audio message, got %q", a.AudioError())
	}
	if a.Speaking() {
		t.Fatal("a failed narration must leave the narrator idle")
	}
}

func TestReadStepWithoutNarrator(t *testing.T) {
	a := newTestApp(&fakeGenerator{result: testAnalysis()}, nil)
	submitTestAnalysis(t, a)
	if err := a.SelectRecipe(0); err != nil {
		t.Fatal(err)
	}

	if a.ReadCurrentStepAloud(context.Background(), nil) {
		t.Fatal("narration cannot start without a narrator")
	}
	if a.AudioError() == "" {
		t.Fatal("expected an inline hint that speech is unavailable")
	}
}

func TestShoppingViewTransitions(t *testing.T) {
	a := newTestApp(&fakeGenerator{result: testAnalysis()}, nil)

	// Shopping is only reachable from the recipe list.
	a.OpenShopping()
	if a.View() != domain.ViewUpload {
		t.Fatalf("expected upload view, got %s", a.View())
	}

	submitTestAnalysis(t, a)
	a.OpenShopping()
	if a.View() != domain.ViewShopping {
		t.Fatalf("expected shopping view, got %s", a.View())
	}
	a.CloseShopping()
	if a.View() != domain.ViewRecipes {
		t.Fatalf("expected recipes view, got %s", a.View())
	}
}

func TestResetPreservesShoppingList(t *testing.T) {
	narr := &fakeNarrator{}
	a := newTestApp(&fakeGenerator{result: testAnalysis()}, narr)
	submitTestAnalysis(t, a)
	if err := a.SelectRecipe(0); err != nil {
		t.Fatal(err)
	}

	added := a.AddToShoppingList(a.MissingForCurrent())
	if added == 0 {
		t.Fatal("expected missing ingredients to be added")
	}

	a.Reset()
	if a.View() != domain.ViewUpload {
		t.Fatalf("expected upload view, got %s", a.View())
	}
	if a.Analysis() != nil {
		t.Fatal("reset must discard the analysis")
	}
	if _, ok := a.CurrentRecipe(); ok {
		t.Fatal("reset must discard the selection")
	}
	if narr.stops != 1 {
		t.Fatal("reset must stop narration")
	}
	if a.ShoppingList().Len() != added {
		t.Fatal("the shopping list must survive a reset")
	}
}

func TestMissingIngredients(t *testing.T) {
	recipe := &domain.Recipe{
		Ingredients: []domain.Ingredient{
			{Name: "Eggs", Quantity: "3"},          // exact match (case-insensitive)
			{Name: "Whole milk", Quantity: "50ml"}, // covered via substring "milk"
			{Name: "Chives", Quantity: "1 tbsp"},   // missing
			{Name: "Butter", Quantity: "20g"},      // exact match
		},
	}
	identified := []string{"eggs", "milk", "butter"}

	missing := MissingIngredients(recipe, identified)
	if len(missing) != 1 {
		t.Fatalf("expected 1 missing ingredient, got %v", missing)
	}
	if missing[0].Name != "Chives" {
		t.Fatalf("expected Chives, got %q", missing[0].Name)
	}
}

func TestMissingIngredientsAllCovered(t *testing.T) {
	recipe := &domain.Recipe{
		Ingredients: []domain.Ingredient{{Name: "Eggs", Quantity: "2"}},
	}
	if missing := MissingIngredients(recipe, []string{"Eggs"}); len(missing) != 0 {
		t.Fatalf("expected nothing missing, got %v", missing)
	}
}

func TestMissingIngredientsEqualityBeatsSubstring(t *testing.T) {
	recipe := &domain.Recipe{
		Ingredients: []domain.Ingredient{
			{Name: "Butter", Quantity: "20g"},
			{Name: "Milk", Quantity: "1l"},
		},
	}
	identified := []string{"milk", "eggs"}

	missing := MissingIngredients(recipe, identified)
	if len(missing) != 1 || missing[0].Name != "Butter" {
		t.Fatalf("expected only Butter missing, got %v", missing)
	}
}

func TestMissingIngredientsNoIdentified(t *testing.T) {
	recipe := &domain.Recipe{
		Ingredients: []domain.Ingredient{
			{Name: "Flour", Quantity: "200g"},
			{Name: "Sugar", Quantity: "100g"},
		},
	}
	if missing := MissingIngredients(recipe, nil); len(missing) != 2 {
		t.Fatalf("expected everything missing, got %v", missing)
	}
}
