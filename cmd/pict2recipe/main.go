// pict2recipe — turn a photo of your fridge into tonight's dinner.
//
// Usage:
//
//	pict2recipe [-verbose] [-quiet] [path/to/photo.jpg]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"google.golang.org/genai"

	"github.com/Chitrank-Dixit/pict2recipe/internal/app"
	"github.com/Chitrank-Dixit/pict2recipe/internal/audio"
	"github.com/Chitrank-Dixit/pict2recipe/internal/conversation"
	"github.com/Chitrank-Dixit/pict2recipe/internal/display"
	"github.com/Chitrank-Dixit/pict2recipe/internal/domain"
	"github.com/Chitrank-Dixit/pict2recipe/internal/logger"
	"github.com/Chitrank-Dixit/pict2recipe/internal/shopping"
	"github.com/Chitrank-Dixit/pict2recipe/internal/speech"
	"github.com/Chitrank-Dixit/pict2recipe/internal/vision"
)

// envGeminiAPIKey holds the Gemini API key; required.
const envGeminiAPIKey = "GEMINI_API_KEY"

func main() {
	_ = godotenv.Load()

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", ".p2r-logs/p2r.log", "file to write logs to (use \"stderr\" to log to console)")
	noSpeech := flag.Bool("no-speech", false, "disable step narration")
	visionModel := flag.String("model", vision.DefaultModel, "model used for image analysis and recipe generation")
	ttsModel := flag.String("tts-model", speech.DefaultModel, "model used for text-to-speech")
	voice := flag.String("voice", speech.DefaultVoice, "prebuilt narration voice")
	flag.Parse()

	// Configure logger.
	logLevel := logger.LevelNormal
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// Direct logs to a file by default so the REPL stays clean.
	var logOut io.Writer = os.Stderr
	if *logFile != "" && *logFile != "stderr" {
		dir := filepath.Dir(*logFile)
		if dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", *logFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// Redirect Go's default log package (used by third-party libs) to the
	// same output so it doesn't spam the terminal.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	apiKey := os.Getenv(envGeminiAPIKey)
	if apiKey == "" {
		fmt.Fprintf(os.Stderr, "error: %s is not set\n", envGeminiAPIKey)
		os.Exit(1)
	}

	// Set up context — cancelled when the UI quits.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	genAI, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  apiKey,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: creating Gemini client: %v\n", err)
		os.Exit(1)
	}

	// Wire dependencies.
	generator := vision.NewClient(genAI, log, vision.WithModel(*visionModel))
	list := shopping.NewList(log)
	parser := conversation.NewKeywordParser(log)

	// Narration is best-effort: a missing audio device degrades to a
	// text-only session instead of refusing to start.
	var narrator app.Narrator
	if !*noSpeech {
		player, err := audio.NewPlayer(log)
		if err != nil {
			log.Error("audio player init failed, narration disabled: %v", err)
		} else {
			synth := speech.NewSynthesizer(genAI, log,
				speech.WithModel(*ttsModel),
				speech.WithVoice(*voice),
			)
			narrator = speech.NewNarrator(synth, player, log)
			log.Info("narration enabled (model=%s, voice=%s)", *ttsModel, *voice)
		}
	}

	application := app.New(generator, narrator, list, log)

	ui := display.NewUI(func() display.State {
		return display.State{
			View:     application.View(),
			Filters:  application.ActiveFilters(),
			Loading:  application.Loading(),
			Speaking: application.Speaking(),
			Shopping: list.Len(),
		}
	})

	cli := &cliApp{
		app:    application,
		parser: parser,
		log:    log,
		ui:     ui,
	}

	fmt.Println(display.RenderBanner())
	fmt.Println(display.BannerStyle.Render("  Type a photo path to analyze it, 'help' for commands, 'quit' to exit."))
	fmt.Println()

	// A photo path on the command line starts the analysis immediately.
	initialPhoto := flag.Arg(0)

	// Run app logic in a background goroutine.
	go func() {
		ui.WaitReady()
		cli.run(ctx, initialPhoto)
		ui.Quit()
	}()

	// Bubble Tea owns the terminal — blocks until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()
}

type cliApp struct {
	app    *app.App
	parser domain.IntentParser
	log    *logger.Logger
	ui     *display.UI
}

func (a *cliApp) run(ctx context.Context, initialPhoto string) {
	a.showUploadPrompt()
	if initialPhoto != "" {
		a.upload(ctx, initialPhoto)
	}

	uiCh := a.ui.InputChan()

	for {
		var input string
		var ok bool

		select {
		case <-ctx.Done():
			return
		case input, ok = <-uiCh:
			if !ok {
				return
			}
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		intent, err := a.parser.Parse(ctx, input)
		if err != nil {
			a.log.Error("parsing input: %v", err)
			continue
		}

		a.log.Debug("intent: %s (payload=%q)", intent.Type, intent.Payload)
		if quit := a.handleIntent(ctx, intent); quit {
			return
		}
	}
}

// handleIntent dispatches one parsed command. Returns true on quit.
func (a *cliApp) handleIntent(ctx context.Context, intent *domain.Intent) bool {
	switch intent.Type {
	case domain.IntentHelp:
		a.showHelp()
	case domain.IntentUpload:
		a.upload(ctx, intent.Payload)
	case domain.IntentToggleFilter:
		a.toggleFilter(intent.Payload)
	case domain.IntentListRecipes:
		a.backToRecipes()
	case domain.IntentSelectRecipe:
		a.selectRecipe(intent.Payload)
	case domain.IntentNextStep:
		a.nextStep()
	case domain.IntentPrevStep:
		a.prevStep()
	case domain.IntentReadStep:
		a.readStep(ctx)
	case domain.IntentShowShopping:
		a.showShopping()
	case domain.IntentAddMissing:
		a.addMissing()
	case domain.IntentReset:
		a.reset()
	case domain.IntentQuit:
		a.ui.PrintChat("Happy cooking!")
		return true
	case domain.IntentUnknown:
		a.ui.PrintHint(fmt.Sprintf("Didn't catch that (%q). Type 'help' for commands.", intent.Payload))
	}
	return false
}

// ── Upload view ──────────────────────────────────────────────────

func (a *cliApp) showUploadPrompt() {
	a.ui.PrintHeader("Snap your fridge")
	a.ui.PrintBody("Type the path to a photo of your ingredients (png, jpg, or webp).")
	if filters := a.app.ActiveFilters(); len(filters) > 0 {
		a.ui.PrintHint("Active filters: " + joinFilters(filters))
	} else {
		a.ui.PrintHint("Optional: toggle dietary filters first, e.g. 'vegan' or 'filter keto'.")
	}
}

func (a *cliApp) upload(ctx context.Context, path string) {
	if path == "" {
		a.ui.PrintHint("Usage: upload <path-to-photo>")
		return
	}
	if a.app.View() != domain.ViewUpload {
		a.ui.PrintHint("Type 'start over' before analyzing a new photo.")
		return
	}

	a.ui.PrintChat("Analyzing your photo… this can take a few seconds.")
	if err := a.app.SubmitImage(ctx, path); err != nil {
		// Rejections like a still-running analysis return before an
		// inline message is stored.
		msg := a.app.ErrorMessage()
		if msg == "" {
			msg = err.Error()
		}
		a.ui.PrintUrgent(msg)
		return
	}
	a.showRecipes()
}

func (a *cliApp) toggleFilter(name string) {
	f, ok := domain.ParseDietaryFilter(strings.ToLower(name))
	if !ok {
		a.ui.PrintHint("Unknown filter. Available: " + joinFilters(domain.DietaryFilters))
		return
	}
	if a.app.ToggleFilter(f) {
		a.ui.PrintChat(fmt.Sprintf("Filter %s is on. It applies to the next photo.", f))
	} else {
		a.ui.PrintChat(fmt.Sprintf("Filter %s is off.", f))
	}
}

// ── Recipes view ─────────────────────────────────────────────────

func (a *cliApp) showRecipes() {
	analysis := a.app.Analysis()
	if analysis == nil {
		a.ui.PrintHint("No analysis yet — upload a photo first.")
		return
	}

	a.ui.PrintHeader("I spotted:")
	a.ui.PrintBody(strings.Join(analysis.IdentifiedIngredients, ", "))
	a.ui.Println("")

	a.ui.PrintHeader("Here's what you could cook:")
	a.ui.Println("")
	for i, r := range analysis.Recipes {
		a.ui.PrintBody(fmt.Sprintf("[%d] %s", i+1, r.Name))
		a.ui.PrintHint(fmt.Sprintf("%s · %s · %s", r.Difficulty, r.PrepTime, r.Calories))
		a.ui.Println("")
	}
	a.ui.PrintChat("Pick a recipe by number, or type 'help' for commands.")
}

func (a *cliApp) backToRecipes() {
	switch a.app.View() {
	case domain.ViewCooking:
		a.app.ExitCooking()
		a.showRecipes()
	case domain.ViewShopping:
		a.app.CloseShopping()
		a.showRecipes()
	case domain.ViewRecipes:
		a.showRecipes()
	default:
		a.ui.PrintHint("No recipes yet — upload a photo first.")
	}
}

func (a *cliApp) selectRecipe(payload string) {
	idx, err := strconv.Atoi(payload)
	if err != nil {
		a.ui.PrintHint(fmt.Sprintf("Pick a recipe by number, e.g. '1'. (%q)", payload))
		return
	}
	if err := a.app.SelectRecipe(idx - 1); err != nil {
		a.ui.PrintHint(err.Error())
		return
	}
	a.showRecipeDetail()
	a.showCurrentStep()
}

// ── Cooking view ─────────────────────────────────────────────────

func (a *cliApp) showRecipeDetail() {
	r, ok := a.app.CurrentRecipe()
	if !ok {
		return
	}

	a.ui.PrintHeader(fmt.Sprintf("=== %s ===", r.Name))
	a.ui.PrintHint(fmt.Sprintf("%s · %s · %s", r.Difficulty, r.PrepTime, r.Calories))

	a.ui.Println("")
	a.ui.PrintHeader("Ingredients:")
	for _, ing := range r.Ingredients {
		a.ui.PrintBody(fmt.Sprintf("  - %s (%s)", ing.Name, ing.Quantity))
	}

	if missing := a.app.MissingForCurrent(); len(missing) > 0 {
		a.ui.Println("")
		a.ui.PrintHint(fmt.Sprintf("%d ingredient(s) not in your photo — type 'add' to put them on the shopping list:", len(missing)))
		for _, ing := range missing {
			a.ui.PrintHint(fmt.Sprintf("  - %s (%s)", ing.Name, ing.Quantity))
		}
	}
	a.ui.Println("")
}

func (a *cliApp) showCurrentStep() {
	r, ok := a.app.CurrentRecipe()
	if !ok {
		a.ui.PrintHint("Pick a recipe first.")
		return
	}
	step, ok := a.app.CurrentStep()
	if !ok {
		return
	}

	a.ui.PrintHeader(fmt.Sprintf("Step %d/%d", a.app.StepIndex()+1, len(r.Instructions)))
	a.ui.PrintBody(step)
	a.ui.PrintHint("next · back · read · list · start over")
}

func (a *cliApp) nextStep() {
	if a.app.View() != domain.ViewCooking {
		a.ui.PrintHint("Pick a recipe first.")
		return
	}
	before := a.app.StepIndex()
	a.app.AdvanceStep()
	if a.app.StepIndex() == before {
		a.ui.PrintChat("That was the last step — enjoy your meal!")
		return
	}
	a.showCurrentStep()
}

func (a *cliApp) prevStep() {
	if a.app.View() != domain.ViewCooking {
		a.ui.PrintHint("Pick a recipe first.")
		return
	}
	before := a.app.StepIndex()
	a.app.RetreatStep()
	if a.app.StepIndex() == before {
		a.ui.PrintHint("Already at the first step.")
		return
	}
	a.showCurrentStep()
}

func (a *cliApp) readStep(ctx context.Context) {
	if a.app.View() != domain.ViewCooking {
		a.ui.PrintHint("Pick a recipe first.")
		return
	}
	// The remote call resolves after this returns; a late failure is
	// printed from the completion callback or it would never be seen.
	started := a.app.ReadCurrentStepAloud(ctx, func(err error) {
		if err != nil {
			a.ui.PrintUrgent(a.app.AudioError())
		}
	})
	if started {
		a.ui.PrintHint("Reading the step aloud — type 'read' again to stop.")
		return
	}
	if msg := a.app.AudioError(); msg != "" {
		a.ui.PrintUrgent(msg)
		return
	}
	a.ui.PrintHint("Stopped.")
}

// ── Shopping view ────────────────────────────────────────────────

func (a *cliApp) showShopping() {
	a.app.OpenShopping()
	if a.app.View() != domain.ViewShopping {
		a.ui.PrintHint("The shopping list lives on the recipe screen — type 'list' first.")
		return
	}

	items := a.app.ShoppingList().Items()
	if len(items) == 0 {
		a.ui.PrintHint("The shopping list is empty. Select a recipe and type 'add' to fill it.")
		return
	}

	a.ui.PrintHeader("Shopping list:")
	for _, ing := range items {
		a.ui.PrintBody(fmt.Sprintf("  - %s (%s)", ing.Name, ing.Quantity))
	}
	a.ui.PrintHint("Type 'list' to go back to the recipes.")
}

func (a *cliApp) addMissing() {
	missing := a.app.MissingForCurrent()
	if missing == nil {
		a.ui.PrintHint("Pick a recipe first — 'add' collects its missing ingredients.")
		return
	}
	if len(missing) == 0 {
		a.ui.PrintChat("Nothing missing — your fridge has it all.")
		return
	}

	added := a.app.AddToShoppingList(missing)
	a.ui.PrintChat(fmt.Sprintf("Added %d item(s) to the shopping list (%d total).",
		added, a.app.ShoppingList().Len()))
}

// ── Meta ─────────────────────────────────────────────────────────

func (a *cliApp) reset() {
	a.app.Reset()
	a.ui.PrintChat("Starting over. Your shopping list is kept.")
	a.ui.Println("")
	a.showUploadPrompt()
}

func (a *cliApp) showHelp() {
	a.ui.PrintHeader("Commands:")
	a.ui.PrintBody("  upload <path>    Analyze a photo of your ingredients")
	a.ui.PrintBody("  <path>.jpg       Bare image paths work too")
	a.ui.PrintBody("  filter <name>    Toggle a dietary filter: " + joinFilters(domain.DietaryFilters))
	a.ui.PrintBody("  list / recipes   Show the generated recipes")
	a.ui.PrintBody("  1, 2, 3...       Pick a recipe and start cooking")
	a.ui.PrintBody("  next / done      Move to the next step")
	a.ui.PrintBody("  back / prev      Move to the previous step")
	a.ui.PrintBody("  read             Read the current step aloud (again to stop)")
	a.ui.PrintBody("  add              Put the recipe's missing ingredients on the shopping list")
	a.ui.PrintBody("  shopping         Show the shopping list")
	a.ui.PrintBody("  start over       Discard the analysis and upload a new photo")
	a.ui.PrintBody("  help             Show this message")
	a.ui.PrintBody("  quit / exit      Exit")
}

func joinFilters(filters []domain.DietaryFilter) string {
	names := make([]string, len(filters))
	for i, f := range filters {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
