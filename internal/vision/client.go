// Package vision implements the recipe generation client: it sends a
// photo of refrigerator contents to a multimodal model and parses the
// schema-constrained JSON response into structured recipes.
package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/Chitrank-Dixit/pict2recipe/internal/domain"
	"github.com/Chitrank-Dixit/pict2recipe/internal/logger"
)

// DefaultModel is the multimodal model used for image analysis.
const DefaultModel = "gemini-2.5-flash"

// Option configures the Client.
type Option func(*Client)

// WithModel overrides the default model name.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// Compile-time interface check.
var _ domain.RecipeGenerator = (*Client)(nil)

// Client is a stateless request/response adapter around the generation
// endpoint. One Generate call makes exactly one outbound request; there
// is no retry, caching, or rate limiting.
type Client struct {
	genAI *genai.Client
	model string
	log   *logger.Logger
}

// NewClient creates a recipe generation client.
func NewClient(genAI *genai.Client, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		genAI: genAI,
		model: DefaultModel,
		log:   log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate sends the image plus dietary constraints to the model and
// returns the parsed analysis. Every failure mode (transport, schema
// violation, unparseable JSON) is logged and collapsed into
// domain.ErrGeneration; callers cannot distinguish them.
func (c *Client) Generate(ctx context.Context, image []byte, mimeType string, filters []domain.DietaryFilter) (*domain.AnalysisResult, error) {
	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(Instruction(filters)),
		},
	}}

	c.log.Debug("vision: analyzing %d image bytes (%s, filters=%d)", len(image), mimeType, len(filters))

	res, err := c.genAI.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   AnalysisSchema,
	})
	if err != nil {
		c.log.Error("vision: generating content: %v", err)
		return nil, domain.ErrGeneration
	}

	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil ||
		len(res.Candidates[0].Content.Parts) == 0 || res.Candidates[0].Content.Parts[0].Text == "" {
		c.log.Error("vision: unexpected response shape from model")
		return nil, domain.ErrGeneration
	}

	result, err := parseAnalysis(res.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		c.log.Error("vision: %v", err)
		return nil, domain.ErrGeneration
	}

	c.log.Info("vision: identified %d ingredients, generated %d recipes",
		len(result.IdentifiedIngredients), len(result.Recipes))
	return result, nil
}

// Instruction builds the natural-language request sent alongside the
// image. When filters are active it appends a conjunctive clause naming
// each filter exactly once, comma-joined.
func Instruction(filters []domain.DietaryFilter) string {
	var b strings.Builder
	b.WriteString("Analyze this image of the contents of a refrigerator. " +
		"Identify the food ingredients you can see, then suggest exactly 5 recipes " +
		"that can be made primarily from those ingredients.")
	if len(filters) > 0 {
		names := make([]string, len(filters))
		for i, f := range filters {
			names[i] = string(f)
		}
		fmt.Fprintf(&b, " Every recipe must satisfy all of the following dietary requirements: %s.",
			strings.Join(names, ", "))
	}
	return b.String()
}

// parseAnalysis parses the model's JSON response text.
func parseAnalysis(text string) (*domain.AnalysisResult, error) {
	var result domain.AnalysisResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("unmarshaling analysis: %w", err)
	}
	return &result, nil
}
