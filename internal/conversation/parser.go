// Package conversation provides intent parsing for the command prompt.
package conversation

import (
	"context"
	"regexp"
	"strings"

	"github.com/Chitrank-Dixit/pict2recipe/internal/domain"
	"github.com/Chitrank-Dixit/pict2recipe/internal/logger"
)

// Compile-time interface check.
var _ domain.IntentParser = (*KeywordParser)(nil)

// KeywordParser matches user input to intents using keywords and simple
// patterns. Swap this out for an LLM-backed parser when ready.
type KeywordParser struct {
	log      *logger.Logger
	patterns []patternRule
}

type patternRule struct {
	regex  *regexp.Regexp
	intent domain.IntentType
}

// NewKeywordParser creates a keyword-based intent parser.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	p := &KeywordParser{log: log}
	p.patterns = []patternRule{
		{regexp.MustCompile(`(?i)^(next|done|continue|n|advance|forward)$`), domain.IntentNextStep},
		{regexp.MustCompile(`(?i)^(back|previous|prev|b)$`), domain.IntentPrevStep},
		{regexp.MustCompile(`(?i)^(read|speak|say|aloud|play)$`), domain.IntentReadStep},
		{regexp.MustCompile(`(?i)^(list|recipes|menu|browse)$`), domain.IntentListRecipes},
		{regexp.MustCompile(`(?i)^(shopping|shop|basket|groceries)$`), domain.IntentShowShopping},
		{regexp.MustCompile(`(?i)^(add|add missing|buy)$`), domain.IntentAddMissing},
		{regexp.MustCompile(`(?i)^(start over|reset|restart|new photo)$`), domain.IntentReset},
		{regexp.MustCompile(`(?i)^(help|h|\?)$`), domain.IntentHelp},
		{regexp.MustCompile(`(?i)^(quit|exit|q)$`), domain.IntentQuit},
	}
	return p
}

// prefixRules map "<keyword> <payload>" commands to payload-carrying
// intents.
var prefixRules = []struct {
	prefix string
	intent domain.IntentType
}{
	{"upload", domain.IntentUpload},
	{"analyze", domain.IntentUpload},
	{"photo", domain.IntentUpload},
	{"filter", domain.IntentToggleFilter},
	{"select", domain.IntentSelectRecipe},
	{"pick", domain.IntentSelectRecipe},
	{"cook", domain.IntentSelectRecipe},
}

// Parse converts user input into an intent.
func (p *KeywordParser) Parse(ctx context.Context, input string) (*domain.Intent, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return &domain.Intent{Type: domain.IntentUnknown}, nil
	}

	p.log.Debug("parsing input: %q", trimmed)

	// A bare number selects a recipe (e.g. "1" .. "5").
	if len(trimmed) <= 2 && isDigits(trimmed) {
		return &domain.Intent{Type: domain.IntentSelectRecipe, Payload: trimmed}, nil
	}

	for _, rule := range p.patterns {
		if rule.regex.MatchString(trimmed) {
			p.log.Debug("matched intent: %s", rule.intent)
			return &domain.Intent{Type: rule.intent}, nil
		}
	}

	// "<keyword> <payload>" commands: upload path, filter name, select n.
	lower := strings.ToLower(trimmed)
	for _, rule := range prefixRules {
		if strings.HasPrefix(lower, rule.prefix+" ") {
			payload := strings.TrimSpace(trimmed[len(rule.prefix):])
			return &domain.Intent{Type: rule.intent, Payload: payload}, nil
		}
	}

	// A bare path to an image file counts as an upload.
	if looksLikeImagePath(lower) {
		return &domain.Intent{Type: domain.IntentUpload, Payload: trimmed}, nil
	}

	// A bare filter name toggles that filter.
	if _, ok := domain.ParseDietaryFilter(lower); ok {
		return &domain.Intent{Type: domain.IntentToggleFilter, Payload: lower}, nil
	}

	p.log.Debug("no match, returning unknown intent")
	return &domain.Intent{Type: domain.IntentUnknown, Payload: trimmed}, nil
}

var imagePathSuffixes = []string{".png", ".jpg", ".jpeg", ".webp"}

func looksLikeImagePath(s string) bool {
	for _, suffix := range imagePathSuffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
