package domain

import "context"

// RecipeGenerator produces structured recipes from a photo of available
// ingredients. Implementations wrap a remote multimodal model; tests
// substitute a deterministic fake.
type RecipeGenerator interface {
	Generate(ctx context.Context, image []byte, mimeType string, filters []DietaryFilter) (*AnalysisResult, error)
}

// SpeechSynthesizer converts instruction text into a base64-encoded raw
// PCM payload at the fixed narration format (24 kHz mono 16-bit).
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

// AudioSink plays decoded PCM audio. Play blocks until playback finishes
// or Stop is called. Stop is safe to call concurrently and when nothing
// is playing.
type AudioSink interface {
	Play(ctx context.Context, buf *PCMBuffer) error
	Stop()
}

// IntentParser converts free-form user input into an intent.
type IntentParser interface {
	Parse(ctx context.Context, input string) (*Intent, error)
}
