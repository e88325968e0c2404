// Package speech implements spoken narration of cooking steps: a
// synthesis client over the model's audio-output mode, and a narrator
// that serializes synthesis and playback behind a single toggle.
package speech

import (
	"context"
	"encoding/base64"

	"google.golang.org/genai"

	"github.com/Chitrank-Dixit/pict2recipe/internal/domain"
	"github.com/Chitrank-Dixit/pict2recipe/internal/logger"
)

// DefaultModel is the model used for speech synthesis.
const DefaultModel = "gemini-2.5-flash-preview-tts"

// DefaultVoice is the prebuilt voice identity used for narration.
const DefaultVoice = "Leda"

// SynthesizerOption configures the Synthesizer.
type SynthesizerOption func(*Synthesizer)

// WithModel overrides the default synthesis model.
func WithModel(model string) SynthesizerOption {
	return func(s *Synthesizer) { s.model = model }
}

// WithVoice overrides the default voice name.
func WithVoice(voice string) SynthesizerOption {
	return func(s *Synthesizer) { s.voice = voice }
}

// Compile-time interface check.
var _ domain.SpeechSynthesizer = (*Synthesizer)(nil)

// Synthesizer is a stateless request/response adapter around the speech
// synthesis endpoint. One Synthesize call makes exactly one outbound
// request; there is no retry or caching.
type Synthesizer struct {
	genAI *genai.Client
	model string
	voice string
	log   *logger.Logger
}

// NewSynthesizer creates a speech synthesis client.
func NewSynthesizer(genAI *genai.Client, log *logger.Logger, opts ...SynthesizerOption) *Synthesizer {
	s := &Synthesizer{
		genAI: genAI,
		model: DefaultModel,
		voice: DefaultVoice,
		log:   log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Voice returns the configured voice name.
func (s *Synthesizer) Voice() string { return s.voice }

// Synthesize sends text to the model configured for audio-only output
// and returns the base64-encoded raw PCM payload from the first content
// part of the first candidate. A response with no audio part fails with
// domain.ErrNoAudio; any transport failure is logged and collapsed into
// domain.ErrSynthesis.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (string, error) {
	prompt := "Read the following cooking instruction aloud, clearly and at a calm pace: " + text

	s.log.Debug("speech: synthesizing %d chars with voice %s", len(text), s.voice)

	res, err := s.genAI.Models.GenerateContent(ctx, s.model, []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}, &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: s.voice,
				},
			},
		},
	})
	if err != nil {
		s.log.Error("speech: generating audio: %v", err)
		return "", domain.ErrSynthesis
	}

	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil ||
		len(res.Candidates[0].Content.Parts) == 0 {
		return "", domain.ErrNoAudio
	}
	part := res.Candidates[0].Content.Parts[0]
	if part.InlineData == nil || len(part.InlineData.Data) == 0 {
		return "", domain.ErrNoAudio
	}

	s.log.Debug("speech: got %d bytes of audio", len(part.InlineData.Data))
	return base64.StdEncoding.EncodeToString(part.InlineData.Data), nil
}
