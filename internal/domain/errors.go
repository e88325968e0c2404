package domain

import "errors"

// Sentinel errors used across layers. The generation and synthesis
// messages are user-facing: every remote failure for an operation is
// collapsed into the one message, with the underlying cause kept for
// logs only.
var (
	ErrGeneration       = errors.New("Failed to analyze image and generate recipes")
	ErrSynthesis        = errors.New("Failed to generate audio for the step")
	ErrNoAudio          = errors.New("No audio data received")
	ErrDecode           = errors.New("malformed audio payload")
	ErrFormat           = errors.New("audio payload does not match the declared format")
	ErrNoRecipeSelected = errors.New("no recipe selected")
	ErrBusy             = errors.New("a request is already in flight")
)
