package speech

import (
	"context"
	"sync"

	"github.com/Chitrank-Dixit/pict2recipe/internal/audio"
	"github.com/Chitrank-Dixit/pict2recipe/internal/domain"
	"github.com/Chitrank-Dixit/pict2recipe/internal/logger"
)

// Narrator speaks one instruction at a time. A single synthesis request
// may be in flight; toggling while speaking stops playback instead of
// starting a second one. The synthesis request itself is not cancelable
// once sent, so a response arriving after a stop is discarded rather
// than played.
type Narrator struct {
	synth domain.SpeechSynthesizer
	sink  domain.AudioSink
	log   *logger.Logger

	mu       sync.Mutex
	speaking bool
	gen      uint64 // bumped on every stop; stale narrations check it
}

// NewNarrator creates a narrator with the given synthesizer and sink.
func NewNarrator(synth domain.SpeechSynthesizer, sink domain.AudioSink, log *logger.Logger) *Narrator {
	return &Narrator{
		synth: synth,
		sink:  sink,
		log:   log,
	}
}

// Speaking reports whether narration is currently synthesizing or playing.
func (n *Narrator) Speaking() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.speaking
}

// Toggle starts speaking text, or stops the active narration if one is
// in progress. Returns true when narration started. done is invoked once
// a started narration finishes or fails; it is not called when Toggle
// stopped an active narration, nor for a narration whose response was
// discarded after a stop.
func (n *Narrator) Toggle(ctx context.Context, text string, done func(error)) bool {
	n.mu.Lock()
	if n.speaking {
		n.gen++
		n.speaking = false
		n.mu.Unlock()
		n.sink.Stop()
		n.log.Debug("narrator: stopped by toggle")
		return false
	}
	n.speaking = true
	gen := n.gen
	n.mu.Unlock()

	go n.narrate(ctx, gen, text, done)
	return true
}

// Stop halts any active narration. Safe to call when idle.
func (n *Narrator) Stop() {
	n.mu.Lock()
	if !n.speaking {
		n.mu.Unlock()
		return
	}
	n.gen++
	n.speaking = false
	n.mu.Unlock()
	n.sink.Stop()
	n.log.Debug("narrator: stopped")
}

// stale reports whether a stop happened since the narration began.
func (n *Narrator) stale(gen uint64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return gen != n.gen
}

func (n *Narrator) narrate(ctx context.Context, gen uint64, text string, done func(error)) {
	err := n.speak(ctx, gen, text)

	n.mu.Lock()
	if gen != n.gen {
		n.mu.Unlock()
		// The user stopped this narration while the request was in
		// flight. Nothing is played and nothing is reported.
		n.log.Debug("narrator: dropping stale response")
		return
	}
	n.speaking = false
	n.mu.Unlock()

	if err != nil {
		n.log.Error("narrator: %v", err)
	}
	if done != nil {
		done(err)
	}
}

func (n *Narrator) speak(ctx context.Context, gen uint64, text string) error {
	payload, err := n.synth.Synthesize(ctx, text)
	if err != nil {
		return err
	}
	if n.stale(gen) {
		return nil
	}

	raw, err := audio.DecodePayload(payload)
	if err != nil {
		return err
	}
	buf, err := audio.BuildBuffer(raw, audio.SampleRate, audio.ChannelCount)
	if err != nil {
		return err
	}

	if n.stale(gen) {
		return nil
	}
	return n.sink.Play(ctx, buf)
}
