package audio

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/Chitrank-Dixit/pict2recipe/internal/domain"
	"github.com/Chitrank-Dixit/pict2recipe/internal/logger"
)

// Compile-time interface check.
var _ domain.AudioSink = (*Player)(nil)

// Player plays PCM buffers through the system audio device via oto.
type Player struct {
	ctx    *oto.Context
	log    *logger.Logger
	mu     sync.Mutex
	active *oto.Player // currently playing, nil when idle
}

// NewPlayer creates an audio player. Initializes the system audio
// context at the fixed narration format. Returns an error if the audio
// device is unavailable.
func NewPlayer(log *logger.Logger) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-readyChan

	log.Debug("audio player initialized (rate=%d, channels=%d)", SampleRate, ChannelCount)
	return &Player{ctx: ctx, log: log}, nil
}

// Play re-interleaves the buffer into 16-bit little-endian PCM and plays
// it. Blocks until playback finishes, Stop is called, or ctx is done.
func (p *Player) Play(ctx context.Context, buf *domain.PCMBuffer) error {
	if buf.Channels != ChannelCount || buf.SampleRate != SampleRate {
		return fmt.Errorf("%w: buffer is %dch@%dHz, device is %dch@%dHz",
			domain.ErrFormat, buf.Channels, buf.SampleRate, ChannelCount, SampleRate)
	}

	pcm := interleave(buf)
	player := p.ctx.NewPlayer(bytes.NewReader(pcm))

	p.mu.Lock()
	p.active = player
	p.mu.Unlock()

	player.Play()
	p.log.Debug("audio player: playing %d frames", buf.Len())

	// Wait for playback to complete or be interrupted.
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			p.clearActive()
			player.Close()
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}

	p.clearActive()
	return player.Close()
}

// Stop interrupts the currently playing audio, if any. Safe to call
// concurrently and when nothing is playing.
func (p *Player) Stop() {
	p.mu.Lock()
	active := p.active
	p.mu.Unlock()

	if active != nil {
		active.Pause()
		p.log.Debug("audio player: interrupted")
	}
}

func (p *Player) clearActive() {
	p.mu.Lock()
	p.active = nil
	p.mu.Unlock()
}

// interleave converts normalized per-channel samples back into
// interleaved 16-bit little-endian PCM for the device.
func interleave(buf *domain.PCMBuffer) []byte {
	frames := buf.Len()
	out := make([]byte, frames*buf.Channels*2)
	for i := 0; i < frames; i++ {
		for c := 0; c < buf.Channels; c++ {
			v := buf.Samples[c][i]
			if v > 1.0 {
				v = 1.0
			} else if v < -1.0 {
				v = -1.0
			}
			s := int16(v * 32767)
			off := (i*buf.Channels + c) * 2
			out[off] = byte(s)
			out[off+1] = byte(s >> 8)
		}
	}
	return out
}
