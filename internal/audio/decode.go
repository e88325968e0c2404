// Package audio decodes the raw PCM payloads returned by the speech
// synthesis endpoint and plays them through the system audio device.
package audio

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/Chitrank-Dixit/pict2recipe/internal/domain"
)

// Audio parameters matching the fixed output format of the synthesis
// endpoint: 24 kHz mono 16-bit PCM.
const (
	SampleRate   = 24000
	ChannelCount = 1
	BitDepth     = 16
)

// DecodePayload decodes a base64 audio payload into raw bytes. Malformed
// input (non-alphabet characters, invalid padding) fails with
// domain.ErrDecode.
func DecodePayload(b64 string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	return raw, nil
}

// BuildBuffer interprets raw as 16-bit little-endian signed PCM,
// normalizes each sample to [-1.0, 1.0] by dividing by 32768, and
// de-interleaves into channels separate sequences of equal length
// len(raw)/2/channels. Fails with domain.ErrFormat when the byte count
// is not a whole number of frames.
func BuildBuffer(raw []byte, sampleRate, channels int) (*domain.PCMBuffer, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d, channels %d", domain.ErrFormat, sampleRate, channels)
	}

	frameSize := 2 * channels
	if len(raw)%frameSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of %d-byte frames", domain.ErrFormat, len(raw), frameSize)
	}

	frames := len(raw) / frameSize
	samples := make([][]float64, channels)
	for c := range samples {
		samples[c] = make([]float64, frames)
	}

	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			off := (i*channels + c) * 2
			s := int16(binary.LittleEndian.Uint16(raw[off : off+2]))
			samples[c][i] = float64(s) / 32768.0
		}
	}

	return &domain.PCMBuffer{
		SampleRate: sampleRate,
		Channels:   channels,
		Samples:    samples,
	}, nil
}
