package domain

// PCMBuffer holds de-interleaved, normalized audio samples ready for
// playback. Samples has one sequence per channel, all of equal length,
// with values in [-1.0, 1.0].
type PCMBuffer struct {
	SampleRate int
	Channels   int
	Samples    [][]float64
}

// Len returns the number of frames per channel.
func (b *PCMBuffer) Len() int {
	if len(b.Samples) == 0 {
		return 0
	}
	return len(b.Samples[0])
}
