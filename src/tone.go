package chorale

import "math"

// Direct digital synthesis: a fixed sine table indexed by the upper bits
// of a 32-bit phase accumulator. One increment per sample, no drift.

var sineTable [256]float32

func init() {
	for i := range sineTable {
		sineTable[i] = float32(math.Sin(2 * math.Pi * float64(i) / 256))
	}
}

// Tone is a fixed-frequency sine source with one audio output port.
type Tone struct {
	phase uint32
	step  uint32
	amp   float32
}

// NewTone creates a sine source at the given frequency and amplitude for
// a device running at sampleRate.
func NewTone(freq, amp float32, sampleRate float64) *Tone {
	return &Tone{
		step: uint32(float64(freq) / sampleRate * (1 << 32)),
		amp:  amp,
	}
}

func (t *Tone) Process(ctx *ProcessContext) {
	out := ctx.AudioOut[0]
	for i := 0; i < ctx.NumFrames; i++ {
		out[i] = t.amp * sineTable[t.phase>>24]
		t.phase += t.step
	}
}
