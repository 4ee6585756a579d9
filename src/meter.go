package chorale

import (
	"math"
	"sync/atomic"
)

// meterTau is the time constant, in seconds, of the peak decay and of the
// VU smoothing. Peak attack is instant.
const meterTau = 0.3

// Meter is a stereo pass-through tap (2 in, 2 out) that tracks peak and
// VU levels per channel. Levels are published through atomics so the
// control thread can poll them for display while the audio thread keeps
// writing.
type Meter struct {
	sampleRate float64
	peak       [2]float32
	vu         [2]float32
	peakBits   [2]atomic.Uint32
	vuBits     [2]atomic.Uint32
}

// NewMeter creates a meter for a device running at sampleRate.
func NewMeter(sampleRate float64) *Meter {
	return &Meter{sampleRate: sampleRate}
}

// Peak returns the current peak level of a channel. Control thread.
func (m *Meter) Peak(ch int) float32 {
	return math.Float32frombits(m.peakBits[ch].Load())
}

// VU returns the current VU level of a channel. Control thread.
func (m *Meter) VU(ch int) float32 {
	return math.Float32frombits(m.vuBits[ch].Load())
}

func (m *Meter) Process(ctx *ProcessContext) {
	for port, out := range ctx.AudioOut {
		in := ctx.AudioIn(port)
		if in == nil {
			for i := range out {
				out[i] = 0
			}
			continue
		}
		copy(out, in[:ctx.NumFrames])
		m.update(port, out[:ctx.NumFrames])
	}
}

func (m *Meter) update(ch int, samples []float32) {
	if len(samples) == 0 {
		return
	}

	dt := float32(len(samples)) / float32(m.sampleRate)
	a := dt / (dt + meterTau)

	var peak, sum float32
	for _, s := range samples {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
		sum += s
	}

	// Peak: instant attack, exponential decay.
	if peak >= m.peak[ch] {
		m.peak[ch] = peak
	} else {
		m.peak[ch] += a * (peak - m.peak[ch])
	}

	// VU: smoothed mean rectified level.
	avg := sum / float32(len(samples))
	m.vu[ch] += a * (avg - m.vu[ch])

	m.peakBits[ch].Store(math.Float32bits(m.peak[ch]))
	m.vuBits[ch].Store(math.Float32bits(m.vu[ch]))
}
