package chorale

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// Stats accumulates audio callback activity and reports it on an
// interval. The audio thread only touches atomics; a goroutine owned by
// the control side does the logging. Useful mostly as a sign of life:
// a stalled callback count means the device stopped calling.
type Stats struct {
	ticks    atomic.Uint64
	frames   atomic.Uint64
	peakBits atomic.Uint32

	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// NewStats creates a reporter. An interval of 0 disables reporting;
// Add stays cheap either way.
func NewStats(interval time.Duration) *Stats {
	s := &Stats{
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go s.run()
	return s
}

// Add records one callback of numFrames frames and its output peak.
// Audio thread.
func (s *Stats) Add(numFrames int, peak float32) {
	s.ticks.Add(1)
	s.frames.Add(uint64(numFrames))
	if math.Float32frombits(s.peakBits.Load()) < peak {
		s.peakBits.Store(math.Float32bits(peak))
	}
}

// Close stops the reporting goroutine.
func (s *Stats) Close() {
	close(s.stop)
	<-s.done
}

func (s *Stats) run() {
	defer close(s.done)
	if s.interval <= 0 {
		<-s.stop
		return
	}
	t := time.NewTicker(s.interval)
	defer t.Stop()
	var lastTicks, lastFrames uint64
	first := true
	for {
		select {
		case <-s.stop:
			return
		case <-t.C:
			ticks := s.ticks.Load()
			frames := s.frames.Load()
			peak := math.Float32frombits(s.peakBits.Swap(0))
			// The first period starts mid-stream; skip it like any other
			// partial sample.
			if !first {
				log.Info("audio stream",
					"callbacks", ticks-lastTicks,
					"frames", frames-lastFrames,
					"rate_approx", float64(frames-lastFrames)/s.interval.Seconds(),
					"peak", peak)
			}
			first = false
			lastTicks, lastFrames = ticks, frames
		}
	}
}
