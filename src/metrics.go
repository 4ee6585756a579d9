package chorale

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine counters. Increments are single atomic adds, which keeps them
// safe to touch from the audio thread.
var (
	metricTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chorale_ticks_total",
		Help: "Audio callbacks processed.",
	})
	metricSnapshots = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chorale_snapshots_total",
		Help: "Graph snapshots published to the audio thread.",
	})
	metricBufferResizes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chorale_buffer_resizes_total",
		Help: "Emergency audio buffer reallocations on the audio thread.",
	})
	metricMIDIEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chorale_midi_events_total",
		Help: "MIDI messages accepted from the input device.",
	})
	metricMIDIDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chorale_midi_events_dropped_total",
		Help: "MIDI messages dropped on ring overflow.",
	})
)
