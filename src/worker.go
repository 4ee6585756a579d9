package chorale

import (
	"time"

	"github.com/charmbracelet/log"
)

// DefaultInitialBufferFrames is the per-port buffer size nodes start out
// with. Production configurations should pre-size to the device's
// maximum buffer via Config so the audio thread never reallocates.
const DefaultInitialBufferFrames = 1024

// Worker is the audio-side half of a graph: it consumes published
// snapshots and runs one processing tick per device callback. All of its
// methods belong to the audio thread.
type Worker struct {
	q             *snapshotQueue
	graph         *Graph
	initialFrames int

	ctx   ProcessContext
	snaps []*graphSnapshot
}

// Tick runs one processing pass and lays the output node's buffers into
// data, a device buffer of channels*numFrames interleaved samples.
// timestamp is the tick's session time.
func (w *Worker) Tick(channels int, data []float32, timestamp time.Duration) {
	w.adoptSnapshots()
	metricTicks.Inc()

	numFrames := len(data) / channels

	if w.graph == nil || w.graph.outputNode == NoNode {
		zeroFill(data)
		return
	}

	g := w.graph
	order := g.schedule(g.outputNode)

	w.ctx.Graph = g
	w.ctx.NumFrames = numFrames
	w.ctx.Timestamp = timestamp
	for _, id := range order {
		node := g.nodes[id]
		node.audio.prepare(numFrames, id)
		node.events.prepare()

		w.ctx.Node = node
		w.ctx.AudioOut = node.audio.active
		w.ctx.EventOut = node.events.ports
		node.Processor.Process(&w.ctx)
	}

	w.mixdown(g.nodes[g.outputNode], channels, numFrames, data)
}

// SetSampleRate records the device rate handed to processors via the
// context. Call before the stream starts.
func (w *Worker) SetSampleRate(rate float64) {
	w.ctx.SampleRate = rate
}

// adoptSnapshots drains the handoff queue and compiles the newest
// description. Processors carried only by earlier snapshots are migrated
// forward first, so no processor is lost when several publishes land
// between two ticks.
func (w *Worker) adoptSnapshots() {
	w.snaps = w.q.drain(w.snaps[:0])
	if len(w.snaps) == 0 {
		return
	}
	for i := 1; i < len(w.snaps); i++ {
		prev, cur := w.snaps[i-1], w.snaps[i]
		for id := range cur.processors {
			if cur.processors[id] == nil && id < len(prev.processors) {
				cur.processors[id] = prev.processors[id]
				prev.processors[id] = nil
			}
		}
	}
	w.graph = compileGraph(w.snaps[len(w.snaps)-1], w.graph, w.initialFrames)
	for i := range w.snaps {
		w.snaps[i] = nil
	}
}

// mixdown interleaves the output node's single-channel port buffers into
// the device buffer. Ports map to device channels in order; a mismatch
// between port count and channel count is reported once per compiled
// graph and the missing channels are zero-filled.
func (w *Worker) mixdown(out *Node, channels, numFrames int, data []float32) {
	ports := len(out.audio.active)
	n := ports
	if channels < n {
		n = channels
	}
	if ports != channels && !w.graph.mixdownWarned {
		w.graph.mixdownWarned = true
		log.Warn("output node port count does not match device channels",
			"ports", ports, "channels", channels)
	}
	for ch := 0; ch < n; ch++ {
		src := out.audio.active[ch]
		for f := 0; f < numFrames; f++ {
			data[f*channels+ch] = src[f]
		}
	}
	for ch := n; ch < channels; ch++ {
		for f := 0; f < numFrames; f++ {
			data[f*channels+ch] = 0
		}
	}
}

func zeroFill(data []float32) {
	for i := range data {
		data[i] = 0
	}
}
