package chorale

import (
	"time"

	"gitlab.com/gomidi/midi/v2"
)

// Processors used across the test suite.

// constant writes a fixed value to every frame of output port 0.
type constant struct {
	value float32
}

func (c constant) Process(ctx *ProcessContext) {
	out := ctx.AudioOut[0]
	for i := 0; i < ctx.NumFrames; i++ {
		out[i] = c.value
	}
}

// sumInputs adds the first output port of every predecessor into output
// port 0.
type sumInputs struct{}

func (sumInputs) Process(ctx *ProcessContext) {
	out := ctx.AudioOut[0]
	for i := range out {
		out[i] = 0
	}
	for _, pred := range ctx.Node.Desc.InputNodes {
		in := ctx.Graph.Node(pred).AudioOut(0)
		for i := 0; i < ctx.NumFrames; i++ {
			out[i] += in[i]
		}
	}
}

// recorder appends its node id to a shared log each time it runs.
type recorder struct {
	log *[]NodeID
}

func newRecorderLog() (*[]NodeID, func() Processor) {
	var log []NodeID
	return &log, func() Processor { return recorder{log: &log} }
}

func (r recorder) Process(ctx *ProcessContext) {
	*r.log = append(*r.log, ctx.Node.Desc.ID)
	for _, out := range ctx.AudioOut {
		for i := range out {
			out[i] = 0
		}
	}
}

// emitter emits one note-on per configured timestamp on event port 0.
type emitter struct {
	at []time.Duration
}

func (e emitter) Process(ctx *ProcessContext) {
	for _, ts := range e.at {
		ctx.Emit(0, Event{Timestamp: ts, Message: midi.NoteOn(0, 60, 100)})
	}
}

// nop does nothing; for nodes that only exist to shape the graph.
type nop struct{}

func (nop) Process(ctx *ProcessContext) {}

// tickOnce publishes the description and runs one stereo tick of the
// given frame count, returning the device buffer.
func tickOnce(g *AudioGraph, w *Worker, numFrames int, ts time.Duration) []float32 {
	g.Publish()
	data := make([]float32, 2*numFrames)
	w.Tick(2, data, ts)
	return data
}
