package chorale

import "time"

// Processor implements a node's per-tick behaviour. Processors are
// single-owner resources: created on the control thread, moved to the
// audio thread on the first publish that carries them, and never
// duplicated. Process runs on the audio thread and must not allocate,
// block, lock or perform I/O.
//
// By the time Process is invoked, every predecessor of the node has
// already run this tick. The processor must write exactly
// ctx.NumFrames samples to each output audio port, and any events it
// emits must carry timestamps at or after ctx.Timestamp.
type Processor interface {
	Process(ctx *ProcessContext)
}

// ProcessContext carries everything a processor may touch during one
// tick. A single context value is reused across all Process calls in a
// tick; processors must not retain it.
type ProcessContext struct {
	// Graph is the compiled graph, for reading predecessor outputs.
	Graph *Graph
	// Node is the compiled node being processed; Node.Desc is its
	// descriptor.
	Node *Node
	// NumFrames is the number of sample frames to produce.
	NumFrames int
	// Timestamp is the tick's session time.
	Timestamp time.Duration
	// SampleRate of the running device.
	SampleRate float64
	// AudioOut has one writable single-channel buffer of NumFrames
	// samples per audio output port. Contents are whatever the processor
	// last wrote; fill every frame you intend to expose.
	AudioOut [][]float32
	// EventOut has one sequence per event output port, emptied before
	// the call. Append to emit.
	EventOut [][]Event
}

// AudioIn resolves audio input port i to its source samples, or nil when
// the port is disconnected.
func (ctx *ProcessContext) AudioIn(i int) []float32 {
	c := ctx.Node.Desc.AudioInputs[i]
	if !c.Connected() {
		return nil
	}
	return ctx.Graph.Node(c.Node).AudioOut(c.Port)
}

// EventIn resolves event input port i to its source events, or nil when
// the port is disconnected.
func (ctx *ProcessContext) EventIn(i int) []Event {
	c := ctx.Node.Desc.EventInputs[i]
	if !c.Connected() {
		return nil
	}
	return ctx.Graph.Node(c.Node).EventOut(c.Port)
}

// Emit appends an event to event output port i.
func (ctx *ProcessContext) Emit(i int, ev Event) {
	ctx.EventOut[i] = append(ctx.EventOut[i], ev)
}
