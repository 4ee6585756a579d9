package chorale

import (
	"github.com/charmbracelet/log"
)

// audioBuffers holds a node's output audio: one single-channel buffer per
// output port. Buffers are allocated once at graph compile time and only
// reallocated if the device asks for more frames than the allocated
// capacity, which is an exceptional, logged event.
type audioBuffers struct {
	ports     [][]float32 // full allocated capacity
	active    [][]float32 // ports re-sliced to the current frame count
	capFrames int
}

func newAudioBuffers(numPorts, numFrames int) *audioBuffers {
	b := &audioBuffers{
		ports:     make([][]float32, numPorts),
		active:    make([][]float32, numPorts),
		capFrames: numFrames,
	}
	for i := range b.ports {
		b.ports[i] = make([]float32, numFrames)
	}
	return b
}

// prepare sets the active frame count for all ports, reallocating if the
// request exceeds the allocated capacity.
func (b *audioBuffers) prepare(numFrames int, owner NodeID) {
	if numFrames > b.capFrames {
		log.Warn("allocating audio buffers on the audio thread",
			"node", owner, "frames", numFrames, "had", b.capFrames)
		metricBufferResizes.Inc()
		for i := range b.ports {
			b.ports[i] = make([]float32, numFrames)
		}
		b.capFrames = numFrames
	}
	for i := range b.ports {
		b.active[i] = b.ports[i][:numFrames]
	}
}

// eventBuffers holds a node's output events, one ordered sequence per
// event output port. Cleared at the start of every tick the node runs in;
// capacity is retained so steady-state ticking does not allocate.
type eventBuffers struct {
	ports [][]Event
}

func newEventBuffers(numPorts int) *eventBuffers {
	return &eventBuffers{ports: make([][]Event, numPorts)}
}

func (b *eventBuffers) prepare() {
	for i := range b.ports {
		b.ports[i] = b.ports[i][:0]
	}
}
