package chorale

import "fmt"

// Node is the compiled, audio-side form of one node: its description,
// the processor it owns, and its output buffers.
type Node struct {
	Desc      NodeDesc
	Processor Processor

	audio  *audioBuffers
	events *eventBuffers
}

// AudioOut returns the samples of audio output port i, valid for the
// duration of the current tick.
func (n *Node) AudioOut(i int) []float32 {
	return n.audio.active[i]
}

// EventOut returns the events emitted on event output port i this tick.
func (n *Node) EventOut(i int) []Event {
	return n.events.ports[i]
}

// Graph is the compiled, audio-side form of a description. It owns the
// processors and all output buffers, and carries pre-allocated scratch
// state so that scheduling a tick does not allocate.
type Graph struct {
	nodes      []*Node
	outputNode NodeID

	// scheduling scratch, sized at compile time
	reach    bitset
	stack    []NodeID
	incoming []int
	succs    [][]NodeID
	heap     []NodeID
	order    []NodeID

	mixdownWarned bool
}

// compileGraph builds the audio-side graph for a snapshot. Nodes whose
// snapshot slot carries no processor adopt the processor instance held by
// the previous graph for the same id, so an engine keeps running across
// structural edits without re-constructing its processors.
func compileGraph(snap *graphSnapshot, old *Graph, initialFrames int) *Graph {
	if old != nil {
		for id := range snap.processors {
			if snap.processors[id] == nil && id < len(old.nodes) {
				snap.processors[id] = old.nodes[id].Processor
				old.nodes[id].Processor = nil
			}
		}
	}

	n := len(snap.nodes)
	// A reachability walk pushes the start node, every always-run node and
	// the predecessors of each node it visits once.
	maxPushes := 1 + n
	for i := range snap.nodes {
		maxPushes += len(snap.nodes[i].InputNodes)
	}
	g := &Graph{
		nodes:      make([]*Node, n),
		outputNode: snap.outputNode,
		reach:      newBitset(n),
		stack:      make([]NodeID, 0, maxPushes),
		incoming:   make([]int, n),
		succs:      make([][]NodeID, n),
		heap:       make([]NodeID, 0, n),
		order:      make([]NodeID, 0, n),
	}
	for id := range snap.nodes {
		p := snap.processors[id]
		if p == nil {
			// A node with no processor anywhere means the control layer
			// published a broken snapshot; there is no way to produce
			// correct audio from here.
			panic(fmt.Sprintf("graph snapshot has no processor for node %d", id))
		}
		desc := snap.nodes[id]
		g.nodes[id] = &Node{
			Desc:      desc,
			Processor: p,
			audio:     newAudioBuffers(desc.NumAudioOutputs, initialFrames),
			events:    newEventBuffers(desc.NumEventOutputs),
		}
		for _, pred := range desc.InputNodes {
			g.succs[pred] = append(g.succs[pred], desc.ID)
		}
	}
	return g
}

// Node returns the compiled node with the given id.
func (g *Graph) Node(id NodeID) *Node {
	return g.nodes[id]
}

// NumNodes returns the node count.
func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

// OutputNode returns the designated sink, or NoNode.
func (g *Graph) OutputNode() NodeID {
	return g.outputNode
}
