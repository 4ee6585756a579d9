package chorale

import (
	"errors"
	"sort"
)

// NodeID identifies a node in a graph. IDs are dense indices assigned at
// creation and are never reused.
type NodeID int

// NoNode is the null NodeID.
const NoNode NodeID = -1

// Wiring errors returned by the connect/disconnect operations.
var (
	ErrDestEqualsSrc       = errors.New("dest node must not equal src node")
	ErrDestOutOfBounds     = errors.New("dest node index out of bounds")
	ErrSrcOutOfBounds      = errors.New("src node index out of bounds")
	ErrDestPortOutOfBounds = errors.New("dest port out of bounds")
	ErrSrcPortOutOfBounds  = errors.New("src port out of bounds")
	ErrNodeNotFound        = errors.New("node not found")
)

// InputConnection is the state of one input port: either disconnected, or
// fed from an output port of another node.
type InputConnection struct {
	Node NodeID
	Port int
}

// Disconnected is the connection state of an unwired input port. It is
// not the zero value of InputConnection, which names node 0.
var Disconnected = InputConnection{Node: NoNode}

// Connected reports whether the port is wired to a source.
func (c InputConnection) Connected() bool {
	return c.Node != NoNode
}

// NodeShape declares the port layout of a node before it is added to a
// graph.
type NodeShape struct {
	numAudioInputs  int
	numAudioOutputs int
	numEventInputs  int
	numEventOutputs int
	alwaysRun       bool
}

// Audio sets the audio input and output port counts.
func (s NodeShape) Audio(inputs, outputs int) NodeShape {
	s.numAudioInputs = inputs
	s.numAudioOutputs = outputs
	return s
}

// Event sets the event input and output port counts.
func (s NodeShape) Event(inputs, outputs int) NodeShape {
	s.numEventInputs = inputs
	s.numEventOutputs = outputs
	return s
}

// AlwaysRun marks the node for inclusion in every tick regardless of
// whether the output node can reach it. Used for sources that must drain
// external queues unconditionally.
func (s NodeShape) AlwaysRun() NodeShape {
	s.alwaysRun = true
	return s
}

// NodeDesc is the declarative description of one node.
type NodeDesc struct {
	ID              NodeID
	AudioInputs     []InputConnection
	EventInputs     []InputConnection
	NumAudioOutputs int
	NumEventOutputs int
	AlwaysRun       bool

	// InputNodes is the deduplicated, sorted set of predecessor node ids,
	// derived from the connected input ports. Recomputed whenever a
	// connection mutation commits so it can never go stale.
	InputNodes []NodeID
}

func newNodeDesc(id NodeID, shape NodeShape) NodeDesc {
	audio := make([]InputConnection, shape.numAudioInputs)
	for i := range audio {
		audio[i] = Disconnected
	}
	event := make([]InputConnection, shape.numEventInputs)
	for i := range event {
		event[i] = Disconnected
	}
	return NodeDesc{
		ID:              id,
		AudioInputs:     audio,
		EventInputs:     event,
		NumAudioOutputs: shape.numAudioOutputs,
		NumEventOutputs: shape.numEventOutputs,
		AlwaysRun:       shape.alwaysRun,
	}
}

func (d *NodeDesc) updateInputNodes() {
	nodes := d.InputNodes[:0]
	for _, c := range d.AudioInputs {
		if c.Connected() {
			nodes = append(nodes, c.Node)
		}
	}
	for _, c := range d.EventInputs {
		if c.Connected() {
			nodes = append(nodes, c.Node)
		}
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })
	out := nodes[:0]
	for i, n := range nodes {
		if i == 0 || n != nodes[i-1] {
			out = append(out, n)
		}
	}
	d.InputNodes = out
}

func (d *NodeDesc) clone() NodeDesc {
	c := *d
	c.AudioInputs = append([]InputConnection(nil), d.AudioInputs...)
	c.EventInputs = append([]InputConnection(nil), d.EventInputs...)
	c.InputNodes = append([]NodeID(nil), d.InputNodes...)
	return c
}

// GraphDesc is the mutable, control-side description of a processing
// graph: node shapes, wiring, the designated output node and one
// processor slot per node.
//
// Wiring must stay acyclic; the mutation operations do not reject cycles
// and scheduling behaviour for a cyclic description is undefined.
type GraphDesc struct {
	nodes      []NodeDesc
	processors []Processor
	outputNode NodeID
}

// NewGraphDesc returns an empty description with no output node.
func NewGraphDesc() *GraphDesc {
	return &GraphDesc{outputNode: NoNode}
}

// NumNodes returns the number of nodes added so far.
func (d *GraphDesc) NumNodes() int {
	return len(d.nodes)
}

// Node returns the description of one node.
func (d *GraphDesc) Node(id NodeID) (*NodeDesc, error) {
	if id < 0 || int(id) >= len(d.nodes) {
		return nil, ErrNodeNotFound
	}
	return &d.nodes[id], nil
}

// AddNode installs a node with the given shape and processor, returning
// its id.
func (d *GraphDesc) AddNode(shape NodeShape, processor Processor) NodeID {
	id := NodeID(len(d.nodes))
	d.nodes = append(d.nodes, newNodeDesc(id, shape))
	d.processors = append(d.processors, processor)
	return id
}

// SetProcessor attaches a processor to a node whose shape was installed
// earlier. The previous processor, if any, is replaced.
func (d *GraphDesc) SetProcessor(id NodeID, processor Processor) error {
	if id < 0 || int(id) >= len(d.processors) {
		return ErrNodeNotFound
	}
	d.processors[id] = processor
	return nil
}

func (d *GraphDesc) checkConnect(dest NodeID, src NodeID) error {
	if dest == src {
		return ErrDestEqualsSrc
	}
	if dest < 0 || int(dest) >= len(d.nodes) {
		return ErrDestOutOfBounds
	}
	if src < 0 || int(src) >= len(d.nodes) {
		return ErrSrcOutOfBounds
	}
	return nil
}

// ConnectAudio wires audio output port srcPort of src into audio input
// port destPort of dest. An input port holds at most one connection; a
// second connect replaces the first.
func (d *GraphDesc) ConnectAudio(dest NodeID, destPort int, src NodeID, srcPort int) error {
	if err := d.checkConnect(dest, src); err != nil {
		return err
	}
	dn := &d.nodes[dest]
	if destPort < 0 || destPort >= len(dn.AudioInputs) {
		return ErrDestPortOutOfBounds
	}
	if srcPort < 0 || srcPort >= d.nodes[src].NumAudioOutputs {
		return ErrSrcPortOutOfBounds
	}
	dn.AudioInputs[destPort] = InputConnection{Node: src, Port: srcPort}
	dn.updateInputNodes()
	return nil
}

// ConnectEvent wires event ports; same contract as ConnectAudio.
func (d *GraphDesc) ConnectEvent(dest NodeID, destPort int, src NodeID, srcPort int) error {
	if err := d.checkConnect(dest, src); err != nil {
		return err
	}
	dn := &d.nodes[dest]
	if destPort < 0 || destPort >= len(dn.EventInputs) {
		return ErrDestPortOutOfBounds
	}
	if srcPort < 0 || srcPort >= d.nodes[src].NumEventOutputs {
		return ErrSrcPortOutOfBounds
	}
	dn.EventInputs[destPort] = InputConnection{Node: src, Port: srcPort}
	dn.updateInputNodes()
	return nil
}

// ConnectGrowInputs grows dest's audio input list to include destPort,
// filling new ports with Disconnected, then connects. Mix-bus nodes use
// this to accept an open-ended number of inputs.
func (d *GraphDesc) ConnectGrowInputs(dest NodeID, destPort int, src NodeID, srcPort int) error {
	if dest < 0 || int(dest) >= len(d.nodes) {
		return ErrDestOutOfBounds
	}
	dn := &d.nodes[dest]
	for len(dn.AudioInputs) <= destPort {
		dn.AudioInputs = append(dn.AudioInputs, Disconnected)
	}
	return d.ConnectAudio(dest, destPort, src, srcPort)
}

// DisconnectAudio clears audio input port destPort of dest.
func (d *GraphDesc) DisconnectAudio(dest NodeID, destPort int) error {
	if dest < 0 || int(dest) >= len(d.nodes) {
		return ErrDestOutOfBounds
	}
	dn := &d.nodes[dest]
	if destPort < 0 || destPort >= len(dn.AudioInputs) {
		return ErrDestPortOutOfBounds
	}
	dn.AudioInputs[destPort] = Disconnected
	dn.updateInputNodes()
	return nil
}

// DisconnectEvent clears event input port destPort of dest.
func (d *GraphDesc) DisconnectEvent(dest NodeID, destPort int) error {
	if dest < 0 || int(dest) >= len(d.nodes) {
		return ErrDestOutOfBounds
	}
	dn := &d.nodes[dest]
	if destPort < 0 || destPort >= len(dn.EventInputs) {
		return ErrDestPortOutOfBounds
	}
	dn.EventInputs[destPort] = Disconnected
	dn.updateInputNodes()
	return nil
}

// SetOutputNode designates the sink whose buffers feed the device.
func (d *GraphDesc) SetOutputNode(id NodeID) error {
	if id < 0 || int(id) >= len(d.nodes) {
		return ErrDestOutOfBounds
	}
	d.outputNode = id
	return nil
}

// OutputNode returns the designated sink, or NoNode.
func (d *GraphDesc) OutputNode() NodeID {
	return d.outputNode
}

// snapshot deep-copies the structural data and moves processor ownership
// out of the description. Processors already handed off by an earlier
// snapshot leave a nil slot behind; the audio side fills those from its
// previous graph by node id.
func (d *GraphDesc) snapshot() *graphSnapshot {
	nodes := make([]NodeDesc, len(d.nodes))
	for i := range d.nodes {
		nodes[i] = d.nodes[i].clone()
	}
	processors := make([]Processor, len(d.processors))
	copy(processors, d.processors)
	for i := range d.processors {
		d.processors[i] = nil
	}
	return &graphSnapshot{
		nodes:      nodes,
		processors: processors,
		outputNode: d.outputNode,
	}
}

// graphSnapshot is one published GraphDesc value in flight between the
// control thread and the audio thread.
type graphSnapshot struct {
	nodes      []NodeDesc
	processors []Processor
	outputNode NodeID
}
