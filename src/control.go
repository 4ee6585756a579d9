package chorale

// AudioGraph is the control-side interface to a processing graph. All
// methods are safe to call from the application's event loop; none of
// them ever block on the audio thread. Mutations accumulate in the
// description and cross to the audio thread only when Publish is called.
type AudioGraph struct {
	desc     *GraphDesc
	modified bool
	q        *snapshotQueue
}

// NewAudioGraph creates a connected control handle and audio-side worker
// pair. The worker belongs to the audio thread; everything else stays on
// the control thread.
func NewAudioGraph(initialFrames int) (*AudioGraph, *Worker) {
	if initialFrames <= 0 {
		initialFrames = DefaultInitialBufferFrames
	}
	q := &snapshotQueue{}
	ag := &AudioGraph{desc: NewGraphDesc(), q: q}
	w := &Worker{q: q, initialFrames: initialFrames}
	return ag, w
}

// AddNode installs a node and its processor, returning the new id.
func (a *AudioGraph) AddNode(shape NodeShape, processor Processor) NodeID {
	a.modified = true
	return a.desc.AddNode(shape, processor)
}

// SetProcessor attaches a processor to a node added earlier without one.
func (a *AudioGraph) SetProcessor(id NodeID, processor Processor) error {
	if err := a.desc.SetProcessor(id, processor); err != nil {
		return err
	}
	a.modified = true
	return nil
}

// ConnectAudio wires an audio edge. The description is unchanged when an
// error is returned.
func (a *AudioGraph) ConnectAudio(dest NodeID, destPort int, src NodeID, srcPort int) error {
	if err := a.desc.ConnectAudio(dest, destPort, src, srcPort); err != nil {
		return err
	}
	a.modified = true
	return nil
}

// ConnectEvent wires an event edge.
func (a *AudioGraph) ConnectEvent(dest NodeID, destPort int, src NodeID, srcPort int) error {
	if err := a.desc.ConnectEvent(dest, destPort, src, srcPort); err != nil {
		return err
	}
	a.modified = true
	return nil
}

// ConnectGrowInputs wires an audio edge, growing the destination's input
// list as needed.
func (a *AudioGraph) ConnectGrowInputs(dest NodeID, destPort int, src NodeID, srcPort int) error {
	if err := a.desc.ConnectGrowInputs(dest, destPort, src, srcPort); err != nil {
		return err
	}
	a.modified = true
	return nil
}

// DisconnectAudio clears an audio input port.
func (a *AudioGraph) DisconnectAudio(dest NodeID, destPort int) error {
	if err := a.desc.DisconnectAudio(dest, destPort); err != nil {
		return err
	}
	a.modified = true
	return nil
}

// DisconnectEvent clears an event input port.
func (a *AudioGraph) DisconnectEvent(dest NodeID, destPort int) error {
	if err := a.desc.DisconnectEvent(dest, destPort); err != nil {
		return err
	}
	a.modified = true
	return nil
}

// SetOutputNode designates the sink node.
func (a *AudioGraph) SetOutputNode(id NodeID) error {
	if err := a.desc.SetOutputNode(id); err != nil {
		return err
	}
	a.modified = true
	return nil
}

// Publish sends a snapshot of the description to the audio thread if
// anything changed since the last publish. Repeated mutations between
// publishes coalesce into one snapshot; publishing an unmodified
// description delivers nothing. Call this on a periodic tick from the
// application's main loop.
func (a *AudioGraph) Publish() {
	if !a.modified {
		return
	}
	a.modified = false
	a.q.push(a.desc.snapshot())
	metricSnapshots.Inc()
}
