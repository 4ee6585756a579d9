// Package chorale is a real-time audio/MIDI processing graph engine.
//
// A session is a pair: an AudioGraph handle on the application thread,
// where nodes are created and wired, and a Worker on the audio thread,
// ticked once per device callback. Edits accumulate on the control side
// and cross over as immutable snapshots when Publish is called; the
// worker adopts the newest snapshot at the top of a tick, migrating the
// existing processor instances into the new graph so the stream never
// hiccups.
//
// Each tick schedules the subgraph reachable from the designated output
// node (plus any always-run sources), runs every processor in a
// deterministic topological order, and interleaves the output node's
// port buffers into the device buffer.
package chorale
