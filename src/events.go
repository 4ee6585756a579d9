package chorale

import (
	"time"

	"gitlab.com/gomidi/midi/v2"
)

// Event is one timestamped MIDI message travelling through event ports.
// The timestamp is session time: a monotonic duration measured from the
// first device callback. Events emitted during a tick always carry a
// timestamp at or after that tick's timestamp.
type Event struct {
	Timestamp time.Duration
	Message   midi.Message
}

// FrameOffset converts an event timestamp into a sample-frame offset
// relative to the start of a tick. Events at or before the tick start map
// to frame 0.
func FrameOffset(ev time.Duration, tick time.Duration, sampleRate float64) int {
	d := ev - tick
	if d <= 0 {
		return 0
	}
	return int(d.Seconds() * sampleRate)
}
