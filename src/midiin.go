package chorale

import (
	"bufio"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"gitlab.com/gomidi/midi/v2"
)

// MidiInput is a source processor feeding device MIDI into the graph.
// It drains the ring filled by the device reader and emits each message
// on event output port 0 with a session timestamp.
//
// The device clock and the session clock have unrelated origins, so the
// first packet of a session pins the offset between them: its session
// time is the timestamp of the tick that first sees it, and every later
// packet keeps its device-relative distance from that first packet. The
// result is clamped so an emitted event is never earlier than the tick
// that emits it; near-simultaneous events may collapse onto the same
// timestamp and consumers must tolerate ties.
//
// Nodes carrying this processor should be shaped Event(0, 1) and marked
// AlwaysRun so the ring drains even while nothing downstream of the
// output listens.
type MidiInput struct {
	ring *MidiRing

	haveFirst      bool
	firstDeviceUS  uint64
	firstSessionTS time.Duration
}

// NewMidiInput creates the processor for a reader's ring.
func NewMidiInput(ring *MidiRing) *MidiInput {
	return &MidiInput{ring: ring}
}

func (m *MidiInput) Process(ctx *ProcessContext) {
	for {
		p, ok := m.ring.pop()
		if !ok {
			return
		}
		if !m.haveFirst {
			m.haveFirst = true
			m.firstDeviceUS = p.timestamp
			m.firstSessionTS = ctx.Timestamp
		}
		ts := m.firstSessionTS + time.Duration(p.timestamp-m.firstDeviceUS)*time.Microsecond
		if ts < ctx.Timestamp {
			ts = ctx.Timestamp
		}
		ctx.Emit(0, Event{Timestamp: ts, Message: midi.Message(p.message)})
	}
}

// MidiReader pulls raw bytes off a MIDI device, frames them into
// messages and pushes them onto a ring for the audio thread. System
// Exclusive and other unbounded messages are dropped.
type MidiReader struct {
	ring   *MidiRing
	src    io.ReadCloser
	start  time.Time
	elog   *EventLog
	closed chan struct{}
}

// OpenMidiReader opens a raw MIDI device (for example /dev/snd/midiC0D0)
// and starts the reader goroutine. elog may be nil.
func OpenMidiReader(path string, capacity int, elog *EventLog) (*MidiReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := newMidiReader(f, capacity, elog)
	go r.run()
	return r, nil
}

func newMidiReader(src io.ReadCloser, capacity int, elog *EventLog) *MidiReader {
	return &MidiReader{
		ring:   NewMidiRing(capacity),
		src:    src,
		start:  time.Now(),
		elog:   elog,
		closed: make(chan struct{}),
	}
}

// Ring returns the ring to hand to NewMidiInput.
func (r *MidiReader) Ring() *MidiRing {
	return r.ring
}

// Close stops the reader. Pending packets stay readable.
func (r *MidiReader) Close() error {
	err := r.src.Close()
	<-r.closed
	return err
}

// Number of data bytes following a status byte, per MIDI 1.0. Program
// change and channel pressure carry one, everything else two.
func midiDataLen(status byte) int {
	switch status & 0xf0 {
	case 0xc0, 0xd0:
		return 1
	default:
		return 2
	}
}

func (r *MidiReader) run() {
	defer close(r.closed)

	br := bufio.NewReader(r.src)
	var running byte
	data := make([]byte, 0, 2)

	for {
		b, err := br.ReadByte()
		if err != nil {
			if err != io.EOF {
				log.Debug("midi reader stopped", "err", err)
			}
			return
		}

		switch {
		case b >= 0xf8:
			// System real-time: clock, active sensing and friends carry
			// no musical content here.
			continue
		case b == 0xf0:
			// System Exclusive: unbounded, skip through to EOX.
			running = 0
			for {
				b, err = br.ReadByte()
				if err != nil {
					return
				}
				if b == 0xf7 {
					break
				}
			}
			continue
		case b >= 0xf0:
			// Other system common messages reset running status.
			running = 0
			continue
		case b >= 0x80:
			running = b
			data = data[:0]
			continue
		}

		// Data byte.
		if running == 0 {
			continue
		}
		data = append(data, b)
		if len(data) < midiDataLen(running) {
			continue
		}

		msg := make([]byte, 1+len(data))
		msg[0] = running
		copy(msg[1:], data)
		data = data[:0]

		ts := uint64(time.Since(r.start).Microseconds())
		r.ring.push(midiPacket{timestamp: ts, message: msg})
		metricMIDIEvents.Inc()
		if r.elog != nil {
			r.elog.Log(ts, midi.Message(msg))
		}
	}
}
