package chorale

import (
	"encoding/csv"
	"os"
	"strconv"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"
)

// EventLog writes ingested MIDI events to a CSV file for later reading:
// the raw timestamp is cryptic on its own, so each record carries wall
// time, the device timestamp and a decoded message. The file is opened
// once and kept open; records are flushed as they are written so a crash
// loses nothing.
type EventLog struct {
	mu sync.Mutex
	f  *os.File
	w  *csv.Writer
}

// OpenEventLog creates or truncates the log file and writes the header.
func OpenEventLog(path string) (*EventLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	l := &EventLog{f: f, w: csv.NewWriter(f)}
	if err := l.w.Write([]string{"time", "device_us", "message"}); err != nil {
		f.Close()
		return nil, err
	}
	l.w.Flush()
	return l, nil
}

// Log records one event. Safe from any thread except the audio thread.
func (l *EventLog) Log(deviceUS uint64, msg midi.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write([]string{
		time.Now().UTC().Format(time.RFC3339Nano),
		strconv.FormatUint(deviceUS, 10),
		msg.String(),
	})
	l.w.Flush()
}

// Close flushes and closes the file.
func (l *EventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Flush()
	return l.f.Close()
}
