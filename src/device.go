package chorale

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"
)

// Device owns the portaudio output stream and drives a Worker from its
// callback. The session clock is derived from the number of frames
// delivered so far, which stays steady regardless of scheduling jitter
// in the callbacks themselves.
type Device struct {
	stream     *portaudio.Stream
	worker     *Worker
	stats      *Stats
	channels   int
	sampleRate float64
	frames     uint64
}

// OpenDevice initialises portaudio and opens the default output stream.
// stats may be nil.
func OpenDevice(cfg Config, worker *Worker, stats *Stats) (*Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	d := &Device{
		worker:     worker,
		stats:      stats,
		channels:   cfg.Channels,
		sampleRate: cfg.SampleRate,
	}
	worker.SetSampleRate(cfg.SampleRate)

	stream, err := portaudio.OpenDefaultStream(
		0, cfg.Channels, cfg.SampleRate, cfg.FramesPerBuffer, d.callback)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	d.stream = stream
	log.Info("audio device open",
		"channels", cfg.Channels,
		"sample_rate", cfg.SampleRate,
		"frames_per_buffer", cfg.FramesPerBuffer)
	return d, nil
}

// Start begins playback.
func (d *Device) Start() error {
	return d.stream.Start()
}

// Close stops the stream and tears portaudio down.
func (d *Device) Close() error {
	err := d.stream.Stop()
	if cerr := d.stream.Close(); err == nil {
		err = cerr
	}
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}

func (d *Device) callback(out []float32) {
	numFrames := len(out) / d.channels
	timestamp := framesToDuration(d.frames, d.sampleRate)
	d.worker.Tick(d.channels, out, timestamp)
	d.frames += uint64(numFrames)

	if d.stats != nil {
		var peak float32
		for _, s := range out {
			if s < 0 {
				s = -s
			}
			if s > peak {
				peak = s
			}
		}
		d.stats.Add(numFrames, peak)
	}
}

func framesToDuration(frames uint64, sampleRate float64) time.Duration {
	return time.Duration(float64(frames) / sampleRate * float64(time.Second))
}
