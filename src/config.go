package chorale

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that decodes from yaml strings like
// "250ms" or "10s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Config holds everything the binaries need to bring an engine up.
type Config struct {
	SampleRate      float64 `yaml:"sample_rate"`
	Channels        int     `yaml:"channels"`
	FramesPerBuffer int     `yaml:"frames_per_buffer"`

	// InitialBufferFrames sizes every node's output buffers at compile
	// time. Set it to at least the largest buffer the device will ask
	// for, or the audio thread will have to reallocate mid-stream.
	InitialBufferFrames int `yaml:"initial_buffer_frames"`

	MIDIDevice   string `yaml:"midi_device"`
	MIDIRingSize int    `yaml:"midi_ring_size"`

	StatsInterval Duration `yaml:"stats_interval"`
	MetricsAddr   string   `yaml:"metrics_addr"`
	EventLogPath  string   `yaml:"event_log"`
}

// DefaultConfig returns the stock stereo 48 kHz configuration.
func DefaultConfig() Config {
	return Config{
		SampleRate:          48000,
		Channels:            2,
		FramesPerBuffer:     512,
		InitialBufferFrames: DefaultInitialBufferFrames,
		MIDIDevice:          "/dev/snd/midiC0D0",
		MIDIRingSize:        128,
		StatsInterval:       Duration(100 * time.Second),
	}
}

// LoadConfig reads a yaml config file over the defaults. An empty path
// returns the defaults untouched.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %v", c.SampleRate)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("channels must be positive, got %d", c.Channels)
	}
	if c.FramesPerBuffer <= 0 {
		return fmt.Errorf("frames_per_buffer must be positive, got %d", c.FramesPerBuffer)
	}
	if c.InitialBufferFrames <= 0 {
		return fmt.Errorf("initial_buffer_frames must be positive, got %d", c.InitialBufferFrames)
	}
	return nil
}
