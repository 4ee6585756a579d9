package chorale

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Config_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 48000.0, cfg.SampleRate)
	assert.Equal(t, 2, cfg.Channels)
	assert.Equal(t, DefaultInitialBufferFrames, cfg.InitialBufferFrames)
	assert.NotEmpty(t, cfg.MIDIDevice)
}

func Test_Config_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chorale.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sample_rate: 44100
initial_buffer_frames: 4096
midi_device: /dev/snd/midiC1D0
stats_interval: 10s
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 44100.0, cfg.SampleRate)
	assert.Equal(t, 4096, cfg.InitialBufferFrames)
	assert.Equal(t, "/dev/snd/midiC1D0", cfg.MIDIDevice)
	assert.Equal(t, Duration(10*time.Second), cfg.StatsInterval)
	// Untouched keys keep their defaults.
	assert.Equal(t, 2, cfg.Channels)
}

func Test_Config_RejectsNonsense(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("channels: -1\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func Test_Config_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
