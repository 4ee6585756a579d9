package chorale

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// SamplePlayer streams a WAV clip loaded on the control thread. One
// audio output port per clip channel; playback past the end emits
// silence unless looping.
type SamplePlayer struct {
	channels [][]float32
	pos      int
	loop     bool
}

// LoadSample reads a whole WAV file into memory and returns a player for
// it. Control thread only.
func LoadSample(path string, loop bool) (*SamplePlayer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s: not a wav file", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 {
		return nil, fmt.Errorf("%s: no channels", path)
	}

	return &SamplePlayer{
		channels: deinterleave(buf, int(dec.BitDepth)),
		loop:     loop,
	}, nil
}

// deinterleave splits an integer PCM buffer into normalised float32
// channel planes.
func deinterleave(buf *audio.IntBuffer, bitDepth int) [][]float32 {
	numCh := buf.Format.NumChannels
	scale := 1 / float32(int64(1)<<(bitDepth-1))
	frames := len(buf.Data) / numCh

	channels := make([][]float32, numCh)
	for ch := range channels {
		channels[ch] = make([]float32, frames)
		for fr := 0; fr < frames; fr++ {
			channels[ch][fr] = float32(buf.Data[fr*numCh+ch]) * scale
		}
	}
	return channels
}

// NumChannels returns the clip's channel count, which is the number of
// audio output ports a node carrying this player must declare.
func (p *SamplePlayer) NumChannels() int {
	return len(p.channels)
}

func (p *SamplePlayer) Process(ctx *ProcessContext) {
	total := len(p.channels[0])
	for i := 0; i < ctx.NumFrames; i++ {
		if p.pos >= total {
			if !p.loop {
				for _, out := range ctx.AudioOut {
					out[i] = 0
				}
				continue
			}
			p.pos = 0
		}
		for ch, out := range ctx.AudioOut {
			out[i] = p.channels[ch][p.pos]
		}
		p.pos++
	}
}
