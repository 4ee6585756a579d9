package chorale

// Gain is a stereo gain stage: audio ports 2 in, 2 out. The gain value
// is updated from the control thread through a small message channel
// that the audio thread drains without blocking.
type Gain struct {
	updates chan float32
	gain    float32
}

// NewGain creates a gain processor with the given initial gain.
func NewGain(initial float32) *Gain {
	return &Gain{
		updates: make(chan float32, 16),
		gain:    initial,
	}
}

// Set schedules a new gain value. Control thread. If the audio thread
// has fallen far behind, the oldest queued value is abandoned rather
// than blocking the caller.
func (g *Gain) Set(v float32) {
	for {
		select {
		case g.updates <- v:
			return
		default:
			select {
			case <-g.updates:
			default:
			}
		}
	}
}

func (g *Gain) Process(ctx *ProcessContext) {
	select {
	case v := <-g.updates:
		g.gain = v
	default:
	}

	for port, out := range ctx.AudioOut {
		in := ctx.AudioIn(port)
		if in == nil {
			for i := range out {
				out[i] = 0
			}
			continue
		}
		for i := 0; i < ctx.NumFrames; i++ {
			out[i] = in[i] * g.gain
		}
	}
}
