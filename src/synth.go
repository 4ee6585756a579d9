package chorale

import "math"

// NoteToFrequency converts a MIDI note number to Hz with A4 = 440.
func NoteToFrequency(note uint8) float64 {
	return 440 * math.Pow(2, (float64(note)-69)/12)
}

type synthStage int

const (
	stageIdle synthStage = iota
	stageAttack
	stageSustain
	stageRelease
)

// SynthAttack and SynthRelease are the fixed envelope ramp times in
// seconds.
const (
	SynthAttack  = 0.005
	SynthRelease = 0.050
)

// Synth is a monophonic sine synth: event input port 0, audio output
// port 0. Note starts and ends are applied at their exact frame offsets
// within the tick, so events aligned by the MIDI input land
// sample-accurately. A new note steals the running one.
type Synth struct {
	sampleRate float64

	phase uint32
	step  uint32

	stage   synthStage
	level   float32
	perStep float32
	note    uint8
	amp     float32
}

// NewSynth creates a synth for a device running at sampleRate.
func NewSynth(sampleRate float64) *Synth {
	return &Synth{sampleRate: sampleRate}
}

func (s *Synth) noteOn(note, velocity uint8) {
	s.note = note
	s.amp = float32(velocity) / 127
	s.step = uint32(NoteToFrequency(note) / s.sampleRate * (1 << 32))
	s.phase = 0
	s.stage = stageAttack
	s.perStep = float32(1 / (SynthAttack * s.sampleRate))
}

func (s *Synth) noteOff(note uint8) {
	if s.stage == stageIdle || note != s.note {
		return
	}
	s.stage = stageRelease
	s.perStep = float32(1 / (SynthRelease * s.sampleRate))
}

func (s *Synth) Process(ctx *ProcessContext) {
	events := ctx.EventIn(0)
	out := ctx.AudioOut[0]

	next := 0
	for i := 0; i < ctx.NumFrames; i++ {
		for next < len(events) {
			off := FrameOffset(events[next].Timestamp, ctx.Timestamp, ctx.SampleRate)
			if off > i {
				break
			}
			s.apply(events[next])
			next++
		}
		out[i] = s.render()
	}
	// Events timed past the end of this tick take effect at the boundary.
	for ; next < len(events); next++ {
		s.apply(events[next])
	}
}

func (s *Synth) apply(ev Event) {
	var ch, note, vel uint8
	switch {
	case ev.Message.GetNoteStart(&ch, &note, &vel):
		s.noteOn(note, vel)
	case ev.Message.GetNoteEnd(&ch, &note):
		s.noteOff(note)
	}
}

func (s *Synth) render() float32 {
	switch s.stage {
	case stageIdle:
		return 0
	case stageAttack:
		s.level += s.perStep
		if s.level >= 1 {
			s.level = 1
			s.stage = stageSustain
		}
	case stageRelease:
		s.level -= s.perStep
		if s.level <= 0 {
			s.level = 0
			s.stage = stageIdle
			return 0
		}
	}
	sample := s.amp * s.level * sineTable[s.phase>>24]
	s.phase += s.step
	return sample
}
