package engine

import (
	"github.com/zynmi/mutseq"
)

type (
	// State is everything the engine remembers between blocks. It is owned by
	// one Engine and only changed by Process.
	State struct {
		Step        int // current step, always < active steps after Process
		SinceStep   int // samples elapsed in the current step
		StepSamples int // duration of the current step, >= 1

		RatchetCount   int  // retriggers in the current step, 1..8
		Ratchet        int  // retriggers fired so far, <= RatchetCount
		RatchetSamples int  // duration of one ratchet slot; 0 while stopped
		SinceRatchet   int  // samples elapsed in the current ratchet slot
		StepActive     bool // gate decision of the first ratchet, reused by the rest

		GateOpen bool // a note-on is waiting for its gate-length note-off
		NoteOn   bool // a note is held
		Note     byte // the held note, for the matching note-off

		Mutations Mutations
		Clock     Clock
		Rand      Rand

		Dropped int // events that did not fit the output slice
	}

	// Engine advances the step clock once per block and emits sample
	// accurate note events. It never blocks, never allocates and every loop
	// is bounded by the block length or small constants, so it can be called
	// from a real-time audio callback.
	Engine struct {
		State
		Channel int // MIDI channel stamped on the outgoing events

		sampleRate float64
	}

	// writer appends events to a fixed capacity slice, keeping the frames
	// non-decreasing.
	writer struct {
		out     []mutseq.NoteEvent
		last    int
		dropped *int
	}
)

// New creates a stopped engine with the default seed. The sample rate is
// fixed for the lifetime of the engine.
func New(sampleRate float64) *Engine {
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	e := &Engine{sampleRate: sampleRate}
	e.Reset()
	return e
}

// Reset returns the engine to its initial stopped state. The held note, if
// any, is forgotten without a note-off; use Flush first.
func (e *Engine) Reset() {
	e.State = State{
		StepSamples:  1,
		RatchetCount: 1,
		Clock:        NewClock(),
		Rand:         DefaultSeed,
	}
}

// SampleRate returns the rate given to New.
func (e *Engine) SampleRate() float64 { return e.sampleRate }

// MaxEvents is an output capacity that Process can never exceed for a block
// of the given length: per sample at most one note-off and one note-on.
func MaxEvents(frames int) int {
	return 2*frames + 2
}

// Process runs one block of frames samples. All inbound messages are folded
// into the clock state before the first sample. Outgoing events are appended
// to out, which is never grown beyond its capacity; the frames of the
// appended events are relative to the block start and non-decreasing.
func (e *Engine) Process(cfg *mutseq.Config, steps *mutseq.Steps, in []mutseq.Input, frames int, out []mutseq.NoteEvent) []mutseq.NoteEvent {
	for i := range in {
		e.Clock.Ingest(in[i])
	}
	e.Clock.Advance(frames)
	if frames <= 0 {
		return out
	}
	w := writer{out: out, dropped: &e.Dropped}
	if !e.Clock.Running(cfg) {
		e.noteOff(&w, 0)
		e.RatchetSamples = 0
		e.GateOpen = false
		return w.out
	}
	numSteps := cfg.ActiveSteps()
	if e.Step >= numSteps {
		e.Step = numSteps - 1
	}
	bpm := e.Clock.BPM(cfg, e.sampleRate)
	if e.RatchetSamples == 0 {
		e.enterStep(cfg, steps, bpm)
	}
	for i := 0; i < frames; i++ {
		if e.SinceStep >= e.StepSamples {
			e.advance(cfg, numSteps)
			e.enterStep(cfg, steps, bpm)
		}
		e.SinceStep++
		e.SinceRatchet++
		trigger := false
		if e.Ratchet < e.RatchetCount && e.SinceRatchet >= e.RatchetSamples {
			e.Ratchet++
			e.SinceRatchet = 0
			if e.Ratchet == 1 {
				e.StepActive = e.gate(cfg, steps, numSteps)
			}
			trigger = e.StepActive
		}
		if e.GateOpen && e.SinceRatchet >= GateSamples(e.RatchetSamples, cfg.GateLength) {
			e.noteOff(&w, i)
			e.GateOpen = false
		}
		if trigger {
			e.fire(&w, cfg, steps, numSteps, i, frames)
		}
	}
	return w.out
}

// Flush releases the held note at frame 0, e.g. on panic.
func (e *Engine) Flush(out []mutseq.NoteEvent) []mutseq.NoteEvent {
	w := writer{out: out, dropped: &e.Dropped}
	e.noteOff(&w, 0)
	e.GateOpen = false
	return w.out
}

// advance moves to the next step, wrapping to step 0 and mutating on every
// loop.
func (e *Engine) advance(cfg *mutseq.Config, numSteps int) {
	e.Step++
	if e.Step >= numSteps {
		e.Step = 0
	}
	e.SinceStep = 0
	if e.Step == 0 {
		e.Mutations.Mutate(cfg.Mutate, &e.Rand)
	}
}

// enterStep derives the step and ratchet timing of the current step. Tempo
// changes therefore take effect on step boundaries only.
func (e *Engine) enterStep(cfg *mutseq.Config, steps *mutseq.Steps, bpm float64) {
	e.StepSamples = StepSamples(bpm, cfg.Division, cfg.Swing, e.Step, e.sampleRate)
	e.RatchetCount = mutseq.Clamp(steps[e.Step].Ratchet, 1, mutseq.MaxRatchet)
	e.RatchetSamples = RatchetSamples(e.StepSamples, e.RatchetCount)
	e.Ratchet = 0
	e.SinceRatchet = 0
	e.StepActive = false
}

// gate rolls the step probability, applies the rhythm pattern and rolls the
// global probability. Probabilities of 99% and above do not consume random
// numbers.
func (e *Engine) gate(cfg *mutseq.Config, steps *mutseq.Steps, numSteps int) bool {
	on := true
	if p := steps[e.Step].Probability / 100.0; p < 0.99 {
		if e.Rand.Float() > p {
			on = false
		}
	}
	on = on && mutseq.Pattern(e.Step, numSteps, cfg.Pattern, cfg.PatternParam)
	if p := cfg.Probability / 100.0; p < 0.99 {
		if e.Rand.Float() > p {
			on = false
		}
	}
	return on
}

// fire computes the note of the current step and emits it at sample i,
// moved by the humanize jitter. A zero velocity is a silent slot.
func (e *Engine) fire(w *writer, cfg *mutseq.Config, steps *mutseq.Steps, numSteps, i, frames int) {
	st := &steps[e.Step]
	pitch := st.Pitch + e.Mutations.Pitch[e.Step]
	vel := st.Velocity + e.Mutations.Velocity[e.Step]
	pitch = Pitch(cfg.PitchMode, e.Step, numSteps, cfg.PitchSpread, pitch, &e.Rand)
	vel = Velocity(cfg.VelocityMode, e.Step, numSteps, cfg.VelocityAmount, vel, &e.Rand)
	pitch += cfg.Transpose
	note, velocity := ClampMIDI(pitch), ClampMIDI(vel)
	if velocity == 0 {
		return
	}
	e.noteOn(w, note, velocity, e.humanize(i, frames, cfg.Humanize))
	e.GateOpen = true
}

// humanize offsets frame i by up to 10 ms at 100%, staying inside the
// block.
func (e *Engine) humanize(i, frames int, amount float32) int {
	h := mutseq.Clamp(amount, 0, 100) / 100.0
	if !(h > 0.001) {
		return i
	}
	jitter := e.Rand.Signed()
	maxJitter := int(float64(h) * e.sampleRate * 0.01)
	return mutseq.Clamp(i+int(jitter*float32(maxJitter)), 0, frames-1)
}

func (e *Engine) noteOn(w *writer, note, velocity byte, frame int) {
	e.noteOff(w, frame)
	w.write(mutseq.NoteEvent{Frame: frame, On: true, Channel: e.Channel, Note: note, Velocity: velocity})
	e.Note = note
	e.NoteOn = true
}

func (e *Engine) noteOff(w *writer, frame int) {
	if !e.NoteOn {
		return
	}
	w.write(mutseq.NoteEvent{Frame: frame, On: false, Channel: e.Channel, Note: e.Note})
	e.NoteOn = false
}

func (w *writer) write(ev mutseq.NoteEvent) {
	if ev.Frame < w.last {
		ev.Frame = w.last
	}
	w.last = ev.Frame
	if len(w.out) == cap(w.out) {
		*w.dropped++
		return
	}
	w.out = append(w.out, ev)
}
