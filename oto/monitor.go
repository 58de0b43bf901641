package oto

import (
	"math"

	"github.com/zynmi/mutseq"
	"github.com/zynmi/mutseq/engine"
	"github.com/zynmi/mutseq/player"
)

// Monitor is a sine voice that plays the outgoing notes, so the sequencer
// can be heard without a synthesizer. It forwards every call to the wrapped
// context.
type Monitor struct {
	player.ProcessContext
	Volume  float32
	Dropped int // events beyond the reserved capacity, not heard

	events []mutseq.NoteEvent // notes of the current block
	note   byte
	phase  float64
	step   float64 // phase increment per frame
	amp    float32
	target float32
}

// attack and release of the monitor voice, as a one-pole coefficient
const smoothing = 0.005

func NewMonitor(context player.ProcessContext, volume float32) *Monitor {
	return &Monitor{ProcessContext: context, Volume: volume, events: make([]mutseq.NoteEvent, 0, 64)}
}

func (m *Monitor) WriteEvent(ev mutseq.NoteEvent) {
	if len(m.events) < cap(m.events) {
		m.events = append(m.events, ev)
	} else {
		m.Dropped++
	}
	m.ProcessContext.WriteEvent(ev)
}

// Reserve makes room for every event a block of frames can produce. It
// only allocates when the block is longer than any before.
func (m *Monitor) Reserve(frames int) {
	if need := engine.MaxEvents(frames); cap(m.events) < need {
		events := make([]mutseq.NoteEvent, len(m.events), need)
		copy(events, m.events)
		m.events = events
	}
}

// Render writes the voice into an interleaved stereo buffer and forgets
// the events of the block.
func (m *Monitor) Render(buf []float32, sampleRate float64) {
	next := 0
	for i := 0; i < len(buf)/2; i++ {
		for next < len(m.events) && m.events[next].Frame <= i {
			m.apply(m.events[next], sampleRate)
			next++
		}
		m.amp += (m.target - m.amp) * smoothing
		s := float32(math.Sin(m.phase)) * m.amp * m.Volume
		m.phase += m.step
		if m.phase > 2*math.Pi {
			m.phase -= 2 * math.Pi
		}
		buf[2*i] = s
		buf[2*i+1] = s
	}
	for ; next < len(m.events); next++ {
		m.apply(m.events[next], sampleRate)
	}
	m.events = m.events[:0]
}

func (m *Monitor) apply(ev mutseq.NoteEvent, sampleRate float64) {
	if !ev.On {
		if ev.Note == m.note {
			m.target = 0
		}
		return
	}
	m.note = ev.Note
	freq := 440 * math.Pow(2, (float64(ev.Note)-69)/12)
	m.step = 2 * math.Pi * freq / sampleRate
	m.target = float32(ev.Velocity) / 127
}
