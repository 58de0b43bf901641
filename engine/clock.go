package engine

import (
	"math"

	"github.com/zynmi/mutseq"
)

// Tempo limits applied to every clock source.
const (
	MinBPM = 20.0
	MaxBPM = 300.0
)

// Clock resolves the three time bases (internal tempo, external 24 PPQN
// pulses and host transport) into one effective tempo and run state. Pulse
// timestamps are absolute sample positions: the block start plus the frame
// offset of the message.
type Clock struct {
	Pulses   int    // pulses since the last quarter note, 0..23
	Last     uint64 // absolute sample time of the previous pulse
	HasLast  bool
	Interval uint64 // smoothed samples between pulses, 0 if unknown
	Started  bool   // external start/continue seen and no stop since
	Position uint64 // absolute sample position of the current block start

	HostBPM     float64
	HostPlaying bool
}

// NewClock returns a clock that has seen no messages; the host tempo
// defaults to 120 BPM until reported.
func NewClock() Clock {
	return Clock{HostBPM: 120}
}

// Ingest folds one inbound message into the clock state. Unknown kinds and
// malformed values are ignored.
func (c *Clock) Ingest(in mutseq.Input) {
	switch in.Kind {
	case mutseq.InputTransport:
		if in.Flags&mutseq.TransportTempoValid != 0 && in.BPM > 0 && !math.IsInf(in.BPM, 0) {
			c.HostBPM = in.BPM
		}
		if in.Flags&mutseq.TransportPlayingValid != 0 {
			c.HostPlaying = in.Playing
		}
	case mutseq.InputClock:
		frame := in.Frame
		if frame < 0 {
			frame = 0
		}
		now := c.Position + uint64(frame)
		if c.HasLast && now > c.Last {
			delta := now - c.Last
			if c.Interval == 0 {
				c.Interval = delta
			} else {
				c.Interval = (c.Interval*3 + delta) / 4
			}
		}
		c.Last = now
		c.HasLast = true
		c.Pulses++
		if c.Pulses >= mutseq.ClocksPerQuarter {
			c.Pulses = 0
		}
	case mutseq.InputStart, mutseq.InputContinue:
		// the tempo is measured again from the next pulse; the previous
		// pulse time is kept so a running master clock locks at once
		c.Started = true
		c.Pulses = 0
		c.Interval = 0
	case mutseq.InputStop:
		c.Started = false
	}
}

// Advance moves the block start position forward.
func (c *Clock) Advance(frames int) {
	if frames > 0 {
		c.Position += uint64(frames)
	}
}

// ExternalBPM derives the tempo from the smoothed pulse interval; ok is
// false until an interval has been measured.
func (c *Clock) ExternalBPM(sampleRate float64) (bpm float64, ok bool) {
	if c.Interval == 0 {
		return 0, false
	}
	secondsPerClock := float64(c.Interval) / sampleRate
	return 60.0 / (secondsPerClock * mutseq.ClocksPerQuarter), true
}

// BPM returns the effective tempo for the selected clock source, clamped to
// [MinBPM, MaxBPM]. The external source falls back to the internal tempo
// until pulses have been measured.
func (c *Clock) BPM(cfg *mutseq.Config, sampleRate float64) float64 {
	bpm := cfg.BPM
	switch cfg.ClockSource.Valid() {
	case mutseq.ClockExternal:
		if ext, ok := c.ExternalBPM(sampleRate); ok {
			bpm = ext
		}
	case mutseq.ClockHost:
		bpm = c.HostBPM
	}
	if math.IsNaN(bpm) {
		bpm = 120
	}
	return mutseq.Clamp(bpm, MinBPM, MaxBPM)
}

// Running decides whether the sequencer advances. Internal and host sources
// run when either the run control or the host transport says so. The
// external source never runs without measured pulses, and then needs the run
// control or an external start.
func (c *Clock) Running(cfg *mutseq.Config) bool {
	switch cfg.ClockSource.Valid() {
	case mutseq.ClockExternal:
		return c.Interval > 0 && (cfg.Running || c.Started)
	default:
		return cfg.Running || c.HostPlaying
	}
}
