package engine

import (
	"math"

	"github.com/zynmi/mutseq"
)

// DefaultBlockSize is the block length used when none is given.
const DefaultBlockSize = 256

// Render runs a fresh engine over frames samples offline, as a host would
// in blocks of blockSize. inputs carry absolute frames, must be sorted by
// frame and are delivered in the block that contains them. Controller
// inputs are applied to a copy of the preset through its bindings. The
// returned events have absolute frames.
func Render(p *mutseq.Preset, sampleRate float64, frames, blockSize int, inputs []mutseq.Input) ([]mutseq.NoteEvent, error) {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	table, err := p.BindingTable()
	if err != nil {
		return nil, err
	}
	cfg, steps := p.Config, p.Steps
	e := New(sampleRate)
	e.Channel = int(p.MIDIChannel())
	buf := make([]mutseq.NoteEvent, 0, MaxEvents(blockSize))
	in := make([]mutseq.Input, 0, 16)
	var ret []mutseq.NoteEvent
	next := 0
	for pos := 0; pos < frames; pos += blockSize {
		n := min(blockSize, frames-pos)
		in = in[:0]
		for ; next < len(inputs) && inputs[next].Frame < pos+n; next++ {
			msg := inputs[next]
			msg.Frame = max(msg.Frame-pos, 0)
			if msg.Kind == mutseq.InputControl {
				if id := table[msg.Controller&0x7f]; id != mutseq.NoParam {
					cfg.SetParam(&steps, id, mutseq.ParamSpecs[id].Scale(msg.Value))
				}
				continue
			}
			in = append(in, msg)
		}
		buf = e.Process(&cfg, &steps, in, n, buf[:0])
		for _, ev := range buf {
			ev.Frame += pos
			ret = append(ret, ev)
		}
	}
	buf = e.Flush(buf[:0])
	for _, ev := range buf {
		ev.Frame = frames
		ret = append(ret, ev)
	}
	return ret, nil
}

// RenderTempo is the tempo an offline render of cfg plays at: the BPM
// control, clamped like every clock source.
func RenderTempo(cfg *mutseq.Config) float64 {
	bpm := cfg.BPM
	if math.IsNaN(bpm) {
		bpm = 120
	}
	return mutseq.Clamp(bpm, MinBPM, MaxBPM)
}

// ClockScript returns the inputs a render needs so the selected clock
// source plays at RenderTempo: a host transport that plays for the host
// source, a start followed by 24 PPQN pulses for the external source and
// nothing for the internal one. The external source starts running on the
// second pulse.
func ClockScript(cfg *mutseq.Config, sampleRate float64, frames int) []mutseq.Input {
	bpm := RenderTempo(cfg)
	switch cfg.ClockSource.Valid() {
	case mutseq.ClockHost:
		return []mutseq.Input{mutseq.Transport(0, bpm, true)}
	case mutseq.ClockExternal:
		perPulse := 60 / bpm / mutseq.ClocksPerQuarter * sampleRate
		ret := []mutseq.Input{mutseq.Pulse(0, mutseq.InputStart)}
		for k := 0; ; k++ {
			frame := int(math.Round(float64(k) * perPulse))
			if frame >= frames {
				return ret
			}
			ret = append(ret, mutseq.Pulse(frame, mutseq.InputClock))
		}
	default:
		return nil
	}
}
