package player

import (
	"fmt"

	"github.com/zynmi/mutseq"
	"github.com/zynmi/mutseq/engine"
)

type (
	// Player runs the sequencer engine on the audio thread. It is controlled
	// by messages from the model via the broker and by inbound MIDI (clock,
	// transport, controllers) via the context, typically from the host or a
	// MIDI port. The outgoing notes are written back to the context. The
	// player sends its status, alerts and recordings to the model with
	// non-blocking sends.
	Player struct {
		engine   *engine.Engine
		preset   mutseq.Preset       // the preset being played, owned by the player
		bindings mutseq.BindingTable // controller number to control
		inputs   []mutseq.Input      // inbound messages of the current block
		events   []mutseq.NoteEvent  // outgoing events of the current block
		frame    uint64              // frames processed since the player was created

		recState  recState  // is the recording off; are we waiting for a note; or are we recording
		recording Recording // the recorded notes
		recStart  uint64    // absolute frame of the first recorded note

		dropped    int // engine drops already reported
		lostInputs int // inbound messages that did not fit the block buffer

		broker *Broker
	}

	// ProcessContext is the host side of one block. NextInput returns the
	// inbound messages that happen before frame, in frame order and with
	// frames relative to the block start. WriteEvent receives the outgoing
	// notes in frame order. FinishBlock is called once all events of the
	// block are written.
	ProcessContext interface {
		NextInput(frame int) (in mutseq.Input, ok bool)
		WriteEvent(ev mutseq.NoteEvent)
		FinishBlock(frames int)
	}
)

type recState int

const (
	recStateNone recState = iota
	recStateWaitingForNote
	recStateRecording
)

const maxInputsPerBlock = 256

// NewPlayer creates a player for the given sample rate. The preset is
// copied; later changes go through the broker.
func NewPlayer(broker *Broker, sampleRate float64, preset mutseq.Preset) (*Player, error) {
	table, err := preset.BindingTable()
	if err != nil {
		return nil, fmt.Errorf("invalid preset: %w", err)
	}
	e := engine.New(sampleRate)
	e.Channel = int(preset.MIDIChannel())
	return &Player{
		engine:   e,
		preset:   preset,
		bindings: table,
		inputs:   make([]mutseq.Input, 0, maxInputsPerBlock),
		events:   make([]mutseq.NoteEvent, 0, engine.MaxEvents(engine.DefaultBlockSize)),
		broker:   broker,
	}, nil
}

// Process runs one block of frames samples. Control messages from the model
// are applied first, then the inbound messages of the context, and the
// resulting notes are written to the context before FinishBlock.
func (p *Player) Process(frames int, context ProcessContext) {
	if frames < 0 {
		frames = 0
	}
	p.processMessages(context)
	p.inputs = p.inputs[:0]
	for {
		in, ok := context.NextInput(frames)
		if !ok {
			break
		}
		if in.Kind == mutseq.InputControl {
			if id := p.bindings[in.Controller&0x7f]; id != mutseq.NoParam {
				p.preset.SetParam(id, mutseq.ParamSpecs[id].Scale(in.Value))
			}
			continue
		}
		if len(p.inputs) == cap(p.inputs) {
			p.lostInputs++
			continue
		}
		p.inputs = append(p.inputs, in)
	}
	if need := engine.MaxEvents(frames); cap(p.events) < need {
		// only happens when the host hands us a longer block than ever before
		p.events = make([]mutseq.NoteEvent, 0, need)
	}
	p.events = p.engine.Process(&p.preset.Config, &p.preset.Steps, p.inputs, frames, p.events[:0])
	p.emit(p.events, context)
	context.FinishBlock(frames)
	p.frame += uint64(frames)
	if p.recState == recStateRecording {
		p.recording.TotalFrames = int(p.frame - p.recStart)
	}
	if p.engine.Dropped != p.dropped {
		p.dropped = p.engine.Dropped
		p.SendAlert("EventsDropped", fmt.Sprintf("%d note events did not fit the output buffer", p.dropped), Warning)
	}
	p.sendStatus()
}

// Preset returns the preset as currently modified by the controls. Only
// call it from the goroutine running Process.
func (p *Player) Preset() mutseq.Preset {
	return p.preset
}

func (p *Player) SendAlert(name, message string, priority AlertPriority) {
	TrySend(p.broker.ToModel, MsgToModel{Data: Alert{
		Name:     name,
		Priority: priority,
		Message:  message,
		Duration: defaultAlertDuration,
	}})
}

func (p *Player) processMessages(context ProcessContext) {
loop:
	for { // process new message
		select {
		case msg := <-p.broker.ToPlayer:
			switch m := msg.(type) {
			case *PresetMsg:
				if ch := int(m.Preset.MIDIChannel()); ch != p.engine.Channel {
					// release the held note on the old channel
					p.flush(context)
					p.engine.Channel = ch
				}
				p.preset = m.Preset
				p.bindings = m.Bindings
			case ParamMsg:
				p.preset.SetParam(m.ID, m.Value)
			case PanicMsg:
				p.flush(context)
				clock := p.engine.Clock
				p.engine.Reset()
				p.engine.Clock = clock
			case RecordingMsg:
				if m.bool {
					p.recState = recStateWaitingForNote
					p.recording = Recording{}
				} else {
					if p.recState == recStateRecording && len(p.recording.Events) > 0 {
						r := p.recording
						r.BPM = p.engine.Clock.BPM(&p.preset.Config, p.engine.SampleRate())
						r.SampleRate = p.engine.SampleRate()
						TrySend(p.broker.ToModel, MsgToModel{Data: &r})
					}
					p.recState = recStateNone
					p.recording = Recording{}
				}
			default:
				// ignore unknown messages
			}
		default:
			break loop
		}
	}
}

func (p *Player) flush(context ProcessContext) {
	p.events = p.engine.Flush(p.events[:0])
	p.emit(p.events, context)
}

func (p *Player) emit(events []mutseq.NoteEvent, context ProcessContext) {
	for _, ev := range events {
		context.WriteEvent(ev)
		abs := p.frame + uint64(ev.Frame)
		if p.recState == recStateWaitingForNote && ev.On {
			p.recState = recStateRecording
			p.recStart = abs
		}
		if p.recState == recStateRecording {
			ev.Frame = int(abs - p.recStart)
			p.recording.Events = append(p.recording.Events, ev)
		}
	}
}

// all sends from the player are non-blocking, so the audio thread cannot
// end up in a dead-lock
func (p *Player) sendStatus() {
	note := -1
	if p.engine.NoteOn {
		note = int(p.engine.Note)
	}
	TrySend(p.broker.ToModel, MsgToModel{
		HasStatus: true,
		Status: Status{
			Running: p.engine.Clock.Running(&p.preset.Config),
			Step:    p.engine.Step,
			BPM:     p.engine.Clock.BPM(&p.preset.Config, p.engine.SampleRate()),
			Note:    note,
			Dropped: p.dropped,
			Frame:   p.frame,
		},
	})
}

// NullContext has no inbound messages and discards the outgoing notes, for
// running without MIDI.
type NullContext struct{}

func (NullContext) NextInput(frame int) (mutseq.Input, bool) { return mutseq.Input{}, false }
func (NullContext) WriteEvent(ev mutseq.NoteEvent)            {}
func (NullContext) FinishBlock(frames int)                    {}
