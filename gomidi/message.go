package gomidi

import (
	"errors"

	"github.com/zynmi/mutseq"
	"gitlab.com/gomidi/midi/v2"
)

// Decode converts an inbound MIDI message into an engine input at the given
// frame. Real-time clock messages become clock inputs and control changes
// become controller inputs; everything else is ignored.
func Decode(msg midi.Message, frame int) (in mutseq.Input, ok bool) {
	var channel, controller, value uint8
	switch {
	case msg.Is(midi.TimingClockMsg):
		return mutseq.Pulse(frame, mutseq.InputClock), true
	case msg.Is(midi.StartMsg):
		return mutseq.Pulse(frame, mutseq.InputStart), true
	case msg.Is(midi.ContinueMsg):
		return mutseq.Pulse(frame, mutseq.InputContinue), true
	case msg.Is(midi.StopMsg):
		return mutseq.Pulse(frame, mutseq.InputStop), true
	case msg.GetControlChange(&channel, &controller, &value):
		return mutseq.Input{Frame: frame, Kind: mutseq.InputControl, Controller: controller, Value: value}, true
	}
	return mutseq.Input{}, false
}

// Encode converts an outgoing note into a MIDI message.
func Encode(ev mutseq.NoteEvent) midi.Message {
	ch := uint8(mutseq.Clamp(ev.Channel, 0, 15))
	if ev.On {
		return midi.NoteOn(ch, ev.Note&0x7f, ev.Velocity&0x7f)
	}
	return midi.NoteOff(ch, ev.Note&0x7f)
}

// ErrNoDriver is returned when no MIDI driver is available, e.g. in builds
// without cgo.
var ErrNoDriver = errors.New("no MIDI driver available")
