package mutseq

type (
	// Input is an inbound message folded into the clock state at the start
	// of a block. Frame is relative to the start of the block.
	Input struct {
		Frame int
		Kind  InputKind

		// Transport only: BPM is valid if Flags has TransportTempoValid, and
		// Playing is valid if Flags has TransportPlayingValid.
		Flags   TransportFlags
		BPM     float64
		Playing bool

		// Control only: a 7-bit controller change.
		Controller uint8
		Value      uint8
	}

	InputKind int

	TransportFlags int

	// NoteEvent is an outbound note. Velocity is 0 for note-offs. In
	// processing, Frame is relative to the start of the current block; in a
	// rendered or recorded event list it is relative to the start of the
	// rendering.
	NoteEvent struct {
		Frame    int
		On       bool
		Channel  int
		Note     byte
		Velocity byte
	}
)

const (
	InputNone      InputKind = iota
	InputTransport           // host tempo / play state
	InputClock               // one of 24 pulses per quarter note
	InputStart
	InputContinue
	InputStop
	InputControl // controller change, mapped to a param by the player
)

const (
	TransportTempoValid TransportFlags = 1 << iota
	TransportPlayingValid
)

// ClocksPerQuarter is the pulse rate of an external clock.
const ClocksPerQuarter = 24

// Transport is a helper to construct a host transport message.
func Transport(frame int, bpm float64, playing bool) Input {
	return Input{Frame: frame, Kind: InputTransport, Flags: TransportTempoValid | TransportPlayingValid, BPM: bpm, Playing: playing}
}

// Pulse is a helper to construct a clock message of the given kind.
func Pulse(frame int, kind InputKind) Input {
	return Input{Frame: frame, Kind: kind}
}
