package player

import (
	"fmt"
	"time"

	"github.com/zynmi/mutseq"
)

type (
	// PresetMsg replaces the whole preset. Use Broker.SetPreset to build one.
	PresetMsg struct {
		Preset   mutseq.Preset
		Bindings mutseq.BindingTable
	}

	// ParamMsg sets one control, as a host automating a control port would.
	ParamMsg struct {
		ID    mutseq.ParamID
		Value float32
	}

	// PanicMsg releases the held note and restarts the engine from step 0
	// with a fresh random seed state.
	PanicMsg struct{}

	// RecordingMsg starts (true) or stops (false) recording the outgoing
	// notes. Recording starts on the first note-on after the request.
	RecordingMsg struct {
		bool
	}

	// Alert is a message from the player to be shown to the user.
	Alert struct {
		Name     string
		Priority AlertPriority
		Message  string
		Duration time.Duration
	}

	AlertPriority int
)

const (
	None AlertPriority = iota
	Info
	Warning
	Error
)

const defaultAlertDuration = 3 * time.Second

// StartRecording returns a message that starts recording.
func StartRecording() RecordingMsg { return RecordingMsg{true} }

// StopRecording returns a message that stops recording and sends the
// recording to the model.
func StopRecording() RecordingMsg { return RecordingMsg{false} }

func (p AlertPriority) String() string {
	switch p {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "none"
	}
}

func (a Alert) String() string {
	return fmt.Sprintf("%s: %s (%s)", a.Priority, a.Message, a.Name)
}
