package player

import (
	"time"

	"github.com/zynmi/mutseq"
)

type (
	// Broker connects the player, which runs on the audio thread, with the
	// model, which runs on a normal goroutine. Each direction is one buffered
	// channel. The player only ever uses TrySend so it cannot block, and a full
	// channel just drops the message.
	//
	// Closing works the same way in both directions: send struct{}{} to
	// CloseModel (capacity 1, so sending never blocks when a close is already
	// pending) and wait for FinishedModel to be closed, preferably with a
	// timeout:
	//    select {
	//      case <-FinishedModel:
	//      case <-time.After(3 * time.Second):
	//    }
	Broker struct {
		ToModel  chan MsgToModel
		ToPlayer chan any

		CloseModel    chan struct{}
		FinishedModel chan struct{}
	}

	// MsgToModel is a message sent to the model. The frequently sent status
	// is not boxed to avoid allocations; everything else travels in Data as
	// a pointer or small value (Alert, *Recording).
	MsgToModel struct {
		HasStatus bool
		Status    Status

		Data any
	}

	// Status is a snapshot of the sequencer, sent after every block.
	Status struct {
		Running bool
		Step    int
		BPM     float64
		Note    int // the held note, -1 if none
		Dropped int // output events lost since the player was created
		Frame   uint64
	}
)

const channelSize = 1024

func NewBroker() *Broker {
	return &Broker{
		ToModel:       make(chan MsgToModel, channelSize),
		ToPlayer:      make(chan any, channelSize),
		CloseModel:    make(chan struct{}, 1),
		FinishedModel: make(chan struct{}),
	}
}

// SetPreset replaces the preset of the player. The bindings are resolved
// here, so the audio thread never searches parameter names.
func (b *Broker) SetPreset(p mutseq.Preset) error {
	table, err := p.BindingTable()
	if err != nil {
		return err
	}
	TrySend(b.ToPlayer, any(&PresetMsg{Preset: p, Bindings: table}))
	return nil
}

// SetParam changes one control of the running preset.
func (b *Broker) SetParam(id mutseq.ParamID, v float32) bool {
	return TrySend(b.ToPlayer, any(ParamMsg{ID: id, Value: v}))
}

// TrySend is a helper function to send a value to a channel if it is not
// full. It is guaranteed to be non-blocking. Return true if the value was
// sent, false otherwise.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TimeoutReceive blocks until a value is received from c or t has passed.
// ok is false on timeout or if the channel is closed.
func TimeoutReceive[T any](c <-chan T, t time.Duration) (v T, ok bool) {
	select {
	case v, ok = <-c:
		return v, ok
	case <-time.After(t):
		return v, false
	}
}
