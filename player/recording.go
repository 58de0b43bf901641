package player

import (
	"errors"
	"math"

	"github.com/zynmi/mutseq"
)

// Recording is a list of outgoing notes. Frames are relative to the first
// recorded note (or to the start of a render).
type Recording struct {
	BPM         float64 // effective tempo when the recording stopped
	SampleRate  float64
	Events      []mutseq.NoteEvent
	TotalFrames int
}

// Note is a note-on paired with the event that ends it.
type Note struct {
	Start    int
	Length   int
	Channel  int
	Key      byte
	Velocity byte
}

var ErrEmptyRecording = errors.New("the recording has no notes")

// Notes pairs every note-on with the next event of the same channel and
// key. A note that never ends lasts until TotalFrames.
func (r *Recording) Notes() []Note {
	var ret []Note
	for i, m := range r.Events {
		if !m.On {
			continue
		}
		endFrame := math.MaxInt
		for j := i + 1; j < len(r.Events); j++ {
			if r.Events[j].Channel == m.Channel && r.Events[j].Note == m.Note {
				endFrame = r.Events[j].Frame
				break
			}
		}
		if endFrame == math.MaxInt {
			endFrame = max(r.TotalFrames, m.Frame)
		}
		ret = append(ret, Note{Start: m.Frame, Length: endFrame - m.Frame, Channel: m.Channel, Key: m.Note, Velocity: m.Velocity})
	}
	return ret
}

// Seconds converts a frame count of the recording to seconds.
func (r *Recording) Seconds(frames int) float64 {
	if r.SampleRate <= 0 {
		return 0
	}
	return float64(frames) / r.SampleRate
}
