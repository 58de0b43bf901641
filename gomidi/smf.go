package gomidi

import (
	"cmp"
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/zynmi/mutseq"
	"github.com/zynmi/mutseq/player"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// TicksPerQuarter is the resolution of the written MIDI files.
const TicksPerQuarter = 960

// WriteSMF writes the recording as a single track Standard MIDI File with
// the recording tempo. Frames are converted to ticks by rounding the
// absolute position, so rounding errors do not accumulate.
func WriteSMF(w io.Writer, r *player.Recording) error {
	if len(r.Events) == 0 {
		return player.ErrEmptyRecording
	}
	if r.SampleRate <= 0 || r.BPM <= 0 {
		return fmt.Errorf("invalid recording: sample rate %v, tempo %v", r.SampleRate, r.BPM)
	}
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)
	var track smf.Track
	track.Add(0, smf.MetaMeter(4, 4))
	track.Add(0, smf.MetaTempo(r.BPM))
	var last uint32
	for _, ev := range r.Events {
		tick := frameToTick(ev.Frame, r.SampleRate, r.BPM)
		if tick < last {
			tick = last
		}
		track.Add(tick-last, Encode(ev))
		last = tick
	}
	end := max(frameToTick(r.TotalFrames, r.SampleRate, r.BPM), last)
	track.Close(end - last)
	if err := s.Add(track); err != nil {
		return fmt.Errorf("could not add track: %w", err)
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("could not write MIDI file: %w", err)
	}
	return nil
}

// ReadSMF reads the note events of all tracks of a Standard MIDI File into
// a recording at the given sample rate. Only the first tempo of the file is
// used; files without a tempo are assumed to run at 120 BPM.
func ReadSMF(rd io.Reader, sampleRate float64) (*player.Recording, error) {
	s, err := smf.ReadFrom(rd)
	if err != nil {
		return nil, fmt.Errorf("could not read MIDI file: %w", err)
	}
	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("unsupported time format %v", s.TimeFormat)
	}
	r := &player.Recording{BPM: 120, SampleRate: sampleRate}
	if tc := s.TempoChanges(); len(tc) > 0 && tc[0].BPM > 0 {
		r.BPM = tc[0].BPM
	}
	var endTick uint32
	for _, track := range s.Tracks {
		var abs uint32
		for _, ev := range track {
			abs += ev.Delta
			var channel, key, velocity uint8
			msg := midi.Message(ev.Message)
			switch {
			case msg.GetNoteStart(&channel, &key, &velocity):
				r.Events = append(r.Events, mutseq.NoteEvent{Frame: tickToFrame(abs, ticks, sampleRate, r.BPM), On: true, Channel: int(channel), Note: key, Velocity: velocity})
			case msg.GetNoteEnd(&channel, &key):
				r.Events = append(r.Events, mutseq.NoteEvent{Frame: tickToFrame(abs, ticks, sampleRate, r.BPM), Channel: int(channel), Note: key})
			}
		}
		endTick = max(endTick, abs)
	}
	if len(r.Events) == 0 {
		return nil, player.ErrEmptyRecording
	}
	sortEvents(r.Events)
	r.TotalFrames = tickToFrame(endTick, ticks, sampleRate, r.BPM)
	return r, nil
}

func frameToTick(frame int, sampleRate, bpm float64) uint32 {
	if frame <= 0 {
		return 0
	}
	return uint32(math.Round(float64(frame) / sampleRate * bpm / 60 * TicksPerQuarter))
}

func tickToFrame(tick uint32, resolution smf.MetricTicks, sampleRate, bpm float64) int {
	return int(math.Round(float64(tick) / float64(resolution.Resolution()) * 60 / bpm * sampleRate))
}

// sortEvents merges the tracks into frame order, keeping the order of
// events at the same frame. A note and its own release can round to the
// same tick, so the order within a track must survive.
func sortEvents(ev []mutseq.NoteEvent) {
	slices.SortStableFunc(ev, func(a, b mutseq.NoteEvent) int {
		return cmp.Compare(a.Frame, b.Frame)
	})
}
