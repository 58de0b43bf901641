// Package analysis computes groove statistics of a recorded or rendered note
// stream: timing between onsets, swing, timing deviation from a grid and
// the spread of velocities, pitches and note lengths.
package analysis

import (
	"math"

	"github.com/viterin/vek/vek32"
	"github.com/zynmi/mutseq/player"
)

type (
	// Groove summarizes a note stream. Times are in milliseconds.
	Groove struct {
		Notes        int
		Seconds      float64
		NotesPerBeat float32
		IOI          Stats // inter-onset intervals
		Length       Stats // note lengths
		Velocity     Stats
		Pitch        Stats
		// SwingRatio is the mean of the longer of the alternating
		// inter-onset intervals over the mean of the shorter ones; 1 is
		// straight.
		SwingRatio float32
	}

	Stats struct {
		Mean   float32
		Min    float32
		Max    float32
		StdDev float32
	}
)

// Analyze computes the groove of a recording. It needs the sample rate and
// tempo of the recording.
func Analyze(r *player.Recording) (Groove, error) {
	notes := r.Notes()
	if len(notes) == 0 {
		return Groove{}, player.ErrEmptyRecording
	}
	onsets := make([]float32, len(notes))
	lengths := make([]float32, len(notes))
	velocities := make([]float32, len(notes))
	pitches := make([]float32, len(notes))
	for i, n := range notes {
		onsets[i] = toMillis(r, n.Start)
		lengths[i] = toMillis(r, n.Length)
		velocities[i] = float32(n.Velocity)
		pitches[i] = float32(n.Key)
	}
	g := Groove{
		Notes:    len(notes),
		Seconds:  r.Seconds(r.TotalFrames),
		Length:   stats(lengths),
		Velocity: stats(velocities),
		Pitch:    stats(pitches),
	}
	if beats := g.Seconds * r.BPM / 60; beats > 0 {
		g.NotesPerBeat = float32(float64(len(notes)) / beats)
	}
	if len(onsets) > 1 {
		ioi := vek32.Sub(onsets[1:], onsets[:len(onsets)-1])
		g.IOI = stats(ioi)
		g.SwingRatio = swingRatio(ioi)
	}
	return g, nil
}

// Deviation returns the timing of the onsets relative to the nearest line of
// a grid of gridFrames frames, in milliseconds.
func Deviation(r *player.Recording, gridFrames float64) Stats {
	if gridFrames <= 0 {
		return Stats{}
	}
	var dev []float32
	for _, n := range r.Notes() {
		line := math.Round(float64(n.Start)/gridFrames) * gridFrames
		dev = append(dev, float32((float64(n.Start)-line)/r.SampleRate*1000))
	}
	return stats(dev)
}

func swingRatio(ioi []float32) float32 {
	var even, odd []float32
	for i, v := range ioi {
		if i%2 == 0 {
			even = append(even, v)
		} else {
			odd = append(odd, v)
		}
	}
	if len(even) == 0 || len(odd) == 0 {
		return 1
	}
	a, b := vek32.Mean(even), vek32.Mean(odd)
	if a < b {
		a, b = b, a
	}
	if b <= 0 {
		return 1
	}
	return a / b
}

func stats(x []float32) Stats {
	if len(x) == 0 {
		return Stats{}
	}
	mean := vek32.Mean(x)
	d := vek32.SubNumber(x, mean)
	return Stats{
		Mean:   mean,
		Min:    vek32.Min(x),
		Max:    vek32.Max(x),
		StdDev: float32(math.Sqrt(float64(vek32.Dot(d, d) / float32(len(x))))),
	}
}

func toMillis(r *player.Recording, frames int) float32 {
	return float32(r.Seconds(frames) * 1000)
}
