package analysis_test

import (
	"errors"
	"math"
	"testing"

	"github.com/zynmi/mutseq"
	"github.com/zynmi/mutseq/analysis"
	"github.com/zynmi/mutseq/engine"
	"github.com/zynmi/mutseq/player"
)

func render(t *testing.T, p mutseq.Preset, frames int) *player.Recording {
	t.Helper()
	ev, err := engine.Render(&p, 48000, frames, 256, nil)
	if err != nil {
		t.Fatal(err)
	}
	return &player.Recording{BPM: p.Config.BPM, SampleRate: 48000, Events: ev, TotalFrames: frames}
}

func near(a, b, eps float32) bool {
	return math.Abs(float64(a-b)) <= float64(eps)
}

func TestAnalyzeStraight(t *testing.T) {
	g, err := analysis.Analyze(render(t, mutseq.DefaultPreset(), 96000))
	if err != nil {
		t.Fatal(err)
	}
	if g.Notes != 16 || g.NotesPerBeat != 4 || g.Seconds != 2 {
		t.Errorf("%d notes, %v per beat, %v s", g.Notes, g.NotesPerBeat, g.Seconds)
	}
	if !near(g.IOI.Mean, 125, 1e-3) || !near(g.IOI.StdDev, 0, 1e-3) || !near(g.SwingRatio, 1, 1e-4) {
		t.Errorf("IOI %+v, swing ratio %v", g.IOI, g.SwingRatio)
	}
	if g.Velocity.Mean != 100 || g.Pitch.Min != 60 || g.Pitch.Max != 72 {
		t.Errorf("velocity %+v, pitch %+v", g.Velocity, g.Pitch)
	}
	if !near(g.Length.Min, 62.5, 1e-3) {
		t.Errorf("length %+v", g.Length)
	}
}

func TestAnalyzeSwing(t *testing.T) {
	p := mutseq.DefaultPreset()
	p.Config.Swing = 50
	g, err := analysis.Analyze(render(t, p, 96000))
	if err != nil {
		t.Fatal(err)
	}
	if want := float32(6990.0 / 5010.0); !near(g.SwingRatio, want, 1e-3) {
		t.Errorf("swing ratio %v, want %v", g.SwingRatio, want)
	}
}

func TestDeviation(t *testing.T) {
	p := mutseq.DefaultPreset()
	straight := analysis.Deviation(render(t, p, 96000*4), 6000)
	if !near(straight.StdDev, 0, 1e-3) || !near(straight.Mean, -1.0/48, 1e-3) {
		t.Errorf("straight deviation %+v", straight)
	}
	p.Config.Humanize = 100
	human := analysis.Deviation(render(t, p, 96000*4), 6000)
	if human.StdDev <= 0.1 || human.Min < -10.1 || human.Max > 10.1 {
		t.Errorf("humanized deviation %+v", human)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	if _, err := analysis.Analyze(&player.Recording{SampleRate: 48000, BPM: 120}); !errors.Is(err, player.ErrEmptyRecording) {
		t.Errorf("expected ErrEmptyRecording, got %v", err)
	}
}
