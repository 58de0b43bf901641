package engine_test

import (
	"math"
	"testing"

	"github.com/zynmi/mutseq"
	"github.com/zynmi/mutseq/engine"
)

func pulses(frames ...int) []mutseq.Input {
	ret := make([]mutseq.Input, len(frames))
	for i, f := range frames {
		ret[i] = mutseq.Pulse(f, mutseq.InputClock)
	}
	return ret
}

func ingest(c *engine.Clock, in ...[]mutseq.Input) {
	for _, list := range in {
		for _, m := range list {
			c.Ingest(m)
		}
	}
}

func TestClockRunning(t *testing.T) {
	start := []mutseq.Input{mutseq.Pulse(0, mutseq.InputStart)}
	stop := []mutseq.Input{mutseq.Pulse(0, mutseq.InputStop)}
	for _, tc := range []struct {
		name    string
		source  mutseq.ClockSource
		running bool
		in      [][]mutseq.Input
		want    bool
	}{
		{"internal stopped", mutseq.ClockInternal, false, nil, false},
		{"internal running", mutseq.ClockInternal, true, nil, true},
		{"internal follows host play", mutseq.ClockInternal, false, [][]mutseq.Input{{mutseq.Transport(0, 100, true)}}, true},
		{"host stopped", mutseq.ClockHost, false, [][]mutseq.Input{{mutseq.Transport(0, 100, false)}}, false},
		{"host playing", mutseq.ClockHost, false, [][]mutseq.Input{{mutseq.Transport(0, 100, true)}}, true},
		{"host manual override", mutseq.ClockHost, true, [][]mutseq.Input{{mutseq.Transport(0, 100, false)}}, true},
		{"external without pulses", mutseq.ClockExternal, true, nil, false},
		{"external one pulse", mutseq.ClockExternal, true, [][]mutseq.Input{pulses(0)}, false},
		{"external two pulses", mutseq.ClockExternal, true, [][]mutseq.Input{pulses(0, 1000)}, true},
		{"external pulses without run or start", mutseq.ClockExternal, false, [][]mutseq.Input{pulses(0, 1000)}, false},
		{"external start then pulses", mutseq.ClockExternal, false, [][]mutseq.Input{start, pulses(0, 1000)}, true},
		{"external stop", mutseq.ClockExternal, false, [][]mutseq.Input{start, pulses(0, 1000), stop}, false},
		{"external start in a running clock", mutseq.ClockExternal, false, [][]mutseq.Input{pulses(0, 1000), start, pulses(2000)}, true},
		{"external start waits for a pulse", mutseq.ClockExternal, false, [][]mutseq.Input{pulses(0, 1000), start}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := mutseq.DefaultConfig()
			cfg.ClockSource = tc.source
			cfg.Running = tc.running
			c := engine.NewClock()
			ingest(&c, tc.in...)
			if got := c.Running(&cfg); got != tc.want {
				t.Errorf("got running %v, want %v", got, tc.want)
			}
		})
	}
}

func TestClockBPM(t *testing.T) {
	for _, tc := range []struct {
		name   string
		source mutseq.ClockSource
		bpm    float64
		in     []mutseq.Input
		want   float64
	}{
		{"internal", mutseq.ClockInternal, 90, nil, 90},
		{"internal clamped high", mutseq.ClockInternal, 500, nil, 300},
		{"internal clamped low", mutseq.ClockInternal, 5, nil, 20},
		{"internal NaN", mutseq.ClockInternal, math.NaN(), nil, 120},
		{"host default", mutseq.ClockHost, 90, nil, 120},
		{"host reported", mutseq.ClockHost, 90, []mutseq.Input{mutseq.Transport(0, 140, true)}, 140},
		{"host clamped high", mutseq.ClockHost, 90, []mutseq.Input{mutseq.Transport(0, 1000, true)}, 300},
		{"host clamped low", mutseq.ClockHost, 90, []mutseq.Input{mutseq.Transport(0, 10, true)}, 20},
		{"host ignores zero tempo", mutseq.ClockHost, 90, []mutseq.Input{mutseq.Transport(0, 0, true)}, 120},
		{"host tempo flag only", mutseq.ClockHost, 90, []mutseq.Input{{Kind: mutseq.InputTransport, Flags: mutseq.TransportTempoValid, BPM: 75}}, 75},
		{"host playing flag only", mutseq.ClockHost, 90, []mutseq.Input{{Kind: mutseq.InputTransport, Flags: mutseq.TransportPlayingValid, BPM: 75, Playing: true}}, 120},
		{"external falls back to internal", mutseq.ClockExternal, 90, pulses(0), 90},
		{"external 1000 samples apart", mutseq.ClockExternal, 90, pulses(0, 1000), 120},
		{"external smoothed", mutseq.ClockExternal, 90, pulses(0, 1000, 3000), 96},
		{"external clamped high", mutseq.ClockExternal, 90, pulses(0, 10), 300},
		{"external clamped low", mutseq.ClockExternal, 90, pulses(0, 48000), 20},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := mutseq.DefaultConfig()
			cfg.ClockSource = tc.source
			cfg.BPM = tc.bpm
			c := engine.NewClock()
			ingest(&c, tc.in)
			if got := c.BPM(&cfg, sampleRate); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("got %v BPM, want %v", got, tc.want)
			}
		})
	}
}

func TestClockTransportFlags(t *testing.T) {
	c := engine.NewClock()
	c.Ingest(mutseq.Input{Kind: mutseq.InputTransport, Flags: mutseq.TransportTempoValid, BPM: 90, Playing: true})
	if c.HostBPM != 90 || c.HostPlaying {
		t.Errorf("tempo only: got %v BPM, playing %v", c.HostBPM, c.HostPlaying)
	}
	c.Ingest(mutseq.Input{Kind: mutseq.InputTransport, Flags: mutseq.TransportPlayingValid, BPM: 60, Playing: true})
	if c.HostBPM != 90 || !c.HostPlaying {
		t.Errorf("playing only: got %v BPM, playing %v", c.HostBPM, c.HostPlaying)
	}
}

func TestClockSmoothing(t *testing.T) {
	c := engine.NewClock()
	ingest(&c, pulses(0, 1000, 3000, 4000))
	// (1000*3 + 2000) / 4 = 1250, then (1250*3 + 1000) / 4 = 1187
	if c.Interval != 1187 {
		t.Errorf("got interval %d, want 1187", c.Interval)
	}
	if c.Pulses != 4 {
		t.Errorf("got %d pulses, want 4", c.Pulses)
	}
	ingest(&c, pulses(5000, 6000, 7000, 8000, 9000, 10000, 11000, 12000, 13000, 14000, 15000, 16000,
		17000, 18000, 19000, 20000, 21000, 22000, 23000, 24000))
	if c.Pulses != 0 {
		t.Errorf("pulse count did not wrap at 24: %d", c.Pulses)
	}
}

func TestClockStopKeepsInterval(t *testing.T) {
	c := engine.NewClock()
	ingest(&c, []mutseq.Input{mutseq.Pulse(0, mutseq.InputStart)}, pulses(0, 1000), []mutseq.Input{mutseq.Pulse(0, mutseq.InputStop)})
	if c.Interval != 1000 || c.Started {
		t.Errorf("after stop: interval %d, started %v", c.Interval, c.Started)
	}
	bpm, ok := c.ExternalBPM(sampleRate)
	if !ok || math.Abs(bpm-120) > 1e-9 {
		t.Errorf("after stop: %v BPM, ok %v", bpm, ok)
	}
}

func TestClockStartKeepsLastPulse(t *testing.T) {
	c := engine.NewClock()
	ingest(&c, pulses(0, 1000), []mutseq.Input{mutseq.Pulse(1500, mutseq.InputStart)})
	if c.Interval != 0 || c.Pulses != 0 || !c.HasLast || c.Last != 1000 {
		t.Fatalf("after start: %+v", c)
	}
	ingest(&c, pulses(2000))
	if c.Interval != 1000 {
		t.Errorf("first pulse after start measured %d, want 1000", c.Interval)
	}
}

// Clock pulses are timed from the block start position.
func TestProcessExternalClock(t *testing.T) {
	cfg, steps := runningPreset()
	cfg.ClockSource = mutseq.ClockExternal
	e := engine.New(sampleRate)
	if ev := process(e, &cfg, &steps, pulses(0), 1000); len(ev) != 0 || e.Clock.Running(&cfg) {
		t.Fatalf("ran after one pulse: %v", ev)
	}
	process(e, &cfg, &steps, pulses(0), 1000)
	if bpm := e.Clock.BPM(&cfg, sampleRate); math.Abs(bpm-120) > 1e-9 {
		t.Errorf("got %v BPM from pulses one block apart, want 120", bpm)
	}
	if !e.Clock.Running(&cfg) {
		t.Error("not running after two pulses")
	}
}

func TestNotesSaturate(t *testing.T) {
	cfg, steps := runningPreset()
	cfg.NumSteps = 2
	cfg.Transpose = 24
	cfg.Mutate = 100
	cfg.VelocityMode = mutseq.VelocityRandom
	cfg.VelocityAmount = 100
	steps[0].Pitch, steps[0].Velocity = 200, 300
	steps[1].Pitch, steps[1].Velocity = -50, 300
	e := engine.New(sampleRate)
	ev := process(e, &cfg, &steps, nil, 6000*16)
	ons := 0
	for _, n := range ev {
		if !n.On {
			continue
		}
		want := byte(127)
		if ons%2 == 1 {
			want = 0
		}
		if n.Note != want || n.Velocity != 127 {
			t.Errorf("note-on %d is note %d velocity %d, want note %d velocity 127", ons, n.Note, n.Velocity, want)
		}
		ons++
	}
	if ons != 16 {
		t.Errorf("got %d note-ons, want 16", ons)
	}
}
