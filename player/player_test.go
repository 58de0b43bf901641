package player_test

import (
	"reflect"
	"testing"

	"github.com/zynmi/mutseq"
	"github.com/zynmi/mutseq/player"
)

// testContext feeds scripted inputs and collects the written events with
// absolute frames.
type testContext struct {
	inputs []mutseq.Input
	events []mutseq.NoteEvent
	offset int
}

func (c *testContext) NextInput(frame int) (mutseq.Input, bool) {
	if len(c.inputs) == 0 || c.inputs[0].Frame >= frame {
		return mutseq.Input{}, false
	}
	in := c.inputs[0]
	c.inputs = c.inputs[1:]
	return in, true
}

func (c *testContext) WriteEvent(ev mutseq.NoteEvent) {
	ev.Frame += c.offset
	c.events = append(c.events, ev)
}

func (c *testContext) FinishBlock(frames int) {
	c.offset += frames
}

func newPlayer(t *testing.T, preset mutseq.Preset) (*player.Player, *player.Broker) {
	t.Helper()
	b := player.NewBroker()
	p, err := player.NewPlayer(b, 48000, preset)
	if err != nil {
		t.Fatal(err)
	}
	return p, b
}

func run(p *player.Player, c *testContext, frames, blockSize int) {
	for frames > 0 {
		n := min(frames, blockSize)
		p.Process(n, c)
		frames -= n
	}
}

func drain(b *player.Broker) (ret []player.MsgToModel) {
	for {
		select {
		case m := <-b.ToModel:
			ret = append(ret, m)
		default:
			return
		}
	}
}

func TestPlayerPlaysPreset(t *testing.T) {
	p, b := newPlayer(t, mutseq.DefaultPreset())
	c := &testContext{}
	run(p, c, 12000, 512)
	want := []mutseq.NoteEvent{
		{Frame: 5999, On: true, Note: 60, Velocity: 100},
		{Frame: 8999, Note: 60},
		{Frame: 11999, On: true, Note: 62, Velocity: 100},
	}
	if !reflect.DeepEqual(c.events, want) {
		t.Fatalf("got %v, want %v", c.events, want)
	}
	msgs := drain(b)
	if len(msgs) == 0 {
		t.Fatal("no status was sent")
	}
	last := msgs[len(msgs)-1]
	if !last.HasStatus || !last.Status.Running || last.Status.Step != 1 || last.Status.Note != 62 || last.Status.Frame != 12000 {
		t.Errorf("unexpected status %+v", last.Status)
	}
}

func TestPlayerAppliesControllers(t *testing.T) {
	preset := mutseq.DefaultPreset()
	preset.Bindings = []mutseq.Binding{{CC: 74, Param: "bpm"}, {CC: 20, Param: "step1.ratchet"}}
	p, _ := newPlayer(t, preset)
	c := &testContext{inputs: []mutseq.Input{
		{Kind: mutseq.InputControl, Controller: 74, Value: 127},
		{Kind: mutseq.InputControl, Controller: 20, Value: 0},
		{Kind: mutseq.InputControl, Controller: 3, Value: 100},
	}}
	p.Process(64, c)
	got := p.Preset()
	want := preset
	want.Config.BPM = 300
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestPlayerParamMsgStops(t *testing.T) {
	p, b := newPlayer(t, mutseq.DefaultPreset())
	c := &testContext{}
	run(p, c, 6000, 1000)
	if !b.SetParam(mutseq.ParamRunning, 0) {
		t.Fatal("could not send to the player")
	}
	run(p, c, 6000, 1000)
	want := []mutseq.NoteEvent{
		{Frame: 5999, On: true, Note: 60, Velocity: 100},
		{Frame: 6000, Note: 60},
	}
	if !reflect.DeepEqual(c.events, want) {
		t.Fatalf("got %v, want %v", c.events, want)
	}
}

func TestPlayerChannelChangeReleasesNote(t *testing.T) {
	p, b := newPlayer(t, mutseq.DefaultPreset())
	c := &testContext{}
	run(p, c, 6000, 1000)
	preset := mutseq.DefaultPreset()
	preset.Channel = 3
	if err := b.SetPreset(preset); err != nil {
		t.Fatal(err)
	}
	p.Process(100, c)
	want := []mutseq.NoteEvent{
		{Frame: 5999, On: true, Note: 60, Velocity: 100},
		{Frame: 6000, Channel: 0, Note: 60},
	}
	if !reflect.DeepEqual(c.events, want) {
		t.Fatalf("got %v, want %v", c.events, want)
	}
	run(p, c, 6000, 1000)
	if ev := c.events[len(c.events)-1]; !ev.On || ev.Channel != 2 {
		t.Errorf("expected a note-on on the new channel, got %+v", ev)
	}
}

func TestPlayerPanic(t *testing.T) {
	p, b := newPlayer(t, mutseq.DefaultPreset())
	c := &testContext{}
	run(p, c, 12000, 1000)
	player.TrySend(b.ToPlayer, any(player.PanicMsg{}))
	drain(b)
	p.Process(100, c)
	if ev := c.events[len(c.events)-1]; ev.On || ev.Frame != 12000 || ev.Note != 62 {
		t.Errorf("expected the held note to be released, got %+v", ev)
	}
	msgs := drain(b)
	if s := msgs[len(msgs)-1].Status; s.Step != 0 || s.Note != -1 {
		t.Errorf("panic did not restart the sequence: %+v", s)
	}
}

func TestPlayerRecording(t *testing.T) {
	p, b := newPlayer(t, mutseq.DefaultPreset())
	c := &testContext{}
	player.TrySend(b.ToPlayer, any(player.StartRecording()))
	run(p, c, 12000, 1000)
	player.TrySend(b.ToPlayer, any(player.StopRecording()))
	p.Process(1000, c)
	var rec *player.Recording
	for _, m := range drain(b) {
		if r, ok := m.Data.(*player.Recording); ok {
			rec = r
		}
	}
	if rec == nil {
		t.Fatal("no recording was sent")
	}
	want := player.Recording{
		BPM:        120,
		SampleRate: 48000,
		Events: []mutseq.NoteEvent{
			{Frame: 0, On: true, Note: 60, Velocity: 100},
			{Frame: 3000, Note: 60},
			{Frame: 6000, On: true, Note: 62, Velocity: 100},
		},
		TotalFrames: 6001,
	}
	if !reflect.DeepEqual(*rec, want) {
		t.Errorf("got %+v, want %+v", *rec, want)
	}
}

func TestPlayerRejectsBadBindings(t *testing.T) {
	preset := mutseq.DefaultPreset()
	preset.Bindings = []mutseq.Binding{{CC: 1, Param: "resonance"}}
	if _, err := player.NewPlayer(player.NewBroker(), 48000, preset); err == nil {
		t.Error("expected an error")
	}
	if err := player.NewBroker().SetPreset(preset); err == nil {
		t.Error("expected an error")
	}
}

func TestRecordingNotes(t *testing.T) {
	r := player.Recording{
		SampleRate: 1000,
		Events: []mutseq.NoteEvent{
			{Frame: 0, On: true, Note: 60, Velocity: 90},
			{Frame: 250, Note: 60},
			{Frame: 500, On: true, Note: 64, Velocity: 80},
			{Frame: 600, On: true, Note: 64, Velocity: 70},
			{Frame: 700, Channel: 1, On: true, Note: 64, Velocity: 60},
		},
		TotalFrames: 1000,
	}
	want := []player.Note{
		{Start: 0, Length: 250, Key: 60, Velocity: 90},
		{Start: 500, Length: 100, Key: 64, Velocity: 80},
		{Start: 600, Length: 400, Key: 64, Velocity: 70},
		{Start: 700, Length: 300, Channel: 1, Key: 64, Velocity: 60},
	}
	if got := r.Notes(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if r.Seconds(1500) != 1.5 {
		t.Error("wrong conversion to seconds")
	}
}
