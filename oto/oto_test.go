package oto_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/zynmi/mutseq"
	"github.com/zynmi/mutseq/engine"
	"github.com/zynmi/mutseq/oto"
	"github.com/zynmi/mutseq/player"
)

type countingContext struct {
	player.NullContext
	frames, notes int
}

func (c *countingContext) WriteEvent(ev mutseq.NoteEvent) { c.notes++ }
func (c *countingContext) FinishBlock(frames int)         { c.frames += frames }

func TestBlockReader(t *testing.T) {
	p, err := player.NewPlayer(player.NewBroker(), 48000, mutseq.DefaultPreset())
	if err != nil {
		t.Fatal(err)
	}
	ctx := &countingContext{}
	r := oto.NewBlockReader(p, ctx, 0.5, 48000)
	buf := make([]byte, 512*8)
	var peakBefore, peakAfter float32
	for frame := 0; frame < 7680; frame += 512 {
		n, err := r.Read(buf)
		if err != nil || n != len(buf) {
			t.Fatalf("read %d bytes, %v", n, err)
		}
		for i := 0; i < n; i += 4 {
			v := float32(math.Abs(float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[i:])))))
			if frame+i/8 < 5999 {
				peakBefore = max(peakBefore, v)
			} else {
				peakAfter = max(peakAfter, v)
			}
		}
	}
	if ctx.frames != 7680 || ctx.notes != 1 {
		t.Errorf("player ran %d frames and wrote %d notes", ctx.frames, ctx.notes)
	}
	if peakBefore != 0 {
		t.Errorf("monitor sounded before the first note: %v", peakBefore)
	}
	if peakAfter <= 0.1 || peakAfter > 0.5 {
		t.Errorf("monitor peak %v after the first note", peakAfter)
	}
}

func TestFloatBufferToBytes(t *testing.T) {
	b := oto.FloatBufferToBytes([]float32{0.5, -2, 3}, nil)
	want := []float32{0.5, -1, 1}
	for i, w := range want {
		if got := math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:])); got != w {
			t.Errorf("sample %d: got %v, want %v", i, got, w)
		}
	}
}

func TestRenderMonitor(t *testing.T) {
	p := mutseq.DefaultPreset()
	ev, err := engine.Render(&p, 48000, 12000, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	buf := oto.RenderMonitor(ev, 12000, 48000, 1)
	if len(buf) != 24000 {
		t.Fatalf("got %d samples, want 24000", len(buf))
	}
	for i := 0; i < 2*5999; i++ {
		if buf[i] != 0 {
			t.Fatalf("sample %d is %v before the first note", i, buf[i])
		}
	}
	var peak float32
	for _, v := range buf[2*5999:] {
		peak = max(peak, v)
	}
	if peak < 0.5 {
		t.Errorf("monitor peak %v after the first note", peak)
	}
}

func TestWav(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 2}
	for _, tc := range []struct {
		pcm16     bool
		headerLen int
		format    uint16
		bits      uint16
	}{
		{false, 58, 3, 32},
		{true, 44, 1, 16},
	} {
		b, err := oto.Wav(samples, 48000, tc.pcm16)
		if err != nil {
			t.Fatal(err)
		}
		bytesPerSample := int(tc.bits / 8)
		if len(b) != tc.headerLen+bytesPerSample*len(samples) {
			t.Errorf("pcm16=%v: file is %d bytes", tc.pcm16, len(b))
			continue
		}
		if !bytes.Equal(b[:4], []byte("RIFF")) || !bytes.Equal(b[8:16], []byte("WAVEfmt ")) {
			t.Errorf("pcm16=%v: bad magic %q", tc.pcm16, b[:16])
		}
		if got := binary.LittleEndian.Uint32(b[4:]); int(got) != len(b)-8 {
			t.Errorf("pcm16=%v: chunk size %d, want %d", tc.pcm16, got, len(b)-8)
		}
		if got := binary.LittleEndian.Uint16(b[20:]); got != tc.format {
			t.Errorf("pcm16=%v: format %d, want %d", tc.pcm16, got, tc.format)
		}
		if got := binary.LittleEndian.Uint32(b[24:]); got != 48000 {
			t.Errorf("pcm16=%v: sample rate %d", tc.pcm16, got)
		}
		if got := binary.LittleEndian.Uint16(b[34:]); got != tc.bits {
			t.Errorf("pcm16=%v: %d bits per sample", tc.pcm16, got)
		}
		if !bytes.Equal(b[tc.headerLen-8:tc.headerLen-4], []byte("data")) {
			t.Errorf("pcm16=%v: no data chunk at %d", tc.pcm16, tc.headerLen-8)
		}
	}
	b, _ := oto.Wav(samples, 48000, true)
	if got := int16(binary.LittleEndian.Uint16(b[44+6:])); got != 32767 {
		t.Errorf("clipped sample is %d, want 32767", got)
	}
}

func TestMonitorReserve(t *testing.T) {
	ctx := &countingContext{}
	m := oto.NewMonitor(ctx, 1)
	for i := 0; i < 100; i++ {
		m.WriteEvent(mutseq.NoteEvent{Frame: 0, On: true, Note: 60, Velocity: 100})
	}
	if m.Dropped == 0 || ctx.notes != 100 {
		t.Errorf("without a reservation: %d dropped, %d forwarded", m.Dropped, ctx.notes)
	}
	m.Render(make([]float32, 2*16), 48000)

	m = oto.NewMonitor(ctx, 1)
	m.Reserve(4096)
	for i := 0; i < engine.MaxEvents(4096); i++ {
		m.WriteEvent(mutseq.NoteEvent{Frame: i / 2, On: i%2 == 0, Note: 60, Velocity: 100})
	}
	if m.Dropped != 0 {
		t.Errorf("%d events dropped from a reserved block", m.Dropped)
	}
}
