package oto

import (
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/zynmi/mutseq/player"
)

type (
	// Context is an audio device used as the block clock of a player: every
	// time the device pulls frames, the player processes a block of the same
	// length, just like a plugin inside a host.
	Context struct {
		context    *oto.Context
		sampleRate int
	}

	// Output is a running player.
	Output struct {
		player *oto.Player
	}

	// BlockReader is the io.Reader pulled by the device. Each Read runs one
	// block of the player and returns the monitor signal as stereo 32-bit
	// floats.
	BlockReader struct {
		player     *player.Player
		monitor    *Monitor
		sampleRate float64
		buf        []float32
	}
)

const bytesPerFrame = 2 * 4

// NewContext opens the audio device. bufferSize is the latency of the
// device buffer; zero picks the default of the platform.
func NewContext(sampleRate int, bufferSize time.Duration) (*Context, error) {
	context, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   bufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &Context{context: context, sampleRate: sampleRate}, nil
}

func (c *Context) SampleRate() int { return c.sampleRate }

// Play starts pulling blocks through the player. The outgoing notes go to
// context and to a monitor voice at the given volume (0 for silence).
func (c *Context) Play(p *player.Player, context player.ProcessContext, volume float32) *Output {
	out := c.context.NewPlayer(NewBlockReader(p, context, volume, float64(c.sampleRate)))
	out.Play()
	return &Output{player: out}
}

// Close stops pulling blocks.
func (o *Output) Close() error {
	o.player.Pause()
	if err := o.player.Err(); err != nil {
		return fmt.Errorf("oto player: %w", err)
	}
	return nil
}

func NewBlockReader(p *player.Player, context player.ProcessContext, volume float32, sampleRate float64) *BlockReader {
	return &BlockReader{player: p, monitor: NewMonitor(context, volume), sampleRate: sampleRate}
}

func (r *BlockReader) Read(buf []byte) (int, error) {
	frames := len(buf) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}
	if cap(r.buf) < 2*frames {
		r.buf = make([]float32, 2*frames)
	}
	r.buf = r.buf[:2*frames]
	r.monitor.Reserve(frames)
	r.player.Process(frames, r.monitor)
	r.monitor.Render(r.buf, r.sampleRate)
	return len(FloatBufferToBytes(r.buf, buf[:0])), nil
}
