//go:build cgo

package gomidi

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/zynmi/mutseq"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

type (
	// RTMIDIContext connects a player to RtMidi ports. Inbound messages
	// (clock, start, stop, controllers) are timestamped by the driver and
	// converted to frames of the block being processed. Outgoing notes are
	// handed to a sender goroutine that sends each one at the wall clock time
	// of its frame, so the audio thread never waits for the port.
	RTMIDIContext struct {
		driver     *rtmididrv.Driver
		sampleRate float64

		in         drivers.In
		stopListen func()

		mu  sync.Mutex // guards out, which the sender goroutine uses
		out drivers.Out

		events        chan timestampedMsg
		eventsBuf     []timestampedMsg
		eventIndex    int
		startFrame    int
		startFrameSet bool

		outgoing    chan timedEvent
		blockStart  time.Time
		blockSet    bool
		closeOut    chan struct{}
		finishedOut chan struct{}
	}

	timestampedMsg struct {
		frame int
		msg   midi.Message
	}

	timedEvent struct {
		at time.Time
		ev mutseq.NoteEvent
	}
)

const eventBufferSize = 1024

// NewContext opens the RtMidi driver. No ports are open yet.
func NewContext(sampleRate float64) (*RTMIDIContext, error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDriver, err)
	}
	c := &RTMIDIContext{
		driver:      driver,
		sampleRate:  sampleRate,
		events:      make(chan timestampedMsg, eventBufferSize),
		eventsBuf:   make([]timestampedMsg, 0, eventBufferSize),
		outgoing:    make(chan timedEvent, eventBufferSize),
		closeOut:    make(chan struct{}, 1),
		finishedOut: make(chan struct{}),
	}
	go c.sendLoop()
	return c, nil
}

// Inputs lists the names of the input ports.
func (c *RTMIDIContext) Inputs() []string {
	ins, err := c.driver.Ins()
	if err != nil {
		return nil
	}
	ret := make([]string, len(ins))
	for i, in := range ins {
		ret[i] = in.String()
	}
	return ret
}

// Outputs lists the names of the output ports.
func (c *RTMIDIContext) Outputs() []string {
	outs, err := c.driver.Outs()
	if err != nil {
		return nil
	}
	ret := make([]string, len(outs))
	for i, out := range outs {
		ret[i] = out.String()
	}
	return ret
}

// OpenInput opens the first input port whose name starts with namePrefix,
// closing the currently open one. An empty prefix takes the first port.
func (c *RTMIDIContext) OpenInput(namePrefix string) error {
	ins, err := c.driver.Ins()
	if err != nil {
		return fmt.Errorf("listing MIDI inputs failed: %w", err)
	}
	for _, in := range ins {
		if !strings.HasPrefix(in.String(), namePrefix) {
			continue
		}
		c.closeInput()
		if err := in.Open(); err != nil {
			return fmt.Errorf("opening MIDI input failed: %w", err)
		}
		stop, err := midi.ListenTo(in, c.HandleMessage)
		if err != nil {
			in.Close()
			return fmt.Errorf("listening to MIDI input failed: %w", err)
		}
		c.in, c.stopListen = in, stop
		return nil
	}
	return fmt.Errorf("could not find any MIDI input starting with %q", namePrefix)
}

// OpenOutput opens the first output port whose name starts with namePrefix.
func (c *RTMIDIContext) OpenOutput(namePrefix string) error {
	outs, err := c.driver.Outs()
	if err != nil {
		return fmt.Errorf("listing MIDI outputs failed: %w", err)
	}
	for _, out := range outs {
		if !strings.HasPrefix(out.String(), namePrefix) {
			continue
		}
		if err := out.Open(); err != nil {
			return fmt.Errorf("opening MIDI output failed: %w", err)
		}
		c.mu.Lock()
		old := c.out
		c.out = out
		c.mu.Unlock()
		if old != nil && old.IsOpen() {
			old.Close()
		}
		return nil
	}
	return fmt.Errorf("could not find any MIDI output starting with %q", namePrefix)
}

// HandleMessage is called by the driver for every inbound message. If the
// buffer is full, the message is dropped.
func (c *RTMIDIContext) HandleMessage(msg midi.Message, timestampms int32) {
	select {
	case c.events <- timestampedMsg{frame: int(float64(timestampms) * c.sampleRate / 1000), msg: msg}:
	default:
	}
}

func (c *RTMIDIContext) NextInput(frame int) (in mutseq.Input, ok bool) {
	if !c.blockSet {
		c.blockStart = time.Now()
		c.blockSet = true
	}
F:
	for {
		select {
		case msg := <-c.events:
			if len(c.eventsBuf) == cap(c.eventsBuf) {
				continue
			}
			c.eventsBuf = append(c.eventsBuf, msg)
			if !c.startFrameSet {
				c.startFrame = msg.frame
				c.startFrameSet = true
			}
		default:
			break F
		}
	}
	for c.eventIndex < len(c.eventsBuf) {
		m := c.eventsBuf[c.eventIndex]
		f := m.frame - c.startFrame
		if f >= frame {
			break
		}
		c.eventIndex++
		if f < 0 {
			// the event arrived later than its timestamp says; move the
			// internal clock towards it
			c.startFrame += f / 5
			f = 0
		}
		if in, ok := Decode(m.msg, f); ok {
			return in, true
		}
	}
	return mutseq.Input{}, false
}

func (c *RTMIDIContext) WriteEvent(ev mutseq.NoteEvent) {
	at := c.blockStart.Add(time.Duration(float64(ev.Frame) / c.sampleRate * float64(time.Second)))
	select {
	case c.outgoing <- timedEvent{at: at, ev: ev}:
	default:
	}
}

func (c *RTMIDIContext) FinishBlock(frames int) {
	c.startFrame += frames
	n := copy(c.eventsBuf, c.eventsBuf[c.eventIndex:])
	c.eventsBuf = c.eventsBuf[:n]
	c.eventIndex = 0
	if n > 0 {
		// events still waiting are in the future; if they are more than a
		// block ahead, the internal clock lags and is moved towards them
		if delta := c.eventsBuf[0].frame - c.startFrame; delta > frames {
			c.startFrame += delta / 5
		}
	}
	c.blockSet = false
}

func (c *RTMIDIContext) sendLoop() {
	defer close(c.finishedOut)
	for {
		select {
		case <-c.closeOut:
			return
		case m := <-c.outgoing:
			if d := time.Until(m.at); d > 0 {
				select {
				case <-time.After(d):
				case <-c.closeOut:
					return
				}
			}
			c.mu.Lock()
			if c.out != nil {
				c.out.Send(Encode(m.ev).Bytes())
			}
			c.mu.Unlock()
		}
	}
}

func (c *RTMIDIContext) closeInput() {
	if c.stopListen != nil {
		c.stopListen()
		c.stopListen = nil
	}
	if c.in != nil && c.in.IsOpen() {
		c.in.Close()
	}
	c.in = nil
}

// Close stops the sender goroutine, closes the ports and the driver.
func (c *RTMIDIContext) Close() {
	select {
	case c.closeOut <- struct{}{}:
	default:
	}
	select {
	case <-c.finishedOut:
	case <-time.After(3 * time.Second):
	}
	c.closeInput()
	c.mu.Lock()
	if c.out != nil && c.out.IsOpen() {
		c.out.Close()
	}
	c.out = nil
	c.mu.Unlock()
	c.driver.Close()
}
