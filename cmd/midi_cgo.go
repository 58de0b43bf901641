//go:build cgo

package cmd

import (
	"github.com/zynmi/mutseq/gomidi"
)

// NewMidiContext opens the RtMidi driver and the ports whose names start
// with in and out. An empty name leaves that direction closed.
func NewMidiContext(sampleRate float64, in, out string) (MidiContext, error) {
	c, err := gomidi.NewContext(sampleRate)
	if err != nil {
		return nil, err
	}
	if in != "" {
		if err := c.OpenInput(in); err != nil {
			c.Close()
			return nil, err
		}
	}
	if out != "" {
		if err := c.OpenOutput(out); err != nil {
			c.Close()
			return nil, err
		}
	}
	return c, nil
}
