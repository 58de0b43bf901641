//go:build !cgo

package cmd

import (
	"github.com/zynmi/mutseq/gomidi"
	"github.com/zynmi/mutseq/player"
)

type nullMidiContext struct {
	player.NullContext
}

func (nullMidiContext) Inputs() []string  { return nil }
func (nullMidiContext) Outputs() []string { return nil }
func (nullMidiContext) Close()            {}

// NewMidiContext without cgo has no ports at all; asking for one is an
// error.
func NewMidiContext(sampleRate float64, in, out string) (MidiContext, error) {
	if in != "" || out != "" {
		return nil, gomidi.ErrNoDriver
	}
	return nullMidiContext{}, nil
}
