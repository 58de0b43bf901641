package cmd

import "github.com/zynmi/mutseq/player"

// MidiContext is the MIDI connection of a command line player.
type MidiContext interface {
	player.ProcessContext
	Inputs() []string
	Outputs() []string
	Close()
}
