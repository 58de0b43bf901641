package mutseq

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type (
	// Preset is everything needed to restore a sequencer: the global
	// controls, the step table, the MIDI channel the notes are sent on and
	// the controller bindings used to automate the controls.
	Preset struct {
		Name     string    `yaml:",omitempty"`
		Channel  int       `yaml:",omitempty"` // MIDI channel 1-16, 0 means 1
		Config   Config
		Steps    Steps
		Bindings []Binding `yaml:",omitempty"`
	}

	// Binding maps a MIDI controller number to a control. The 7-bit
	// controller value is scaled into the range of the control.
	Binding struct {
		CC    uint8
		Param string
	}

	// BindingTable is a lookup table from controller number to control,
	// built once so the real-time thread does not search strings.
	BindingTable [128]ParamID
)

// NoParam marks an unbound controller in a BindingTable.
const NoParam ParamID = -1

// DefaultPreset returns a running eight step C major scale.
func DefaultPreset() Preset {
	p := Preset{Name: "default", Channel: 1, Config: DefaultConfig(), Steps: DefaultSteps()}
	p.Config.Running = true
	return p
}

// ReadPreset parses a preset from JSON or, if that fails, from YAML.
// Missing fields take their defaults.
func ReadPreset(r io.Reader) (Preset, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Preset{}, fmt.Errorf("could not read preset: %w", err)
	}
	return ParsePreset(b)
}

// ParsePreset is ReadPreset for data already in memory.
func ParsePreset(b []byte) (Preset, error) {
	p := DefaultPreset()
	p.Config.Running = false
	if errJSON := json.Unmarshal(b, &p); errJSON != nil {
		p = DefaultPreset()
		p.Config.Running = false
		if errYaml := yaml.Unmarshal(b, &p); errYaml != nil {
			return Preset{}, fmt.Errorf("the preset could not be parsed as .json (%v) or .yml (%v)", errJSON, errYaml)
		}
	}
	if _, err := p.BindingTable(); err != nil {
		return Preset{}, err
	}
	return p, nil
}

// Marshal encodes the preset as YAML.
func (p *Preset) Marshal() ([]byte, error) {
	b, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("could not marshal preset: %w", err)
	}
	return b, nil
}

// MIDIChannel returns the zero based output channel.
func (p *Preset) MIDIChannel() uint8 {
	return uint8(Clamp(p.Channel, 1, 16) - 1)
}

// SetParam writes a control of the preset. See Config.SetParam.
func (p *Preset) SetParam(id ParamID, v float32) {
	p.Config.SetParam(&p.Steps, id, v)
}

// Param reads a control of the preset.
func (p *Preset) Param(id ParamID) float32 {
	return p.Config.Param(&p.Steps, id)
}

// BindingTable resolves the controller bindings. Later bindings of the same
// controller win.
func (p *Preset) BindingTable() (BindingTable, error) {
	var t BindingTable
	for i := range t {
		t[i] = NoParam
	}
	for _, b := range p.Bindings {
		id, err := ParamByName(b.Param)
		if err != nil {
			return t, fmt.Errorf("binding for CC %d: %w", b.CC, err)
		}
		if b.CC > 127 {
			return t, fmt.Errorf("binding for %s: controller %d out of range", b.Param, b.CC)
		}
		t[b.CC] = id
	}
	return t, nil
}
