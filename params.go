package mutseq

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

type (
	// ParamID identifies one control of the sequencer. The numbering follows
	// the control ports of the plugin: nineteen global controls followed by
	// four controls for each of the eight steps.
	ParamID int

	// ParamSpec describes the range of a control. Enumerated controls have
	// Names, one per member, and their value is the member index.
	ParamSpec struct {
		Name    string
		Min     float32
		Max     float32
		Default float32
		Names   []string
	}
)

const (
	ParamClockSource ParamID = iota
	ParamBPM
	ParamDivision
	ParamSwing
	ParamGateLength
	ParamNumSteps
	ParamTranspose
	ParamRunning
	ParamPattern
	ParamPatternParam
	ParamVelocityMode
	ParamVelocityAmount
	ParamPitchMode
	ParamPitchSpread
	ParamProbability
	ParamHumanize
	ParamMutate
	ParamStep1Pitch
	// the remaining step parameters follow in groups of paramsPerStep
	NumParams = ParamStep1Pitch + NumSteps*paramsPerStep
)

const paramsPerStep = 4

const (
	stepPitch = iota
	stepVelocity
	stepProbability
	stepRatchet
)

var ErrUnknownParam = errors.New("unknown parameter")

// ParamSpecs lists the range of every control, indexed by ParamID.
var ParamSpecs = func() (ret [NumParams]ParamSpec) {
	ret[ParamClockSource] = ParamSpec{Name: "clocksource", Max: 2, Names: clockSourceNames[:]}
	ret[ParamBPM] = ParamSpec{Name: "bpm", Min: 20, Max: 300, Default: 120}
	ret[ParamDivision] = ParamSpec{Name: "division", Max: 3, Default: float32(DivSixteenth), Names: divisionNames[:]}
	ret[ParamSwing] = ParamSpec{Name: "swing", Max: 100}
	ret[ParamGateLength] = ParamSpec{Name: "gatelength", Max: 100, Default: 50}
	ret[ParamNumSteps] = ParamSpec{Name: "numsteps", Min: 1, Max: NumSteps, Default: NumSteps}
	ret[ParamTranspose] = ParamSpec{Name: "transpose", Min: -24, Max: 24}
	ret[ParamRunning] = ParamSpec{Name: "running", Max: 1}
	ret[ParamPattern] = ParamSpec{Name: "pattern", Max: NumPatterns - 1, Names: PatternNames[:]}
	ret[ParamPatternParam] = ParamSpec{Name: "patternparam", Max: 100, Default: 50}
	ret[ParamVelocityMode] = ParamSpec{Name: "velocitymode", Max: 5, Names: velocityModeNames[:]}
	ret[ParamVelocityAmount] = ParamSpec{Name: "velocityamount", Max: 100}
	ret[ParamPitchMode] = ParamSpec{Name: "pitchmode", Max: 5, Names: pitchModeNames[:]}
	ret[ParamPitchSpread] = ParamSpec{Name: "pitchspread", Max: 24}
	ret[ParamProbability] = ParamSpec{Name: "probability", Max: 100, Default: 100}
	ret[ParamHumanize] = ParamSpec{Name: "humanize", Max: 100}
	ret[ParamMutate] = ParamSpec{Name: "mutate", Max: 100}
	def := DefaultSteps()
	for i := 0; i < NumSteps; i++ {
		base := ParamStep1Pitch + ParamID(i*paramsPerStep)
		prefix := fmt.Sprintf("step%d.", i+1)
		ret[base+stepPitch] = ParamSpec{Name: prefix + "pitch", Max: 127, Default: float32(def[i].Pitch)}
		ret[base+stepVelocity] = ParamSpec{Name: prefix + "velocity", Max: 127, Default: 100}
		ret[base+stepProbability] = ParamSpec{Name: prefix + "probability", Max: 100, Default: 100}
		ret[base+stepRatchet] = ParamSpec{Name: prefix + "ratchet", Min: 1, Max: MaxRatchet, Default: 1}
	}
	return
}()

// ParamByName finds a control by its name, e.g. "swing" or "step3.ratchet".
func ParamByName(name string) (ParamID, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range ParamSpecs {
		if s.Name == n {
			return ParamID(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownParam, name)
}

func (p ParamID) String() string {
	if p < 0 || p >= NumParams {
		return fmt.Sprintf("param(%d)", int(p))
	}
	return ParamSpecs[p].Name
}

// Scale maps a 7-bit controller value linearly into the range of the
// control.
func (s *ParamSpec) Scale(cc uint8) float32 {
	if cc > 127 {
		cc = 127
	}
	return s.Min + (s.Max-s.Min)*float32(cc)/127
}

// SetParam writes a control value into the config or the step table. The
// value is clamped into the range of the control and enumerations are
// decoded to their nearest member. Unknown ids are ignored.
func (c *Config) SetParam(steps *Steps, id ParamID, v float32) {
	if id < 0 || id >= NumParams || math.IsNaN(float64(v)) {
		return
	}
	s := &ParamSpecs[id]
	v = Clamp(v, s.Min, s.Max)
	switch id {
	case ParamClockSource:
		c.ClockSource = DecodeEnum(v, numClockSources)
	case ParamBPM:
		c.BPM = float64(v)
	case ParamDivision:
		c.Division = DecodeEnum(v, numDivisions)
	case ParamSwing:
		c.Swing = v
	case ParamGateLength:
		c.GateLength = v
	case ParamNumSteps:
		c.NumSteps = int(v)
	case ParamTranspose:
		c.Transpose = int(v)
	case ParamRunning:
		c.Running = v > 0.5
	case ParamPattern:
		c.Pattern = DecodeEnum(v, NumPatterns)
	case ParamPatternParam:
		c.PatternParam = v
	case ParamVelocityMode:
		c.VelocityMode = DecodeEnum(v, numVelocityModes)
	case ParamVelocityAmount:
		c.VelocityAmount = v
	case ParamPitchMode:
		c.PitchMode = DecodeEnum(v, numPitchModes)
	case ParamPitchSpread:
		c.PitchSpread = int(v)
	case ParamProbability:
		c.Probability = v
	case ParamHumanize:
		c.Humanize = v
	case ParamMutate:
		c.Mutate = v
	default:
		if steps == nil {
			return
		}
		i := int(id-ParamStep1Pitch) / paramsPerStep
		st := &steps[i]
		switch int(id-ParamStep1Pitch) % paramsPerStep {
		case stepPitch:
			st.Pitch = int(v)
		case stepVelocity:
			st.Velocity = int(v)
		case stepProbability:
			st.Probability = v
		case stepRatchet:
			st.Ratchet = int(v)
		}
	}
}

// Param reads a control value back as a float.
func (c *Config) Param(steps *Steps, id ParamID) float32 {
	switch id {
	case ParamClockSource:
		return float32(c.ClockSource)
	case ParamBPM:
		return float32(c.BPM)
	case ParamDivision:
		return float32(c.Division)
	case ParamSwing:
		return c.Swing
	case ParamGateLength:
		return c.GateLength
	case ParamNumSteps:
		return float32(c.NumSteps)
	case ParamTranspose:
		return float32(c.Transpose)
	case ParamRunning:
		if c.Running {
			return 1
		}
		return 0
	case ParamPattern:
		return float32(c.Pattern)
	case ParamPatternParam:
		return c.PatternParam
	case ParamVelocityMode:
		return float32(c.VelocityMode)
	case ParamVelocityAmount:
		return c.VelocityAmount
	case ParamPitchMode:
		return float32(c.PitchMode)
	case ParamPitchSpread:
		return float32(c.PitchSpread)
	case ParamProbability:
		return c.Probability
	case ParamHumanize:
		return c.Humanize
	case ParamMutate:
		return c.Mutate
	}
	if steps == nil || id < ParamStep1Pitch || id >= NumParams {
		return 0
	}
	st := &steps[int(id-ParamStep1Pitch)/paramsPerStep]
	switch int(id-ParamStep1Pitch) % paramsPerStep {
	case stepPitch:
		return float32(st.Pitch)
	case stepVelocity:
		return float32(st.Velocity)
	case stepProbability:
		return st.Probability
	default:
		return float32(st.Ratchet)
	}
}
