package mutseq

import (
	"fmt"
	"strconv"
	"strings"
)

type (
	// Config holds the global sequencer controls. The engine reads it at the
	// start of every block and never writes to it. Percentages are in the
	// range 0-100 and are used as fractions internally; values outside the
	// documented ranges saturate instead of failing.
	Config struct {
		ClockSource    ClockSource
		BPM            float64
		Division       Division
		Swing          float32 // percent; shortens even steps, lengthens odd steps
		GateLength     float32 // percent of the ratchet slot
		NumSteps       int     // active steps, 1..NumSteps
		Transpose      int     // semitones, applied after the pitch mode
		Running        bool
		Pattern        int     // 0..NumPatterns-1
		PatternParam   float32 // 0..100, meaning depends on the pattern
		VelocityMode   VelocityMode
		VelocityAmount float32 // percent
		PitchMode      PitchMode
		PitchSpread    int     // semitones
		Probability    float32 // global gate probability, percent
		Humanize       float32 // percent, 100% = up to 10 ms of jitter
		Mutate         float32 // percent
	}

	// Step is one of the eight step definitions. Pitch and Velocity are MIDI
	// values; Probability is in percent and Ratchet is the number of
	// retriggers within the step.
	Step struct {
		Pitch       int
		Velocity    int
		Probability float32
		Ratchet     int
	}

	// Steps is the full step table. Only the first Config.NumSteps entries
	// are played.
	Steps [NumSteps]Step

	ClockSource  int
	Division     int
	VelocityMode int
	PitchMode    int
)

// NumSteps is the length of the step table.
const NumSteps = 8

// NumPatterns is the number of rhythm formulas the pattern generator knows.
const NumPatterns = 30

// MaxRatchet is the maximum number of retriggers within one step.
const MaxRatchet = 8

const (
	ClockInternal ClockSource = iota
	ClockExternal             // 24 PPQN pulses, e.g. MIDI clock
	ClockHost                 // tempo and transport reported by the host
	numClockSources
)

const (
	DivQuarter Division = iota
	DivEighth
	DivSixteenth
	DivThirtySecond
	numDivisions
)

const (
	VelocityManual VelocityMode = iota
	VelocityAccent
	VelocityRampUp
	VelocityRampDown
	VelocityRandom
	VelocityAlternating
	numVelocityModes
)

const (
	PitchManual PitchMode = iota
	PitchAscending
	PitchDescending
	PitchPentatonic
	PitchRandomWalk
	PitchZigzag
	numPitchModes
)

var (
	clockSourceNames  = [...]string{"internal", "external", "host"}
	divisionNames     = [...]string{"quarter", "eighth", "sixteenth", "thirtysecond"}
	velocityModeNames = [...]string{"manual", "accent", "rampup", "rampdown", "random", "alternating"}
	pitchModeNames    = [...]string{"manual", "ascending", "descending", "pentatonic", "randomwalk", "zigzag"}
)

// DefaultConfig returns the control values of a freshly instantiated
// sequencer: internal clock at 120 BPM, sixteenth notes, all eight steps.
func DefaultConfig() Config {
	return Config{
		ClockSource:  ClockInternal,
		BPM:          120,
		Division:     DivSixteenth,
		GateLength:   50,
		NumSteps:     NumSteps,
		PatternParam: 50,
		Probability:  100,
	}
}

// DefaultSteps returns a C major scale starting from middle C, every step at
// velocity 100 without ratchets.
func DefaultSteps() Steps {
	scale := [NumSteps]int{0, 2, 4, 5, 7, 9, 11, 12}
	var s Steps
	for i := range s {
		s[i] = Step{Pitch: 60 + scale[i], Velocity: 100, Probability: 100, Ratchet: 1}
	}
	return s
}

// ActiveSteps returns NumSteps clamped to [1, NumSteps].
func (c *Config) ActiveSteps() int {
	return Clamp(c.NumSteps, 1, NumSteps)
}

// Clamp limits v to [lo, hi].
func Clamp[T ~int | ~float32 | ~float64](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DecodeEnum converts a control value into an enumeration with n members.
// The value is truncated towards zero like a float control port and
// out-of-range values saturate to the nearest member.
func DecodeEnum[T ~int](v float32, n T) T {
	if v != v { // NaN
		return 0
	}
	if v < 0 {
		return 0
	}
	if v >= float32(n-1) {
		return n - 1
	}
	return T(v)
}

// Valid returns the clock source clamped into the known range.
func (c ClockSource) Valid() ClockSource { return Clamp(c, 0, numClockSources-1) }

// Valid returns the division clamped into the known range.
func (d Division) Valid() Division { return Clamp(d, 0, numDivisions-1) }

// Valid returns the velocity mode clamped into the known range.
func (m VelocityMode) Valid() VelocityMode { return Clamp(m, 0, numVelocityModes-1) }

// Valid returns the pitch mode clamped into the known range.
func (m PitchMode) Valid() PitchMode { return Clamp(m, 0, numPitchModes-1) }

// BeatsPerStep returns how many quarter notes one step lasts.
func (d Division) BeatsPerStep() float64 {
	switch d.Valid() {
	case DivQuarter:
		return 1.0
	case DivEighth:
		return 0.5
	case DivThirtySecond:
		return 0.125
	default:
		return 0.25
	}
}

func (c ClockSource) String() string  { return clockSourceNames[c.Valid()] }
func (d Division) String() string     { return divisionNames[d.Valid()] }
func (m VelocityMode) String() string { return velocityModeNames[m.Valid()] }
func (m PitchMode) String() string    { return pitchModeNames[m.Valid()] }

func (c ClockSource) MarshalText() ([]byte, error)  { return []byte(c.String()), nil }
func (d Division) MarshalText() ([]byte, error)     { return []byte(d.String()), nil }
func (m VelocityMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }
func (m PitchMode) MarshalText() ([]byte, error)    { return []byte(m.String()), nil }

func (c *ClockSource) UnmarshalText(text []byte) error {
	return unmarshalEnum(c, clockSourceNames[:], "clock source", text)
}

func (d *Division) UnmarshalText(text []byte) error {
	return unmarshalEnum(d, divisionNames[:], "division", text)
}

func (m *VelocityMode) UnmarshalText(text []byte) error {
	return unmarshalEnum(m, velocityModeNames[:], "velocity mode", text)
}

func (m *PitchMode) UnmarshalText(text []byte) error {
	return unmarshalEnum(m, pitchModeNames[:], "pitch mode", text)
}

func unmarshalEnum[T ~int](dst *T, names []string, what string, text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for i, n := range names {
		if n == s {
			*dst = T(i)
			return nil
		}
	}
	if f, err := strconv.ParseFloat(s, 32); err == nil {
		*dst = DecodeEnum(float32(f), T(len(names)))
		return nil
	}
	return fmt.Errorf("unknown %s %q (expected one of %s)", what, s, strings.Join(names, ", "))
}
