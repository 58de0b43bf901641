package mutseq

// PatternNames are the display names of the rhythm formulas, indexed by
// pattern id. Ids 0-19 are drum idioms, 20-29 melodic ones.
var PatternNames = [NumPatterns]string{
	"straight", "everyother", "quarter", "euclidean", "syncopated",
	"triplet", "gallop", "fibonacci", "random", "clave",
	"fouronfloor", "backbeat", "hihat", "breakbeat", "tom",
	"shuffle", "rumba", "ride", "fill", "paradiddle",
	"arpup", "arpdown", "octavejump", "staccato", "legato",
	"callresponse", "dotted", "trancegate", "chordstabs", "melodyroll",
}

const (
	PatternStraight  = 0
	PatternEuclidean = 3
	PatternRandom    = 8
)

// eight step masks used by the table driven formulas
var (
	maskFibonacci  = [8]bool{true, true, false, true, false, true, true, false}
	maskClave      = [8]bool{true, false, false, true, false, false, true, false}
	maskEveryOther = [8]bool{true, false, true, false, true, false, true, false}
	maskBreakbeat  = [8]bool{true, false, true, true, false, true, false, true}
	maskTom        = [8]bool{true, false, false, true, false, true, false, true}
	maskShuffle    = [8]bool{true, true, false, true, true, false, true, true}
	maskRumba      = [8]bool{true, false, false, true, false, true, false, false}
	maskRide       = [8]bool{true, false, true, true, false, true, true, false}
	maskFillSimple = [8]bool{true, false, false, false, true, false, true, false}
	maskFillMedium = [8]bool{true, false, true, false, true, false, true, true}
	maskFillDense  = [8]bool{true, true, false, true, true, true, false, true}
	maskOctaveMid  = [8]bool{true, false, true, true, false, false, false, false}
	maskOctaveHigh = [8]bool{true, true, false, false, true, false, false, true}
	maskStaccato   = [8]bool{true, true, false, false, true, true, false, false}
	maskLegato     = [8]bool{true, true, true, false, true, true, true, false}
	maskCallResp   = [8]bool{true, true, false, false, false, false, true, true}
	maskStabs      = [8]bool{true, false, false, false, true, false, false, false}
	maskRoll       = [8]bool{true, false, true, false, true, false, false, false}
)

// Euclidean spreads pulses over numSteps with the approximation
// (step*pulses) mod numSteps < pulses. This is not Bjorklund's algorithm;
// some non-coprime pairs come out uneven.
func Euclidean(step, numSteps, pulses int) bool {
	if pulses <= 0 || pulses > numSteps {
		return false
	}
	return (step*pulses)%numSteps < pulses
}

// Pattern reports whether the rhythm formula id lets step fire. param is
// 0-100 and tweaks density, shift or threshold depending on the formula.
// Out-of-range ids saturate to the nearest formula.
func Pattern(step, numSteps, id int, param float32) bool {
	if step < 0 {
		step = 0
	}
	if numSteps < 1 {
		numSteps = 1
	}
	if param != param {
		param = 0
	}
	param = Clamp(param, 0, 100)
	switch Clamp(id, 0, NumPatterns-1) {
	case 0: // straight
		return true
	case 1: // every other
		return step%2 == 0
	case 2, 10: // quarter notes, four on the floor
		return step%4 == 0
	case 3: // euclidean, param is the pulse density
		pulses := int((param/100.0)*float32(numSteps) + 0.5)
		return Euclidean(step, numSteps, Clamp(pulses, 0, numSteps))
	case 4: // syncopated
		return step%2 == 1
	case 5: // triplet feel
		return step%3 == 0
	case 6: // gallop, param picks the skipped beat
		return step%4 != int(param/25.0)
	case 7:
		return maskFibonacci[step%8]
	case 8: // per-step hash, stable across loops
		seed := (12345 + uint32(step)*7919) & 0x7fffffff
		seed = (seed*1103515245 + 12345) & 0x7fffffff
		roll := float32(seed) / float32(0x7fffffff)
		return roll < param/100.0
	case 9:
		return maskClave[step%8]
	case 11: // backbeat
		return step == 2 || step == 6
	case 12: // hi-hat, param is density
		threshold := 1.0 - param/100.0
		switch {
		case threshold < 0.33:
			return true
		case threshold < 0.66:
			return maskEveryOther[step%8]
		default:
			return step%4 == 0
		}
	case 13:
		return maskBreakbeat[step%8]
	case 14: // tom, param rotates the mask
		return maskTom[(step+int(param/12.5))%8]
	case 15:
		return maskShuffle[step%8]
	case 16:
		return maskRumba[step%8]
	case 17: // ride, high param adds hits on the last sixteenth of each beat
		if step%4 == 3 && param/100.0 > 0.5 {
			return true
		}
		return maskRide[step%8]
	case 18: // fill, param is complexity
		density := param / 100.0
		switch {
		case density < 0.33:
			return maskFillSimple[step%8]
		case density < 0.66:
			return maskFillMedium[step%8]
		default:
			return maskFillDense[step%8]
		}
	case 19: // paradiddle
		return maskRide[step%8]
	case 20: // arpeggio up, param is the step skip
		return step%(1+int(param/33.3)) == 0
	case 21: // arpeggio down
		return (numSteps-1-step)%(1+int(param/33.3)) == 0
	case 22: // octave jump
		switch {
		case param < 33.3:
			return step%2 == 0
		case param < 66.6:
			return maskOctaveMid[step%8]
		default:
			return maskOctaveHigh[step%8]
		}
	case 23:
		return maskStaccato[step%8]
	case 24:
		return maskLegato[step%8]
	case 25: // call and response, param rotates the mask
		return maskCallResp[(step+int(param/12.5))%8]
	case 26: // dotted
		return maskClave[step%8]
	case 27: // trance gate
		switch {
		case param < 25:
			return true
		case param < 50:
			return step%2 == 0
		case param < 75:
			return maskClave[step%8]
		default:
			return step%4 == 0
		}
	case 28: // chord stabs, high param adds a hit on step 5
		if step == 5 && param > 50 {
			return true
		}
		return maskStabs[step%8]
	default: // melody roll, param is density
		density := param / 100.0
		switch {
		case density < 0.25:
			return step%8 == 0
		case density < 0.5:
			return step%4 == 0
		case density < 0.75:
			return maskRoll[step%8]
		default:
			return step%2 == 0
		}
	}
}
