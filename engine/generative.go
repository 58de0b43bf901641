package engine

import "github.com/zynmi/mutseq"

var pentatonic = [5]int{0, 2, 4, 7, 9}

// Pitch applies the pitch mode to base for step. Only the random walk mode
// draws from rng. The result is not clamped.
func Pitch(mode mutseq.PitchMode, step, numSteps, spread, base int, rng *Rand) int {
	numSteps = mutseq.Clamp(numSteps, 1, mutseq.NumSteps)
	switch mode.Valid() {
	case mutseq.PitchAscending:
		return base + step*spread/numSteps
	case mutseq.PitchDescending:
		return base + (numSteps-1-step)*spread/numSteps
	case mutseq.PitchPentatonic:
		return base + pentatonic[step%5] + step/5*12
	case mutseq.PitchRandomWalk:
		return base + int(rng.Signed()*float32(spread))
	case mutseq.PitchZigzag:
		local := step % 2
		if step%4 < 2 {
			return base + local*spread/2
		}
		return base + spread - local*spread/2
	default:
		return base
	}
}

// Velocity applies the velocity mode to base for step. amount is 0-100.
// Only the random mode draws from rng. The result is not clamped.
func Velocity(mode mutseq.VelocityMode, step, numSteps int, amount float32, base int, rng *Rand) int {
	amount = mutseq.Clamp(amount, 0, 100) / 100.0
	switch mode.Valid() {
	case mutseq.VelocityAccent:
		if step%4 == 0 {
			return base + int(float32(127-base)*amount)
		}
		return base
	case mutseq.VelocityRampUp, mutseq.VelocityRampDown:
		if numSteps <= 1 {
			return base
		}
		ramp := float32(step) / float32(numSteps-1)
		if mode == mutseq.VelocityRampDown {
			ramp = 1.0 - ramp
		}
		lo := base - int(float32(base)*amount*0.5)
		hi := base + int(float32(127-base)*amount)
		return lo + int(float32(hi-lo)*ramp)
	case mutseq.VelocityRandom:
		variation := int(amount * 60.0)
		return base + int(rng.Signed()*float32(variation))
	case mutseq.VelocityAlternating:
		if step%2 == 1 {
			return base - int(float32(base)*amount*0.3)
		}
		return base
	default:
		return base
	}
}

// ClampMIDI limits a note or velocity to [0, 127].
func ClampMIDI(v int) byte {
	return byte(mutseq.Clamp(v, 0, 127))
}
