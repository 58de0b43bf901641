package engine

import "github.com/zynmi/mutseq"

// maxSwing is the fraction by which a step is shortened or lengthened at
// 100% swing.
const maxSwing = 0.33

// StepSamples returns the duration of step in samples. Swing shortens even
// steps and lengthens odd steps by the same factor so a pair keeps its
// length. The result is at least one sample.
func StepSamples(bpm float64, div mutseq.Division, swing float32, step int, sampleRate float64) int {
	secondsPerBeat := 60.0 / bpm
	secondsPerStep := secondsPerBeat * div.BeatsPerStep()
	if s := swing / 100.0; s > 0.01 {
		if s > 1 {
			s = 1
		}
		if step%2 == 0 {
			secondsPerStep *= 1.0 - float64(s)*maxSwing
		} else {
			secondsPerStep *= 1.0 + float64(s)*maxSwing
		}
	}
	n := int(secondsPerStep * sampleRate)
	if n < 1 {
		return 1
	}
	return n
}

// RatchetSamples divides a step into count slots of at least one sample.
func RatchetSamples(stepSamples, count int) int {
	n := stepSamples / mutseq.Clamp(count, 1, mutseq.MaxRatchet)
	if n < 1 {
		return 1
	}
	return n
}

// GateSamples is the part of a ratchet slot the note is held, at least one
// sample.
func GateSamples(ratchetSamples int, gateLength float32) int {
	frac := mutseq.Clamp(gateLength, 0, 100) / 100.0
	n := int(float32(ratchetSamples) * frac)
	if n < 1 {
		return 1
	}
	return n
}
