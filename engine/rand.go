package engine

// Rand is the linear congruential generator behind every stochastic feature.
// The recurrence is state = (state*1103515245 + 12345) mod 2^31, so a given
// seed and call sequence always yields the same values.
type Rand uint32

// DefaultSeed is the seed of a freshly created engine.
const DefaultSeed Rand = 12345

const randMax = 0x7fffffff

// Next advances the generator and returns the new 31-bit state.
func (r *Rand) Next() uint32 {
	*r = Rand((uint32(*r)*1103515245 + 12345) & randMax)
	return uint32(*r)
}

// Float returns a value in [0, 1].
func (r *Rand) Float() float32 {
	return float32(r.Next()) / float32(randMax)
}

// Signed returns a value in [-1, 1].
func (r *Rand) Signed() float32 {
	return (r.Float() - 0.5) * 2.0
}
