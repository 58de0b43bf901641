package engine

import "github.com/zynmi/mutseq"

// Mutation ranges at 100% mutate amount.
const (
	mutatePitchRange    = 12.0
	mutateVelocityRange = 40.0
)

// Mutations are per-step offsets added to the base pitch and velocity
// before the generative modes. They persist until re-rolled.
type Mutations struct {
	Pitch    [mutseq.NumSteps]int
	Velocity [mutseq.NumSteps]int
}

// Mutate runs once per loop of the sequence. Below 1% everything resets to
// zero. Otherwise each step's pitch and velocity offset is independently
// re-rolled with probability amount; offsets that are not re-rolled keep
// their old value.
func (m *Mutations) Mutate(amount float32, rng *Rand) {
	amount = mutseq.Clamp(amount, 0, 100) / 100.0
	if amount < 0.01 {
		*m = Mutations{}
		return
	}
	for i := 0; i < mutseq.NumSteps; i++ {
		if rng.Float() < amount {
			m.Pitch[i] = int(rng.Signed() * (mutatePitchRange * amount))
		}
		if rng.Float() < amount {
			m.Velocity[i] = int(rng.Signed() * (mutateVelocityRange * amount))
		}
	}
}
