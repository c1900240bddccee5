package ga

import "math/rand/v2"

// Bounds of the self-adapted rates.
const (
	MinCrossoverRate = 0.1
	MaxCrossoverRate = 1.0
	MinMutationRate  = 0.01
	MaxMutationRate  = 1.0
	MinStrength      = 0.001
	MaxStrength      = 0.5

	controlSigma = 0.05
)

// Mutation changes a candidate in place.
type Mutation[C any] interface {
	Mutate(candidate C)
	Split() Mutation[C]
}

// Control holds the rates a candidate carries for its own variation.
// Crossover and Mutation are probabilities of applying those operators;
// Strength is read by operators that scale how much they change.
type Control struct {
	Crossover float64 `json:"crossover"`
	Mutation  float64 `json:"mutation"`
	Strength  float64 `json:"strength"`
}

// Adaptive is implemented by candidates that carry a Control.
type Adaptive interface {
	Control() *Control
}

// RandomControl draws every rate uniformly within its bounds.
func RandomControl(rng *rand.Rand) Control {
	return Control{
		Crossover: uniformIn(rng, MinCrossoverRate, MaxCrossoverRate),
		Mutation:  uniformIn(rng, MinMutationRate, MaxMutationRate),
		Strength:  uniformIn(rng, MinStrength, MaxStrength),
	}
}

// Adapt applies gaussian noise to every rate, keeping each within bounds.
func (c *Control) Adapt(rng *rand.Rand) {
	c.Crossover = clamp(c.Crossover+controlSigma*rng.NormFloat64(), MinCrossoverRate, MaxCrossoverRate)
	c.Mutation = clamp(c.Mutation+controlSigma*rng.NormFloat64(), MinMutationRate, MaxMutationRate)
	c.Strength = clamp(c.Strength+controlSigma*rng.NormFloat64(), MinStrength, MaxStrength)
}

// Blend exchanges each rate with other with probability 1/2.
func (c *Control) Blend(other *Control, rng *rand.Rand) {
	if rng.Float64() < 0.5 {
		c.Crossover, other.Crossover = other.Crossover, c.Crossover
	}
	if rng.Float64() < 0.5 {
		c.Mutation, other.Mutation = other.Mutation, c.Mutation
	}
	if rng.Float64() < 0.5 {
		c.Strength, other.Strength = other.Strength, c.Strength
	}
}

func uniformIn(rng *rand.Rand, low, high float64) float64 {
	return low + rng.Float64()*(high-low)
}

func clamp(x, low, high float64) float64 {
	if x < low {
		return low
	}
	if x > high {
		return high
	}
	return x
}
