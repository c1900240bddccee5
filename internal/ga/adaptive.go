package ga

import (
	"fmt"
	"math/rand/v2"
)

// AdaptiveGeneration varies one generation using the rates each candidate
// carries in its Control. It never selects; membership stays with the
// population.
type AdaptiveGeneration[C Adaptive] struct {
	mutation  Mutation[C]
	crossover Crossover[C]
	rng       *rand.Rand
	touched   []bool
}

// NewAdaptiveGeneration creates a generation step from the given operators.
func NewAdaptiveGeneration[C Adaptive](mutation Mutation[C], crossover Crossover[C], rng *rand.Rand) (*AdaptiveGeneration[C], error) {
	if mutation == nil {
		return nil, fmt.Errorf("%w: mutation operator is required", ErrMissing)
	}
	if crossover == nil {
		return nil, fmt.Errorf("%w: crossover operator is required", ErrMissing)
	}
	return &AdaptiveGeneration[C]{mutation: mutation, crossover: crossover, rng: orRand(rng)}, nil
}

// Apply crosses each pair (2k, 2k+1) with probability equal to the mean of
// the pair's crossover rates, then mutates each candidate with probability
// equal to its own mutation rate after adapting its Control. Every changed
// candidate is evaluated once. It returns the number of evaluations.
func (g *AdaptiveGeneration[C]) Apply(gen Generation[C]) int {
	n := gen.MutableSize()
	if cap(g.touched) < n {
		g.touched = make([]bool, n)
	}
	g.touched = g.touched[:n]
	clear(g.touched)

	for i := 0; i+1 < n; i += 2 {
		first, second := gen.Get(i), gen.Get(i+1)
		fc, sc := first.Control(), second.Control()
		if g.rng.Float64() < (fc.Crossover+sc.Crossover)/2 {
			g.crossover.Cross(first, second)
			fc.Blend(sc, g.rng)
			g.touched[i] = true
			g.touched[i+1] = true
		}
	}

	for i := 0; i < n; i++ {
		c := gen.Get(i)
		ctl := c.Control()
		if g.rng.Float64() < ctl.Mutation {
			ctl.Adapt(g.rng)
			g.mutation.Mutate(c)
			g.touched[i] = true
		}
	}

	evaluations := 0
	for i, changed := range g.touched {
		if changed {
			gen.UpdateFitness(i)
			evaluations++
		}
	}
	return evaluations
}

// Split returns an orchestrator with split operators and its own random stream.
func (g *AdaptiveGeneration[C]) Split() *AdaptiveGeneration[C] {
	return &AdaptiveGeneration[C]{
		mutation:  g.mutation.Split(),
		crossover: g.crossover.Split(),
		rng:       SplitRand(g.rng),
	}
}
