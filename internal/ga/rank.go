package ga

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// LinearRank selects with probability linear in fitness rank. The best
// ranked candidate has weight bias, the worst 2-bias, and weights step down
// by a constant (2*bias-2)/(n-1) between neighbouring ranks. Weights average
// to 1, so the cumulative total is n.
type LinearRank struct {
	bias float64
	rng  *rand.Rand

	// cumulative weights for the last seen generation size
	cumulative []float64
}

// NewLinearRank creates a linear rank operator. bias must lie in [1, 2];
// bias 1 is uniform selection.
func NewLinearRank(bias float64, rng *rand.Rand) (*LinearRank, error) {
	if !(bias >= 1 && bias <= 2) {
		return nil, fmt.Errorf("%w: rank bias must be in [1, 2], got %v", ErrConfig, bias)
	}
	return &LinearRank{bias: bias, rng: orRand(rng)}, nil
}

// Bias returns the weight of the best ranked candidate.
func (s *LinearRank) Bias() float64 {
	return s.bias
}

// SelectReal fills selected by linear rank weight.
func (s *LinearRank) SelectReal(v *RealVector, selected []int) {
	s.pick(selectionOrder(v.values), selected)
}

// SelectInt fills selected by linear rank weight.
func (s *LinearRank) SelectInt(v *IntVector, selected []int) {
	s.pick(selectionOrder(v.values), selected)
}

func (s *LinearRank) pick(order []int, selected []int) {
	n := len(order)
	if n == 0 {
		return
	}
	if len(s.cumulative) != n {
		s.cumulative = cumulativeRankWeights(n, s.bias)
	}
	total := s.cumulative[n-1]
	for k := range selected {
		u := s.rng.Float64() * total
		j := sort.Search(n, func(i int) bool { return s.cumulative[i] > u })
		if j == n {
			j = n - 1
		}
		selected[k] = order[j]
	}
}

// Init is a no-op.
func (s *LinearRank) Init(int) {}

// Split returns an operator with the same bias on a derived stream.
func (s *LinearRank) Split() Selection {
	return &LinearRank{bias: s.bias, rng: SplitRand(s.rng)}
}

// cumulativeRankWeights returns running sums of rank weights, best rank first.
func cumulativeRankWeights(n int, bias float64) []float64 {
	weights := make([]float64, n)
	if n == 1 {
		weights[0] = 1
		return weights
	}
	delta := (2*bias - 2) / float64(n-1)
	for j := range weights {
		weights[j] = bias - float64(j)*delta
	}
	return floats.CumSum(make([]float64, n), weights)
}

// FitnessProportional is roulette wheel selection. When any fitness is not
// positive the wheel is shifted by 1-min so every candidate keeps a slice.
type FitnessProportional struct {
	rng *rand.Rand
}

// NewFitnessProportional creates a roulette wheel operator.
func NewFitnessProportional(rng *rand.Rand) *FitnessProportional {
	return &FitnessProportional{rng: orRand(rng)}
}

// SelectReal fills selected by roulette wheel.
func (s *FitnessProportional) SelectReal(v *RealVector, selected []int) {
	s.pick(v.Float64s(), selected)
}

// SelectInt fills selected by roulette wheel.
func (s *FitnessProportional) SelectInt(v *IntVector, selected []int) {
	s.pick(v.Float64s(), selected)
}

func (s *FitnessProportional) pick(weights []float64, selected []int) {
	n := len(weights)
	if n == 0 {
		return
	}
	if low := floats.Min(weights); low <= 0 {
		floats.AddConst(1-low, weights)
	}
	cumulative := floats.CumSum(make([]float64, n), weights)
	total := cumulative[n-1]
	for k := range selected {
		u := s.rng.Float64() * total
		j := sort.Search(n, func(i int) bool { return cumulative[i] > u })
		if j == n {
			j = n - 1
		}
		selected[k] = j
	}
}

// Init is a no-op.
func (s *FitnessProportional) Init(int) {}

// Split returns a roulette wheel operator on a derived stream.
func (s *FitnessProportional) Split() Selection {
	return &FitnessProportional{rng: SplitRand(s.rng)}
}
