package fitness

import (
	"errors"
	"fmt"
	"math"
)

// ErrConfig marks an invalid transform parameter.
var ErrConfig = errors.New("invalid fitness configuration")

// ErrMissing marks a required collaborator that was not supplied.
var ErrMissing = errors.New("missing argument")

// Value is the set of fitness kinds. Higher is always better.
type Value interface {
	int | float64
}

// Problem produces a minimization cost for a candidate. Cost never returns
// less than MinCost.
type Problem[C any, N Value] interface {
	Cost(candidate C) N
	MinCost() N
}

// Function maps a candidate to a maximization fitness.
type Function[C any, F Value] interface {
	Fitness(candidate C) F
}

// Negative computes fitness as the negated cost.
type Negative[C any, F Value] struct {
	problem Problem[C, F]
}

// NewNegative wraps problem so that fitness = -cost.
func NewNegative[C any, F Value](problem Problem[C, F]) (*Negative[C, F], error) {
	if problem == nil {
		return nil, fmt.Errorf("%w: problem is required", ErrMissing)
	}
	return &Negative[C, F]{problem: problem}, nil
}

// Fitness returns the negated cost of candidate.
func (n *Negative[C, F]) Fitness(candidate C) F {
	return -n.problem.Cost(candidate)
}

// Problem returns the wrapped problem.
func (n *Negative[C, F]) Problem() Problem[C, F] {
	return n.problem
}

// Inverse computes fitness = scale / (1 + cost - minCost) for real costs.
// Fitness lies in (0, scale]. A cost below minCost is treated as minCost.
type Inverse[C any] struct {
	problem Problem[C, float64]
	minCost float64
	scale   float64
}

// NewInverse wraps problem with scale 1.
func NewInverse[C any](problem Problem[C, float64]) (*Inverse[C], error) {
	return NewInverseScaled(problem, 1)
}

// NewInverseScaled wraps problem with an explicit positive scale.
func NewInverseScaled[C any](problem Problem[C, float64], scale float64) (*Inverse[C], error) {
	if problem == nil {
		return nil, fmt.Errorf("%w: problem is required", ErrMissing)
	}
	if !(scale > 0) || math.IsInf(scale, 1) {
		return nil, fmt.Errorf("%w: scale must be positive and finite, got %v", ErrConfig, scale)
	}
	minCost := problem.MinCost()
	if math.IsInf(minCost, 0) || math.IsNaN(minCost) {
		return nil, fmt.Errorf("%w: min cost must be finite, got %v", ErrConfig, minCost)
	}
	return &Inverse[C]{problem: problem, minCost: minCost, scale: scale}, nil
}

// Fitness returns the inverse scaled cost of candidate.
func (f *Inverse[C]) Fitness(candidate C) float64 {
	return inverse(f.problem.Cost(candidate), f.minCost, f.scale)
}

// Problem returns the wrapped problem.
func (f *Inverse[C]) Problem() Problem[C, float64] {
	return f.problem
}

// IntInverse is Inverse for integer costs. The difference cost - minCost is
// taken in float64 so it cannot wrap around. A cost below minCost is treated
// as minCost.
type IntInverse[C any] struct {
	problem Problem[C, int]
	minCost float64
	scale   float64
}

// NewIntInverse wraps problem with scale 1.
func NewIntInverse[C any](problem Problem[C, int]) (*IntInverse[C], error) {
	return NewIntInverseScaled(problem, 1)
}

// NewIntInverseScaled wraps problem with an explicit positive scale.
func NewIntInverseScaled[C any](problem Problem[C, int], scale float64) (*IntInverse[C], error) {
	if problem == nil {
		return nil, fmt.Errorf("%w: problem is required", ErrMissing)
	}
	if !(scale > 0) || math.IsInf(scale, 1) {
		return nil, fmt.Errorf("%w: scale must be positive and finite, got %v", ErrConfig, scale)
	}
	minCost := problem.MinCost()
	if minCost == math.MinInt || minCost == math.MaxInt {
		return nil, fmt.Errorf("%w: min cost %d is at the integer limit", ErrConfig, minCost)
	}
	return &IntInverse[C]{problem: problem, minCost: float64(minCost), scale: scale}, nil
}

// Fitness returns the inverse scaled cost of candidate.
func (f *IntInverse[C]) Fitness(candidate C) float64 {
	return inverse(float64(f.problem.Cost(candidate)), f.minCost, f.scale)
}

// Problem returns the wrapped problem.
func (f *IntInverse[C]) Problem() Problem[C, int] {
	return f.problem
}

func inverse(cost, minCost, scale float64) float64 {
	return scale / (1 + max(cost-minCost, 0))
}
