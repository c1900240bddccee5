package problem

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"adaptevo/internal/bitvec"
	"adaptevo/internal/fitness"
)

// ErrUnknown is returned for a problem name that is not registered.
var ErrUnknown = errors.New("unknown problem")

// OneMax costs the number of zero bits.
type OneMax struct{}

// Cost counts the zero bits.
func (OneMax) Cost(v *bitvec.Vector) int { return v.Len() - v.Ones() }

// MinCost is zero, reached by the all-ones vector.
func (OneMax) MinCost() int { return 0 }

// Trap is deceptive: every step towards all-ones raises the cost except the
// last one, which reaches the optimum.
type Trap struct{}

// Cost is the deceptive trap cost of v.
func (Trap) Cost(v *bitvec.Vector) int {
	ones := v.Ones()
	if ones == v.Len() {
		return 0
	}
	return ones + 1
}

// MinCost is zero, reached by the all-ones vector.
func (Trap) MinCost() int { return 0 }

// Target costs the distance between the vector read as a binary fraction
// and a fixed value in [0, 1].
type Target struct {
	Value float64
}

// NewTarget creates a target problem. value must lie in [0, 1].
func NewTarget(value float64) (*Target, error) {
	if !(value >= 0 && value <= 1) {
		return nil, fmt.Errorf("%w: target must be in [0, 1], got %v", fitness.ErrConfig, value)
	}
	return &Target{Value: value}, nil
}

// Cost is the distance between v read as a binary fraction and the target.
func (p *Target) Cost(v *bitvec.Vector) float64 { return math.Abs(v.Fraction() - p.Value) }

// MinCost is zero.
func (p *Target) MinCost() float64 { return 0 }

var intProblems = map[string]fitness.Problem[*bitvec.Vector, int]{
	"onemax": OneMax{},
	"trap":   Trap{},
}

// IsReal reports whether name is a real-valued problem.
func IsReal(name string) bool {
	return name == "target"
}

// Int resolves an integer-cost problem by name.
func Int(name string) (fitness.Problem[*bitvec.Vector, int], error) {
	p, ok := intProblems[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknown, name)
	}
	return p, nil
}

// Real resolves a real-cost problem by name.
func Real(name string, target float64) (fitness.Problem[*bitvec.Vector, float64], error) {
	if name != "target" {
		return nil, fmt.Errorf("%w: %s", ErrUnknown, name)
	}
	p, err := NewTarget(target)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Names lists every registered problem.
func Names() []string {
	names := []string{"target"}
	for name := range intProblems {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
