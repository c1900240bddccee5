package ga

import (
	"errors"
	"fmt"

	"adaptevo/internal/fitness"
)

// ErrIndexOutOfRange is returned or wrapped on access outside a generation.
var ErrIndexOutOfRange = errors.New("index out of range")

// Vector is an immutable view of one generation's fitness values.
type Vector[F fitness.Value] struct {
	values []F
}

// RealVector holds real-valued fitness.
type RealVector = Vector[float64]

// IntVector holds integer-valued fitness.
type IntVector = Vector[int]

// VectorOf copies raw into a new vector.
func VectorOf[F fitness.Value](raw []F) *Vector[F] {
	values := make([]F, len(raw))
	copy(values, raw)
	return &Vector[F]{values: values}
}

// Size returns the number of values.
func (v *Vector[F]) Size() int {
	return len(v.values)
}

// Fitness returns the fitness at index i.
func (v *Vector[F]) Fitness(i int) (F, error) {
	if i < 0 || i >= len(v.values) {
		var zero F
		return zero, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(v.values))
	}
	return v.values[i], nil
}

// Values returns a copy of the fitness values in their own kind.
func (v *Vector[F]) Values() []F {
	out := make([]F, len(v.values))
	copy(out, v.values)
	return out
}

// Float64s returns a copy of the fitness values as float64.
func (v *Vector[F]) Float64s() []float64 {
	out := make([]float64, len(v.values))
	for i, f := range v.values {
		out[i] = float64(f)
	}
	return out
}
