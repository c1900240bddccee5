package ga

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"

	"golang.org/x/exp/constraints"

	"adaptevo/internal/fitness"
)

// ErrConfig marks an invalid constructor argument.
var ErrConfig = errors.New("invalid configuration")

// ErrMissing marks a required collaborator that was not supplied.
var ErrMissing = errors.New("missing argument")

// Selection chooses parent indices from a generation's fitness, with
// replacement. selected is sized by the caller and every slot is overwritten.
type Selection interface {
	SelectReal(v *RealVector, selected []int)
	SelectInt(v *IntVector, selected []int)
	// Init is called once per run before the first generation.
	Init(generations int)
	// Split returns an operator with the same behavior and its own state.
	Split() Selection
}

func selectFrom[F fitness.Value](s Selection, v *Vector[F], selected []int) {
	switch vec := any(v).(type) {
	case *RealVector:
		s.SelectReal(vec, selected)
	case *IntVector:
		s.SelectInt(vec, selected)
	}
}

// rankDescending returns indices ordered from highest to lowest value. Equal
// values keep their input order.
func rankDescending[F constraints.Ordered](values []F) []int {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] > values[order[b]]
	})
	return order
}

// selectionOrder returns indices ordered best first for rank based
// selection. Equal values put the later index first, so ascending ranks keep
// input order and the earlier of two tied candidates gets the lower rank.
func selectionOrder[F constraints.Ordered](values []F) []int {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		va, vb := values[order[a]], values[order[b]]
		if va != vb {
			return va > vb
		}
		return order[a] > order[b]
	})
	return order
}

// Tournament picks the fittest of size uniform draws.
type Tournament struct {
	size int
	rng  *rand.Rand
}

// NewTournament creates a tournament operator. size must be at least 2.
func NewTournament(size int, rng *rand.Rand) (*Tournament, error) {
	if size < 2 {
		return nil, fmt.Errorf("%w: tournament size must be >= 2, got %d", ErrConfig, size)
	}
	return &Tournament{size: size, rng: orRand(rng)}, nil
}

// SelectReal fills selected with tournament winners.
func (s *Tournament) SelectReal(v *RealVector, selected []int) {
	tournament(s.rng, v.values, s.size, selected)
}

// SelectInt fills selected with tournament winners.
func (s *Tournament) SelectInt(v *IntVector, selected []int) {
	tournament(s.rng, v.values, s.size, selected)
}

// Init is a no-op.
func (s *Tournament) Init(int) {}

// Split returns a tournament of the same size on a derived stream.
func (s *Tournament) Split() Selection {
	return &Tournament{size: s.size, rng: SplitRand(s.rng)}
}

func tournament[F constraints.Ordered](rng *rand.Rand, values []F, size int, selected []int) {
	n := len(values)
	if n == 0 {
		return
	}
	for k := range selected {
		best := rng.IntN(n)
		for i := 1; i < size; i++ {
			candidate := rng.IntN(n)
			if values[candidate] > values[best] {
				best = candidate
			}
		}
		selected[k] = best
	}
}

// Truncation picks uniformly among the k fittest.
type Truncation struct {
	k   int
	rng *rand.Rand
}

// NewTruncation creates a truncation operator. k must be at least 1 and is
// clamped to the generation size at selection time.
func NewTruncation(k int, rng *rand.Rand) (*Truncation, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: truncation count must be >= 1, got %d", ErrConfig, k)
	}
	return &Truncation{k: k, rng: orRand(rng)}, nil
}

// SelectReal fills selected from the k fittest.
func (s *Truncation) SelectReal(v *RealVector, selected []int) {
	s.pick(selectionOrder(v.values), selected)
}

// SelectInt fills selected from the k fittest.
func (s *Truncation) SelectInt(v *IntVector, selected []int) {
	s.pick(selectionOrder(v.values), selected)
}

func (s *Truncation) pick(order []int, selected []int) {
	m := min(s.k, len(order))
	if m == 0 {
		return
	}
	for k := range selected {
		selected[k] = order[s.rng.IntN(m)]
	}
}

// Init is a no-op.
func (s *Truncation) Init(int) {}

// Split returns a truncation operator with the same k on a derived stream.
func (s *Truncation) Split() Selection {
	return &Truncation{k: s.k, rng: SplitRand(s.rng)}
}

// Uniform ignores fitness.
type Uniform struct {
	rng *rand.Rand
}

// NewUniform creates a uniform operator.
func NewUniform(rng *rand.Rand) *Uniform {
	return &Uniform{rng: orRand(rng)}
}

// SelectReal fills selected with uniform draws.
func (s *Uniform) SelectReal(v *RealVector, selected []int) {
	s.pick(v.Size(), selected)
}

// SelectInt fills selected with uniform draws.
func (s *Uniform) SelectInt(v *IntVector, selected []int) {
	s.pick(v.Size(), selected)
}

func (s *Uniform) pick(n int, selected []int) {
	if n == 0 {
		return
	}
	for k := range selected {
		selected[k] = s.rng.IntN(n)
	}
}

// Init is a no-op.
func (s *Uniform) Init(int) {}

// Split returns a uniform operator on a derived stream.
func (s *Uniform) Split() Selection {
	return &Uniform{rng: SplitRand(s.rng)}
}
