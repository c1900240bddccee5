package bitvec

import (
	"fmt"
	"math/rand/v2"

	"adaptevo/internal/ga"
)

// Initializer creates random vectors with random control rates.
type Initializer struct {
	n   int
	rng *rand.Rand
}

// NewInitializer creates an initializer of n-bit vectors. n must be positive.
func NewInitializer(n int, rng *rand.Rand) (*Initializer, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: vector length must be >= 1, got %d", ga.ErrConfig, n)
	}
	if rng == nil {
		rng = ga.NewRand(0)
	}
	return &Initializer{n: n, rng: rng}, nil
}

// CreateCandidateSolution returns a random vector with a random control.
func (in *Initializer) CreateCandidateSolution() *Vector {
	v := Random(in.n, in.rng)
	v.ctl = ga.RandomControl(in.rng)
	return v
}

// Split returns an initializer on a derived stream.
func (in *Initializer) Split() ga.Initializer[*Vector] {
	return &Initializer{n: in.n, rng: ga.SplitRand(in.rng)}
}

// BitFlip flips each bit with the candidate's own Strength as probability.
// At least one bit is always flipped.
type BitFlip struct {
	rng *rand.Rand
}

// NewBitFlip creates a bit flip mutation.
func NewBitFlip(rng *rand.Rand) *BitFlip {
	if rng == nil {
		rng = ga.NewRand(0)
	}
	return &BitFlip{rng: rng}
}

// Mutate flips each bit of v with probability v's Strength.
func (m *BitFlip) Mutate(v *Vector) {
	if v.n == 0 {
		return
	}
	p := v.ctl.Strength
	flipped := false
	for i := 0; i < v.n; i++ {
		if m.rng.Float64() < p {
			v.Flip(i)
			flipped = true
		}
	}
	if !flipped {
		v.Flip(m.rng.IntN(v.n))
	}
}

// Split returns a bit flip mutation on a derived stream.
func (m *BitFlip) Split() ga.Mutation[*Vector] {
	return &BitFlip{rng: ga.SplitRand(m.rng)}
}

// UniformCrossover swaps each bit position between parents with probability 1/2.
type UniformCrossover struct {
	rng *rand.Rand
}

// NewUniformCrossover creates a uniform crossover.
func NewUniformCrossover(rng *rand.Rand) *UniformCrossover {
	if rng == nil {
		rng = ga.NewRand(0)
	}
	return &UniformCrossover{rng: rng}
}

// Cross swaps each bit of p1 and p2 with probability one half.
func (x *UniformCrossover) Cross(p1, p2 *Vector) {
	checkLengths(p1, p2)
	for w := range p1.words {
		mask := x.rng.Uint64()
		diff := (p1.words[w] ^ p2.words[w]) & mask
		p1.words[w] ^= diff
		p2.words[w] ^= diff
	}
}

// Split returns a uniform crossover on a derived stream.
func (x *UniformCrossover) Split() ga.Crossover[*Vector] {
	return &UniformCrossover{rng: ga.SplitRand(x.rng)}
}

// SinglePointCrossover exchanges the tails after a random cut point.
type SinglePointCrossover struct {
	rng *rand.Rand
}

// NewSinglePointCrossover creates a single point crossover.
func NewSinglePointCrossover(rng *rand.Rand) *SinglePointCrossover {
	if rng == nil {
		rng = ga.NewRand(0)
	}
	return &SinglePointCrossover{rng: rng}
}

// Cross swaps the tails of p1 and p2 after a random cut.
func (x *SinglePointCrossover) Cross(p1, p2 *Vector) {
	checkLengths(p1, p2)
	if p1.n < 2 {
		return
	}
	point := 1 + x.rng.IntN(p1.n-1)
	for i := point; i < p1.n; i++ {
		b1, b2 := p1.Bit(i), p2.Bit(i)
		if b1 != b2 {
			p1.Set(i, b2)
			p2.Set(i, b1)
		}
	}
}

// Split returns a single point crossover on a derived stream.
func (x *SinglePointCrossover) Split() ga.Crossover[*Vector] {
	return &SinglePointCrossover{rng: ga.SplitRand(x.rng)}
}

func checkLengths(p1, p2 *Vector) {
	if p1.n != p2.n {
		panic(fmt.Sprintf("bitvec: crossover of lengths %d and %d", p1.n, p2.n))
	}
}
