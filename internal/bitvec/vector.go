package bitvec

import (
	"encoding/json"
	"math"
	"math/bits"
	"math/rand/v2"
	"strings"

	"adaptevo/internal/ga"
)

// Vector is a fixed-length bit string that carries its own variation rates.
type Vector struct {
	words []uint64
	n     int
	ctl   ga.Control
}

// New returns an all-zero vector of n bits.
func New(n int) *Vector {
	return &Vector{words: make([]uint64, (n+63)/64), n: n}
}

// Random returns n uniformly random bits.
func Random(n int, rng *rand.Rand) *Vector {
	v := New(n)
	for i := range v.words {
		v.words[i] = rng.Uint64()
	}
	v.trim()
	return v
}

// Parse builds a vector from a string of '0' and '1'.
func Parse(s string) *Vector {
	v := New(len(s))
	for i, r := range s {
		if r == '1' {
			v.Set(i, true)
		}
	}
	return v
}

func (v *Vector) trim() {
	if rem := v.n % 64; rem != 0 {
		v.words[len(v.words)-1] &= (1 << rem) - 1
	}
}

// Len returns the number of bits.
func (v *Vector) Len() int {
	return v.n
}

// Bit reports whether bit i is set.
func (v *Vector) Bit(i int) bool {
	return v.words[i/64]&(1<<(i%64)) != 0
}

// Set sets bit i to on.
func (v *Vector) Set(i int, on bool) {
	if on {
		v.words[i/64] |= 1 << (i % 64)
	} else {
		v.words[i/64] &^= 1 << (i % 64)
	}
}

// Flip inverts bit i.
func (v *Vector) Flip(i int) {
	v.words[i/64] ^= 1 << (i % 64)
}

// Ones counts the set bits.
func (v *Vector) Ones() int {
	count := 0
	for _, w := range v.words {
		count += bits.OnesCount64(w)
	}
	return count
}

// Fraction reads the leading bits (at most 52) as a binary fraction in [0, 1].
func (v *Vector) Fraction() float64 {
	k := min(v.n, 52)
	if k == 0 {
		return 0
	}
	var x uint64
	for i := 0; i < k; i++ {
		x <<= 1
		if v.Bit(i) {
			x |= 1
		}
	}
	return float64(x) / (math.Exp2(float64(k)) - 1)
}

// Copy returns a deep copy including the control rates.
func (v *Vector) Copy() *Vector {
	words := make([]uint64, len(v.words))
	copy(words, v.words)
	return &Vector{words: words, n: v.n, ctl: v.ctl}
}

// Control returns the vector's adaptive control.
func (v *Vector) Control() *ga.Control {
	return &v.ctl
}

// String renders the bits as 0 and 1 characters.
func (v *Vector) String() string {
	var b strings.Builder
	b.Grow(v.n)
	for i := 0; i < v.n; i++ {
		if v.Bit(i) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

type vectorJSON struct {
	Bits    string     `json:"bits"`
	Control ga.Control `json:"control"`
}

// MarshalJSON encodes the vector with its control.
func (v *Vector) MarshalJSON() ([]byte, error) {
	return json.Marshal(vectorJSON{Bits: v.String(), Control: v.ctl})
}

// UnmarshalJSON decodes a vector written by MarshalJSON.
func (v *Vector) UnmarshalJSON(data []byte) error {
	var raw vectorJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = *Parse(raw.Bits)
	v.ctl = raw.Control
	return nil
}
