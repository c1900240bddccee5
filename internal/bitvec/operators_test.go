package bitvec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adaptevo/internal/ga"
)

func TestInitializer(t *testing.T) {
	_, err := NewInitializer(0, nil)
	assert.ErrorIs(t, err, ga.ErrConfig)

	in, err := NewInitializer(40, ga.NewRand(2))
	require.NoError(t, err)
	v := in.CreateCandidateSolution()
	assert.Equal(t, 40, v.Len())
	ctl := v.Control()
	assert.True(t, ctl.Crossover >= ga.MinCrossoverRate && ctl.Crossover <= ga.MaxCrossoverRate)
	assert.True(t, ctl.Strength >= ga.MinStrength && ctl.Strength <= ga.MaxStrength)

	split := in.Split()
	assert.NotEqual(t, in.CreateCandidateSolution().String(), split.CreateCandidateSolution().String())
}

func TestBitFlipAlwaysChanges(t *testing.T) {
	m := NewBitFlip(ga.NewRand(3))
	for i := 0; i < 100; i++ {
		v := Random(16, ga.NewRand(uint64(i+1)))
		v.Control().Strength = ga.MinStrength
		before := v.String()
		m.Mutate(v)
		assert.NotEqual(t, before, v.String())
	}
}

func TestBitFlipUsesStrength(t *testing.T) {
	m := NewBitFlip(ga.NewRand(4))
	v := New(10000)
	v.Control().Strength = 0.3
	m.Mutate(v)
	assert.InDelta(t, 3000, v.Ones(), 300)
}

func TestUniformCrossoverPreservesPositions(t *testing.T) {
	x := NewUniformCrossover(ga.NewRand(5))
	a := Random(200, ga.NewRand(6))
	b := Random(200, ga.NewRand(7))
	a0, b0 := a.Copy(), b.Copy()
	x.Cross(a, b)

	changed := false
	for i := 0; i < 200; i++ {
		got := []bool{a.Bit(i), b.Bit(i)}
		assert.ElementsMatch(t, []bool{a0.Bit(i), b0.Bit(i)}, got)
		if a.Bit(i) != a0.Bit(i) {
			changed = true
		}
	}
	assert.True(t, changed)
}

func TestSinglePointCrossoverSwapsTail(t *testing.T) {
	x := NewSinglePointCrossover(ga.NewRand(8))
	a := Parse("0000000000")
	b := Parse("1111111111")
	x.Cross(a, b)

	s := a.String()
	cut := len(s)
	for i, r := range s {
		if r == '1' {
			cut = i
			break
		}
	}
	assert.True(t, cut >= 1 && cut <= 9)
	assert.Equal(t, 10-cut, a.Ones())
	assert.Equal(t, cut, b.Ones())
	assert.Panics(t, func() { x.Cross(New(3), New(4)) })
}

func TestOperatorSplitsDrawIndependently(t *testing.T) {
	x := NewUniformCrossover(ga.NewRand(9))
	y := x.Split()
	a1, b1 := New(64), Parse(string(make64('1')))
	a2, b2 := New(64), Parse(string(make64('1')))
	x.Cross(a1, b1)
	y.Cross(a2, b2)
	assert.NotEqual(t, a1.String(), a2.String())
}

func make64(c byte) []byte {
	out := make([]byte, 64)
	for i := range out {
		out[i] = c
	}
	return out
}
