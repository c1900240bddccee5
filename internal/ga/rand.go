package ga

import "math/rand/v2"

// NewRand returns a PCG-backed source. A zero seed draws one from the runtime.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// SplitRand derives an independent stream from rng. Only the goroutine that
// owns rng may call it.
func SplitRand(rng *rand.Rand) *rand.Rand {
	return rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64()))
}

func orRand(rng *rand.Rand) *rand.Rand {
	if rng == nil {
		return NewRand(0)
	}
	return rng
}
