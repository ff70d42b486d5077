package gen

import "math/rand"

// Random is the source of every random draw made during generation.
// Tests inject a fixed sequence to make layouts reproducible.
type Random interface {
	Float64() float64 // uniform in [0, 1)
}

// NewRandom returns a seeded source. A zero seed is a valid seed.
func NewRandom(seed int64) Random {
	return rand.New(rand.NewSource(seed))
}

// rangef draws uniformly from [lo, hi].
func rangef(r Random, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// intn draws an index in [0, n).
func intn(r Random, n int) int {
	i := int(r.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}
