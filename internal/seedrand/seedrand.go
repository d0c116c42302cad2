// Package seedrand provides a deterministic pseudo-random source keyed by a
// string seed. The same seed always yields the same sequence, which makes
// flux and regenerate operations replayable from a saved project seed.
package seedrand

import (
	"hash/fnv"
	"math/rand"
)

// Rand is a seeded generator. It is not safe for concurrent use; each
// operation that needs randomness constructs its own from a seed string.
type Rand struct {
	src *rand.Rand
}

// New creates a generator from a string seed. The seed is hashed with FNV-64a
// so any string, including the empty string, produces a valid state.
func New(seed string) *Rand {
	h := fnv.New64a()
	h.Write([]byte(seed))
	return &Rand{src: rand.New(rand.NewSource(int64(h.Sum64())))}
}

// Float64 returns the next value in [0, 1).
func (r *Rand) Float64() float64 {
	return r.src.Float64()
}

// IntN returns a uniform integer in [min, max). If the range is empty it
// returns min.
func (r *Rand) IntN(min, max int) int {
	if max <= min {
		return min
	}
	return min + r.src.Intn(max-min)
}

// Shuffle returns a new slice holding a Fisher-Yates permutation of the
// input. The input slice is not mutated.
func Shuffle[T any](r *Rand, in []T) []T {
	out := append([]T(nil), in...)
	for i := len(out) - 1; i > 0; i-- {
		j := r.src.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Choice returns a uniformly random element of the slice. The second return
// is false when the slice is empty.
func Choice[T any](r *Rand, in []T) (T, bool) {
	var zero T
	if len(in) == 0 {
		return zero, false
	}
	return in[r.src.Intn(len(in))], true
}
