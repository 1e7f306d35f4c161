// Package randutil centralises how the games derive their random sources.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from the provided int64.
// Both PCG words are derived from the one seed so a single value printed in the
// logs is enough to replay a session.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(splitmix(u), splitmix(u+goldenRatio64)))
}

// Resolve returns the seed to use: the explicit one when given, otherwise one
// derived from the current time. The bool reports whether the seed was explicit.
func Resolve(seed *int64) (int64, bool) {
	if seed != nil {
		return *seed, true
	}
	return time.Now().UnixNano(), false
}

// Derive returns a child seed for the n-th independent stream of a parent seed.
func Derive(parent int64, n int) int64 {
	return int64(splitmix(uint64(parent) + uint64(n+1)*goldenRatio64))
}

func splitmix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
