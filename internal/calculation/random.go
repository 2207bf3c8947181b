package calculation

import (
	"golang.org/x/exp/rand"
)

// RandomSource supplies uniform draws in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// NewSeededSource returns a reproducible uniform source for seed.
func NewSeededSource(seed int64) RandomSource {
	return rand.New(rand.NewSource(uint64(seed)))
}
