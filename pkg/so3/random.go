package so3

import "math/rand"

// sampler is the subset of *rand.Rand used by the random samplers.
type sampler interface {
	Float64() float64
	NormFloat64() float64
}

// globalSampler draws from the package-level math/rand source.
type globalSampler struct{}

func (globalSampler) Float64() float64     { return rand.Float64() }
func (globalSampler) NormFloat64() float64 { return rand.NormFloat64() }

// uniform returns a sample in [lo, hi).
func uniform(src sampler, lo, hi float64) float64 {
	return lo + (hi-lo)*src.Float64()
}
