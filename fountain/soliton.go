package fountain

import (
	"math"
	"math/rand"
)

const (
	// DefaultC and DefaultDelta are the robust soliton parameters used when
	// a Config leaves them zero.
	DefaultC     = 0.1
	DefaultDelta = 0.5

	minDelta = 1e-6
	maxDelta = 1 - 1e-6
)

// buildRobustSolitonCDF precomputes the cumulative robust soliton
// distribution for k source blocks. Entry d-1 holds the cumulative
// probability of degrees 1..d; the final entry is forced to exactly 1 so
// sampling can never fall off the end.
func buildRobustSolitonCDF(k int, c, delta float64) []float64 {
	if k <= 1 {
		return []float64{1}
	}

	if c < minDelta {
		c = minDelta
	}
	if delta < minDelta {
		delta = minDelta
	}
	if delta > maxDelta {
		delta = maxDelta
	}

	kf := float64(k)
	R := c * math.Log(kf/delta) * math.Sqrt(kf)
	if R < 1 {
		R = 1
	}
	threshold := int(kf / R)

	rho := make([]float64, k)
	tau := make([]float64, k)

	rho[0] = 1 / kf
	for d := 2; d <= k; d++ {
		rho[d-1] = 1 / float64(d*(d-1))
	}

	if threshold >= 1 {
		upper := threshold
		if upper > k {
			upper = k
		}
		for d := 1; d < upper; d++ {
			tau[d-1] = R / (float64(d) * kf)
		}
		if threshold <= k {
			tau[threshold-1] = R * math.Log(R/delta) / kf
		}
	}

	total := 0.0
	for i := range rho {
		total += rho[i] + tau[i]
	}
	if total == 0 {
		// Degenerate parameters; fall back to the uniform distribution.
		cdf := make([]float64, k)
		for i := range cdf {
			cdf[i] = float64(i+1) / kf
		}
		cdf[k-1] = 1
		return cdf
	}

	cdf := make([]float64, k)
	running := 0.0
	for i := range cdf {
		running += (rho[i] + tau[i]) / total
		cdf[i] = running
	}
	cdf[k-1] = 1
	return cdf
}

// sampleDegree draws a degree in [1, k] from the precomputed CDF.
func sampleDegree(cdf []float64, k int, rng *rand.Rand) int {
	if k <= 1 {
		return 1
	}

	r := rng.Float64()
	for i, cutoff := range cdf {
		if r <= cutoff {
			return i + 1
		}
	}
	return k
}
