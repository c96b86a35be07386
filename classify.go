package circcoords

import "math"

// ClassifyingMap combines the harmonic potential, the transition cocycle and
// the partition of unity into one angle per data point. For a point x with
// chart b,
//
//	class(x) = -τ[b] + Σ_k θ(b, k)·varphi_k(x)
//
// and the angle is 2π·class(x) reduced to [0, 2π). Landmark pairs without a
// kept edge contribute nothing. Uncovered points get NaN.
func ClassifyingMap(tau []float64, theta *TransitionCocycle, pou *PartitionOfUnity) []float64 {
	m, n := pou.M, pou.N
	angles := make([]float64, n)
	for x := 0; x < n; x++ {
		b := pou.Charts[x]
		if b < 0 {
			angles[x] = math.NaN()
			continue
		}
		class := -tau[b]
		for k := 0; k < m; k++ {
			w := pou.Weights[k*n+x]
			if w == 0 || k == b {
				continue
			}
			class += theta.Lookup(b, k) * w
		}
		angles[x] = wrapAngle(2 * math.Pi * class)
	}
	return angles
}

// wrapAngle reduces a to [0, 2π).
func wrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	if a >= 2*math.Pi || a == 0 {
		// Also folds -0 to +0.
		return 0
	}
	return a
}
