package circcoords

import (
	"fmt"
	"math"
)

// Bump selects the function g(d, r) that weights a point at distance d < r
// from a landmark before normalization.
type Bump string

const (
	// BumpLinear is r - d.
	BumpLinear Bump = "linear"
	// BumpQuadratic is (r - d)².
	BumpQuadratic Bump = "quadratic"
	// BumpExponential is exp(r² / (d² - r²)).
	BumpExponential Bump = "exponential"
)

// logEval returns log g(d, r) for 0 <= d < r. The exponential bump's log is
// its exponent, which stays finite where g itself underflows to 0.
func (b Bump) logEval(d, r float64) float64 {
	switch b {
	case BumpQuadratic:
		return 2 * math.Log(r-d)
	case BumpExponential:
		// d < r makes d-r nonzero, so the quotient is finite unless it overflows.
		return math.Max(r*r/((d-r)*(d+r)), -math.MaxFloat64)
	default:
		return math.Log(r - d)
	}
}

func validBump(b Bump) bool {
	switch b {
	case BumpLinear, BumpQuadratic, BumpExponential:
		return true
	}
	return false
}

// PartitionOfUnity holds normalized bump weights over the open cover
// U_j = {x : distLD[j][x] < r}.
type PartitionOfUnity struct {
	M, N int
	// Weights is flat row-major m×n; Weights[j*N+x] is varphi_j(x).
	Weights []float64
	// Charts[x] is the lowest landmark index whose ball covers x, or -1.
	Charts []int
	// Uncovered lists the points covered by no landmark, in index order.
	Uncovered []int
}

// Weight returns varphi_j(x).
func (p *PartitionOfUnity) Weight(j, x int) float64 { return p.Weights[j*p.N+x] }

// BuildPartitionOfUnity evaluates bump weights for every landmark/point pair
// closer than r and normalizes them per point. Normalization is done in log
// space, shifted by each point's largest log weight, so every covered point's
// weights sum to 1 even where the raw bumps underflow. A point no landmark
// covers keeps all-zero weights, gets chart -1 and is listed in Uncovered.
func BuildPartitionOfUnity(distLD []float64, m, n int, r float64, bump Bump) (*PartitionOfUnity, error) {
	if len(distLD) != m*n {
		return nil, fmt.Errorf("circcoords: landmark-data distance matrix length %d does not match m*n = %d (m=%d, n=%d)", len(distLD), m*n, m, n)
	}
	if bump == "" {
		bump = BumpLinear
	}
	if !validBump(bump) {
		return nil, fmt.Errorf("circcoords: invalid Bump %q", bump)
	}

	pou := &PartitionOfUnity{
		M:       m,
		N:       n,
		Weights: make([]float64, m*n),
		Charts:  make([]int, n),
	}
	peak := make([]float64, n)
	for x := range pou.Charts {
		pou.Charts[x] = -1
		peak[x] = math.Inf(-1)
	}

	// Rows ascend, so the first landmark seen for a point is its chart.
	for j := 0; j < m; j++ {
		row := distLD[j*n : (j+1)*n]
		for x, d := range row {
			if !(d < r) {
				continue
			}
			lw := bump.logEval(d, r)
			pou.Weights[j*n+x] = lw
			peak[x] = math.Max(peak[x], lw)
			if pou.Charts[x] == -1 {
				pou.Charts[x] = j
			}
		}
	}

	denom := make([]float64, n)
	for j := 0; j < m; j++ {
		row := distLD[j*n : (j+1)*n]
		for x, d := range row {
			if !(d < r) {
				continue
			}
			phi := math.Exp(pou.Weights[j*n+x] - peak[x])
			pou.Weights[j*n+x] = phi
			denom[x] += phi
		}
	}

	for x := 0; x < n; x++ {
		if pou.Charts[x] == -1 {
			pou.Uncovered = append(pou.Uncovered, x)
			denom[x] = 1
		}
	}
	for j := 0; j < m; j++ {
		for x := 0; x < n; x++ {
			pou.Weights[j*n+x] /= denom[x]
		}
	}
	return pou, nil
}
