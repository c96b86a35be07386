package circcoords

import (
	"fmt"
	"math"
)

// Coverage returns the smallest radius at which every data point lies within
// some landmark ball: the maximum over points of the distance to the nearest
// landmark. distLD is flat row-major m×n. Returns 0 when there are no points
// or no landmarks.
func Coverage(distLD []float64, m, n int) float64 {
	if m == 0 || n == 0 {
		return 0
	}
	var coverage float64
	for x := 0; x < n; x++ {
		nearest := math.Inf(1)
		for j := 0; j < m; j++ {
			if d := distLD[j*n+x]; d < nearest {
				nearest = d
			}
		}
		if nearest > coverage {
			coverage = nearest
		}
	}
	return coverage
}

// CoveringRadius interpolates the open-cover radius between the combined
// interval's endpoints:
//
//	r = (1 - t)·max(iv.Death, coverage) + t·iv.Birth
//
// t = 0 yields max(iv.Death, coverage); t = 1 yields iv.Birth.
func CoveringRadius(iv Interval, coverage, t float64) (float64, error) {
	if !iv.Valid() {
		return 0, fmt.Errorf("%w: birth %g >= death %g", ErrInvalidInterval, iv.Birth, iv.Death)
	}
	if math.IsNaN(t) || t < 0 || t > 1 {
		return 0, fmt.Errorf("circcoords: cover percentile must be in [0, 1], got %g", t)
	}
	r := (1-t)*math.Max(iv.Death, coverage) + t*iv.Birth
	return math.Max(r, 0), nil
}
