package circcoords

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// DistanceMetric measures the distance between two points of equal dimension.
type DistanceMetric interface {
	Distance(a, b []float64) float64
}

// DistanceFunc adapts a plain function into a DistanceMetric.
type DistanceFunc func(a, b []float64) float64

func (f DistanceFunc) Distance(a, b []float64) float64 { return f(a, b) }

// EuclideanMetric computes the Euclidean (L2) distance.
type EuclideanMetric struct{}

func (EuclideanMetric) Distance(a, b []float64) float64 { return floats.Distance(a, b, 2) }

// ManhattanMetric computes the Manhattan (L1) distance.
type ManhattanMetric struct{}

func (ManhattanMetric) Distance(a, b []float64) float64 { return floats.Distance(a, b, 1) }

// ChebyshevMetric computes the Chebyshev (L-infinity) distance.
type ChebyshevMetric struct{}

func (ChebyshevMetric) Distance(a, b []float64) float64 { return floats.Distance(a, b, math.Inf(1)) }

// MinkowskiMetric computes the Minkowski distance of order P (P >= 1).
type MinkowskiMetric struct {
	P float64
}

func (m MinkowskiMetric) Distance(a, b []float64) float64 { return floats.Distance(a, b, m.P) }

// CosineMetric computes 1 - cosine similarity. Two zero vectors give NaN.
type CosineMetric struct{}

func (CosineMetric) Distance(a, b []float64) float64 {
	return 1.0 - floats.Dot(a, b)/(floats.Norm(a, 2)*floats.Norm(b, 2))
}

var namedMetrics = map[string]DistanceMetric{
	"euclidean": EuclideanMetric{},
	"manhattan": ManhattanMetric{},
	"chebyshev": ChebyshevMetric{},
	"cosine":    CosineMetric{},
}

// MetricByName resolves "euclidean", "manhattan", "chebyshev", "cosine" or
// "minkowski:<p>". The empty name means Euclidean.
func MetricByName(name string) (DistanceMetric, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return EuclideanMetric{}, nil
	}
	if m, ok := namedMetrics[name]; ok {
		return m, nil
	}
	if p, ok := strings.CutPrefix(name, "minkowski:"); ok {
		var order float64
		if _, err := fmt.Sscanf(p, "%g", &order); err != nil || order < 1 {
			return nil, fmt.Errorf("circcoords: invalid Minkowski order %q", p)
		}
		return MinkowskiMetric{P: order}, nil
	}
	names := make([]string, 0, len(namedMetrics))
	for k := range namedMetrics {
		names = append(names, k)
	}
	sort.Strings(names)
	return nil, fmt.Errorf("circcoords: unknown metric %q (want one of %s, minkowski:<p>)", name, strings.Join(names, ", "))
}

// ComputeCrossDistances computes the m×n distance matrix between the rows of
// data selected by landmarks and every row of data. data is flat row-major
// with n rows and dims columns. Returns flat []float64 of length m*n.
func ComputeCrossDistances(data []float64, n, dims int, landmarks []int, metric DistanceMetric) []float64 {
	m := len(landmarks)
	result := make([]float64, m*n)
	for j, l := range landmarks {
		crossRow(result[j*n:(j+1)*n], data, n, dims, l, metric)
	}
	return result
}

func crossRow(dst, data []float64, n, dims, l int, metric DistanceMetric) {
	p := data[l*dims : (l+1)*dims]
	for x := 0; x < n; x++ {
		if x == l {
			dst[x] = 0
			continue
		}
		dst[x] = metric.Distance(p, data[x*dims:(x+1)*dims])
	}
}

// LandmarkDistances flattens a point cloud and computes both matrices the
// pipeline consumes: the m×m landmark-landmark matrix and the m×n
// landmark-data matrix. landmarks index rows of data. workers <= 1 computes
// sequentially.
func LandmarkDistances(data [][]float64, landmarks []int, metric DistanceMetric, workers int) (distLL, distLD []float64, err error) {
	n := len(data)
	if len(landmarks) == 0 {
		return nil, nil, fmt.Errorf("circcoords: need at least one landmark")
	}
	if metric == nil {
		metric = EuclideanMetric{}
	}
	dims := 0
	if n > 0 {
		dims = len(data[0])
	}
	flat := make([]float64, n*dims)
	for i, row := range data {
		if len(row) != dims {
			return nil, nil, fmt.Errorf("circcoords: point %d has dimension %d, want %d", i, len(row), dims)
		}
		copy(flat[i*dims:], row)
	}
	for j, l := range landmarks {
		if l < 0 || l >= n {
			return nil, nil, fmt.Errorf("circcoords: landmark %d indexes point %d, out of range [0, %d)", j, l, n)
		}
	}

	distLD = ComputeCrossDistancesParallel(flat, n, dims, landmarks, metric, workers)

	// Landmark-landmark distances are columns of distLD.
	m := len(landmarks)
	distLL = make([]float64, m*m)
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			if i != j {
				distLL[i*m+j] = distLD[i*n+landmarks[j]]
			}
		}
	}
	return distLL, distLD, nil
}
