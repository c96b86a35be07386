package circcoords

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// KeptEdges returns the canonical (i < j) landmark pairs whose distance is
// below 2r, in row-major order. distLL is flat row-major m×m; only its upper
// triangle is read.
func KeptEdges(distLL []float64, m int, r float64) []Edge {
	var edges []Edge
	for i := 0; i < m; i++ {
		for j := i + 1; j < m; j++ {
			if distLL[i*m+j] < 2*r {
				edges = append(edges, Edge{I: i, J: j})
			}
		}
	}
	return edges
}

// EdgeWeights returns the least-squares weight of each edge: the landmark
// distance when weighted is set, otherwise 1. A weighted edge of length zero
// fails with ErrZeroWeight.
func EdgeWeights(edges []Edge, distLL []float64, m int, weighted bool) ([]float64, error) {
	w := make([]float64, len(edges))
	for k, e := range edges {
		if !weighted {
			w[k] = 1
			continue
		}
		d := distLL[e.I*m+e.J]
		if !(d > 0) {
			return nil, fmt.Errorf("%w: landmarks %d and %d at distance %g", ErrZeroWeight, e.I, e.J, d)
		}
		w[k] = d
	}
	return w, nil
}

// Coboundary is the weighted coboundary operator sqrt(W)·δ restricted to a
// set of kept edges. Row k maps a landmark function f to
// sqrt(w_k)·(f(J) - f(I)) for edge k = (I, J).
//
// Coboundary satisfies mat.Matrix so dense factorizations can consume it
// directly; MulVecTo and MulTransVecTo apply it sparsely.
type Coboundary struct {
	m     int
	edges []Edge
	sqrtW []float64
}

var _ mat.Matrix = (*Coboundary)(nil)

// NewCoboundary builds the operator over m landmarks. weights may be nil for
// unit weights; otherwise it must be parallel to edges.
func NewCoboundary(m int, edges []Edge, weights []float64) *Coboundary {
	sqrtW := make([]float64, len(edges))
	for k := range edges {
		if weights == nil {
			sqrtW[k] = 1
		} else {
			sqrtW[k] = math.Sqrt(weights[k])
		}
	}
	return &Coboundary{m: m, edges: edges, sqrtW: sqrtW}
}

// Dims returns (number of edges, number of landmarks).
func (d *Coboundary) Dims() (r, c int) { return len(d.edges), d.m }

// At returns the (edge, landmark) entry of the operator.
func (d *Coboundary) At(i, j int) float64 {
	if i < 0 || i >= len(d.edges) || j < 0 || j >= d.m {
		panic(mat.ErrIndexOutOfRange)
	}
	e := d.edges[i]
	switch j {
	case e.J:
		return d.sqrtW[i]
	case e.I:
		return -d.sqrtW[i]
	}
	return 0
}

// T returns the implicit transpose.
func (d *Coboundary) T() mat.Matrix { return mat.Transpose{Matrix: d} }

// MulVecTo sets dst = A·x. len(dst) must equal the edge count and len(x) the
// landmark count.
func (d *Coboundary) MulVecTo(dst, x []float64) {
	for k, e := range d.edges {
		dst[k] = d.sqrtW[k] * (x[e.J] - x[e.I])
	}
}

// MulTransVecTo sets dst = Aᵀ·y.
func (d *Coboundary) MulTransVecTo(dst, y []float64) {
	for i := range dst {
		dst[i] = 0
	}
	for k, e := range d.edges {
		v := d.sqrtW[k] * y[k]
		dst[e.J] += v
		dst[e.I] -= v
	}
}

// edgeValues evaluates the cochain c on the oriented edges, flipping the sign
// of entries stored in the opposite orientation. Edges c does not mention get 0.
func edgeValues(c Cochain, edges []Edge) []float64 {
	y := make([]float64, len(edges))
	for k, e := range edges {
		if v, ok := c[e]; ok {
			y[k] = float64(v)
		} else if v, ok := c[e.Reverse()]; ok {
			y[k] = -float64(v)
		}
	}
	return y
}

// countComponents returns the number of connected components of the graph on
// m landmarks formed by edges.
func countComponents(m int, edges []Edge) int {
	uf := NewUnionFind(m)
	for _, e := range edges {
		uf.Union(e.I, e.J)
	}
	return uf.Count()
}
