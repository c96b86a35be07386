package circcoords

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/floats"
)

// randomGraph returns the edges of a random graph on m vertices where each
// pair is kept with probability prob.
func randomGraph(rng *rand.Rand, m int, prob float64) []Edge {
	var edges []Edge
	for i := 0; i < m; i++ {
		for j := i + 1; j < m; j++ {
			if rng.Float64() < prob {
				edges = append(edges, Edge{I: i, J: j})
			}
		}
	}
	return edges
}

func TestLSQR_ConsistentSystem(t *testing.T) {
	// b = δ·x0 for a path graph; the minimum-norm solution is x0 minus its mean.
	edges := []Edge{{0, 1}, {1, 2}, {2, 3}}
	a := NewCoboundary(4, edges, nil)
	x0 := []float64{1, 3, 2, 6}
	b := make([]float64, 3)
	a.MulVecTo(b, x0)

	res := lsqr(a, b, 1e-12, 1e-12, 100)
	if !res.Converged {
		t.Fatalf("did not converge after %d iterations", res.Iterations)
	}
	mean := floats.Sum(x0) / 4
	for i := range x0 {
		if !almostEqual(res.X[i], x0[i]-mean, 1e-8) {
			t.Errorf("x[%d] = %g, want %g", i, res.X[i], x0[i]-mean)
		}
	}
	if res.Residual > 1e-8 {
		t.Errorf("residual = %g, want ~0", res.Residual)
	}
}

func TestLSQR_ZeroRHS(t *testing.T) {
	a := NewCoboundary(3, []Edge{{0, 1}}, nil)
	res := lsqr(a, []float64{0}, 1e-10, 1e-10, 10)
	if res.Iterations != 0 || floats.Norm(res.X, 2) != 0 {
		t.Errorf("expected immediate zero solution, got %+v", res)
	}
}

func TestLSQR_MatchesSVD(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 10; trial++ {
		m := 5 + rng.Intn(10)
		edges := randomGraph(rng, m, 0.4)
		if len(edges) == 0 {
			continue
		}
		weights := make([]float64, len(edges))
		b := make([]float64, len(edges))
		for k := range edges {
			weights[k] = 0.5 + rng.Float64()
			b[k] = rng.NormFloat64()
		}
		a := NewCoboundary(m, edges, weights)

		want := make([]float64, m)
		if err := solveSVD(a, b, 1e-10, want); err != nil {
			t.Fatalf("trial %d: SVD: %v", trial, err)
		}
		got := lsqr(a, b, 1e-12, 1e-12, 50*m)
		for i := range want {
			if !almostEqual(got.X[i], want[i], 1e-6) {
				t.Errorf("trial %d (m=%d, %d edges): x[%d] = %g, SVD %g",
					trial, m, len(edges), i, got.X[i], want[i])
			}
		}
	}
}

func TestLSQR_DisconnectedMinimumNorm(t *testing.T) {
	// Two components {0,1} and {2,3}; each carries a free constant, and the
	// minimum-norm solution has zero mean on each component.
	a := NewCoboundary(4, []Edge{{0, 1}, {2, 3}}, nil)
	res := lsqr(a, []float64{2, -4}, 1e-12, 1e-12, 100)
	want := []float64{-1, 1, 2, -2}
	for i := range want {
		if !almostEqual(res.X[i], want[i], 1e-8) {
			t.Errorf("x[%d] = %g, want %g", i, res.X[i], want[i])
		}
	}
	for _, v := range res.X {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("non-finite solution %v", res.X)
		}
	}
}
