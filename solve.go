package circcoords

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Solver selects the least-squares method for the harmonic smoothing step.
type Solver string

const (
	SolverAuto Solver = "auto"
	SolverSVD  Solver = "svd"
	SolverLSQR Solver = "lsqr"
)

// autoSVDMaxEntries bounds the dense edges×landmarks matrix that SolverAuto
// is willing to factorize; larger systems go to LSQR.
const autoSVDMaxEntries = 1 << 20

// selectSolver resolves SolverAuto to a concrete method for an edges×m system.
func selectSolver(s Solver, edges, m int) Solver {
	if s != SolverAuto {
		return s
	}
	if edges*m <= autoSVDMaxEntries {
		return SolverSVD
	}
	return SolverLSQR
}

// HarmonicOptions controls SolveHarmonic.
type HarmonicOptions struct {
	// Weighted weights each edge by its landmark distance instead of 1.
	Weighted bool
	// Solver picks the least-squares method. Zero value means SolverAuto.
	Solver Solver
	// Tolerance is the SVD rank cutoff and the LSQR stopping tolerance.
	Tolerance float64
	// MaxIterations caps LSQR. 0 means 4·m, at least 32.
	MaxIterations int
}

// TransitionCocycle is a real-valued antisymmetric function on the kept
// landmark edges. Values are stored on canonical (i < j) edges.
type TransitionCocycle struct {
	values map[Edge]float64
}

// NewTransitionCocycle returns a transition cocycle with the given values on
// canonical edges.
func NewTransitionCocycle(edges []Edge, values []float64) *TransitionCocycle {
	t := &TransitionCocycle{values: make(map[Edge]float64, len(edges))}
	for k, e := range edges {
		c, sign := e.Canonical()
		t.values[c] = float64(sign) * values[k]
	}
	return t
}

// Lookup returns θ(i, j): the stored value when (i, j) is a kept edge, its
// negation when (j, i) is, and 0 when the pair was discarded.
func (t *TransitionCocycle) Lookup(i, j int) float64 {
	if t == nil {
		return 0
	}
	c, sign := Edge{I: i, J: j}.Canonical()
	return float64(sign) * t.values[c]
}

// Has reports whether the unordered pair {i, j} is a kept edge.
func (t *TransitionCocycle) Has(i, j int) bool {
	if t == nil {
		return false
	}
	c, _ := Edge{I: i, J: j}.Canonical()
	_, ok := t.values[c]
	return ok
}

// Len returns the number of kept edges.
func (t *TransitionCocycle) Len() int {
	if t == nil {
		return 0
	}
	return len(t.values)
}

// Edges returns the kept canonical edges in row-major order.
func (t *TransitionCocycle) Edges() []Edge {
	if t == nil {
		return nil
	}
	edges := make([]Edge, 0, len(t.values))
	for e := range t.values {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(a, b int) bool {
		if edges[a].I != edges[b].I {
			return edges[a].I < edges[b].I
		}
		return edges[a].J < edges[b].J
	})
	return edges
}

// Harmonic is the output of the smoothing step.
type Harmonic struct {
	// Tau is the per-landmark potential minimizing ‖sqrt(W)·(δτ - Y)‖.
	Tau []float64
	// Theta is Y - δτ reduced to [-0.5, 0.5) on each kept edge.
	Theta *TransitionCocycle
	// Edges lists the kept canonical edges, parallel to Weights.
	Edges   []Edge
	Weights []float64
	// Components counts connected components of the kept landmark graph.
	Components int
	// Solver is the method actually used.
	Solver Solver
	// Iterations is the LSQR iteration count; 0 for SVD.
	Iterations int
	// Residual is the weighted least-squares residual norm.
	Residual float64
	// Converged is false when LSQR stopped at its iteration cap.
	Converged bool
}

// SolveHarmonic projects the integer-lifted cocycle onto the image of the
// coboundary over the landmark graph at radius r and returns the harmonic
// remainder. The system is solved for its minimum-norm solution, so a
// disconnected or empty landmark graph still yields a finite τ.
func SolveHarmonic(distLL []float64, m int, r float64, lifted Cochain, opts HarmonicOptions) (*Harmonic, error) {
	if m < 1 {
		return nil, errors.New("circcoords: need at least one landmark")
	}
	if len(distLL) != m*m {
		return nil, fmt.Errorf("circcoords: landmark distance matrix length %d does not match m*m = %d (m=%d)", len(distLL), m*m, m)
	}
	if opts.Solver == "" {
		opts.Solver = SolverAuto
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = defaultTolerance
	}
	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = max(4*m, 32)
	}

	edges := KeptEdges(distLL, m, r)
	weights, err := EdgeWeights(edges, distLL, m, opts.Weighted)
	if err != nil {
		return nil, err
	}
	y := edgeValues(lifted, edges)

	h := &Harmonic{
		Tau:        make([]float64, m),
		Edges:      edges,
		Weights:    weights,
		Components: countComponents(m, edges),
		Solver:     selectSolver(opts.Solver, len(edges), m),
		Converged:  true,
	}

	if len(edges) > 0 {
		a := NewCoboundary(m, edges, weights)
		b := make([]float64, len(edges))
		for k := range b {
			b[k] = a.sqrtW[k] * y[k]
		}

		switch h.Solver {
		case SolverSVD:
			if err := solveSVD(a, b, opts.Tolerance, h.Tau); err != nil {
				return nil, err
			}
		case SolverLSQR:
			res := lsqr(a, b, opts.Tolerance, opts.Tolerance, maxIter)
			copy(h.Tau, res.X)
			h.Iterations = res.Iterations
			h.Converged = res.Converged
		default:
			return nil, fmt.Errorf("circcoords: invalid Solver %q", h.Solver)
		}

		ax := make([]float64, len(edges))
		a.MulVecTo(ax, h.Tau)
		var ss float64
		for k := range ax {
			d := ax[k] - b[k]
			ss += d * d
		}
		h.Residual = math.Sqrt(ss)
	}

	theta := make([]float64, len(edges))
	for k, e := range edges {
		theta[k] = principalBranch(y[k] - (h.Tau[e.J] - h.Tau[e.I]))
	}
	h.Theta = NewTransitionCocycle(edges, theta)
	return h, nil
}

// solveSVD writes the minimum-norm least-squares solution of a·x = b into dst.
func solveSVD(a mat.Matrix, b []float64, rcond float64, dst []float64) error {
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return errors.New("circcoords: SVD factorization did not converge")
	}
	rank := svd.Rank(rcond)
	if rank == 0 {
		return nil
	}
	var x mat.VecDense
	svd.SolveVecTo(&x, mat.NewVecDense(len(b), b), rank)
	for i := range dst {
		dst[i] = x.AtVec(i)
	}
	return nil
}

// principalBranch reduces v to [-0.5, 0.5) modulo 1.
func principalBranch(v float64) float64 {
	f := math.Mod(v+0.5, 1)
	if f < 0 {
		f++
	}
	if f >= 1 {
		f = 0
	}
	return f - 0.5
}
