package circcoords

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// linearOperator is the sparse interface LSQR needs.
type linearOperator interface {
	Dims() (r, c int)
	MulVecTo(dst, x []float64)
	MulTransVecTo(dst, y []float64)
}

// lsqrResult is the outcome of an LSQR run.
type lsqrResult struct {
	X          []float64
	Iterations int
	Residual   float64 // ‖b - A·x‖
	Converged  bool
}

// lsqr solves min ‖b - A·x‖₂ with the Paige–Saunders bidiagonalization.
// Starting from x = 0 keeps every iterate in the row space of A, so a
// rank-deficient system converges to its minimum-norm solution.
//
// Iteration stops when ‖r‖ <= btol·‖b‖ (consistent system), when
// ‖Aᵀr‖ <= atol·‖A‖·‖r‖ (least-squares optimum), or after maxIter steps.
func lsqr(a linearOperator, b []float64, atol, btol float64, maxIter int) lsqrResult {
	rows, cols := a.Dims()
	res := lsqrResult{X: make([]float64, cols)}
	if rows == 0 || cols == 0 {
		res.Converged = true
		return res
	}

	u := make([]float64, rows)
	copy(u, b)
	beta := floats.Norm(u, 2)
	res.Residual = beta
	if beta == 0 {
		res.Converged = true
		return res
	}
	floats.Scale(1/beta, u)

	v := make([]float64, cols)
	a.MulTransVecTo(v, u)
	alpha := floats.Norm(v, 2)
	if alpha == 0 {
		// b is orthogonal to the range of A; x = 0 is optimal.
		res.Converged = true
		return res
	}
	floats.Scale(1/alpha, v)

	w := make([]float64, cols)
	copy(w, v)
	av := make([]float64, rows)
	atu := make([]float64, cols)

	bnorm := beta
	phibar, rhobar := beta, alpha
	var anorm float64

	for it := 1; it <= maxIter; it++ {
		res.Iterations = it

		// Continue the bidiagonalization.
		a.MulVecTo(av, v)
		floats.AddScaledTo(u, av, -alpha, u)
		beta = floats.Norm(u, 2)
		if beta > 0 {
			floats.Scale(1/beta, u)
			anorm = math.Sqrt(anorm*anorm + alpha*alpha + beta*beta)
			a.MulTransVecTo(atu, u)
			floats.AddScaledTo(v, atu, -beta, v)
			alpha = floats.Norm(v, 2)
			if alpha > 0 {
				floats.Scale(1/alpha, v)
			}
		}

		// Plane rotation eliminating the subdiagonal beta.
		rho := math.Hypot(rhobar, beta)
		c := rhobar / rho
		s := beta / rho
		theta := s * alpha
		rhobar = -c * alpha
		phi := c * phibar
		phibar = s * phibar

		floats.AddScaled(res.X, phi/rho, w)
		floats.AddScaledTo(w, v, -theta/rho, w)

		rnorm := phibar
		arnorm := phibar * alpha * math.Abs(c)
		res.Residual = rnorm
		if rnorm <= btol*bnorm || arnorm <= atol*anorm*rnorm {
			res.Converged = true
			break
		}
	}
	return res
}
