// Package circcoords computes circle-valued coordinates for a point cloud
// from an integral cohomology class, following the sparse circular
// coordinates construction of Perea (2018).
//
// An external persistent-cohomology engine supplies a landmark subset, the
// landmark-landmark and landmark-data distance matrices, a dimension-1
// persistence diagram and one representative cocycle per interval. The
// pipeline then:
//
//  1. sums the chosen cocycles mod p and intersects their intervals;
//  2. picks a covering radius r from the interval and the data coverage;
//  3. lifts the cocycle to integers and solves a weighted least-squares
//     problem against the coboundary of the landmark graph at radius r,
//     leaving a harmonic transition cocycle θ and a potential τ;
//  4. builds a partition of unity over the landmark balls of radius r;
//  5. evaluates the classifying map, giving one angle in [0, 2π) per point.
//
// Basic usage:
//
//	cfg := circcoords.DefaultConfig()
//	cfg.CoverPercentile = 0.9
//	result, err := circcoords.Compute([]int{0}, snapshot, cfg)
//	// result.Angles[i] is the angle of point i (NaN if no landmark covers it)
//	// result.CoveringRadius is the radius r that was used
//
// When the persistence computation runs asynchronously, hand it to a Session
// and compute against the readiness handle:
//
//	s, _ := circcoords.NewSession(cfg)
//	s.Recompute(ctx, ripsFunc)
//	result, err := s.Compute(ctx, []int{0, 2})
//
// # Solvers
//
// By default (Solver: "auto") small systems are solved with a dense SVD and
// large ones with LSQR. Both return the minimum-norm least-squares solution,
// so a disconnected landmark graph still produces a finite result:
//
//	cfg.Solver = circcoords.SolverSVD   // gonum thin SVD with rank cutoff
//	cfg.Solver = circcoords.SolverLSQR  // sparse iterative LSQR
package circcoords
