package circcoords

import "golang.org/x/sync/errgroup"

// ComputeCrossDistancesParallel computes the m×n landmark-data distance
// matrix using multiple goroutines. numWorkers controls the degree of
// parallelism; if <= 1, it falls back to single-threaded
// ComputeCrossDistances.
//
// The result is bitwise identical to ComputeCrossDistances.
func ComputeCrossDistancesParallel(data []float64, n, dims int, landmarks []int, metric DistanceMetric, numWorkers int) []float64 {
	m := len(landmarks)
	if numWorkers <= 1 || m <= 1 {
		return ComputeCrossDistances(data, n, dims, landmarks, metric)
	}

	result := make([]float64, m*n)

	// One task per landmark row, at most numWorkers running at once. Rows
	// don't overlap, so no synchronization is needed for writes.
	var eg errgroup.Group
	eg.SetLimit(numWorkers)
	for j, l := range landmarks {
		j, l := j, l
		eg.Go(func() error {
			crossRow(result[j*n:(j+1)*n], data, n, dims, l, metric)
			return nil
		})
	}
	// Rows cannot fail; Wait is the join.
	_ = eg.Wait()
	return result
}
