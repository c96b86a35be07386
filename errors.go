package circcoords

import (
	"errors"
	"fmt"
)

// Structural errors abort a run before any matrix work begins.
var (
	// ErrSelection is returned when no cohomology generator was chosen.
	ErrSelection = errors.New("circcoords: must choose at least one representative cocycle")

	// ErrPrecursorNotReady is returned when the upstream persistence
	// computation has not produced a snapshot, was cancelled, or failed.
	ErrPrecursorNotReady = errors.New("circcoords: upstream persistence computation is not ready")

	// ErrInvalidInterval is returned when the combined persistence interval
	// is empty (birth >= death).
	ErrInvalidInterval = errors.New("circcoords: combined persistence interval is empty")

	// ErrInvalidPrime is returned for a coefficient field size below 2.
	ErrInvalidPrime = errors.New("circcoords: field prime must be >= 2")

	// ErrZeroWeight is returned when a weighted run keeps an edge between two
	// landmarks at distance zero.
	ErrZeroWeight = errors.New("circcoords: kept edge has zero weight (duplicate landmarks)")
)

// DegenerateCoverWarning reports data points that no landmark ball covers at
// the chosen radius. Their angles are NaN.
type DegenerateCoverWarning struct {
	Uncovered int
	Radius    float64
}

func (w *DegenerateCoverWarning) Error() string {
	return fmt.Sprintf("circcoords: %d point(s) not covered by a landmark at radius %g", w.Uncovered, w.Radius)
}

// IllConditionedSystemWarning reports a landmark graph that falls apart into
// several connected components at the chosen radius. The least-squares system
// is rank-deficient beyond the constant null space; the minimum-norm solution
// is still returned.
type IllConditionedSystemWarning struct {
	Components int
	Edges      int
	Landmarks  int
}

func (w *IllConditionedSystemWarning) Error() string {
	return fmt.Sprintf("circcoords: landmark graph has %d connected components (%d edges over %d landmarks)",
		w.Components, w.Edges, w.Landmarks)
}
