package circcoords

import (
	"fmt"
	"math"
)

// Diagram holds dimension-1 persistence pairs as parallel birth/death arrays.
type Diagram struct {
	Births []float64
	Deaths []float64
}

// Len returns the number of persistence pairs.
func (d Diagram) Len() int { return len(d.Births) }

// Interval is a persistence interval [Birth, Death).
type Interval struct {
	Birth float64
	Death float64
}

// Valid reports whether the interval is non-empty.
func (iv Interval) Valid() bool { return iv.Birth < iv.Death }

// Lifespan returns Death - Birth.
func (iv Interval) Lifespan() float64 { return iv.Death - iv.Birth }

// CombineCocycles sums the selected cocycles mod p and intersects their
// persistence intervals: the combined interval runs from the latest birth to
// the earliest death, the range over which every chosen generator is alive.
// An empty selection fails with ErrSelection before the diagram or cocycles
// are read; an empty intersection fails with ErrInvalidInterval.
func CombineCocycles(selected []int, dgm Diagram, cocycles []Cochain, p int) (Cochain, Interval, error) {
	if len(selected) == 0 {
		return nil, Interval{}, ErrSelection
	}
	if p < 2 {
		return nil, Interval{}, fmt.Errorf("%w, got %d", ErrInvalidPrime, p)
	}
	if len(dgm.Deaths) != len(dgm.Births) {
		return nil, Interval{}, fmt.Errorf("circcoords: diagram has %d births but %d deaths", len(dgm.Births), len(dgm.Deaths))
	}
	if len(cocycles) != dgm.Len() {
		return nil, Interval{}, fmt.Errorf("circcoords: %d cocycles for %d persistence pairs", len(cocycles), dgm.Len())
	}

	combined := Cochain{}
	iv := Interval{Birth: math.Inf(-1), Death: math.Inf(1)}
	for _, idx := range selected {
		if idx < 0 || idx >= dgm.Len() {
			return nil, Interval{}, fmt.Errorf("circcoords: generator index %d out of range [0, %d)", idx, dgm.Len())
		}
		var err error
		if combined, err = AddCochains(combined, cocycles[idx], p); err != nil {
			return nil, Interval{}, err
		}
		iv.Birth = math.Max(iv.Birth, dgm.Births[idx])
		iv.Death = math.Min(iv.Death, dgm.Deaths[idx])
	}

	if !iv.Valid() {
		return nil, iv, fmt.Errorf("%w: birth %g >= death %g", ErrInvalidInterval, iv.Birth, iv.Death)
	}
	return combined, iv, nil
}
