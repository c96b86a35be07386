package circcoords

import "fmt"

// Edge is an ordered pair of landmark indices, oriented I -> J.
type Edge struct {
	I, J int
}

// Reverse returns the edge with its orientation flipped.
func (e Edge) Reverse() Edge { return Edge{I: e.J, J: e.I} }

// Canonical returns the low-to-high form of e and the sign that converts a
// value stored on e into a value on the canonical edge.
func (e Edge) Canonical() (Edge, int) {
	if e.I > e.J {
		return e.Reverse(), -1
	}
	return e, 1
}

// Cochain is a sparse 1-cochain over landmark edges. A value on (i, j)
// implies the negated value on (j, i); both orientations are never stored.
type Cochain map[Edge]int

// mod returns v mod p in [0, p).
func mod(v, p int) int {
	v %= p
	if v < 0 {
		v += p
	}
	return v
}

// AddCochains returns a + b with values in [0, p). Entries of b stored with
// the opposite orientation of an entry of a are negated so the result keeps
// the orientation already present in a. Entries that sum to zero are dropped.
func AddCochains(a, b Cochain, p int) (Cochain, error) {
	if p < 2 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidPrime, p)
	}
	out := make(Cochain, len(a)+len(b))
	for e, v := range a {
		if v = mod(v, p); v != 0 {
			out[e] = v
		}
	}
	for e, v := range b {
		key, sign := e, 1
		if _, ok := out[e.Reverse()]; ok {
			key, sign = e.Reverse(), -1
		}
		s := mod(out[key]+sign*v, p)
		if s == 0 {
			delete(out, key)
			continue
		}
		out[key] = s
	}
	return out, nil
}

// SumCochains adds any number of cochains mod p. The empty sum is the zero
// cochain.
func SumCochains(p int, cs ...Cochain) (Cochain, error) {
	if p < 2 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidPrime, p)
	}
	sum := Cochain{}
	for _, c := range cs {
		var err error
		if sum, err = AddCochains(sum, c, p); err != nil {
			return nil, err
		}
	}
	return sum, nil
}

// LiftToInteger maps each value v in [0, p) to the balanced representative in
// (-p/2, p/2] by subtracting p when v > (p-1)/2. Values already in the
// balanced range are left unchanged.
func LiftToInteger(c Cochain, p int) Cochain {
	out := make(Cochain, len(c))
	half := float64(p-1) / 2
	for e, v := range c {
		if float64(v) > half {
			v -= p
		}
		out[e] = v
	}
	return out
}

// Equal reports whether c and other represent the same cochain mod p,
// treating opposite orientations and explicit zeros as equivalent.
func (c Cochain) Equal(other Cochain, p int) bool {
	diff, err := AddCochains(c, negate(other, p), p)
	return err == nil && len(diff) == 0
}

func negate(c Cochain, p int) Cochain {
	out := make(Cochain, len(c))
	for e, v := range c {
		out[e] = mod(-v, p)
	}
	return out
}

// ValidateCochain checks that every entry of c connects two distinct landmarks
// in [0, m), carries a value in [0, p), and that no unordered pair is stored
// in both orientations.
func ValidateCochain(c Cochain, m, p int) error {
	for e, v := range c {
		if e.I < 0 || e.I >= m || e.J < 0 || e.J >= m {
			return fmt.Errorf("circcoords: edge (%d, %d) out of range for %d landmarks", e.I, e.J, m)
		}
		if e.I == e.J {
			return fmt.Errorf("circcoords: degenerate edge (%d, %d)", e.I, e.J)
		}
		if v < 0 || v >= p {
			return fmt.Errorf("circcoords: value %d on edge (%d, %d) outside [0, %d)", v, e.I, e.J, p)
		}
		if _, ok := c[e.Reverse()]; ok {
			return fmt.Errorf("circcoords: edge (%d, %d) stored in both orientations", e.I, e.J)
		}
	}
	return nil
}
