package circcoords

import (
	"errors"
	"testing"
)

func testDiagram() (Diagram, []Cochain) {
	dgm := Diagram{
		Births: []float64{0.2, 0.5, 0.1},
		Deaths: []float64{1.5, 1.0, 0.4},
	}
	cocycles := []Cochain{
		{{0, 1}: 1, {1, 2}: 2},
		{{1, 2}: 5, {2, 3}: 1},
		{{0, 3}: 6},
	}
	return dgm, cocycles
}

func TestCombineCocycles_SingleReproducesInterval(t *testing.T) {
	dgm, cocycles := testDiagram()
	for idx := range cocycles {
		c, iv, err := CombineCocycles([]int{idx}, dgm, cocycles, 7)
		if err != nil {
			t.Fatalf("idx=%d: unexpected error: %v", idx, err)
		}
		if iv.Birth != dgm.Births[idx] || iv.Death != dgm.Deaths[idx] {
			t.Errorf("idx=%d: interval = %+v, want [%g, %g]", idx, iv, dgm.Births[idx], dgm.Deaths[idx])
		}
		if !c.Equal(cocycles[idx], 7) {
			t.Errorf("idx=%d: cochain = %v, want %v", idx, c, cocycles[idx])
		}
	}
}

func TestCombineCocycles_Pair(t *testing.T) {
	dgm, cocycles := testDiagram()
	c, iv, err := CombineCocycles([]int{0, 1}, dgm, cocycles, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if iv.Birth != 0.5 || iv.Death != 1.0 {
		t.Errorf("interval = %+v, want [0.5, 1.0]", iv)
	}
	// (1,2): 2+5 = 0 mod 7, dropped.
	want := Cochain{{0, 1}: 1, {2, 3}: 1}
	if !c.Equal(want, 7) {
		t.Errorf("cochain = %v, want %v", c, want)
	}
}

func TestCombineCocycles_EmptySelection(t *testing.T) {
	// Nil diagram and cocycles: the selection must be rejected before
	// either is read.
	_, _, err := CombineCocycles(nil, Diagram{}, nil, 0)
	if !errors.Is(err, ErrSelection) {
		t.Errorf("expected ErrSelection, got %v", err)
	}
}

func TestCombineCocycles_DisjointIntervals(t *testing.T) {
	dgm, cocycles := testDiagram()
	// [0.5, 1.0) and [0.1, 0.4) never overlap.
	_, iv, err := CombineCocycles([]int{1, 2}, dgm, cocycles, 7)
	if !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
	if iv.Birth != 0.5 || iv.Death != 0.4 {
		t.Errorf("interval = %+v, want [0.5, 0.4]", iv)
	}
}

func TestCombineCocycles_Errors(t *testing.T) {
	dgm, cocycles := testDiagram()
	tests := []struct {
		name     string
		selected []int
		dgm      Diagram
		cocycles []Cochain
		p        int
	}{
		{"index too large", []int{3}, dgm, cocycles, 7},
		{"negative index", []int{-1}, dgm, cocycles, 7},
		{"bad prime", []int{0}, dgm, cocycles, 1},
		{"ragged diagram", []int{0}, Diagram{Births: []float64{0}, Deaths: nil}, cocycles[:1], 7},
		{"cocycle count mismatch", []int{0}, dgm, cocycles[:2], 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := CombineCocycles(tt.selected, tt.dgm, tt.cocycles, tt.p); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}
