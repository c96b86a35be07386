package circcoords

import "testing"

func TestNewUnionFind(t *testing.T) {
	uf := NewUnionFind(5)

	// Each element should be its own root.
	for i := 0; i < 5; i++ {
		if root := uf.Find(i); root != i {
			t.Errorf("Find(%d) = %d, want %d", i, root, i)
		}
	}
	if uf.Count() != 5 {
		t.Errorf("Count() = %d, want 5", uf.Count())
	}
}

func TestUnionFind_UnionTwoElements(t *testing.T) {
	uf := NewUnionFind(5)
	root := uf.Union(1, 3)

	if !uf.Connected(1, 3) {
		t.Error("after Union(1,3), 1 and 3 not connected")
	}
	if root != uf.Find(1) {
		t.Errorf("Union returned %d, but Find(1) = %d", root, uf.Find(1))
	}
	if uf.size[root] != 2 {
		t.Errorf("size of root = %d, want 2", uf.size[root])
	}
	if uf.Count() != 4 {
		t.Errorf("Count() = %d, want 4", uf.Count())
	}
}

func TestUnionFind_RepeatedUnionKeepsCount(t *testing.T) {
	uf := NewUnionFind(3)
	uf.Union(0, 1)
	uf.Union(1, 0)
	uf.Union(0, 1)
	if uf.Count() != 2 {
		t.Errorf("Count() = %d, want 2", uf.Count())
	}
}

func TestUnionFind_MultipleUnions(t *testing.T) {
	uf := NewUnionFind(6)

	// Union {0,1,2} and {3,4,5}.
	uf.Union(0, 1)
	uf.Union(1, 2)
	uf.Union(3, 4)
	uf.Union(4, 5)

	if !uf.Connected(0, 2) {
		t.Error("0 and 2 should be in same set")
	}
	if uf.Connected(0, 3) {
		t.Error("0 and 3 should be in different sets")
	}
	if uf.Count() != 2 {
		t.Errorf("Count() = %d, want 2", uf.Count())
	}

	uf.Union(2, 4)

	root := uf.Find(0)
	for i := 1; i < 6; i++ {
		if uf.Find(i) != root {
			t.Errorf("after full union, Find(%d) != Find(0)", i)
		}
	}
	if uf.size[root] != 6 {
		t.Errorf("size of root = %d, want 6", uf.size[root])
	}
	if uf.Count() != 1 {
		t.Errorf("Count() = %d, want 1", uf.Count())
	}
}

func TestUnionFind_PathCompression(t *testing.T) {
	uf := NewUnionFind(5)

	// Build a chain through the current root each time.
	uf.Union(0, 1)
	uf.Union(uf.Find(0), 2)
	uf.Union(uf.Find(0), 3)
	uf.Union(uf.Find(0), 4)

	root := uf.Find(4)
	if uf.parent[4] != root && uf.parent[4] != -1 {
		t.Errorf("after Find(4), parent[4] = %d, want root %d", uf.parent[4], root)
	}
}

func TestUnionFind_UnionBySize(t *testing.T) {
	uf := NewUnionFind(4)

	uf.Union(0, 1)
	uf.Union(0, 2)
	bigRoot := uf.Find(0)

	// The singleton attaches under the larger tree.
	uf.Union(3, 0)
	if newRoot := uf.Find(3); newRoot != bigRoot {
		t.Errorf("expected union-by-size: small tree attaches to big root %d, got root %d", bigRoot, newRoot)
	}
}

func TestUnionFind_CountComponents(t *testing.T) {
	tests := []struct {
		name  string
		m     int
		edges []Edge
		want  int
	}{
		{"no edges", 4, nil, 4},
		{"path", 4, []Edge{{0, 1}, {1, 2}, {2, 3}}, 1},
		{"two pairs", 4, []Edge{{0, 1}, {2, 3}}, 2},
		{"cycle", 3, []Edge{{0, 1}, {1, 2}, {0, 2}}, 1},
		{"single landmark", 1, nil, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := countComponents(tt.m, tt.edges); got != tt.want {
				t.Errorf("countComponents = %d, want %d", got, tt.want)
			}
		})
	}
}
