package circcoords

// UnionFind implements a disjoint-set data structure with path compression
// and union by size over the landmarks 0..n-1. It tracks the number of
// disjoint sets so the connectivity of the kept landmark graph can be read
// off directly.
type UnionFind struct {
	parent []int
	size   []int
	count  int
}

// NewUnionFind creates a UnionFind with n singleton sets.
func NewUnionFind(n int) *UnionFind {
	parent := make([]int, n)
	size := make([]int, n)
	for i := range parent {
		parent[i] = -1 // -1 means "is a root"
		size[i] = 1
	}
	return &UnionFind{parent: parent, size: size, count: n}
}

// Find returns the root of the set containing x, with path compression.
func (uf *UnionFind) Find(x int) int {
	root := x
	for uf.parent[root] != -1 {
		root = uf.parent[root]
	}
	for uf.parent[x] != -1 {
		x, uf.parent[x] = uf.parent[x], root
	}
	return root
}

// Union merges the sets containing x and y by attaching the smaller tree
// under the larger. Returns the new root.
func (uf *UnionFind) Union(x, y int) int {
	rootX := uf.Find(x)
	rootY := uf.Find(y)
	if rootX == rootY {
		return rootX
	}

	if uf.size[rootX] < uf.size[rootY] {
		rootX, rootY = rootY, rootX
	}
	uf.parent[rootY] = rootX
	uf.size[rootX] += uf.size[rootY]
	uf.count--
	return rootX
}

// Connected reports whether x and y are in the same set.
func (uf *UnionFind) Connected(x, y int) bool { return uf.Find(x) == uf.Find(y) }

// Count returns the number of disjoint sets.
func (uf *UnionFind) Count() int { return uf.count }
