package nav

import "math"

// Vec3i is an integer lattice coordinate. Z is the vertical axis.
type Vec3i struct {
	X, Y, Z int
}

// Node carries the transient search state for one coordinate during a
// single run. At most one Node exists per coordinate per run; the run's
// node table enforces that.
type Node struct {
	Pos    Vec3i
	Parent *Node

	g, h, f float64
	opened  bool
	closed  bool
	tested  bool
	heapIdx int
}

// nodeTable hands out the stable Node for a coordinate, creating it on
// first use. One table per run, never shared.
type nodeTable map[Vec3i]*Node

func (t nodeTable) at(p Vec3i) *Node {
	if n, ok := t[p]; ok {
		return n
	}
	n := &Node{Pos: p, heapIdx: -1}
	t[p] = n
	return n
}

func (t nodeTable) lookup(p Vec3i) (*Node, bool) {
	n, ok := t[p]
	return n, ok
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func signInt(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// dist is the Euclidean distance between two lattice points.
func dist(a, b Vec3i) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	dz := float64(a.Z - b.Z)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
