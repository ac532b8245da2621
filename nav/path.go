package nav

import "math"

// Backtrace follows parent links from n to the root and returns the chain
// oldest-first. The chain is finite and acyclic: a node is only
// re-parented on a strict g improvement and closed nodes are never
// revisited.
func Backtrace(n *Node) []Vec3i {
	var rev []Vec3i
	for ; n != nil; n = n.Parent {
		rev = append(rev, n.Pos)
	}
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}

// BiBacktrace joins the chains of two meeting frontiers: a's chain
// oldest-first, then b's chain newest-first.
func BiBacktrace(a, b *Node) []Vec3i {
	path := Backtrace(a)
	tail := Backtrace(b)
	for i := len(tail) - 1; i >= 0; i-- {
		path = append(path, tail[i])
	}
	return path
}

// PathLength sums the Euclidean lengths of the path's segments.
func PathLength(path []Vec3i) float64 {
	var sum float64
	for i := 1; i < len(path); i++ {
		sum += dist(path[i-1], path[i])
	}
	return sum
}

// Interpolate walks the lattice line from a to b inclusive, stepping the
// dominant axis every iteration and the minor axes as their accumulated
// error crosses zero. Consecutive points differ by at most one unit per
// axis, with no duplicates and no gaps.
func Interpolate(a, b Vec3i) []Vec3i {
	dx, dy, dz := absInt(b.X-a.X), absInt(b.Y-a.Y), absInt(b.Z-a.Z)
	sx, sy, sz := signInt(b.X-a.X), signInt(b.Y-a.Y), signInt(b.Z-a.Z)

	x, y, z := a.X, a.Y, a.Z
	line := []Vec3i{{x, y, z}}

	switch {
	case dx >= dy && dx >= dz:
		p1, p2 := 2*dy-dx, 2*dz-dx
		for x != b.X {
			x += sx
			if p1 >= 0 {
				y += sy
				p1 -= 2 * dx
			}
			if p2 >= 0 {
				z += sz
				p2 -= 2 * dx
			}
			p1 += 2 * dy
			p2 += 2 * dz
			line = append(line, Vec3i{x, y, z})
		}
	case dy >= dx && dy >= dz:
		p1, p2 := 2*dx-dy, 2*dz-dy
		for y != b.Y {
			y += sy
			if p1 >= 0 {
				x += sx
				p1 -= 2 * dy
			}
			if p2 >= 0 {
				z += sz
				p2 -= 2 * dy
			}
			p1 += 2 * dx
			p2 += 2 * dz
			line = append(line, Vec3i{x, y, z})
		}
	default:
		p1, p2 := 2*dy-dz, 2*dx-dz
		for z != b.Z {
			z += sz
			if p1 >= 0 {
				y += sy
				p1 -= 2 * dz
			}
			if p2 >= 0 {
				x += sx
				p2 -= 2 * dz
			}
			p1 += 2 * dy
			p2 += 2 * dx
			line = append(line, Vec3i{x, y, z})
		}
	}
	return line
}

// ExpandPath replaces each waypoint pair with its interpolated line,
// sharing endpoints. Paths shorter than two points expand to nothing.
func ExpandPath(path []Vec3i) []Vec3i {
	if len(path) < 2 {
		return nil
	}
	var out []Vec3i
	for i := 0; i < len(path)-1; i++ {
		seg := Interpolate(path[i], path[i+1])
		out = append(out, seg[:len(seg)-1]...)
	}
	return append(out, path[len(path)-1])
}

// SmoothenPath drops waypoints reachable in a straight walkable line from
// the current anchor. One forward pass: when the line to path[i] crosses a
// blocked cell, path[i-1] becomes the new anchor and is emitted. The path
// end is always emitted.
func SmoothenPath(g *Grid, path []Vec3i) []Vec3i {
	if len(path) < 2 {
		out := make([]Vec3i, len(path))
		copy(out, path)
		return out
	}
	anchor := path[0]
	out := []Vec3i{anchor}
	for i := 2; i < len(path); i++ {
		line := Interpolate(anchor, path[i])
		blocked := false
		for _, c := range line[1:] {
			if !g.IsWalkableAt(c.X, c.Y, c.Z) {
				blocked = true
				break
			}
		}
		if blocked {
			anchor = path[i-1]
			out = append(out, anchor)
		}
	}
	return append(out, path[len(path)-1])
}

// CompressPath removes interior waypoints collinear with their neighbors,
// comparing normalized segment directions. Paths shorter than three points
// are returned unchanged.
func CompressPath(path []Vec3i) []Vec3i {
	if len(path) < 3 {
		return path
	}

	norm := func(from, to Vec3i) (float64, float64, float64) {
		fx := float64(to.X - from.X)
		fy := float64(to.Y - from.Y)
		fz := float64(to.Z - from.Z)
		m := math.Sqrt(fx*fx + fy*fy + fz*fz)
		return fx / m, fy / m, fz / m
	}

	out := []Vec3i{path[0]}
	prev := path[1]
	dx, dy, dz := norm(path[0], path[1])
	for i := 2; i < len(path); i++ {
		last := prev
		ldx, ldy, ldz := dx, dy, dz
		prev = path[i]
		dx, dy, dz = norm(last, prev)
		if dx != ldx || dy != ldy || dz != ldz {
			out = append(out, last)
		}
	}
	return append(out, prev)
}
