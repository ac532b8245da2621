package nav

import (
	"container/heap"
	"fmt"
)

// JPSFinder is a three-layer jump point search. Within a layer it prunes
// and jumps exactly like 2D JPS with corner-cutting allowed; across
// layers every climb or drop is a decision point: vertical steps always
// yield jump points, flat rays stop wherever a vertical edge leaves the
// ray, and a node reached vertically expands its full neighbor fan.
//
// The zero value is not usable; construct with NewJPSFinder. A finder
// holds configuration only and may run concurrent searches.
type JPSFinder struct {
	cfg config
}

// NewJPSFinder builds a finder. WithHeuristic and WithIterationLimit
// apply; diagonal movement options do not, jumping requires diagonals.
func NewJPSFinder(opts ...Option) *JPSFinder {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &JPSFinder{cfg: cfg}
}

// FindPath searches g from start to end and returns the expanded
// cell-by-cell path. An empty path with a nil error means no route
// exists; errors are reserved for invalid endpoints and the iteration
// cap.
func (f *JPSFinder) FindPath(g *Grid, start, end Vec3i) ([]Vec3i, error) {
	path, _, err := f.findPath(g, start, end, false)
	return path, err
}

// FindPathWithTrace is FindPath plus a record of expanded nodes and
// jump-tested cells.
func (f *JPSFinder) FindPathWithTrace(g *Grid, start, end Vec3i) ([]Vec3i, *Trace, error) {
	return f.findPath(g, start, end, true)
}

func (f *JPSFinder) findPath(g *Grid, start, end Vec3i, traced bool) ([]Vec3i, *Trace, error) {
	if g == nil {
		return nil, nil, fmt.Errorf("nil grid: %w", ErrBadExtent)
	}
	if err := validateEndpoints(g, start, end); err != nil {
		return nil, nil, err
	}
	r := &jpsRun{
		grid:  g,
		end:   end,
		heur:  f.cfg.heuristic,
		limit: f.cfg.iterationLimit,
		nodes: make(nodeTable),
	}
	if traced {
		r.trace = &Trace{}
	}
	if start == end {
		return []Vec3i{start}, r.trace, nil
	}
	path, err := r.search(start)
	return path, r.trace, err
}

// jpsRun owns all mutable state of one search: grid view, node table,
// open list and trace. Runs never share state.
type jpsRun struct {
	grid  *Grid
	end   Vec3i
	heur  Heuristic
	limit int
	iters int
	nodes nodeTable
	open  openHeap
	trace *Trace
}

func (r *jpsRun) search(start Vec3i) ([]Vec3i, error) {
	sn := r.nodes.at(start)
	sn.opened = true
	heap.Push(&r.open, sn)

	for r.open.Len() > 0 {
		if r.limit > 0 && r.iters >= r.limit {
			return nil, fmt.Errorf("after %d iterations: %w", r.iters, ErrIterationLimit)
		}
		r.iters++
		n := heap.Pop(&r.open).(*Node)
		n.closed = true
		if r.trace != nil {
			r.trace.Expanded = append(r.trace.Expanded, n.Pos)
			r.trace.Iterations = r.iters
		}
		if n.Pos == r.end {
			return ExpandPath(Backtrace(n)), nil
		}
		r.identifySuccessors(n)
	}
	return nil, nil
}

func (r *jpsRun) identifySuccessors(n *Node) {
	for _, c := range r.pruned(n) {
		jp, ok := r.jump(c.X, c.Y, c.Z, n.Pos.X, n.Pos.Y, n.Pos.Z)
		if !ok {
			continue
		}
		jn := r.nodes.at(jp)
		if jn.closed {
			continue
		}
		ng := n.g + dist(n.Pos, jp)
		if !jn.opened || ng < jn.g {
			jn.g = ng
			if jn.h == 0 {
				jn.h = r.heur(absInt(jp.X-r.end.X), absInt(jp.Y-r.end.Y), absInt(jp.Z-r.end.Z))
			}
			jn.f = jn.g + jn.h
			jn.Parent = n
			if !jn.opened {
				jn.opened = true
				heap.Push(&r.open, jn)
			} else {
				heap.Fix(&r.open, jn.heapIdx)
			}
		}
	}
}

// pruned proposes the directions worth jumping from n. The start node and
// any node landed on vertically fan out fully; otherwise the adjacent
// layers contribute their full fans and the node's own layer is pruned by
// the classic 2D rules for the incoming direction.
func (r *jpsRun) pruned(n *Node) []Vec3i {
	p := n.Parent
	if p == nil {
		return r.grid.Neighbors(n.Pos, true, false)
	}
	x, y, z := n.Pos.X, n.Pos.Y, n.Pos.Z
	dx := signInt(x - p.Pos.X)
	dy := signInt(y - p.Pos.Y)
	dz := signInt(z - p.Pos.Z)
	if dz != 0 {
		return r.grid.Neighbors(n.Pos, true, false)
	}

	walk := r.grid.IsWalkableAt
	out := make([]Vec3i, 0, 24)
	out = r.layerFan(out, x, y, z-1)
	out = r.layerFan(out, x, y, z+1)

	switch {
	case dx != 0 && dy != 0:
		if walk(x, y+dy, z) {
			out = append(out, Vec3i{x, y + dy, z})
		}
		if walk(x+dx, y, z) {
			out = append(out, Vec3i{x + dx, y, z})
		}
		if walk(x, y+dy, z) || walk(x+dx, y, z) {
			out = append(out, Vec3i{x + dx, y + dy, z})
		}
		if !walk(x-dx, y, z) && walk(x, y+dy, z) {
			out = append(out, Vec3i{x - dx, y + dy, z})
		}
		if !walk(x, y-dy, z) && walk(x+dx, y, z) {
			out = append(out, Vec3i{x + dx, y - dy, z})
		}
	case dx != 0:
		// forced diagonals must stay reachable through the straight
		// flank, or the fan would propose a squeeze between two solids
		if walk(x+dx, y, z) {
			out = append(out, Vec3i{x + dx, y, z})
			if !walk(x, y+1, z) {
				out = append(out, Vec3i{x + dx, y + 1, z})
			}
			if !walk(x, y-1, z) {
				out = append(out, Vec3i{x + dx, y - 1, z})
			}
		}
	default:
		if walk(x, y+dy, z) {
			out = append(out, Vec3i{x, y + dy, z})
			if !walk(x+1, y, z) {
				out = append(out, Vec3i{x + 1, y + dy, z})
			}
			if !walk(x-1, y, z) {
				out = append(out, Vec3i{x - 1, y + dy, z})
			}
		}
	}
	return out
}

// layerFan appends the full 8-direction fan of layer zl around (x, y),
// diagonals admitted when either flank in that layer is walkable.
func (r *jpsRun) layerFan(out []Vec3i, x, y, zl int) []Vec3i {
	walk := r.grid.IsWalkableAt
	s0 := walk(x, y-1, zl)
	s1 := walk(x+1, y, zl)
	s2 := walk(x, y+1, zl)
	s3 := walk(x-1, y, zl)
	if s0 {
		out = append(out, Vec3i{x, y - 1, zl})
	}
	if s1 {
		out = append(out, Vec3i{x + 1, y, zl})
	}
	if s2 {
		out = append(out, Vec3i{x, y + 1, zl})
	}
	if s3 {
		out = append(out, Vec3i{x - 1, y, zl})
	}
	if (s3 || s0) && walk(x-1, y-1, zl) {
		out = append(out, Vec3i{x - 1, y - 1, zl})
	}
	if (s0 || s1) && walk(x+1, y-1, zl) {
		out = append(out, Vec3i{x + 1, y - 1, zl})
	}
	if (s1 || s2) && walk(x+1, y+1, zl) {
		out = append(out, Vec3i{x + 1, y + 1, zl})
	}
	if (s2 || s3) && walk(x-1, y+1, zl) {
		out = append(out, Vec3i{x - 1, y + 1, zl})
	}
	return out
}

// jump advances from (x, y, z) along the ray arriving from (px, py, pz)
// until it hits a jump point, the goal, or a dead end. The per-step ray
// walk is a loop; only the diagonal decomposition into component-axis
// probes recurses, one level deep.
func (r *jpsRun) jump(x, y, z, px, py, pz int) (Vec3i, bool) {
	dx, dy, dz := x-px, y-py, z-pz
	walk := r.grid.IsWalkableAt
	for {
		if !walk(x, y, z) {
			return Vec3i{}, false
		}
		if r.trace != nil {
			r.markTested(x, y, z)
		}
		here := Vec3i{x, y, z}
		if here == r.end {
			return here, true
		}
		// a vertical step lands in a new layer; nothing past it may be
		// skipped
		if dz != 0 {
			return here, true
		}
		if r.verticalFork(x, y, z) {
			return here, true
		}
		if dx != 0 && dy != 0 {
			if r.forcedDiagonal(x, y, z, dx, dy) {
				return here, true
			}
			if _, ok := r.jump(x+dx, y, z, x, y, z); ok {
				return here, true
			}
			if _, ok := r.jump(x, y+dy, z, x, y, z); ok {
				return here, true
			}
			if !walk(x+dx, y, z) && !walk(x, y+dy, z) {
				return Vec3i{}, false
			}
		} else if r.forcedAxis(x, y, z, dx, dy) {
			return here, true
		}
		x, y, z = x+dx, y+dy, z+dz
	}
}

// verticalFork reports whether a climb or drop edge leaves (x, y, z).
// Diagonal edges into an adjacent layer require a walkable flank there,
// so the eight axis cells cover every vertical edge.
func (r *jpsRun) verticalFork(x, y, z int) bool {
	walk := r.grid.IsWalkableAt
	for zl := z - 1; zl <= z+1; zl += 2 {
		if walk(x+1, y, zl) || walk(x-1, y, zl) || walk(x, y+1, zl) || walk(x, y-1, zl) {
			return true
		}
	}
	return false
}

func (r *jpsRun) forcedDiagonal(x, y, z, dx, dy int) bool {
	walk := r.grid.IsWalkableAt
	return (walk(x-dx, y+dy, z) && !walk(x-dx, y, z)) ||
		(walk(x+dx, y-dy, z) && !walk(x, y-dy, z))
}

func (r *jpsRun) forcedAxis(x, y, z, dx, dy int) bool {
	walk := r.grid.IsWalkableAt
	if dx != 0 {
		return walk(x+dx, y, z) &&
			((walk(x+dx, y+1, z) && !walk(x, y+1, z)) ||
				(walk(x+dx, y-1, z) && !walk(x, y-1, z)))
	}
	return walk(x, y+dy, z) &&
		((walk(x+1, y+dy, z) && !walk(x+1, y, z)) ||
			(walk(x-1, y+dy, z) && !walk(x-1, y, z)))
}

func (r *jpsRun) markTested(x, y, z int) {
	n := r.nodes.at(Vec3i{x, y, z})
	if n.tested {
		return
	}
	n.tested = true
	r.trace.Tested = append(r.trace.Tested, n.Pos)
}
