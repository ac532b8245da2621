package nav

import (
	"container/heap"
	"fmt"
)

// AStarFinder is a plain A* over the same stepwise neighbor graph the
// jump point finder jumps across. Slower, but it honors WithAllowDiagonal
// and WithDontCrossCorners, which jumping cannot.
type AStarFinder struct {
	cfg config
}

func NewAStarFinder(opts ...Option) *AStarFinder {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &AStarFinder{cfg: cfg}
}

// FindPath searches g from start to end. The result is cell-by-cell
// dense; an empty path with nil error means no route exists.
func (f *AStarFinder) FindPath(g *Grid, start, end Vec3i) ([]Vec3i, error) {
	path, _, err := f.findPath(g, start, end, false)
	return path, err
}

// FindPathWithTrace is FindPath plus the expansion record.
func (f *AStarFinder) FindPathWithTrace(g *Grid, start, end Vec3i) ([]Vec3i, *Trace, error) {
	return f.findPath(g, start, end, true)
}

func (f *AStarFinder) findPath(g *Grid, start, end Vec3i, traced bool) ([]Vec3i, *Trace, error) {
	if g == nil {
		return nil, nil, fmt.Errorf("nil grid: %w", ErrBadExtent)
	}
	if err := validateEndpoints(g, start, end); err != nil {
		return nil, nil, err
	}
	var trace *Trace
	if traced {
		trace = &Trace{}
	}
	if start == end {
		return []Vec3i{start}, trace, nil
	}

	nodes := make(nodeTable)
	var open openHeap
	sn := nodes.at(start)
	sn.opened = true
	heap.Push(&open, sn)

	iters := 0
	for open.Len() > 0 {
		if f.cfg.iterationLimit > 0 && iters >= f.cfg.iterationLimit {
			return nil, trace, fmt.Errorf("after %d iterations: %w", iters, ErrIterationLimit)
		}
		iters++
		n := heap.Pop(&open).(*Node)
		n.closed = true
		if trace != nil {
			trace.Expanded = append(trace.Expanded, n.Pos)
			trace.Iterations = iters
		}
		if n.Pos == end {
			return Backtrace(n), trace, nil
		}
		for _, c := range g.Neighbors(n.Pos, f.cfg.allowDiagonal, f.cfg.dontCrossCorners) {
			nb := nodes.at(c)
			if nb.closed {
				continue
			}
			ng := n.g + dist(n.Pos, c)
			if !nb.opened || ng < nb.g {
				nb.g = ng
				if nb.h == 0 {
					nb.h = f.cfg.heuristic(absInt(c.X-end.X), absInt(c.Y-end.Y), absInt(c.Z-end.Z))
				}
				nb.f = nb.g + nb.h
				nb.Parent = n
				if !nb.opened {
					nb.opened = true
					heap.Push(&open, nb)
				} else {
					heap.Fix(&open, nb.heapIdx)
				}
			}
		}
	}
	return nil, trace, nil
}

// BiAStarFinder runs A* from both endpoints, alternating one expansion
// per side, and joins the chains where the frontiers meet. Each side owns
// its node table, so the two searches never share state.
type BiAStarFinder struct {
	cfg config
}

func NewBiAStarFinder(opts ...Option) *BiAStarFinder {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &BiAStarFinder{cfg: cfg}
}

// FindPath searches g from start to end. The result is cell-by-cell
// dense; an empty path with nil error means no route exists.
func (f *BiAStarFinder) FindPath(g *Grid, start, end Vec3i) ([]Vec3i, error) {
	path, _, err := f.findPath(g, start, end, false)
	return path, err
}

// FindPathWithTrace is FindPath plus the interleaved expansion record of
// both frontiers.
func (f *BiAStarFinder) FindPathWithTrace(g *Grid, start, end Vec3i) ([]Vec3i, *Trace, error) {
	return f.findPath(g, start, end, true)
}

func (f *BiAStarFinder) findPath(g *Grid, start, end Vec3i, traced bool) ([]Vec3i, *Trace, error) {
	if g == nil {
		return nil, nil, fmt.Errorf("nil grid: %w", ErrBadExtent)
	}
	if err := validateEndpoints(g, start, end); err != nil {
		return nil, nil, err
	}
	r := &biRun{
		grid:  g,
		cfg:   f.cfg,
		goal:  [2]Vec3i{end, start},
		nodes: [2]nodeTable{make(nodeTable), make(nodeTable)},
	}
	if traced {
		r.trace = &Trace{}
	}
	if start == end {
		return []Vec3i{start}, r.trace, nil
	}
	path, err := r.search(start, end)
	return path, r.trace, err
}

// biRun holds both frontiers. Side 0 is rooted at the start, side 1 at
// the end; goal[s] is the coordinate side s steers toward.
type biRun struct {
	grid  *Grid
	cfg   config
	goal  [2]Vec3i
	nodes [2]nodeTable
	open  [2]openHeap
	iters int
	trace *Trace
}

func (r *biRun) search(start, end Vec3i) ([]Vec3i, error) {
	sn := r.nodes[0].at(start)
	sn.opened = true
	heap.Push(&r.open[0], sn)
	en := r.nodes[1].at(end)
	en.opened = true
	heap.Push(&r.open[1], en)

	for r.open[0].Len() > 0 && r.open[1].Len() > 0 {
		for s := 0; s < 2; s++ {
			if r.cfg.iterationLimit > 0 && r.iters >= r.cfg.iterationLimit {
				return nil, fmt.Errorf("after %d iterations: %w", r.iters, ErrIterationLimit)
			}
			r.iters++
			n := heap.Pop(&r.open[s]).(*Node)
			n.closed = true
			if r.trace != nil {
				r.trace.Expanded = append(r.trace.Expanded, n.Pos)
				r.trace.Iterations = r.iters
			}
			if path, ok := r.expand(s, n); ok {
				return path, nil
			}
		}
	}
	return nil, nil
}

// expand relaxes n's neighbors for side s and reports a joined path when
// the other frontier already holds one of them.
func (r *biRun) expand(s int, n *Node) ([]Vec3i, bool) {
	for _, c := range r.grid.Neighbors(n.Pos, r.cfg.allowDiagonal, r.cfg.dontCrossCorners) {
		if other, ok := r.nodes[1-s].lookup(c); ok {
			if other.closed {
				continue
			}
			if s == 0 {
				return BiBacktrace(n, other), true
			}
			return BiBacktrace(other, n), true
		}
		nb := r.nodes[s].at(c)
		if nb.closed {
			continue
		}
		ng := n.g + dist(n.Pos, c)
		if !nb.opened || ng < nb.g {
			nb.g = ng
			if nb.h == 0 {
				goal := r.goal[s]
				nb.h = r.cfg.heuristic(absInt(c.X-goal.X), absInt(c.Y-goal.Y), absInt(c.Z-goal.Z))
			}
			nb.f = nb.g + nb.h
			nb.Parent = n
			if !nb.opened {
				nb.opened = true
				heap.Push(&r.open[s], nb)
			} else {
				heap.Fix(&r.open[s], nb.heapIdx)
			}
		}
	}
	return nil, false
}
