package scenario

import (
	"fmt"

	"voxelnav/nav"
)

// Finder is the shared surface of the three nav finders.
type Finder interface {
	FindPath(g *nav.Grid, start, end nav.Vec3i) ([]nav.Vec3i, error)
	FindPathWithTrace(g *nav.Grid, start, end nav.Vec3i) ([]nav.Vec3i, *nav.Trace, error)
}

func HeuristicByName(name string) (nav.Heuristic, error) {
	switch name {
	case "", "manhattan":
		return nav.Manhattan, nil
	case "euclidean":
		return nav.Euclidean, nil
	case "chebyshev":
		return nav.Chebyshev, nil
	}
	return nil, fmt.Errorf("unknown heuristic %q", name)
}

func NewFinder(kind string, opts ...nav.Option) (Finder, error) {
	switch kind {
	case "", "jps":
		return nav.NewJPSFinder(opts...), nil
	case "astar":
		return nav.NewAStarFinder(opts...), nil
	case "biastar":
		return nav.NewBiAStarFinder(opts...), nil
	}
	return nil, fmt.Errorf("unknown finder %q", kind)
}

// Options maps the query's knobs onto finder options.
func (q Query) Options() ([]nav.Option, error) {
	h, err := HeuristicByName(q.Heuristic)
	if err != nil {
		return nil, err
	}
	allow := true
	if q.AllowDiagonal != nil {
		allow = *q.AllowDiagonal
	}
	opts := []nav.Option{
		nav.WithHeuristic(h),
		nav.WithAllowDiagonal(allow),
		nav.WithDontCrossCorners(q.DontCrossCorners),
	}
	if q.IterationLimit > 0 {
		opts = append(opts, nav.WithIterationLimit(q.IterationLimit))
	}
	return opts, nil
}

func (q Query) StartVec() nav.Vec3i {
	return nav.Vec3i{X: q.Start[0], Y: q.Start[1], Z: q.Start[2]}
}

func (q Query) EndVec() nav.Vec3i {
	return nav.Vec3i{X: q.End[0], Y: q.End[1], Z: q.End[2]}
}
