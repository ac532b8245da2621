package nav

import "fmt"

type config struct {
	heuristic        Heuristic
	iterationLimit   int
	allowDiagonal    bool
	dontCrossCorners bool
}

func defaultConfig() config {
	return config{heuristic: Manhattan, allowDiagonal: true}
}

// Option configures a finder at construction.
type Option func(*config)

// WithHeuristic replaces the default Manhattan estimate. Pass Euclidean
// for strict shortest paths.
func WithHeuristic(h Heuristic) Option {
	return func(c *config) {
		if h != nil {
			c.heuristic = h
		}
	}
}

// WithIterationLimit caps open-list pops per search. Exceeding the cap
// fails the search with ErrIterationLimit. Zero means unlimited.
func WithIterationLimit(n int) Option {
	return func(c *config) { c.iterationLimit = n }
}

// WithAllowDiagonal toggles diagonal moves for the A* finders. The jump
// point finder always moves diagonally.
func WithAllowDiagonal(v bool) Option {
	return func(c *config) { c.allowDiagonal = v }
}

// WithDontCrossCorners makes A* diagonals require both flanking axis
// cells walkable instead of either. Ignored by the jump point finder.
func WithDontCrossCorners(v bool) Option {
	return func(c *config) { c.dontCrossCorners = v }
}

// Trace records search activity for inspection or replay.
type Trace struct {
	Expanded   []Vec3i // nodes popped from the open list, in pop order
	Tested     []Vec3i // cells crossed while jumping, first touch only
	Iterations int
}

func validateEndpoints(g *Grid, start, end Vec3i) error {
	ends := [...]struct {
		name string
		p    Vec3i
	}{{"start", start}, {"end", end}}
	for _, e := range ends {
		if !g.InBounds(e.p.X, e.p.Y, e.p.Z) {
			return fmt.Errorf("%s (%d,%d,%d): %w", e.name, e.p.X, e.p.Y, e.p.Z, ErrOutOfBounds)
		}
		if !g.IsWalkableAt(e.p.X, e.p.Y, e.p.Z) {
			return fmt.Errorf("%s (%d,%d,%d): %w", e.name, e.p.X, e.p.Y, e.p.Z, ErrUnwalkable)
		}
	}
	return nil
}
