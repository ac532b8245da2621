package nav

import (
	"errors"
	"math"
	"testing"
)

func assertWalkablePath(t *testing.T, g *Grid, path []Vec3i, start, end Vec3i) {
	t.Helper()
	if len(path) == 0 {
		t.Fatalf("empty path")
	}
	if path[0] != start || path[len(path)-1] != end {
		t.Fatalf("endpoints %v..%v, want %v..%v", path[0], path[len(path)-1], start, end)
	}
	for i, c := range path {
		if !g.IsWalkableAt(c.X, c.Y, c.Z) {
			t.Fatalf("path cell %v is not walkable", c)
		}
		if i == 0 {
			continue
		}
		dx := absInt(c.X - path[i-1].X)
		dy := absInt(c.Y - path[i-1].Y)
		dz := absInt(c.Z - path[i-1].Z)
		if dx > 1 || dy > 1 || dz > 1 || dx+dy+dz == 0 {
			t.Fatalf("bad step %v -> %v", path[i-1], c)
		}
	}
}

func TestJPSStraightCorridor(t *testing.T) {
	g, _, err := NewDenseGrid(6, 1, 1)
	if err != nil {
		t.Fatalf("NewDenseGrid: %v", err)
	}
	f := NewJPSFinder()
	path, err := f.FindPath(g, Vec3i{0, 0, 0}, Vec3i{5, 0, 0})
	if err != nil {
		t.Fatalf("FindPath: %v", err)
	}
	want := []Vec3i{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0}, {4, 0, 0}, {5, 0, 0}}
	if !pathsEqual(path, want) {
		t.Fatalf("path = %v, want %v", path, want)
	}
}

func TestJPSClimbsStaircase(t *testing.T) {
	g, src, err := NewDenseGrid(3, 1, 2)
	if err != nil {
		t.Fatalf("NewDenseGrid: %v", err)
	}
	src.Set(1, 0, 0, 1)
	src.Set(2, 0, 0, 1)

	f := NewJPSFinder()
	path, err := f.FindPath(g, Vec3i{0, 0, 0}, Vec3i{2, 0, 1})
	if err != nil {
		t.Fatalf("FindPath: %v", err)
	}
	want := []Vec3i{{0, 0, 0}, {1, 0, 1}, {2, 0, 1}}
	if !pathsEqual(path, want) {
		t.Fatalf("path = %v, want %v", path, want)
	}

	// and back down
	path, err = f.FindPath(g, Vec3i{2, 0, 1}, Vec3i{0, 0, 0})
	if err != nil {
		t.Fatalf("FindPath back: %v", err)
	}
	want = []Vec3i{{2, 0, 1}, {1, 0, 1}, {0, 0, 0}}
	if !pathsEqual(path, want) {
		t.Fatalf("return path = %v, want %v", path, want)
	}
}

func TestJPSClimbsOverWall(t *testing.T) {
	g, src, err := NewDenseGrid(7, 1, 2)
	if err != nil {
		t.Fatalf("NewDenseGrid: %v", err)
	}
	src.Set(3, 0, 0, 1)

	f := NewJPSFinder()
	start, end := Vec3i{0, 0, 0}, Vec3i{6, 0, 0}
	path, err := f.FindPath(g, start, end)
	if err != nil {
		t.Fatalf("FindPath: %v", err)
	}
	want := []Vec3i{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 1}, {4, 0, 0}, {5, 0, 0}, {6, 0, 0}}
	if !pathsEqual(path, want) {
		t.Fatalf("path = %v, want %v", path, want)
	}
	got := PathLength(path)
	if wantLen := 4 + 2*math.Sqrt2; math.Abs(got-wantLen) > 1e-9 {
		t.Fatalf("length = %v, want %v", got, wantLen)
	}
}

func TestJPSWallWithNoLayerAbove(t *testing.T) {
	g, src, err := NewDenseGrid(7, 1, 1)
	if err != nil {
		t.Fatalf("NewDenseGrid: %v", err)
	}
	src.Set(3, 0, 0, 1)

	f := NewJPSFinder()
	path, err := f.FindPath(g, Vec3i{0, 0, 0}, Vec3i{6, 0, 0})
	if err != nil {
		t.Fatalf("no-route search errored: %v", err)
	}
	if len(path) != 0 {
		t.Fatalf("path through a sealed wall: %v", path)
	}
}

func TestJPSClimbsPillar(t *testing.T) {
	g, src, err := NewDenseGrid(9, 9, 2)
	if err != nil {
		t.Fatalf("NewDenseGrid: %v", err)
	}
	src.Set(5, 5, 0, 1)

	start, end := Vec3i{0, 5, 0}, Vec3i{5, 5, 1}
	f := NewJPSFinder(WithHeuristic(Euclidean))
	path, err := f.FindPath(g, start, end)
	if err != nil {
		t.Fatalf("FindPath: %v", err)
	}
	assertWalkablePath(t, g, path, start, end)
	got := PathLength(path)
	if want := 4 + math.Sqrt2; math.Abs(got-want) > 1e-9 {
		t.Fatalf("length = %v, want %v", got, want)
	}
}

func TestJPSValidatesEndpoints(t *testing.T) {
	g, src, err := NewDenseGrid(4, 4, 2)
	if err != nil {
		t.Fatalf("NewDenseGrid: %v", err)
	}
	src.Set(2, 2, 0, 1)
	f := NewJPSFinder()

	if _, err := f.FindPath(g, Vec3i{-1, 0, 0}, Vec3i{3, 3, 0}); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("out-of-bounds start: %v", err)
	}
	if _, err := f.FindPath(g, Vec3i{0, 0, 0}, Vec3i{4, 0, 0}); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("out-of-bounds end: %v", err)
	}
	if _, err := f.FindPath(g, Vec3i{2, 2, 0}, Vec3i{0, 0, 0}); !errors.Is(err, ErrUnwalkable) {
		t.Fatalf("occupied start: %v", err)
	}
	if _, err := f.FindPath(g, Vec3i{0, 0, 0}, Vec3i{0, 0, 1}); !errors.Is(err, ErrUnwalkable) {
		t.Fatalf("unsupported end: %v", err)
	}
	if path, err := f.FindPath(nil, Vec3i{}, Vec3i{}); err == nil || path != nil {
		t.Fatalf("nil grid: path=%v err=%v", path, err)
	}
}

func TestJPSFullyBlockedGrid(t *testing.T) {
	g, src, err := NewDenseGrid(3, 3, 1)
	if err != nil {
		t.Fatalf("NewDenseGrid: %v", err)
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			src.Set(x, y, 0, 1)
		}
	}
	path, err := NewJPSFinder().FindPath(g, Vec3i{0, 0, 0}, Vec3i{2, 2, 0})
	if len(path) != 0 {
		t.Fatalf("path on a solid grid: %v", path)
	}
	if !errors.Is(err, ErrUnwalkable) {
		t.Fatalf("err = %v, want unwalkable", err)
	}
}

func TestJPSStartEqualsEnd(t *testing.T) {
	g, _, err := NewDenseGrid(3, 3, 1)
	if err != nil {
		t.Fatalf("NewDenseGrid: %v", err)
	}
	f := NewJPSFinder()
	path, err := f.FindPath(g, Vec3i{1, 1, 0}, Vec3i{1, 1, 0})
	if err != nil {
		t.Fatalf("FindPath: %v", err)
	}
	if !pathsEqual(path, []Vec3i{{1, 1, 0}}) {
		t.Fatalf("path = %v, want the single start cell", path)
	}
}

func TestJPSIterationLimit(t *testing.T) {
	g, src, err := NewDenseGrid(16, 16, 1)
	if err != nil {
		t.Fatalf("NewDenseGrid: %v", err)
	}
	for y := 0; y < 15; y++ {
		src.Set(8, y, 0, 1)
	}
	start, end := Vec3i{0, 0, 0}, Vec3i{15, 0, 0}

	f := NewJPSFinder(WithIterationLimit(2))
	path, err := f.FindPath(g, start, end)
	if !errors.Is(err, ErrIterationLimit) {
		t.Fatalf("err = %v, want iteration limit", err)
	}
	if len(path) != 0 {
		t.Fatalf("capped search returned a path: %v", path)
	}

	path, err = NewJPSFinder().FindPath(g, start, end)
	if err != nil {
		t.Fatalf("unlimited search: %v", err)
	}
	assertWalkablePath(t, g, path, start, end)
}

func TestJPSTrace(t *testing.T) {
	g, src, err := NewDenseGrid(8, 8, 1)
	if err != nil {
		t.Fatalf("NewDenseGrid: %v", err)
	}
	for y := 0; y < 6; y++ {
		src.Set(4, y, 0, 1)
	}
	start, end := Vec3i{0, 0, 0}, Vec3i{7, 0, 0}
	f := NewJPSFinder()
	path, trace, err := f.FindPathWithTrace(g, start, end)
	if err != nil {
		t.Fatalf("FindPathWithTrace: %v", err)
	}
	assertWalkablePath(t, g, path, start, end)
	if trace == nil || trace.Iterations == 0 {
		t.Fatalf("missing trace")
	}
	if len(trace.Expanded) == 0 || trace.Expanded[0] != start {
		t.Fatalf("expansion record starts at %v", trace.Expanded)
	}
	if last := trace.Expanded[len(trace.Expanded)-1]; last != end {
		t.Fatalf("expansion record ends at %v, want %v", last, end)
	}
	if len(trace.Tested) == 0 {
		t.Fatalf("no jump-tested cells recorded")
	}
	seen := map[Vec3i]bool{}
	for _, c := range trace.Tested {
		if seen[c] {
			t.Fatalf("tested cell %v recorded twice", c)
		}
		seen[c] = true
	}
}

func TestForcedAxisGeometry(t *testing.T) {
	g, src, err := NewDenseGrid(5, 5, 3)
	if err != nil {
		t.Fatalf("NewDenseGrid: %v", err)
	}
	r := &jpsRun{grid: g}

	// open ground: nothing forces a stop
	if r.forcedAxis(2, 2, 0, 1, 0) {
		t.Fatalf("forced on open ground")
	}
	// obstacle beside the ray with a revealed cell behind it
	src.Set(2, 1, 0, 1)
	if !r.forcedAxis(2, 2, 0, 1, 0) {
		t.Fatalf("eastbound ray not forced by a blocked north cell")
	}
	// same scene but the straight continuation is sealed: the revealed
	// diagonal is unreachable, so nothing forces
	src.Set(3, 2, 0, 1)
	if r.forcedAxis(2, 2, 0, 1, 0) {
		t.Fatalf("forced despite a sealed straight continuation")
	}
}

func TestForcedDiagonalGeometry(t *testing.T) {
	g, src, err := NewDenseGrid(5, 5, 1)
	if err != nil {
		t.Fatalf("NewDenseGrid: %v", err)
	}
	r := &jpsRun{grid: g}

	if r.forcedDiagonal(2, 2, 0, 1, 1) {
		t.Fatalf("forced on open ground")
	}
	// trailing-side block reveals a cell only reachable through (2,2)
	src.Set(1, 2, 0, 1)
	if !r.forcedDiagonal(2, 2, 0, 1, 1) {
		t.Fatalf("diagonal ray not forced by a trailing block")
	}
	src.Set(1, 3, 0, 1) // revealed cell itself blocked: no branch left
	if r.forcedDiagonal(2, 2, 0, 1, 1) {
		t.Fatalf("forced with nothing revealed")
	}
}

func TestVerticalForkGeometry(t *testing.T) {
	g, src, err := NewDenseGrid(3, 3, 3)
	if err != nil {
		t.Fatalf("NewDenseGrid: %v", err)
	}
	r := &jpsRun{grid: g}

	if r.verticalFork(1, 1, 0) {
		t.Fatalf("fork on flat ground")
	}
	// a step east becomes standable one layer up
	src.Set(2, 1, 0, 1)
	if !r.verticalFork(1, 1, 0) {
		t.Fatalf("climb edge not detected")
	}
	// a standable diagonal with sealed flanks is not an edge
	src.Set(2, 1, 0, 0)
	src.Set(2, 2, 0, 1)
	if r.verticalFork(1, 1, 0) {
		t.Fatalf("fork fired for an unreachable diagonal cell")
	}
}

func buildSweepWorld(t *testing.T) (*Grid, *DenseSource) {
	t.Helper()
	g, src, err := NewDenseGrid(12, 12, 3)
	if err != nil {
		t.Fatalf("NewDenseGrid: %v", err)
	}
	for x := 2; x <= 8; x++ { // wall, climbable over the top
		src.Set(x, 4, 0, 1)
	}
	for y := 6; y <= 11; y++ { // second wall
		src.Set(9, y, 0, 1)
	}
	for x := 2; x <= 6; x++ { // raised shelf
		for y := 8; y <= 10; y++ {
			src.Set(x, y, 0, 1)
		}
	}
	src.Set(4, 9, 1, 1)  // block on the shelf, its top is standable
	src.Set(10, 1, 0, 1) // two-high pillar, top unreachable
	src.Set(10, 1, 1, 1)
	return g, src
}

// exhaustive reachability and cost sweep: for every walkable cell, the
// jump point search must agree with breadth-first reachability over the
// same neighbor graph and with A* on Euclidean cost.
func TestJPSCompleteAndOptimal(t *testing.T) {
	g, _ := buildSweepWorld(t)
	start := Vec3i{0, 0, 0}

	reached := map[Vec3i]bool{start: true}
	queue := []Vec3i{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range g.Neighbors(cur, true, false) {
			if !reached[n] {
				reached[n] = true
				queue = append(queue, n)
			}
		}
	}
	if len(reached) < 20 {
		t.Fatalf("sweep world too small: %d reachable cells", len(reached))
	}

	jps := NewJPSFinder(WithHeuristic(Euclidean))
	astar := NewAStarFinder(WithHeuristic(Euclidean))
	for z := 0; z < g.Depth(); z++ {
		for y := 0; y < g.Height(); y++ {
			for x := 0; x < g.Width(); x++ {
				goal := Vec3i{x, y, z}
				if !g.IsWalkableAt(x, y, z) {
					continue
				}
				jp, err := jps.FindPath(g, start, goal)
				if err != nil {
					t.Fatalf("jps to %v: %v", goal, err)
				}
				ap, err := astar.FindPath(g, start, goal)
				if err != nil {
					t.Fatalf("astar to %v: %v", goal, err)
				}
				if reached[goal] != (len(jp) > 0) {
					t.Fatalf("jps found=%v for %v, reachable=%v", len(jp) > 0, goal, reached[goal])
				}
				if reached[goal] != (len(ap) > 0) {
					t.Fatalf("astar found=%v for %v, reachable=%v", len(ap) > 0, goal, reached[goal])
				}
				if !reached[goal] {
					continue
				}
				assertWalkablePath(t, g, jp, start, goal)
				jl, al := PathLength(jp), PathLength(ap)
				if math.Abs(jl-al) > 1e-9 {
					t.Fatalf("cost to %v: jps %v, astar %v", goal, jl, al)
				}
			}
		}
	}
}
