package nav

import "math"

// Heuristic estimates remaining cost from non-negative per-axis deltas.
// Strict shortest paths require an admissible estimate (never above the
// true remaining cost); the finders do not enforce that.
type Heuristic func(dx, dy, dz int) float64

// Manhattan sums the per-axis deltas. The historic default; it
// overestimates across diagonal moves, trading strict optimality for a
// faster, more directed search.
func Manhattan(dx, dy, dz int) float64 {
	return float64(dx + dy + dz)
}

// Euclidean is the straight-line distance. Admissible for this grid's
// Euclidean move costs.
func Euclidean(dx, dy, dz int) float64 {
	fx, fy, fz := float64(dx), float64(dy), float64(dz)
	return math.Sqrt(fx*fx + fy*fy + fz*fz)
}

// Chebyshev is the dominant-axis delta.
func Chebyshev(dx, dy, dz int) float64 {
	m := dx
	if dy > m {
		m = dy
	}
	if dz > m {
		m = dz
	}
	return float64(m)
}
