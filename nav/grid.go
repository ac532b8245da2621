package nav

import "fmt"

// Source is the voxel occupancy lookup a Grid reads from. A value of 0 is
// empty, anything else is solid. Implementations must be read-only for the
// lifetime of any search over a Grid that wraps them.
type Source interface {
	VoxelAt(x, y, z int) uint16
}

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc func(x, y, z int) uint16

func (f SourceFunc) VoxelAt(x, y, z int) uint16 { return f(x, y, z) }

// DenseSource is an in-memory voxel volume, zeroed on creation. Reads
// outside its extent report solid.
type DenseSource struct {
	w, h, d int
	cells   []uint16
}

// NewDenseSource allocates a w*h*d volume of empty voxels. Negative
// extents are treated as zero.
func NewDenseSource(w, h, d int) *DenseSource {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	if d < 0 {
		d = 0
	}
	return &DenseSource{w: w, h: h, d: d, cells: make([]uint16, w*h*d)}
}

func (s *DenseSource) VoxelAt(x, y, z int) uint16 {
	if x < 0 || y < 0 || z < 0 || x >= s.w || y >= s.h || z >= s.d {
		return 1
	}
	return s.cells[(z*s.h+y)*s.w+x]
}

// Set writes one voxel. Out-of-range writes are dropped.
func (s *DenseSource) Set(x, y, z int, v uint16) {
	if x < 0 || y < 0 || z < 0 || x >= s.w || y >= s.h || z >= s.d {
		return
	}
	s.cells[(z*s.h+y)*s.w+x] = v
}

// Grid is a bounded, immutable-during-search view over a voxel source.
// Walkability follows the support rule: a cell is standable when it is
// empty and either sits at the ground layer or rests on a solid voxel.
type Grid struct {
	w, h, d int
	src     Source
}

// NewGrid wraps src in a w*h*d view. All extents must be positive.
func NewGrid(w, h, d int, src Source) (*Grid, error) {
	if w <= 0 || h <= 0 || d <= 0 {
		return nil, fmt.Errorf("grid extents %dx%dx%d: %w", w, h, d, ErrBadExtent)
	}
	if src == nil {
		return nil, fmt.Errorf("nil voxel source: %w", ErrBadExtent)
	}
	return &Grid{w: w, h: h, d: d, src: src}, nil
}

// NewDenseGrid builds a grid over a fresh in-memory volume and returns the
// settable source alongside it.
func NewDenseGrid(w, h, d int) (*Grid, *DenseSource, error) {
	src := NewDenseSource(w, h, d)
	g, err := NewGrid(w, h, d, src)
	if err != nil {
		return nil, nil, err
	}
	return g, src, nil
}

func (g *Grid) Width() int  { return g.w }
func (g *Grid) Height() int { return g.h }
func (g *Grid) Depth() int  { return g.d }

func (g *Grid) InBounds(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < g.w && y < g.h && z < g.d
}

// IsWalkableAt reports whether an agent can stand at (x, y, z). Fails
// closed on any coordinate outside the view.
func (g *Grid) IsWalkableAt(x, y, z int) bool {
	if !g.InBounds(x, y, z) {
		return false
	}
	if g.src.VoxelAt(x, y, z) != 0 {
		return false
	}
	return z == 0 || g.src.VoxelAt(x, y, z-1) != 0
}

// Neighbors lists the walkable cells one step away from p, scanning layers
// z-1, z and z+1 independently. Each layer contributes its four axis cells
// and, with allowDiagonal, its four diagonals; a diagonal is admitted when
// both flanking axis cells in that layer are walkable under
// dontCrossCorners, or when either is otherwise. Pure vertical moves are
// unreachable under the support rule and are not enumerated.
func (g *Grid) Neighbors(p Vec3i, allowDiagonal, dontCrossCorners bool) []Vec3i {
	out := make([]Vec3i, 0, 24)
	for zo := -1; zo <= 1; zo++ {
		z := p.Z + zo
		var s0, s1, s2, s3 bool
		if g.IsWalkableAt(p.X, p.Y-1, z) {
			out = append(out, Vec3i{p.X, p.Y - 1, z})
			s0 = true
		}
		if g.IsWalkableAt(p.X+1, p.Y, z) {
			out = append(out, Vec3i{p.X + 1, p.Y, z})
			s1 = true
		}
		if g.IsWalkableAt(p.X, p.Y+1, z) {
			out = append(out, Vec3i{p.X, p.Y + 1, z})
			s2 = true
		}
		if g.IsWalkableAt(p.X-1, p.Y, z) {
			out = append(out, Vec3i{p.X - 1, p.Y, z})
			s3 = true
		}
		if !allowDiagonal {
			continue
		}
		var d0, d1, d2, d3 bool
		if dontCrossCorners {
			d0, d1, d2, d3 = s3 && s0, s0 && s1, s1 && s2, s2 && s3
		} else {
			d0, d1, d2, d3 = s3 || s0, s0 || s1, s1 || s2, s2 || s3
		}
		if d0 && g.IsWalkableAt(p.X-1, p.Y-1, z) {
			out = append(out, Vec3i{p.X - 1, p.Y - 1, z})
		}
		if d1 && g.IsWalkableAt(p.X+1, p.Y-1, z) {
			out = append(out, Vec3i{p.X + 1, p.Y - 1, z})
		}
		if d2 && g.IsWalkableAt(p.X+1, p.Y+1, z) {
			out = append(out, Vec3i{p.X + 1, p.Y + 1, z})
		}
		if d3 && g.IsWalkableAt(p.X-1, p.Y+1, z) {
			out = append(out, Vec3i{p.X - 1, p.Y + 1, z})
		}
	}
	return out
}

// Clone returns an independent view over the same source. The source is
// not copied; both views must treat it as read-only.
func (g *Grid) Clone() *Grid {
	c := *g
	return &c
}
