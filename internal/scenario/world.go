package scenario

import (
	"fmt"
	"sort"

	"github.com/dhconnelly/rtreego"

	"voxelnav/voxel"
)

type boxEntry struct {
	idx   int
	box   Box
	block uint16
	bbox  rtreego.Rect
}

func (b *boxEntry) Bounds() rtreego.Rect {
	return b.bbox
}

// BuildWorld rasterizes the scenario into a materialized voxel world.
// Boxes go through a 3D R-tree so each chunk only visits the boxes it
// intersects. Overlapping boxes apply in declaration order, so a later
// carve box can tunnel through an earlier solid one.
func BuildWorld(sc *Scenario) (*voxel.World, error) {
	w, err := voxel.New(voxel.Gen{
		Seed:   sc.World.Seed,
		Width:  sc.World.Width,
		Height: sc.World.Height,
		Depth:  sc.World.Depth,
		SpawnX: sc.World.Spawn[0],
		SpawnY: sc.World.Spawn[1],
		Flat:   !sc.World.Generate,
	})
	if err != nil {
		return nil, err
	}
	if len(sc.World.Boxes) == 0 {
		_ = w.Digest() // materializes and primes chunk digests, so handlers can share the world without writes
		return w, nil
	}

	tree := rtreego.NewTree(3, 25, 50)
	for i, b := range sc.World.Boxes {
		block := b.Block
		if b.Carve {
			block = voxel.Air
		} else if block == voxel.Air {
			block = voxel.Rock
		}
		bbox, err := rtreego.NewRect(
			rtreego.Point{float64(b.Min[0]), float64(b.Min[1]), float64(b.Min[2])},
			[]float64{
				float64(b.Max[0] - b.Min[0] + 1),
				float64(b.Max[1] - b.Min[1] + 1),
				float64(b.Max[2] - b.Min[2] + 1),
			},
		)
		if err != nil {
			return nil, fmt.Errorf("box %v..%v: %w", b.Min, b.Max, err)
		}
		tree.Insert(&boxEntry{idx: i, box: b, block: block, bbox: bbox})
	}

	nx := (sc.World.Width + 15) / 16
	ny := (sc.World.Height + 15) / 16
	for cy := 0; cy < ny; cy++ {
		for cx := 0; cx < nx; cx++ {
			rect, err := rtreego.NewRect(
				rtreego.Point{float64(cx * 16), float64(cy * 16), 0},
				[]float64{16, 16, float64(sc.World.Depth)},
			)
			if err != nil {
				return nil, err
			}
			hits := tree.SearchIntersect(rect)
			entries := make([]*boxEntry, 0, len(hits))
			for _, item := range hits {
				entries = append(entries, item.(*boxEntry))
			}
			// SearchIntersect order is unspecified; restore declaration order.
			sort.Slice(entries, func(i, j int) bool { return entries[i].idx < entries[j].idx })
			for _, e := range entries {
				x0 := maxInt(e.box.Min[0], cx*16)
				x1 := minInt(e.box.Max[0], cx*16+15)
				y0 := maxInt(e.box.Min[1], cy*16)
				y1 := minInt(e.box.Max[1], cy*16+15)
				z0 := maxInt(e.box.Min[2], 0)
				z1 := minInt(e.box.Max[2], sc.World.Depth-1)
				for z := z0; z <= z1; z++ {
					for y := y0; y <= y1; y++ {
						for x := x0; x <= x1; x++ {
							w.SetVoxel(x, y, z, e.block)
						}
					}
				}
			}
		}
	}
	_ = w.Digest()
	return w, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
