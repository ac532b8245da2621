package voxel

// generateChunk rolls terrain per column: scattered rock pillars one or
// two layers tall, rubble, and raised slabs over 8x8 tiles in deeper
// worlds. Columns within two cells of the spawn stay clear.
func (w *World) generateChunk(ch *Chunk) {
	if w.gen.Flat {
		return
	}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			wx := ch.CX*16 + x
			wy := ch.CY*16 + y
			if wx >= w.gen.Width || wy >= w.gen.Height {
				continue // edge chunk cells outside the extent stay air
			}
			if chebyshev(wx-w.gen.SpawnX, wy-w.gen.SpawnY) <= 2 {
				continue
			}

			roll := hash2(w.gen.Seed, wx, wy) % 1000
			switch {
			case roll < 60:
				ch.Set(x, y, 0, Rock)
			case roll < 90:
				ch.Set(x, y, 0, Rock)
				if w.gen.Depth >= 2 {
					ch.Set(x, y, 1, Rock)
				}
			case roll < 140:
				ch.Set(x, y, 0, Rubble)
			}

			// one slab layer hanging at z=1, its top standable at z=2
			if w.gen.Depth >= 3 {
				slab := hash3(w.gen.Seed, floorDiv(wx, 8), floorDiv(wy, 8), 1) % 100
				if slab < 12 && ch.Get(x, y, 1) == Air {
					ch.Set(x, y, 1, Rock)
				}
			}
		}
	}
}

func chebyshev(dx, dy int) int {
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}
