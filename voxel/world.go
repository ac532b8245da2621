// Package voxel stores bounded three-dimensional voxel worlds in 16x16
// column chunks, generated on demand from seeded hash noise. A World
// satisfies the navigation grid's Source contract: VoxelAt reports zero
// for passable cells.
package voxel

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sort"
)

// Gen describes a world: extents in voxels, the noise seed, and the
// spawn column kept clear by generation.
type Gen struct {
	Seed   int64
	Width  int
	Height int
	Depth  int

	SpawnX int
	SpawnY int

	// Flat suppresses noise terrain; every voxel starts as air.
	Flat bool
}

// World is a chunked voxel lattice. Chunk generation mutates the chunk
// map, so a World is not safe for concurrent use until Materialize has
// run; after that, reads may be shared.
type World struct {
	gen    Gen
	chunks map[ChunkKey]*Chunk
}

func New(gen Gen) (*World, error) {
	if gen.Width <= 0 || gen.Height <= 0 || gen.Depth <= 0 {
		return nil, fmt.Errorf("voxel: bad extent %dx%dx%d", gen.Width, gen.Height, gen.Depth)
	}
	return &World{
		gen:    gen,
		chunks: map[ChunkKey]*Chunk{},
	}, nil
}

func (w *World) Width() int  { return w.gen.Width }
func (w *World) Height() int { return w.gen.Height }
func (w *World) Depth() int  { return w.gen.Depth }
func (w *World) Seed() int64 { return w.gen.Seed }

func (w *World) Spawn() (int, int) { return w.gen.SpawnX, w.gen.SpawnY }

func (w *World) InBounds(x, y, z int) bool {
	return x >= 0 && x < w.gen.Width &&
		y >= 0 && y < w.gen.Height &&
		z >= 0 && z < w.gen.Depth
}

// VoxelAt reports the block at a world coordinate. Out of bounds reads
// as solid, so routing fails closed at the world edge.
func (w *World) VoxelAt(x, y, z int) uint16 {
	if !w.InBounds(x, y, z) {
		return Rock
	}
	ch := w.getOrGenChunk(floorDiv(x, 16), floorDiv(y, 16))
	return ch.Get(mod(x, 16), mod(y, 16), z)
}

// SetVoxel overwrites one voxel. Out-of-bounds writes are dropped.
func (w *World) SetVoxel(x, y, z int, b uint16) {
	if !w.InBounds(x, y, z) {
		return
	}
	ch := w.getOrGenChunk(floorDiv(x, 16), floorDiv(y, 16))
	ch.Set(mod(x, 16), mod(y, 16), z, b)
}

// GroundHeight reports the lowest standable layer of a column: the
// first empty cell resting on solid ground (layer zero counts as
// supported). False when the column is sealed solid.
func (w *World) GroundHeight(x, y int) (int, bool) {
	if !w.InBounds(x, y, 0) {
		return 0, false
	}
	for z := 0; z < w.gen.Depth; z++ {
		if w.VoxelAt(x, y, z) != Air {
			continue
		}
		if z == 0 || w.VoxelAt(x, y, z-1) != Air {
			return z, true
		}
	}
	return 0, false
}

func (w *World) chunkSpan() (int, int) {
	return (w.gen.Width + 15) / 16, (w.gen.Height + 15) / 16
}

func (w *World) getOrGenChunk(cx, cy int) *Chunk {
	k := ChunkKey{CX: cx, CY: cy}
	if ch, ok := w.chunks[k]; ok {
		return ch
	}
	ch := &Chunk{
		CX:     cx,
		CY:     cy,
		Depth:  w.gen.Depth,
		Blocks: make([]uint16, 16*16*w.gen.Depth),
	}
	w.generateChunk(ch)
	ch.dirty = true
	_ = ch.Digest() // initialize digest
	w.chunks[k] = ch
	return ch
}

// Materialize generates every chunk inside the extent. Afterward VoxelAt
// never mutates the chunk map, so read-only sharing is safe.
func (w *World) Materialize() {
	nx, ny := w.chunkSpan()
	for cy := 0; cy < ny; cy++ {
		for cx := 0; cx < nx; cx++ {
			w.getOrGenChunk(cx, cy)
		}
	}
}

func (w *World) LoadedChunkKeys() []ChunkKey {
	keys := make([]ChunkKey, 0, len(w.chunks))
	for k := range w.chunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CX != keys[j].CX {
			return keys[i].CX < keys[j].CX
		}
		return keys[i].CY < keys[j].CY
	})
	return keys
}

// Chunks materializes the whole extent and returns its chunks in key
// order, for snapshot export.
func (w *World) Chunks() []*Chunk {
	w.Materialize()
	keys := w.LoadedChunkKeys()
	out := make([]*Chunk, 0, len(keys))
	for _, k := range keys {
		out = append(out, w.chunks[k])
	}
	return out
}

// ChunkAt returns the chunk holding world column (cx*16, cy*16),
// generating it on first touch.
func (w *World) ChunkAt(cx, cy int) (*Chunk, error) {
	nx, ny := w.chunkSpan()
	if cx < 0 || cx >= nx || cy < 0 || cy >= ny {
		return nil, fmt.Errorf("voxel: chunk (%d,%d) outside the %dx%d span", cx, cy, nx, ny)
	}
	return w.getOrGenChunk(cx, cy), nil
}

// InstallChunk replaces a chunk's blocks wholesale, for snapshot import.
func (w *World) InstallChunk(cx, cy int, blocks []uint16) error {
	nx, ny := w.chunkSpan()
	if cx < 0 || cx >= nx || cy < 0 || cy >= ny {
		return fmt.Errorf("voxel: chunk (%d,%d) outside the %dx%d span", cx, cy, nx, ny)
	}
	if len(blocks) != 16*16*w.gen.Depth {
		return fmt.Errorf("voxel: chunk (%d,%d) has %d blocks, want %d", cx, cy, len(blocks), 16*16*w.gen.Depth)
	}
	ch := &Chunk{
		CX:     cx,
		CY:     cy,
		Depth:  w.gen.Depth,
		Blocks: blocks,
		dirty:  true,
	}
	_ = ch.Digest()
	w.chunks[ChunkKey{CX: cx, CY: cy}] = ch
	return nil
}

// Digest materializes the extent and hashes seed, extents and every
// chunk digest in key order. Equal worlds hash equal.
func (w *World) Digest() [32]byte {
	w.Materialize()
	h := sha256.New()
	var hdr [8 * 4]byte
	binary.LittleEndian.PutUint64(hdr[0:], uint64(w.gen.Seed))
	binary.LittleEndian.PutUint64(hdr[8:], uint64(w.gen.Width))
	binary.LittleEndian.PutUint64(hdr[16:], uint64(w.gen.Height))
	binary.LittleEndian.PutUint64(hdr[24:], uint64(w.gen.Depth))
	h.Write(hdr[:])
	for _, k := range w.LoadedChunkKeys() {
		d := w.chunks[k].Digest()
		h.Write(d[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
