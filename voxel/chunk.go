package voxel

import (
	"crypto/sha256"
	"encoding/binary"
)

// Block ids. Anything nonzero is solid for routing purposes.
const (
	Air uint16 = iota
	Rock
	Rubble
)

type ChunkKey struct {
	CX int
	CY int
}

// Chunk holds a 16x16 column footprint of voxels, depth layers tall.
type Chunk struct {
	CX, CY int
	Depth  int
	Blocks []uint16 // len = 16*16*Depth

	dirty bool
	hash  [32]byte
}

func (c *Chunk) index(x, y, z int) int {
	// x fastest, then y, then layer
	return x + y*16 + z*256
}

func (c *Chunk) Get(x, y, z int) uint16 {
	return c.Blocks[c.index(x, y, z)]
}

func (c *Chunk) Set(x, y, z int, b uint16) {
	i := c.index(x, y, z)
	if c.Blocks[i] == b {
		return
	}
	c.Blocks[i] = b
	c.dirty = true
}

func (c *Chunk) Digest() [32]byte {
	if c.dirty || c.hash == ([32]byte{}) {
		// Hash the raw uint16 slice deterministically.
		h := sha256.New()
		var tmp [2]byte
		for _, v := range c.Blocks {
			binary.LittleEndian.PutUint16(tmp[:], v)
			h.Write(tmp[:])
		}
		copy(c.hash[:], h.Sum(nil))
		c.dirty = false
	}
	return c.hash
}
